package twse

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jcwang/marketscan/internal/contracts"
)

const flowCacheTTL = 12 * time.Hour

var tickerRe = regexp.MustCompile(`^[0-9][0-9A-Z]{3,5}$`)

// FetchInstitutional scrapes the T86 daily report: per-instrument net
// buy/sell by foreign investors, investment trusts and dealers.
// Values are converted from shares to lots.
func (c *Client) FetchInstitutional(ctx context.Context, date time.Time) ([]InstitutionalRow, error) {
	cacheKey := "t86:" + date.Format("20060102")
	var cached []InstitutionalRow
	if c.cache != nil {
		if hit, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	url := fmt.Sprintf("%s/fund/T86?response=html&date=%s&selectType=ALL",
		c.baseURL, date.Format("20060102"))

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch institutional %s: %w", date.Format("2006-01-02"), err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse institutional page: %w", err)
	}

	rows := parseT86(doc)
	if len(rows) == 0 {
		// Holidays render a page with no data table.
		return nil, fmt.Errorf("institutional %s: %w", date.Format("2006-01-02"), contracts.ErrDataUnavailable)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, rows, flowCacheTTL); err != nil {
			c.logger.WithError(err).Warn("Institutional cache write failed")
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"date":    date.Format("2006-01-02"),
		"tickers": len(rows),
	}).Debug("Fetched institutional trading")

	return rows, nil
}

// parseT86 walks the report table. Column layout (selectType=ALL):
// ticker, name, foreign buy/sell/net, foreign dealer buy/sell/net,
// trust buy/sell/net, dealer net, ...
func parseT86(doc *goquery.Document) []InstitutionalRow {
	var rows []InstitutionalRow

	doc.Find("table tr").Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 12 {
			return
		}

		ticker := strings.TrimSpace(cells.Eq(0).Text())
		if !tickerRe.MatchString(ticker) {
			return
		}

		rows = append(rows, InstitutionalRow{
			Ticker:     ticker,
			Name:       strings.TrimSpace(cells.Eq(1).Text()),
			ForeignNet: parseSharesAsLots(cells.Eq(4).Text()),
			TrustNet:   parseSharesAsLots(cells.Eq(10).Text()),
			DealerNet:  parseSharesAsLots(cells.Eq(11).Text()),
		})
	})

	return rows
}

func parseSharesAsLots(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "--" {
		return 0
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return n / 1000
}
