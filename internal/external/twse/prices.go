package twse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jcwang/marketscan/internal/contracts"
)

const priceCacheTTL = 12 * time.Hour

// FetchMonth downloads one month of daily candles for a ticker from the
// STOCK_DAY endpoint. Volume is converted from shares to lots.
func (c *Client) FetchMonth(ctx context.Context, ticker string, month time.Time) ([]contracts.Candle, error) {
	cacheKey := fmt.Sprintf("day:%s:%s", ticker, month.Format("200601"))
	var cached []contracts.Candle
	if c.cache != nil {
		if hit, err := c.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	url := fmt.Sprintf("%s/exchangeReport/STOCK_DAY?response=json&date=%s01&stockNo=%s",
		c.baseURL, month.Format("200601"), ticker)

	resp, err := c.httpClient.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %s: %w", ticker, month.Format("2006-01"), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read quote response: %w", err)
	}

	var envelope stockDayResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}
	if envelope.Stat != "OK" {
		// "很抱歉, 沒有符合條件的資料!" for unlisted months
		return nil, fmt.Errorf("%s %s: %w", ticker, month.Format("2006-01"), contracts.ErrDataUnavailable)
	}

	candles := make([]contracts.Candle, 0, len(envelope.Data))
	for _, row := range envelope.Data {
		if len(row) < 9 {
			continue
		}

		date, err := parseROCDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("quote row date: %w", err)
		}

		volume, err := parseGroupedNumber(row[1])
		if err != nil {
			return nil, fmt.Errorf("quote row volume: %w", err)
		}

		candle := contracts.Candle{Date: date, Volume: volume / 1000}
		for _, f := range []struct {
			idx int
			dst *float64
		}{
			{3, &candle.Open},
			{4, &candle.High},
			{5, &candle.Low},
			{6, &candle.Close},
		} {
			v, err := parseGroupedNumber(row[f.idx])
			if err != nil {
				return nil, fmt.Errorf("quote row price: %w", err)
			}
			*f.dst = v
		}

		candles = append(candles, candle)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, candles, priceCacheTTL); err != nil {
			c.logger.WithError(err).Warn("Quote cache write failed")
		}
	}

	c.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"month":  month.Format("2006-01"),
		"bars":   len(candles),
	}).Debug("Fetched daily quotes")

	return candles, nil
}

// FetchRange downloads candles month by month across [from, to].
func (c *Client) FetchRange(ctx context.Context, ticker string, from, to time.Time) ([]contracts.Candle, error) {
	var all []contracts.Candle

	month := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(to.Year(), to.Month(), 1, 0, 0, 0, 0, time.UTC)

	for !month.After(end) {
		select {
		case <-ctx.Done():
			return all, ctx.Err()
		default:
		}

		candles, err := c.FetchMonth(ctx, ticker, month)
		if err != nil {
			return all, err
		}
		for _, candle := range candles {
			if candle.Date.Before(from) || candle.Date.After(to) {
				continue
			}
			all = append(all, candle)
		}

		month = month.AddDate(0, 1, 0)
	}

	return all, nil
}

// parseROCDate parses "114/01/06" (ROC calendar, year 1911 offset).
func parseROCDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("unparseable date %q", s)
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date %q", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date %q", s)
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable date %q", s)
	}

	return time.Date(year+1911, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// parseGroupedNumber parses "20,000,000" or "601.00". "--" marks days
// without trades.
func parseGroupedNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "--" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
