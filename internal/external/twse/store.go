package twse

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jcwang/marketscan/internal/contracts"
)

// WriteCandleCSV writes one instrument's candles in the scan data
// layout: "<dir>/<ticker>_<name>.csv" with a standard header. Existing
// files are replaced.
func WriteCandleCSV(dir, ticker, name string, candles []contracts.Candle) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%s.csv", ticker, name))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"date", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, c := range candles {
		record := []string{
			c.Date.Format("2006-01-02"),
			formatFloat(c.Open),
			formatFloat(c.High),
			formatFloat(c.Low),
			formatFloat(c.Close),
			formatFloat(c.Volume),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// AppendFlows appends one day's institutional rows to the market-wide
// flow CSV, creating it with a header when missing.
func AppendFlows(path string, date time.Time, rows []InstitutionalRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create flow dir: %w", err)
	}

	_, statErr := os.Stat(path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write([]string{"date", "ticker", "foreign_net", "trust_net", "dealer_net"}); err != nil {
			return err
		}
	}

	day := date.Format("2006-01-02")
	for _, r := range rows {
		record := []string{day, r.Ticker, formatFloat(r.ForeignNet), formatFloat(r.TrustNet), formatFloat(r.DealerNet)}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
