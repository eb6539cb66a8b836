// Package marketdata supplies per-instrument daily series to the scan,
// from a directory of CSV files, and persists finished scans.
package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/pkg/logger"
)

// DirLoader enumerates a directory of daily candle CSVs, one file per
// instrument, named "<ticker>_<display name>.csv". Enumeration order is
// the sorted file name order, which keeps it stable across scans of the
// same directory.
type DirLoader struct {
	dir    string
	logger *logger.Logger

	mu    sync.Mutex
	files map[string]string // ticker -> path
	names map[string]string // ticker -> display name
}

// NewDirLoader creates a loader over a data directory.
func NewDirLoader(dir string, log *logger.Logger) *DirLoader {
	return &DirLoader{dir: dir, logger: log}
}

// Tickers lists the universe in sorted file name order.
func (l *DirLoader) Tickers(ctx context.Context) ([]string, error) {
	if err := l.index(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	tickers := make([]string, 0, len(l.files))
	for t := range l.files {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers, nil
}

// Load reads one instrument's series. Any parse problem maps to
// ErrDataUnavailable so the scan can skip the instrument.
func (l *DirLoader) Load(ctx context.Context, ticker string) (*contracts.Series, error) {
	if err := l.index(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	path, ok := l.files[ticker]
	name := l.names[ticker]
	l.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("%s: %w", ticker, contracts.ErrDataUnavailable)
	}

	candles, err := readCandleCSV(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", ticker, contracts.ErrDataUnavailable, err)
	}

	return &contracts.Series{Ticker: ticker, Name: name, Candles: candles}, nil
}

// index builds the ticker -> file mapping once.
func (l *DirLoader) index() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.files != nil {
		return nil
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return fmt.Errorf("read data dir %s: %w", l.dir, err)
	}

	l.files = make(map[string]string)
	l.names = make(map[string]string)

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}

		base := strings.TrimSuffix(e.Name(), ".csv")
		ticker, name, found := strings.Cut(base, "_")
		if !found {
			name = ticker
		}
		l.files[ticker] = filepath.Join(l.dir, e.Name())
		l.names[ticker] = name
	}

	return nil
}

// readCandleCSV parses "date,open,high,low,close,volume" rows.
func readCandleCSV(path string) ([]contracts.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"date", "open", "high", "low", "close", "volume"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var candles []contracts.Candle
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		date, err := parseDate(record[col["date"]])
		if err != nil {
			return nil, err
		}

		c := contracts.Candle{Date: date}
		for _, f := range []struct {
			name string
			dst  *float64
		}{
			{"open", &c.Open},
			{"high", &c.High},
			{"low", &c.Low},
			{"close", &c.Close},
			{"volume", &c.Volume},
		} {
			v, err := strconv.ParseFloat(strings.TrimSpace(record[col[f.name]]), 64)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", f.name, err)
			}
			*f.dst = v
		}

		candles = append(candles, c)
	}

	if len(candles) == 0 {
		return nil, fmt.Errorf("no rows")
	}

	return candles, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}
