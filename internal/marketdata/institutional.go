package marketdata

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/pkg/logger"
)

// FlowLoader merges institutional net buying into price series from a
// single market-wide CSV with "date,ticker,foreign_net,trust_net,
// dealer_net" rows. The file is loaded once and shared by all merges.
type FlowLoader struct {
	path   string
	logger *logger.Logger

	once    sync.Once
	loadErr error
	byDate  map[string]map[string]contracts.InstitutionalFlow // ticker -> date -> flow
}

// NewFlowLoader creates a flow loader over an institutional CSV file.
// The file is not touched until the first merge.
func NewFlowLoader(path string, log *logger.Logger) *FlowLoader {
	return &FlowLoader{path: path, logger: log}
}

// Merge returns a copy of the series with flows aligned to its candles.
// Days without a flow record stay zero. A ticker with no flow data at
// all fails with ErrDataUnavailable.
func (l *FlowLoader) Merge(ctx context.Context, series *contracts.Series) (*contracts.Series, error) {
	l.once.Do(l.load)
	if l.loadErr != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrDataUnavailable, l.loadErr)
	}

	flows, ok := l.byDate[series.Ticker]
	if !ok {
		return nil, fmt.Errorf("%s: no institutional rows: %w", series.Ticker, contracts.ErrDataUnavailable)
	}

	merged := *series
	merged.Flows = make([]contracts.InstitutionalFlow, len(series.Candles))
	for i, c := range series.Candles {
		key := c.Date.Format("2006-01-02")
		if flow, ok := flows[key]; ok {
			merged.Flows[i] = flow
		} else {
			merged.Flows[i] = contracts.InstitutionalFlow{Date: c.Date}
		}
	}

	return &merged, nil
}

func (l *FlowLoader) load() {
	f, err := os.Open(l.path)
	if err != nil {
		l.loadErr = err
		return
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		l.loadErr = fmt.Errorf("read header: %w", err)
		return
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"date", "ticker", "foreign_net", "trust_net"} {
		if _, ok := col[required]; !ok {
			l.loadErr = fmt.Errorf("missing column %q", required)
			return
		}
	}
	dealerIdx, hasDealer := col["dealer_net"]

	l.byDate = make(map[string]map[string]contracts.InstitutionalFlow)
	rows := 0

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.loadErr = err
			return
		}

		date, err := parseDate(record[col["date"]])
		if err != nil {
			l.loadErr = err
			return
		}
		ticker := strings.TrimSpace(record[col["ticker"]])

		flow := contracts.InstitutionalFlow{Date: date}
		flow.ForeignNet, err = parseFlowValue(record[col["foreign_net"]])
		if err != nil {
			l.loadErr = err
			return
		}
		flow.TrustNet, err = parseFlowValue(record[col["trust_net"]])
		if err != nil {
			l.loadErr = err
			return
		}
		if hasDealer {
			flow.DealerNet, err = parseFlowValue(record[dealerIdx])
			if err != nil {
				l.loadErr = err
				return
			}
		}

		if l.byDate[ticker] == nil {
			l.byDate[ticker] = make(map[string]contracts.InstitutionalFlow)
		}
		l.byDate[ticker][date.Format("2006-01-02")] = flow
		rows++
	}

	l.logger.WithFields(map[string]interface{}{
		"rows":    rows,
		"tickers": len(l.byDate),
	}).Info("Institutional flow data loaded")
}

func parseFlowValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
