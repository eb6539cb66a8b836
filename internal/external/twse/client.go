// Package twse downloads daily quotes and institutional trading data
// from the Taiwan Stock Exchange open endpoints and stores them in the
// scan's on-disk layout.
package twse

import (
	"time"

	"github.com/jcwang/marketscan/pkg/config"
	"github.com/jcwang/marketscan/pkg/httputil"
	"github.com/jcwang/marketscan/pkg/logger"
	"github.com/jcwang/marketscan/pkg/redis"
)

// Client handles communication with TWSE. All TWSE calls go through
// this client so the rate limit applies globally.
type Client struct {
	httpClient *httputil.Client
	cache      *redis.Cache
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a TWSE client. The cache is optional; pass nil to
// always hit the remote endpoints.
func NewClient(cfg *config.Config, cache *redis.Cache, log *logger.Logger) *Client {
	httpClient := httputil.NewWithTimeout(log, 20*time.Second).
		WithRateLimit(cfg.TWSE.RatePerSecond, cfg.TWSE.Burst)

	return &Client{
		httpClient: httpClient,
		cache:      cache,
		logger:     log,
		baseURL:    cfg.TWSE.BaseURL,
	}
}

// stockDayResponse is the STOCK_DAY JSON envelope. Data rows carry
// ROC-calendar dates and comma-grouped numbers.
type stockDayResponse struct {
	Stat   string     `json:"stat"`
	Date   string     `json:"date"`
	Title  string     `json:"title"`
	Fields []string   `json:"fields"`
	Data   [][]string `json:"data"`
}

// InstitutionalRow is one instrument's net institutional trading for a
// day, in lots.
type InstitutionalRow struct {
	Ticker     string
	Name       string
	ForeignNet float64
	TrustNet   float64
	DealerNet  float64
}
