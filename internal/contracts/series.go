package contracts

import "time"

// Candle is one daily OHLCV bar.
type Candle struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"` // lots (1000 shares)
}

// InstitutionalFlow is one day of institutional net buying for a stock.
// Units: lots, negative = net selling.
type InstitutionalFlow struct {
	Date       time.Time `json:"date"`
	ForeignNet float64   `json:"foreign_net"`
	TrustNet   float64   `json:"trust_net"`
	DealerNet  float64   `json:"dealer_net"`
}

// Series is the per-instrument input consumed by strategies and the
// backtest engine. Flows is empty unless institutional data has been
// merged; both sequences are ordered oldest first and aligned by date.
type Series struct {
	Ticker  string              `json:"ticker"`
	Name    string              `json:"name"`
	Candles []Candle            `json:"candles"`
	Flows   []InstitutionalFlow `json:"flows,omitempty"`
}

// Len returns the number of daily bars.
func (s *Series) Len() int {
	return len(s.Candles)
}

// HasFlows reports whether institutional data has been merged in.
func (s *Series) HasFlows() bool {
	return len(s.Flows) > 0
}

// MeanVolume returns the average daily volume across the whole series.
func (s *Series) MeanVolume() float64 {
	if len(s.Candles) == 0 {
		return 0
	}
	var sum float64
	for _, c := range s.Candles {
		sum += c.Volume
	}
	return sum / float64(len(s.Candles))
}
