package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcwang/marketscan/internal/contracts"
)

// makeSeries builds a daily series from close prices. Highs and lows are
// one point around the close; volume is constant unless overridden.
func makeSeries(ticker string, closePrices []float64) *contracts.Series {
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	candles := make([]contracts.Candle, len(closePrices))
	for i, p := range closePrices {
		candles[i] = contracts.Candle{
			Date:   start.AddDate(0, 0, i),
			Open:   p,
			High:   p + 1,
			Low:    p - 1,
			Close:  p,
			Volume: 1000,
		}
	}
	return &contracts.Series{Ticker: ticker, Name: ticker, Candles: candles}
}

func TestMACrossSignals(t *testing.T) {
	s := makeSeries("2330", []float64{10, 9, 8, 7, 6, 7, 9, 12, 13, 12, 10, 8, 7})

	strat := NewMACross(2, 3)
	signals, err := strat.Signals(s)
	require.NoError(t, err)
	require.Len(t, signals, s.Len())

	assert.Equal(t, contracts.Buy, signals[6], "fast SMA crossing above slow should buy")
	assert.Equal(t, contracts.Sell, signals[10], "fast SMA crossing below slow should sell")
}

func TestMACrossTooShort(t *testing.T) {
	s := makeSeries("2330", []float64{10, 11, 12})

	_, err := NewMACross(5, 20).Signals(s)
	assert.Error(t, err)
}

func TestRSIRunawayUptrend(t *testing.T) {
	prices := make([]float64, 40)
	for i := range prices {
		prices[i] = 100 + float64(i)*2
	}
	s := makeSeries("2330", prices)

	signals, err := NewRSI(30, 70).Signals(s)
	require.NoError(t, err)

	var sawSell, sawBuy bool
	for _, sig := range signals {
		if sig == contracts.Sell {
			sawSell = true
		}
		if sig == contracts.Buy {
			sawBuy = true
		}
	}
	assert.True(t, sawSell, "a straight uptrend should become overbought")
	assert.False(t, sawBuy, "a straight uptrend never reaches oversold")
}

func TestTurtleBreakout(t *testing.T) {
	s := makeSeries("2330", []float64{10, 10, 10, 10, 15, 16, 17, 10, 5})

	signals, err := NewTurtle(3, 2).Signals(s)
	require.NoError(t, err)

	assert.Equal(t, contracts.Buy, signals[4], "close above prior 3-day high should buy")
	assert.Equal(t, contracts.Sell, signals[8], "close below prior 2-day low should sell")
}

func TestVolumeBreakout(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100
	}
	prices[25] = 105
	s := makeSeries("2330", prices)
	s.Candles[25].Volume = 5000 // surge on the up-day

	signals, err := NewVolumeBreakout(2.0).Signals(s)
	require.NoError(t, err)
	assert.Equal(t, contracts.Buy, signals[25])
}

func TestBollingerBands(t *testing.T) {
	prices := make([]float64, 30)
	for i := range prices {
		prices[i] = 100 + math.Sin(float64(i))*0.5
	}
	prices[28] = 90 // collapse far below the band
	s := makeSeries("2330", prices)

	signals, err := NewBollinger().Signals(s)
	require.NoError(t, err)
	assert.Equal(t, contracts.Buy, signals[28])
}

func TestInstitutionalFollow(t *testing.T) {
	s := makeSeries("2330", []float64{100, 101, 102, 103, 104, 105, 106})
	flows := []float64{0, 60, 70, 80, -60, -70, 0}
	s.Flows = make([]contracts.InstitutionalFlow, len(flows))
	for i, f := range flows {
		s.Flows[i] = contracts.InstitutionalFlow{
			Date:       s.Candles[i].Date,
			ForeignNet: f,
		}
	}

	strat := NewInstitutionalFollow(Foreign, 2, 50)
	signals, err := strat.Signals(s)
	require.NoError(t, err)

	assert.Equal(t, contracts.Buy, signals[2], "two days of heavy foreign buying")
	assert.Equal(t, contracts.Sell, signals[5], "two days of heavy foreign selling")
	assert.Equal(t, contracts.Hold, signals[4], "mixed window holds")
}

func TestInstitutionalFollowWithoutFlows(t *testing.T) {
	s := makeSeries("2330", []float64{100, 101, 102, 103})

	_, err := NewInstitutionalFollow(Foreign, 3, 100).Signals(s)
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}

func TestSignalsLengthMatchesSeries(t *testing.T) {
	prices := make([]float64, 120)
	for i := range prices {
		prices[i] = 100 + 10*math.Sin(float64(i)/7) + float64(i)*0.1
	}
	s := makeSeries("2330", prices)
	s.Flows = make([]contracts.InstitutionalFlow, len(prices))
	for i := range s.Flows {
		s.Flows[i] = contracts.InstitutionalFlow{Date: s.Candles[i].Date, ForeignNet: 200, TrustNet: 20}
	}

	for _, strat := range DefaultBattery(true) {
		t.Run(strat.Name(), func(t *testing.T) {
			signals, err := strat.Signals(s)
			require.NoError(t, err)
			assert.Len(t, signals, s.Len())
		})
	}
}
