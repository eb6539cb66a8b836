package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcwang/marketscan/internal/contracts"
)

func fixedRenderer() *HTML {
	h := NewHTML()
	h.now = func() time.Time {
		return time.Date(2025, 6, 2, 18, 30, 0, 0, time.UTC)
	}
	return h
}

func TestRenderFullReport(t *testing.T) {
	boards := []contracts.Leaderboard{
		{Strategy: "MA5x20", Entries: []contracts.StrategyResult{
			{Ticker: "2330", Name: "TSMC", TotalReturn: 0.42, SharpeRatio: 2.1, MaxDrawdown: 0.12, WinRate: 0.65, TradeCount: 8},
			{Ticker: "2317", Name: "Hon Hai", TotalReturn: -0.05, SharpeRatio: 0.4, MaxDrawdown: 0.2, WinRate: 0.4, TradeCount: 5},
		}},
		{Strategy: "RSI"},
	}
	ranking := []contracts.CompositeEntry{
		{Ticker: "2330", Name: "TSMC", Score: 4.2, StrategyCount: 2, AvgSharpe: 2.1, AvgReturn: 0.42, BestStrategy: "MA5x20", BestSharpe: 2.1},
	}

	out, err := fixedRenderer().Render(boards, ranking)
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, "2025-06-02 18:30")
	assert.Contains(t, page, "Top 2 by Sharpe ratio")
	assert.Contains(t, page, "Composite Ranking")
	assert.Contains(t, page, "<strong>2330</strong>")
	assert.Contains(t, page, "MA5x20")
	assert.Contains(t, page, "42.00%")
	assert.Contains(t, page, `class="negative">-5.00%`)
	// empty leaderboards render no section
	assert.NotContains(t, page, "RSI</h2>")
}

func TestRenderRanksMedalTopThree(t *testing.T) {
	ranking := []contracts.CompositeEntry{
		{Ticker: "A", Score: 3},
		{Ticker: "B", Score: 2},
		{Ticker: "C", Score: 1},
		{Ticker: "D", Score: 0.5},
	}

	out, err := fixedRenderer().Render(nil, ranking)
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, `class="gold"`)
	assert.Contains(t, page, `class="silver"`)
	assert.Contains(t, page, `class="bronze"`)
	assert.Contains(t, page, "<td>4</td>")
}

func TestRenderEscapesNames(t *testing.T) {
	ranking := []contracts.CompositeEntry{
		{Ticker: "X", Name: "<script>alert(1)</script>"},
	}

	out, err := fixedRenderer().Render(nil, ranking)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "<script>alert(1)</script>")
}

func TestRenderEmptyScan(t *testing.T) {
	out, err := fixedRenderer().Render(nil, nil)
	require.NoError(t, err)
	page := string(out)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.NotContains(t, page, "Composite Ranking")
	assert.Contains(t, page, "Metrics")
}
