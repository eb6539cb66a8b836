// Package report renders a finished scan into a standalone HTML page:
// the composite ranking on top, one leaderboard table per strategy, and
// a metric legend at the bottom.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/jcwang/marketscan/internal/contracts"
)

// HTML renders scans as a dark-themed single-file report.
type HTML struct {
	now func() time.Time
}

// NewHTML creates the HTML renderer.
func NewHTML() *HTML {
	return &HTML{now: time.Now}
}

type reportData struct {
	GeneratedAt  string
	TopN         int
	Ranking      []contracts.CompositeEntry
	Leaderboards []contracts.Leaderboard
}

// Render produces the report bytes. The inputs are rendered as given;
// ordering decisions belong to the scan, not the renderer.
func (h *HTML) Render(leaderboards []contracts.Leaderboard, ranking []contracts.CompositeEntry) ([]byte, error) {
	topN := 0
	for _, b := range leaderboards {
		if len(b.Entries) > topN {
			topN = len(b.Entries)
		}
	}

	data := reportData{
		GeneratedAt:  h.now().Format("2006-01-02 15:04"),
		TopN:         topN,
		Ranking:      ranking,
		Leaderboards: leaderboards,
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}

	return buf.Bytes(), nil
}

var reportTemplate = template.Must(template.New("scan_report").Funcs(template.FuncMap{
	"pct": func(v float64) string {
		return fmt.Sprintf("%.2f%%", v*100)
	},
	"num": func(v float64) string {
		return fmt.Sprintf("%.2f", v)
	},
	"rank": func(i int) template.HTML {
		switch i {
		case 0:
			return `<span class="gold">&#129351; 1</span>`
		case 1:
			return `<span class="silver">&#129352; 2</span>`
		case 2:
			return `<span class="bronze">&#129353; 3</span>`
		default:
			return template.HTML(fmt.Sprintf("%d", i+1))
		}
	},
	"retClass": func(v float64) string {
		if v > 0 {
			return "positive"
		}
		return "negative"
	},
	"inc": func(i int) int { return i + 1 },
}).Parse(reportBody))

const reportBody = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Market Scan Report</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: -apple-system, sans-serif; background: #1a1a2e; color: #eee; padding: 20px; }
.container { max-width: 1200px; margin: 0 auto; }
h1 { color: #00d4ff; margin-bottom: 20px; }
h2 { color: #ff6b6b; margin: 30px 0 15px; font-size: 18px; }
.meta { color: #888; margin-bottom: 30px; }
.note { color: #888; margin-bottom: 15px; }
table { width: 100%; border-collapse: collapse; margin-bottom: 30px; background: #16213e; border-radius: 8px; overflow: hidden; }
th { background: #0f3460; padding: 12px; text-align: left; color: #00d4ff; }
td { padding: 10px 12px; border-bottom: 1px solid #0f3460; }
tr:hover { background: #1f4068; }
.positive { color: #28a745; }
.negative { color: #dc3545; }
.gold { color: #ffd700; }
.silver { color: #c0c0c0; }
.bronze { color: #cd7f32; }
hr { border-color: #333; margin: 40px 0; }
</style>
</head>
<body>
<div class="container">
<h1>&#128202; Market Scan Report</h1>
<p class="meta">Generated: {{.GeneratedAt}} | Top {{.TopN}} by Sharpe ratio per strategy</p>
{{if .Ranking}}
<h2>&#127942; Composite Ranking</h2>
<p class="note">Score = strategy count &times; average Sharpe; instruments that rank well under many strategies come first</p>
<table>
<thead><tr><th>Rank</th><th>Ticker</th><th>Name</th><th>Score</th><th>Strategies</th><th>Avg Sharpe</th><th>Avg Return</th><th>Best Strategy</th></tr></thead>
<tbody>
{{range $i, $e := .Ranking}}<tr>
<td>{{rank $i}}</td>
<td><strong>{{$e.Ticker}}</strong></td>
<td>{{$e.Name}}</td>
<td><strong>{{num $e.Score}}</strong></td>
<td>{{$e.StrategyCount}}</td>
<td>{{num $e.AvgSharpe}}</td>
<td class="{{retClass $e.AvgReturn}}">{{pct $e.AvgReturn}}</td>
<td>{{$e.BestStrategy}}</td>
</tr>
{{end}}</tbody>
</table>
<hr>
{{end}}
{{range .Leaderboards}}{{if .Entries}}
<h2>&#127919; {{.Strategy}}</h2>
<table>
<thead><tr><th>Rank</th><th>Ticker</th><th>Name</th><th>Return</th><th>Sharpe</th><th>Max Drawdown</th><th>Win Rate</th><th>Trades</th></tr></thead>
<tbody>
{{range $i, $e := .Entries}}<tr>
<td>{{inc $i}}</td>
<td><strong>{{$e.Ticker}}</strong></td>
<td>{{$e.Name}}</td>
<td class="{{retClass $e.TotalReturn}}">{{pct $e.TotalReturn}}</td>
<td><strong>{{num $e.SharpeRatio}}</strong></td>
<td class="negative">{{pct $e.MaxDrawdown}}</td>
<td>{{pct $e.WinRate}}</td>
<td>{{$e.TradeCount}}</td>
</tr>
{{end}}</tbody>
</table>
{{end}}{{end}}
<hr>
<h2>&#128214; Metrics</h2>
<table>
<tr><td><strong>Sharpe Ratio</strong></td><td>Risk-adjusted return. &gt; 1 good, &gt; 2 very good, &gt; 3 excellent</td></tr>
<tr><td><strong>Total Return</strong></td><td>Strategy profit over the full series</td></tr>
<tr><td><strong>Max Drawdown</strong></td><td>Largest peak-to-trough loss (smaller is better)</td></tr>
<tr><td><strong>Win Rate</strong></td><td>Share of profitable round trips</td></tr>
</table>
</div>
</body>
</html>
`
