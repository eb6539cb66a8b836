package twse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcwang/marketscan/internal/contracts"
	"github.com/jcwang/marketscan/pkg/config"
	"github.com/jcwang/marketscan/pkg/logger"
)

const stockDayJSON = `{
	"stat": "OK",
	"date": "20250102",
	"title": "114年01月 2330 各日成交資訊",
	"fields": ["日期","成交股數","成交金額","開盤價","最高價","最低價","收盤價","漲跌價差","成交筆數"],
	"data": [
		["114/01/02","20,000,000","12,000,000,000","600.00","605.00","598.00","601.00","+1.00","25,000"],
		["114/01/03","18,500,000","11,100,000,000","601.00","610.00","600.00","608.00","+7.00","22,000"]
	]
}`

const noDataJSON = `{"stat": "很抱歉, 沒有符合條件的資料!"}`

const t86HTML = `<html><body><table>
<tr><th>證券代號</th><th>證券名稱</th></tr>
<tr>
<td>2330</td><td>台積電</td>
<td>50,000,000</td><td>30,000,000</td><td>20,000,000</td>
<td>0</td><td>0</td><td>0</td>
<td>5,000,000</td><td>2,000,000</td><td>3,000,000</td>
<td>-1,000,000</td><td>x</td>
</tr>
<tr>
<td>not-a-ticker</td><td>junk</td>
<td>1</td><td>1</td><td>1</td><td>1</td><td>1</td><td>1</td><td>1</td><td>1</td><td>1</td><td>1</td><td>1</td>
</tr>
</table></body></html>`

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{}
	cfg.TWSE.BaseURL = server.URL
	cfg.TWSE.RatePerSecond = 1000
	cfg.TWSE.Burst = 10

	return NewClient(cfg, nil, logger.NewNop())
}

func TestFetchMonth(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchangeReport/STOCK_DAY", r.URL.Path)
		assert.Equal(t, "2330", r.URL.Query().Get("stockNo"))
		assert.Equal(t, "2025010", r.URL.Query().Get("date")[:7])
		w.Write([]byte(stockDayJSON))
	}))

	candles, err := client.FetchMonth(context.Background(), "2330", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, candles, 2)

	first := candles[0]
	assert.Equal(t, time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, 600.0, first.Open)
	assert.Equal(t, 605.0, first.High)
	assert.Equal(t, 598.0, first.Low)
	assert.Equal(t, 601.0, first.Close)
	// 20M shares = 20k lots
	assert.Equal(t, 20000.0, first.Volume)
}

func TestFetchMonthNoData(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(noDataJSON))
	}))

	_, err := client.FetchMonth(context.Background(), "0000", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}

func TestFetchRangeFiltersDates(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(stockDayJSON))
	}))

	from := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	candles, err := client.FetchRange(context.Background(), "2330", from, to)
	require.NoError(t, err)

	// 01-02 falls before the range start.
	require.Len(t, candles, 1)
	assert.Equal(t, time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC), candles[0].Date)
}

func TestFetchInstitutional(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fund/T86", r.URL.Path)
		w.Write([]byte(t86HTML))
	}))

	rows, err := client.FetchInstitutional(context.Background(), time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "2330", row.Ticker)
	assert.Equal(t, "台積電", row.Name)
	assert.Equal(t, 20000.0, row.ForeignNet)
	assert.Equal(t, 3000.0, row.TrustNet)
	assert.Equal(t, -1000.0, row.DealerNet)
}

func TestFetchInstitutionalHoliday(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html><body>查無資料</body></html>"))
	}))

	_, err := client.FetchInstitutional(context.Background(), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, contracts.ErrDataUnavailable)
}

func TestParseROCDate(t *testing.T) {
	date, err := parseROCDate("114/01/06")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), date)

	_, err = parseROCDate("2025-01-06")
	assert.Error(t, err)
}

func TestWriteCandleCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	candles := []contracts.Candle{
		{Date: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), Open: 600, High: 605, Low: 598, Close: 601, Volume: 20000},
	}

	require.NoError(t, WriteCandleCSV(dir, "2330", "TSMC", candles))

	data, err := os.ReadFile(filepath.Join(dir, "2330_TSMC.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "date,open,high,low,close,volume", lines[0])
	assert.Equal(t, "2025-01-02,600,605,598,601,20000", lines[1])
}

func TestAppendFlowsWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "institutional.csv")
	rows := []InstitutionalRow{{Ticker: "2330", ForeignNet: 150, TrustNet: 20, DealerNet: 5}}

	day1 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, AppendFlows(path, day1, rows))
	require.NoError(t, AppendFlows(path, day1.AddDate(0, 0, 1), rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "date,ticker,foreign_net,trust_net,dealer_net", lines[0])
	assert.Equal(t, "2025-01-02,2330,150,20,5", lines[1])
	assert.Equal(t, "2025-01-03,2330,150,20,5", lines[2])
}
