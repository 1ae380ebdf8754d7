package binance_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"crypto_dashboard/pkg/binance"
)

func newTestClient(t *testing.T, spotURL, mirrorURL, futuresURL string) *binance.Client {
	t.Helper()
	config := binance.DefaultConfig()
	config.SpotURL = spotURL
	config.MirrorURL = mirrorURL
	config.FuturesURL = futuresURL
	config.Timeout = 5 * time.Second

	client, err := binance.New(config)
	if err != nil {
		t.Fatalf("创建Binance客户端失败: %v", err)
	}
	return client
}

// klineRow 构造Binance K线响应的单行
func klineRow(openTime int64, close float64) []interface{} {
	return []interface{}{
		openTime, "100.0", "110.0", "90.0", strconv.FormatFloat(close, 'f', -1, 64),
		"1000.0", openTime + 86400000 - 1, "0", 0, "0", "0", "0",
	}
}

func TestFetchDailyKlines(t *testing.T) {
	const dayMs = int64(86400000)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	// 上游共有5根K线, 按endTime截取
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("请求路径错误: %s", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("interval错误: %s", r.URL.Query().Get("interval"))
		}
		endTime, _ := strconv.ParseInt(r.URL.Query().Get("endTime"), 10, 64)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		var rows [][]interface{}
		for i := 0; i < 5; i++ {
			openTime := base + int64(i)*dayMs
			if openTime > endTime {
				continue
			}
			rows = append(rows, klineRow(openTime, float64(100+i)))
		}
		// 模拟limit截断: 保留最新的limit根
		if len(rows) > limit {
			rows = rows[len(rows)-limit:]
		}
		json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "", server.URL)

	// 请求4根: 单批完成，升序返回最新4根
	klines, err := client.FetchDailyKlines(context.Background(), "BTCUSDT", 4)
	if err != nil {
		t.Fatalf("获取日线失败: %v", err)
	}
	if len(klines) != 4 {
		t.Fatalf("K线数量错误: 期望 4, 实际 %d", len(klines))
	}
	for i := 1; i < len(klines); i++ {
		if klines[i].OpenTime <= klines[i-1].OpenTime {
			t.Fatal("K线应按时间升序")
		}
	}
	if klines[len(klines)-1].Close != 104 {
		t.Errorf("最新收盘价错误: %v", klines[len(klines)-1].Close)
	}
}

func TestFetchDailyKlinesPagination(t *testing.T) {
	const dayMs = int64(86400000)
	base := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	total := 1005 // 超过单次请求上限, 需要分页

	var endTimes []int64
	var limits []int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		endTime, _ := strconv.ParseInt(r.URL.Query().Get("endTime"), 10, 64)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		endTimes = append(endTimes, endTime)
		limits = append(limits, limit)

		var rows [][]interface{}
		for i := 0; i < total; i++ {
			openTime := base + int64(i)*dayMs
			if openTime > endTime {
				continue
			}
			rows = append(rows, klineRow(openTime, float64(i)))
		}
		if len(rows) > limit {
			rows = rows[len(rows)-limit:]
		}
		json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "", server.URL)

	klines, err := client.FetchDailyKlines(context.Background(), "BTCUSDT", total)
	if err != nil {
		t.Fatalf("获取日线失败: %v", err)
	}
	if len(klines) != total {
		t.Fatalf("K线数量错误: 期望 %d, 实际 %d", total, len(klines))
	}
	if klines[0].Close != 0 || klines[total-1].Close != float64(total-1) {
		t.Errorf("K线顺序错误: 首尾收盘价 %v / %v", klines[0].Close, klines[total-1].Close)
	}

	if len(endTimes) != 2 {
		t.Fatalf("应分2批请求, 实际 %d 次", len(endTimes))
	}
	if limits[0] != binance.MaxKlinesPerRequest || limits[1] != total-binance.MaxKlinesPerRequest {
		t.Errorf("分批limit错误: %v", limits)
	}
	// 第二批的endTime应为第一批最早开盘时间减1毫秒
	wantSecond := base + int64(total-binance.MaxKlinesPerRequest)*dayMs - 1
	if endTimes[1] != wantSecond {
		t.Errorf("第二批endTime错误: 期望 %d, 实际 %d", wantSecond, endTimes[1])
	}
}

func TestFetchDailyKlinesHistoryExhausted(t *testing.T) {
	const dayMs = int64(86400000)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 上游历史只有5根
		var rows [][]interface{}
		for i := 0; i < 5; i++ {
			rows = append(rows, klineRow(base+int64(i)*dayMs, float64(100+i)))
		}
		json.NewEncoder(w).Encode(rows)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "", server.URL)

	// 请求数量超过上游历史: 短批次终止, 返回可用的5根
	klines, err := client.FetchDailyKlines(context.Background(), "BTCUSDT", 365)
	if err != nil {
		t.Fatalf("获取日线失败: %v", err)
	}
	if len(klines) != 5 {
		t.Errorf("历史耗尽时应返回可用K线: 期望 5, 实际 %d", len(klines))
	}
}

func TestFetchDailyKlinesMirrorFallback(t *testing.T) {
	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rows := [][]interface{}{klineRow(1700000000000, 42000)}
		json.NewEncoder(w).Encode(rows)
	}))
	defer mirror.Close()

	blocked := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnavailableForLegalReasons)
	}))
	defer blocked.Close()

	client := newTestClient(t, blocked.URL, mirror.URL, blocked.URL)

	klines, err := client.FetchDailyKlines(context.Background(), "BTCUSDT", 1)
	if err != nil {
		t.Fatalf("451后应切换镜像域名: %v", err)
	}
	if len(klines) != 1 || klines[0].Close != 42000 {
		t.Errorf("镜像数据错误: %+v", klines)
	}
}

func TestFetchDailyKlinesMirrorNotUsedForOtherErrors(t *testing.T) {
	blocked := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer blocked.Close()

	mirror := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("非451错误不应切换镜像域名")
	}))
	defer mirror.Close()

	client := newTestClient(t, blocked.URL, mirror.URL, blocked.URL)
	if _, err := client.FetchDailyKlines(context.Background(), "BTCUSDT", 1); err == nil {
		t.Error("500响应应返回错误")
	}
}

func TestFetch24hChange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/24hr" {
			t.Errorf("请求路径错误: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"symbol":"BTCUSDT","priceChangePercent":"-2.345"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "", server.URL)
	change, err := client.Fetch24hChange(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("获取24小时涨跌幅失败: %v", err)
	}
	if change != -2.35 {
		t.Errorf("涨跌幅错误: 期望 -2.35, 实际 %v", change)
	}
}

func TestFetchFundingRate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fapi/v1/premiumIndex" {
			t.Errorf("请求路径错误: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"symbol":"BTCUSDT","lastFundingRate":"0.00010000"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "", server.URL)
	rate, err := client.FetchFundingRate(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("获取资金费率失败: %v", err)
	}
	// 0.0001 -> 0.01%
	if rate != 0.01 {
		t.Errorf("资金费率错误: 期望 0.01, 实际 %v", rate)
	}
}

func TestFetchOpenInterest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fapi/v1/openInterest" {
			t.Errorf("请求路径错误: %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"symbol":"BTCUSDT","openInterest":"85000.123"}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, "", server.URL)
	oi, err := client.FetchOpenInterest(context.Background(), "BTCUSDT", 60000)
	if err != nil {
		t.Fatalf("获取合约持仓失败: %v", err)
	}
	if oi.OIBTC == nil || *oi.OIBTC != 85000.12 {
		t.Errorf("持仓量(BTC)错误: %v", oi.OIBTC)
	}
	if oi.OIUSD == nil || *oi.OIUSD != 85000.123*60000 {
		t.Errorf("持仓量(USD)错误: %v", oi.OIUSD)
	}
}

func TestFetchDailyKlinesEmptySymbol(t *testing.T) {
	client := newTestClient(t, "http://localhost:1", "", "http://localhost:1")
	if _, err := client.FetchDailyKlines(context.Background(), "", 10); err == nil {
		t.Error("空symbol应返回错误")
	}
}
