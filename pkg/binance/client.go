package binance

import (
	"context"
	"crypto_dashboard/models"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// ========== Binance 客户端 ==========

// Client Binance 公共行情客户端
type Client struct {
	config     *Config
	httpClient *http.Client
}

// New 创建新的Binance客户端
func New(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Client{
		config:     config.Clone(),
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// fetch 发送GET请求并返回响应体
// 现货接口收到451(地域屏蔽)时切换镜像域名重试一次，除此之外不做重试
func (c *Client) fetch(ctx context.Context, baseURL, path string, params url.Values) ([]byte, error) {
	body, status, err := c.doRequest(ctx, baseURL+path+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnavailableForLegalReasons && baseURL == c.config.SpotURL && c.config.MirrorURL != "" {
		logrus.Warnf("Binance返回451，切换镜像域名重试: %s", c.config.MirrorURL)
		body, status, err = c.doRequest(ctx, c.config.MirrorURL+path+"?"+params.Encode())
		if err != nil {
			return nil, err
		}
	}

	if status != http.StatusOK {
		return nil, fmt.Errorf("binance响应状态码异常: %d", status)
	}

	return body, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("读取响应失败: %w", err)
	}

	return body, resp.StatusCode, nil
}

// ========== K线数据 ==========

// FetchDailyKlines 获取日线数据，按时间升序返回
// 从当前时间向历史分页: 每批以最早一根K线的开盘时间减1毫秒作为下一批的endTime，
// 新批次插入到结果头部。满足请求数量、返回空批次或短批次(历史耗尽)时终止。
func (c *Client) FetchDailyKlines(ctx context.Context, symbol string, days int) ([]*models.Kline, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol不能为空")
	}

	var all []*models.Kline
	endTime := time.Now().UnixMilli()
	remaining := days

	for remaining > 0 {
		limit := remaining
		if limit > MaxKlinesPerRequest {
			limit = MaxKlinesPerRequest
		}

		batch, err := c.fetchKlineBatch(ctx, symbol, endTime, limit)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		all = append(batch, all...)
		endTime = batch[0].OpenTime - 1
		remaining -= len(batch)

		// 短批次说明上游历史已耗尽
		if len(batch) < limit {
			break
		}
	}

	logrus.Debugf("获取 %s 日线完成: %d条", symbol, len(all))
	return all, nil
}

// fetchKlineBatch 获取单批K线
func (c *Client) fetchKlineBatch(ctx context.Context, symbol string, endTime int64, limit int) ([]*models.Kline, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", "1d")
	params.Set("endTime", strconv.FormatInt(endTime, 10))
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.fetch(ctx, c.config.SpotURL, "/api/v3/klines", params)
	if err != nil {
		return nil, fmt.Errorf("获取K线数据失败: %w", err)
	}

	var rawKlines [][]interface{}
	if err := json.Unmarshal(body, &rawKlines); err != nil {
		return nil, fmt.Errorf("解析K线数据失败: %w", err)
	}

	klines := make([]*models.Kline, 0, len(rawKlines))
	for _, raw := range rawKlines {
		if kline := parseKline(raw); kline != nil {
			klines = append(klines, kline)
		}
	}

	return klines, nil
}

// parseKline 解析Binance K线数组
// 格式: [开盘时间, 开, 高, 低, 收, 量, 收盘时间, 成交额, 笔数, ...]
func parseKline(data []interface{}) *models.Kline {
	if len(data) < 7 {
		return nil
	}

	return &models.Kline{
		OpenTime:  toInt64(data[0]),
		Open:      toFloat64(data[1]),
		High:      toFloat64(data[2]),
		Low:       toFloat64(data[3]),
		Close:     toFloat64(data[4]),
		Volume:    toFloat64(data[5]),
		CloseTime: toInt64(data[6]),
	}
}

func toInt64(val interface{}) int64 {
	switch v := val.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return 0
}

func toFloat64(val interface{}) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return 0
}

// ========== 24小时行情 ==========

// Fetch24hChange 获取24小时涨跌幅(%)
func (c *Client) Fetch24hChange(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := c.fetch(ctx, c.config.SpotURL, "/api/v3/ticker/24hr", params)
	if err != nil {
		return 0, fmt.Errorf("获取24小时行情失败: %w", err)
	}

	var ticker struct {
		PriceChangePercent string `json:"priceChangePercent"`
	}
	if err := json.Unmarshal(body, &ticker); err != nil {
		return 0, fmt.Errorf("解析24小时行情失败: %w", err)
	}

	change, err := strconv.ParseFloat(ticker.PriceChangePercent, 64)
	if err != nil {
		return 0, fmt.Errorf("解析涨跌幅失败: %w", err)
	}

	return round2(change), nil
}

// ========== 期货数据 ==========

// FetchFundingRate 获取最新资金费率(%)
func (c *Client) FetchFundingRate(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := c.fetch(ctx, c.config.FuturesURL, "/fapi/v1/premiumIndex", params)
	if err != nil {
		return 0, fmt.Errorf("获取资金费率失败: %w", err)
	}

	var premium struct {
		LastFundingRate string `json:"lastFundingRate"`
	}
	if err := json.Unmarshal(body, &premium); err != nil {
		return 0, fmt.Errorf("解析资金费率失败: %w", err)
	}

	rate, err := strconv.ParseFloat(premium.LastFundingRate, 64)
	if err != nil {
		return 0, fmt.Errorf("解析费率数值失败: %w", err)
	}

	return round4(rate * 100), nil
}

// FetchOpenInterest 获取合约持仓量，USD价值由当前价格换算
func (c *Client) FetchOpenInterest(ctx context.Context, symbol string, price float64) (*models.OpenInterest, error) {
	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := c.fetch(ctx, c.config.FuturesURL, "/fapi/v1/openInterest", params)
	if err != nil {
		return nil, fmt.Errorf("获取合约持仓失败: %w", err)
	}

	var result struct {
		OpenInterest string `json:"openInterest"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("解析合约持仓失败: %w", err)
	}

	oiBTC, err := strconv.ParseFloat(result.OpenInterest, 64)
	if err != nil {
		return nil, fmt.Errorf("解析持仓数值失败: %w", err)
	}

	return &models.OpenInterest{
		OIBTC: models.Float64Ptr(round2(oiBTC)),
		OIUSD: models.Float64Ptr(round2(oiBTC * price)),
	}, nil
}
