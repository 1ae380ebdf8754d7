package onchain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MarketCapURL blockchain.info 市值时间序列API
const MarketCapURL = "https://api.blockchain.info/charts/market-cap"

// FetchMarketCap 从blockchain.info获取最新BTC总市值(USD)
// 快照中market_cap缺失时的兜底数据源
func FetchMarketCap(ctx context.Context, timeout time.Duration) (float64, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	url := MarketCapURL + "?timespan=1days&format=json"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("构建请求失败: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("请求市值数据失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("市值数据响应状态码异常: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("读取响应失败: %w", err)
	}

	var result struct {
		Values []struct {
			X int64   `json:"x"`
			Y float64 `json:"y"`
		} `json:"values"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("解析市值数据失败: %w", err)
	}
	if len(result.Values) == 0 {
		return 0, fmt.Errorf("市值数据为空")
	}

	return result.Values[len(result.Values)-1].Y, nil
}
