package sentiment

import (
	"context"
	"crypto_dashboard/models"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// DefaultBaseURL alternative.me 恐慌贪婪指数API
const DefaultBaseURL = "https://api.alternative.me/fng/"

// Client 恐慌贪婪指数客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New 创建客户端，baseURL为空时使用默认API
func New(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchIndex 获取最新恐慌贪婪指数
func (c *Client) FetchIndex(ctx context.Context) (*models.SentimentSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?limit=1", nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求恐慌贪婪指数失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("恐慌贪婪指数响应状态码异常: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	// API返回 {"data": [{"value": "54", "value_classification": "Neutral"}]}
	var result struct {
		Data []struct {
			Value               string `json:"value"`
			ValueClassification string `json:"value_classification"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("解析恐慌贪婪指数失败: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("恐慌贪婪指数数据为空")
	}

	value, err := strconv.Atoi(result.Data[0].Value)
	if err != nil {
		return nil, fmt.Errorf("解析指数数值失败: %w", err)
	}

	return &models.SentimentSnapshot{
		Value: value,
		Label: result.Data[0].ValueClassification,
	}, nil
}
