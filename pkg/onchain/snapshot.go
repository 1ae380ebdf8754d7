package onchain

import (
	"context"
	"crypto_dashboard/models"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SnapshotSource 从HTTP地址读取预生成的链上指标JSON快照
// 快照由cmd/onchain定时任务维护，格式:
//
//	{"nupl": 0.47, "mvrv": 1.8, "mvrv_zscore": 1.2, "market_cap": 1.9e12, "realized_cap": 6.5e11}
type SnapshotSource struct {
	url        string
	httpClient *http.Client
}

// NewSnapshotSource 创建快照数据源
func NewSnapshotSource(url string, timeout time.Duration) *SnapshotSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SnapshotSource{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch 读取快照
func (s *SnapshotSource) Fetch(ctx context.Context) (*models.OnchainSnapshot, error) {
	if s.url == "" {
		return nil, fmt.Errorf("快照地址未配置")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("读取链上快照失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("链上快照响应状态码异常: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	var snapshot models.OnchainSnapshot
	if err := json.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("解析链上快照失败: %w", err)
	}

	// AHR999由本系统根据价格序列计算，快照中的值不采用
	snapshot.AHR999 = nil

	return &snapshot, nil
}
