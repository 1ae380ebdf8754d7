package binance

import (
	"fmt"
	"time"
)

// ========== Binance 配置 ==========

// API端点常量
const (
	SpotBaseURL    = "https://api.binance.com"
	MirrorBaseURL  = "https://data-api.binance.vision" // 美国IP被屏蔽(451)时的备用域名
	FuturesBaseURL = "https://fapi.binance.com"

	// 单次请求最大K线数量(现货klines接口上限)
	MaxKlinesPerRequest = 1000
)

// Config Binance 客户端配置（仅公共市场数据，无需凭证）
type Config struct {
	SpotURL    string        `json:"spotUrl"`    // 现货API基础URL
	MirrorURL  string        `json:"mirrorUrl"`  // 现货备用镜像URL，空表示禁用451回退
	FuturesURL string        `json:"futuresUrl"` // 期货API基础URL
	Timeout    time.Duration `json:"timeout"`    // 单次请求超时
	UserAgent  string        `json:"userAgent"`  // 请求User-Agent
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		SpotURL:    SpotBaseURL,
		MirrorURL:  MirrorBaseURL,
		FuturesURL: FuturesBaseURL,
		Timeout:    15 * time.Second,
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.SpotURL == "" {
		return fmt.Errorf("spotUrl不能为空")
	}
	if c.FuturesURL == "" {
		return fmt.Errorf("futuresUrl不能为空")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout不能为负数")
	}
	return nil
}

// Clone 克隆配置
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
