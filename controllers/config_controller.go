package controllers

import (
	"crypto_dashboard/pkg/config"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConfigController 系统配置控制器
type ConfigController struct{}

// NewConfigController 创建配置控制器
func NewConfigController() *ConfigController {
	return &ConfigController{}
}

// SystemConfigResponse 系统配置响应
type SystemConfigResponse struct {
	KlineDays                int    `json:"kline_days"`                  // 采集的日线数量
	CacheTTLSeconds          int    `json:"cache_ttl_seconds"`           // 日报缓存有效期(秒)
	OnchainSource            string `json:"onchain_source"`              // 链上数据源: snapshot, none
	SignalFundingHighEnabled bool   `json:"signal_funding_high_enabled"` // 资金费率偏高信号开关
}

// GetSystemConfig 获取系统配置
func (c *ConfigController) GetSystemConfig(ctx *gin.Context) {
	cfg := config.GlobalConfig

	response := SystemConfigResponse{
		KlineDays:                cfg.KlineDays,
		CacheTTLSeconds:          int(cfg.CacheTTL.Seconds()),
		OnchainSource:            cfg.OnchainSource,
		SignalFundingHighEnabled: cfg.SignalFundingHighEnabled,
	}

	ctx.JSON(http.StatusOK, gin.H{
		"data": response,
	})
}
