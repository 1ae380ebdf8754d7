// Package onchain 提供链上指标(NUPL/MVRV等)的数据源。
//
// 指标本身由外部定时任务通过无头浏览器采集并发布为JSON快照，
// 本包只负责读取快照；market_cap缺失时可用blockchain.info补齐。
package onchain

import (
	"context"
	"crypto_dashboard/models"
)

// 数据源类型常量
const (
	SourceSnapshot = "snapshot" // 预生成的JSON快照
	SourceNone     = "none"     // 禁用链上指标
)

// Source 链上指标数据源接口，实现之间可由配置切换
type Source interface {
	// Fetch 获取链上指标快照，各字段独立可空
	Fetch(ctx context.Context) (*models.OnchainSnapshot, error)
}

// NullSource 空数据源，链上指标全部为nil
type NullSource struct{}

// Fetch 返回空快照
func (NullSource) Fetch(ctx context.Context) (*models.OnchainSnapshot, error) {
	return &models.OnchainSnapshot{}, nil
}
