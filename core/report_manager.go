package core

import (
	"context"
	"crypto_dashboard/models"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// CollectFunc 日报采集函数
type CollectFunc func(ctx context.Context) (*models.Report, error)

// ReportManager 单槽位日报缓存管理器
// 读路径受TTL门控: 缓存未过期直接返回，过期则重新采集；
// 刷新路径无条件重新采集。替换在锁内完成，读方不会看到半成品日报。
type ReportManager struct {
	mu        sync.RWMutex
	report    *models.Report
	fetchedAt time.Time

	ttl     time.Duration
	collect CollectFunc

	// 刷新成功后的回调(WebSocket广播、Telegram推送等)，锁外调用
	onRefresh []func(*models.Report)

	nowFunc func() time.Time
}

// NewReportManager 创建日报缓存管理器
func NewReportManager(collect CollectFunc, ttl time.Duration) *ReportManager {
	return &ReportManager{
		ttl:     ttl,
		collect: collect,
		nowFunc: time.Now,
	}
}

// OnRefresh 注册刷新成功回调
func (m *ReportManager) OnRefresh(fn func(*models.Report)) {
	m.onRefresh = append(m.onRefresh, fn)
}

// Cached 返回当前缓存的日报，可能为nil
func (m *ReportManager) Cached() *models.Report {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.report
}

// Restore 恢复缓存(从Redis等外部存储)，fetchedAt记为过去以便下次读取触发刷新
func (m *ReportManager) Restore(report *models.Report, fetchedAt time.Time) {
	if report == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.report == nil {
		m.report = report
		m.fetchedAt = fetchedAt
	}
}

// Get 获取日报: 缓存在TTL内直接返回，否则触发一次重新采集
func (m *ReportManager) Get(ctx context.Context) *models.Report {
	m.mu.RLock()
	if m.report != nil && m.nowFunc().Sub(m.fetchedAt) < m.ttl {
		report := m.report
		m.mu.RUnlock()
		return report
	}
	m.mu.RUnlock()

	return m.Refresh(ctx)
}

// Refresh 无条件重新采集并原子替换缓存
// 采集失败时返回携带error字段的旧日报副本(缓存保留，下次读取重试)；
// 从未成功过则返回仅含错误信息的日报
func (m *ReportManager) Refresh(ctx context.Context) *models.Report {
	report, err := m.collect(ctx)
	if err != nil {
		logrus.Errorf("日报采集失败: %v", err)

		m.mu.RLock()
		stale := m.report
		m.mu.RUnlock()

		if stale != nil {
			degraded := *stale
			degraded.Error = err.Error()
			return &degraded
		}
		return &models.Report{
			UpdatedAt: FormatTime(m.nowFunc()),
			Error:     err.Error(),
		}
	}

	m.mu.Lock()
	m.report = report
	m.fetchedAt = m.nowFunc()
	m.mu.Unlock()

	for _, fn := range m.onRefresh {
		fn(report)
	}

	return report
}
