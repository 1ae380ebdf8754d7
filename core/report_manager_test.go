package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"crypto_dashboard/models"
)

func TestReportManagerTTL(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	calls := 0
	collect := func(ctx context.Context) (*models.Report, error) {
		calls++
		return &models.Report{UpdatedAt: FormatTime(now)}, nil
	}

	m := NewReportManager(collect, 5*time.Minute)
	m.nowFunc = func() time.Time { return now }

	ctx := context.Background()

	first := m.Get(ctx)
	if calls != 1 {
		t.Fatalf("首次读取应触发1次采集, 实际 %d", calls)
	}

	// TTL内重复读取命中缓存，不重新采集
	now = now.Add(4 * time.Minute)
	second := m.Get(ctx)
	if calls != 1 {
		t.Errorf("TTL内读取不应重新采集, 实际采集 %d 次", calls)
	}
	if second != first {
		t.Error("TTL内读取应返回同一份缓存日报")
	}

	// TTL过期后恰好触发1次重新采集
	now = now.Add(2 * time.Minute)
	third := m.Get(ctx)
	if calls != 2 {
		t.Errorf("TTL过期后应采集1次, 实际共采集 %d 次", calls)
	}
	if third == first {
		t.Error("TTL过期后应返回新日报")
	}
}

func TestReportManagerRefreshFailure(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	fail := false
	collect := func(ctx context.Context) (*models.Report, error) {
		if fail {
			return nil, errors.New("获取BTC日线失败")
		}
		return &models.Report{UpdatedAt: FormatTime(now), HighProbabilityZone: true}, nil
	}

	m := NewReportManager(collect, 5*time.Minute)
	m.nowFunc = func() time.Time { return now }

	ctx := context.Background()
	good := m.Refresh(ctx)
	if good.Error != "" {
		t.Fatalf("成功采集不应携带错误: %q", good.Error)
	}

	// 采集失败: 返回带错误的旧日报副本，缓存本身不变
	fail = true
	now = now.Add(10 * time.Minute)
	degraded := m.Get(ctx)
	if degraded.Error != "获取BTC日线失败" {
		t.Errorf("降级日报应携带错误信息, 实际 %q", degraded.Error)
	}
	if !degraded.HighProbabilityZone {
		t.Error("降级日报应保留旧数据")
	}
	if cached := m.Cached(); cached.Error != "" {
		t.Error("缓存中的日报不应被错误污染")
	}

	// 失败不更新fetchedAt，恢复后下次读取立即重试成功
	fail = false
	recovered := m.Get(ctx)
	if recovered.Error != "" {
		t.Errorf("恢复后读取不应携带错误: %q", recovered.Error)
	}
}

func TestReportManagerNeverSucceeded(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	collect := func(ctx context.Context) (*models.Report, error) {
		return nil, errors.New("网络不可用")
	}

	m := NewReportManager(collect, 5*time.Minute)
	m.nowFunc = func() time.Time { return now }

	report := m.Get(context.Background())
	if report == nil {
		t.Fatal("从未成功时也应返回日报")
	}
	if report.Error != "网络不可用" {
		t.Errorf("错误信息不符: %q", report.Error)
	}
	if report.UpdatedAt == "" {
		t.Error("错误日报也应携带更新时间")
	}
	if m.Cached() != nil {
		t.Error("从未成功时缓存应保持为nil")
	}
}

func TestReportManagerRestore(t *testing.T) {
	collect := func(ctx context.Context) (*models.Report, error) {
		return &models.Report{}, nil
	}
	m := NewReportManager(collect, 5*time.Minute)

	restored := &models.Report{UpdatedAt: "2024-06-01 08:00 CST"}
	m.Restore(restored, time.Now().Add(-time.Hour))
	if m.Cached() != restored {
		t.Fatal("恢复后缓存应为恢复的日报")
	}

	// 已有缓存时恢复不覆盖
	other := &models.Report{UpdatedAt: "2024-06-01 09:00 CST"}
	m.Restore(other, time.Now())
	if m.Cached() != restored {
		t.Error("已有缓存时Restore不应覆盖")
	}

	m.Restore(nil, time.Now())
}

func TestReportManagerOnRefresh(t *testing.T) {
	collect := func(ctx context.Context) (*models.Report, error) {
		return &models.Report{}, nil
	}
	m := NewReportManager(collect, 5*time.Minute)

	var got *models.Report
	m.OnRefresh(func(r *models.Report) { got = r })

	report := m.Refresh(context.Background())
	if got != report {
		t.Error("刷新成功后应触发回调并传入新日报")
	}
}
