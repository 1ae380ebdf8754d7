package redis

import (
	"crypto_dashboard/models"
	"encoding/json"
	"time"
)

// 日报在Redis中的保留时长，仅作为重启后的冷启动兜底
const reportRetention = 24 * time.Hour

// 持久化的日报载体，带缓存写入时间
type cachedReport struct {
	Report    *models.Report `json:"report"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// SaveReport 持久化最新日报
func (c *Client) SaveReport(report *models.Report, fetchedAt time.Time) error {
	data, err := json.Marshal(&cachedReport{Report: report, FetchedAt: fetchedAt})
	if err != nil {
		return err
	}
	return c.rdb.Set(c.ctx, CacheKeyReport, data, reportRetention).Err()
}

// LoadReport 读取持久化的日报，不存在时返回nil
func (c *Client) LoadReport() (*models.Report, time.Time, error) {
	data, err := c.rdb.Get(c.ctx, CacheKeyReport).Result()
	if err != nil {
		return nil, time.Time{}, err
	}

	var cached cachedReport
	if err := json.Unmarshal([]byte(data), &cached); err != nil {
		return nil, time.Time{}, err
	}
	return cached.Report, cached.FetchedAt, nil
}
