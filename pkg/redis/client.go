package redis

import (
	"context"
	"crypto_dashboard/pkg/config"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type Client struct {
	rdb *redis.Client
	ctx context.Context
}

var GlobalRedisClient *Client

// InitRedis 初始化Redis客户端
// Redis仅用于跨重启保留上一份日报，连接失败不是致命错误
func InitRedis() error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", config.GlobalConfig.RedisHost, config.GlobalConfig.RedisPort),
		Password: config.GlobalConfig.RedisPassword,
		DB:       config.GlobalConfig.RedisDB,
	})

	ctx := context.Background()

	// 测试连接
	_, err := rdb.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("redis连接失败: %v", err)
	}

	GlobalRedisClient = &Client{
		rdb: rdb,
		ctx: ctx,
	}

	logrus.Info("Redis连接成功")
	return nil
}

// Redis键名常量
const (
	CacheKeyReport = "cache:report" // 最新日报快照
)
