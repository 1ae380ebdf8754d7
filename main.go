package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto_dashboard/core"
	"crypto_dashboard/models"
	"crypto_dashboard/pkg/binance"
	"crypto_dashboard/pkg/config"
	"crypto_dashboard/pkg/etf"
	"crypto_dashboard/pkg/onchain"
	"crypto_dashboard/pkg/redis"
	"crypto_dashboard/pkg/sentiment"
	"crypto_dashboard/pkg/telegram"
	"crypto_dashboard/pkg/websocket"
	"crypto_dashboard/servers"

	"github.com/sirupsen/logrus"
)

func main() {
	// 设置日志级别
	logrus.SetLevel(logrus.InfoLevel)
	logrus.Info("启动加密货币决策日报服务...")

	// 加载配置
	config.LoadConfig()
	cfg := config.GlobalConfig

	// 初始化Redis(可选，仅用于重启后恢复上一份日报)
	if cfg.RedisEnabled {
		if err := redis.InitRedis(); err != nil {
			logrus.Warnf("Redis初始化失败，日报将不做持久化: %v", err)
		}
	}

	// 初始化Telegram客户端
	if err := telegram.InitTelegram(); err != nil {
		logrus.Errorf("Telegram init fail: %v", err)
	}

	// 初始化数据源客户端
	binanceConfig := binance.DefaultConfig()
	binanceConfig.Timeout = cfg.HTTPTimeout
	binanceClient, err := binance.New(binanceConfig)
	if err != nil {
		logrus.Fatalf("Binance客户端初始化失败: %v", err)
	}

	sentimentClient := sentiment.New("", cfg.HTTPTimeout)
	etfClient := etf.New("", binanceConfig.UserAgent, cfg.HTTPTimeout)
	onchainSource := buildOnchainSource(cfg)

	// 初始化采集器与日报缓存管理器
	collector := core.NewCollector(binanceClient, sentimentClient, etfClient, onchainSource,
		cfg.KlineDays, cfg.SignalFundingHighEnabled)
	reportManager := core.NewReportManager(collector.Collect, cfg.CacheTTL)

	// 从Redis恢复上一份日报，冷启动时也能立刻对外提供数据
	if redis.GlobalRedisClient != nil {
		if report, fetchedAt, err := redis.GlobalRedisClient.LoadReport(); err == nil {
			reportManager.Restore(report, fetchedAt)
			logrus.Infof("已从Redis恢复日报: %s", report.UpdatedAt)
		}
	}

	// 初始化WebSocket管理器
	wsManager := websocket.NewManager()

	// 刷新成功后: 持久化、广播、推送提醒
	reportManager.OnRefresh(func(report *models.Report) {
		if redis.GlobalRedisClient != nil {
			if err := redis.GlobalRedisClient.SaveReport(report, time.Now()); err != nil {
				logrus.Errorf("持久化日报失败: %v", err)
			}
		}
		wsManager.BroadcastReport(report)
	})
	reportManager.OnRefresh(notifyHighProbability())
	if cfg.TelegramPushOnRefresh {
		reportManager.OnRefresh(func(report *models.Report) {
			if telegram.GlobalTelegramClient == nil {
				return
			}
			if err := telegram.GlobalTelegramClient.SendReport(core.RenderMarkdown(report)); err != nil {
				logrus.Errorf("推送日报失败: %v", err)
			}
		})
	}

	// Telegram /report 命令回复最新日报
	if telegram.GlobalTelegramClient != nil {
		telegram.GlobalTelegramClient.SetReportProvider(func() string {
			if report := reportManager.Cached(); report != nil {
				return core.RenderMarkdown(report)
			}
			return ""
		})
	}

	// 启动时预热一次采集
	if cfg.WarmOnStartup {
		go func() {
			reportManager.Refresh(context.Background())
			logrus.Info("初始日报采集完成")
		}()
	}

	// 创建HTTP服务器
	server := servers.NewHTTPServer(reportManager, wsManager)
	go func() {
		server.Start()
	}()

	logrus.Info("加密货币决策日报服务启动完成!")

	// 优雅关闭
	gracefulShutdown()
}

// buildOnchainSource 根据配置选择链上指标数据源
func buildOnchainSource(cfg *config.Config) onchain.Source {
	switch cfg.OnchainSource {
	case onchain.SourceSnapshot:
		if cfg.OnchainSnapshotURL == "" {
			logrus.Warn("未配置链上快照地址，链上指标将为空")
			return onchain.NullSource{}
		}
		return onchain.NewSnapshotSource(cfg.OnchainSnapshotURL, cfg.HTTPTimeout)
	case onchain.SourceNone:
		return onchain.NullSource{}
	default:
		logrus.Warnf("未知的链上数据源类型: %s，链上指标将为空", cfg.OnchainSource)
		return onchain.NullSource{}
	}
}

// notifyHighProbability 进入极高胜率区间时推送Telegram提醒，区间内不重复推送
func notifyHighProbability() func(*models.Report) {
	var inZone bool
	return func(report *models.Report) {
		if report.HighProbabilityZone && !inZone {
			if telegram.GlobalTelegramClient != nil {
				if err := telegram.GlobalTelegramClient.SendHighProbabilityAlert(); err != nil {
					logrus.Errorf("推送极高胜率提醒失败: %v", err)
				}
			}
		}
		inZone = report.HighProbabilityZone
	}
}

// gracefulShutdown 优雅关闭
func gracefulShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("正在关闭日报服务...")

	// 发送服务停止的Telegram通知
	if telegram.GlobalTelegramClient != nil {
		if err := telegram.GlobalTelegramClient.SendServiceStatus("stopped", "日报服务已关闭"); err != nil {
			logrus.Errorf("发送关闭通知失败: %v", err)
		}
	}

	logrus.Info("日报服务已关闭")
}
