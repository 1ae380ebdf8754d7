package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"crypto_dashboard/core"
	"crypto_dashboard/pkg/binance"
	"crypto_dashboard/pkg/config"
	"crypto_dashboard/pkg/etf"
	"crypto_dashboard/pkg/onchain"
	"crypto_dashboard/pkg/sentiment"
	"crypto_dashboard/pkg/telegram"

	"github.com/sirupsen/logrus"
)

// 批量模式: 采集一次数据，生成Markdown日报文件，可选推送Telegram
func main() {
	logrus.SetLevel(logrus.InfoLevel)
	logrus.Info("开始生成加密货币决策日报...")

	config.LoadConfig()
	cfg := config.GlobalConfig

	binanceConfig := binance.DefaultConfig()
	binanceConfig.Timeout = cfg.HTTPTimeout
	binanceClient, err := binance.New(binanceConfig)
	if err != nil {
		logrus.Fatalf("Binance客户端初始化失败: %v", err)
	}

	var onchainSource onchain.Source = onchain.NullSource{}
	if cfg.OnchainSource == onchain.SourceSnapshot && cfg.OnchainSnapshotURL != "" {
		onchainSource = onchain.NewSnapshotSource(cfg.OnchainSnapshotURL, cfg.HTTPTimeout)
	}

	collector := core.NewCollector(binanceClient,
		sentiment.New("", cfg.HTTPTimeout),
		etf.New("", binanceConfig.UserAgent, cfg.HTTPTimeout),
		onchainSource,
		cfg.KlineDays, cfg.SignalFundingHighEnabled)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	report, err := collector.Collect(ctx)
	if err != nil {
		logrus.Fatalf("采集数据失败: %v", err)
	}

	markdown := core.RenderMarkdown(report)

	if err := os.MkdirAll(cfg.ReportOutputDir, 0o755); err != nil {
		logrus.Fatalf("创建输出目录失败: %v", err)
	}

	cst := time.FixedZone("CST", 8*60*60)
	filename := fmt.Sprintf("report_%s.md", time.Now().In(cst).Format("20060102_1504"))
	outputPath := filepath.Join(cfg.ReportOutputDir, filename)
	if err := os.WriteFile(outputPath, []byte(markdown), 0o644); err != nil {
		logrus.Fatalf("写入日报文件失败: %v", err)
	}
	logrus.Infof("日报已生成: %s", outputPath)

	// 配置了Telegram则同时推送
	if err := telegram.InitTelegram(); err != nil {
		logrus.Errorf("Telegram init fail: %v", err)
	}
	if telegram.GlobalTelegramClient != nil {
		if err := telegram.GlobalTelegramClient.SendReport(markdown); err != nil {
			logrus.Errorf("推送日报失败: %v", err)
		} else {
			logrus.Info("日报已推送到Telegram")
		}
	}
}
