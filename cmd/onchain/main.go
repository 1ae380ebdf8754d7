package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"path/filepath"
	"time"

	"crypto_dashboard/models"
	"crypto_dashboard/pkg/onchain"

	"github.com/sirupsen/logrus"
)

// snapshotFile 链上指标快照文件格式
// NUPL/MVRV等字段由外部抓取流程写入，这里只负责补全市值并刷新时间戳
type snapshotFile struct {
	models.OnchainSnapshot
	UpdatedAt string `json:"updated_at"`
}

func main() {
	path := flag.String("o", filepath.Join("data", "onchain.json"), "快照文件路径")
	flag.Parse()

	logrus.SetLevel(logrus.InfoLevel)
	logrus.Info("开始更新链上指标快照...")

	snapshot := &snapshotFile{}
	if data, err := os.ReadFile(*path); err == nil {
		if err := json.Unmarshal(data, snapshot); err != nil {
			logrus.Warnf("解析已有快照失败，将重建: %v", err)
			snapshot = &snapshotFile{}
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	marketCap, err := onchain.FetchMarketCap(ctx, 15*time.Second)
	if err != nil {
		logrus.Errorf("获取BTC市值失败: %v", err)
	} else {
		snapshot.MarketCap = models.Float64Ptr(marketCap)
		logrus.Infof("BTC市值: %.0f", marketCap)
	}

	cst := time.FixedZone("CST", 8*60*60)
	snapshot.UpdatedAt = time.Now().In(cst).Format("2006-01-02 15:04 CST")

	if err := os.MkdirAll(filepath.Dir(*path), 0o755); err != nil {
		logrus.Fatalf("创建快照目录失败: %v", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		logrus.Fatalf("序列化快照失败: %v", err)
	}
	if err := os.WriteFile(*path, data, 0o644); err != nil {
		logrus.Fatalf("写入快照文件失败: %v", err)
	}
	logrus.Infof("链上指标快照已更新: %s", *path)
}
