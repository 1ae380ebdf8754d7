package core

import (
	"context"
	"crypto_dashboard/models"
	"crypto_dashboard/pkg/binance"
	"crypto_dashboard/pkg/etf"
	"crypto_dashboard/pkg/indicator"
	"crypto_dashboard/pkg/onchain"
	"crypto_dashboard/pkg/sentiment"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// 采集的交易对
const (
	SymbolBTC        = "BTCUSDT"
	SymbolETH        = "ETHUSDT"
	FuturesSymbolBTC = "BTCUSDT"
)

// 日报时间戳使用东八区
var cstZone = time.FixedZone("CST", 8*60*60)

// FormatTime 格式化日报时间戳(UTC+8)
func FormatTime(t time.Time) string {
	return t.In(cstZone).Format("2006-01-02 15:04") + " CST"
}

// Collector 日报采集器，聚合所有上游数据源
type Collector struct {
	binanceClient   *binance.Client
	sentimentClient *sentiment.Client
	etfClient       *etf.Client
	onchainSource   onchain.Source

	klineDays          int
	fundingHighEnabled bool
}

// NewCollector 创建日报采集器
func NewCollector(binanceClient *binance.Client, sentimentClient *sentiment.Client, etfClient *etf.Client, onchainSource onchain.Source, klineDays int, fundingHighEnabled bool) *Collector {
	if onchainSource == nil {
		onchainSource = onchain.NullSource{}
	}
	return &Collector{
		binanceClient:      binanceClient,
		sentimentClient:    sentimentClient,
		etfClient:          etfClient,
		onchainSource:      onchainSource,
		klineDays:          klineDays,
		fundingHighEnabled: fundingHighEnabled,
	}
}

// Collect 执行一次完整采集，生成日报快照
// 价格序列获取失败时整体失败(快速失败)；其余数据源各自降级为空值
func (c *Collector) Collect(ctx context.Context) (*models.Report, error) {
	logrus.Info("开始采集日报数据...")

	// BTC/ETH 日线与指标，价格数据是日报的根基，失败直接上抛
	btcKlines, err := c.binanceClient.FetchDailyKlines(ctx, SymbolBTC, c.klineDays)
	if err != nil {
		return nil, fmt.Errorf("获取BTC日线失败: %w", err)
	}
	if len(btcKlines) == 0 {
		return nil, fmt.Errorf("BTC日线数据为空")
	}
	btcCloses := models.Closes(btcKlines)
	btc := indicator.Calc(btcCloses)

	ethKlines, err := c.binanceClient.FetchDailyKlines(ctx, SymbolETH, c.klineDays)
	if err != nil {
		return nil, fmt.Errorf("获取ETH日线失败: %w", err)
	}
	if len(ethKlines) == 0 {
		return nil, fmt.Errorf("ETH日线数据为空")
	}
	eth := indicator.Calc(models.Closes(ethKlines))

	logrus.Infof("BTC: $%.2f, ETH: $%.2f", btc.Price, eth.Price)

	// 24小时涨跌幅，失败降级为nil
	if change, err := c.binanceClient.Fetch24hChange(ctx, SymbolBTC); err != nil {
		logrus.Warnf("获取BTC 24小时涨跌幅失败: %v", err)
	} else {
		btc.Change24H = models.Float64Ptr(change)
	}
	if change, err := c.binanceClient.Fetch24hChange(ctx, SymbolETH); err != nil {
		logrus.Warnf("获取ETH 24小时涨跌幅失败: %v", err)
	} else {
		eth.Change24H = models.Float64Ptr(change)
	}

	// 恐慌贪婪指数，失败降级为占位值
	fng, err := c.sentimentClient.FetchIndex(ctx)
	if err != nil {
		logrus.Warnf("获取恐慌贪婪指数失败: %v", err)
		fng = &models.SentimentSnapshot{Value: 0, Label: "N/A"}
	}

	// ETF净流入，失败降级为nil
	etfFlow, err := c.etfClient.FetchFlows(ctx)
	if err != nil {
		logrus.Warnf("获取ETF净流入失败: %v", err)
		etfFlow = nil
	}

	// 合约持仓，依赖已计算的BTC价格
	oi, err := c.binanceClient.FetchOpenInterest(ctx, FuturesSymbolBTC, btc.Price)
	if err != nil {
		logrus.Warnf("获取合约持仓失败: %v", err)
		oi = &models.OpenInterest{}
	}

	// 资金费率
	var fundingRate *float64
	if rate, err := c.binanceClient.FetchFundingRate(ctx, FuturesSymbolBTC); err != nil {
		logrus.Warnf("获取资金费率失败: %v", err)
	} else {
		fundingRate = models.Float64Ptr(rate)
	}

	// AHR999 由BTC价格序列本地计算
	ahr999 := indicator.AHR999(btcCloses, time.Now())

	// 链上指标
	onchainData, err := c.onchainSource.Fetch(ctx)
	if err != nil {
		logrus.Warnf("获取链上指标失败: %v", err)
		onchainData = &models.OnchainSnapshot{}
	}
	onchainData.AHR999 = ahr999

	// 市值兜底: 快照缺失时从blockchain.info补齐，链上指标禁用时跳过
	if _, disabled := c.onchainSource.(onchain.NullSource); !disabled && onchainData.MarketCap == nil {
		if marketCap, err := onchain.FetchMarketCap(ctx, 0); err != nil {
			logrus.Debugf("获取市值兜底数据失败: %v", err)
		} else {
			onchainData.MarketCap = models.Float64Ptr(marketCap)
		}
	}

	signals := BuildSignals(btc, fng, fundingRate, etfFlow, ahr999, c.fundingHighEnabled)
	highProb := HighProbabilityZone(ahr999, btc.Price, btc.MAs["MA200"])

	report := &models.Report{
		UpdatedAt:           FormatTime(time.Now()),
		BTC:                 btc,
		ETH:                 eth,
		FearGreed:           fng,
		ETF:                 etfFlow,
		OpenInterest:        oi,
		FundingRate:         fundingRate,
		Onchain:             onchainData,
		Signals:             signals,
		HighProbabilityZone: highProb,
	}

	logrus.Infof("日报采集完成: %d条信号, 极高胜率区间=%v", len(signals), highProb)
	return report, nil
}
