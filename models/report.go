package models

// 信号图标常量
const (
	SignalIconRed     = "red"     // 强警示/抄底区间
	SignalIconYellow  = "yellow"  // 提示
	SignalIconGreen   = "green"   // 积极
	SignalIconNeutral = "neutral" // 中性
	SignalIconCheck   = "check"   // 正向确认
	SignalIconWarn    = "warn"    // 警告
)

// Kline 日线K线数据
type Kline struct {
	OpenTime  int64   `json:"open_time"`  // 开盘时间(毫秒)
	Open      float64 `json:"open"`       // 开盘价
	High      float64 `json:"high"`       // 最高价
	Low       float64 `json:"low"`        // 最低价
	Close     float64 `json:"close"`      // 收盘价
	Volume    float64 `json:"volume"`     // 成交量
	CloseTime int64   `json:"close_time"` // 收盘时间(毫秒)
}

// Closes 提取K线序列的收盘价
func Closes(klines []*Kline) []float64 {
	closes := make([]float64, 0, len(klines))
	for _, k := range klines {
		closes = append(closes, k.Close)
	}
	return closes
}

// IndicatorSet 单个币种的行情指标集合
// MAs中键为周期标签(MA30等)，序列长度不足时值为nil
type IndicatorSet struct {
	Price     float64             `json:"price"`      // 最新收盘价
	MAs       map[string]*float64 `json:"mas"`        // 各周期均线
	Change60D *float64            `json:"change_60d"` // 60日涨幅(%)
	Change24H *float64            `json:"change_24h"` // 24小时涨幅(%)
}

// SentimentSnapshot 恐慌贪婪指数快照
type SentimentSnapshot struct {
	Value int    `json:"value"` // 0-100
	Label string `json:"label"` // 分类标签，如 Extreme Fear
}

// ETFFlow BTC ETF 净流入数据(单位: 百万美元)
type ETFFlow struct {
	Date          string  `json:"date"`             // 最新数据行日期
	DailyFlowM    float64 `json:"daily_flow_m"`     // 当日净流入
	Recent5DFlowM float64 `json:"recent_5d_flow_m"` // 近5日净流入合计
}

// OpenInterest 合约持仓量
type OpenInterest struct {
	OIBTC *float64 `json:"oi_btc"` // 持仓量(BTC)
	OIUSD *float64 `json:"oi_usd"` // 持仓量(USD)，依赖当前价格
}

// OnchainSnapshot 链上指标快照，各字段独立可空
type OnchainSnapshot struct {
	AHR999      *float64 `json:"ahr999"`
	NUPL        *float64 `json:"nupl"`
	MVRV        *float64 `json:"mvrv"`
	MVRVZScore  *float64 `json:"mvrv_zscore"`
	MarketCap   *float64 `json:"market_cap"`
	RealizedCap *float64 `json:"realized_cap"`
}

// Signal 系统判断信号，生成后不可变
type Signal struct {
	Icon string `json:"icon"` // red, yellow, green, neutral, check, warn
	Text string `json:"text"` // 人类可读的判断描述
}

// Report 完整的决策日报快照，即缓存与对外服务的单元
type Report struct {
	UpdatedAt           string             `json:"updated_at"` // UTC+8 格式化时间
	BTC                 *IndicatorSet      `json:"btc"`
	ETH                 *IndicatorSet      `json:"eth"`
	FearGreed           *SentimentSnapshot `json:"fear_greed"`
	ETF                 *ETFFlow           `json:"etf"`
	OpenInterest        *OpenInterest      `json:"open_interest"`
	FundingRate         *float64           `json:"funding_rate"` // 资金费率(%)
	Onchain             *OnchainSnapshot   `json:"onchain"`
	Signals             []*Signal          `json:"signals"`
	HighProbabilityZone bool               `json:"high_probability_zone"`
	Error               string             `json:"error,omitempty"` // 采集失败时携带错误描述
}

// Float64Ptr 返回float64指针，用于构造可空字段
func Float64Ptr(v float64) *float64 {
	return &v
}
