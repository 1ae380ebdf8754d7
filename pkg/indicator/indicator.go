package indicator

import (
	"crypto_dashboard/models"
	"math"
	"time"
)

// ========== 行情指标计算 ==========

// MAPeriods 均线周期配置，标签与周期对应
var MAPeriods = map[string]int{
	"MA30":  30,
	"MA40":  40,
	"MA120": 120,
	"MA200": 200,
	"MA365": 365,
}

// BTC创世区块日期，AHR999币龄计算基准
var genesisDate = time.Date(2009, 1, 3, 0, 0, 0, 0, time.UTC)

// Calc 根据收盘价序列计算指标集合
// 序列按时间升序，价格取最后一根收盘价；各均线在序列长度不足时为nil
func Calc(closes []float64) *models.IndicatorSet {
	if len(closes) == 0 {
		return nil
	}

	mas := make(map[string]*float64, len(MAPeriods))
	for name, period := range MAPeriods {
		mas[name] = SMA(closes, period)
	}

	return &models.IndicatorSet{
		Price:     round2(closes[len(closes)-1]),
		MAs:       mas,
		Change60D: Change60D(closes),
	}
}

// SMA 计算末尾period个收盘价的简单移动平均，长度不足返回nil
func SMA(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}

	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}

	return models.Float64Ptr(round2(sum / float64(period)))
}

// Change60D 计算60日涨幅(%)，需要至少61个点(当前价与60天前收盘价)
func Change60D(closes []float64) *float64 {
	if len(closes) <= 60 {
		return nil
	}

	last := closes[len(closes)-1]
	base := closes[len(closes)-61]
	if base == 0 {
		return nil
	}

	return models.Float64Ptr(round2((last - base) / base * 100))
}

// AHR999 计算AHR999囤币指标
//
//	AHR999 = (当前价格 / 200日定投成本) × (当前价格 / 指数增长估值)
//	指数增长估值 = 10^(5.84 × log10(币龄天数) - 17.01)
//
// 序列为空、币龄非正或成本非正时返回nil，不会panic
func AHR999(closes []float64, now time.Time) *float64 {
	if len(closes) == 0 {
		return nil
	}

	current := closes[len(closes)-1]

	cost := mean(closes)
	if len(closes) >= 200 {
		cost = mean(closes[len(closes)-200:])
	}
	if cost <= 0 {
		return nil
	}

	days := int(now.Sub(genesisDate).Hours() / 24)
	if days <= 0 {
		return nil
	}

	expVal := math.Pow(10, 5.84*math.Log10(float64(days))-17.01)
	if expVal <= 0 || math.IsInf(expVal, 0) || math.IsNaN(expVal) {
		return nil
	}

	value := (current / cost) * (current / expVal)
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return nil
	}

	return models.Float64Ptr(round4(value))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
