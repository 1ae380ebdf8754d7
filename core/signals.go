package core

import (
	"crypto_dashboard/models"
	"fmt"
	"strconv"
)

// ========== 系统判断信号 ==========

// AHR999 区间阈值
const (
	AHR999BuyThreshold  = 0.45 // 低于此值为抄底区间
	AHR999HoldThreshold = 1.2  // 高于此值为观望区间
)

// 资金费率信号阈值(%)
const (
	FundingNegativeThreshold = -0.01 // 低于此值提示空头占优
	FundingHighThreshold     = 0.05  // 高于此值提示多头杠杆较重(可配置开关)
)

// ETF 5日净流入信号阈值(百万美元)
const ETFFlowThreshold = 500

// BuildSignals 根据已计算的指标生成系统判断信号
// 各规则独立评估，互不排斥；输入为nil的指标对应规则跳过
func BuildSignals(btc *models.IndicatorSet, fng *models.SentimentSnapshot, fundingRate *float64, etf *models.ETFFlow, ahr999 *float64, fundingHighEnabled bool) []*models.Signal {
	var signals []*models.Signal

	// 价格与MA200关系
	if btc != nil {
		if ma200 := btc.MAs["MA200"]; ma200 != nil {
			if btc.Price >= *ma200 {
				signals = append(signals, &models.Signal{Icon: models.SignalIconCheck, Text: "BTC 价格高于 MA200"})
			} else {
				signals = append(signals, &models.Signal{Icon: models.SignalIconWarn, Text: "BTC 价格低于 MA200"})
			}
		}
	}

	// AHR999 区间
	if ahr999 != nil {
		switch {
		case *ahr999 < AHR999BuyThreshold:
			signals = append(signals, &models.Signal{
				Icon: models.SignalIconRed,
				Text: fmt.Sprintf("AHR999 = %.4f < 0.45 (抄底区间)", *ahr999),
			})
		case *ahr999 < AHR999HoldThreshold:
			signals = append(signals, &models.Signal{
				Icon: models.SignalIconYellow,
				Text: fmt.Sprintf("AHR999 = %.4f (定投区间)", *ahr999),
			})
		default:
			signals = append(signals, &models.Signal{
				Icon: models.SignalIconGreen,
				Text: fmt.Sprintf("AHR999 = %.4f > 1.2 (观望区间)", *ahr999),
			})
		}
	}

	// 恐慌贪婪指数分档，5个连续区间覆盖[0,100]
	if fng != nil {
		v := fng.Value
		switch {
		case v <= 25:
			signals = append(signals, &models.Signal{Icon: models.SignalIconRed, Text: fmt.Sprintf("市场极度恐慌 (FGI=%d)", v)})
		case v <= 45:
			signals = append(signals, &models.Signal{Icon: models.SignalIconYellow, Text: fmt.Sprintf("市场恐慌 (FGI=%d)", v)})
		case v <= 55:
			signals = append(signals, &models.Signal{Icon: models.SignalIconNeutral, Text: fmt.Sprintf("市场中性 (FGI=%d)", v)})
		case v <= 75:
			signals = append(signals, &models.Signal{Icon: models.SignalIconGreen, Text: fmt.Sprintf("市场贪婪 (FGI=%d)", v)})
		default:
			signals = append(signals, &models.Signal{Icon: models.SignalIconRed, Text: fmt.Sprintf("市场极度贪婪 (FGI=%d)", v)})
		}
	}

	// 资金费率
	if fundingRate != nil {
		rate := formatRate(*fundingRate)
		if *fundingRate < FundingNegativeThreshold {
			signals = append(signals, &models.Signal{
				Icon: models.SignalIconRed,
				Text: fmt.Sprintf("资金费率为负 (%s%%)，空头占优", rate),
			})
		} else if fundingHighEnabled && *fundingRate > FundingHighThreshold {
			signals = append(signals, &models.Signal{
				Icon: models.SignalIconYellow,
				Text: fmt.Sprintf("资金费率偏高 (%s%%)，多头杠杆较重", rate),
			})
		}
	}

	// ETF 近5日净流入
	if etf != nil {
		f5 := etf.Recent5DFlowM
		if f5 < -ETFFlowThreshold {
			signals = append(signals, &models.Signal{
				Icon: models.SignalIconRed,
				Text: fmt.Sprintf("ETF 近5日大幅净流出 (%+.1fM)", f5),
			})
		} else if f5 > ETFFlowThreshold {
			signals = append(signals, &models.Signal{
				Icon: models.SignalIconGreen,
				Text: fmt.Sprintf("ETF 近5日大幅净流入 (%+.1fM)", f5),
			})
		}
	}

	return signals
}

// HighProbabilityZone 极高胜率区间判定
// AHR999 < 0.45 且当前价格低于MA200时为true，任一指标缺失则为false
func HighProbabilityZone(ahr999 *float64, price float64, ma200 *float64) bool {
	return ahr999 != nil && *ahr999 < AHR999BuyThreshold &&
		ma200 != nil && price < *ma200
}

// formatRate 格式化费率，去除尾随零
func formatRate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
