package core

import (
	"crypto_dashboard/models"
	"fmt"
	"math"
	"strings"
)

// ========== Markdown 日报渲染 ==========

// 均线在日报中的展示顺序
var maOrder = []string{"MA30", "MA40", "MA120", "MA200", "MA365"}

// 信号图标对应的emoji
var signalEmoji = map[string]string{
	models.SignalIconRed:     "🔴",
	models.SignalIconYellow:  "🟡",
	models.SignalIconGreen:   "🟢",
	models.SignalIconNeutral: "😐",
	models.SignalIconCheck:   "✅",
	models.SignalIconWarn:    "⚠️",
}

// RenderMarkdown 将日报快照渲染为Markdown文档
func RenderMarkdown(r *models.Report) string {
	var lines []string

	lines = append(lines, "# 📊 加密货币每日决策日报")
	lines = append(lines, fmt.Sprintf("**更新时间**: %s\n", r.UpdatedAt))

	if r.Error != "" {
		lines = append(lines, fmt.Sprintf("> ⚠️ 本次数据采集失败: %s\n", r.Error))
	}

	if r.BTC != nil {
		lines = append(lines, renderIndicatorSection("BTC 行情概览", r.BTC)...)
	}
	if r.ETH != nil {
		lines = append(lines, renderIndicatorSection("ETH 行情概览", r.ETH)...)
	}

	// 市场情绪与资金
	lines = append(lines, "\n## 市场情绪与资金\n")
	lines = append(lines, "| 指标 | 数值 |")
	lines = append(lines, "|------|------|")
	if r.FearGreed != nil {
		lines = append(lines, fmt.Sprintf("| 恐慌贪婪指数 | %d (%s) |", r.FearGreed.Value, r.FearGreed.Label))
	}
	if r.ETF != nil {
		lines = append(lines, fmt.Sprintf("| BTC ETF 日净流入 | %s (%s) |", fmtFlow(&r.ETF.DailyFlowM), r.ETF.Date))
		lines = append(lines, fmt.Sprintf("| BTC ETF 近5日净流入 | %s |", fmtFlow(&r.ETF.Recent5DFlowM)))
	} else {
		lines = append(lines, "| BTC ETF 净流入 | N/A |")
	}
	if r.OpenInterest != nil {
		lines = append(lines, fmt.Sprintf("| Binance BTC 合约持仓 | %s (%s BTC) |",
			fmtOI(r.OpenInterest.OIUSD), fmtVal(r.OpenInterest.OIBTC, 0)))
	}
	lines = append(lines, fmt.Sprintf("| Binance 资金费率 | %s |", fmtFundingRate(r.FundingRate)))

	// 链上指标
	lines = append(lines, "\n## 链上指标\n")
	lines = append(lines, "| 指标 | 数值 | 参考区间 |")
	lines = append(lines, "|------|------|----------|")
	if r.Onchain != nil {
		lines = append(lines, fmt.Sprintf("| AHR999 | %s | <0.45 抄底, 0.45-1.2 定投, >1.2 观望 |", fmtVal(r.Onchain.AHR999, 4)))
		lines = append(lines, fmt.Sprintf("| NUPL | %s | <0 投降, 0-0.25 希望, 0.25-0.5 乐观, >0.75 贪婪 |", fmtVal(r.Onchain.NUPL, 4)))
		lines = append(lines, fmt.Sprintf("| MVRV Z-Score | %s | <0 低估, 0-2 正常, >7 高估 |", fmtVal(r.Onchain.MVRVZScore, 4)))
		if r.Onchain.MVRV != nil {
			lines = append(lines, fmt.Sprintf("| MVRV | %s |  |", fmtVal(r.Onchain.MVRV, 4)))
		}
		if r.Onchain.MarketCap != nil {
			lines = append(lines, fmt.Sprintf("| BTC 总市值 | $%.2fT |  |", *r.Onchain.MarketCap/1e12))
		}
	}

	// 系统判断
	lines = append(lines, "\n## 系统判断\n")
	for _, s := range r.Signals {
		emoji := signalEmoji[s.Icon]
		lines = append(lines, fmt.Sprintf("- %s %s", emoji, s.Text))
	}

	if r.HighProbabilityZone {
		lines = append(lines, "")
		lines = append(lines, "> 🚨 **系统进入极高胜率区间** — AHR999 < 0.45 且价格低于 MA200，"+
			"历史上此区间买入持有1年以上胜率极高。")
	}

	lines = append(lines, "\n---\n*数据仅供参考，不构成投资建议。*")
	return strings.Join(lines, "\n")
}

// renderIndicatorSection 渲染单个币种的行情表格
func renderIndicatorSection(title string, set *models.IndicatorSet) []string {
	var lines []string
	lines = append(lines, fmt.Sprintf("\n## %s\n", title))
	lines = append(lines, "| 指标 | 数值 |")
	lines = append(lines, "|------|------|")
	lines = append(lines, fmt.Sprintf("| 当前价格 | %s |", fmtPrice(&set.Price)))

	for _, name := range maOrder {
		val := set.MAs[name]
		diff := ""
		if val != nil && *val != 0 {
			diff = fmt.Sprintf(" (%+.1f%%)", (set.Price-*val) / *val*100)
		}
		lines = append(lines, fmt.Sprintf("| %s | %s%s |", name, fmtPrice(val), diff))
	}

	lines = append(lines, fmt.Sprintf("| 60日涨幅 | %s |", fmtPct(set.Change60D)))
	if set.Change24H != nil {
		lines = append(lines, fmt.Sprintf("| 24小时涨幅 | %s |", fmtPct(set.Change24H)))
	}
	return lines
}

// ========== 格式化辅助 ==========

// fmtPrice 价格格式化，万元以上不保留小数
func fmtPrice(v *float64) string {
	if v == nil || *v == 0 {
		return "N/A"
	}
	if *v >= 10000 {
		return "$" + comma(fmt.Sprintf("%.0f", *v))
	}
	return "$" + comma(fmt.Sprintf("%.2f", *v))
}

// fmtPct 百分比格式化，带正负号
func fmtPct(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%+.2f%%", *v)
}

// fmtFlow 资金流格式化(百万美元口径，超过10亿换算为B)
func fmtFlow(v *float64) string {
	if v == nil {
		return "N/A"
	}
	if math.Abs(*v) < 1000 {
		return fmt.Sprintf("%+.1fM", *v)
	}
	return fmt.Sprintf("%+.2fB", *v/1000)
}

// fmtOI 持仓量格式化(USD)
func fmtOI(v *float64) string {
	if v == nil {
		return "N/A"
	}
	if *v >= 1e9 {
		return fmt.Sprintf("$%.2fB", *v/1e9)
	}
	return fmt.Sprintf("$%.0fM", *v/1e6)
}

// fmtVal 固定小数位格式化
func fmtVal(v *float64, decimals int) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.*f", decimals, *v)
}

// fmtFundingRate 资金费率格式化
func fmtFundingRate(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return formatRate(*v) + "%"
}

// comma 为数字字符串的整数部分插入千分位分隔符
func comma(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if idx := strings.Index(s, "."); idx >= 0 {
		intPart = s[:idx]
		fracPart = s[idx:]
	}

	var b strings.Builder
	for i, ch := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(ch)
	}

	result := b.String() + fracPart
	if neg {
		return "-" + result
	}
	return result
}
