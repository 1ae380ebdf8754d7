package core_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"crypto_dashboard/core"
	"crypto_dashboard/models"
	"crypto_dashboard/pkg/indicator"
)

func indicatorSet(price float64, ma200 *float64) *models.IndicatorSet {
	return &models.IndicatorSet{
		Price: price,
		MAs:   map[string]*float64{"MA200": ma200},
	}
}

func findSignal(signals []*models.Signal, substr string) *models.Signal {
	for _, s := range signals {
		if strings.Contains(s.Text, substr) {
			return s
		}
	}
	return nil
}

func TestBuildSignalsMA200(t *testing.T) {
	ma200 := models.Float64Ptr(50000.0)

	signals := core.BuildSignals(indicatorSet(60000, ma200), nil, nil, nil, nil, true)
	s := findSignal(signals, "MA200")
	if s == nil {
		t.Fatal("未生成MA200信号")
	}
	if s.Icon != models.SignalIconCheck || s.Text != "BTC 价格高于 MA200" {
		t.Errorf("价格高于MA200时信号错误: %+v", s)
	}

	signals = core.BuildSignals(indicatorSet(40000, ma200), nil, nil, nil, nil, true)
	s = findSignal(signals, "MA200")
	if s == nil || s.Icon != models.SignalIconWarn || s.Text != "BTC 价格低于 MA200" {
		t.Errorf("价格低于MA200时信号错误: %+v", s)
	}

	// MA200缺失时不生成该信号
	signals = core.BuildSignals(indicatorSet(40000, nil), nil, nil, nil, nil, true)
	if findSignal(signals, "MA200") != nil {
		t.Error("MA200缺失时不应生成价格信号")
	}
}

func TestBuildSignalsAHR999(t *testing.T) {
	cases := []struct {
		value float64
		icon  string
		text  string
	}{
		{0.3, models.SignalIconRed, "AHR999 = 0.3000 < 0.45 (抄底区间)"},
		{0.45, models.SignalIconYellow, "AHR999 = 0.4500 (定投区间)"},
		{0.8, models.SignalIconYellow, "AHR999 = 0.8000 (定投区间)"},
		{1.2, models.SignalIconGreen, "AHR999 = 1.2000 > 1.2 (观望区间)"},
		{2.5, models.SignalIconGreen, "AHR999 = 2.5000 > 1.2 (观望区间)"},
	}

	for _, c := range cases {
		signals := core.BuildSignals(nil, nil, nil, nil, models.Float64Ptr(c.value), true)
		s := findSignal(signals, "AHR999")
		if s == nil {
			t.Fatalf("AHR999=%v 未生成信号", c.value)
		}
		if s.Icon != c.icon || s.Text != c.text {
			t.Errorf("AHR999=%v 信号错误: 期望 [%s %q], 实际 [%s %q]", c.value, c.icon, c.text, s.Icon, s.Text)
		}
	}

	if len(core.BuildSignals(nil, nil, nil, nil, nil, true)) != 0 {
		t.Error("所有指标为空时不应生成信号")
	}
}

func TestBuildSignalsFearGreed(t *testing.T) {
	cases := []struct {
		value int
		icon  string
		label string
	}{
		{0, models.SignalIconRed, "市场极度恐慌"},
		{25, models.SignalIconRed, "市场极度恐慌"},
		{26, models.SignalIconYellow, "市场恐慌"},
		{45, models.SignalIconYellow, "市场恐慌"},
		{46, models.SignalIconNeutral, "市场中性"},
		{55, models.SignalIconNeutral, "市场中性"},
		{56, models.SignalIconGreen, "市场贪婪"},
		{75, models.SignalIconGreen, "市场贪婪"},
		{76, models.SignalIconRed, "市场极度贪婪"},
		{100, models.SignalIconRed, "市场极度贪婪"},
	}

	for _, c := range cases {
		fng := &models.SentimentSnapshot{Value: c.value}
		signals := core.BuildSignals(nil, fng, nil, nil, nil, true)
		s := findSignal(signals, "FGI")
		if s == nil {
			t.Fatalf("FGI=%d 未生成信号", c.value)
		}
		want := fmt.Sprintf("%s (FGI=%d)", c.label, c.value)
		if s.Icon != c.icon || s.Text != want {
			t.Errorf("FGI=%d 信号错误: 期望 [%s %q], 实际 [%s %q]", c.value, c.icon, want, s.Icon, s.Text)
		}
	}

	// 每个值只落在一个分档
	for v := 0; v <= 100; v++ {
		signals := core.BuildSignals(nil, &models.SentimentSnapshot{Value: v}, nil, nil, nil, true)
		count := 0
		for _, s := range signals {
			if strings.Contains(s.Text, "FGI") {
				count++
			}
		}
		if count != 1 {
			t.Errorf("FGI=%d 应生成且只生成1个情绪信号, 实际 %d", v, count)
		}
	}
}

func TestBuildSignalsFundingRate(t *testing.T) {
	signals := core.BuildSignals(nil, nil, models.Float64Ptr(-0.02), nil, nil, true)
	s := findSignal(signals, "资金费率")
	if s == nil || s.Icon != models.SignalIconRed {
		t.Fatalf("负费率信号错误: %+v", s)
	}
	if s.Text != "资金费率为负 (-0.02%)，空头占优" {
		t.Errorf("负费率文案错误: %q", s.Text)
	}

	signals = core.BuildSignals(nil, nil, models.Float64Ptr(0.08), nil, nil, true)
	s = findSignal(signals, "资金费率")
	if s == nil || s.Icon != models.SignalIconYellow {
		t.Fatalf("高费率信号错误: %+v", s)
	}
	if s.Text != "资金费率偏高 (0.08%)，多头杠杆较重" {
		t.Errorf("高费率文案错误: %q", s.Text)
	}

	// 开关关闭时不生成高费率信号
	signals = core.BuildSignals(nil, nil, models.Float64Ptr(0.08), nil, nil, false)
	if findSignal(signals, "资金费率") != nil {
		t.Error("开关关闭时不应生成高费率信号")
	}
	// 但负费率信号不受开关影响
	signals = core.BuildSignals(nil, nil, models.Float64Ptr(-0.02), nil, nil, false)
	if findSignal(signals, "资金费率") == nil {
		t.Error("开关关闭时负费率信号仍应生成")
	}

	// 正常区间不生成信号
	signals = core.BuildSignals(nil, nil, models.Float64Ptr(0.01), nil, nil, true)
	if findSignal(signals, "资金费率") != nil {
		t.Error("正常费率不应生成信号")
	}
}

func TestBuildSignalsETFFlow(t *testing.T) {
	signals := core.BuildSignals(nil, nil, nil, &models.ETFFlow{Recent5DFlowM: 800.5}, nil, true)
	s := findSignal(signals, "ETF")
	if s == nil || s.Icon != models.SignalIconGreen {
		t.Fatalf("ETF净流入信号错误: %+v", s)
	}
	if s.Text != "ETF 近5日大幅净流入 (+800.5M)" {
		t.Errorf("ETF净流入文案错误: %q", s.Text)
	}

	signals = core.BuildSignals(nil, nil, nil, &models.ETFFlow{Recent5DFlowM: -623.4}, nil, true)
	s = findSignal(signals, "ETF")
	if s == nil || s.Icon != models.SignalIconRed {
		t.Fatalf("ETF净流出信号错误: %+v", s)
	}
	if s.Text != "ETF 近5日大幅净流出 (-623.4M)" {
		t.Errorf("ETF净流出文案错误: %q", s.Text)
	}

	// 阈值内不生成信号
	signals = core.BuildSignals(nil, nil, nil, &models.ETFFlow{Recent5DFlowM: 500}, nil, true)
	if findSignal(signals, "ETF") != nil {
		t.Error("5日净流入在阈值内不应生成信号")
	}
	signals = core.BuildSignals(nil, nil, nil, &models.ETFFlow{Recent5DFlowM: -500}, nil, true)
	if findSignal(signals, "ETF") != nil {
		t.Error("5日净流出在阈值内不应生成信号")
	}
}

// 构造200日成本均价50000、现价60000的序列: AHR999约1.6, 落在观望区间
func TestAHR999WaitBandScenario(t *testing.T) {
	closes := make([]float64, 200)
	for i := range closes {
		closes[i] = 40000
		if i >= 100 {
			closes[i] = 60000
		}
	}
	// 2023年初币龄约5100天, 指数增长估值约45000
	now := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)

	ahr999 := indicator.AHR999(closes, now)
	if ahr999 == nil {
		t.Fatal("AHR999不应为nil")
	}
	if *ahr999 < 1.4 || *ahr999 > 1.8 {
		t.Fatalf("AHR999应约为1.6, 实际 %v", *ahr999)
	}

	signals := core.BuildSignals(nil, nil, nil, nil, ahr999, true)
	s := findSignal(signals, "AHR999")
	if s == nil || s.Icon != models.SignalIconGreen || !strings.Contains(s.Text, "观望区间") {
		t.Errorf("AHR999=%v 应落在观望区间: %+v", *ahr999, s)
	}

	// 无论价格与MA200关系如何都不进入极高胜率区间
	if core.HighProbabilityZone(ahr999, 60000, models.Float64Ptr(70000.0)) {
		t.Error("观望区间不应进入极高胜率区间")
	}
	if core.HighProbabilityZone(ahr999, 60000, models.Float64Ptr(50000.0)) {
		t.Error("观望区间不应进入极高胜率区间")
	}
}

func TestHighProbabilityZone(t *testing.T) {
	low := models.Float64Ptr(0.4)
	high := models.Float64Ptr(0.5)
	ma200 := models.Float64Ptr(50000.0)

	if !core.HighProbabilityZone(low, 40000, ma200) {
		t.Error("AHR999<0.45且价格低于MA200时应为极高胜率区间")
	}
	if core.HighProbabilityZone(high, 40000, ma200) {
		t.Error("AHR999>=0.45时不应为极高胜率区间")
	}
	if core.HighProbabilityZone(low, 60000, ma200) {
		t.Error("价格高于MA200时不应为极高胜率区间")
	}
	if core.HighProbabilityZone(nil, 40000, ma200) {
		t.Error("AHR999缺失时不应为极高胜率区间")
	}
	if core.HighProbabilityZone(low, 40000, nil) {
		t.Error("MA200缺失时不应为极高胜率区间")
	}
	if core.HighProbabilityZone(low, 50000, models.Float64Ptr(50000.0)) {
		t.Error("价格等于MA200时不应为极高胜率区间")
	}
}
