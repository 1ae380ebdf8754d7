// Package etf 从 Farside Investors 页面抓取 BTC ETF 净流入数据。
//
// 页面表格结构不受本系统控制，上游改版会导致解析失败，这是已知的脆弱点。
// 解析失败时返回错误，由调用方降级为空数据，不影响日报其余部分。
package etf

import (
	"context"
	"crypto_dashboard/models"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultURL Farside BTC ETF 全量数据页面
const DefaultURL = "https://farside.co.uk/bitcoin-etf-flow-all-data"

// 汇总行标记，第一列出现这些文字的行不是数据行
var summaryMarkers = []string{"Total", "Average", "Maximum", "Minimum"}

// Client ETF净流入抓取客户端
type Client struct {
	url        string
	userAgent  string
	httpClient *http.Client
}

// New 创建客户端，url为空时使用默认页面
func New(url, userAgent string, timeout time.Duration) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:        url,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchFlows 抓取并解析最新的ETF净流入数据
func (c *Client) FetchFlows(ctx context.Context) (*models.ETFFlow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("构建请求失败: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求ETF页面失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ETF页面响应状态码异常: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("解析HTML失败: %w", err)
	}

	return ParseFlows(doc)
}

// ParseFlows 从页面文档解析ETF净流入
// 数据位于第二个table: 表头找到"Total"列，跳过汇总行，
// 取最新数据行的Total值与最近5个数据行的Total合计
func ParseFlows(doc *goquery.Document) (*models.ETFFlow, error) {
	tables := doc.Find("table")
	if tables.Length() < 2 {
		return nil, fmt.Errorf("页面表格数量不足: %d", tables.Length())
	}

	rows := tables.Eq(1).Find("tr")
	if rows.Length() < 2 {
		return nil, fmt.Errorf("表格行数不足")
	}

	// 表头中定位Total列
	totalIdx := -1
	rows.Eq(0).Find("th,td").Each(func(i int, s *goquery.Selection) {
		if strings.TrimSpace(s.Text()) == "Total" {
			totalIdx = i
		}
	})

	// 收集数据行(排除汇总行)
	var dataRows []*goquery.Selection
	rows.Slice(1, rows.Length()).Each(func(i int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() == 0 {
			return
		}
		first := strings.TrimSpace(cells.Eq(0).Text())
		for _, marker := range summaryMarkers {
			if strings.Contains(first, marker) {
				return
			}
		}
		dataRows = append(dataRows, cells)
	})

	if len(dataRows) == 0 {
		return nil, fmt.Errorf("未找到数据行")
	}

	latest := dataRows[len(dataRows)-1]
	dateStr := strings.TrimSpace(latest.Eq(0).Text())

	var totalFlow float64
	if totalIdx >= 0 && totalIdx < latest.Length() {
		totalFlow = ParseFlowValue(latest.Eq(totalIdx).Text())
	} else {
		// 没有Total列时手动对各ETF列求和
		for i := 1; i < latest.Length(); i++ {
			totalFlow += ParseFlowValue(latest.Eq(i).Text())
		}
	}

	// 最近5个数据行合计
	recent5 := 0.0
	start := len(dataRows) - 5
	if start < 0 {
		start = 0
	}
	for _, row := range dataRows[start:] {
		if totalIdx >= 0 && totalIdx < row.Length() {
			recent5 += ParseFlowValue(row.Eq(totalIdx).Text())
		}
	}

	return &models.ETFFlow{
		Date:          dateStr,
		DailyFlowM:    round1(totalFlow),
		Recent5DFlowM: round1(recent5),
	}, nil
}

// ParseFlowValue 解析表格数值
// 逗号为千分位分隔符，括号表示负数(会计记法)，空或"-"视为0
func ParseFlowValue(text string) float64 {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if text == "" || text == "-" {
		return 0.0
	}

	negative := false
	if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
		negative = true
		text = text[1 : len(text)-1]
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0.0
	}
	if negative {
		return -value
	}
	return value
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
