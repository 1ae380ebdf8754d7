package telegram

import (
	"crypto_dashboard/pkg/config"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const (
	MaxMessageLength = 4096 // Telegram单条消息最大长度
)

// ReportProvider 返回当前日报的Markdown文本，供命令回复使用
type ReportProvider func() string

type TelegramClient struct {
	bot            *tgbotapi.BotAPI
	chatID         int64
	reportProvider ReportProvider
}

var GlobalTelegramClient *TelegramClient

// InitTelegram 初始化Telegram客户端
// 未配置Bot Token时跳过，推送功能整体降级
func InitTelegram() error {
	if config.GlobalConfig.TelegramBotToken == "" {
		logrus.Warn("未配置Telegram Bot Token，跳过Telegram初始化")
		return nil
	}

	bot, err := tgbotapi.NewBotAPI(config.GlobalConfig.TelegramBotToken)
	if err != nil {
		return fmt.Errorf("创建Telegram Bot失败: %v", err)
	}

	bot.Debug = false

	chatID, err := strconv.ParseInt(config.GlobalConfig.TelegramChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram chat ID格式错误: %v", err)
	}

	GlobalTelegramClient = &TelegramClient{
		bot:    bot,
		chatID: chatID,
	}

	go GlobalTelegramClient.startCommandListener()

	logrus.Info("Telegram客户端初始化成功")
	return nil
}

// SetReportProvider 注册日报内容提供函数
func (t *TelegramClient) SetReportProvider(fn ReportProvider) {
	if t == nil {
		return
	}
	t.reportProvider = fn
}

// SendMessage 发送消息，超长消息自动分段
func (t *TelegramClient) SendMessage(text string) error {
	if t == nil || t.bot == nil {
		return fmt.Errorf("telegram客户端未初始化")
	}

	if len(text) > MaxMessageLength {
		return t.sendMessageSafely(text)
	}

	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = "Markdown"

	_, err := t.bot.Send(msg)
	if err != nil {
		return fmt.Errorf("发送消息失败: %v", err)
	}

	return nil
}

// SendReport 推送日报Markdown
func (t *TelegramClient) SendReport(markdown string) error {
	return t.SendMessage(markdown)
}

// SendHighProbabilityAlert 推送极高胜率区间提醒
func (t *TelegramClient) SendHighProbabilityAlert() error {
	return t.SendMessage("🚨 *系统进入极高胜率区间*\n\nAHR999 < 0.45 且价格低于 MA200，历史上此区间买入持有1年以上胜率极高。")
}

// SendServiceStatus 发送服务状态通知
func (t *TelegramClient) SendServiceStatus(status, message string) error {
	statusMap := map[string]string{
		"starting": "启动中",
		"started":  "已启动",
		"stopping": "停止中",
		"stopped":  "已停止",
		"error":    "错误",
	}

	statusText, exists := statusMap[status]
	if !exists {
		statusText = "信息"
	}

	text := fmt.Sprintf(`%s

%s

时间: %s`, statusText, message, time.Now().In(time.FixedZone("CST", 8*60*60)).Format("2006-01-02 15:04:05"))

	return t.SendMessage(text)
}

// startCommandListener 监听Telegram命令
func (t *TelegramClient) startCommandListener() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)
	for update := range updates {
		if update.Message == nil || !update.Message.IsCommand() {
			continue
		}

		// 只响应配置的chat
		if update.Message.Chat.ID != t.chatID {
			continue
		}

		switch update.Message.Command() {
		case "report":
			t.handleReportCommand()
		case "start":
			if err := t.SendMessage("加密货币决策日报机器人已就绪，发送 /report 获取最新日报"); err != nil {
				logrus.Errorf("发送欢迎消息失败: %v", err)
			}
		default:
			if err := t.SendMessage(fmt.Sprintf("未知命令: /%s", update.Message.Command())); err != nil {
				logrus.Errorf("发送回复失败: %v", err)
			}
		}
	}
}

// handleReportCommand 回复最新日报
func (t *TelegramClient) handleReportCommand() {
	if t.reportProvider == nil {
		if err := t.SendMessage("日报服务尚未就绪"); err != nil {
			logrus.Errorf("发送回复失败: %v", err)
		}
		return
	}

	markdown := t.reportProvider()
	if markdown == "" {
		if err := t.SendMessage("日报尚未生成，请稍后再试"); err != nil {
			logrus.Errorf("发送回复失败: %v", err)
		}
		return
	}

	if err := t.SendReport(markdown); err != nil {
		logrus.Errorf("推送日报失败: %v", err)
	}
}

// sendMessageSafely 分段发送超长消息
func (t *TelegramClient) sendMessageSafely(text string) error {
	parts := splitLongMessage(text, MaxMessageLength)
	for i, part := range parts {
		if i > 0 {
			time.Sleep(100 * time.Millisecond) // 避免发送过快
		}
		msg := tgbotapi.NewMessage(t.chatID, part)
		msg.ParseMode = "Markdown"
		if _, err := t.bot.Send(msg); err != nil {
			return fmt.Errorf("发送消息第%d部分失败: %v", i+1, err)
		}
	}
	return nil
}

// splitLongMessage 按行分割长消息
func splitLongMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	lines := strings.Split(text, "\n")
	currentPart := ""

	for i := range lines {
		line := lines[i]
		if len(line) > maxLen {
			if currentPart != "" {
				parts = append(parts, currentPart)
				currentPart = ""
			}
			for len(line) > maxLen {
				parts = append(parts, line[:maxLen])
				line = line[maxLen:]
			}
			if line != "" {
				currentPart = line
			}
			continue
		}

		testPart := currentPart
		if testPart != "" {
			testPart += "\n"
		}
		testPart += line

		if len(testPart) > maxLen {
			if currentPart != "" {
				parts = append(parts, currentPart)
			}
			currentPart = line
		} else {
			currentPart = testPart
		}
	}

	if currentPart != "" {
		parts = append(parts, currentPart)
	}

	return parts
}
