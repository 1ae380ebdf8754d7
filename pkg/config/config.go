package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// 服务配置
	LogLevel string
	Port     string

	// Redis配置(可选，用于重启后恢复上一份日报)
	RedisEnabled  bool
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// 行情数据配置
	KlineDays     int           // 采集的日线数量
	CacheTTL      time.Duration // 日报缓存有效期
	HTTPTimeout   time.Duration // 上游请求超时
	WarmOnStartup bool          // 启动时预热一次采集

	// 链上数据源配置: snapshot(预生成JSON) 或 none
	OnchainSource      string
	OnchainSnapshotURL string

	// 信号规则配置
	SignalFundingHighEnabled bool // 资金费率偏高(多头杠杆较重)信号开关

	// 日报文件输出目录(批处理入口使用)
	ReportOutputDir string

	// 认证配置(保护手动刷新接口)
	AdminUsername string
	AdminPassword string
	JWTSecret     string

	// Telegram推送配置
	TelegramBotToken      string
	TelegramChatID        string
	TelegramPushOnRefresh bool // 每次刷新成功后推送完整日报
}

var GlobalConfig *Config

func LoadConfig() {
	// 加载.env文件
	if err := godotenv.Load(); err != nil {
		logrus.Warn("未找到.env文件，使用环境变量")
	}

	GlobalConfig = &Config{
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Port:     getEnv("PORT", "8080"),

		RedisEnabled:  getEnvBool("REDIS_ENABLED", false),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		KlineDays:     getEnvInt("KLINE_DAYS", 365),
		CacheTTL:      getEnvDuration("REPORT_CACHE_TTL", "5m"),
		HTTPTimeout:   getEnvDuration("HTTP_TIMEOUT", "15s"),
		WarmOnStartup: getEnvBool("WARM_ON_STARTUP", true),

		OnchainSource:      getEnv("ONCHAIN_SOURCE", "snapshot"),
		OnchainSnapshotURL: getEnv("ONCHAIN_SNAPSHOT_URL", ""),

		SignalFundingHighEnabled: getEnvBool("SIGNAL_FUNDING_HIGH_ENABLED", true),

		ReportOutputDir: getEnv("REPORT_OUTPUT_DIR", "reports"),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		JWTSecret:     getEnv("JWT_SECRET", "c7e2f9a4b1d8e5f2a9b6c3d0e7f4a1b8c5d2e9f6a3b0c7d4e1f8a5b2c9d6e3f0"),

		TelegramBotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:        getEnv("TELEGRAM_CHAT_ID", ""),
		TelegramPushOnRefresh: getEnvBool("TELEGRAM_PUSH_ON_REFRESH", false),
	}

	// 设置日志级别
	level, err := logrus.ParseLevel(GlobalConfig.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	logrus.Info("配置加载完成")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key, defaultValue string) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		logrus.Warnf("无法解析环境变量 %s 的时间间隔值: %s，使用默认值: %s", key, value, defaultValue)
	}

	if duration, err := time.ParseDuration(defaultValue); err == nil {
		return duration
	}

	logrus.Errorf("无法解析默认时间间隔值: %s，使用5分钟", defaultValue)
	return 5 * time.Minute
}
