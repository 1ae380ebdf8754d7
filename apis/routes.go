package apis

import (
	"crypto_dashboard/controllers"
	"crypto_dashboard/core"
	"crypto_dashboard/pkg/middleware"
	"crypto_dashboard/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// SetupRoutes 设置路由
func SetupRoutes(r *gin.Engine, reportManager *core.ReportManager, wsManager *websocket.Manager) {
	// 创建控制器实例
	reportController := controllers.NewReportController(reportManager)
	authController := &controllers.AuthController{}
	configController := controllers.NewConfigController()

	// 全局中间件
	r.Use(middleware.Cors())
	r.Use(middleware.RequestID())

	// 仪表盘静态页面
	r.StaticFile("/", "./web/index.html")
	r.StaticFile("/favicon.ico", "./web/favicon.ico")

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Crypto Dashboard API is running",
		})
	})

	// WebSocket日报推送
	r.GET("/ws", wsManager.HandleWebSocket)

	// 认证路由
	auth := r.Group("/api/v1/auth")
	{
		auth.POST("/login", authController.Login) // 用户登录
	}

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 日报路由
		v1.GET("/report", reportController.GetReport)                  // 获取日报(缓存)
		v1.GET("/report/markdown", reportController.GetReportMarkdown) // Markdown格式日报

		// 手动刷新需要认证，避免被恶意触发上游采集
		v1.GET("/report/refresh", middleware.AuthRequired(), reportController.RefreshReport)

		// 用户信息路由
		user := v1.Group("/user", middleware.AuthRequired())
		{
			user.GET("/profile", authController.GetProfile) // 获取用户信息
		}

		// 系统配置路由
		v1.GET("/config", configController.GetSystemConfig) // 获取系统配置
	}
}
