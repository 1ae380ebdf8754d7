package servers

import (
	"crypto_dashboard/apis"
	"crypto_dashboard/core"
	"crypto_dashboard/pkg/config"
	"crypto_dashboard/pkg/websocket"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type HTTPServer struct {
	engine *gin.Engine
	port   string
}

// NewHTTPServer 创建HTTP服务器
func NewHTTPServer(reportManager *core.ReportManager, wsManager *websocket.Manager) *HTTPServer {
	// 设置Gin模式
	if config.GlobalConfig.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.Default()

	// 设置路由
	apis.SetupRoutes(engine, reportManager, wsManager)

	return &HTTPServer{
		engine: engine,
		port:   config.GlobalConfig.Port,
	}
}

// Start 启动HTTP服务器
func (s *HTTPServer) Start() {
	addr := fmt.Sprintf(":%s", s.port)
	logrus.Infof("HTTP服务器启动在端口 %s", s.port)

	if err := s.engine.Run(addr); err != nil {
		logrus.Fatalf("HTTP服务器启动失败: %v", err)
	}
}
