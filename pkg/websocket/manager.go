package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 日报为公开只读数据，不校验Origin
		return true
	},
}

// Manager WebSocket管理器，包装Hub并处理连接升级
type Manager struct {
	hub *Hub
}

// NewManager 创建WebSocket管理器并启动Hub
func NewManager() *Manager {
	m := &Manager{hub: NewHub()}
	go m.hub.Run()
	return m
}

// HandleWebSocket 处理WebSocket连接升级
func (m *Manager) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Errorf("WebSocket升级失败: %v", err)
		return
	}

	client := &Client{
		hub:  m.hub,
		conn: conn,
		send: make(chan []byte, 8),
		id:   uuid.New().String(),
	}

	m.hub.register <- client

	go client.writePump()
	go client.readPump()

	logrus.WithFields(logrus.Fields{
		"clientId":   client.id,
		"remoteAddr": c.Request.RemoteAddr,
	}).Info("WebSocket连接已建立")
}

// BroadcastReport 广播日报给所有客户端
func (m *Manager) BroadcastReport(report interface{}) {
	m.hub.BroadcastReport(report)
}

// ClientCount 当前连接数
func (m *Manager) ClientCount() int {
	return m.hub.ClientCount()
}
