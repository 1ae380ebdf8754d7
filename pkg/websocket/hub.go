package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second    // 写入等待时间
	pongWait   = 60 * time.Second    // Pong等待时间
	pingPeriod = (pongWait * 9) / 10 // Ping发送周期
)

// Message WebSocket下行消息格式
type Message struct {
	Type      string      `json:"type"`      // report, ping
	Data      interface{} `json:"data"`      // 日报数据
	Timestamp int64       `json:"timestamp"` // 时间戳(毫秒)
}

// Hub 维护活跃的客户端集合并向客户端广播日报
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	clientsMutex sync.RWMutex
}

// Client 表示单个WebSocket客户端
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   string
}

// NewHub 创建新的Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
	}
}

// Run 启动Hub事件循环
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clientsMutex.Lock()
			h.clients[client] = true
			h.clientsMutex.Unlock()
			logrus.Debugf("WebSocket客户端注册: %s", client.id)

		case client := <-h.unregister:
			h.clientsMutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.clientsMutex.Unlock()
			logrus.Debugf("WebSocket客户端注销: %s", client.id)

		case message := <-h.broadcast:
			h.clientsMutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// 发送缓冲已满的客户端视为失联
					go func(c *Client) { h.unregister <- c }(client)
				}
			}
			h.clientsMutex.RUnlock()
		}
	}
}

// BroadcastReport 向所有客户端广播日报
func (h *Hub) BroadcastReport(report interface{}) {
	msg := Message{
		Type:      "report",
		Data:      report,
		Timestamp: time.Now().UnixMilli(),
	}

	data, err := json.Marshal(msg)
	if err != nil {
		logrus.Errorf("序列化广播消息失败: %v", err)
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logrus.Warn("广播通道已满，丢弃本次日报推送")
	}
}

// ClientCount 当前连接的客户端数量
func (h *Hub) ClientCount() int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	return len(h.clients)
}

// writePump 将消息写入WebSocket连接并维持心跳
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump 消费客户端消息，仅用于探测断连
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
