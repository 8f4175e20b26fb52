package service

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"edu_diagnosis_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	alertChannel = "diagnosis_alert_channel"

	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NotificationHub 面向教授端的实时告警推送。
// 跨实例投递走 Redis 频道，本实例在线连接直接写 WebSocket；
// 持久化由 AlertRepository 负责，这里只管在线推送。
type NotificationHub struct {
	mu         sync.RWMutex
	clients    map[uint][]*alertClient
	register   chan *alertClient
	unregister chan *alertClient
	Redis      *redis.Client
	ctx        context.Context
	cancel     context.CancelFunc
}

type alertClient struct {
	hub    *NotificationHub
	conn   *websocket.Conn
	send   chan []byte
	userID uint
}

type alertEnvelope struct {
	TargetUsers []uint          `json:"targetUsers"`
	Payload     json.RawMessage `json:"payload"`
}

func NewNotificationHub(rdb *redis.Client) *NotificationHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &NotificationHub{
		clients:    make(map[uint][]*alertClient),
		register:   make(chan *alertClient),
		unregister: make(chan *alertClient),
		Redis:      rdb,
		ctx:        ctx,
		cancel:     cancel,
	}
}

func (h *NotificationHub) Run() {
	pubsub := h.Redis.Subscribe(h.ctx, alertChannel)
	go func() {
		ch := pubsub.Channel()
		for msg := range ch {
			var env alertEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Log.Error("alert pubsub unmarshal error", zap.Error(err))
				continue
			}
			h.pushLocal(env.TargetUsers, env.Payload)
		}
	}()

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.userID] = append(h.clients[client.userID], client)
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			conns := h.clients[client.userID]
			for i, c := range conns {
				if c == client {
					h.clients[client.userID] = append(conns[:i], conns[i+1:]...)
					close(client.send)
					break
				}
			}
			if len(h.clients[client.userID]) == 0 {
				delete(h.clients, client.userID)
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			pubsub.Close()
			return
		}
	}
}

func (h *NotificationHub) Stop() {
	h.cancel()
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for _, c := range conns {
			c.conn.Close()
		}
	}
	h.clients = make(map[uint][]*alertClient)
}

// Publish 通过 Redis 频道向目标用户广播，任何实例上的在线连接都会收到
func (h *NotificationHub) Publish(targetUsers []uint, payload interface{}) {
	if len(targetUsers) == 0 {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return
	}
	env, err := json.Marshal(alertEnvelope{TargetUsers: targetUsers, Payload: raw})
	if err != nil {
		return
	}
	if err := h.Redis.Publish(h.ctx, alertChannel, env).Err(); err != nil {
		logger.Log.Warn("alert publish failed", zap.Error(err))
	}
}

func (h *NotificationHub) pushLocal(userIDs []uint, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, id := range userIDs {
		for _, client := range h.clients[id] {
			select {
			case client.send <- payload:
			default:
				// 慢消费者直接丢弃，避免阻塞推送循环
			}
		}
	}
}

// ServeWS 将已认证用户的连接升级为 WebSocket 并接入推送
func (h *NotificationHub) ServeWS(w http.ResponseWriter, r *http.Request, userID uint) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &alertClient{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, 16),
		userID: userID,
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
	return nil
}

func (c *alertClient) readPump() {
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
		// 告警通道是单向的，客户端消息只用于保持连接
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Error("alert websocket unexpected close",
					zap.Error(err), zap.Uint("userId", c.userID))
			}
			break
		}
	}
}

func (c *alertClient) writePump() {
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
