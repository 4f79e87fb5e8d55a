package websocket

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/xinyucaoo/influenceBay-sub000/config"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var (
	// 升级器 - 将HTTP连接升级为WebSocket连接
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// 生产环境应该验证origin
			return true
		},
	}

	// 客户端连接管理
	clients      = make(map[string]*Client) // userID -> Client
	clientsMutex sync.RWMutex

	redisCtx = context.Background()
)

// 事件类型常量
const (
	EventNewOffer       = "offer_received"    // 收到新报价（发给刊登方）
	EventOutbid         = "outbid"            // 被更高竞价超过（发给原领先者）
	EventOfferDecided   = "offer_decided"     // 报价被接受/拒绝（发给回应方）
	EventNewApplication = "application"       // 活动收到新申请（发给品牌方）
	EventNewMessage     = "message"           // 新站内消息
)

// Event 推送给客户端的事件
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Client WebSocket客户端
type Client struct {
	UserID     string
	Connection *websocket.Conn
	Send       chan *Event
}

// InitWebSocket 初始化WebSocket服务
func InitWebSocket() error {
	go heartbeatChecker()
	log.Println("✅ WebSocket service initialized")
	return nil
}

// CloseWebSocket 关闭全部连接
func CloseWebSocket() error {
	clientsMutex.Lock()
	defer clientsMutex.Unlock()
	for _, client := range clients {
		close(client.Send)
		client.Connection.Close()
	}
	clients = make(map[string]*Client)
	return nil
}

// HandleConnection 处理WebSocket连接
// 必须在 AuthMiddleware 之后挂载，用户身份取自gin上下文
func HandleConnection(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		UserID:     userID,
		Connection: conn,
		Send:       make(chan *Event, 256),
	}

	clientsMutex.Lock()
	// 同一用户重复连接时关闭旧连接
	if old, exists := clients[userID]; exists {
		close(old.Send)
		old.Connection.Close()
	}
	clients[userID] = client
	clientsMutex.Unlock()

	// 设置用户在线状态到Redis
	if config.RedisClient != nil {
		go func() {
			config.RedisClient.Set(redisCtx, "online:"+userID, "1", time.Minute*5)
			config.RedisClient.SAdd(redisCtx, "online:users", userID)
		}()
	}

	go client.readPump()
	go client.writePump()
}

// Notify 向指定用户推送事件；用户不在线时静默丢弃
func Notify(userID, eventType string, data interface{}) {
	clientsMutex.RLock()
	client, online := clients[userID]
	clientsMutex.RUnlock()
	if !online {
		return
	}

	event := &Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}

	select {
	case client.Send <- event:
	default:
		// 发送队列满，丢弃事件，不阻塞业务请求
		log.Printf("WebSocket send queue full for user %s, dropping %s event", userID, eventType)
	}
}

// readPump 读取客户端消息（仅处理心跳，断线时清理连接）
func (c *Client) readPump() {
	defer c.disconnect()

	c.Connection.SetReadLimit(4096)
	c.Connection.SetReadDeadline(time.Now().Add(90 * time.Second))
	c.Connection.SetPongHandler(func(string) error {
		c.Connection.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.Connection.ReadMessage(); err != nil {
			return
		}
		c.Connection.SetReadDeadline(time.Now().Add(90 * time.Second))
	}
}

// writePump 将事件写出到客户端
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-c.Send:
			if !ok {
				c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Connection.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// disconnect 清理断开的连接
func (c *Client) disconnect() {
	clientsMutex.Lock()
	if current, exists := clients[c.UserID]; exists && current == c {
		delete(clients, c.UserID)
		close(c.Send)
	}
	clientsMutex.Unlock()

	c.Connection.Close()

	if config.RedisClient != nil {
		go func() {
			config.RedisClient.Del(redisCtx, "online:"+c.UserID)
			config.RedisClient.SRem(redisCtx, "online:users", c.UserID)
		}()
	}
}

// heartbeatChecker 定期刷新在线用户的Redis过期时间
func heartbeatChecker() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		if config.RedisClient == nil {
			continue
		}
		clientsMutex.RLock()
		userIDs := make([]string, 0, len(clients))
		for userID := range clients {
			userIDs = append(userIDs, userID)
		}
		clientsMutex.RUnlock()

		for _, userID := range userIDs {
			config.RedisClient.Expire(redisCtx, "online:"+userID, time.Minute*5)
		}
	}
}
