// Package websocket 按问卷会话分组推送实时事件
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/encuestaia/backend/internal/domain/events"
	"github.com/encuestaia/backend/internal/infrastructure/log"
)

// Hub WebSocket 连接管理中心
type Hub struct {
	// 按会话 ID 分组的连接
	sessions map[string]map[*Connection]bool
	// 注册连接
	register chan *Connection
	// 注销连接
	unregister chan *Connection
	// 广播消息
	broadcast chan *Message
	mu        sync.RWMutex

	stopCh    chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
	logger    *slog.Logger
}

// Connection WebSocket 连接
type Connection struct {
	SessionID string
	Send      chan []byte
}

// NewConnection 创建连接
func NewConnection(sessionID string) *Connection {
	return &Connection{SessionID: sessionID, Send: make(chan []byte, 16)}
}

// Message 消息
type Message struct {
	SessionID string
	Data      []byte
}

// Envelope 推送给客户端的消息格式
type Envelope struct {
	Type      events.EventType `json:"type"`
	SessionID string           `json:"sessionId"`
	Stage     string           `json:"stage,omitempty"`
	Phase     string           `json:"phase,omitempty"`
	Progress  int              `json:"progress"`
	Payload   any              `json:"payload,omitempty"`
	Timestamp int64            `json:"timestamp"`
}

// NewHub 创建 Hub
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *Message, 64),
		stopCh:     make(chan struct{}),
		logger:     log.NewModuleLogger("websocket", "hub"),
	}
}

// Run 运行 Hub（需要在 goroutine 中运行）
func (h *Hub) Run() {
	for {
		select {
		case <-h.stopCh:
			h.closeAll()
			return

		case conn := <-h.register:
			h.mu.Lock()
			if h.sessions[conn.SessionID] == nil {
				h.sessions[conn.SessionID] = make(map[*Connection]bool)
			}
			h.sessions[conn.SessionID][conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			h.remove(conn)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.sessions[msg.SessionID] {
				select {
				case conn.Send <- msg.Data:
				default:
					// 客户端太慢，断开
					h.remove(conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

// remove 移除连接，调用方持有写锁
func (h *Hub) remove(conn *Connection) {
	group, ok := h.sessions[conn.SessionID]
	if !ok {
		return
	}
	if _, ok := group[conn]; !ok {
		return
	}
	delete(group, conn)
	close(conn.Send)
	if len(group) == 0 {
		delete(h.sessions, conn.SessionID)
	}
}

// closeAll 关闭所有连接
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, group := range h.sessions {
		for conn := range group {
			close(conn.Send)
		}
	}
	h.sessions = make(map[string]map[*Connection]bool)
}

// Start 启动 Hub（启动后台 goroutine）
func (h *Hub) Start() {
	h.startOnce.Do(func() {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			h.Run()
		}()
	})
}

// Stop 停止 Hub 并关闭所有连接
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopCh)
	})
	h.wg.Wait()
}

// Register 注册连接；Hub 已停止时返回 false
func (h *Hub) Register(conn *Connection) bool {
	select {
	case h.register <- conn:
		return true
	case <-h.stopCh:
		return false
	}
}

// Unregister 注销连接
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.stopCh:
	}
}

// Count 返回会话当前的连接数
func (h *Hub) Count(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

// BroadcastToSession 向指定会话的所有连接广播消息
func (h *Hub) BroadcastToSession(sessionID string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- &Message{SessionID: sessionID, Data: jsonData}:
	case <-h.stopCh:
	}
	return nil
}

// HandleEvent 实现 events.Handler，把问卷事件推送给对应会话
func (h *Hub) HandleEvent(event events.Event) error {
	e, ok := event.(*events.SurveyEvent)
	if !ok {
		return nil
	}
	if h.Count(e.SessionID) == 0 {
		return nil
	}
	h.logger.Debug("Pushing survey event", "type", e.EventType, "session_id", e.SessionID)
	return h.BroadcastToSession(e.SessionID, Envelope{
		Type:      e.EventType,
		SessionID: e.SessionID,
		Stage:     e.Stage,
		Phase:     e.Phase,
		Progress:  e.Progress,
		Payload:   e.Payload,
		Timestamp: e.EventTime.UnixMilli(),
	})
}

// Subscribe 订阅需要推送的问卷事件
func (h *Hub) Subscribe(bus events.EventBus) func() {
	return bus.SubscribeMultiple(events.SurveyEventTypes, h)
}

// 心跳参数
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var _ events.Handler = (*Hub)(nil)
