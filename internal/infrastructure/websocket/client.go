package websocket

import (
	"net/http"
	"time"

	"github.com/encuestaia/backend/internal/infrastructure/config"
	"github.com/gorilla/websocket"
)

// Server 把 HTTP 请求升级为会话事件订阅
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewServer 创建 WebSocket 服务端
func NewServer(hub *Hub, cfg *config.WebSocketConfig) *Server {
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			// 跨域由 CORS 中间件控制
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeSession 升级连接并订阅会话事件，直到客户端断开
func (s *Server) ServeSession(w http.ResponseWriter, r *http.Request, sessionID string) error {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	conn := NewConnection(sessionID)
	if !s.hub.Register(conn) {
		_ = ws.Close()
		return nil
	}

	go s.writePump(ws, conn)
	s.readPump(ws, conn)
	return nil
}

// readPump 只处理控制帧，客户端消息忽略
func (s *Server) readPump(ws *websocket.Conn, conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		_ = ws.Close()
	}()

	ws.SetReadLimit(4096)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump 发送事件与心跳
func (s *Server) writePump(ws *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = ws.Close()
	}()

	for {
		select {
		case msg, ok := <-conn.Send:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
