package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	authservice "github.com/talkeasy/backend/internal/service/auth"
	chatservice "github.com/talkeasy/backend/internal/service/chat"
	"github.com/talkeasy/backend/internal/service/conversation"
	"github.com/talkeasy/backend/pkg/utils"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	writeTimeout = 10 * time.Second
)

// Handler WebSocket 聊天处理器
type Handler struct {
	chatSvc      *chatservice.Service
	conversation *conversation.Service
	requireUser  func(http.Handler) http.Handler
	defaultCount int
	logger       *zap.Logger
	upgrader     websocket.Upgrader
}

// New 创建 WebSocket 处理器。allowedOrigins 为空或包含 "*" 时接受任意来源。
func New(chatSvc *chatservice.Service, conv *conversation.Service, requireUser func(http.Handler) http.Handler, allowedOrigins []string, defaultCount int, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if defaultCount < 1 {
		defaultCount = conversation.DefaultTopicCount
	}
	return &Handler{
		chatSvc:      chatSvc,
		conversation: conv,
		requireUser:  requireUser,
		defaultCount: defaultCount,
		logger:       logger,
		upgrader: websocket.Upgrader{
			CheckOrigin:     originChecker(allowedOrigins),
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

// RegisterRoutes 注册 WebSocket 路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(h.requireUser).Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// TextMessage 用户文本消息
type TextMessage struct {
	Text string `json:"text"`
}

// TopicsRequest 话题推荐请求
type TopicsRequest struct {
	Count int `json:"count"`
}

// OutgoingMessage is every frame the server writes.
type OutgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// conn serialises writes; gorilla allows one concurrent writer.
type conn struct {
	ws        *websocket.Conn
	sessionID string
	logger    *zap.Logger
	mu        sync.Mutex
}

func (c *conn) write(msgType string, data any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	msg := OutgoingMessage{
		Type:      msgType,
		SessionID: c.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := c.ws.WriteJSON(msg); err != nil {
		c.logger.Debug("websocket write failed", zap.String("type", msgType), zap.Error(err))
	}
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (c *conn) sendError(message string) {
	c.write("error", map[string]string{"message": message})
}

// handleWebSocket 处理 WebSocket 连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	u, _ := authservice.UserFromContext(r.Context())

	if _, err := h.chatSvc.GetOwnedSession(r.Context(), sessionID, u.ID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer wsConn.Close()

	c := &conn{ws: wsConn, sessionID: sessionID, logger: h.logger}
	h.logger.Info("websocket connected", zap.String("session", sessionID), zap.String("user", u.ID))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = wsConn.SetReadDeadline(time.Now().Add(readTimeout))
	wsConn.SetPongHandler(func(string) error {
		return wsConn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.pingLoop(ctx, c)
	}()
	defer wg.Wait()
	defer cancel()

	c.write("connected", map[string]any{"userId": u.ID})

	for {
		var msg inboundMessage
		if err := wsConn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", zap.String("session", sessionID), zap.Error(err))
			}
			return
		}
		_ = wsConn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			c.sendError("session mismatch")
			continue
		}

		if err := h.handleMessage(ctx, c, &msg); err != nil {
			return
		}
	}
}

// handleMessage dispatches one inbound frame. A returned error ends the connection.
func (h *Handler) handleMessage(ctx context.Context, c *conn, msg *inboundMessage) error {
	switch msg.Type {
	case "text":
		return h.handleText(ctx, c, msg.Data)
	case "topics":
		h.handleTopics(c, msg.Data)
	default:
		c.sendError("unsupported message type: " + msg.Type)
	}
	return nil
}

func (h *Handler) handleText(ctx context.Context, c *conn, raw json.RawMessage) error {
	var text TextMessage
	if err := json.Unmarshal(raw, &text); err != nil {
		c.sendError("invalid text payload")
		return nil
	}

	userMsg, err := h.chatSvc.SaveUserMessage(ctx, c.sessionID, text.Text)
	if err != nil {
		c.sendError(err.Error())
		return nil
	}

	delay := h.chatSvc.NextDelay()
	c.write("typing", map[string]any{"delayMs": delay.Milliseconds(), "message": userMsg})

	botMsg, err := h.chatSvc.RespondAfter(ctx, c.sessionID, userMsg.Content, delay)
	if err != nil {
		if ctx.Err() != nil {
			return err
		}
		c.sendError(err.Error())
		return nil
	}

	c.write("message", botMsg)
	return nil
}

func (h *Handler) handleTopics(c *conn, raw json.RawMessage) {
	req := TopicsRequest{Count: h.defaultCount}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &req); err != nil {
			c.sendError("invalid topics payload")
			return
		}
	}
	if req.Count < 1 {
		req.Count = h.defaultCount
	}

	c.write("topics", map[string]any{"topics": h.conversation.Topics(req.Count)})
}

func (h *Handler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}
