package chat

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/talkeasy/backend/internal/model/chat"
	authservice "github.com/talkeasy/backend/internal/service/auth"
	chatService "github.com/talkeasy/backend/internal/service/chat"
	"github.com/talkeasy/backend/internal/service/conversation"
	"github.com/talkeasy/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc      *chatService.Service
	conversation *conversation.Service
	requireUser  func(http.Handler) http.Handler
	logger       *zap.Logger
}

// New 创建聊天处理器。requireUser 负责鉴权并把用户写入请求上下文。
func New(chatSvc *chatService.Service, conv *conversation.Service, requireUser func(http.Handler) http.Handler, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatSvc:      chatSvc,
		conversation: conv,
		requireUser:  requireUser,
		logger:       logger,
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/reply", h.handleReply)

	r.Group(func(authed chi.Router) {
		authed.Use(h.requireUser)
		authed.Post("/session", h.handleCreateSession)
		authed.Get("/session/{sessionID}/messages", h.handleTranscript)
		authed.Delete("/session/{sessionID}", h.handleDeleteSession)
		authed.Post("/messages", h.handleSendMessage)
	})
}

type sessionResponse struct {
	Session  chat.Session   `json:"session"`
	Messages []chat.Message `json:"messages"`
}

// handleCreateSession 创建会话，返回带欢迎语的对话记录
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	u, _ := authservice.UserFromContext(r.Context())

	session, err := h.chatSvc.CreateSession(r.Context(), u.ID)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	transcript, err := h.chatSvc.LoadTranscript(r.Context(), session.ID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, sessionResponse{Session: session, Messages: transcript})
}

// handleTranscript 返回会话的全部消息
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	u, _ := authservice.UserFromContext(r.Context())

	session, err := h.chatSvc.GetOwnedSession(r.Context(), sessionID, u.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	transcript, err := h.chatSvc.LoadTranscript(r.Context(), session.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, sessionResponse{Session: session, Messages: transcript})
}

// handleDeleteSession 结束会话并丢弃消息
func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	u, _ := authservice.UserFromContext(r.Context())

	if _, err := h.chatSvc.GetOwnedSession(r.Context(), sessionID, u.ID); err != nil {
		respondServiceError(w, err)
		return
	}
	if err := h.chatSvc.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleSendMessage 保存用户消息，模拟输入延迟后返回机器人回复
func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Content   string `json:"content"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, _ := authservice.UserFromContext(r.Context())
	if _, err := h.chatSvc.GetOwnedSession(r.Context(), payload.SessionID, u.ID); err != nil {
		respondServiceError(w, err)
		return
	}

	exchange, err := h.chatSvc.Exchange(r.Context(), payload.SessionID, payload.Content)
	if err != nil {
		h.logger.Warn("exchange failed", zap.String("session", payload.SessionID), zap.Error(err))
		respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, exchange)
}

// handleReply 无状态地生成一条回复
func (h *Handler) handleReply(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Text string `json:"text"`
	}

	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"reply": h.conversation.Reply(payload.Text),
	})
}

func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, chatService.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, chatService.ErrEmptyContent), errors.Is(err, chatService.ErrInvalidSender):
		status = http.StatusBadRequest
	}
	utils.RespondError(w, status, err.Error())
}
