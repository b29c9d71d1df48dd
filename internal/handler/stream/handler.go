package stream

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/talkeasy/backend/internal/model/chat"
	authservice "github.com/talkeasy/backend/internal/service/auth"
	chatService "github.com/talkeasy/backend/internal/service/chat"
	"github.com/talkeasy/backend/pkg/utils"
)

// Handler manages bot replies delivered via Server-Sent Events
type Handler struct {
	chatSvc     *chatService.Service
	requireUser func(http.Handler) http.Handler
	logger      *zap.Logger
}

// New creates a new stream handler
func New(chatSvc *chatService.Service, requireUser func(http.Handler) http.Handler, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		chatSvc:     chatSvc,
		requireUser: requireUser,
		logger:      logger,
	}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string        `json:"event"`
	Content   string        `json:"content,omitempty"`
	SessionID string        `json:"sessionId,omitempty"`
	Message   *chat.Message `json:"message,omitempty"`
	DelayMS   int64         `json:"delayMs,omitempty"`
	Finished  bool          `json:"finished,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// RegisterRoutes registers the SSE endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(h.requireUser).Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := r.URL.Query().Get("message")
	if userMessage == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}

	u, _ := authservice.UserFromContext(r.Context())
	if _, err := h.chatSvc.GetOwnedSession(r.Context(), sessionID, u.ID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := h.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
		h.logger.Warn("stream failed", zap.String("session", sessionID), zap.Error(err))
	}
}

// HandleStreamRequest stores the user message, announces typing, then sends the bot reply.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	sse, err := utils.NewSSEWriter(w)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return err
	}

	userMsg, err := h.chatSvc.SaveUserMessage(ctx, sessionID, userMessage)
	if err != nil {
		h.sendError(sse, fmt.Sprintf("failed to save message: %v", err))
		return err
	}

	delay := h.chatSvc.NextDelay()
	h.send(sse, StreamResponse{Event: "start", SessionID: sessionID, Message: &userMsg})
	h.send(sse, StreamResponse{Event: "typing", SessionID: sessionID, DelayMS: delay.Milliseconds()})

	botMsg, err := h.chatSvc.RespondAfter(ctx, sessionID, userMsg.Content, delay)
	if err != nil {
		h.sendError(sse, fmt.Sprintf("reply failed: %v", err))
		return err
	}

	h.send(sse, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   botMsg.Content,
		Message:   &botMsg,
	})
	h.send(sse, StreamResponse{Event: "end", SessionID: sessionID, Finished: true})

	h.logger.Debug("stream completed", zap.String("session", sessionID))
	return nil
}

func (h *Handler) send(sse *utils.SSEWriter, response StreamResponse) {
	if err := sse.Send(response); err != nil {
		h.logger.Debug("sse write failed", zap.Error(err))
	}
}

func (h *Handler) sendError(sse *utils.SSEWriter, errorMsg string) {
	h.send(sse, StreamResponse{Event: "error", Error: errorMsg})
}
