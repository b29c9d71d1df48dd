package topic

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/talkeasy/backend/internal/service/conversation"
	"github.com/talkeasy/backend/pkg/utils"
)

// maxTopicCount bounds the count query parameter; the sampler caps again at corpus size.
const maxTopicCount = 100

// Handler 话题服务的HTTP处理器
type Handler struct {
	conversation *conversation.Service
	defaultCount int
}

// New 创建话题处理器
func New(svc *conversation.Service, defaultCount int) *Handler {
	if defaultCount < 1 {
		defaultCount = conversation.DefaultTopicCount
	}
	return &Handler{
		conversation: svc,
		defaultCount: defaultCount,
	}
}

// RegisterRoutes 注册话题相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/topics", h.handleListTopics)
	r.Get("/categories", h.handleListCategories)
}

// handleListTopics 返回随机抽取的开场话题
func (h *Handler) handleListTopics(w http.ResponseWriter, r *http.Request) {
	count := h.defaultCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.RespondError(w, http.StatusBadRequest, "count must be an integer")
			return
		}
		count = min(n, maxTopicCount)
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"topics": h.conversation.Topics(count),
	})
}

// handleListCategories 列出完整的话题库
func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"categories": h.conversation.Corpus().Groups(),
	})
}
