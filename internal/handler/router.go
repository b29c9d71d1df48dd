package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/talkeasy/backend/internal/config"
	authhandler "github.com/talkeasy/backend/internal/handler/auth"
	"github.com/talkeasy/backend/internal/handler/chat"
	"github.com/talkeasy/backend/internal/handler/stream"
	"github.com/talkeasy/backend/internal/handler/topic"
	"github.com/talkeasy/backend/internal/handler/ws"
	middlewarePkg "github.com/talkeasy/backend/internal/middleware"
	authService "github.com/talkeasy/backend/internal/service/auth"
	chatService "github.com/talkeasy/backend/internal/service/chat"
	"github.com/talkeasy/backend/internal/service/conversation"
	"github.com/talkeasy/backend/pkg/utils"
)

// Services groups the dependencies the HTTP layer needs.
type Services struct {
	Conversation *conversation.Service
	Chat         *chatService.Service
	Auth         *authService.Service
}

// NewRouter wires HTTP routes to core services.
func NewRouter(cfg *config.Config, svcs Services, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(cfg.Server.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"topics": svcs.Conversation.Corpus().Size(),
		})
	})

	authHandler := authhandler.New(svcs.Auth, logger.Named("auth"))
	topicHandler := topic.New(svcs.Conversation, cfg.Chat.DefaultTopicCount)
	chatHandler := chat.New(svcs.Chat, svcs.Conversation, authHandler.RequireUser, logger.Named("chat"))
	streamHandler := stream.New(svcs.Chat, authHandler.RequireUser, logger.Named("stream"))
	wsHandler := ws.New(svcs.Chat, svcs.Conversation, authHandler.RequireUser,
		cfg.Server.AllowedOrigins, cfg.Chat.DefaultTopicCount, logger.Named("ws"))

	r.Route("/api", func(api chi.Router) {
		topicHandler.RegisterRoutes(api)
		authHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}
