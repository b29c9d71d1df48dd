package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authservice "github.com/talkeasy/backend/internal/service/auth"
	"github.com/talkeasy/backend/pkg/utils"
)

// Handler 登录注册的HTTP处理器
type Handler struct {
	authSvc *authservice.Service
	logger  *zap.Logger
}

// New 创建认证处理器
func New(authSvc *authservice.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{authSvc: authSvc, logger: logger}
}

// RegisterRoutes 注册认证相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(auth chi.Router) {
		auth.Post("/signup", h.handleSignup)
		auth.Post("/login", h.handleLogin)
		auth.With(h.RequireUser).Post("/logout", h.handleLogout)
		auth.With(h.RequireUser).Get("/me", h.handleMe)
	})
}

// RequireUser rejects requests without a valid bearer token and stores the
// user on the request context. EventSource and WebSocket clients cannot set
// headers, so a token query parameter is accepted as well.
func (h *Handler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := h.authSvc.Authenticate(r.Context(), TokenFromRequest(r))
		if err != nil {
			utils.RespondError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(authservice.WithUser(r.Context(), u)))
	})
}

// TokenFromRequest extracts the bearer token from the Authorization header or
// the token query parameter.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	var payload authservice.SignupRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grant, err := h.authSvc.Signup(r.Context(), payload)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, grant)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var payload authservice.LoginRequest
	if err := utils.DecodeJSON(w, r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	grant, err := h.authSvc.Login(r.Context(), payload)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, grant)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.authSvc.Logout(r.Context(), TokenFromRequest(r)); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, authservice.ErrUnauthorized) {
			status = http.StatusUnauthorized
		}
		utils.RespondError(w, status, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := authservice.UserFromContext(r.Context())
	utils.RespondJSON(w, http.StatusOK, u)
}
