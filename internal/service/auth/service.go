package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talkeasy/backend/internal/model/user"
)

var (
	ErrEmailRequired    = errors.New("a valid email is required")
	ErrNameRequired     = errors.New("name is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrPasswordMismatch = errors.New("passwords don't match")
	ErrUnauthorized     = errors.New("not logged in")
)

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest is the account creation form.
type SignupRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Grant is the result of a successful login or signup.
type Grant struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

// Service simulates login state in memory. Passwords are only checked for
// presence and confirmation; they are never stored.
type Service struct {
	logger *zap.Logger

	mu      sync.RWMutex
	users   map[string]user.User
	byEmail map[string]string
	tokens  map[string]string
}

// NewService creates an empty demo auth service.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		logger:  logger,
		users:   make(map[string]user.User),
		byEmail: make(map[string]string),
		tokens:  make(map[string]string),
	}
}

// Signup registers (or replaces) the demo account for an email and logs it in.
func (s *Service) Signup(_ context.Context, req SignupRequest) (Grant, error) {
	email := normalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		return Grant{}, ErrNameRequired
	case !validEmail(email):
		return Grant{}, ErrEmailRequired
	case req.Password == "":
		return Grant{}, ErrPasswordRequired
	case req.Password != req.ConfirmPassword:
		return Grant{}, ErrPasswordMismatch
	}

	u := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	if previous, ok := s.byEmail[email]; ok {
		delete(s.users, previous)
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	token := s.issueLocked(u.ID)
	s.mu.Unlock()

	s.logger.Info("account created", zap.String("user", u.ID))
	return Grant{Token: token, User: u}, nil
}

// Login accepts any password. Unknown emails get an account named after the
// local part of the address.
func (s *Service) Login(_ context.Context, req LoginRequest) (Grant, error) {
	email := normalizeEmail(req.Email)
	if !validEmail(email) {
		return Grant{}, ErrEmailRequired
	}
	if req.Password == "" {
		return Grant{}, ErrPasswordRequired
	}

	s.mu.Lock()
	u, ok := s.users[s.byEmail[email]]
	if !ok {
		u = user.User{
			ID:        uuid.NewString(),
			Name:      user.NameFromEmail(email),
			Email:     email,
			CreatedAt: time.Now().UTC(),
		}
		s.users[u.ID] = u
		s.byEmail[email] = u.ID
	}
	token := s.issueLocked(u.ID)
	s.mu.Unlock()

	s.logger.Info("login", zap.String("user", u.ID), zap.Bool("new", !ok))
	return Grant{Token: token, User: u}, nil
}

// Logout revokes a token.
func (s *Service) Logout(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token]; !ok {
		return ErrUnauthorized
	}
	delete(s.tokens, token)
	return nil
}

// Authenticate resolves the user behind a token.
func (s *Service) Authenticate(_ context.Context, token string) (user.User, error) {
	if token == "" {
		return user.User{}, ErrUnauthorized
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[s.tokens[token]]
	if !ok {
		return user.User{}, ErrUnauthorized
	}
	return u, nil
}

func (s *Service) issueLocked(userID string) string {
	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	return ok && local != "" && domain != ""
}
