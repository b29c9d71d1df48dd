package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/talkeasy/backend/internal/model/chat"
)

var (
	ErrUserRequired    = errors.New("user id is required")
	ErrSessionNotFound = errors.New("session not found")
	ErrEmptyContent    = errors.New("message content is required")
	ErrInvalidSender   = errors.New("invalid message sender")
)

// WelcomeMessage opens every new session.
const WelcomeMessage = "Hello! I'm TalkEasy, your conversation assistant. Need help finding something to talk about? You can select from the suggested topics or tell me what you're interested in!"

// Replier produces the bot's answer to user text.
type Replier interface {
	Reply(text string) string
}

// Service encapsulates conversation state management.
type Service struct {
	replier Replier
	typist  Typist
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.RWMutex
	sessions map[string]chat.Session
	messages map[string][]chat.Message
}

// Option customises a Service.
type Option func(*Service)

// WithTypist sets the simulated typing delay.
func WithTypist(t Typist) Option {
	return func(s *Service) {
		if t != nil {
			s.typist = t
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now, used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService bootstraps the in-memory chat service. Transcripts live only as
// long as the process or until the session is deleted.
func NewService(replier Replier, opts ...Option) *Service {
	s := &Service{
		replier:  replier,
		typist:   NoDelay{},
		logger:   zap.NewNop(),
		now:      time.Now,
		sessions: make(map[string]chat.Session),
		messages: make(map[string][]chat.Message),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession provisions a session for userID, greeted by the bot.
func (s *Service) CreateSession(_ context.Context, userID string) (chat.Session, error) {
	if userID == "" {
		return chat.Session{}, ErrUserRequired
	}

	now := s.now().UTC()
	session := chat.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
	}
	welcome := chat.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Sender:    chat.SenderBot,
		Content:   WelcomeMessage,
		CreatedAt: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.messages[session.ID] = append(make([]chat.Message, 0, 16), welcome)
	s.mu.Unlock()

	s.logger.Debug("session created", zap.String("session", session.ID), zap.String("user", userID))
	return session, nil
}

// SaveMessage appends a message to the session history and returns the stored copy.
func (s *Service) SaveMessage(_ context.Context, message chat.Message) (chat.Message, error) {
	if message.SessionID == "" {
		return chat.Message{}, ErrSessionNotFound
	}
	if !message.Sender.Valid() {
		return chat.Message{}, fmt.Errorf("%w: %q", ErrInvalidSender, message.Sender)
	}
	if strings.TrimSpace(message.Content) == "" {
		return chat.Message{}, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[message.SessionID]; !ok {
		return chat.Message{}, ErrSessionNotFound
	}

	message.ID = uuid.NewString()
	if message.CreatedAt.IsZero() {
		message.CreatedAt = s.now().UTC()
	}

	s.messages[message.SessionID] = append(s.messages[message.SessionID], message)
	return message, nil
}

// SaveUserMessage trims and stores user input.
func (s *Service) SaveUserMessage(ctx context.Context, sessionID, content string) (chat.Message, error) {
	return s.SaveMessage(ctx, chat.Message{
		SessionID: sessionID,
		Sender:    chat.SenderUser,
		Content:   strings.TrimSpace(content),
	})
}

// NextDelay draws the typing delay for the next reply.
func (s *Service) NextDelay() time.Duration {
	return s.typist.Delay()
}

// Respond waits a freshly drawn typing delay, then replies to userText.
func (s *Service) Respond(ctx context.Context, sessionID, userText string) (chat.Message, error) {
	return s.RespondAfter(ctx, sessionID, userText, s.NextDelay())
}

// RespondAfter waits delay, generates the bot reply to userText and stores it.
func (s *Service) RespondAfter(ctx context.Context, sessionID, userText string, delay time.Duration) (chat.Message, error) {
	if err := Wait(ctx, delay); err != nil {
		return chat.Message{}, fmt.Errorf("typing interrupted: %w", err)
	}

	reply := s.replier.Reply(userText)
	msg, err := s.SaveMessage(ctx, chat.Message{
		SessionID: sessionID,
		Sender:    chat.SenderBot,
		Content:   reply,
	})
	if err != nil {
		return chat.Message{}, err
	}

	s.logger.Debug("bot replied", zap.String("session", sessionID), zap.Int("chars", len(reply)))
	return msg, nil
}

// Exchange records a user message and the bot's reply to it.
func (s *Service) Exchange(ctx context.Context, sessionID, content string) (chat.Exchange, error) {
	userMsg, err := s.SaveUserMessage(ctx, sessionID, content)
	if err != nil {
		return chat.Exchange{}, err
	}

	botMsg, err := s.Respond(ctx, sessionID, userMsg.Content)
	if err != nil {
		return chat.Exchange{User: userMsg}, err
	}

	return chat.Exchange{User: userMsg, Bot: botMsg}, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// GetOwnedSession retrieves a session only if it belongs to userID.
// Foreign sessions are reported as not found.
func (s *Service) GetOwnedSession(ctx context.Context, sessionID, userID string) (chat.Session, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	if session.UserID != userID {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// LoadTranscript returns stored messages for the provided session.
func (s *Service) LoadTranscript(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.messages[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}

// DeleteSession ends a session and discards its transcript.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	delete(s.messages, sessionID)
	return nil
}
