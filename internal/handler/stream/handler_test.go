package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authhandler "github.com/talkeasy/backend/internal/handler/auth"
	"github.com/talkeasy/backend/internal/model/topic"
	authservice "github.com/talkeasy/backend/internal/service/auth"
	chatservice "github.com/talkeasy/backend/internal/service/chat"
	"github.com/talkeasy/backend/internal/service/conversation"
)

type fixture struct {
	router  *chi.Mux
	chatSvc *chatservice.Service
	token   string
	userID  string
}

func setup(t *testing.T, typist chatservice.Typist) fixture {
	t.Helper()
	conv := conversation.NewService(topic.Default(), conversation.WithSeed(3))
	chatSvc := chatservice.NewService(conv, chatservice.WithTypist(typist))
	authSvc := authservice.NewService(nil)

	grant, err := authSvc.Login(context.Background(), authservice.LoginRequest{Email: "s@example.com", Password: "pw"})
	require.NoError(t, err)

	r := chi.NewRouter()
	New(chatSvc, authhandler.New(authSvc, nil).RequireUser, nil).RegisterRoutes(r)
	return fixture{router: r, chatSvc: chatSvc, token: grant.Token, userID: grant.User.ID}
}

func readEvents(t *testing.T, body string) []StreamResponse {
	t.Helper()
	var events []StreamResponse
	scanner := bufio.NewScanner(strings.NewReader(body))
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			continue
		}
		var ev StreamResponse
		require.NoError(t, json.Unmarshal([]byte(data), &ev))
		events = append(events, ev)
	}
	return events
}

func TestStreamSendsTypingThenReply(t *testing.T) {
	f := setup(t, chatservice.NewRandomDelay(time.Millisecond, 2*time.Millisecond))
	session, err := f.chatSvc.CreateSession(context.Background(), f.userID)
	require.NoError(t, err)

	path := "/stream/" + session.ID + "?token=" + f.token + "&message=" + url.QueryEscape("hello there")
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))

	events := readEvents(t, resp.Body.String())
	require.Len(t, events, 4)
	assert.Equal(t, "start", events[0].Event)
	assert.Equal(t, "hello there", events[0].Message.Content)
	assert.Equal(t, "typing", events[1].Event)
	assert.Equal(t, "message", events[2].Event)
	assert.Equal(t, "Hello! How can I help make your conversations more engaging today?", events[2].Content)
	assert.Equal(t, "end", events[3].Event)
	assert.True(t, events[3].Finished)

	transcript, err := f.chatSvc.LoadTranscript(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Len(t, transcript, 3)
}

func TestStreamRequiresMessage(t *testing.T) {
	f := setup(t, chatservice.NoDelay{})
	session, _ := f.chatSvc.CreateSession(context.Background(), f.userID)

	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/"+session.ID+"?token="+f.token, nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestStreamUnknownSession(t *testing.T) {
	f := setup(t, chatservice.NoDelay{})

	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/missing?message=hi&token="+f.token, nil))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestStreamRequiresAuth(t *testing.T) {
	f := setup(t, chatservice.NoDelay{})

	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/stream/any?message=hi", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestStreamCancelledWhileTyping(t *testing.T) {
	f := setup(t, chatservice.NewRandomDelay(time.Hour, time.Hour))
	session, _ := f.chatSvc.CreateSession(context.Background(), f.userID)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := httptest.NewRecorder()
	err := New(f.chatSvc, nil, nil).HandleStreamRequest(ctx, resp, session.ID, "hi")
	require.ErrorIs(t, err, context.Canceled)

	events := readEvents(t, resp.Body.String())
	require.NotEmpty(t, events)
	assert.Equal(t, "error", events[len(events)-1].Event)
}
