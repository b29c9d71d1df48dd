package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authhandler "github.com/talkeasy/backend/internal/handler/auth"
	"github.com/talkeasy/backend/internal/model/chat"
	"github.com/talkeasy/backend/internal/model/topic"
	authservice "github.com/talkeasy/backend/internal/service/auth"
	chatservice "github.com/talkeasy/backend/internal/service/chat"
	"github.com/talkeasy/backend/internal/service/conversation"
)

type fixture struct {
	server  *httptest.Server
	chatSvc *chatservice.Service
	token   string
	userID  string
}

func setup(t *testing.T, origins []string) fixture {
	t.Helper()
	conv := conversation.NewService(topic.Default(), conversation.WithSeed(9))
	chatSvc := chatservice.NewService(conv)
	authSvc := authservice.NewService(nil)
	grant, err := authSvc.Login(context.Background(), authservice.LoginRequest{Email: "ws@example.com", Password: "pw"})
	require.NoError(t, err)

	r := chi.NewRouter()
	New(chatSvc, conv, authhandler.New(authSvc, nil).RequireUser, origins, 4, nil).RegisterRoutes(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	return fixture{server: server, chatSvc: chatSvc, token: grant.Token, userID: grant.User.ID}
}

func (f fixture) dial(t *testing.T, sessionID string, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/" + sessionID + "?token=" + f.token
	return websocket.DefaultDialer.Dial(url, header)
}

func readFrame(t *testing.T, c *websocket.Conn) OutgoingMessage {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg OutgoingMessage
	require.NoError(t, c.ReadJSON(&msg))
	return msg
}

func decodeData(t *testing.T, data any, dst any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, dst))
}

func TestWebSocketTextExchange(t *testing.T) {
	f := setup(t, nil)
	session, err := f.chatSvc.CreateSession(context.Background(), f.userID)
	require.NoError(t, err)

	c, _, err := f.dial(t, session.ID, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "connected", readFrame(t, c).Type)

	require.NoError(t, c.WriteJSON(map[string]any{"type": "text", "data": map[string]string{"text": "thanks a lot"}}))

	typing := readFrame(t, c)
	assert.Equal(t, "typing", typing.Type)

	reply := readFrame(t, c)
	require.Equal(t, "message", reply.Type)
	var botMsg chat.Message
	decodeData(t, reply.Data, &botMsg)
	assert.Equal(t, chat.SenderBot, botMsg.Sender)
	assert.Equal(t, "You're welcome! Let me know if you need more conversation starters.", botMsg.Content)

	transcript, err := f.chatSvc.LoadTranscript(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Len(t, transcript, 3)
}

func TestWebSocketTopics(t *testing.T) {
	f := setup(t, nil)
	session, _ := f.chatSvc.CreateSession(context.Background(), f.userID)

	c, _, err := f.dial(t, session.ID, nil)
	require.NoError(t, err)
	defer c.Close()
	readFrame(t, c)

	require.NoError(t, c.WriteJSON(map[string]any{"type": "topics", "data": map[string]int{"count": 3}}))
	msg := readFrame(t, c)
	require.Equal(t, "topics", msg.Type)

	var body struct {
		Topics []string `json:"topics"`
	}
	decodeData(t, msg.Data, &body)
	assert.Len(t, body.Topics, 3)

	require.NoError(t, c.WriteJSON(map[string]any{"type": "topics"}))
	decodeData(t, readFrame(t, c).Data, &body)
	assert.Len(t, body.Topics, 4)
}

func TestWebSocketRejectsUnknownType(t *testing.T) {
	f := setup(t, nil)
	session, _ := f.chatSvc.CreateSession(context.Background(), f.userID)

	c, _, err := f.dial(t, session.ID, nil)
	require.NoError(t, err)
	defer c.Close()
	readFrame(t, c)

	require.NoError(t, c.WriteJSON(map[string]any{"type": "audio"}))
	assert.Equal(t, "error", readFrame(t, c).Type)

	require.NoError(t, c.WriteJSON(map[string]any{"type": "text", "sessionId": "other", "data": map[string]string{"text": "hi"}}))
	assert.Equal(t, "error", readFrame(t, c).Type)
}

func TestWebSocketUnknownSession(t *testing.T) {
	f := setup(t, nil)

	_, resp, err := f.dial(t, "missing", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWebSocketOriginAllowList(t *testing.T) {
	f := setup(t, []string{"https://talkeasy.app"})
	session, _ := f.chatSvc.CreateSession(context.Background(), f.userID)

	_, resp, err := f.dial(t, session.ID, http.Header{"Origin": {"https://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	c, _, err := f.dial(t, session.ID, http.Header{"Origin": {"https://talkeasy.app"}})
	require.NoError(t, err)
	c.Close()
}
