package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	resp := httptest.NewRecorder()
	RespondError(resp, http.StatusBadRequest, "bad input")

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"bad input"}`, resp.Body.String())
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var payload struct {
		Text string `json:"text"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi"}`))
	require.NoError(t, DecodeJSON(httptest.NewRecorder(), req, &payload))
	assert.Equal(t, "hi", payload.Text)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"hi","extra":1}`))
	require.Error(t, DecodeJSON(httptest.NewRecorder(), req, &payload))
}

func TestSSEWriter(t *testing.T) {
	resp := httptest.NewRecorder()
	sse, err := NewSSEWriter(resp)
	require.NoError(t, err)

	require.NoError(t, sse.Send(map[string]string{"event": "start"}))
	require.NoError(t, sse.SendEvent("message", map[string]string{"content": "hello"}))

	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))
	assert.Equal(t, "data: {\"event\":\"start\"}\n\nevent: message\ndata: {\"content\":\"hello\"}\n\n", resp.Body.String())
	assert.True(t, resp.Flushed)
}

type plainWriter struct{ http.ResponseWriter }

func TestSSEWriterRequiresFlusher(t *testing.T) {
	_, err := NewSSEWriter(plainWriter{httptest.NewRecorder()})
	require.ErrorIs(t, err, ErrStreamingUnsupported)
}
