package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// ErrStreamingUnsupported is returned when the ResponseWriter cannot flush.
var ErrStreamingUnsupported = errors.New("streaming unsupported")

// SSEWriter writes Server-Sent Events to a flushable response.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter 设置Server-Sent Events响应头并返回写入器
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	SetupSSEHeaders(w)
	return &SSEWriter{w: w, flusher: flusher}, nil
}

// SetupSSEHeaders 设置Server-Sent Events响应头
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// Send 发送Server-Sent Events数据块
func (s *SSEWriter) Send(payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		zap.L().Warn("failed to marshal sse payload", zap.Error(err))
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// SendEvent 发送带事件类型的SSE消息
func (s *SSEWriter) SendEvent(event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		zap.L().Warn("failed to marshal sse event data", zap.Error(err))
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}
