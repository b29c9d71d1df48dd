package chat

import "time"

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Valid reports whether s is a known sender.
func (s Sender) Valid() bool {
	return s == SenderUser || s == SenderBot
}

// Message is one immutable turn of a transcript.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}
