package chat

import "time"

// Session captures a transient conversation owned by a demo user.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Exchange pairs a user message with the bot reply it produced.
type Exchange struct {
	User Message `json:"user"`
	Bot  Message `json:"bot"`
}
