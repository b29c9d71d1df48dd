package user

import (
	"strings"
	"time"
)

// User is a demo account. Nothing about it is persisted.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// NameFromEmail derives a display name from the local part of an address.
func NameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
