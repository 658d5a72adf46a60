package users

import (
	"strings"
	"time"
)

type User struct {
	ID           string
	Name         string
	Email        string
	Avatar       string
	RegisteredAt time.Time
}

// Secret holds the credential material of a user. It never leaves the auth
// service and is never rendered.
type Secret struct {
	PasswordHash string
}

// NormalizeEmail is applied to every email before it is stored or looked up,
// so the uniqueness of emails is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
