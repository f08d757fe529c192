package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string   // argon2 encoded
	Active       bool
	Roles        []string // Parsed from space-delimited storage
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role names recognised by the request gate.
const (
	RoleBasic = "basic"
	RoleAdmin = "admin"
)
