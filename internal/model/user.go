// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered user account.
//
// Users sign up with a username, email, and password, or through GitHub OAuth.
// The primary key is a numeric autoincrement ID assigned by SQLite on insert.
//
// WHY PasswordHash AND NOT Password?
// We never store the raw password. Signup runs it through bcrypt and only
// the hash is persisted. For GitHub OAuth accounts PasswordHash is empty —
// those users can never log in with a password (there is no hash to match).
//
// The UNIQUE constraints on username and email in the DB are what enforce
// "each is globally unique" — the repository surfaces violations as
// apperror.ErrConflict.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never serialized
	GitHubID     int64     `json:"-"` // 0 unless the account was created via OAuth
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
