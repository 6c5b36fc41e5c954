// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// Users normally register with email and password; the password is stored only
// as a bcrypt hash and never serialized. Accounts created through GitHub
// sign-in have no password hash and instead carry the GitHub numeric user ID,
// which is UNIQUE in the database so one GitHub account maps to exactly one
// app account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // bcrypt hash; empty for OAuth-only accounts
	GitHubID     int64     `json:"-"` // 0 when the account was not created via GitHub
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
