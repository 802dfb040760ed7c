// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is an account that owns documents or signs them.
type User struct {
	ID           int64
	UserName     string
	FullName     string
	Email        string
	PasswordHash []byte
	Role         string
	CreatedAt    time.Time
}
