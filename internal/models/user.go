package models

import "time"

// User is a registered account. PasswordHash never leaves the process.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// PublicUser is the user view returned to clients.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// ResetEntry is an outstanding password reset.
type ResetEntry struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
}
