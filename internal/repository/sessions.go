package repository

import (
	"sync"

	"github.com/google/uuid"
)

// Sessions maps bearer tokens to user ids. A user may hold many tokens.
type Sessions struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewSessions() *Sessions {
	return &Sessions{tokens: make(map[string]string)}
}

// Issue creates a new random token for userID.
func (r *Sessions) Issue(userID string) string {
	token := uuid.New().String()
	r.mu.Lock()
	r.tokens[token] = userID
	r.mu.Unlock()
	return token
}

// Resolve returns the user id behind token.
func (r *Sessions) Resolve(token string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.tokens[token]
	return userID, ok
}

// Revoke deletes token and reports whether it was live.
func (r *Sessions) Revoke(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tokens[token]; !ok {
		return false
	}
	delete(r.tokens, token)
	return true
}
