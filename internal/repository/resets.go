package repository

import (
	"sync"
	"time"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
)

// Resets holds outstanding password reset entries by token.
type Resets struct {
	mu      sync.Mutex
	entries map[string]models.ResetEntry
}

func NewResets() *Resets {
	return &Resets{entries: make(map[string]models.ResetEntry)}
}

// Put stores e and discards any other entry of the same user, so only the
// newest reset is usable.
func (r *Resets) Put(e models.ResetEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, old := range r.entries {
		if old.UserID == e.UserID {
			delete(r.entries, token)
		}
	}
	r.entries[e.Token] = e
}

// Consume removes and returns the entry for token. Unknown tokens and tokens
// expired at now yield apperr.ErrInvalidToken; an expired entry is discarded.
func (r *Resets) Consume(token string, now time.Time) (models.ResetEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[token]
	if !ok {
		return models.ResetEntry{}, apperr.ErrInvalidToken
	}
	delete(r.entries, token)
	if !now.Before(e.ExpiresAt) {
		return models.ResetEntry{}, apperr.ErrInvalidToken
	}
	return e, nil
}

// Len reports how many entries are held, expired ones included.
func (r *Resets) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
