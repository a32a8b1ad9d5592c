package repository

import (
	"sync"
	"time"

	"taskboard/internal/models"

	"github.com/google/uuid"
)

// Activity is the append-only activity log shared by all users.
type Activity struct {
	mu      sync.RWMutex
	entries []models.ActivityLogEntry
}

func NewActivity() *Activity {
	return &Activity{}
}

// Append records an action and returns the stored entry.
func (r *Activity) Append(userID string, action models.ActivityAction, todoTitle string, at time.Time) models.ActivityLogEntry {
	e := models.ActivityLogEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		TodoTitle: todoTitle,
		Timestamp: at,
	}
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	return e
}

// ListByUser returns userID's entries, newest first.
func (r *Activity) ListByUser(userID string) []models.ActivityLogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.ActivityLogEntry, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].UserID == userID {
			out = append(out, r.entries[i])
		}
	}
	return out
}
