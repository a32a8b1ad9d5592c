package repository

import (
	"sync"
	"time"

	"taskboard/internal/apperr"
	"taskboard/internal/models"

	"github.com/google/uuid"
)

// Todos is the in-memory todo store. Every lookup is scoped by owner: a todo
// owned by someone else is reported exactly like a missing one. Mutations
// append their activity entry before the lock is released.
type Todos struct {
	mu       sync.RWMutex
	todos    []*models.Todo
	activity *Activity
	now      func() time.Time
}

func NewTodos(activity *Activity, now func() time.Time) *Todos {
	if now == nil {
		now = time.Now
	}
	return &Todos{activity: activity, now: now}
}

// ListByUser returns userID's todos in insertion order.
func (r *Todos) ListByUser(userID string) []models.Todo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Todo, 0)
	for _, t := range r.todos {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out
}

// Create inserts todo for its UserID, assigning ID and CreatedAt.
func (r *Todos) Create(todo models.Todo) (models.Todo, models.ActivityLogEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	todo.ID = uuid.New().String()
	todo.CreatedAt = r.now()
	r.todos = append(r.todos, &todo)
	entry := r.activity.Append(todo.UserID, models.ActionCreated, todo.Title, todo.CreatedAt)
	return todo, entry
}

// Update applies patch to the todo id owned by userID. The returned entry is
// nil when the change does not qualify for the activity log.
func (r *Todos) Update(userID, id string, patch *models.TodoPatch) (models.Todo, *models.ActivityLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOwned(userID, id)
	if i < 0 {
		return models.Todo{}, nil, apperr.ErrNotFound
	}
	t := r.todos[i]
	prev := t.Status
	patch.Apply(t)

	var entry *models.ActivityLogEntry
	if action := models.TransitionAction(prev, t.Status); action != "" {
		e := r.activity.Append(userID, action, t.Title, r.now())
		entry = &e
	}
	return *t, entry, nil
}

// Delete removes the todo id owned by userID.
func (r *Todos) Delete(userID, id string) (models.ActivityLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOwned(userID, id)
	if i < 0 {
		return models.ActivityLogEntry{}, apperr.ErrNotFound
	}
	title := r.todos[i].Title
	r.todos = append(r.todos[:i], r.todos[i+1:]...)
	return r.activity.Append(userID, models.ActionDeleted, title, r.now()), nil
}

func (r *Todos) indexOwned(userID, id string) int {
	for i, t := range r.todos {
		if t.ID == id && t.UserID == userID {
			return i
		}
	}
	return -1
}
