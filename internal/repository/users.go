package repository

import (
	"sync"

	"taskboard/internal/apperr"
	"taskboard/internal/models"

	"github.com/google/uuid"
)

// Users is the in-memory credential store, keyed by normalized email.
type Users struct {
	mu      sync.RWMutex
	byEmail map[string]*models.User
	byID    map[string]*models.User
}

func NewUsers() *Users {
	return &Users{
		byEmail: make(map[string]*models.User),
		byID:    make(map[string]*models.User),
	}
}

// Create stores a new user. The email must already be normalized. Returns
// apperr.ErrConflict when the email is taken.
func (r *Users) Create(name, email, passwordHash string) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[email]; ok {
		return models.User{}, apperr.ErrConflict
	}
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
	}
	r.byEmail[email] = u
	r.byID[u.ID] = u
	return *u, nil
}

// ByEmail looks a user up by normalized email.
func (r *Users) ByEmail(email string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[email]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

func (r *Users) ByID(id string) (models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return models.User{}, false
	}
	return *u, true
}

// SetPasswordHash replaces the stored hash of user id.
func (r *Users) SetPasswordHash(id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return apperr.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}
