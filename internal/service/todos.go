package service

import (
	"context"
	"errors"
	"strings"

	"taskboard/internal/apperr"
	"taskboard/internal/models"
	"taskboard/internal/repository"
	"taskboard/pkg/logger"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/oapi-codegen/nullable"
)

const (
	msgTitleRequired   = "Title is required"
	msgTodoNotFound    = "Todo not found"
	msgInvalidStatus   = "Invalid status"
	msgInvalidPriority = "Invalid priority"
	msgInvalidUnit     = "Invalid duration unit"
	msgInvalidDuration = "Duration must be a positive number"
	msgInvalidDueDate  = "Due date must be YYYY-MM-DD"
)

var (
	statusRule   = validation.In(models.StatusPending, models.StatusInProgress, models.StatusCompleted).Error(msgInvalidStatus)
	priorityRule = validation.In(models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical).Error(msgInvalidPriority)
	unitRule     = validation.In(models.DurationMinutes, models.DurationHours, models.DurationDays).Error(msgInvalidUnit)
	dueDateRule  = validation.Date("2006-01-02").Error(msgInvalidDueDate)
)

// ActivityPublisher forwards activity entries to outside consumers.
type ActivityPublisher interface {
	PublishActivity(ctx context.Context, entry models.ActivityLogEntry) error
}

// TodoService is CRUD over the todo store for an already authenticated user.
type TodoService struct {
	todos     *repository.Todos
	activity  *repository.Activity
	publisher ActivityPublisher
}

// NewTodoService wires the stores; publisher may be nil.
func NewTodoService(todos *repository.Todos, activity *repository.Activity, publisher ActivityPublisher) *TodoService {
	return &TodoService{todos: todos, activity: activity, publisher: publisher}
}

func (s *TodoService) List(ctx context.Context, userID string) []models.Todo {
	return s.todos.ListByUser(userID)
}

// Create validates fields, applies defaults and stores the todo for userID.
func (s *TodoService) Create(ctx context.Context, userID string, f models.TodoFields) (models.Todo, error) {
	todo := models.Todo{
		UserID:   userID,
		Title:    strings.TrimSpace(deref(f.Title)),
		Status:   models.StatusPending,
		Priority: models.PriorityMedium,
	}
	if f.Status != nil {
		todo.Status = *f.Status
	}
	if f.Priority != nil {
		todo.Priority = *f.Priority
	}
	todo.Description = strings.TrimSpace(deref(f.Description))
	todo.DurationValue = deref(f.DurationValue)
	todo.DurationUnit = models.DurationUnit(strings.TrimSpace(string(deref(f.DurationUnit))))
	todo.DueDate = strings.TrimSpace(deref(f.DueDate))

	if err := firstError(
		validation.Validate(todo.Title, validation.Required.Error(msgTitleRequired)),
		validation.Validate(todo.Status, validation.Required.Error(msgInvalidStatus), statusRule),
		validation.Validate(todo.Priority, validation.Required.Error(msgInvalidPriority), priorityRule),
		validateDuration(f.DurationValue),
		validation.Validate(todo.DurationUnit, unitRule),
		validation.Validate(todo.DueDate, dueDateRule),
	); err != nil {
		return models.Todo{}, err
	}

	created, entry := s.todos.Create(todo)
	s.publish(ctx, entry)
	return created, nil
}

// Update applies the fields present in patch to the todo id owned by userID.
func (s *TodoService) Update(ctx context.Context, userID, id string, patch *models.TodoPatch) (models.Todo, error) {
	if err := normalizePatch(patch); err != nil {
		return models.Todo{}, err
	}
	todo, entry, err := s.todos.Update(userID, id, patch)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Todo{}, apperr.NotFound(msgTodoNotFound)
	}
	if err != nil {
		return models.Todo{}, err
	}
	if entry != nil {
		s.publish(ctx, *entry)
	}
	return todo, nil
}

// Delete removes the todo id owned by userID.
func (s *TodoService) Delete(ctx context.Context, userID, id string) error {
	entry, err := s.todos.Delete(userID, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.NotFound(msgTodoNotFound)
	}
	if err != nil {
		return err
	}
	s.publish(ctx, entry)
	return nil
}

// ListActivity returns userID's activity, newest first.
func (s *TodoService) ListActivity(ctx context.Context, userID string) []models.ActivityLogEntry {
	return s.activity.ListByUser(userID)
}

func (s *TodoService) publish(ctx context.Context, entry models.ActivityLogEntry) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishActivity(ctx, entry); err != nil {
		logger.Warn(ctx, "Activity publish failed", "error", err, "activity_id", entry.ID)
	}
}

// normalizePatch trims string fields, turns "" on optional fields into an
// explicit clear, and validates what remains.
func normalizePatch(p *models.TodoPatch) error {
	if p.Title.IsSpecified() {
		title, _ := p.Title.Get()
		title = strings.TrimSpace(title)
		if err := validation.Validate(title, validation.Required.Error(msgTitleRequired)); err != nil {
			return apperr.Validation(err.Error())
		}
		p.Title.Set(title)
	}
	trimOptional(&p.Description)
	trimOptional(&p.DueDate)
	if v, err := p.DurationUnit.Get(); err == nil {
		if v = models.DurationUnit(strings.TrimSpace(string(v))); v == "" {
			p.DurationUnit.SetNull()
		} else {
			p.DurationUnit.Set(v)
		}
	}

	var errs []error
	if p.Status.IsSpecified() {
		v, _ := p.Status.Get()
		errs = append(errs, validation.Validate(v, validation.Required.Error(msgInvalidStatus), statusRule))
	}
	if p.Priority.IsSpecified() {
		v, _ := p.Priority.Get()
		errs = append(errs, validation.Validate(v, validation.Required.Error(msgInvalidPriority), priorityRule))
	}
	if v, err := p.DurationValue.Get(); err == nil {
		errs = append(errs, validateDuration(&v))
	}
	if v, err := p.DurationUnit.Get(); err == nil {
		errs = append(errs, validation.Validate(v, unitRule))
	}
	if v, err := p.DueDate.Get(); err == nil {
		errs = append(errs, validation.Validate(v, dueDateRule))
	}
	return firstError(errs...)
}

func trimOptional(n *nullable.Nullable[string]) {
	v, err := n.Get()
	if err != nil {
		return
	}
	if v = strings.TrimSpace(v); v == "" {
		n.SetNull()
		return
	}
	n.Set(v)
}

// validateDuration rejects a sent durationValue below one.
func validateDuration(v *int) error {
	if v != nil && *v < 1 {
		return errors.New(msgInvalidDuration)
	}
	return nil
}

// firstError returns the first non-nil error as a validation error.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return apperr.Validation(err.Error())
		}
	}
	return nil
}

func deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
