package models

import (
	"time"

	"github.com/oapi-codegen/nullable"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type DurationUnit string

const (
	DurationMinutes DurationUnit = "minutes"
	DurationHours   DurationUnit = "hours"
	DurationDays    DurationUnit = "days"
)

// Todo represents a todo item. Empty optional fields are omitted on the wire.
type Todo struct {
	ID            string       `json:"id"`
	UserID        string       `json:"userId"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Status        Status       `json:"status"`
	Priority      Priority     `json:"priority"`
	DurationValue int          `json:"durationValue,omitempty"`
	DurationUnit  DurationUnit `json:"durationUnit,omitempty"`
	DueDate       string       `json:"dueDate,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// TodoFields is the create payload. Nil means the field was not sent.
type TodoFields struct {
	Title         *string       `json:"title"`
	Description   *string       `json:"description"`
	Status        *Status       `json:"status"`
	Priority      *Priority     `json:"priority"`
	DurationValue *int          `json:"durationValue"`
	DurationUnit  *DurationUnit `json:"durationUnit"`
	DueDate       *string       `json:"dueDate"`
}

// TodoPatch is a partial update. An unspecified field is left alone; an
// explicit null clears an optional field.
type TodoPatch struct {
	Title         nullable.Nullable[string]       `json:"title"`
	Description   nullable.Nullable[string]       `json:"description"`
	Status        nullable.Nullable[Status]       `json:"status"`
	Priority      nullable.Nullable[Priority]     `json:"priority"`
	DurationValue nullable.Nullable[int]          `json:"durationValue"`
	DurationUnit  nullable.Nullable[DurationUnit] `json:"durationUnit"`
	DueDate       nullable.Nullable[string]       `json:"dueDate"`
}

// Apply writes the specified fields of p onto t. Required fields ignore null.
func (p *TodoPatch) Apply(t *Todo) {
	if v, ok := value(p.Title); ok {
		t.Title = v
	}
	if p.Description.IsSpecified() {
		t.Description, _ = value(p.Description)
	}
	if v, ok := value(p.Status); ok {
		t.Status = v
	}
	if v, ok := value(p.Priority); ok {
		t.Priority = v
	}
	if p.DurationValue.IsSpecified() {
		t.DurationValue, _ = value(p.DurationValue)
	}
	if p.DurationUnit.IsSpecified() {
		t.DurationUnit, _ = value(p.DurationUnit)
	}
	if p.DueDate.IsSpecified() {
		t.DueDate, _ = value(p.DueDate)
	}
}

// value returns the patch value and true only when a non-null value was sent.
func value[T any](n nullable.Nullable[T]) (T, bool) {
	if !n.IsSpecified() || n.IsNull() {
		var zero T
		return zero, false
	}
	return n.MustGet(), true
}

// TransitionAction returns the activity action for a status change, or ""
// when the change is not logged.
func TransitionAction(from, to Status) ActivityAction {
	switch {
	case from == to:
		return ""
	case to == StatusCompleted:
		return ActionCompleted
	case to == StatusInProgress:
		return ActionInProgress
	case from == StatusCompleted:
		return ActionUncompleted
	}
	return ""
}
