package models

import "time"

type ActivityAction string

const (
	ActionCreated     ActivityAction = "created"
	ActionInProgress  ActivityAction = "in-progress"
	ActionCompleted   ActivityAction = "completed"
	ActionUncompleted ActivityAction = "uncompleted"
	ActionDeleted     ActivityAction = "deleted"
)

// ActivityLogEntry records one todo lifecycle event. Entries are never mutated.
type ActivityLogEntry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"userId"`
	Action    ActivityAction `json:"action"`
	TodoTitle string         `json:"todoTitle"`
	Timestamp time.Time      `json:"timestamp"`
}
