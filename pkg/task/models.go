package task

import (
	"time"

	"github.com/google/uuid"
)

// Task represents one tracked task. UserID links the task to the identity
// that owns it; the link is set from the authenticated caller on creation.
type Task struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	IsDone      bool      `json:"is_done"`
	TimeCreated time.Time `json:"time_created"`
}

// CreateTaskParams contains parameters for persisting a new task
type CreateTaskParams struct {
	UserID uuid.UUID
	Title  string
}

// UpdateTaskParams contains the optional fields of a partial task update
type UpdateTaskParams struct {
	ID     uuid.UUID
	Title  *string
	IsDone *bool
}
