package task

import "errors"

// ErrTaskNotFound is returned when a task id does not resolve
var ErrTaskNotFound = errors.New("task not found")

// ErrEmptyTitle is returned when a task is created or renamed with a blank title
var ErrEmptyTitle = errors.New("task title cannot be empty")
