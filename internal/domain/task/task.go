package task

import (
	"errors"
	"slices"
	"time"
)

type Status string

const (
	StatusToDo       Status = "to_do"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every accepted status in workflow order.
var Statuses = []Status{StatusToDo, StatusInProgress, StatusDone}

func (s Status) IsValid() bool {
	return slices.Contains(Statuses, s)
}

var (
	// ErrNotFound covers both a missing task and a task owned by someone else.
	ErrNotFound    = errors.New("task not found")
	ErrEmptyUpdate = errors.New("at least one field must be provided for update")
)

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// with pointers: nil means the client did not send the field
type CreateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// NewTask is a create payload that already passed validation.
type NewTask struct {
	Title       string
	Description string
	Status      Status
}

// Patch is an update payload that already passed validation. Nil fields are left untouched.
type Patch struct {
	Title       *string
	Description *string
	Status      *Status
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

type ListFilter struct {
	Status *Status
}
