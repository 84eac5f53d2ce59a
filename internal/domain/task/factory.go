package task

import (
	"time"

	"github.com/google/uuid"
)

// NewForOwner builds a task row. The owner always comes from the caller's
// identity, never from the request body.
func NewForOwner(ownerID string, in NewTask) Task {
	now := time.Now().UTC()

	return Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply returns a copy of t with the supplied patch fields set.
func (t Task) Apply(p Patch, now time.Time) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	t.UpdatedAt = now

	return t
}
