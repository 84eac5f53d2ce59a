package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/domain/task"
)

// TasksRepo keeps tasks in a map. Every lookup checks the owner, so a task
// that belongs to someone else is reported exactly like a missing one.
type TasksRepo struct {
	mu    sync.RWMutex
	items map[string]task.Task
}

func NewTasksRepo() *TasksRepo {
	return &TasksRepo{
		items: make(map[string]task.Task),
	}
}

func (r *TasksRepo) Create(ctx context.Context, ownerID string, in task.NewTask) (task.Task, error) {
	t := task.NewForOwner(ownerID, in)

	r.mu.Lock()
	r.items[t.ID] = t
	r.mu.Unlock()

	return t, nil
}

func (r *TasksRepo) List(ctx context.Context, ownerID string, filter task.ListFilter) ([]task.Task, error) {
	r.mu.RLock()
	out := make([]task.Task, 0)
	for _, t := range r.items {
		if t.UserID != ownerID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, t)
	}
	r.mu.RUnlock()

	// newest first, id as a tie breaker so equal timestamps stay stable
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}

func (r *TasksRepo) GetByID(ctx context.Context, ownerID, id string) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok || t.UserID != ownerID {
		return task.Task{}, task.ErrNotFound
	}

	return t, nil
}

func (r *TasksRepo) Update(ctx context.Context, ownerID, id string, p task.Patch) (task.Task, error) {
	if p.IsEmpty() {
		return task.Task{}, task.ErrEmptyUpdate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.UserID != ownerID {
		return task.Task{}, task.ErrNotFound
	}

	t = t.Apply(p, time.Now().UTC())
	r.items[id] = t

	return t, nil
}

func (r *TasksRepo) Delete(ctx context.Context, ownerID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok || t.UserID != ownerID {
		return task.ErrNotFound
	}

	delete(r.items, id)

	return nil
}
