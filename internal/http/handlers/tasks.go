package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/taskhub/internal/actorctx"
	"github.com/geocoder89/taskhub/internal/domain/task"
	"github.com/geocoder89/taskhub/internal/validation"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TaskStore is satisfied by the memory, sqlite and postgres repos. Every
// method is scoped to ownerID.
type TaskStore interface {
	List(ctx context.Context, ownerID string, filter task.ListFilter) ([]task.Task, error)
	GetByID(ctx context.Context, ownerID, id string) (task.Task, error)
	Create(ctx context.Context, ownerID string, in task.NewTask) (task.Task, error)
	Update(ctx context.Context, ownerID, id string, p task.Patch) (task.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
}

type TasksHandler struct {
	store TaskStore
}

func NewTasksHandler(store TaskStore) *TasksHandler {
	return &TasksHandler{store: store}
}

const storeTimeout = 3 * time.Second

func IsUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// owner pulls the authenticated user id, answering 401 when it is missing.
func owner(ctx *gin.Context) (string, bool) {
	id, ok := actorctx.UserIDFrom(ctx.Request.Context())
	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity context")
	}
	return id, ok
}

func (h *TasksHandler) List(ctx *gin.Context) {
	ownerID, ok := owner(ctx)
	if !ok {
		return
	}

	filter, err := validation.StatusFilter(ctx.Query("status"))
	if err != nil {
		RespondValidation(ctx, err)
		return
	}

	cctx, cancel := requestTimeout(ctx, storeTimeout)
	defer cancel()

	tasks, err := h.store.List(cctx, ownerID, filter)
	if err != nil {
		RespondInternal(ctx, "Could not list tasks", err)
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}

func (h *TasksHandler) Get(ctx *gin.Context) {
	ownerID, ok := owner(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !IsUUID(id) {
		RespondNotFound(ctx, "Task not found")
		return
	}

	cctx, cancel := requestTimeout(ctx, storeTimeout)
	defer cancel()

	t, err := h.store.GetByID(cctx, ownerID, id)
	if err != nil {
		h.respondStoreError(ctx, err, "Could not fetch task")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"task": t})
}

func (h *TasksHandler) Create(ctx *gin.Context) {
	ownerID, ok := owner(ctx)
	if !ok {
		return
	}

	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	in, err := validation.CreateTask(req)
	if err != nil {
		RespondValidation(ctx, err)
		return
	}

	cctx, cancel := requestTimeout(ctx, storeTimeout)
	defer cancel()

	t, err := h.store.Create(cctx, ownerID, in)
	if err != nil {
		RespondInternal(ctx, "Could not create task", err)
		return
	}

	ctx.Header("Location", "/api/tasks/"+t.ID)
	ctx.JSON(http.StatusCreated, gin.H{"task": t})
}

// Update serves both PUT and PATCH; either way only the sent fields change.
func (h *TasksHandler) Update(ctx *gin.Context) {
	ownerID, ok := owner(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !IsUUID(id) {
		RespondNotFound(ctx, "Task not found")
		return
	}

	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	patch, err := validation.UpdateTask(req)
	if err != nil {
		if errors.Is(err, task.ErrEmptyUpdate) {
			RespondError(ctx, http.StatusBadRequest, "empty_update", "At least one of title, description or status is required", nil)
			return
		}
		RespondValidation(ctx, err)
		return
	}

	cctx, cancel := requestTimeout(ctx, storeTimeout)
	defer cancel()

	t, err := h.store.Update(cctx, ownerID, id, patch)
	if err != nil {
		h.respondStoreError(ctx, err, "Could not update task")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"task": t})
}

func (h *TasksHandler) Delete(ctx *gin.Context) {
	ownerID, ok := owner(ctx)
	if !ok {
		return
	}

	id := ctx.Param("id")
	if !IsUUID(id) {
		RespondNotFound(ctx, "Task not found")
		return
	}

	cctx, cancel := requestTimeout(ctx, storeTimeout)
	defer cancel()

	if err := h.store.Delete(cctx, ownerID, id); err != nil {
		h.respondStoreError(ctx, err, "Could not delete task")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *TasksHandler) respondStoreError(ctx *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, task.ErrNotFound):
		RespondNotFound(ctx, "Task not found")
	case errors.Is(err, task.ErrEmptyUpdate):
		RespondError(ctx, http.StatusBadRequest, "empty_update", "At least one of title, description or status is required", nil)
	default:
		RespondInternal(ctx, message, err)
	}
}
