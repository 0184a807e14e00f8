package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/domain/project"
	"github.com/taskhub-dev/taskhub/internal/domain/task"
	"github.com/taskhub-dev/taskhub/internal/http/middlewares"
)

type TaskStore interface {
	CreateTask(ctx context.Context, projectID int, title string, description *string, status task.Status) (task.Task, error)
	GetTask(ctx context.Context, projectID, taskID int) (task.Task, error)
	ListTasks(ctx context.Context, projectID int) ([]task.Task, error)
	UpdateTask(ctx context.Context, projectID, taskID int, patch task.Patch) (task.Task, bool, error)
	DeleteTask(ctx context.Context, projectID, taskID int) error
}

type TasksHandler struct {
	tasks  TaskStore
	events DomainEvents
}

func NewTasksHandler(tasks TaskStore, events DomainEvents) *TasksHandler {
	return &TasksHandler{
		tasks:  tasks,
		events: events,
	}
}

// All routes here run behind RequireProjectOwner, so the parent project in
// the context is already owner-checked and the :task id already parsed.

func (h *TasksHandler) List(ctx *gin.Context) {
	p, ok := middlewares.ProjectFromContext(ctx)

	if !ok {
		RespondInternal(ctx, "Missing project context")
		return
	}

	items, err := h.tasks.ListTasks(ctx.Request.Context(), p.ID)

	if err != nil {
		RespondInternal(ctx, "Could not list tasks")
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *TasksHandler) Create(ctx *gin.Context) {
	p, ok := middlewares.ProjectFromContext(ctx)

	if !ok {
		RespondInternal(ctx, "Missing project context")
		return
	}

	var req task.CreateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	title := strings.TrimSpace(req.Title)

	if title == "" {
		RespondBadRequest(ctx, "Task title is required", nil)
		return
	}

	// pending unless the caller supplies a valid status; unknown values are
	// rejected rather than silently defaulted
	status := task.StatusPending

	if req.Status != nil {
		parsed, valid := task.ParseStatus(*req.Status)

		if !valid {
			RespondBadRequest(ctx, "Invalid status. Allowed: pending, in-progress, completed (in_progress is an alias).", nil)
			return
		}

		status = parsed
	}

	t, err := h.tasks.CreateTask(ctx.Request.Context(), p.ID, title, trimPtr(req.Description), status)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			// project vanished between the owner check and the insert
			RespondNotFound(ctx, "Project not found")
			return
		}

		RespondInternal(ctx, "Could not create task")
		return
	}

	ctx.JSON(http.StatusCreated, t)
}

func (h *TasksHandler) Show(ctx *gin.Context) {
	p, taskID, ok := taskScope(ctx)

	if !ok {
		return
	}

	t, err := h.tasks.GetTask(ctx.Request.Context(), p.ID, taskID)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found in this project")
			return
		}

		RespondInternal(ctx, "Could not load task")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) Update(ctx *gin.Context) {
	p, taskID, ok := taskScope(ctx)

	if !ok {
		return
	}

	var req task.UpdateTaskRequest

	if !BindJSON(ctx, &req) {
		return
	}

	patch := task.Patch{
		Description: trimPtr(req.Description),
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)

		if title == "" {
			RespondBadRequest(ctx, "Task title cannot be empty", nil)
			return
		}

		patch.Title = &title
	}

	if req.Status != nil {
		parsed, valid := task.ParseStatus(*req.Status)

		if !valid {
			RespondBadRequest(ctx, "Invalid status. Allowed: pending, in-progress, completed (in_progress is an alias).", nil)
			return
		}

		patch.Status = &parsed
	}

	t, changed, err := h.tasks.UpdateTask(ctx.Request.Context(), p.ID, taskID, patch)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found in this project")
			return
		}

		RespondInternal(ctx, "Could not update task")
		return
	}

	if changed && patch.Status != nil {
		h.events.TaskStatusChanged(ctx.Request.Context(), p.OwnerID, t)
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TasksHandler) Delete(ctx *gin.Context) {
	p, taskID, ok := taskScope(ctx)

	if !ok {
		return
	}

	err := h.tasks.DeleteTask(ctx.Request.Context(), p.ID, taskID)

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found in this project")
			return
		}

		RespondInternal(ctx, "Could not delete task")
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ChangeStatus is the dedicated transition endpoint. Re-applying the current
// status succeeds without touching the task, updatedAt included.
func (h *TasksHandler) ChangeStatus(ctx *gin.Context) {
	p, taskID, ok := taskScope(ctx)

	if !ok {
		return
	}

	var req task.ChangeStatusRequest

	if !BindJSON(ctx, &req) {
		return
	}

	status, valid := task.ParseStatus(req.Status)

	if !valid {
		RespondBadRequest(ctx, "Invalid status. Allowed: pending, in-progress, completed (in_progress is an alias).", nil)
		return
	}

	t, changed, err := h.tasks.UpdateTask(ctx.Request.Context(), p.ID, taskID, task.Patch{Status: &status})

	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			RespondNotFound(ctx, "Task not found in this project")
			return
		}

		RespondInternal(ctx, "Could not change task status")
		return
	}

	if changed {
		h.events.TaskStatusChanged(ctx.Request.Context(), p.OwnerID, t)
	}

	ctx.JSON(http.StatusOK, t)
}

func taskScope(ctx *gin.Context) (project.Project, int, bool) {
	p, ok := middlewares.ProjectFromContext(ctx)

	if !ok {
		RespondInternal(ctx, "Missing project context")
		return project.Project{}, 0, false
	}

	taskID, ok := middlewares.TaskIDFromContext(ctx)

	if !ok {
		RespondInternal(ctx, "Missing task id context")
		return project.Project{}, 0, false
	}

	return p, taskID, true
}
