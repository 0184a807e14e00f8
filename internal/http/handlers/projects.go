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

type ProjectStore interface {
	CreateProject(ctx context.Context, ownerID int, name string, description *string) (project.Project, error)
	GetProject(ctx context.Context, id int) (project.Project, error)
	ListProjectsByOwner(ctx context.Context, ownerID int) ([]project.Project, error)
	UpdateProject(ctx context.Context, id int, patch project.Patch) (project.Project, error)
	DeleteProjectCascade(ctx context.Context, id int) error
}

// DomainEvents receives the lifecycle events consumed by the notification
// pipeline. Publishing is best-effort; implementations must not fail the
// request.
type DomainEvents interface {
	ProjectCreated(ctx context.Context, p project.Project)
	TaskStatusChanged(ctx context.Context, ownerID int, t task.Task)
}

type ProjectsHandler struct {
	projects ProjectStore
	tasks    TaskStore
	events   DomainEvents
}

func NewProjectsHandler(projects ProjectStore, tasks TaskStore, events DomainEvents) *ProjectsHandler {
	return &ProjectsHandler{
		projects: projects,
		tasks:    tasks,
		events:   events,
	}
}

// List returns only the caller's projects; other owners' projects are never
// visible here.
func (h *ProjectsHandler) List(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	items, err := h.projects.ListProjectsByOwner(ctx.Request.Context(), userID)

	if err != nil {
		RespondInternal(ctx, "Could not list projects")
		return
	}

	ctx.JSON(http.StatusOK, items)
}

func (h *ProjectsHandler) Create(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Missing identity context")
		return
	}

	var req project.CreateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	name := strings.TrimSpace(req.Name)

	if name == "" {
		RespondBadRequest(ctx, "Project name is required", nil)
		return
	}

	p, err := h.projects.CreateProject(ctx.Request.Context(), userID, name, trimPtr(req.Description))

	if err != nil {
		RespondInternal(ctx, "Could not create project")
		return
	}

	h.events.ProjectCreated(ctx.Request.Context(), p)

	ctx.JSON(http.StatusCreated, p)
}

// Show embeds the project's tasks, matching the list a client would other-
// wise fetch right after.
func (h *ProjectsHandler) Show(ctx *gin.Context) {
	p, ok := middlewares.ProjectFromContext(ctx)

	if !ok {
		RespondInternal(ctx, "Missing project context")
		return
	}

	items, err := h.tasks.ListTasks(ctx.Request.Context(), p.ID)

	if err != nil {
		RespondInternal(ctx, "Could not load project tasks")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"id":          p.ID,
		"ownerId":     p.OwnerID,
		"name":        p.Name,
		"description": p.Description,
		"createdAt":   p.CreatedAt,
		"updatedAt":   p.UpdatedAt,
		"tasks":       items,
	})
}

func (h *ProjectsHandler) Update(ctx *gin.Context) {
	p, ok := middlewares.ProjectFromContext(ctx)

	if !ok {
		RespondInternal(ctx, "Missing project context")
		return
	}

	var req project.UpdateProjectRequest

	if !BindJSON(ctx, &req) {
		return
	}

	patch := project.Patch{
		Description: trimPtr(req.Description),
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)

		if name == "" {
			RespondBadRequest(ctx, "Project name cannot be empty", nil)
			return
		}

		patch.Name = &name
	}

	updated, err := h.projects.UpdateProject(ctx.Request.Context(), p.ID, patch)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		RespondInternal(ctx, "Could not update project")
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *ProjectsHandler) Delete(ctx *gin.Context) {
	p, ok := middlewares.ProjectFromContext(ctx)

	if !ok {
		RespondInternal(ctx, "Missing project context")
		return
	}

	err := h.projects.DeleteProjectCascade(ctx.Request.Context(), p.ID)

	if err != nil {
		if errors.Is(err, project.ErrNotFound) {
			RespondNotFound(ctx, "Project not found")
			return
		}

		RespondInternal(ctx, "Could not delete project")
		return
	}

	ctx.Status(http.StatusNoContent)
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}

	v := strings.TrimSpace(*s)

	return &v
}
