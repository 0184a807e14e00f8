package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/domain/project"
)

type ProjectGetter interface {
	GetProject(ctx context.Context, id int) (project.Project, error)
}

type OwnerMiddleware struct {
	projects ProjectGetter
}

func NewOwnerMiddleware(projects ProjectGetter) *OwnerMiddleware {
	return &OwnerMiddleware{projects: projects}
}

// RequireProjectOwner gates every /projects/:project route. The check order
// is a contract: malformed ids fail first (the :task id too, when the route
// carries one), then a missing parent, then ownership. Authorization runs
// before any child lookup, so a non-owner never learns whether a task id
// exists.
func (m *OwnerMiddleware) RequireProjectOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, ok := parseID(c.Param("project"))

		if !ok {
			abortError(c, http.StatusBadRequest, "invalid_id", "Invalid project id")
			return
		}

		taskID := 0
		hasTask := false

		if raw, present := c.Params.Get("task"); present {
			hasTask = true
			taskID, ok = parseID(raw)

			if !ok {
				abortError(c, http.StatusBadRequest, "invalid_id", "Invalid task id")
				return
			}
		}

		userID, ok := UserIDFromContext(c)

		if !ok {
			abortError(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}

		p, err := m.projects.GetProject(c.Request.Context(), projectID)

		if err != nil {
			if errors.Is(err, project.ErrNotFound) {
				abortError(c, http.StatusNotFound, "not_found", "Project not found")
				return
			}

			abortError(c, http.StatusInternalServerError, "internal_error", "Could not load project")
			return
		}

		if p.OwnerID != userID {
			abortError(c, http.StatusForbidden, "forbidden", "Not authorized")
			return
		}

		c.Set(ctxProjectKey, p)

		if hasTask {
			c.Set(ctxTaskIDKey, taskID)
		}

		c.Next()
	}
}

func parseID(raw string) (int, bool) {
	id, err := strconv.Atoi(raw)

	if err != nil || id < 1 {
		return 0, false
	}

	return id, true
}

func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
