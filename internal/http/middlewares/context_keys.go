package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhub-dev/taskhub/internal/domain/project"
)

const (
	ctxUserIDKey  = "auth.userID"
	ctxProjectKey = "owner.project"
	ctxTaskIDKey  = "owner.taskID"
	CtxRequestID  = "request_id"
)

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (int, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return 0, false
	}

	id, ok := v.(int)

	return id, ok
}

// ProjectFromContext returns the owner-checked project loaded by
// RequireProjectOwner.
func ProjectFromContext(c *gin.Context) (project.Project, bool) {
	v, ok := c.Get(ctxProjectKey)
	if !ok {
		return project.Project{}, false
	}

	p, ok := v.(project.Project)

	return p, ok
}

func TaskIDFromContext(c *gin.Context) (int, bool) {
	v, ok := c.Get(ctxTaskIDKey)
	if !ok {
		return 0, false
	}

	id, ok := v.(int)

	return id, ok
}
