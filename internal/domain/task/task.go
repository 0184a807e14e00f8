package task

import (
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("task not found")

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// ParseStatus maps caller input to a canonical status.
// "in_progress" is the only accepted alias; anything else unknown is rejected.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ReplaceAll(strings.ToLower(raw), "_", "-"))

	if !s.IsValid() {
		return "", false
	}

	return s, true
}

type Task struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"projectId"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Status      *string `json:"status"`
}

// partial update; nil fields are left untouched
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Status      *string `json:"status"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type Patch struct {
	Title       *string
	Description *string
	Status      *Status
}
