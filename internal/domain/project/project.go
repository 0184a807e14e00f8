package project

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("project not found")

type Project struct {
	ID          int       `json:"id"`
	OwnerID     int       `json:"ownerId"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required,max=120"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

// partial update; nil fields are left untouched
type UpdateProjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,max=120"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
}

type Patch struct {
	Name        *string
	Description *string
}
