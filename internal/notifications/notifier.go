package notifications

import "context"

type SendProjectCreatedInput struct {
	ProjectID int
	OwnerID   int
	Name      string
}

type SendTaskStatusChangedInput struct {
	TaskID    int
	ProjectID int
	OwnerID   int
	Title     string
	Status    string
}

type Notifier interface {
	SendProjectCreated(ctx context.Context, input SendProjectCreatedInput) error
	SendTaskStatusChanged(ctx context.Context, input SendTaskStatusChangedInput) error
}
