package jobs

// ProjectCreatedPayload notifies the owner about a fresh project.
// Keep payloads minimal and id-based.
type ProjectCreatedPayload struct {
	ProjectID int    `json:"projectId"`
	OwnerID   int    `json:"ownerId"`
	Name      string `json:"name"`
}

// TaskStatusChangedPayload notifies the owner that a task moved to a new
// status. Only emitted for effective transitions, never for idempotent
// re-applies.
type TaskStatusChangedPayload struct {
	TaskID    int    `json:"taskId"`
	ProjectID int    `json:"projectId"`
	OwnerID   int    `json:"ownerId"`
	Title     string `json:"title"`
	Status    string `json:"status"`
}
