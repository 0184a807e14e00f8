package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskhub-dev/taskhub/internal/domain/project"
	"github.com/taskhub-dev/taskhub/internal/domain/task"
)

// Queue is the producer side of the job transport.
type Queue interface {
	Enqueue(ctx context.Context, payload []byte) error
}

// Publisher turns lifecycle events into queued notification jobs. Publishing
// is best-effort: a queue outage is logged, never surfaced to the request.
type Publisher struct {
	queue Queue
	log   *slog.Logger
}

func NewPublisher(queue Queue, log *slog.Logger) *Publisher {
	return &Publisher{
		queue: queue,
		log:   log,
	}
}

func (p *Publisher) ProjectCreated(ctx context.Context, pr project.Project) {
	p.publish(ctx, JobProjectCreated, ProjectCreatedPayload{
		ProjectID: pr.ID,
		OwnerID:   pr.OwnerID,
		Name:      pr.Name,
	})
}

func (p *Publisher) TaskStatusChanged(ctx context.Context, ownerID int, t task.Task) {
	p.publish(ctx, JobTaskStatusChanged, TaskStatusChangedPayload{
		TaskID:    t.ID,
		ProjectID: t.ProjectID,
		OwnerID:   ownerID,
		Title:     t.Title,
		Status:    string(t.Status),
	})
}

func (p *Publisher) publish(ctx context.Context, t JobType, payload any) {
	if err := ValidatePayload(t, payload); err != nil {
		p.log.ErrorContext(ctx, "event_publish_invalid", "type", t, "err", err)
		return
	}

	b, err := EncodePayload(t, payload)

	if err != nil {
		p.log.ErrorContext(ctx, "event_publish_encode_failed", "type", t, "err", err)
		return
	}

	j, err := NewJob(t, b, time.Time{})

	if err != nil {
		p.log.ErrorContext(ctx, "event_publish_job_failed", "type", t, "err", err)
		return
	}

	wire, err := EncodeJob(j)

	if err != nil {
		p.log.ErrorContext(ctx, "event_publish_encode_failed", "type", t, "err", err)
		return
	}

	err = p.queue.Enqueue(ctx, wire)

	if err != nil {
		p.log.ErrorContext(ctx, "event_publish_enqueue_failed", "type", t, "job_id", j.ID, "err", err)
		return
	}

	p.log.DebugContext(ctx, "event_published", "type", t, "job_id", j.ID)
}

// LogPublisher stands in when no queue is configured; events are only logged.
type LogPublisher struct {
	log *slog.Logger
}

func NewLogPublisher(log *slog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) ProjectCreated(ctx context.Context, pr project.Project) {
	p.log.InfoContext(ctx, "event_project_created", "project_id", pr.ID, "owner_id", pr.OwnerID)
}

func (p *LogPublisher) TaskStatusChanged(ctx context.Context, ownerID int, t task.Task) {
	p.log.InfoContext(ctx, "event_task_status_changed", "task_id", t.ID, "project_id", t.ProjectID, "owner_id", ownerID, "status", t.Status)
}
