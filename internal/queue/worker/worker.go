package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/taskhub-dev/taskhub/internal/jobs"
	"github.com/taskhub-dev/taskhub/internal/notifications"
	"github.com/taskhub-dev/taskhub/internal/observability"
)

// JobQueue is the consumer side of the job transport plus requeue for
// retries and not-yet-due jobs.
type JobQueue interface {
	Dequeue(ctx context.Context, block time.Duration) ([]byte, error)
	Enqueue(ctx context.Context, payload []byte) error
}

type Config struct {
	BlockTimeout  time.Duration // how long each Dequeue blocks
	WorkerID      string
	ShutdownGrace time.Duration
}

type Worker struct {
	cfg      Config
	queue    JobQueue
	notifier notifications.Notifier
	log      *slog.Logger
	prom     *observability.Prom

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, queue JobQueue, notifier notifications.Notifier, log *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 2 * time.Second
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}

	return &Worker{
		cfg:      cfg,
		queue:    queue,
		notifier: notifier,
		log:      log,
		prom:     prom,
	}
}

func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	w.log.Info("worker started", "worker_id", w.cfg.WorkerID)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker received shutdown signal")
			return nil
		default:
		}

		_, err := w.ProcessOne(ctx)

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.log.Error("dequeue error", "err", err)
			// transient redis errors: back off a little before retrying
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return nil
			}
		}
	}
}

// execute decodes the payload and hands it to the notifier.
func (w *Worker) execute(ctx context.Context, j jobs.Job) error {
	payload, err := jobs.DecodePayload(j)

	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case jobs.ProjectCreatedPayload:
		return w.notifier.SendProjectCreated(ctx, notifications.SendProjectCreatedInput{
			ProjectID: p.ProjectID,
			OwnerID:   p.OwnerID,
			Name:      p.Name,
		})

	case jobs.TaskStatusChangedPayload:
		return w.notifier.SendTaskStatusChanged(ctx, notifications.SendTaskStatusChangedInput{
			TaskID:    p.TaskID,
			ProjectID: p.ProjectID,
			OwnerID:   p.OwnerID,
			Title:     p.Title,
			Status:    p.Status,
		})

	default:
		return jobs.ErrInvalidJobType
	}
}

func (w *Worker) handleFailure(ctx context.Context, j jobs.Job, cause error) {
	j.Attempts++

	if j.Attempts >= j.MaxTries {
		j.Status = jobs.JobFailed
		w.log.Error("job failed permanently",
			"job_id", j.ID,
			"type", j.Type,
			"attempts", j.Attempts,
			"err", cause,
		)
		w.observe(j.Type, "failed", 0)
		return
	}

	delay := ExponentialBackoff(j.Attempts)
	j.Status = jobs.JobPending
	j.RunAt = time.Now().UTC().Add(delay)

	if err := w.requeue(ctx, j); err != nil {
		w.log.Error("job requeue failed", "job_id", j.ID, "err", err)
		return
	}

	w.log.Warn("job retry scheduled",
		"job_id", j.ID,
		"type", j.Type,
		"attempts", j.Attempts,
		"delay", delay,
		"err", cause,
	)
	w.observe(j.Type, "retry", 0)
}

func (w *Worker) requeue(ctx context.Context, j jobs.Job) error {
	raw, err := jobs.EncodeJob(j)

	if err != nil {
		return err
	}

	return w.queue.Enqueue(ctx, raw)
}

func (w *Worker) observe(t jobs.JobType, result string, secs float64) {
	if w.prom == nil {
		return
	}

	w.prom.JobResults.WithLabelValues(string(t), result).Inc()

	if secs > 0 {
		w.prom.JobDuration.WithLabelValues(string(t), result).Observe(secs)
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
