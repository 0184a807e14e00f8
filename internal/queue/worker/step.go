package worker

import (
	"context"
	"errors"
	"time"

	"github.com/taskhub-dev/taskhub/internal/jobs"
	"github.com/taskhub-dev/taskhub/internal/queue/redisclient"
)

// ProcessOne takes at most one job off the queue. The bool reports whether
// a job was actually handled.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	raw, err := w.queue.Dequeue(ctx, w.cfg.BlockTimeout)

	if err != nil {
		if errors.Is(err, redisclient.ErrEmpty) {
			return false, nil
		}

		return false, err
	}

	j, err := jobs.DecodeJob(raw)

	if err != nil {
		// a job we cannot even decode is unrecoverable; drop it loudly
		w.log.Error("job decode failed", "err", err)
		w.observe("unknown", "failed", 0)
		return true, nil
	}

	// not due yet (scheduled retry): push it back and let the queue breathe
	if delay := time.Until(j.RunAt); delay > 50*time.Millisecond {
		if err := w.requeue(ctx, j); err != nil {
			w.log.Error("job requeue failed", "job_id", j.ID, "err", err)
		}

		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
		}
		return false, nil
	}

	j.Status = jobs.JobProcessing

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()
	err = w.execute(ctx, j)
	secs := time.Since(start).Seconds()

	if err != nil {
		w.handleFailure(ctx, j, err)
		return true, nil
	}

	j.Status = jobs.JobSucceeded
	w.log.Info("job done", "job_id", j.ID, "type", j.Type, "attempts", j.Attempts)
	w.observe(j.Type, "done", secs)

	return true, nil
}
