package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendProjectCreated(ctx context.Context, in SendProjectCreatedInput) error {
	if err := simulateProvider(ctx); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.project_created",
		"project_id", in.ProjectID,
		"owner_id", in.OwnerID,
		"name", in.Name,
	)
	return nil
}

func (n *LogNotifier) SendTaskStatusChanged(ctx context.Context, in SendTaskStatusChangedInput) error {
	if err := simulateProvider(ctx); err != nil {
		return err
	}

	n.log.InfoContext(ctx, "notification.task_status_changed",
		"task_id", in.TaskID,
		"project_id", in.ProjectID,
		"owner_id", in.OwnerID,
		"title", in.Title,
		"status", in.Status,
	)
	return nil
}

// simulateProvider lets local runs exercise the retry and circuit paths:
// NOTIFIER_SLEEP_MS delays the send, NOTIFIER_FAIL=1 makes it error.
func simulateProvider(ctx context.Context) error {
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	return nil
}
