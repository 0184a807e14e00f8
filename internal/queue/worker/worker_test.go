package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/taskhub-dev/taskhub/internal/jobs"
	"github.com/taskhub-dev/taskhub/internal/notifications"
	"github.com/taskhub-dev/taskhub/internal/queue/redisclient"
)

type fakeQueue struct {
	mu    sync.Mutex
	items [][]byte
}

func (q *fakeQueue) Enqueue(ctx context.Context, payload []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, payload)
	return nil
}

func (q *fakeQueue) Dequeue(ctx context.Context, block time.Duration) ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil, redisclient.ErrEmpty
	}

	raw := q.items[0]
	q.items = q.items[1:]
	return raw, nil
}

func (q *fakeQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

type fakeNotifier struct {
	mu       sync.Mutex
	fail     error
	projects []notifications.SendProjectCreatedInput
	statuses []notifications.SendTaskStatusChangedInput
}

func (n *fakeNotifier) SendProjectCreated(ctx context.Context, in notifications.SendProjectCreatedInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.projects = append(n.projects, in)
	return nil
}

func (n *fakeNotifier) SendTaskStatusChanged(ctx context.Context, in notifications.SendTaskStatusChangedInput) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail != nil {
		return n.fail
	}
	n.statuses = append(n.statuses, in)
	return nil
}

func newTestWorker(q JobQueue, n notifications.Notifier) *Worker {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(Config{BlockTimeout: 10 * time.Millisecond, WorkerID: "test-1"}, q, n, log, nil)
}

func enqueueJob(t *testing.T, q *fakeQueue, jb jobs.Job) {
	t.Helper()

	raw, err := jobs.EncodeJob(jb)
	if err != nil {
		t.Fatalf("EncodeJob error: %v", err)
	}
	if err := q.Enqueue(context.Background(), raw); err != nil {
		t.Fatalf("Enqueue error: %v", err)
	}
}

func mustJob(t *testing.T, typ jobs.JobType, payload any) jobs.Job {
	t.Helper()

	b, err := jobs.EncodePayload(typ, payload)
	if err != nil {
		t.Fatalf("EncodePayload error: %v", err)
	}

	jb, err := jobs.NewJob(typ, b, time.Time{})
	if err != nil {
		t.Fatalf("NewJob error: %v", err)
	}
	return jb
}

func TestProcessOne_EmptyQueue(t *testing.T) {
	q := &fakeQueue{}
	w := newTestWorker(q, &fakeNotifier{})

	processed, err := w.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne error: %v", err)
	}
	if processed {
		t.Fatalf("expected no job processed")
	}
}

func TestProcessOne_DeliversProjectCreated(t *testing.T) {
	q := &fakeQueue{}
	n := &fakeNotifier{}
	w := newTestWorker(q, n)

	enqueueJob(t, q, mustJob(t, jobs.JobProjectCreated, jobs.ProjectCreatedPayload{
		ProjectID: 5,
		OwnerID:   2,
		Name:      "Roadmap",
	}))

	processed, err := w.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne error: %v", err)
	}
	if !processed {
		t.Fatalf("expected job to be processed")
	}

	if len(n.projects) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(n.projects))
	}
	if n.projects[0].ProjectID != 5 || n.projects[0].OwnerID != 2 {
		t.Fatalf("unexpected notification: %+v", n.projects[0])
	}
	if q.len() != 0 {
		t.Fatalf("expected empty queue, got %d items", q.len())
	}
}

func TestProcessOne_FailureSchedulesRetry(t *testing.T) {
	q := &fakeQueue{}
	n := &fakeNotifier{fail: errors.New("provider down")}
	w := newTestWorker(q, n)

	enqueueJob(t, q, mustJob(t, jobs.JobTaskStatusChanged, jobs.TaskStatusChangedPayload{
		TaskID:    1,
		ProjectID: 1,
		OwnerID:   1,
		Title:     "ship it",
		Status:    "completed",
	}))

	processed, err := w.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne error: %v", err)
	}
	if !processed {
		t.Fatalf("expected job to be processed")
	}

	if q.len() != 1 {
		t.Fatalf("expected job back on queue, got %d items", q.len())
	}

	raw, _ := q.Dequeue(context.Background(), 0)
	requeued, err := jobs.DecodeJob(raw)
	if err != nil {
		t.Fatalf("DecodeJob error: %v", err)
	}

	if requeued.Attempts != 1 {
		t.Fatalf("expected attempts=1, got %d", requeued.Attempts)
	}
	if !requeued.RunAt.After(time.Now()) {
		t.Fatalf("expected RunAt in the future, got %v", requeued.RunAt)
	}
}

func TestProcessOne_ExhaustedJobIsDropped(t *testing.T) {
	q := &fakeQueue{}
	n := &fakeNotifier{fail: errors.New("provider down")}
	w := newTestWorker(q, n)

	jb := mustJob(t, jobs.JobProjectCreated, jobs.ProjectCreatedPayload{
		ProjectID: 1,
		OwnerID:   1,
		Name:      "doomed",
	})
	jb.Attempts = jb.MaxTries - 1

	enqueueJob(t, q, jb)

	processed, err := w.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne error: %v", err)
	}
	if !processed {
		t.Fatalf("expected job to be processed")
	}

	if q.len() != 0 {
		t.Fatalf("expected exhausted job to be dropped, got %d items", q.len())
	}
}

func TestProcessOne_NotDueYetIsRequeued(t *testing.T) {
	q := &fakeQueue{}
	n := &fakeNotifier{}
	w := newTestWorker(q, n)

	jb := mustJob(t, jobs.JobProjectCreated, jobs.ProjectCreatedPayload{
		ProjectID: 1,
		OwnerID:   1,
		Name:      "later",
	})
	jb.RunAt = time.Now().UTC().Add(time.Hour)

	enqueueJob(t, q, jb)

	processed, err := w.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne error: %v", err)
	}
	if processed {
		t.Fatalf("expected job to be deferred, not processed")
	}

	if q.len() != 1 {
		t.Fatalf("expected job back on queue, got %d items", q.len())
	}
	if len(n.projects) != 0 {
		t.Fatalf("expected no notifications for deferred job")
	}
}

func TestProcessOne_UndecodableJobIsDropped(t *testing.T) {
	q := &fakeQueue{}
	w := newTestWorker(q, &fakeNotifier{})

	_ = q.Enqueue(context.Background(), []byte("not json"))

	processed, err := w.ProcessOne(context.Background())
	if err != nil {
		t.Fatalf("ProcessOne error: %v", err)
	}
	if !processed {
		t.Fatalf("expected poison job to be consumed")
	}
	if q.len() != 0 {
		t.Fatalf("expected poison job dropped, got %d items", q.len())
	}
}
