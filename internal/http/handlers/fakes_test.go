package handlers_test

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskhub-dev/taskhub/internal/config"
	"github.com/taskhub-dev/taskhub/internal/domain/project"
	"github.com/taskhub-dev/taskhub/internal/domain/task"
	"github.com/taskhub-dev/taskhub/internal/domain/user"
	httpx "github.com/taskhub-dev/taskhub/internal/http"
	"github.com/taskhub-dev/taskhub/internal/session"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake store implementations of the handler consumer interfaces

type fakeUserStore struct {
	createFn  func(ctx context.Context, name, email, passwordHash string) (user.User, error)
	byEmailFn func(ctx context.Context, email string) (user.User, error)
	byIDFn    func(ctx context.Context, id int) (user.User, error)
}

func (f *fakeUserStore) CreateUser(ctx context.Context, name, email, passwordHash string) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, name, email, passwordHash)
	}
	return user.User{}, nil
}

func (f *fakeUserStore) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	if f.byEmailFn != nil {
		return f.byEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id int) (user.User, error) {
	if f.byIDFn != nil {
		return f.byIDFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

type fakeProjectStore struct {
	createFn  func(ctx context.Context, ownerID int, name string, description *string) (project.Project, error)
	getFn     func(ctx context.Context, id int) (project.Project, error)
	listFn    func(ctx context.Context, ownerID int) ([]project.Project, error)
	updateFn  func(ctx context.Context, id int, patch project.Patch) (project.Project, error)
	cascadeFn func(ctx context.Context, id int) error
}

func (f *fakeProjectStore) CreateProject(ctx context.Context, ownerID int, name string, description *string) (project.Project, error) {
	if f.createFn != nil {
		return f.createFn(ctx, ownerID, name, description)
	}
	return project.Project{}, nil
}

func (f *fakeProjectStore) GetProject(ctx context.Context, id int) (project.Project, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return project.Project{}, project.ErrNotFound
}

func (f *fakeProjectStore) ListProjectsByOwner(ctx context.Context, ownerID int) ([]project.Project, error) {
	if f.listFn != nil {
		return f.listFn(ctx, ownerID)
	}
	return []project.Project{}, nil
}

func (f *fakeProjectStore) UpdateProject(ctx context.Context, id int, patch project.Patch) (project.Project, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, patch)
	}
	return project.Project{}, project.ErrNotFound
}

func (f *fakeProjectStore) DeleteProjectCascade(ctx context.Context, id int) error {
	if f.cascadeFn != nil {
		return f.cascadeFn(ctx, id)
	}
	return project.ErrNotFound
}

type fakeTaskStore struct {
	createFn func(ctx context.Context, projectID int, title string, description *string, status task.Status) (task.Task, error)
	getFn    func(ctx context.Context, projectID, taskID int) (task.Task, error)
	listFn   func(ctx context.Context, projectID int) ([]task.Task, error)
	updateFn func(ctx context.Context, projectID, taskID int, patch task.Patch) (task.Task, bool, error)
	deleteFn func(ctx context.Context, projectID, taskID int) error
}

func (f *fakeTaskStore) CreateTask(ctx context.Context, projectID int, title string, description *string, status task.Status) (task.Task, error) {
	if f.createFn != nil {
		return f.createFn(ctx, projectID, title, description, status)
	}
	return task.Task{}, nil
}

func (f *fakeTaskStore) GetTask(ctx context.Context, projectID, taskID int) (task.Task, error) {
	if f.getFn != nil {
		return f.getFn(ctx, projectID, taskID)
	}
	return task.Task{}, task.ErrNotFound
}

func (f *fakeTaskStore) ListTasks(ctx context.Context, projectID int) ([]task.Task, error) {
	if f.listFn != nil {
		return f.listFn(ctx, projectID)
	}
	return []task.Task{}, nil
}

func (f *fakeTaskStore) UpdateTask(ctx context.Context, projectID, taskID int, patch task.Patch) (task.Task, bool, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, projectID, taskID, patch)
	}
	return task.Task{}, false, task.ErrNotFound
}

func (f *fakeTaskStore) DeleteTask(ctx context.Context, projectID, taskID int) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, projectID, taskID)
	}
	return task.ErrNotFound
}

// fakeEvents records emitted lifecycle events.
type fakeEvents struct {
	mu             sync.Mutex
	projectCreated []project.Project
	statusChanged  []task.Task
	statusOwners   []int
}

func (f *fakeEvents) ProjectCreated(ctx context.Context, p project.Project) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projectCreated = append(f.projectCreated, p)
}

func (f *fakeEvents) TaskStatusChanged(ctx context.Context, ownerID int, t task.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusChanged = append(f.statusChanged, t)
	f.statusOwners = append(f.statusOwners, ownerID)
}

type testEnv struct {
	router   *gin.Engine
	sessions *session.Registry
	events   *fakeEvents
}

// newTestEnv assembles the real router and middleware chain over fakes so
// every test exercises the same auth -> ownership -> handler path that
// production requests take.
func newTestEnv(users *fakeUserStore, projects *fakeProjectStore, tasks *fakeTaskStore) testEnv {
	reg := session.NewRegistry()
	events := &fakeEvents{}

	cfg := config.Config{
		Env:             "test",
		RateLimit:       1000,
		RateLimitWindow: time.Minute,
		MaxBodyBytes:    1 << 20,
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Users:    users,
		Projects: projects,
		Tasks:    tasks,
		Sessions: reg,
		Events:   events,
	})

	return testEnv{router: router, sessions: reg, events: events}
}

func (e testEnv) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func mustToken(t *testing.T, reg *session.Registry, userID int) string {
	t.Helper()

	token, err := reg.Issue(userID)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	return token
}

func ownedProject(id, ownerID int) project.Project {
	now := time.Now().UTC()
	return project.Project{
		ID:        id,
		OwnerID:   ownerID,
		Name:      "Demo project",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()

	if w.Code != want {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, want, w.Body.String())
	}
}
