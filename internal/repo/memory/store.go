package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taskhub-dev/taskhub/internal/domain/project"
	"github.com/taskhub-dev/taskhub/internal/domain/task"
	"github.com/taskhub-dev/taskhub/internal/domain/user"
)

// Store holds the user, project and task tables behind one lock.
// A single mutex over all tables is what makes the cascade delete atomic
// with respect to concurrent task creation on the same project.
type Store struct {
	mu sync.RWMutex

	users      map[int]user.User
	emailIndex map[string]int // lowercased email -> user id
	projects   map[int]project.Project
	tasks      map[int]task.Task

	userSeq    int
	projectSeq int
	taskSeq    int
}

func NewStore() *Store {
	return &Store{
		users:      make(map[int]user.User),
		emailIndex: make(map[string]int),
		projects:   make(map[int]project.Project),
		tasks:      make(map[int]task.Task),
	}
}

// users

func (s *Store) CreateUser(ctx context.Context, name, email, passwordHash string) (user.User, error) {
	key := strings.ToLower(email)
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emailIndex[key]; exists {
		return user.User{}, user.ErrEmailTaken
	}

	s.userSeq++
	u := user.User{
		ID:           s.userSeq,
		Name:         name,
		Email:        key,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.users[u.ID] = u
	s.emailIndex[key] = u.ID

	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emailIndex[strings.ToLower(email)]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return s.users[id], nil
}

func (s *Store) GetUserByID(ctx context.Context, id int) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return u, nil
}

// projects

func (s *Store) CreateProject(ctx context.Context, ownerID int, name string, description *string) (project.Project, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.projectSeq++
	p := project.Project{
		ID:          s.projectSeq,
		OwnerID:     ownerID,
		Name:        name,
		Description: cloneString(description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.projects[p.ID] = p

	return p, nil
}

func (s *Store) GetProject(ctx context.Context, id int) (project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]

	if !ok {
		return project.Project{}, project.ErrNotFound
	}

	return p, nil
}

func (s *Store) ListProjectsByOwner(ctx context.Context, ownerID int) ([]project.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]project.Project, 0)

	for _, p := range s.projects {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (s *Store) UpdateProject(ctx context.Context, id int, patch project.Patch) (project.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.projects[id]

	if !ok {
		return project.Project{}, project.ErrNotFound
	}

	if patch.Name != nil {
		p.Name = *patch.Name
	}

	if patch.Description != nil {
		p.Description = cloneString(patch.Description)
	}

	// project updates always refresh the timestamp
	p.UpdatedAt = time.Now().UTC()
	s.projects[id] = p

	return p, nil
}

// DeleteProjectCascade removes the project and every task under it in one
// critical section; no task of a deleted project is ever observable afterwards.
func (s *Store) DeleteProjectCascade(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.projects[id]; !ok {
		return project.ErrNotFound
	}

	delete(s.projects, id)

	for taskID, t := range s.tasks {
		if t.ProjectID == id {
			delete(s.tasks, taskID)
		}
	}

	return nil
}

// tasks

func (s *Store) CreateTask(ctx context.Context, projectID int, title string, description *string, status task.Status) (task.Task, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	// parent existence is checked under the same lock as the cascade,
	// so a create either lands before the cascade (and is swept by it)
	// or observes the project as already gone
	if _, ok := s.projects[projectID]; !ok {
		return task.Task{}, project.ErrNotFound
	}

	s.taskSeq++
	t := task.Task{
		ID:          s.taskSeq,
		ProjectID:   projectID,
		Title:       title,
		Description: cloneString(description),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.tasks[t.ID] = t

	return t, nil
}

// GetTask looks a task up within its declared parent. A task id that exists
// under a different project is reported as not found.
func (s *Store) GetTask(ctx context.Context, projectID, taskID int) (task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[taskID]

	if !ok || t.ProjectID != projectID {
		return task.Task{}, task.ErrNotFound
	}

	return t, nil
}

func (s *Store) ListTasks(ctx context.Context, projectID int) ([]task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]task.Task, 0)

	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

// UpdateTask applies the patch and reports whether any field actually changed
// value. The timestamp refreshes only on a real change, which is what makes
// repeated identical status transitions idempotent.
func (s *Store) UpdateTask(ctx context.Context, projectID, taskID int, patch task.Patch) (task.Task, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]

	if !ok || t.ProjectID != projectID {
		return task.Task{}, false, task.ErrNotFound
	}

	changed := false

	if patch.Title != nil && *patch.Title != t.Title {
		t.Title = *patch.Title
		changed = true
	}

	if patch.Description != nil && !equalString(patch.Description, t.Description) {
		t.Description = cloneString(patch.Description)
		changed = true
	}

	if patch.Status != nil && *patch.Status != t.Status {
		t.Status = *patch.Status
		changed = true
	}

	if changed {
		t.UpdatedAt = time.Now().UTC()
		s.tasks[taskID] = t
	}

	return t, changed, nil
}

func (s *Store) DeleteTask(ctx context.Context, projectID, taskID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[taskID]

	if !ok || t.ProjectID != projectID {
		return task.ErrNotFound
	}

	delete(s.tasks, taskID)

	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}

	v := *s

	return &v
}

func equalString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
