package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/taskhub-dev/taskhub/internal/domain/project"
	"github.com/taskhub-dev/taskhub/internal/domain/task"
)

func TestListProjects_ScopedToOwner(t *testing.T) {
	var gotOwner int

	projects := &fakeProjectStore{
		listFn: func(ctx context.Context, ownerID int) ([]project.Project, error) {
			gotOwner = ownerID
			return []project.Project{ownedProject(1, ownerID)}, nil
		},
	}

	env := newTestEnv(&fakeUserStore{}, projects, &fakeTaskStore{})
	token := mustToken(t, env.sessions, 42)

	w := env.do(t, http.MethodGet, "/projects", token, "")
	wantStatus(t, w, http.StatusOK)

	if gotOwner != 42 {
		t.Fatalf("list queried owner %d, want 42", gotOwner)
	}

	var items []project.Project
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatalf("failed to unmarshal list: %v body=%s", err, w.Body.String())
	}
	if len(items) != 1 || items[0].OwnerID != 42 {
		t.Fatalf("unexpected list: %+v", items)
	}
}

func TestListProjects_RequiresAuth(t *testing.T) {
	env := newTestEnv(&fakeUserStore{}, &fakeProjectStore{}, &fakeTaskStore{})

	w := env.do(t, http.MethodGet, "/projects", "", "")
	wantStatus(t, w, http.StatusUnauthorized)
}

func TestCreateProject(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		wantStatusCode int
		wantEvent      bool
	}{
		{
			name:           "success",
			body:           `{"name":"Launch","description":"Q3 launch plan"}`,
			wantStatusCode: http.StatusCreated,
			wantEvent:      true,
		},
		{
			name:           "missing name",
			body:           `{"description":"no name"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "whitespace name",
			body:           `{"name":"   "}`,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			projects := &fakeProjectStore{
				createFn: func(ctx context.Context, ownerID int, name string, description *string) (project.Project, error) {
					p := ownedProject(10, ownerID)
					p.Name = name
					p.Description = description
					return p, nil
				},
			}

			env := newTestEnv(&fakeUserStore{}, projects, &fakeTaskStore{})
			token := mustToken(t, env.sessions, 42)

			w := env.do(t, http.MethodPost, "/projects", token, tc.body)
			wantStatus(t, w, tc.wantStatusCode)

			if tc.wantEvent {
				if len(env.events.projectCreated) != 1 {
					t.Fatalf("expected 1 project_created event, got %d", len(env.events.projectCreated))
				}
				if env.events.projectCreated[0].OwnerID != 42 {
					t.Fatalf("event carries owner %d, want 42", env.events.projectCreated[0].OwnerID)
				}
			} else if len(env.events.projectCreated) != 0 {
				t.Fatalf("no event expected, got %d", len(env.events.projectCreated))
			}
		})
	}
}

func TestShowProject_OwnershipAndScoping(t *testing.T) {
	stored := ownedProject(3, 42)

	projects := &fakeProjectStore{
		getFn: func(ctx context.Context, id int) (project.Project, error) {
			if id == stored.ID {
				return stored, nil
			}
			return project.Project{}, project.ErrNotFound
		},
	}

	tasks := &fakeTaskStore{
		listFn: func(ctx context.Context, projectID int) ([]task.Task, error) {
			return []task.Task{{ID: 9, ProjectID: projectID, Title: "first", Status: task.StatusPending}}, nil
		},
	}

	env := newTestEnv(&fakeUserStore{}, projects, tasks)
	ownerToken := mustToken(t, env.sessions, 42)
	strangerToken := mustToken(t, env.sessions, 77)

	t.Run("owner sees project with embedded tasks", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/projects/3", ownerToken, "")
		wantStatus(t, w, http.StatusOK)

		var resp struct {
			ID    int         `json:"id"`
			Tasks []task.Task `json:"tasks"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal: %v body=%s", err, w.Body.String())
		}
		if resp.ID != 3 || len(resp.Tasks) != 1 {
			t.Fatalf("unexpected payload: %s", w.Body.String())
		}
	})

	t.Run("non-owner gets 403", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/projects/3", strangerToken, "")
		wantStatus(t, w, http.StatusForbidden)
	})

	t.Run("missing project gets 404", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/projects/999", ownerToken, "")
		wantStatus(t, w, http.StatusNotFound)
	})

	t.Run("malformed id gets 400", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/projects/abc", ownerToken, "")
		wantStatus(t, w, http.StatusBadRequest)
	})

	t.Run("unauthenticated gets 401 even for a missing project", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/projects/999", "", "")
		wantStatus(t, w, http.StatusUnauthorized)
	})
}

func TestUpdateProject(t *testing.T) {
	stored := ownedProject(3, 42)

	projects := &fakeProjectStore{
		getFn: func(ctx context.Context, id int) (project.Project, error) {
			if id == stored.ID {
				return stored, nil
			}
			return project.Project{}, project.ErrNotFound
		},
		updateFn: func(ctx context.Context, id int, patch project.Patch) (project.Project, error) {
			p := stored
			if patch.Name != nil {
				p.Name = *patch.Name
			}
			if patch.Description != nil {
				p.Description = patch.Description
			}
			return p, nil
		},
	}

	env := newTestEnv(&fakeUserStore{}, projects, &fakeTaskStore{})
	token := mustToken(t, env.sessions, 42)

	t.Run("renames", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/projects/3", token, `{"name":"Renamed"}`)
		wantStatus(t, w, http.StatusOK)

		var p project.Project
		if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if p.Name != "Renamed" {
			t.Fatalf("got name %q, want Renamed", p.Name)
		}
	})

	t.Run("empty name rejected", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/projects/3", token, `{"name":"  "}`)
		wantStatus(t, w, http.StatusBadRequest)
	})
}

func TestDeleteProject(t *testing.T) {
	stored := ownedProject(3, 42)
	var cascaded []int

	projects := &fakeProjectStore{
		getFn: func(ctx context.Context, id int) (project.Project, error) {
			if id == stored.ID {
				return stored, nil
			}
			return project.Project{}, project.ErrNotFound
		},
		cascadeFn: func(ctx context.Context, id int) error {
			cascaded = append(cascaded, id)
			return nil
		},
	}

	env := newTestEnv(&fakeUserStore{}, projects, &fakeTaskStore{})
	token := mustToken(t, env.sessions, 42)

	w := env.do(t, http.MethodDelete, "/projects/3", token, "")
	wantStatus(t, w, http.StatusNoContent)

	if len(cascaded) != 1 || cascaded[0] != 3 {
		t.Fatalf("expected cascade delete of project 3, got %v", cascaded)
	}
}
