package handlers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/kot-brodskogo/task-manager-system/models"
)

// fakeStore guarda tudo em memória e respeita as mesmas regras do schema:
// username e email únicos e tarefas apagadas junto com o projeto.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	pingErr error

	users    map[int64]models.User
	projects map[int64]models.Project
	tasks    map[int64]models.Task
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    map[int64]models.User{},
		projects: map[int64]models.Project{},
		tasks:    map[int64]models.Task{},
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pingErr
}

func (s *fakeStore) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == u.Username {
			return &models.DuplicateError{Field: "username"}
		}
		if existing.Email == u.Email {
			return &models.DuplicateError{Field: "email"}
		}
	}
	u.ID = s.id()
	u.CreatedAt = time.Now()
	s.users[u.ID] = *u
	return nil
}

func (s *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *fakeStore) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &u, nil
}

func (s *fakeStore) ListProjectsByOwner(ctx context.Context, ownerID int64) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Project
	for _, p := range s.projects {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *fakeStore) CreateProject(ctx context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	p.CreatedAt = time.Now()
	s.projects[p.ID] = *p
	return nil
}

func (s *fakeStore) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (s *fakeStore) UpdateProject(ctx context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.projects[p.ID]
	if !ok {
		return models.ErrNotFound
	}
	existing.Name = p.Name
	existing.Description = p.Description
	s.projects[p.ID] = existing
	return nil
}

func (s *fakeStore) DeleteProject(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.projects, id)
	for tid, t := range s.tasks {
		if t.ProjectID == id {
			delete(s.tasks, tid)
		}
	}
	return nil
}

func (s *fakeStore) ListTasksByProject(ctx context.Context, projectID int64) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Task
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			t.ProjectOwnerID = s.projects[t.ProjectID].OwnerID
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Deadline.Equal(out[j].Deadline) {
			return out[i].Deadline.Before(out[j].Deadline)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *fakeStore) CreateTask(ctx context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[t.ProjectID]
	if !ok {
		return models.ErrNotFound
	}
	t.ID = s.id()
	t.CreatedAt = time.Now()
	t.ProjectOwnerID = p.OwnerID
	s.tasks[t.ID] = *t
	return nil
}

func (s *fakeStore) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	t.ProjectOwnerID = s.projects[t.ProjectID].OwnerID
	return &t, nil
}

func (s *fakeStore) UpdateTask(ctx context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tasks[t.ID]
	if !ok {
		return models.ErrNotFound
	}
	existing.Name = t.Name
	existing.Description = t.Description
	existing.Deadline = t.Deadline
	existing.Status = t.Status
	s.tasks[t.ID] = existing
	return nil
}

func (s *fakeStore) DeleteTask(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return models.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// helpers para as asserções dos testes

func (s *fakeStore) projectNamed(name string) (models.Project, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.projects {
		if p.Name == name {
			return p, true
		}
	}
	return models.Project{}, false
}

func (s *fakeStore) taskNamed(name string) (models.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks {
		if t.Name == name {
			return t, true
		}
	}
	return models.Task{}, false
}

func (s *fakeStore) tasksOf(projectID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tasks {
		if t.ProjectID == projectID {
			n++
		}
	}
	return n
}
