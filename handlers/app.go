package handlers

import (
	"context"
	"fmt"
	"html/template"
	"sync"

	"github.com/kot-brodskogo/task-manager-system/auth"
	"github.com/kot-brodskogo/task-manager-system/models"
)

// Store é o que os handlers precisam da camada de persistência.
// *models.Store implementa esta interface sobre o PostgreSQL.
type Store interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)

	ListProjectsByOwner(ctx context.Context, ownerID int64) ([]models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	DeleteProject(ctx context.Context, id int64) error

	ListTasksByProject(ctx context.Context, projectID int64) ([]models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id int64) error
}

// CSRFOptions configura o token anti-CSRF dos formulários.
type CSRFOptions struct {
	// Key tem 32 bytes; main a deriva do SESSION_SECRET.
	Key []byte
	// Secure deve acompanhar COOKIE_SECURE. Sem ele as requisições são
	// tratadas como HTTP puro e a checagem de Referer não se aplica.
	Secure bool
}

// App agrupa os serviços construídos no main e injetados em cada handler.
type App struct {
	Store    Store
	Hasher   *auth.PasswordHasher
	Sessions *auth.SessionManager

	csrf CSRFOptions
	tmpl *template.Template

	dummyOnce sync.Once
	dummyHash string
}

func NewApp(store Store, hasher *auth.PasswordHasher, sessions *auth.SessionManager, csrfOpts CSRFOptions) (*App, error) {
	if len(csrfOpts.Key) != 32 {
		return nil, fmt.Errorf("csrf key must be 32 bytes, got %d", len(csrfOpts.Key))
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &App{
		Store:    store,
		Hasher:   hasher,
		Sessions: sessions,
		csrf:     csrfOpts,
		tmpl:     tmpl,
	}, nil
}
