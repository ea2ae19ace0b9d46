package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListProjectsByOwner devolve os projetos do usuário, mais recentes primeiro.
func (s *Store) ListProjectsByOwner(ctx context.Context, ownerID int64) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, user_id, created_at
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *Store) CreateProject(ctx context.Context, p *Project) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO projects (name, description, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, p.Name, p.Description, p.OwnerID).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id int64) (*Project, error) {
	var p Project
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, user_id, created_at
		FROM projects
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.OwnerID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select project %d: %w", id, err)
	}
	return &p, nil
}

// UpdateProject grava nome e descrição. O dono nunca muda.
func (s *Store) UpdateProject(ctx context.Context, p *Project) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE projects SET name = $1, description = $2 WHERE id = $3
	`, p.Name, p.Description, p.ID)
	if err != nil {
		return fmt.Errorf("update project %d: %w", p.ID, err)
	}
	return requireAffected(res)
}

// DeleteProject remove o projeto; as tarefas vão junto pelo cascade.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
