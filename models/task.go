package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type TaskStatus string

const (
	StatusNotStarted TaskStatus = "Not Started"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
)

// TaskStatuses lista os status na ordem em que aparecem no formulário.
var TaskStatuses = []TaskStatus{StatusNotStarted, StatusInProgress, StatusCompleted}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Task struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Deadline    time.Time  `json:"deadline"`
	Status      TaskStatus `json:"status"`
	ProjectID   int64      `json:"project_id"`
	CreatorID   int64      `json:"creator_id"`
	CreatedAt   time.Time  `json:"created_at"`

	// ProjectOwnerID vem do JOIN com projects; não é coluna de tasks.
	ProjectOwnerID int64 `json:"project_owner_id"`
}

const taskColumns = `t.id, t.name, t.description, t.deadline, t.status,
	t.project_id, t.user_id, t.created_at, p.user_id`

func scanTask(row interface{ Scan(...interface{}) error }) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Deadline, &t.Status,
		&t.ProjectID, &t.CreatorID, &t.CreatedAt, &t.ProjectOwnerID)
	return t, err
}

// ListTasksByProject devolve as tarefas do projeto ordenadas pelo prazo.
func (s *Store) ListTasksByProject(ctx context.Context, projectID int64) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.project_id = $1
		ORDER BY t.deadline, t.id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *Store) CreateTask(ctx context.Context, t *Task) error {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (name, description, deadline, status, project_id, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, t.Name, t.Description, t.Deadline, t.Status, t.ProjectID, t.CreatorID).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *Store) GetTask(ctx context.Context, id int64) (*Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.id = $1
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select task %d: %w", id, err)
	}
	return &t, nil
}

// UpdateTask grava os campos editáveis; projeto e criador não mudam.
func (s *Store) UpdateTask(ctx context.Context, t *Task) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE tasks
		SET name = $1, description = $2, deadline = $3, status = $4
		WHERE id = $5
	`, t.Name, t.Description, t.Deadline, t.Status, t.ID)
	if err != nil {
		return fmt.Errorf("update task %d: %w", t.ID, err)
	}
	return requireAffected(res)
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	return requireAffected(res)
}
