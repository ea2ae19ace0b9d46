package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kot-brodskogo/task-manager-system/config"
	"github.com/kot-brodskogo/task-manager-system/utilities"

	_ "github.com/lib/pq"
)

// ConnectPostgres abre o pool de conexões e confirma que o banco responde.
func ConnectPostgres(ctx context.Context, cfg config.DBConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres %s:%s: %w", cfg.Host, cfg.Port, err)
	}

	utilities.LogInfo("Conectado ao PostgreSQL com sucesso (%s:%s/%s)", cfg.Host, cfg.Port, cfg.Name)
	return db, nil
}

// schema cria as três tabelas caso ainda não existam. Apagar um projeto
// remove as tarefas dele via ON DELETE CASCADE.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		username      VARCHAR(20)  NOT NULL,
		email         VARCHAR(120) NOT NULL,
		password_hash VARCHAR(60)  NOT NULL,
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		CONSTRAINT users_username_key UNIQUE (username),
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id          BIGSERIAL PRIMARY KEY,
		name        VARCHAR(100) NOT NULL,
		description VARCHAR(200) NOT NULL DEFAULT '',
		user_id     BIGINT       NOT NULL REFERENCES users(id),
		created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS projects_user_id_idx ON projects (user_id)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id          BIGSERIAL PRIMARY KEY,
		name        VARCHAR(100) NOT NULL,
		description VARCHAR(200) NOT NULL DEFAULT '',
		deadline    TIMESTAMP    NOT NULL,
		status      VARCHAR(20)  NOT NULL DEFAULT 'Not Started'
		            CHECK (status IN ('Not Started', 'In Progress', 'Completed')),
		project_id  BIGINT       NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		user_id     BIGINT       NOT NULL REFERENCES users(id),
		created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS tasks_project_id_idx ON tasks (project_id)`,
}

// EnsureSchema executa o DDL dentro de uma transação.
func EnsureSchema(ctx context.Context, db *sql.DB) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, stmt := range schema {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	utilities.LogDebug("Schema verificado (%d comandos)", len(schema))
	return nil
}
