package models

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrNotFound é devolvido quando o id pedido não existe.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate é a causa de todo *DuplicateError.
	ErrDuplicate = errors.New("duplicate value")
)

// DuplicateError indica violação de unicidade em uma coluna conhecida.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicate }

// uniqueViolation é o SQLSTATE do Postgres para unique_violation.
const uniqueViolation = pq.ErrorCode("23505")

var constraintFields = map[string]string{
	"users_username_key": "username",
	"users_email_key":    "email",
}

// asDuplicate traduz um unique_violation do Postgres em *DuplicateError.
// Outros erros voltam sem alteração.
func asDuplicate(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}
	field, ok := constraintFields[pqErr.Constraint]
	if !ok {
		field = pqErr.Constraint
	}
	return &DuplicateError{Field: field}
}
