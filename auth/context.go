package auth

import (
	"context"

	"github.com/kot-brodskogo/task-manager-system/models"
)

type contextKey int

const userKey contextKey = iota

// WithUser devolve um contexto carregando o usuário autenticado.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext devolve o usuário da sessão, ou nil para anônimos.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}
