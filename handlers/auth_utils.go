package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/kot-brodskogo/task-manager-system/auth"
	"github.com/kot-brodskogo/task-manager-system/models"
	"github.com/kot-brodskogo/task-manager-system/utilities"
)

// parseID lê o parâmetro numérico da rota
func parseID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[key], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// safeNext aceita só caminhos locais como destino pós-login.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") ||
		strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}

// loadOwnedProject carrega o projeto da rota e confere se pertence ao
// usuário logado. Em caso de falha a resposta já foi escrita.
func (a *App) loadOwnedProject(w http.ResponseWriter, r *http.Request) (*models.Project, bool) {
	id, ok := parseID(r, "id")
	if !ok {
		a.renderError(w, r, http.StatusNotFound)
		return nil, false
	}

	project, err := a.Store.GetProject(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		a.renderError(w, r, http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		a.serverError(w, r, err, "Erro ao buscar projeto")
		return nil, false
	}

	user := auth.UserFromContext(r.Context())
	if !auth.CanAccessProject(project, user) {
		utilities.LogInfo("Usuário %d sem acesso ao projeto %d", user.ID, project.ID)
		a.renderError(w, r, http.StatusForbidden)
		return nil, false
	}
	return project, true
}

// loadModifiableTask carrega a tarefa da rota e confere se o usuário logado
// é o criador dela ou o dono do projeto.
func (a *App) loadModifiableTask(w http.ResponseWriter, r *http.Request) (*models.Task, bool) {
	id, ok := parseID(r, "id")
	if !ok {
		a.renderError(w, r, http.StatusNotFound)
		return nil, false
	}

	task, err := a.Store.GetTask(r.Context(), id)
	if errors.Is(err, models.ErrNotFound) {
		a.renderError(w, r, http.StatusNotFound)
		return nil, false
	}
	if err != nil {
		a.serverError(w, r, err, "Erro ao buscar tarefa")
		return nil, false
	}

	user := auth.UserFromContext(r.Context())
	if !auth.CanModifyTask(task, user) {
		utilities.LogInfo("Usuário %d sem permissão na tarefa %d", user.ID, task.ID)
		a.renderError(w, r, http.StatusForbidden)
		return nil, false
	}
	return task, true
}
