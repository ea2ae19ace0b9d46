package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// Routes monta a tabela de rotas da aplicação com logging, sessão e CSRF.
// CORS e recuperação de panics ficam a cargo de quem embrulha o router
// (ver main).
func (a *App) Routes() *mux.Router {
	r := mux.NewRouter()

	r.Use(LoggingMiddleware)
	r.Use(a.LoadSession)
	r.Use(a.CSRFProtect())

	// --- Rotas públicas ---
	r.HandleFunc("/", a.HomeHandler).Methods("GET")
	r.HandleFunc("/healthz", a.HealthHandler).Methods("GET")
	r.HandleFunc("/register", a.RegisterHandler).Methods("GET", "POST")
	r.HandleFunc("/login", a.LoginHandler).Methods("GET", "POST")
	r.HandleFunc("/logout", a.LogoutHandler).Methods("GET")

	// --- Rotas de Projetos (protegidas) ---
	r.HandleFunc("/projects", a.RequireLogin(a.ProjectsHandler)).Methods("GET", "POST")
	r.HandleFunc("/project/{id:[0-9]+}", a.RequireLogin(a.ProjectHandler)).Methods("GET", "POST")
	r.HandleFunc("/project/{id:[0-9]+}/delete", a.RequireLogin(a.DeleteProjectHandler)).Methods("POST")

	// --- Rotas de Tarefas (protegidas) ---
	r.HandleFunc("/project/{id:[0-9]+}/tasks", a.RequireLogin(a.ProjectTasksHandler)).Methods("GET", "POST")
	r.HandleFunc("/task/{id:[0-9]+}", a.RequireLogin(a.TaskHandler)).Methods("GET", "POST")
	r.HandleFunc("/task/{id:[0-9]+}/delete", a.RequireLogin(a.DeleteTaskHandler)).Methods("POST")

	r.NotFoundHandler = a.withSession(a.statusPage(http.StatusNotFound))
	r.MethodNotAllowedHandler = a.withSession(a.statusPage(http.StatusMethodNotAllowed))
	return r
}

func (a *App) statusPage(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a.renderError(w, r, status)
	})
}

// withSession aplica os middlewares a handlers que o mux chama fora da
// cadeia do r.Use, como o NotFoundHandler.
func (a *App) withSession(h http.Handler) http.Handler {
	return LoggingMiddleware(a.LoadSession(h))
}
