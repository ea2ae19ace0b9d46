package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/kot-brodskogo/task-manager-system/auth"
	"github.com/kot-brodskogo/task-manager-system/models"
	"github.com/kot-brodskogo/task-manager-system/utilities"
)

//go:embed templates/*.html
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"deadline": func(t models.Task) string { return t.Deadline.Format(DeadlineLayout) },
}

func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.html")
}

type Flash struct {
	Category string
	Message  string
}

// pageData é o contexto entregue aos templates. Cada página usa só os
// campos de que precisa.
type pageData struct {
	Title string

	// token anti-CSRF; vazio fora das rotas protegidas
	CSRFField template.HTML
	CSRFToken string

	User   *models.User
	Flash  *Flash
	Form   interface{}
	Errors FieldErrors
	Next   string

	Projects []models.Project
	Project  *models.Project
	Tasks    []models.Task
	Task     *models.Task
	Statuses []models.TaskStatus

	Status     int
	StatusText string
}

func (a *App) render(w http.ResponseWriter, r *http.Request, status int, name string, data *pageData) {
	data.User = auth.UserFromContext(r.Context())
	data.CSRFField = csrf.TemplateField(r)
	data.CSRFToken = csrf.Token(r)
	// um flash pendente só é consumido se a página não trouxer o seu
	if data.Flash == nil {
		data.Flash = popFlash(w, r)
	}
	if data.Errors == nil {
		data.Errors = FieldErrors{}
	}

	var buf bytes.Buffer
	if err := a.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		utilities.LogError(err, "Erro ao renderizar template "+name+" (request "+requestID(r.Context())+")")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderError encerra a requisição com a página de erro do status.
func (a *App) renderError(w http.ResponseWriter, r *http.Request, status int) {
	a.render(w, r, status, "error.html", &pageData{
		Title:      http.StatusText(status),
		Status:     status,
		StatusText: http.StatusText(status),
	})
}

// serverError registra a causa e responde 500.
func (a *App) serverError(w http.ResponseWriter, r *http.Request, err error, context string) {
	utilities.Logger.WithError(err).
		WithField("request_id", requestID(r.Context())).
		Error(context)
	a.renderError(w, r, http.StatusInternalServerError)
}

const flashCookie = "flash"

// setFlash guarda uma mensagem para a próxima página renderizada.
func setFlash(w http.ResponseWriter, category, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(category + "|" + message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func popFlash(w http.ResponseWriter, r *http.Request) *Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})

	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return nil
	}
	category, message, ok := strings.Cut(raw, "|")
	if !ok || message == "" {
		return nil
	}
	return &Flash{Category: category, Message: message}
}
