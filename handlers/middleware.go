package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/csrf"
	"github.com/kot-brodskogo/task-manager-system/auth"
	"github.com/kot-brodskogo/task-manager-system/models"
	"github.com/kot-brodskogo/task-manager-system/utilities"
)

type requestIDKey struct{}

// requestID devolve o id atribuído pelo LoggingMiddleware.
func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LoggingMiddleware registra informações sobre cada requisição HTTP e
// atribui um id a ela (X-Request-ID).
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rw, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))

		utilities.LogRequest(id, r.Method, r.URL.Path, r.RemoteAddr, rw.statusCode, time.Since(start))
	})
}

// responseWriter é um wrapper para http.ResponseWriter que captura o status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// LoadSession resolve o cookie de sessão e coloca o usuário no contexto.
// Sessão inválida ou usuário inexistente seguem como anônimos.
func (a *App) LoadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.Sessions.UserID(r)
		if err != nil {
			if _, cookieErr := r.Cookie(auth.CookieName); cookieErr == nil {
				utilities.LogDebug("Sessão descartada: %v", err)
				a.Sessions.End(w)
			}
			next.ServeHTTP(w, r)
			return
		}

		user, err := a.Store.GetUserByID(r.Context(), userID)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				utilities.LogError(err, "LoadSession: erro ao buscar usuário da sessão")
			}
			a.Sessions.End(w)
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
	})
}

// RequireLogin manda anônimos para /login guardando o destino original.
func (a *App) RequireLogin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.UserFromContext(r.Context()) == nil {
			utilities.LogDebug("Acesso anônimo a %s redirecionado para o login", r.URL.Path)
			setFlash(w, "info", "Please log in to access this page.")
			http.Redirect(w, r, "/login?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			return
		}
		next(w, r)
	}
}

// CSRFProtect exige o token do formulário em todo POST. Falhas caem na
// página de erro 403.
func (a *App) CSRFProtect() func(http.Handler) http.Handler {
	protect := csrf.Protect(a.csrf.Key,
		csrf.Secure(a.csrf.Secure),
		csrf.HttpOnly(true),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(a.csrfFailed)),
	)
	return func(next http.Handler) http.Handler {
		h := protect(next)
		if a.csrf.Secure {
			return h
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}

func (a *App) csrfFailed(w http.ResponseWriter, r *http.Request) {
	utilities.Logger.WithField("request_id", requestID(r.Context())).
		WithField("reason", csrf.FailureReason(r)).
		Info("Token CSRF rejeitado")
	a.renderError(w, r, http.StatusForbidden)
}
