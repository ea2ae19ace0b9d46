package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kot-brodskogo/task-manager-system/auth"
	"github.com/kot-brodskogo/task-manager-system/models"
	"github.com/kot-brodskogo/task-manager-system/utilities"
)

const loginFailedMessage = "Login Unsuccessful. Please check email and password"

// HomeHandler exibe a página inicial
func (a *App) HomeHandler(w http.ResponseWriter, r *http.Request) {
	a.render(w, r, http.StatusOK, "home.html", &pageData{Title: "Home"})
}

// RegisterHandler exibe o formulário de cadastro e cria a conta
func (a *App) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if auth.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	var form RegistrationForm
	if r.Method != http.MethodPost {
		a.render(w, r, http.StatusOK, "register.html", &pageData{Title: "Register", Form: form})
		return
	}

	errs, err := decodeForm(r, &form)
	if err != nil {
		utilities.LogError(err, "RegisterHandler: corpo da requisição inválido")
		a.renderError(w, r, http.StatusBadRequest)
		return
	}
	if errs.Empty() {
		errs = form.Validate()
	}
	if !errs.Empty() {
		utilities.LogDebug("RegisterHandler: validação falhou nos campos %v", errs.Fields())
		a.render(w, r, http.StatusUnprocessableEntity, "register.html", &pageData{Title: "Register", Form: form, Errors: errs})
		return
	}

	hash, err := a.Hasher.Hash(form.Password)
	if err != nil {
		a.serverError(w, r, err, "RegisterHandler: erro ao gerar hash da senha")
		return
	}

	user := &models.User{Username: form.Username, Email: form.Email, PasswordHash: hash}
	if err := a.Store.CreateUser(r.Context(), user); err != nil {
		var dup *models.DuplicateError
		if errors.As(err, &dup) {
			utilities.LogInfo("Tentativa de registro com %s já existente", dup.Field)
			errs.Add(dup.Field, "That "+dup.Field+" is taken. Please choose a different one.")
			a.render(w, r, http.StatusUnprocessableEntity, "register.html", &pageData{Title: "Register", Form: form, Errors: errs})
			return
		}
		a.serverError(w, r, err, "RegisterHandler: erro ao salvar usuário")
		return
	}

	utilities.LogInfo("Usuário registrado com sucesso: %s (ID: %d)", user.Username, user.ID)
	setFlash(w, "success", "Your account has been created! You are now able to log in")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// LoginHandler autentica por email e senha e abre a sessão
func (a *App) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if auth.UserFromContext(r.Context()) != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	next := safeNext(r.URL.Query().Get("next"))
	var form LoginForm
	if r.Method != http.MethodPost {
		a.render(w, r, http.StatusOK, "login.html", &pageData{Title: "Login", Form: form, Next: next})
		return
	}

	errs, err := decodeForm(r, &form)
	if err != nil {
		utilities.LogError(err, "LoginHandler: corpo da requisição inválido")
		a.renderError(w, r, http.StatusBadRequest)
		return
	}
	if errs.Empty() {
		errs = form.Validate()
	}
	if !errs.Empty() {
		a.render(w, r, http.StatusUnprocessableEntity, "login.html", &pageData{Title: "Login", Form: form, Errors: errs, Next: next})
		return
	}

	user, err := a.authenticate(r.Context(), form.Email, form.Password)
	if err != nil {
		if !errors.Is(err, errInvalidCredentials) {
			a.serverError(w, r, err, "LoginHandler: erro ao buscar usuário")
			return
		}
		utilities.LogInfo("Falha de login para %s", form.Email)
		form.Password = ""
		a.render(w, r, http.StatusUnauthorized, "login.html", &pageData{
			Title: "Login",
			Form:  form,
			Next:  next,
			Flash: &Flash{Category: "danger", Message: loginFailedMessage},
		})
		return
	}

	if err := a.Sessions.Start(w, user.ID, form.Remember); err != nil {
		a.serverError(w, r, err, "LoginHandler: erro ao criar sessão")
		return
	}

	utilities.LogInfo("Usuário %d autenticado (remember=%t)", user.ID, form.Remember)
	if next == "" {
		next = "/"
	}
	http.Redirect(w, r, next, http.StatusSeeOther)
}

var errInvalidCredentials = errors.New("invalid credentials")

// authenticate não distingue email desconhecido de senha errada. Para email
// desconhecido ainda roda um bcrypt para o tempo de resposta ser parecido.
func (a *App) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := a.Store.GetUserByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		a.dummyOnce.Do(func() { a.dummyHash, _ = a.Hasher.Hash("not-a-real-password") })
		a.Hasher.Verify(a.dummyHash, password)
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !a.Hasher.Verify(user.PasswordHash, password) {
		return nil, errInvalidCredentials
	}
	return user, nil
}

// LogoutHandler encerra a sessão e volta para a home
func (a *App) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if u := auth.UserFromContext(r.Context()); u != nil {
		utilities.LogInfo("Logout do usuário %d", u.ID)
	}
	a.Sessions.End(w)
	http.Redirect(w, r, "/", http.StatusFound)
}

// HealthHandler responde 200 enquanto o banco responder ao ping
func (a *App) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := a.Store.Ping(ctx); err != nil {
		utilities.LogError(err, "HealthHandler: banco indisponível")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("database unavailable\n"))
		return
	}
	w.Write([]byte("ok\n"))
}
