package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/schema"
	"github.com/kot-brodskogo/task-manager-system/models"
)

// FieldErrors mapeia o nome do campo para as mensagens de erro dele.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

func (e FieldErrors) Get(field string) []string {
	return e[field]
}

func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e FieldErrors) Empty() bool {
	return len(e) == 0
}

// Fields devolve os campos com erro em ordem alfabética.
func (e FieldErrors) Fields() []string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	// campo enviado vazio zera o valor; campo ausente mantém o que já havia
	d.ZeroEmpty(true)
	return d
}

// decodeForm preenche dst com os campos enviados no corpo do POST.
// Erros de conversão viram FieldErrors; err só é devolvido se o corpo em si
// for inválido.
func decodeForm(r *http.Request, dst interface{}) (FieldErrors, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	errs := FieldErrors{}
	if err := decoder.Decode(dst, r.PostForm); err != nil {
		var multi schema.MultiError
		if !errors.As(err, &multi) {
			return nil, err
		}
		for key := range multi {
			errs.Add(key, "Not a valid value.")
		}
	}
	return errs, nil
}

const (
	msgRequired = "This field is required."
	msgEmail    = "Invalid email address."
)

// limites das colunas users.email e do bcrypt
const (
	maxEmailLen    = 120
	maxPasswordLen = 72
)

func lengthBetween(errs FieldErrors, field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case min > 0 && max > 0 && (n < min || n > max):
		errs.Add(field, fmt.Sprintf("Field must be between %d and %d characters long.", min, max))
	case max > 0 && n > max:
		errs.Add(field, fmt.Sprintf("Field cannot be longer than %d characters.", max))
	}
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func checkEmail(errs FieldErrors, email string) {
	switch {
	case email == "":
		errs.Add("email", msgRequired)
	case !validEmail(email):
		errs.Add("email", msgEmail)
	default:
		lengthBetween(errs, "email", email, 0, maxEmailLen)
	}
}

type RegistrationForm struct {
	Username        string `schema:"username"`
	Email           string `schema:"email"`
	Password        string `schema:"password"`
	ConfirmPassword string `schema:"confirm_password"`
}

func (f *RegistrationForm) Validate() FieldErrors {
	errs := FieldErrors{}
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	if f.Username == "" {
		errs.Add("username", msgRequired)
	} else {
		lengthBetween(errs, "username", f.Username, 2, 20)
	}

	checkEmail(errs, f.Email)

	if f.Password == "" {
		errs.Add("password", msgRequired)
	} else if len(f.Password) > maxPasswordLen {
		errs.Add("password", fmt.Sprintf("Password cannot be longer than %d bytes.", maxPasswordLen))
	}
	if f.ConfirmPassword == "" {
		errs.Add("confirm_password", msgRequired)
	} else if f.ConfirmPassword != f.Password {
		errs.Add("confirm_password", "Field must be equal to password.")
	}
	return errs
}

type LoginForm struct {
	Email    string `schema:"email"`
	Password string `schema:"password"`
	Remember bool   `schema:"remember"`
}

func (f *LoginForm) Validate() FieldErrors {
	errs := FieldErrors{}
	f.Email = strings.TrimSpace(f.Email)

	checkEmail(errs, f.Email)
	if f.Password == "" {
		errs.Add("password", msgRequired)
	}
	return errs
}

type ProjectForm struct {
	Name        string `schema:"name"`
	Description string `schema:"description"`
}

func (f *ProjectForm) Validate() FieldErrors {
	errs := FieldErrors{}
	f.Name = strings.TrimSpace(f.Name)

	if f.Name == "" {
		errs.Add("name", msgRequired)
	} else {
		lengthBetween(errs, "name", f.Name, 2, 100)
	}
	lengthBetween(errs, "description", f.Description, 0, 200)
	return errs
}

// DeadlineLayout é o formato exibido e aceito no campo de prazo.
const DeadlineLayout = "2006-01-02 15:04:05"

// formatos aceitos além do DeadlineLayout (inputs datetime-local)
var deadlineLayouts = []string{DeadlineLayout, "2006-01-02T15:04:05", "2006-01-02T15:04"}

func parseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid deadline %q", s)
}

type TaskForm struct {
	Name        string `schema:"name"`
	Description string `schema:"description"`
	Deadline    string `schema:"deadline"`
	Status      string `schema:"status"`
}

// newTaskForm pré-preenche o formulário com os valores atuais da tarefa.
func newTaskForm(t *models.Task) TaskForm {
	return TaskForm{
		Name:        t.Name,
		Description: t.Description,
		Deadline:    t.Deadline.Format(DeadlineLayout),
		Status:      string(t.Status),
	}
}

// Validate confere o formulário e devolve o prazo já interpretado.
func (f *TaskForm) Validate() (time.Time, FieldErrors) {
	errs := FieldErrors{}
	f.Name = strings.TrimSpace(f.Name)

	if f.Name == "" {
		errs.Add("name", msgRequired)
	} else {
		lengthBetween(errs, "name", f.Name, 2, 100)
	}
	lengthBetween(errs, "description", f.Description, 0, 200)

	var deadline time.Time
	if strings.TrimSpace(f.Deadline) == "" {
		errs.Add("deadline", msgRequired)
	} else {
		var err error
		if deadline, err = parseDeadline(f.Deadline); err != nil {
			errs.Add("deadline", "Not a valid datetime value. Use YYYY-MM-DD HH:MM:SS.")
		}
	}

	if f.Status == "" {
		f.Status = string(models.StatusNotStarted)
	}
	if !models.TaskStatus(f.Status).Valid() {
		errs.Add("status", "Not a valid choice.")
	}
	return deadline, errs
}
