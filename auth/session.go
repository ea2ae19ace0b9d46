package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "session"

var ErrNoSession = errors.New("no valid session")

type SessionOptions struct {
	Secret      string
	TTL         time.Duration
	RememberTTL time.Duration
	Secure      bool
}

// SessionManager guarda a identidade do usuário em um cookie HttpOnly com
// um token HS256 assinado. O servidor não mantém estado de sessão.
type SessionManager struct {
	secret      []byte
	ttl         time.Duration
	rememberTTL time.Duration
	secure      bool
	now         func() time.Time
}

func NewSessionManager(opts SessionOptions) *SessionManager {
	return &SessionManager{
		secret:      []byte(opts.Secret),
		ttl:         opts.TTL,
		rememberTTL: opts.RememberTTL,
		secure:      opts.Secure,
		now:         time.Now,
	}
}

type sessionClaims struct {
	Remember bool `json:"rem,omitempty"`
	jwt.RegisteredClaims
}

// Start emite o token e grava o cookie. Sem remember o cookie some quando o
// navegador fecha; com remember ele persiste por RememberTTL.
func (m *SessionManager) Start(w http.ResponseWriter, userID int64, remember bool) error {
	now := m.now()
	ttl := m.ttl
	if remember {
		ttl = m.rememberTTL
	}
	expires := now.Add(ttl)

	claims := sessionClaims{
		Remember: remember,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return fmt.Errorf("sign session: %w", err)
	}

	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.Expires = expires
		cookie.MaxAge = int(ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// UserID valida o cookie da requisição e devolve o id do usuário.
func (m *SessionManager) UserID(r *http.Request) (int64, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return 0, ErrNoSession
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(c.Value, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrNoSession, claims.Subject)
	}
	return id, nil
}

// End expira o cookie de sessão.
func (m *SessionManager) End(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
