package handlers

import (
	"html"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/kot-brodskogo/task-manager-system/auth"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp(t *testing.T) (*App, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	app, err := NewApp(
		store,
		auth.NewPasswordHasher(bcrypt.MinCost),
		auth.NewSessionManager(auth.SessionOptions{
			Secret:      "test-secret",
			TTL:         time.Hour,
			RememberTTL: 24 * time.Hour,
		}),
		CSRFOptions{Key: []byte("0123456789abcdef0123456789abcdef")},
	)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app, store
}

// browser simula um navegador: guarda cookies e não segue redirects, para
// que cada teste confira o status e o Location.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client

	// último token CSRF visto numa página
	token string
}

var csrfMeta = regexp.MustCompile(`<meta name="csrf-token" content="([^"]+)">`)

func newServer(t *testing.T, app *App) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(app.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func newBrowser(t *testing.T, srv *httptest.Server) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &browser{
		t:    t,
		base: srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Do(req)
	if err != nil {
		b.t.Fatalf("%s %s: %v", req.Method, req.URL, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		b.t.Fatal(err)
	}
	if m := csrfMeta.FindSubmatch(body); m != nil {
		b.token = html.UnescapeString(string(m[1]))
	}
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	if err != nil {
		b.t.Fatal(err)
	}
	return b.do(req)
}

// post envia o formulário com o token CSRF, abrindo a home antes se o
// navegador ainda não tiver um.
func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	if b.token == "" {
		b.get("/")
		if b.token == "" {
			b.t.Fatal("home page did not expose a CSRF token")
		}
	}
	withToken := url.Values{}
	for k, v := range form {
		withToken[k] = v
	}
	withToken.Set("gorilla.csrf.Token", b.token)
	return b.postRaw(path, withToken)
}

// postRaw envia o formulário exatamente como recebido.
func (b *browser) postRaw(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		b.t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) register(username, email, password string) *http.Response {
	b.t.Helper()
	resp, _ := b.post("/register", url.Values{
		"username":         {username},
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	})
	return resp
}

func (b *browser) login(email, password string) *http.Response {
	b.t.Helper()
	resp, _ := b.post("/login", url.Values{"email": {email}, "password": {password}})
	return resp
}

// signup registra e já entra com a conta.
func (b *browser) signup(username, email, password string) {
	b.t.Helper()
	if resp := b.register(username, email, password); resp.StatusCode != http.StatusSeeOther {
		b.t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
	if resp := b.login(email, password); resp.StatusCode != http.StatusSeeOther {
		b.t.Fatalf("login %s: status %d", email, resp.StatusCode)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status = %d, want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther && resp.StatusCode != http.StatusFound {
		t.Fatalf("%s %s: status = %d, want redirect", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("%s %s: Location = %q, want %q", resp.Request.Method, resp.Request.URL.Path, got, location)
	}
}

func pathFor(format string, id int64) string {
	return strings.Replace(format, "{id}", strconv.FormatInt(id, 10), 1)
}
