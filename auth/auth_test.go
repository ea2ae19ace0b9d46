package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kot-brodskogo/task-manager-system/models"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("pw1")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "pw1" {
		t.Fatal("hash equals plaintext")
	}
	if !h.Verify(hash, "pw1") {
		t.Error("correct password rejected")
	}
	if h.Verify(hash, "pw2") {
		t.Error("wrong password accepted")
	}
	if h.Verify("not-a-bcrypt-hash", "pw1") {
		t.Error("malformed hash accepted")
	}

	other, err := h.Hash("pw1")
	if err != nil {
		t.Fatal(err)
	}
	if other == hash {
		t.Error("two hashes of the same password are identical; salt missing")
	}
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	if got := NewPasswordHasher(0).Cost; got != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want default", got)
	}
	if got := NewPasswordHasher(99).Cost; got != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want default", got)
	}
}

func newTestSessions() *SessionManager {
	return NewSessionManager(SessionOptions{
		Secret:      "test-secret",
		TTL:         time.Hour,
		RememberTTL: 48 * time.Hour,
	})
}

// roundTrip starts a session and returns a request carrying the cookie.
func roundTrip(t *testing.T, m *SessionManager, userID int64, remember bool) (*http.Request, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := m.Start(rec, userID, remember); err != nil {
		t.Fatal(err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return req, cookies[0]
}

func TestSessionRoundTrip(t *testing.T) {
	m := newTestSessions()
	req, cookie := roundTrip(t, m, 42, false)

	if !cookie.HttpOnly || cookie.Name != CookieName {
		t.Errorf("unexpected cookie %+v", cookie)
	}
	if cookie.MaxAge != 0 {
		t.Errorf("MaxAge = %d, want browser-session cookie", cookie.MaxAge)
	}

	id, err := m.UserID(req)
	if err != nil {
		t.Fatal(err)
	}
	if id != 42 {
		t.Errorf("UserID = %d, want 42", id)
	}
}

func TestSessionRememberPersists(t *testing.T) {
	m := newTestSessions()
	_, cookie := roundTrip(t, m, 1, true)
	if cookie.MaxAge != int((48 * time.Hour).Seconds()) {
		t.Errorf("MaxAge = %d", cookie.MaxAge)
	}
}

func TestSessionExpires(t *testing.T) {
	m := newTestSessions()
	start := time.Now()
	m.now = func() time.Time { return start }
	req, _ := roundTrip(t, m, 1, false)

	m.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, err := m.UserID(req); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}

	// remember extends the lifetime past TTL
	m.now = func() time.Time { return start }
	req, _ = roundTrip(t, m, 1, true)
	m.now = func() time.Time { return start.Add(2 * time.Hour) }
	if _, err := m.UserID(req); err != nil {
		t.Fatalf("remembered session expired early: %v", err)
	}
}

func TestSessionRejectsForeignSignature(t *testing.T) {
	other := NewSessionManager(SessionOptions{Secret: "other", TTL: time.Hour})
	req, _ := roundTrip(t, other, 1, false)

	if _, err := newTestSessions().UserID(req); !errors.Is(err, ErrNoSession) {
		t.Fatalf("err = %v, want ErrNoSession", err)
	}
}

func TestSessionMissingOrGarbage(t *testing.T) {
	m := newTestSessions()
	if _, err := m.UserID(httptest.NewRequest(http.MethodGet, "/", nil)); !errors.Is(err, ErrNoSession) {
		t.Errorf("no cookie: err = %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "garbage"})
	if _, err := m.UserID(req); !errors.Is(err, ErrNoSession) {
		t.Errorf("garbage cookie: err = %v", err)
	}
}

func TestSessionEnd(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestSessions().End(rec)
	header := rec.Header().Get("Set-Cookie")
	if !strings.Contains(header, CookieName+"=") || !strings.Contains(header, "Max-Age=0") {
		t.Errorf("Set-Cookie = %q, want expired session cookie", header)
	}
}

func TestUserContext(t *testing.T) {
	if UserFromContext(context.Background()) != nil {
		t.Fatal("empty context returned a user")
	}
	u := &models.User{ID: 9}
	if got := UserFromContext(WithUser(context.Background(), u)); got != u {
		t.Fatalf("got %v, want %v", got, u)
	}
}

func TestOwnership(t *testing.T) {
	alice := &models.User{ID: 1}
	bob := &models.User{ID: 2}
	carol := &models.User{ID: 3}

	project := &models.Project{ID: 10, OwnerID: alice.ID}
	if !CanAccessProject(project, alice) {
		t.Error("owner denied project access")
	}
	if CanAccessProject(project, bob) {
		t.Error("non-owner granted project access")
	}
	if CanAccessProject(project, nil) || CanAccessProject(nil, alice) {
		t.Error("nil arguments granted access")
	}

	task := &models.Task{ID: 20, CreatorID: bob.ID, ProjectOwnerID: alice.ID}
	if !CanModifyTask(task, bob) {
		t.Error("creator denied task access")
	}
	if !CanModifyTask(task, alice) {
		t.Error("project owner denied task access")
	}
	if CanModifyTask(task, carol) {
		t.Error("stranger granted task access")
	}
	if CanModifyTask(nil, alice) || CanModifyTask(task, nil) {
		t.Error("nil arguments granted access")
	}
}
