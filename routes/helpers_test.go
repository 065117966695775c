package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"warbler/database"
	"warbler/handlers"
	"warbler/models"
	"warbler/repositories"
	"warbler/session"
)

const testSecret = "test-secret-key"

type testApp struct {
	handler  http.Handler
	db       *database.DB
	users    repositories.UserRepository
	messages repositories.MessageRepository
	sessions *session.Manager
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	logrus.SetOutput(io.Discard)

	db, err := database.NewMemory()
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	app := &testApp{
		db:       db,
		users:    repositories.NewUserRepository(db.DB),
		messages: repositories.NewMessageRepository(db.DB),
		sessions: session.NewManager([]byte(testSecret), time.Hour, false),
	}
	app.handler = SetupRoutes(handlers.NewBase(app.users, app.messages, app.sessions), db)
	return app
}

func (a *testApp) signup(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := a.users.Signup(context.Background(), username, username+"@test.com", "password", "")
	if err != nil {
		t.Fatalf("Failed to sign up %s: %v", username, err)
	}
	return u
}

func (a *testApp) post(t *testing.T, userID uint, text string) *models.Message {
	t.Helper()
	m := &models.Message{Text: text, UserID: userID}
	if err := a.messages.Create(context.Background(), m); err != nil {
		t.Fatalf("Failed to create message: %v", err)
	}
	return m
}

// loginCookie returns a session cookie authenticated as userID.
func (a *testApp) loginCookie(t *testing.T, userID uint) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := a.sessions.Login(rec, req, userID); err != nil {
		t.Fatalf("Failed to log in: %v", err)
	}
	c := sessionCookie(rec)
	if c == nil {
		t.Fatal("Expected a session cookie")
	}
	return c
}

// do performs a request. A non-nil form is sent url-encoded.
func (a *testApp) do(method, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) doWithReferer(method, path, referer string, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Referer", referer)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// sessionCookie returns the last session cookie written, which is the one
// a browser keeps.
func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	var found *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.Name {
			found = c
		}
	}
	return found
}

func assertRedirect(t *testing.T, rec *httptest.ResponseRecorder, path string) {
	t.Helper()
	if rec.Code != http.StatusFound {
		t.Fatalf("Expected 302, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	if got, want := rec.Header().Get("Location"), "http://example.com"+path; got != want {
		t.Errorf("Expected redirect to %s, got %s", want, got)
	}
}

func assertBody(t *testing.T, rec *httptest.ResponseRecorder, want string) {
	t.Helper()
	if !strings.Contains(rec.Body.String(), want) {
		t.Errorf("Expected body to contain %q. Body: %s", want, rec.Body.String())
	}
}

func messageCount(t *testing.T, a *testApp) int64 {
	t.Helper()
	var n int64
	if err := a.db.Model(&models.Message{}).Count(&n).Error; err != nil {
		t.Fatalf("Failed to count messages: %v", err)
	}
	return n
}
