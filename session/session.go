package session

import (
	"context"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"

	"warbler/models"
)

const (
	// Name of the session cookie.
	Name = "warbler-session"
	// CurrUserKey holds the logged-in user's id inside the session.
	CurrUserKey = "curr_user"

	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashInfo    = "info"
)

func init() {
	// flashes live in the session as []any, which gob has to know about
	gob.Register([]any{})
}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

// Manager reads and writes the session cookie.
type Manager struct {
	store sessions.Store
}

func NewManager(secret []byte, maxAge time.Duration, secure bool) *Manager {
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Manager{store: store}
}

// get never fails: a cookie that does not decode yields a fresh session.
func (m *Manager) get(r *http.Request) *sessions.Session {
	s, err := m.store.Get(r, Name)
	if err != nil {
		logrus.WithError(err).Debug("Discarding undecodable session cookie")
	}
	return s
}

// Login marks userID as the authenticated user of this browser.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID uint) error {
	s := m.get(r)
	s.Values[CurrUserKey] = userID
	return s.Save(r, w)
}

// Logout forgets the authenticated user.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	delete(s.Values, CurrUserKey)
	return s.Save(r, w)
}

// UserID returns the id stored under CurrUserKey, if any.
func (m *Manager) UserID(r *http.Request) (uint, bool) {
	id, ok := m.get(r).Values[CurrUserKey].(uint)
	return id, ok && id != 0
}

func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) {
	s := m.get(r)
	s.AddFlash(message, category)
	if err := s.Save(r, w); err != nil {
		logrus.WithError(err).Warn("Failed to save flash message")
	}
}

// Flashes pops every pending flash message.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) []Flash {
	s := m.get(r)
	var out []Flash
	for _, category := range []string{FlashSuccess, FlashInfo, FlashDanger} {
		for _, v := range s.Flashes(category) {
			if msg, ok := v.(string); ok {
				out = append(out, Flash{Category: category, Message: msg})
			}
		}
	}
	if len(out) > 0 {
		if err := s.Save(r, w); err != nil {
			logrus.WithError(err).Warn("Failed to clear flash messages")
		}
	}
	return out
}

// Auth is the per-request authentication state. A nil User means anonymous.
type Auth struct {
	User *models.User
}

func (a Auth) LoggedIn() bool {
	return a.User != nil
}

// UserID returns the logged-in user's id, or 0.
func (a Auth) UserID() uint {
	if a.User == nil {
		return 0
	}
	return a.User.ID
}

type ctxKeyAuth struct{}

func WithAuth(ctx context.Context, a Auth) context.Context {
	return context.WithValue(ctx, ctxKeyAuth{}, a)
}

func AuthFrom(ctx context.Context) Auth {
	a, _ := ctx.Value(ctxKeyAuth{}).(Auth)
	return a
}
