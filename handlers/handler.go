package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"warbler/repositories"
	"warbler/session"
	"warbler/views"
)

// Base holds what every handler needs. The concrete handlers embed it.
type Base struct {
	Users    repositories.UserRepository
	Messages repositories.MessageRepository
	Sessions *session.Manager
}

func NewBase(users repositories.UserRepository, messages repositories.MessageRepository, sessions *session.Manager) *Base {
	return &Base{Users: users, Messages: messages, Sessions: sessions}
}

// AuthedHandlerFunc is a handler that only runs for a logged-in user.
type AuthedHandlerFunc func(w http.ResponseWriter, r *http.Request, auth session.Auth)

// WithAuth resolves the session cookie into a session.Auth on the request
// context. A session naming a user that no longer exists is anonymous.
func (b *Base) WithAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var auth session.Auth
		if id, ok := b.Sessions.UserID(r); ok {
			user, err := b.Users.GetByID(r.Context(), id)
			switch {
			case err == nil:
				auth.User = user
			case errors.Is(err, repositories.ErrNotFound):
				logrus.WithField("user_id", id).Info("Session names a deleted user")
			default:
				logrus.WithError(err).WithField("user_id", id).Error("Failed to load session user")
			}
		}
		next.ServeHTTP(w, r.WithContext(session.WithAuth(r.Context(), auth)))
	})
}

// RequireLogin redirects anonymous visitors to the landing page.
func (b *Base) RequireLogin(next AuthedHandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := session.AuthFrom(r.Context())
		if !auth.LoggedIn() {
			b.Sessions.AddFlash(w, r, session.FlashDanger, "Access unauthorized.")
			redirect(w, r, "/")
			return
		}
		next(w, r, auth)
	}
}

// NoCache stops browsers from caching pages that depend on the session.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

func (b *Base) render(w http.ResponseWriter, r *http.Request, status int, name, title string, data any) {
	page := views.Page{
		Title:       title,
		CurrentUser: session.AuthFrom(r.Context()).User,
		Flashes:     b.Sessions.Flashes(w, r),
		Data:        data,
	}
	if err := views.Render(w, status, name, page); err != nil {
		logrus.WithError(err).WithField("template", name).Error("Failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (b *Base) notFound(w http.ResponseWriter, r *http.Request) {
	b.render(w, r, http.StatusNotFound, "404.html", "Not Found", nil)
}

func (b *Base) serverError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	logrus.WithError(err).WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).Error(msg)
	b.render(w, r, http.StatusInternalServerError, "500.html", "Error", nil)
}

// redirect answers 302 with an absolute URL on the request's host.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, absoluteURL(r, path), http.StatusFound)
}

func absoluteURL(r *http.Request, path string) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host + path
}

// backPath returns the path of the Referer when it points at this host,
// otherwise fallback.
func backPath(r *http.Request, fallback string) string {
	ref, err := url.Parse(r.Referer())
	if err != nil || ref.Host != r.Host || ref.Path == "" {
		return fallback
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func userPath(id uint) string {
	return "/users/" + strconv.FormatUint(uint64(id), 10)
}
