package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"warbler/monitoring"
	"warbler/repositories"
	"warbler/session"
)

const minPasswordLength = 6

// AuthHandler handles signup, login and logout
type AuthHandler struct {
	*Base
}

func NewAuthHandler(base *Base) *AuthHandler {
	return &AuthHandler{Base: base}
}

type signupForm struct {
	Username string
	Email    string
	ImageURL string
	Errors   []string
}

type loginForm struct {
	Username string
	Errors   []string
}

// Signup handles GET and POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "users/signup.html", "Sign up", signupForm{})
		return
	}

	form := signupForm{
		Username: strings.TrimSpace(r.FormValue("username")),
		Email:    strings.TrimSpace(r.FormValue("email")),
		ImageURL: strings.TrimSpace(r.FormValue("image_url")),
	}
	password := r.FormValue("password")

	if form.Username == "" {
		form.Errors = append(form.Errors, "You have to enter a username")
	}
	if !validEmail(form.Email) {
		form.Errors = append(form.Errors, "You have to enter a valid email address")
	}
	if len(password) < minPasswordLength {
		form.Errors = append(form.Errors, "Password must be at least 6 characters")
	}
	if len(form.Errors) > 0 {
		h.render(w, r, http.StatusOK, "users/signup.html", "Sign up", form)
		return
	}

	user, err := h.Users.Signup(r.Context(), form.Username, form.Email, password, form.ImageURL)
	switch {
	case errors.Is(err, repositories.ErrUsernameTaken):
		form.Errors = append(form.Errors, "Username already taken")
	case errors.Is(err, repositories.ErrEmailTaken):
		form.Errors = append(form.Errors, "Email already taken")
	case err != nil:
		h.serverError(w, r, err, "Failed to sign up user")
		return
	}
	if len(form.Errors) > 0 {
		h.render(w, r, http.StatusOK, "users/signup.html", "Sign up", form)
		return
	}

	if err := h.Sessions.Login(w, r, user.ID); err != nil {
		h.serverError(w, r, err, "Failed to save session")
		return
	}
	monitoring.RegisterSuccess.Inc()
	logrus.WithField("user_id", user.ID).Info("User signed up")
	redirect(w, r, "/")
}

// Login handles GET and POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "users/login.html", "Log in", loginForm{})
		return
	}

	form := loginForm{Username: strings.TrimSpace(r.FormValue("username"))}
	password := r.FormValue("password")

	if form.Username == "" || password == "" {
		monitoring.LoginFailure.WithLabelValues("missing_fields").Inc()
		form.Errors = append(form.Errors, "You have to enter a username and a password")
		h.render(w, r, http.StatusOK, "users/login.html", "Log in", form)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), form.Username, password)
	if errors.Is(err, repositories.ErrInvalidCredentials) {
		monitoring.LoginFailure.WithLabelValues("invalid_credentials").Inc()
		form.Errors = append(form.Errors, "Invalid credentials.")
		h.render(w, r, http.StatusOK, "users/login.html", "Log in", form)
		return
	}
	if err != nil {
		monitoring.LoginFailure.WithLabelValues("error").Inc()
		h.serverError(w, r, err, "Failed to authenticate user")
		return
	}

	if err := h.Sessions.Login(w, r, user.ID); err != nil {
		h.serverError(w, r, err, "Failed to save session")
		return
	}
	monitoring.LoginSuccess.Inc()
	h.Sessions.AddFlash(w, r, session.FlashSuccess, "Hello, "+user.Username+"!")
	redirect(w, r, "/")
}

// Logout handles GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(w, r); err != nil {
		h.serverError(w, r, err, "Failed to clear session")
		return
	}
	h.Sessions.AddFlash(w, r, session.FlashSuccess, "You have successfully logged out.")
	redirect(w, r, "/login")
}

// validEmail is a shape check only: something@something.tld
func validEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && strings.Contains(email[at+1:], ".") && !strings.ContainsAny(email, " \t\n")
}
