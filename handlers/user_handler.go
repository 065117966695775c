package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"warbler/models"
	"warbler/monitoring"
	"warbler/repositories"
	"warbler/session"
)

// UserHandler handles profiles, follows and account management
type UserHandler struct {
	*Base
}

func NewUserHandler(base *Base) *UserHandler {
	return &UserHandler{Base: base}
}

// profileData feeds the "profile-header" template and, on pages that list
// messages, the "message-list" template.
type profileData struct {
	messageList
	User        *models.User
	Stats       repositories.UserStats
	IsFollowing bool
	Users       []models.User
}

type userListData struct {
	Users []models.User
	Query string
}

type editForm struct {
	Username       string
	Email          string
	ImageURL       string
	HeaderImageURL string
	Bio            string
	Location       string
	Errors         []string
}

// List handles GET /users, optionally filtered by ?q=
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	users, err := h.Users.Search(r.Context(), q)
	if err != nil {
		h.serverError(w, r, err, "Failed to search users")
		return
	}
	h.render(w, r, http.StatusOK, "users/index.html", "Users", userListData{Users: users, Query: q})
}

// Show handles GET /users/{id}
func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	auth := session.AuthFrom(r.Context())
	data, ok := h.loadProfile(w, r, auth)
	if !ok {
		return
	}
	messages, err := h.Messages.ByUser(r.Context(), data.User.ID, timelineLimit)
	if err != nil {
		h.serverError(w, r, err, "Failed to load messages")
		return
	}
	data.Messages = messages
	h.render(w, r, http.StatusOK, "users/show.html", "@"+data.User.Username, data)
}

// Following handles GET /users/{id}/following
func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request, auth session.Auth) {
	data, ok := h.loadProfile(w, r, auth)
	if !ok {
		return
	}
	users, err := h.Users.Following(r.Context(), data.User.ID)
	if err != nil {
		h.serverError(w, r, err, "Failed to load following")
		return
	}
	data.Users = users
	h.render(w, r, http.StatusOK, "users/following.html", "Following", data)
}

// Followers handles GET /users/{id}/followers
func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request, auth session.Auth) {
	data, ok := h.loadProfile(w, r, auth)
	if !ok {
		return
	}
	users, err := h.Users.Followers(r.Context(), data.User.ID)
	if err != nil {
		h.serverError(w, r, err, "Failed to load followers")
		return
	}
	data.Users = users
	h.render(w, r, http.StatusOK, "users/followers.html", "Followers", data)
}

// Likes handles GET /users/{id}/likes
func (h *UserHandler) Likes(w http.ResponseWriter, r *http.Request, auth session.Auth) {
	data, ok := h.loadProfile(w, r, auth)
	if !ok {
		return
	}
	messages, err := h.Messages.LikedBy(r.Context(), data.User.ID)
	if err != nil {
		h.serverError(w, r, err, "Failed to load liked messages")
		return
	}
	data.Messages = messages
	h.render(w, r, http.StatusOK, "users/likes.html", "Likes", data)
}

// loadProfile resolves {id} into the profile header data. It writes the
// error response itself and reports false when the page cannot be shown.
func (h *UserHandler) loadProfile(w http.ResponseWriter, r *http.Request, auth session.Auth) (profileData, bool) {
	var data profileData
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return data, false
	}

	ctx := r.Context()
	user, err := h.Users.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		h.notFound(w, r)
		return data, false
	}
	if err != nil {
		h.serverError(w, r, err, "Failed to load user")
		return data, false
	}
	data.User = user

	if data.Stats, err = h.Users.Stats(ctx, user.ID); err != nil {
		h.serverError(w, r, err, "Failed to load stats")
		return data, false
	}

	data.LikedIDs = map[uint]bool{}
	if auth.LoggedIn() {
		data.Viewer = auth.User
		if data.IsFollowing, err = h.Users.IsFollowing(ctx, auth.UserID(), user.ID); err != nil {
			h.serverError(w, r, err, "Failed to check follow")
			return data, false
		}
		if data.LikedIDs, err = h.Messages.LikedIDs(ctx, auth.UserID()); err != nil {
			h.serverError(w, r, err, "Failed to load likes")
			return data, false
		}
	}
	return data, true
}

// Follow handles POST /users/follow/{id}
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request, auth session.Auth) {
	target, ok := h.targetUser(w, r)
	if !ok {
		return
	}
	if target.ID == auth.UserID() {
		h.Sessions.AddFlash(w, r, session.FlashDanger, "You cannot follow yourself.")
		redirect(w, r, userPath(auth.UserID()))
		return
	}
	if err := h.Users.Follow(r.Context(), auth.UserID(), target.ID); err != nil {
		h.serverError(w, r, err, "Failed to follow user")
		return
	}
	monitoring.FollowEvents.WithLabelValues("follow").Inc()
	redirect(w, r, userPath(auth.UserID())+"/following")
}

// StopFollowing handles POST /users/stop-following/{id}
func (h *UserHandler) StopFollowing(w http.ResponseWriter, r *http.Request, auth session.Auth) {
	target, ok := h.targetUser(w, r)
	if !ok {
		return
	}
	if err := h.Users.Unfollow(r.Context(), auth.UserID(), target.ID); err != nil {
		h.serverError(w, r, err, "Failed to unfollow user")
		return
	}
	monitoring.FollowEvents.WithLabelValues("unfollow").Inc()
	redirect(w, r, userPath(auth.UserID())+"/following")
}

func (h *UserHandler) targetUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return nil, false
	}
	user, err := h.Users.GetByID(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		h.notFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, r, err, "Failed to load user")
		return nil, false
	}
	return user, true
}

// EditProfile handles GET and POST /users/profile. Changes are only saved
// after the current password checks out.
func (h *UserHandler) EditProfile(w http.ResponseWriter, r *http.Request, auth session.Auth) {
	user := auth.User
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "users/edit.html", "Edit Profile", editForm{
			Username:       user.Username,
			Email:          user.Email,
			ImageURL:       user.ImageURL,
			HeaderImageURL: user.HeaderImageURL,
			Bio:            user.Bio,
			Location:       user.Location,
		})
		return
	}

	form := editForm{
		Username:       strings.TrimSpace(r.FormValue("username")),
		Email:          strings.TrimSpace(r.FormValue("email")),
		ImageURL:       strings.TrimSpace(r.FormValue("image_url")),
		HeaderImageURL: strings.TrimSpace(r.FormValue("header_image_url")),
		Bio:            strings.TrimSpace(r.FormValue("bio")),
		Location:       strings.TrimSpace(r.FormValue("location")),
	}

	if _, err := h.Users.Authenticate(r.Context(), user.Username, r.FormValue("password")); err != nil {
		if !errors.Is(err, repositories.ErrInvalidCredentials) {
			h.serverError(w, r, err, "Failed to authenticate user")
			return
		}
		form.Errors = append(form.Errors, "Wrong password, please try again.")
		h.render(w, r, http.StatusOK, "users/edit.html", "Edit Profile", form)
		return
	}

	if form.Username == "" {
		form.Errors = append(form.Errors, "You have to enter a username")
	}
	if !validEmail(form.Email) {
		form.Errors = append(form.Errors, "You have to enter a valid email address")
	}
	if len(form.Errors) > 0 {
		h.render(w, r, http.StatusOK, "users/edit.html", "Edit Profile", form)
		return
	}

	updated := *user
	updated.Username = form.Username
	updated.Email = form.Email
	updated.ImageURL = form.ImageURL
	if updated.ImageURL == "" {
		updated.ImageURL = models.DefaultImageURL
	}
	updated.HeaderImageURL = form.HeaderImageURL
	if updated.HeaderImageURL == "" {
		updated.HeaderImageURL = models.DefaultHeaderImageURL
	}
	updated.Bio = form.Bio
	updated.Location = form.Location

	err := h.Users.Update(r.Context(), &updated)
	switch {
	case errors.Is(err, repositories.ErrUsernameTaken):
		form.Errors = append(form.Errors, "Username already taken")
	case errors.Is(err, repositories.ErrEmailTaken):
		form.Errors = append(form.Errors, "Email already taken")
	case err != nil:
		h.serverError(w, r, err, "Failed to update user")
		return
	}
	if len(form.Errors) > 0 {
		h.render(w, r, http.StatusOK, "users/edit.html", "Edit Profile", form)
		return
	}

	h.Sessions.AddFlash(w, r, session.FlashSuccess, "Profile updated.")
	redirect(w, r, userPath(user.ID))
}

// Delete handles POST /users/delete
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request, auth session.Auth) {
	if err := h.Users.Delete(r.Context(), auth.UserID()); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		h.serverError(w, r, err, "Failed to delete user")
		return
	}
	if err := h.Sessions.Logout(w, r); err != nil {
		logrus.WithError(err).Warn("Failed to clear session after account delete")
	}
	monitoring.AccountsDeleted.Inc()
	logrus.WithField("user_id", auth.UserID()).Info("User deleted account")
	h.Sessions.AddFlash(w, r, session.FlashInfo, "Your account has been deleted.")
	redirect(w, r, "/")
}
