package handlers

import (
	"net/http"

	"warbler/models"
	"warbler/repositories"
	"warbler/session"
)

const timelineLimit = 100

// messageList feeds the "message-list" template.
type messageList struct {
	Messages []models.Message
	Viewer   *models.User
	LikedIDs map[uint]bool
}

type homeData struct {
	messageList
	User  *models.User
	Stats repositories.UserStats
}

// HomeHandler serves the landing page and the 404 page
type HomeHandler struct {
	*Base
}

func NewHomeHandler(base *Base) *HomeHandler {
	return &HomeHandler{Base: base}
}

// Home shows the landing page to anonymous visitors and the timeline to
// logged-in users.
func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	auth := session.AuthFrom(r.Context())
	if !auth.LoggedIn() {
		h.render(w, r, http.StatusOK, "home-anon.html", "Warbler", nil)
		return
	}

	ctx := r.Context()
	messages, err := h.Messages.Timeline(ctx, auth.UserID(), timelineLimit)
	if err != nil {
		h.serverError(w, r, err, "Failed to load timeline")
		return
	}
	liked, err := h.Messages.LikedIDs(ctx, auth.UserID())
	if err != nil {
		h.serverError(w, r, err, "Failed to load likes")
		return
	}
	stats, err := h.Users.Stats(ctx, auth.UserID())
	if err != nil {
		h.serverError(w, r, err, "Failed to load stats")
		return
	}

	h.render(w, r, http.StatusOK, "home.html", "Warbler", homeData{
		messageList: messageList{Messages: messages, Viewer: auth.User, LikedIDs: liked},
		User:        auth.User,
		Stats:       stats,
	})
}

// NotFound renders the 404 page for unmatched routes.
func (h *HomeHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.notFound(w, r)
}
