package handlers

import (
	"errors"
	"net/http"
	"strings"

	"warbler/models"
	"warbler/monitoring"
	"warbler/repositories"
	"warbler/session"
)

// MessageHandler handles posting, showing, deleting and liking messages
type MessageHandler struct {
	*Base
}

func NewMessageHandler(base *Base) *MessageHandler {
	return &MessageHandler{Base: base}
}

type newMessageForm struct {
	Text   string
	Errors []string
}

type messageData struct {
	Message *models.Message
	Liked   bool
}

// New handles GET and POST /messages/new
func (h *MessageHandler) New(w http.ResponseWriter, r *http.Request, auth session.Auth) {
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "messages/new.html", "New Message", newMessageForm{})
		return
	}

	message := models.Message{Text: r.FormValue("text"), UserID: auth.UserID()}
	err := h.Messages.Create(r.Context(), &message)
	if errors.Is(err, repositories.ErrInvalidMessage) {
		form := newMessageForm{Text: strings.TrimSpace(r.FormValue("text"))}
		if form.Text == "" {
			form.Errors = append(form.Errors, "You have to enter a message")
		} else {
			form.Errors = append(form.Errors, "Messages are limited to 140 characters")
		}
		h.render(w, r, http.StatusOK, "messages/new.html", "New Message", form)
		return
	}
	if err != nil {
		h.serverError(w, r, err, "Failed to create message")
		return
	}

	monitoring.MessagesPosted.Inc()
	redirect(w, r, userPath(auth.UserID()))
}

// Show handles GET /messages/{id}
func (h *MessageHandler) Show(w http.ResponseWriter, r *http.Request) {
	message, ok := h.loadMessage(w, r)
	if !ok {
		return
	}

	data := messageData{Message: message}
	if auth := session.AuthFrom(r.Context()); auth.LoggedIn() {
		liked, err := h.Messages.LikedIDs(r.Context(), auth.UserID())
		if err != nil {
			h.serverError(w, r, err, "Failed to load likes")
			return
		}
		data.Liked = liked[message.ID]
	}
	h.render(w, r, http.StatusOK, "messages/show.html", "Message", data)
}

// Delete handles POST /messages/{id}/delete. Only the author may delete.
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request, auth session.Auth) {
	message, ok := h.loadMessage(w, r)
	if !ok {
		return
	}
	if message.UserID != auth.UserID() {
		h.Sessions.AddFlash(w, r, session.FlashDanger, "Access unauthorized.")
		redirect(w, r, "/")
		return
	}

	if err := h.Messages.Delete(r.Context(), message.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		h.serverError(w, r, err, "Failed to delete message")
		return
	}
	monitoring.MessagesDeleted.Inc()
	redirect(w, r, userPath(auth.UserID()))
}

// ToggleLike handles POST /users/add_like/{id}
func (h *MessageHandler) ToggleLike(w http.ResponseWriter, r *http.Request, auth session.Auth) {
	message, ok := h.loadMessage(w, r)
	if !ok {
		return
	}
	if message.UserID == auth.UserID() {
		h.render(w, r, http.StatusForbidden, "403.html", "Forbidden", nil)
		return
	}

	liked, err := h.Messages.ToggleLike(r.Context(), auth.UserID(), message.ID)
	if err != nil {
		h.serverError(w, r, err, "Failed to toggle like")
		return
	}
	action := "unlike"
	if liked {
		action = "like"
	}
	monitoring.LikeEvents.WithLabelValues(action).Inc()
	redirect(w, r, backPath(r, "/"))
}

func (h *MessageHandler) loadMessage(w http.ResponseWriter, r *http.Request) (*models.Message, bool) {
	id, ok := pathID(r)
	if !ok {
		h.notFound(w, r)
		return nil, false
	}
	message, err := h.Messages.GetByID(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		h.notFound(w, r)
		return nil, false
	}
	if err != nil {
		h.serverError(w, r, err, "Failed to load message")
		return nil, false
	}
	return message, true
}
