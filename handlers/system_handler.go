package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"
)

// Pinger reports whether the database answers.
type Pinger interface {
	Ping() error
}

// SystemHandler handles system-related endpoints
type SystemHandler struct {
	db Pinger
}

func NewSystemHandler(db Pinger) *SystemHandler {
	return &SystemHandler{db: db}
}

// Health answers 200 when the database is reachable and 503 otherwise.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.db.Ping(); err != nil {
		logrus.WithError(err).Error("Health check failed")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("database unavailable\n"))
		return
	}
	w.Write([]byte("OK\n"))
}
