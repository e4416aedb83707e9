package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"event-admin-portal/internal/api"
	"event-admin-portal/internal/middleware"
	"event-admin-portal/web/templates"
)

// pageData is the envelope every template renders from.
type pageData struct {
	Title string
	Flash middleware.Flash
	Data  any
}

// handleUnauthorized performs the single 401 transition: clear the stored
// session and force a fresh login. Returns true when the error was the
// unauthorized sentinel and the response is already written.
func handleUnauthorized(sessions *middleware.SessionManager, w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	sessions.Clear(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

func renderPage(renderer *templates.Renderer, logger *zap.SugaredLogger, w http.ResponseWriter, page string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := renderer.Render(w, page, data); err != nil {
		logger.Errorw("failed to render template", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

type errorPageData struct {
	Message string
}

func renderErrorPage(renderer *templates.Renderer, logger *zap.SugaredLogger, w http.ResponseWriter, flash middleware.Flash, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	renderPage(renderer, logger, w, "error.html", pageData{
		Title: "Error",
		Flash: flash,
		Data:  errorPageData{Message: message},
	})
}
