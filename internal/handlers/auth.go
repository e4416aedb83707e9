package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"event-admin-portal/internal/middleware"
	"event-admin-portal/web/templates"
)

// AuthHandler serves the login page and manages the session token.
type AuthHandler struct {
	sessions *middleware.SessionManager
	renderer *templates.Renderer
	logger   *zap.SugaredLogger
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(sessions *middleware.SessionManager, renderer *templates.Renderer, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{sessions: sessions, renderer: renderer, logger: logger}
}

// LoginPage renders the token entry form. Already-authenticated visitors are
// sent straight to the dashboard.
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if token := h.sessions.Token(r); token != "" && !middleware.TokenExpired(token) {
		http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
		return
	}
	renderPage(h.renderer, h.logger, w, "login.html", pageData{
		Title: "Admin Login",
		Flash: h.sessions.PopFlashes(w, r),
	})
}

// Login stores the pasted backend token in the session.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.FormValue("token"))
	if token == "" {
		h.sessions.AddError(w, r, "Please paste an admin token")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if middleware.TokenExpired(token) {
		h.sessions.AddError(w, r, "That token has expired, please obtain a fresh one")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if err := h.sessions.SetToken(w, r, token); err != nil {
		h.logger.Errorw("failed to store session token", "error", err)
		h.sessions.AddError(w, r, "Could not start a session, please try again")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/dashboard", http.StatusSeeOther)
}

// Logout clears the session and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
