package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

type contextKey string

// TokenContextKey carries the upstream bearer token through the request
// context.
const TokenContextKey contextKey = "upstream_token"

const (
	sessionName  = "admin_session"
	tokenKey     = "token"
	sessionAge   = 86400 * 7
	flashSuccess = "_flash_success"
	flashError   = "_flash_error"
)

// Flash is a one-shot notification surfaced on the next rendered page.
type Flash struct {
	Success []string
	Error   []string
}

// SessionManager owns the cookie session holding the upstream bearer token
// and flash messages.
type SessionManager struct {
	store  *sessions.CookieStore
	logger *zap.SugaredLogger
}

// NewSessionManager creates a session manager backed by a cookie store.
func NewSessionManager(secret string, secure bool, logger *zap.SugaredLogger) *SessionManager {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionAge,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &SessionManager{store: store, logger: logger}
}

// Token reads the stored upstream bearer token, empty when not logged in.
func (m *SessionManager) Token(r *http.Request) string {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return ""
	}
	token, _ := session.Values[tokenKey].(string)
	return token
}

// SetToken stores the upstream bearer token in the session.
func (m *SessionManager) SetToken(w http.ResponseWriter, r *http.Request, token string) error {
	session, _ := m.store.Get(r, sessionName)
	session.Values[tokenKey] = token
	return session.Save(r, w)
}

// Clear drops the session. This is the single logout transition; the 401
// handler and the logout handler both end up here.
func (m *SessionManager) Clear(w http.ResponseWriter, r *http.Request) {
	session, _ := m.store.Get(r, sessionName)
	session.Values = map[interface{}]interface{}{}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		m.logger.Warnw("failed to clear session", "error", err)
	}
}

// AddSuccess queues a success flash message.
func (m *SessionManager) AddSuccess(w http.ResponseWriter, r *http.Request, msg string) {
	m.addFlash(w, r, flashSuccess, msg)
}

// AddError queues an error flash message.
func (m *SessionManager) AddError(w http.ResponseWriter, r *http.Request, msg string) {
	m.addFlash(w, r, flashError, msg)
}

func (m *SessionManager) addFlash(w http.ResponseWriter, r *http.Request, key, msg string) {
	session, _ := m.store.Get(r, sessionName)
	session.AddFlash(msg, key)
	if err := session.Save(r, w); err != nil {
		m.logger.Warnw("failed to save flash", "error", err)
	}
}

// PopFlashes drains queued flash messages for rendering.
func (m *SessionManager) PopFlashes(w http.ResponseWriter, r *http.Request) Flash {
	session, err := m.store.Get(r, sessionName)
	if err != nil {
		return Flash{}
	}
	var flash Flash
	for _, v := range session.Flashes(flashSuccess) {
		if s, ok := v.(string); ok {
			flash.Success = append(flash.Success, s)
		}
	}
	for _, v := range session.Flashes(flashError) {
		if s, ok := v.(string); ok {
			flash.Error = append(flash.Error, s)
		}
	}
	if len(flash.Success) > 0 || len(flash.Error) > 0 {
		if err := session.Save(r, w); err != nil {
			m.logger.Warnw("failed to drain flashes", "error", err)
		}
	}
	return flash
}

// RequireToken gates admin routes: requests without a token, or with an
// obviously expired one, are redirected to the login page. Valid-looking
// tokens are placed in the request context for data-access calls.
func (m *SessionManager) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.Token(r)
		if token == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		if TokenExpired(token) {
			m.Clear(w, r)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), TokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// TokenFromContext returns the bearer token stored by RequireToken.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(TokenContextKey).(string)
	return token
}

// TokenExpired peeks at the token's exp claim without verifying the
// signature (verification is the backend's job). Tokens that do not parse
// as JWTs pass through; the backend decides their fate.
func TokenExpired(token string) bool {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
