package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"event-admin-portal/internal/api"
	"event-admin-portal/internal/config"
	"event-admin-portal/internal/middleware"
	"event-admin-portal/internal/services"
	"event-admin-portal/web/templates"
)

// testApp wires the full handler stack against a fake upstream backend.
type testApp struct {
	router   *chi.Mux
	sessions *middleware.SessionManager
	upstream *httptest.Server
}

func newTestApp(t *testing.T, upstream http.HandlerFunc) *testApp {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	logger := zap.NewNop().Sugar()
	renderer, err := templates.New()
	require.NoError(t, err)

	client := api.NewClient(server.URL, 5*time.Second, logger)
	sessions := middleware.NewSessionManager("test-secret", false, logger)
	dashboards := services.NewDashboardService(client, logger)
	offline := services.NewOfflineService(client, logger)
	composer := services.NewTicketComposer(
		config.WhatsAppConfig{
			CountryCode:    "91",
			FallbackNumber: "9606729320",
			TicketBaseURL:  "https://thesrsevents.com/ticket",
			SupportURL:     "http://www.goldeneventz.co.in",
		},
		config.QRConfig{Endpoint: server.URL + "/qr-image", Size: "400x400"},
	)

	auth := NewAuthHandler(sessions, renderer, logger)
	dashboard := NewDashboardHandler(dashboards, sessions, renderer, logger)
	bookings := NewOfflineHandler(offline, composer, sessions, renderer, logger)

	router := chi.NewRouter()
	router.Get("/login", auth.LoginPage)
	router.Post("/login", auth.Login)
	router.Post("/logout", auth.Logout)
	router.Route("/admin", func(r chi.Router) {
		r.Use(sessions.RequireToken)
		r.Get("/dashboard", dashboard.DashboardPage)
		r.Get("/dashboard/revenue-chart", dashboard.RevenueChart)
		r.Get("/dashboard/pending-scans", dashboard.PendingScansPage)
		r.Get("/dashboard/pending-scans/export", dashboard.ExportPendingScans)
		r.Get("/offline-bookings", bookings.ListPage)
		r.Get("/offline-bookings/export", bookings.Export)
		r.Get("/offline-bookings/{id}/ticket", bookings.TicketPage)
		r.Get("/offline-bookings/{id}/qr", bookings.DownloadQR)
		r.Get("/offline-bookings/{id}/whatsapp", bookings.WhatsApp)
		r.Post("/offline-bookings/{id}/delete", bookings.Delete)
	})

	return &testApp{router: router, sessions: sessions, upstream: server}
}

// login stores a token and returns the session cookie for follow-up requests.
func (a *testApp) login(t *testing.T) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("token=backend-token"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	a.router.ServeHTTP(w, r)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/admin/dashboard", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[len(cookies)-1]
}

func (a *testApp) get(t *testing.T, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		r.AddCookie(cookie)
	}
	a.router.ServeHTTP(w, r)
	return w
}

func dashboardUpstream(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/admin/dashboard":
		w.Write([]byte(`{"data":{"stats":{"totalUsers":12,"totalTicketsBooked":100,"totalTicketsScanned":40}}}`))
	case "/api/admin/revenue-chart":
		w.Write([]byte(`{"data":[{"_id":"2026-08-01","revenue":500}]}`))
	case "/api/bookings":
		w.Write([]byte(`{"data":[{"_id":"b1","bookingId":1,"memberName":"Asha Rao","totalTickets":4,"qrScanCount":1}]}`))
	default:
		http.NotFound(w, r)
	}
}

func offlineUpstream(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/events":
		w.Write([]byte(`{"data":[{"_id":"e1","title":"NYE Bash","location":"Palace Grounds"}]}`))
	case r.URL.Path == "/api/admin/offline-bookings" && r.Method == http.MethodGet:
		w.Write([]byte(`{
			"data":[{"_id":"b1","bookingId":101,"memberName":"Asha Rao","contactNumber":"9876543210",
				"event":"e1","qrCode":"QR-101","memberTicketCount":2,"paymentStatus":"completed","finalAmount":1500}],
			"pagination":{"currentPage":1,"totalPages":3,"totalBookings":52}
		}`))
	case strings.HasPrefix(r.URL.Path, "/api/admin/offline-bookings/") && r.Method == http.MethodDelete:
		w.Write([]byte(`{"success":true}`))
	case r.URL.Path == "/qr-image":
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	default:
		http.NotFound(w, r)
	}
}

func TestAdminRoutesRequireLogin(t *testing.T) {
	app := newTestApp(t, dashboardUpstream)

	w := app.get(t, "/admin/dashboard", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	app := newTestApp(t, dashboardUpstream)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("token=  "))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	app.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestDashboardPageRenders(t *testing.T) {
	app := newTestApp(t, dashboardUpstream)
	cookie := app.login(t)

	w := app.get(t, "/admin/dashboard", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Admin Dashboard")
	assert.Contains(t, body, "12")
	assert.Contains(t, body, "40%")
}

func TestUpstream401ClearsSessionAndRedirects(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	cookie := app.login(t)

	w := app.get(t, "/admin/dashboard", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	// The session cookie is expired in the same response.
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == cookie.Name && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestRevenueChartRenders(t *testing.T) {
	app := newTestApp(t, dashboardUpstream)
	cookie := app.login(t)

	w := app.get(t, "/admin/dashboard/revenue-chart?period=30d", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "echarts")
	assert.Contains(t, w.Body.String(), "Revenue Overview")
}

func TestPendingScansExportHeaders(t *testing.T) {
	app := newTestApp(t, dashboardUpstream)
	cookie := app.login(t)

	w := app.get(t, "/admin/dashboard/pending-scans/export", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	disposition := w.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "attachment; filename=pending-qr-scans-")
	assert.Contains(t, disposition, ".csv")
	assert.Contains(t, w.Body.String(), `"Asha Rao"`)
}

func TestPendingScansExportEmptyRedirects(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/bookings" {
			w.Write([]byte(`{"data":[]}`))
			return
		}
		dashboardUpstream(w, r)
	})
	cookie := app.login(t)

	w := app.get(t, "/admin/dashboard/pending-scans/export", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/dashboard/pending-scans", w.Header().Get("Location"))
	assert.Empty(t, w.Header().Get("Content-Disposition"))
}

func TestOfflineListRenders(t *testing.T) {
	app := newTestApp(t, offlineUpstream)
	cookie := app.login(t)

	w := app.get(t, "/admin/offline-bookings?paymentStatus=completed", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Asha Rao")
	assert.Contains(t, body, "#101")
	assert.Contains(t, body, "NYE Bash")
	// Page 1 of 3 disables Previous and links Next.
	assert.Contains(t, body, "page=2")
}

func TestOfflineListRejectsInvalidFilter(t *testing.T) {
	app := newTestApp(t, offlineUpstream)
	cookie := app.login(t)

	w := app.get(t, "/admin/offline-bookings?paymentStatus=bogus", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid filter values")
}

func TestOfflineExportHeaders(t *testing.T) {
	app := newTestApp(t, offlineUpstream)
	cookie := app.login(t)

	w := app.get(t, "/admin/offline-bookings/export", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "page-1.csv")
	body := w.Body.String()
	assert.Contains(t, body, `"TOTAL: 52 bookings"`)
	assert.Contains(t, body, `"Page 1 of 3"`)
}

func TestOfflineExportEmptyRedirects(t *testing.T) {
	app := newTestApp(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/admin/offline-bookings" {
			w.Write([]byte(`{"data":[]}`))
			return
		}
		offlineUpstream(w, r)
	})
	cookie := app.login(t)

	w := app.get(t, "/admin/offline-bookings/export?eventId=e1", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/offline-bookings?eventId=e1", w.Header().Get("Location"))
}

func TestTicketPageRenders(t *testing.T) {
	app := newTestApp(t, offlineUpstream)
	cookie := app.login(t)

	w := app.get(t, "/admin/offline-bookings/b1/ticket", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, "Ticket #101")
	assert.Contains(t, body, "NYE Bash")
	assert.Contains(t, body, "/admin/offline-bookings/b1/whatsapp")
	assert.Contains(t, body, "/admin/offline-bookings/b1/qr")
}

func TestWhatsAppRedirectsToChatLink(t *testing.T) {
	app := newTestApp(t, offlineUpstream)
	cookie := app.login(t)

	w := app.get(t, "/admin/offline-bookings/b1/whatsapp", cookie)
	assert.Equal(t, http.StatusFound, w.Code)

	location := w.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "https://wa.me/919876543210?"))
	assert.Contains(t, location, "text=")
}

func TestTicketPageUnknownBookingRedirects(t *testing.T) {
	app := newTestApp(t, offlineUpstream)
	cookie := app.login(t)

	w := app.get(t, "/admin/offline-bookings/missing/ticket?page=2", cookie)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/offline-bookings?page=2", w.Header().Get("Location"))
}

func TestDownloadQRProxiesImage(t *testing.T) {
	app := newTestApp(t, offlineUpstream)
	cookie := app.login(t)

	w := app.get(t, "/admin/offline-bookings/b1/qr", cookie)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=SRS_Ticket_101.png", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "png-bytes", w.Body.String())
}

func TestDeleteRedirectsWithFlash(t *testing.T) {
	app := newTestApp(t, offlineUpstream)
	cookie := app.login(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/admin/offline-bookings/b1/delete?page=2", nil)
	r.AddCookie(cookie)
	app.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/offline-bookings?page=2", w.Header().Get("Location"))

	// Follow the redirect with the refreshed cookie to observe the flash.
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	follow := app.get(t, "/admin/offline-bookings?page=2", cookies[len(cookies)-1])
	require.Equal(t, http.StatusOK, follow.Code)
	assert.Contains(t, follow.Body.String(), "Booking deleted successfully")
}

func TestParseFilter(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin/offline-bookings?startDate=2026-01-01&paymentStatus=paid&search=+asha+&page=3", nil)
	filter, err := parseFilter(r)
	require.NoError(t, err)

	assert.Equal(t, "2026-01-01", filter.StartDate)
	assert.Equal(t, "paid", filter.PaymentStatus)
	assert.Equal(t, "asha", filter.Search)
	assert.Equal(t, 3, filter.Page)
}

func TestParseFilterInvalidResets(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/admin/offline-bookings?startDate=01-01-2026", nil)
	filter, err := parseFilter(r)
	assert.Error(t, err)
	assert.Equal(t, 1, filter.Page)
	assert.Empty(t, filter.StartDate)
}

func TestBuildListDataPaginationLinks(t *testing.T) {
	app := newTestApp(t, offlineUpstream)
	cookie := app.login(t)

	// Middle page: both directions linked.
	w := app.get(t, "/admin/offline-bookings", cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "1 / 3")
}

func TestLogoutClearsSession(t *testing.T) {
	app := newTestApp(t, dashboardUpstream)
	cookie := app.login(t)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	r.AddCookie(cookie)
	app.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == cookie.Name && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}
