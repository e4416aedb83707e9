package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"go.uber.org/zap"

	"event-admin-portal/internal/middleware"
	"event-admin-portal/internal/models"
	"event-admin-portal/internal/services"
	"event-admin-portal/web/templates"
)

// DashboardHandler serves the admin dashboard, the standalone revenue chart,
// and the pending-scans drill-down.
type DashboardHandler struct {
	dashboards *services.DashboardService
	sessions   *middleware.SessionManager
	renderer   *templates.Renderer
	logger     *zap.SugaredLogger
}

// NewDashboardHandler creates a dashboard handler.
func NewDashboardHandler(dashboards *services.DashboardService, sessions *middleware.SessionManager, renderer *templates.Renderer, logger *zap.SugaredLogger) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards, sessions: sessions, renderer: renderer, logger: logger}
}

type dashboardPageData struct {
	View *services.DashboardView
}

// DashboardPage renders the stats overview with the revenue chart for the
// requested period.
func (h *DashboardHandler) DashboardPage(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	period := r.URL.Query().Get("period")

	view, err := h.dashboards.Overview(r.Context(), token, period)
	if err != nil {
		if handleUnauthorized(h.sessions, w, r, err) {
			return
		}
		h.logger.Errorw("failed to load dashboard", "error", err)
		renderErrorPage(h.renderer, h.logger, w, h.sessions.PopFlashes(w, r), "Failed to load dashboard data")
		return
	}

	renderPage(h.renderer, h.logger, w, "dashboard.html", pageData{
		Title: "Admin Dashboard",
		Flash: h.sessions.PopFlashes(w, r),
		Data:  dashboardPageData{View: view},
	})
}

// RevenueChart renders the revenue series as a standalone interactive chart
// page.
func (h *DashboardHandler) RevenueChart(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())

	points, period, err := h.dashboards.Revenue(r.Context(), token, r.URL.Query().Get("period"))
	if err != nil {
		if handleUnauthorized(h.sessions, w, r, err) {
			return
		}
		h.logger.Errorw("failed to load revenue chart", "error", err)
		renderErrorPage(h.renderer, h.logger, w, h.sessions.PopFlashes(w, r), "Failed to load revenue data")
		return
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Revenue Overview", Subtitle: periodLabel(period)}),
		charts.WithInitializationOpts(opts.Initialization{
			Theme:     types.ThemeWesteros,
			PageTitle: "Revenue Overview",
			Width:     "100%",
			Height:    "420px",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(revenueLabels(points))
	bar.AddSeries("Revenue", revenueBarData(points))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := bar.Render(w); err != nil {
		h.logger.Errorw("failed to render revenue chart", "error", err)
	}
}

func periodLabel(period string) string {
	switch period {
	case "30d":
		return "Last 30 days"
	case "12m":
		return "Last 12 months"
	default:
		return "Last 7 days"
	}
}

func revenueLabels(points []models.RevenuePoint) []string {
	labels := make([]string, len(points))
	for i, point := range points {
		labels[i] = point.BucketID
	}
	return labels
}

func revenueBarData(points []models.RevenuePoint) []opts.BarData {
	data := make([]opts.BarData, len(points))
	for i, point := range points {
		data[i] = opts.BarData{Value: point.Revenue}
	}
	return data
}

type pendingScansPageData struct {
	Items []models.PendingScanItem
}

// PendingScansPage lists every booking with entries still left to scan.
func (h *DashboardHandler) PendingScansPage(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())

	items, err := h.dashboards.PendingScans(r.Context(), token)
	if err != nil {
		if handleUnauthorized(h.sessions, w, r, err) {
			return
		}
		h.logger.Errorw("failed to load pending scans", "error", err)
		renderErrorPage(h.renderer, h.logger, w, h.sessions.PopFlashes(w, r), "Failed to load pending scan data")
		return
	}

	renderPage(h.renderer, h.logger, w, "pending_scans.html", pageData{
		Title: "Pending QR Scans",
		Flash: h.sessions.PopFlashes(w, r),
		Data:  pendingScansPageData{Items: items},
	})
}

// ExportPendingScans downloads the pending list as CSV. An empty list never
// produces a file.
func (h *DashboardHandler) ExportPendingScans(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())

	items, err := h.dashboards.PendingScans(r.Context(), token)
	if err != nil {
		if handleUnauthorized(h.sessions, w, r, err) {
			return
		}
		h.logger.Errorw("failed to load pending scans for export", "error", err)
		h.sessions.AddError(w, r, "Failed to export pending scans")
		http.Redirect(w, r, "/admin/dashboard/pending-scans", http.StatusSeeOther)
		return
	}
	if len(items) == 0 {
		h.sessions.AddError(w, r, "No pending scans to export")
		http.Redirect(w, r, "/admin/dashboard/pending-scans", http.StatusSeeOther)
		return
	}

	payload := h.dashboards.ExportPendingCSV(items)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+services.PendingExportFileName(time.Now()))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	if _, err := w.Write(payload); err != nil {
		h.logger.Errorw("failed to write pending-scans export", "error", err)
	}
}
