package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"event-admin-portal/internal/middleware"
	"event-admin-portal/internal/models"
	"event-admin-portal/internal/services"
	"event-admin-portal/web/templates"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// OfflineHandler serves the offline-bookings list and its row actions.
type OfflineHandler struct {
	offline  *services.OfflineService
	composer *services.TicketComposer
	sessions *middleware.SessionManager
	renderer *templates.Renderer
	logger   *zap.SugaredLogger
}

// NewOfflineHandler creates an offline-bookings handler.
func NewOfflineHandler(offline *services.OfflineService, composer *services.TicketComposer, sessions *middleware.SessionManager, renderer *templates.Renderer, logger *zap.SugaredLogger) *OfflineHandler {
	return &OfflineHandler{offline: offline, composer: composer, sessions: sessions, renderer: renderer, logger: logger}
}

// parseFilter decodes and validates the listing filter from the query
// string. Invalid input resets to an unfiltered first page.
func parseFilter(r *http.Request) (models.OfflineFilter, error) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	filter := models.OfflineFilter{
		StartDate:     query.Get("startDate"),
		EndDate:       query.Get("endDate"),
		EventID:       query.Get("eventId"),
		MemberID:      query.Get("memberId"),
		UTRNumber:     query.Get("utrNumber"),
		PaymentStatus: query.Get("paymentStatus"),
		DiscountCode:  query.Get("discountCode"),
		Search:        strings.TrimSpace(query.Get("search")),
		Page:          page,
	}
	if err := validate.Struct(filter); err != nil {
		return models.OfflineFilter{Page: 1}, err
	}
	return filter, nil
}

type offlineListPageData struct {
	View    *services.OfflineView
	Query   string
	PrevURL string
	NextURL string
}

func buildListData(view *services.OfflineView) offlineListPageData {
	view.Pagination.Normalize()
	page := view.Pagination.CurrentPage
	data := offlineListPageData{
		View:  view,
		Query: view.Filter.ViewValues(page).Encode(),
	}
	if !view.SearchActive {
		if view.Pagination.HasPrevious() {
			data.PrevURL = "/admin/offline-bookings?" + view.Filter.QueryValues(page-1).Encode()
		}
		if view.Pagination.HasNext() {
			data.NextURL = "/admin/offline-bookings?" + view.Filter.QueryValues(page+1).Encode()
		}
	}
	return data
}

// ListPage renders the filtered, paginated offline-bookings table.
func (h *OfflineHandler) ListPage(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())

	filter, err := parseFilter(r)
	if err != nil {
		h.sessions.AddError(w, r, "Invalid filter values, showing all bookings")
	}

	view, err := h.offline.List(r.Context(), token, filter)
	if err != nil {
		if handleUnauthorized(h.sessions, w, r, err) {
			return
		}
		h.logger.Errorw("failed to load offline bookings", "error", err)
		h.sessions.AddError(w, r, "Failed to load offline bookings")
		view = &services.OfflineView{Filter: filter, SearchActive: filter.SearchActive()}
	}

	renderPage(h.renderer, h.logger, w, "offline_list.html", pageData{
		Title: "Offline Bookings",
		Flash: h.sessions.PopFlashes(w, r),
		Data:  buildListData(view),
	})
}

// Export downloads the current page (or the full search result set) as CSV.
// An empty view never produces a file.
func (h *OfflineHandler) Export(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())

	filter, _ := parseFilter(r)
	view, err := h.offline.List(r.Context(), token, filter)
	if err != nil {
		if handleUnauthorized(h.sessions, w, r, err) {
			return
		}
		h.logger.Errorw("failed to load offline bookings for export", "error", err)
		h.sessions.AddError(w, r, "Failed to export bookings")
		h.redirectToList(w, r)
		return
	}
	if len(view.Bookings) == 0 {
		h.sessions.AddError(w, r, "No data to export")
		h.redirectToList(w, r)
		return
	}

	view.Pagination.Normalize()
	payload := h.offline.ExportCSV(view)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename="+services.OfflineExportFileName(time.Now(), view.Pagination.CurrentPage))
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	if _, err := w.Write(payload); err != nil {
		h.logger.Errorw("failed to write offline-bookings export", "error", err)
	}
}

type ticketPageData struct {
	Booking    *models.Booking
	EventTitle string
	QRImageURL string
	Message    string
	Query      string
}

// TicketPage shows the QR ticket for one booking with the WhatsApp send and
// QR download actions.
func (h *OfflineHandler) TicketPage(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	id := chi.URLParam(r, "id")

	filter, _ := parseFilter(r)
	view, err := h.offline.List(r.Context(), token, filter)
	if err != nil {
		if handleUnauthorized(h.sessions, w, r, err) {
			return
		}
		h.logger.Errorw("failed to load booking for ticket", "booking_id", id, "error", err)
		h.sessions.AddError(w, r, "Failed to load booking")
		h.redirectToList(w, r)
		return
	}
	booking := h.offline.FindBooking(view, id)
	if booking == nil {
		h.sessions.AddError(w, r, "Booking not found")
		h.redirectToList(w, r)
		return
	}

	event := booking.Event.Resolve(view.EventsByID)
	renderPage(h.renderer, h.logger, w, "ticket.html", pageData{
		Title: "Ticket #" + booking.BookingID.String(),
		Flash: h.sessions.PopFlashes(w, r),
		Data: ticketPageData{
			Booking:    booking,
			EventTitle: view.EventTitle(booking),
			QRImageURL: h.composer.QRImageURL(booking),
			Message:    h.composer.Message(booking, event),
			Query:      r.URL.RawQuery,
		},
	})
}

// WhatsApp redirects to the wa.me chat-compose link with the prefilled
// confirmation message for one booking.
func (h *OfflineHandler) WhatsApp(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	id := chi.URLParam(r, "id")

	filter, _ := parseFilter(r)
	view, err := h.offline.List(r.Context(), token, filter)
	if err != nil {
		if handleUnauthorized(h.sessions, w, r, err) {
			return
		}
		h.logger.Errorw("failed to load booking for whatsapp", "booking_id", id, "error", err)
		h.sessions.AddError(w, r, "Failed to load booking")
		h.redirectToList(w, r)
		return
	}
	booking := h.offline.FindBooking(view, id)
	if booking == nil {
		h.sessions.AddError(w, r, "Booking not found")
		h.redirectToList(w, r)
		return
	}

	event := booking.Event.Resolve(view.EventsByID)
	http.Redirect(w, r, h.composer.WhatsAppURL(booking, event), http.StatusFound)
}

// DownloadQR proxies the generated QR image as an attachment so the browser
// saves it instead of navigating to the generator.
func (h *OfflineHandler) DownloadQR(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	id := chi.URLParam(r, "id")

	filter, _ := parseFilter(r)
	view, err := h.offline.List(r.Context(), token, filter)
	if err != nil {
		if handleUnauthorized(h.sessions, w, r, err) {
			return
		}
		h.logger.Errorw("failed to load booking for QR download", "booking_id", id, "error", err)
		h.sessions.AddError(w, r, "Failed to load booking")
		h.redirectToList(w, r)
		return
	}
	booking := h.offline.FindBooking(view, id)
	if booking == nil {
		h.sessions.AddError(w, r, "Booking not found")
		h.redirectToList(w, r)
		return
	}

	image, contentType, err := h.offline.FetchQRImage(r.Context(), h.composer.QRImageURL(booking))
	if err != nil {
		h.logger.Errorw("failed to fetch QR image", "booking_id", id, "error", err)
		h.sessions.AddError(w, r, "Failed to download QR code")
		h.redirectToList(w, r)
		return
	}
	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+h.composer.QRFileName(booking))
	w.Header().Set("Content-Length", strconv.Itoa(len(image)))
	if _, err := w.Write(image); err != nil {
		h.logger.Errorw("failed to write QR image", "booking_id", id, "error", err)
	}
}

// Delete removes one offline booking and returns to the list, preserving
// the active filter. The refreshed page reflects the server's new counts.
func (h *OfflineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.offline.Delete(r.Context(), token, id); err != nil {
		if handleUnauthorized(h.sessions, w, r, err) {
			return
		}
		h.logger.Errorw("failed to delete offline booking", "booking_id", id, "error", err)
		h.sessions.AddError(w, r, "Failed to delete booking")
		h.redirectToList(w, r)
		return
	}
	h.sessions.AddSuccess(w, r, "Booking deleted successfully")
	h.redirectToList(w, r)
}

func (h *OfflineHandler) redirectToList(w http.ResponseWriter, r *http.Request) {
	target := "/admin/offline-bookings"
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
