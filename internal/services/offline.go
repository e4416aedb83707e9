package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"event-admin-portal/internal/api"
	"event-admin-portal/internal/models"
)

// pageSize is the backend's fixed offline-bookings page size, used only to
// compute serial numbers.
const pageSize = 20

// fetchFanOut bounds the concurrent page requests of an exhaustive fetch.
const fetchFanOut = 5

// OfflineView is everything the offline-bookings page renders.
type OfflineView struct {
	Bookings     []models.Booking
	Events       []models.Event
	EventsByID   map[string]*models.Event
	Filter       models.OfflineFilter
	Pagination   models.Pagination
	SearchActive bool
}

// BaseIndex is the zero-based offset of the first row on the current page.
func (v *OfflineView) BaseIndex() int {
	return (v.Pagination.CurrentPage - 1) * pageSize
}

// EventTitle resolves a booking's event title against the loaded events.
func (v *OfflineView) EventTitle(booking *models.Booking) string {
	if event := booking.Event.Resolve(v.EventsByID); event != nil && event.Title != "" {
		return event.Title
	}
	return "N/A"
}

// OfflineService loads, filters, exports, and deletes offline bookings.
type OfflineService struct {
	api    *api.Client
	logger *zap.SugaredLogger
}

// NewOfflineService creates an offline-bookings service.
func NewOfflineService(client *api.Client, logger *zap.SugaredLogger) *OfflineService {
	return &OfflineService{api: client, logger: logger}
}

// List fetches the offline-bookings view. With no search text, one page is
// fetched as-is. With search text, every page is fetched (page 1 first for
// the page count, the rest concurrently), the member filter is applied
// client-side, and pagination collapses to a single page.
func (s *OfflineService) List(ctx context.Context, token string, filter models.OfflineFilter) (*OfflineView, error) {
	view := &OfflineView{Filter: filter, SearchActive: filter.SearchActive()}

	events, err := s.api.Events(ctx, token)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return nil, err
		}
		s.logger.Warnw("failed to load events", "error", err)
	}
	view.Events = events
	view.EventsByID = make(map[string]*models.Event, len(events))
	for i := range events {
		view.EventsByID[events[i].ID] = &events[i]
	}

	if view.SearchActive {
		bookings, err := s.fetchAllPages(ctx, token, filter)
		if err != nil {
			return nil, err
		}
		view.Pagination = models.Pagination{CurrentPage: 1, TotalPages: 1, TotalBookings: len(bookings)}
		view.Bookings = filterBookings(bookings, filter.Search)
		return view, nil
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	result, err := s.api.OfflineBookings(ctx, token, filter, page)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	view.Bookings = result.Bookings
	view.Pagination = result.Pagination
	return view, nil
}

// fetchAllPages retrieves every result page for the filter: page 1
// sequentially to learn the page count, the remainder with a bounded
// concurrent fan-out, concatenated in page order.
func (s *OfflineService) fetchAllPages(ctx context.Context, token string, filter models.OfflineFilter) ([]models.Booking, error) {
	first, err := s.api.OfflineBookings(ctx, token, filter, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	totalPages := first.Pagination.TotalPages
	if totalPages <= 1 {
		return first.Bookings, nil
	}

	pages := make([][]models.Booking, totalPages+1)
	pages[1] = first.Bookings

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(fetchFanOut)
	for page := 2; page <= totalPages; page++ {
		page := page
		group.Go(func() error {
			result, err := s.api.OfflineBookings(groupCtx, token, filter, page)
			if err != nil {
				return err
			}
			pages[page] = result.Bookings
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	var all []models.Booking
	for page := 1; page <= totalPages; page++ {
		all = append(all, pages[page]...)
	}
	return all, nil
}

func filterBookings(bookings []models.Booking, search string) []models.Booking {
	normalized := models.NormalizeSearchText(search)
	if normalized == "" {
		return bookings
	}
	filtered := make([]models.Booking, 0, len(bookings))
	for i := range bookings {
		if bookings[i].MatchesSearch(normalized) {
			filtered = append(filtered, bookings[i])
		}
	}
	return filtered
}

// FindBooking locates a booking in the view by backend id.
func (s *OfflineService) FindBooking(view *OfflineView, id string) *models.Booking {
	for i := range view.Bookings {
		if view.Bookings[i].ID == id {
			return &view.Bookings[i]
		}
	}
	return nil
}

// Delete removes one offline booking. Callers refetch the page afterwards
// so pagination counts stay correct; nothing is removed optimistically.
func (s *OfflineService) Delete(ctx context.Context, token, id string) error {
	if err := s.api.DeleteOfflineBooking(ctx, token, id); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

// FetchQRImage proxies the generated QR image so the browser gets it as a
// same-origin attachment download.
func (s *OfflineService) FetchQRImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	return s.api.FetchImage(ctx, imageURL)
}

// offlineCSVHeaders is the export column order for the offline listing.
var offlineCSVHeaders = []string{
	"SI.No", "Booking ID", "Member Name", "Member ID", "Event",
	"Tickets (M/G/K)", "Meals (V/NV)", "Gross Amount", "Final Amount",
	"Payment Status", "UTR Number", "Contact Number", "Booking Date",
}

// ExportCSV serializes the current view, one row per booking plus exactly
// one trailing summary row carrying the total count and page position.
func (s *OfflineService) ExportCSV(view *OfflineView) []byte {
	rows := make([][]string, 0, len(view.Bookings)+1)
	for i := range view.Bookings {
		booking := &view.Bookings[i]
		rows = append(rows, []string{
			strconv.Itoa(view.BaseIndex() + i + 1),
			booking.BookingID.String(),
			booking.ResolveMemberName(nil),
			booking.MemberIDInput.String(),
			view.EventTitle(booking),
			fmt.Sprintf("M:%d G:%d K:%d", booking.MemberTicketCount, booking.GuestTicketCount, booking.KidTicketCount),
			fmt.Sprintf("V:%d NV:%d", booking.VegTotal(), booking.NonVegTotal()),
			formatAmount(booking.GrossAmount),
			formatAmount(booking.FinalTotal()),
			strings.ToUpper(booking.PaymentStatus),
			booking.UTRNumber,
			booking.ContactNumber,
			formatBookingDate(booking),
		})
	}
	rows = append(rows, []string{
		"", "", "", "", "", "", "", "",
		fmt.Sprintf("TOTAL: %d bookings", view.Pagination.TotalBookings),
		"", "", "",
		fmt.Sprintf("Page %d of %d", view.Pagination.CurrentPage, view.Pagination.TotalPages),
	})
	return MarshalCSV(offlineCSVHeaders, rows)
}

// OfflineExportFileName stamps the offline export with the current date and
// page number.
func OfflineExportFileName(now time.Time, page int) string {
	return fmt.Sprintf("offline-bookings-%s-page-%d.csv", now.UTC().Format("2006-01-02"), page)
}

func formatBookingDate(booking *models.Booking) string {
	raw := booking.CreatedAt
	if raw == "" {
		raw = booking.BookingDate
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return raw
}
