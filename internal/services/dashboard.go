package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"event-admin-portal/internal/api"
	"event-admin-portal/internal/models"
)

// userLookupLimit caps the best-effort admin user fetch used to resolve
// member names for pending scans.
const userLookupLimit = 2000

// RevenuePeriods are the selectable revenue chart periods.
var RevenuePeriods = []string{"7d", "30d", "12m"}

// DefaultRevenuePeriod is used when no period is requested.
const DefaultRevenuePeriod = "7d"

// DashboardView is everything the dashboard page renders.
type DashboardView struct {
	Stats   *models.DashboardStats
	Revenue []models.RevenuePoint
	Period  string
}

// MaxRevenue is the largest bucket value, used to scale bar heights.
func (v *DashboardView) MaxRevenue() float64 {
	max := 0.0
	for _, point := range v.Revenue {
		if point.Revenue > max {
			max = point.Revenue
		}
	}
	return max
}

// DashboardService loads the dashboard screen and resolves pending scans.
type DashboardService struct {
	api    *api.Client
	logger *zap.SugaredLogger
}

// NewDashboardService creates a dashboard service.
func NewDashboardService(client *api.Client, logger *zap.SugaredLogger) *DashboardService {
	return &DashboardService{api: client, logger: logger}
}

// Overview fetches dashboard stats and the revenue chart for a period. A
// stats failure fails the whole view; a revenue failure is logged and
// leaves the chart empty.
func (s *DashboardService) Overview(ctx context.Context, token, period string) (*DashboardView, error) {
	if !validPeriod(period) {
		period = DefaultRevenuePeriod
	}

	stats, err := s.api.DashboardStats(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	view := &DashboardView{Stats: stats, Period: period}

	revenue, err := s.api.RevenueChart(ctx, token, period)
	if err != nil {
		if err == api.ErrUnauthorized {
			return nil, err
		}
		s.logger.Warnw("failed to load revenue chart", "period", period, "error", err)
		return view, nil
	}
	view.Revenue = revenue
	return view, nil
}

// Revenue fetches only the revenue series for the standalone chart page.
func (s *DashboardService) Revenue(ctx context.Context, token, period string) ([]models.RevenuePoint, string, error) {
	if !validPeriod(period) {
		period = DefaultRevenuePeriod
	}
	points, err := s.api.RevenueChart(ctx, token, period)
	if err != nil {
		return nil, period, fmt.Errorf("failed to load revenue chart: %w", err)
	}
	return points, period, nil
}

func validPeriod(period string) bool {
	for _, p := range RevenuePeriods {
		if p == period {
			return true
		}
	}
	return false
}

// PendingScans builds the pending-scans list: all bookings whose allotted
// entry count exceeds the recorded scan count, flattened for display. The
// projection is pure; the same backend state always yields the same list.
func (s *DashboardService) PendingScans(ctx context.Context, token string) ([]models.PendingScanItem, error) {
	bookings, err := s.api.Bookings(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	usersByID := s.lookupReferencedUsers(ctx, token, bookings)

	pending := make([]models.PendingScanItem, 0)
	for i := range bookings {
		booking := &bookings[i]
		if !booking.IsPending() {
			continue
		}
		pending = append(pending, buildPendingItem(booking, usersByID))
	}
	return pending, nil
}

// lookupReferencedUsers fetches the admin user list when any booking
// references its user by id. Failure degrades to an empty index; names then
// fall back to the booking's embedded fields.
func (s *DashboardService) lookupReferencedUsers(ctx context.Context, token string, bookings []models.Booking) map[string]*models.User {
	referenced := false
	for i := range bookings {
		if bookings[i].User.ID != "" && bookings[i].User.User == nil {
			referenced = true
			break
		}
	}
	if !referenced {
		return nil
	}

	users, err := s.api.Users(ctx, token, 1, userLookupLimit)
	if err != nil {
		s.logger.Warnw("unable to load user details for pending scans", "error", err)
		return nil
	}
	usersByID := make(map[string]*models.User, len(users))
	for i := range users {
		if users[i].ID != "" {
			usersByID[users[i].ID] = &users[i]
		}
	}
	return usersByID
}

func buildPendingItem(booking *models.Booking, usersByID map[string]*models.User) models.PendingScanItem {
	item := models.PendingScanItem{
		ID:             booking.ID,
		BookingID:      booking.BookingID.String(),
		EventTitle:     booking.ResolveEventTitle(),
		MemberName:     booking.ResolveMemberName(usersByID),
		TotalTickets:   booking.TicketCount(),
		Scanned:        booking.ScannedTotal(),
		Remaining:      booking.Remaining(),
		ContactNumber:  booking.ContactNumber,
		BookingType:    booking.BookingType,
		BookingDate:    booking.BookingDate,
		CreatedAt:      booking.CreatedAt,
		FinalAmount:    booking.FinalTotal(),
		GrossAmount:    booking.GrossAmount,
		DiscountAmount: booking.DiscountAmount,
		DiscountCode:   booking.DiscountCode,

		MemberTicketCount: booking.MemberTicketCount,
		GuestTicketCount:  booking.GuestTicketCount,
		KidTicketCount:    booking.KidTicketCount,
		MemberVegCount:    booking.MemberVegCount,
		MemberNonVegCount: booking.MemberNonVegCount,
		GuestVegCount:     booking.GuestVegCount,
		GuestNonVegCount:  booking.GuestNonVegCount,
		KidVegCount:       booking.KidVegCount,
		KidNonVegCount:    booking.KidNonVegCount,

		AttendeeNames: booking.AttendeeNames(),
	}
	if item.BookingDate == "" {
		item.BookingDate = booking.CreatedAt
	}
	if event := booking.Event.Event; event != nil {
		item.EventStartDate = event.StartDate
		item.EventEndDate = event.EndDate
		item.EventLocation = event.Location
		item.EventGuestPrice = event.GuestPrice.String()
		item.EventMemberPrice = event.MemberPrice.String()
		item.EventUserPrice = event.UserPrice.String()
		item.EventMaxCapacity = event.MaxCapacity.String()
	}
	return item
}

// pendingCSVHeaders is the export column order for the pending-scans list.
var pendingCSVHeaders = []string{
	"Booking ID", "Member Name", "Contact Number", "Booking Type",
	"Booking Date", "Created At", "Event", "Event Location", "Event Start",
	"Event End", "Tickets", "Scanned", "Pending", "Member Tickets",
	"Guest Tickets", "Kid Tickets", "Member Veg", "Member Non-Veg",
	"Guest Veg", "Guest Non-Veg", "Kid Veg", "Kid Non-Veg", "Gross Amount",
	"Discount Amount", "Discount Code", "Final Amount", "Attendee Names",
	"Event Member Price", "Event Guest Price", "Event User Price",
	"Event Max Capacity",
}

// ExportPendingCSV serializes the pending list, one row per record.
func (s *DashboardService) ExportPendingCSV(items []models.PendingScanItem) []byte {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{
			item.BookingID,
			item.MemberName,
			item.ContactNumber,
			item.BookingType,
			item.BookingDate,
			item.CreatedAt,
			item.EventTitle,
			item.EventLocation,
			item.EventStartDate,
			item.EventEndDate,
			fmt.Sprintf("%d", item.TotalTickets),
			fmt.Sprintf("%d", item.Scanned),
			fmt.Sprintf("%d", item.Remaining),
			fmt.Sprintf("%d", item.MemberTicketCount),
			fmt.Sprintf("%d", item.GuestTicketCount),
			fmt.Sprintf("%d", item.KidTicketCount),
			fmt.Sprintf("%d", item.MemberVegCount),
			fmt.Sprintf("%d", item.MemberNonVegCount),
			fmt.Sprintf("%d", item.GuestVegCount),
			fmt.Sprintf("%d", item.GuestNonVegCount),
			fmt.Sprintf("%d", item.KidVegCount),
			fmt.Sprintf("%d", item.KidNonVegCount),
			formatAmount(item.GrossAmount),
			formatAmount(item.DiscountAmount),
			item.DiscountCode,
			formatAmount(item.FinalAmount),
			strings.Join(item.AttendeeNames, " | "),
			item.EventMemberPrice,
			item.EventGuestPrice,
			item.EventUserPrice,
			item.EventMaxCapacity,
		})
	}
	return MarshalCSV(pendingCSVHeaders, rows)
}

// PendingExportFileName stamps the pending export with the current date.
func PendingExportFileName(now time.Time) string {
	return fmt.Sprintf("pending-qr-scans-%s.csv", now.UTC().Format("2006-01-02"))
}
