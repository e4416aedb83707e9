package models

// MealSummary is the veg / non-veg split across all bookings.
type MealSummary struct {
	Veg    int `json:"veg"`
	NonVeg int `json:"nonVeg"`
}

// Stats holds the aggregate counters shown on the dashboard cards.
type Stats struct {
	TotalUsers          int         `json:"totalUsers"`
	TotalMembers        int         `json:"totalMembers"`
	TotalEvents         int         `json:"totalEvents"`
	TotalBookings       int         `json:"totalBookings"`
	TotalTicketsBooked  int         `json:"totalTicketsBooked"`
	TotalTicketsScanned int         `json:"totalTicketsScanned"`
	TotalRevenue        float64     `json:"totalRevenue"`
	AmountCollected     float64     `json:"amountCollected"`
	MealSummary         MealSummary `json:"mealSummary"`
}

// ScanProgress is the scanned percentage of all booked tickets, 0 when
// nothing is booked.
func (s Stats) ScanProgress() int {
	if s.TotalTicketsBooked <= 0 {
		return 0
	}
	return int(float64(s.TotalTicketsScanned)/float64(s.TotalTicketsBooked)*100 + 0.5)
}

// ScansRemaining is the number of booked tickets not yet scanned, never
// negative.
func (s Stats) ScansRemaining() int {
	remaining := s.TotalTicketsBooked - s.TotalTicketsScanned
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DashboardStats is the dashboard-stats endpoint payload.
type DashboardStats struct {
	Stats          Stats     `json:"stats"`
	RecentUsers    []User    `json:"recentUsers"`
	RecentBookings []Booking `json:"recentBookings"`
}

// RevenuePoint is one bucket of the revenue chart, in API order.
type RevenuePoint struct {
	BucketID string  `json:"_id"`
	Revenue  float64 `json:"revenue"`
}

// PendingScanItem is the flat display record for one booking with entries
// left to scan. It is derived, never persisted; identity is the booking id.
type PendingScanItem struct {
	ID             string
	BookingID      string
	EventTitle     string
	MemberName     string
	TotalTickets   int
	Scanned        int
	Remaining      int
	ContactNumber  string
	BookingType    string
	BookingDate    string
	CreatedAt      string
	FinalAmount    float64
	GrossAmount    float64
	DiscountAmount float64
	DiscountCode   string

	MemberTicketCount int
	GuestTicketCount  int
	KidTicketCount    int
	MemberVegCount    int
	MemberNonVegCount int
	GuestVegCount     int
	GuestNonVegCount  int
	KidVegCount       int
	KidNonVegCount    int

	AttendeeNames []string

	EventStartDate   string
	EventEndDate     string
	EventLocation    string
	EventGuestPrice  string
	EventMemberPrice string
	EventUserPrice   string
	EventMaxCapacity string
}
