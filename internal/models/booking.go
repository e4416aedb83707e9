package models

import (
	"encoding/json"
	"strings"
)

// FlexString decodes a JSON string or number into a string. The backend is
// inconsistent about whether booking and member identifiers are quoted.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = FlexString(n.String())
	return nil
}

func (s FlexString) String() string { return string(s) }

// UserRef is a booking's user field, which arrives either as a bare object
// id or as an embedded user document.
type UserRef struct {
	ID   string
	User *User
}

func (r *UserRef) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	user := &User{}
	if err := json.Unmarshal(data, user); err != nil {
		return err
	}
	r.User = user
	r.ID = user.ID
	return nil
}

func (r UserRef) MarshalJSON() ([]byte, error) {
	if r.User != nil {
		return json.Marshal(r.User)
	}
	return json.Marshal(r.ID)
}

// Attendee is one entry of a booking's attendee name list.
type Attendee struct {
	Name string `json:"name"`
}

// Booking represents a booking record from either the general bookings
// endpoint or the offline-bookings endpoint. Count and amount fields that
// feed fallback chains are pointers so that absent and zero stay distinct.
type Booking struct {
	ID            string     `json:"_id"`
	BookingID     FlexString `json:"bookingId"`
	User          UserRef    `json:"user"`
	Member        *User      `json:"member"`
	Event         EventRef   `json:"event"`
	EventName     string     `json:"eventName"`
	MemberName    string     `json:"memberName"`
	CustomerName  string     `json:"customerName"`
	MemberIDInput FlexString `json:"memberIdInput"`
	ContactNumber string     `json:"contactNumber"`
	BookingType   string     `json:"bookingType"`
	BookingDate   string     `json:"bookingDate"`
	CreatedAt     string     `json:"createdAt"`

	QRCode       string `json:"qrCode"`
	QRScanLimit  *int   `json:"qrScanLimit"`
	QRScanCount  *int   `json:"qrScanCount"`
	ScannedCount *int   `json:"scannedCount"`

	TotalTickets *int `json:"totalTickets"`
	TicketsCount *int `json:"ticketsCount"`
	TotalGuests  *int `json:"totalGuests"`
	Quantity     *int `json:"quantity"`

	MemberTicketCount int `json:"memberTicketCount"`
	GuestTicketCount  int `json:"guestTicketCount"`
	KidTicketCount    int `json:"kidTicketCount"`

	MemberVegCount    int `json:"memberVegCount"`
	MemberNonVegCount int `json:"memberNonVegCount"`
	GuestVegCount     int `json:"guestVegCount"`
	GuestNonVegCount  int `json:"guestNonVegCount"`
	KidVegCount       int `json:"kidVegCount"`
	KidNonVegCount    int `json:"kidNonVegCount"`

	GrossAmount    float64  `json:"grossAmount"`
	DiscountAmount float64  `json:"discountAmount"`
	DiscountCode   string   `json:"discountCode"`
	FinalAmount    *float64 `json:"finalAmount"`
	TotalAmount    *float64 `json:"totalAmount"`

	PaymentStatus string `json:"paymentStatus"`
	UTRNumber     string `json:"utrNumber"`

	AttendeeNameJSON []Attendee `json:"attendeeNameJson"`
}

// TicketCount resolves the booking's allotted entry count through the
// ordered fallback chain: explicit scan limit, total tickets, tickets
// count, total guests, quantity, then the category sum floored by the
// attendee-name-list length when that list is longer.
func (b Booking) TicketCount() int {
	if b.QRScanLimit != nil {
		return *b.QRScanLimit
	}
	if b.TotalTickets != nil {
		return *b.TotalTickets
	}
	if b.TicketsCount != nil {
		return *b.TicketsCount
	}
	if b.TotalGuests != nil {
		return *b.TotalGuests
	}
	if b.Quantity != nil {
		return *b.Quantity
	}
	sum := b.MemberTicketCount + b.GuestTicketCount + b.KidTicketCount
	if n := len(b.AttendeeNameJSON); n > sum {
		return n
	}
	return sum
}

// ScannedTotal resolves the recorded scan count.
func (b Booking) ScannedTotal() int {
	if b.QRScanCount != nil {
		return *b.QRScanCount
	}
	if b.ScannedCount != nil {
		return *b.ScannedCount
	}
	return 0
}

// Remaining is the number of entries still to be scanned, never negative.
func (b Booking) Remaining() int {
	remaining := b.TicketCount() - b.ScannedTotal()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsPending reports whether the booking still has entries to scan.
func (b Booking) IsPending() bool {
	return b.TicketCount() > b.ScannedTotal()
}

// FinalTotal resolves the booking's payable amount.
func (b Booking) FinalTotal() float64 {
	if b.FinalAmount != nil {
		return *b.FinalAmount
	}
	if b.TotalAmount != nil {
		return *b.TotalAmount
	}
	return 0
}

// VegTotal is the vegetarian meal count across ticket categories.
func (b Booking) VegTotal() int {
	return b.MemberVegCount + b.GuestVegCount + b.KidVegCount
}

// NonVegTotal is the non-vegetarian meal count across ticket categories.
func (b Booking) NonVegTotal() int {
	return b.MemberNonVegCount + b.GuestNonVegCount + b.KidNonVegCount
}

// AttendeeNames returns the non-empty attendee names.
func (b Booking) AttendeeNames() []string {
	names := make([]string, 0, len(b.AttendeeNameJSON))
	for _, attendee := range b.AttendeeNameJSON {
		if attendee.Name != "" {
			names = append(names, attendee.Name)
		}
	}
	return names
}

// ResolveMemberName resolves the display name for the booking's member
// through the ordered fallback chain: explicit member name, the referenced
// or embedded user's composed name, the user's plain name, the customer
// name, then the literal "Member".
func (b Booking) ResolveMemberName(usersByID map[string]*User) string {
	if b.MemberName != "" {
		return b.MemberName
	}

	user := b.User.User
	if user == nil && b.User.ID != "" {
		user = usersByID[b.User.ID]
	}
	if user == nil {
		user = b.Member
	}
	if user != nil {
		if full := user.FullName(); full != "" {
			return full
		}
	}

	if b.CustomerName != "" {
		return b.CustomerName
	}
	return "Member"
}

// ResolveEventTitle resolves the booking's event title, falling back to the
// flat eventName field and finally a generic label.
func (b Booking) ResolveEventTitle() string {
	if b.Event.Event != nil && b.Event.Event.Title != "" {
		return b.Event.Event.Title
	}
	if b.EventName != "" {
		return b.EventName
	}
	return "Event"
}

// NormalizeSearchText lowercases and strips whitespace and punctuation so
// member-search matching ignores formatting differences.
func NormalizeSearchText(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MatchesSearch reports whether the booking's resolved member name or
// contact number contains the normalized search text.
func (b Booking) MatchesSearch(normalized string) bool {
	if normalized == "" {
		return true
	}
	return strings.Contains(NormalizeSearchText(b.ResolveMemberName(nil)), normalized) ||
		strings.Contains(NormalizeSearchText(b.ContactNumber), normalized)
}
