package models

import (
	"net/url"
	"strconv"
	"strings"
)

// OfflineFilter holds the user-entered query constraints for the
// offline-bookings list. Server-side params go to the backend as-is; Search
// additionally drives the client-side substring filter.
type OfflineFilter struct {
	StartDate     string `validate:"omitempty,datetime=2006-01-02"`
	EndDate       string `validate:"omitempty,datetime=2006-01-02"`
	EventID       string `validate:"omitempty"`
	MemberID      string `validate:"omitempty,max=64"`
	UTRNumber     string `validate:"omitempty,max=64"`
	PaymentStatus string `validate:"omitempty,oneof=paid pending completed"`
	DiscountCode  string `validate:"omitempty,max=64"`
	Search        string `validate:"omitempty,max=128"`
	Page          int    `validate:"omitempty,min=1"`
}

// SearchActive reports whether the member-search text is non-empty. While
// active, results are the full filtered set on a single page.
func (f OfflineFilter) SearchActive() bool {
	return strings.TrimSpace(f.Search) != ""
}

// QueryValues builds the backend query parameters for the given page.
// Search is a client-side concern and is never forwarded.
func (f OfflineFilter) QueryValues(page int) url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set("startDate", f.StartDate)
	set("endDate", f.EndDate)
	set("eventId", f.EventID)
	set("memberId", f.MemberID)
	set("utrNumber", f.UTRNumber)
	set("paymentStatus", f.PaymentStatus)
	set("discountCode", f.DiscountCode)
	values.Set("page", strconv.Itoa(page))
	return values
}

// ViewValues builds the portal's own query string so row actions and
// pagination links preserve the active filter.
func (f OfflineFilter) ViewValues(page int) url.Values {
	values := f.QueryValues(page)
	if f.SearchActive() {
		values.Set("search", strings.TrimSpace(f.Search))
		values.Set("page", "1")
	}
	return values
}

// Active reports whether any server-side constraint is set.
func (f OfflineFilter) Active() bool {
	return f.StartDate != "" || f.EndDate != "" || f.EventID != "" ||
		f.MemberID != "" || f.UTRNumber != "" || f.PaymentStatus != "" ||
		f.DiscountCode != ""
}

// Pagination mirrors the latest offline-bookings response; the server copy
// is authoritative.
type Pagination struct {
	CurrentPage   int `json:"currentPage"`
	TotalPages    int `json:"totalPages"`
	TotalBookings int `json:"totalBookings"`
}

// Normalize fills zero values so templates can render without guards.
func (p *Pagination) Normalize() {
	if p.CurrentPage < 1 {
		p.CurrentPage = 1
	}
	if p.TotalPages < 1 {
		p.TotalPages = 1
	}
}

// HasPrevious reports whether a previous page exists.
func (p Pagination) HasPrevious() bool { return p.CurrentPage > 1 }

// HasNext reports whether a next page exists.
func (p Pagination) HasNext() bool { return p.CurrentPage < p.TotalPages }
