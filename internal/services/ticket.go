package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"event-admin-portal/internal/config"
	"event-admin-portal/internal/models"
)

// TicketComposer derives the QR image URL, ticket deep link, and WhatsApp
// confirmation message for a single booking.
type TicketComposer struct {
	whatsapp config.WhatsAppConfig
	qr       config.QRConfig
}

// NewTicketComposer creates a ticket composer.
func NewTicketComposer(whatsapp config.WhatsAppConfig, qr config.QRConfig) *TicketComposer {
	return &TicketComposer{whatsapp: whatsapp, qr: qr}
}

// QRImageURL builds the third-party generator URL for the booking's QR
// payload string.
func (t *TicketComposer) QRImageURL(booking *models.Booking) string {
	query := url.Values{
		"size": {t.qr.Size},
		"data": {booking.QRCode},
	}
	return t.qr.Endpoint + "?" + query.Encode()
}

// QRFileName is the synthesized attachment name for the QR download.
func (t *TicketComposer) QRFileName(booking *models.Booking) string {
	return fmt.Sprintf("SRS_Ticket_%s.png", booking.BookingID)
}

// TicketURL builds the public ticket deep link embedding the booking's
// identity, ticket/meal breakdown, and payment status.
func (t *TicketComposer) TicketURL(booking *models.Booking, event *models.Event) string {
	utr := booking.UTRNumber
	if utr == "" {
		utr = "Pending"
	}
	query := url.Values{
		"bid":    {booking.BookingID.String()},
		"qr":     {booking.QRCode},
		"name":   {booking.ResolveMemberName(nil)},
		"mid":    {booking.MemberIDInput.String()},
		"event":  {eventTitle(booking, event)},
		"m":      {strconv.Itoa(booking.MemberTicketCount)},
		"g":      {strconv.Itoa(booking.GuestTicketCount)},
		"k":      {strconv.Itoa(booking.KidTicketCount)},
		"veg":    {strconv.Itoa(booking.VegTotal())},
		"nonveg": {strconv.Itoa(booking.NonVegTotal())},
		"amt":    {formatAmount(booking.FinalTotal())},
		"status": {strings.ToUpper(booking.PaymentStatus)},
		"utr":    {utr},
	}
	return t.whatsapp.TicketBaseURL + "?" + query.Encode()
}

// Message composes the human-readable booking confirmation sent over
// WhatsApp.
func (t *TicketComposer) Message(booking *models.Booking, event *models.Event) string {
	name := booking.ResolveMemberName(nil)
	title := eventTitle(booking, event)
	location := "Venue"
	if event != nil && event.Location != "" {
		location = event.Location
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s!\n\n", name)
	fmt.Fprintf(&b, "Booking Confirmed! You are all set for %s.\n\n", title)
	fmt.Fprintf(&b, "Booking ID: #%s\n", booking.BookingID)
	fmt.Fprintf(&b, "Member: %s\n", name)
	fmt.Fprintf(&b, "Event: %s\n", title)
	fmt.Fprintf(&b, "Tickets: M:%d G:%d K:%d\n", booking.MemberTicketCount, booking.GuestTicketCount, booking.KidTicketCount)
	fmt.Fprintf(&b, "Meals: Veg:%d | Non-Veg:%d\n", booking.VegTotal(), booking.NonVegTotal())
	fmt.Fprintf(&b, "Amount: ₹%s\n", formatAmount(booking.FinalTotal()))
	fmt.Fprintf(&b, "Payment Status: %s\n\n", strings.ToUpper(booking.PaymentStatus))
	fmt.Fprintf(&b, "Location: %s\n", location)
	b.WriteString("Date: 31st Dec | Time: 7:30 PM Onwards\n\n")
	b.WriteString("Please show this QR code at the entrance:\n")
	b.WriteString(t.TicketURL(booking, event))
	b.WriteString("\n\nSee you there!\nTeam golden eventz\n\n")
	fmt.Fprintf(&b, "Need help? Contact us or Visit: %s", t.whatsapp.SupportURL)
	return b.String()
}

// WhatsAppURL builds the wa.me chat-compose deep link with the prefilled
// message.
func (t *TicketComposer) WhatsAppURL(booking *models.Booking, event *models.Event) string {
	number := t.NormalizePhone(booking.ContactNumber)
	query := url.Values{"text": {t.Message(booking, event)}}
	return "https://wa.me/" + number + "?" + query.Encode()
}

// NormalizePhone strips a contact number to digits and prefixes the country
// code when missing. Numbers with no digits fall back to the configured
// support number.
func (t *TicketComposer) NormalizePhone(contact string) string {
	var digits strings.Builder
	for _, r := range contact {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	phone := digits.String()
	if phone == "" {
		phone = t.whatsapp.FallbackNumber
	}
	if !strings.HasPrefix(phone, t.whatsapp.CountryCode) {
		phone = t.whatsapp.CountryCode + phone
	}
	return phone
}

func eventTitle(booking *models.Booking, event *models.Event) string {
	if event != nil && event.Title != "" {
		return event.Title
	}
	return booking.ResolveEventTitle()
}
