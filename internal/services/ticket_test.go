package services

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"event-admin-portal/internal/config"
	"event-admin-portal/internal/models"
)

func testComposer() *TicketComposer {
	return NewTicketComposer(
		config.WhatsAppConfig{
			CountryCode:    "91",
			FallbackNumber: "9606729320",
			TicketBaseURL:  "https://thesrsevents.com/ticket",
			SupportURL:     "http://www.goldeneventz.co.in",
		},
		config.QRConfig{
			Endpoint: "https://api.qrserver.com/v1/create-qr-code/",
			Size:     "400x400",
		},
	)
}

func testBooking() *models.Booking {
	amount := 2500.0
	return &models.Booking{
		ID:                "b1",
		BookingID:         "1042",
		MemberName:        "Asha Rao",
		MemberIDInput:     "M-77",
		ContactNumber:     "98765 43210",
		QRCode:            "QR-PAYLOAD-1042",
		MemberTicketCount: 2,
		GuestTicketCount:  1,
		MemberVegCount:    2,
		GuestNonVegCount:  1,
		FinalAmount:       &amount,
		PaymentStatus:     "completed",
		UTRNumber:         "UTR900",
	}
}

func TestNormalizePhone(t *testing.T) {
	composer := testComposer()

	assert.Equal(t, "919876543210", composer.NormalizePhone("98765 43210"))
	assert.Equal(t, "919876543210", composer.NormalizePhone("+91-98765-43210"))
	assert.Equal(t, "919876543210", composer.NormalizePhone("919876543210"))
	assert.Equal(t, "919606729320", composer.NormalizePhone(""))
	assert.Equal(t, "919606729320", composer.NormalizePhone("call me"))
}

func TestQRImageURL(t *testing.T) {
	composer := testComposer()
	qrURL := composer.QRImageURL(testBooking())

	parsed, err := url.Parse(qrURL)
	require.NoError(t, err)
	assert.Equal(t, "api.qrserver.com", parsed.Host)
	assert.Equal(t, "400x400", parsed.Query().Get("size"))
	assert.Equal(t, "QR-PAYLOAD-1042", parsed.Query().Get("data"))
}

func TestQRFileName(t *testing.T) {
	assert.Equal(t, "SRS_Ticket_1042.png", testComposer().QRFileName(testBooking()))
}

func TestTicketURL(t *testing.T) {
	composer := testComposer()
	booking := testBooking()

	parsed, err := url.Parse(composer.TicketURL(booking, nil))
	require.NoError(t, err)
	query := parsed.Query()
	assert.Equal(t, "1042", query.Get("bid"))
	assert.Equal(t, "Asha Rao", query.Get("name"))
	assert.Equal(t, "2", query.Get("m"))
	assert.Equal(t, "1", query.Get("g"))
	assert.Equal(t, "0", query.Get("k"))
	assert.Equal(t, "2", query.Get("veg"))
	assert.Equal(t, "1", query.Get("nonveg"))
	assert.Equal(t, "2500", query.Get("amt"))
	assert.Equal(t, "COMPLETED", query.Get("status"))
	assert.Equal(t, "UTR900", query.Get("utr"))
}

func TestTicketURLPendingUTR(t *testing.T) {
	booking := testBooking()
	booking.UTRNumber = ""

	parsed, err := url.Parse(testComposer().TicketURL(booking, nil))
	require.NoError(t, err)
	assert.Equal(t, "Pending", parsed.Query().Get("utr"))
}

func TestMessageContents(t *testing.T) {
	composer := testComposer()
	event := &models.Event{Title: "NYE Bash", Location: "Palace Grounds"}
	message := composer.Message(testBooking(), event)

	assert.Contains(t, message, "Hello Asha Rao!")
	assert.Contains(t, message, "Booking ID: #1042")
	assert.Contains(t, message, "Event: NYE Bash")
	assert.Contains(t, message, "Tickets: M:2 G:1 K:0")
	assert.Contains(t, message, "Meals: Veg:2 | Non-Veg:1")
	assert.Contains(t, message, "Payment Status: COMPLETED")
	assert.Contains(t, message, "Location: Palace Grounds")
	assert.Contains(t, message, "Team golden eventz")
	assert.Contains(t, message, "http://www.goldeneventz.co.in")
}

func TestMessageFallsBackToVenue(t *testing.T) {
	message := testComposer().Message(testBooking(), nil)
	assert.Contains(t, message, "Location: Venue")
}

func TestWhatsAppURL(t *testing.T) {
	waURL := testComposer().WhatsAppURL(testBooking(), nil)

	assert.True(t, strings.HasPrefix(waURL, "https://wa.me/919876543210?"))
	parsed, err := url.Parse(waURL)
	require.NoError(t, err)
	assert.Contains(t, parsed.Query().Get("text"), "Booking Confirmed!")
}
