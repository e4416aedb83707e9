package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"event-admin-portal/internal/models"
)

// ErrUnauthorized is returned when the backend rejects the bearer token.
// Callers must treat it as a session-ending condition.
var ErrUnauthorized = errors.New("upstream rejected credentials")

// StatusError is a non-2xx backend response other than 401.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Body)
}

// Client wraps the ticketing platform's REST backend. Every call takes the
// bearer token explicitly; the client holds no ambient credentials.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.SugaredLogger
}

// NewClient creates a backend client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *Client) do(ctx context.Context, token, method, path string, query url.Values) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", path, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 512)}
	}

	return body, nil
}

func (c *Client) getJSON(ctx context.Context, token, path string, query url.Values, out any) error {
	body, err := c.do(ctx, token, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) getCollection(ctx context.Context, token, path string, query url.Values, out any) error {
	body, err := c.do(ctx, token, http.MethodGet, path, query)
	if err != nil {
		return err
	}
	var envelope collectionEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		c.logger.Debugw("unrecognized collection shape, coercing to empty", "path", path, "error", err)
		return nil
	}
	if envelope.items == nil {
		c.logger.Debugw("collection response carried no array", "path", path)
		return nil
	}
	if err := envelope.decodeInto(out); err != nil {
		return fmt.Errorf("failed to decode collection from %s: %w", path, err)
	}
	return nil
}

// DashboardStats fetches the aggregate dashboard payload.
func (c *Client) DashboardStats(ctx context.Context, token string) (*models.DashboardStats, error) {
	var envelope struct {
		Data *models.DashboardStats `json:"data"`
	}
	if err := c.getJSON(ctx, token, "/api/admin/dashboard", nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("dashboard stats response carried no data")
	}
	return envelope.Data, nil
}

// RevenueChart fetches time-bucketed revenue for a period (7d, 30d, 12m).
func (c *Client) RevenueChart(ctx context.Context, token, period string) ([]models.RevenuePoint, error) {
	query := url.Values{"period": {period}}
	var points []models.RevenuePoint
	if err := c.getCollection(ctx, token, "/api/admin/revenue-chart", query, &points); err != nil {
		return nil, err
	}
	return points, nil
}

// Bookings fetches all bookings through the shape-tolerant boundary.
func (c *Client) Bookings(ctx context.Context, token string) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := c.getCollection(ctx, token, "/api/bookings", nil, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// Users fetches one page of users through the shape-tolerant boundary.
func (c *Client) Users(ctx context.Context, token string, page, limit int) ([]models.User, error) {
	query := url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
	var users []models.User
	if err := c.getCollection(ctx, token, "/api/admin/users", query, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Events fetches the event list.
func (c *Client) Events(ctx context.Context, token string) ([]models.Event, error) {
	var events []models.Event
	if err := c.getCollection(ctx, token, "/api/events", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// OfflineBookingsPage is one page of the offline-bookings listing.
type OfflineBookingsPage struct {
	Bookings   []models.Booking
	Pagination models.Pagination
}

// OfflineBookings fetches one filtered page of offline bookings.
func (c *Client) OfflineBookings(ctx context.Context, token string, filter models.OfflineFilter, page int) (*OfflineBookingsPage, error) {
	var envelope struct {
		Data       []models.Booking   `json:"data"`
		Pagination *models.Pagination `json:"pagination"`
	}
	if err := c.getJSON(ctx, token, "/api/admin/offline-bookings", filter.QueryValues(page), &envelope); err != nil {
		return nil, err
	}

	result := &OfflineBookingsPage{Bookings: envelope.Data}
	if envelope.Pagination != nil {
		result.Pagination = *envelope.Pagination
	}
	result.Pagination.Normalize()
	return result, nil
}

// DeleteOfflineBooking deletes one offline booking. Irrecoverable once the
// backend accepts it.
func (c *Client) DeleteOfflineBooking(ctx context.Context, token, id string) error {
	_, err := c.do(ctx, token, http.MethodDelete, "/api/admin/offline-bookings/"+url.PathEscape(id), nil)
	return err
}

// FetchImage downloads an arbitrary image URL, used to proxy QR ticket
// images to the browser as attachments.
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create image request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("image request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &StatusError{StatusCode: resp.StatusCode, Body: "image fetch failed"}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image body: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return body, contentType, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
