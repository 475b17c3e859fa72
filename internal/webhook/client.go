// Package webhook talks to the automation backend that stores schedules,
// events, teacher requests and user accounts.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/irfit-gateway/internal/logging"
	"github.com/example/irfit-gateway/internal/record"
)

const maxErrorBody = 512

// Client is a JSON client for the webhook backend.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the underlying HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			clone := *c.http
			clone.Timeout = timeout
			c.http = &clone
		}
	}
}

// WithLogger sets the fallback logger used when the context carries none.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithAPIKey sends key in the X-Api-Key header of every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// NewClient builds a client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Identity is the account returned by a successful login.
type Identity struct {
	ID    record.ID `json:"id"`
	Role  string    `json:"role"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// ListSchedules returns every schedule stored by the backend.
func (c *Client) ListSchedules(ctx context.Context) ([]record.Schedule, error) {
	return list[record.Schedule](ctx, c, "schedules")
}

// CreateSchedule stores a new schedule and returns the backend's copy.
func (c *Client) CreateSchedule(ctx context.Context, schedule record.Schedule) (record.Schedule, error) {
	return create(ctx, c, "schedules", schedule)
}

// UpdateSchedule replaces the schedule identified by schedule.ID.
func (c *Client) UpdateSchedule(ctx context.Context, schedule record.Schedule) (record.Schedule, error) {
	return update(ctx, c, "schedules", schedule.ID, schedule)
}

// DeleteSchedule removes a schedule.
func (c *Client) DeleteSchedule(ctx context.Context, id record.ID) error {
	return c.remove(ctx, "schedules", id)
}

// ListEvents returns every event stored by the backend.
func (c *Client) ListEvents(ctx context.Context) ([]record.Event, error) {
	return list[record.Event](ctx, c, "events")
}

// CreateEvent stores a new event.
func (c *Client) CreateEvent(ctx context.Context, event record.Event) (record.Event, error) {
	return create(ctx, c, "events", event)
}

// UpdateEvent replaces the event identified by event.ID.
func (c *Client) UpdateEvent(ctx context.Context, event record.Event) (record.Event, error) {
	return update(ctx, c, "events", event.ID, event)
}

// DeleteEvent removes an event.
func (c *Client) DeleteEvent(ctx context.Context, id record.ID) error {
	return c.remove(ctx, "events", id)
}

// ListTeacherRequests returns every teacher application.
func (c *Client) ListTeacherRequests(ctx context.Context) ([]record.TeacherRequest, error) {
	return list[record.TeacherRequest](ctx, c, "teacher-requests")
}

// CreateTeacherRequest stores a new teacher application.
func (c *Client) CreateTeacherRequest(ctx context.Context, req record.TeacherRequest) (record.TeacherRequest, error) {
	return create(ctx, c, "teacher-requests", req)
}

// UpdateTeacherRequest replaces the application identified by req.ID.
func (c *Client) UpdateTeacherRequest(ctx context.Context, req record.TeacherRequest) (record.TeacherRequest, error) {
	return update(ctx, c, "teacher-requests", req.ID, req)
}

// DeleteTeacherRequest removes a teacher application.
func (c *Client) DeleteTeacherRequest(ctx context.Context, id record.ID) error {
	return c.remove(ctx, "teacher-requests", id)
}

// Login checks credentials against the backend. Rejected credentials yield
// ErrUnauthorized.
func (c *Client) Login(ctx context.Context, email, password string) (Identity, error) {
	payload := map[string]string{"email": email, "password": password}
	body, err := c.do(ctx, http.MethodPost, "auth/login", payload)
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			return Identity{}, ErrUnauthorized
		}
		return Identity{}, err
	}
	return decodeIdentity(body)
}

func decodeIdentity(body []byte) (Identity, error) {
	var wrapped struct {
		User *Identity `json:"user"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.User != nil {
		if wrapped.User.ID.IsZero() {
			return Identity{}, ErrUnexpectedShape
		}
		return *wrapped.User, nil
	}

	identity, err := decodeOne[Identity](body)
	if err != nil {
		return Identity{}, err
	}
	if identity.ID.IsZero() {
		return Identity{}, ErrUnexpectedShape
	}
	return identity, nil
}

func list[T any](ctx context.Context, c *Client, resource string) ([]T, error) {
	body, err := c.do(ctx, http.MethodGet, resource, nil)
	if err != nil {
		return nil, err
	}
	logger := c.loggerFor(ctx)
	items, err := decodeList[T](body, func(index int, err error) {
		logger.WarnContext(ctx, "webhook: skipping malformed record", slog.String("resource", resource), slog.Int("index", index), slog.Any("error", err))
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", resource, err)
	}
	return items, nil
}

func create[T any](ctx context.Context, c *Client, resource string, payload T) (T, error) {
	body, err := c.do(ctx, http.MethodPost, resource, payload)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeEcho(body, payload, resource)
}

func update[T any](ctx context.Context, c *Client, resource string, id record.ID, payload T) (T, error) {
	if id.IsZero() {
		var zero T
		return zero, fmt.Errorf("update %s: %w", resource, ErrNotFound)
	}
	body, err := c.do(ctx, http.MethodPut, resource+"/"+url.PathEscape(id.String()), payload)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeEcho(body, payload, resource)
}

// decodeEcho returns the record from the response body, or the sent payload
// when the backend acknowledges with an empty body.
func decodeEcho[T any](body []byte, sent T, resource string) (T, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return sent, nil
	}
	out, err := decodeOne[T](body)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("decode %s: %w", resource, err)
	}
	return out, nil
}

func (c *Client) remove(ctx context.Context, resource string, id record.ID) error {
	if id.IsZero() {
		return fmt.Errorf("delete %s: %w", resource, ErrNotFound)
	}
	_, err := c.do(ctx, http.MethodDelete, resource+"/"+url.PathEscape(id.String()), nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	logger := c.loggerFor(ctx).With(
		slog.String("method", method),
		slog.String("backend", redactURL(c.baseURL)),
		slog.String("resource", path),
	)

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	start := time.Now()
	logger.DebugContext(ctx, "webhook request start")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.WarnContext(ctx, "webhook request failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	logger.InfoContext(ctx, "webhook request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := strings.TrimSpace(string(body))
		if len(text) > maxErrorBody {
			text = text[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: text}
	}
	return body, nil
}

func (c *Client) loggerFor(ctx context.Context) *slog.Logger {
	if logger := logging.FromContext(ctx); logger != nil {
		return logger
	}
	return c.logger
}

// redactURL keeps the scheme and host and drops the path and query, which
// may carry webhook secrets.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
