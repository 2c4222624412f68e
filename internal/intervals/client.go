package intervals

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const BaseURL = "https://intervals.icu/api/v1"

// CurrentAthlete addresses the athlete owning the credentials
const CurrentAthlete = "0"

// ErrNotFound is returned for 404 responses
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response from intervals.icu
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// Unwrap maps 404 to ErrNotFound
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// RequestObserver is notified after every API round trip
type RequestObserver func(op string, status int, elapsed time.Duration)

// Client is an intervals.icu API client
type Client struct {
	httpClient  *http.Client
	rateLimiter *RateLimiter
	baseURL     string
	athleteID   string
	observe     RequestObserver
	now         func() time.Time
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at a different API root
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithRateLimiter replaces the default limiter
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) { c.rateLimiter = r }
}

// WithObserver registers a callback for request metrics
func WithObserver(o RequestObserver) Option {
	return func(c *Client) { c.observe = o }
}

// WithClock overrides time.Now for date-window queries
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client authenticating with an OAuth2 token source
func NewClient(athleteID string, tokenSource oauth2.TokenSource, opts ...Option) *Client {
	return newClient(athleteID, oauth2.NewClient(context.Background(), tokenSource), opts)
}

// NewAPIKeyClient creates a client authenticating with a personal API key.
// intervals.icu expects HTTP basic auth with the literal user "API_KEY".
func NewAPIKeyClient(athleteID, apiKey string, opts ...Option) *Client {
	httpClient := &http.Client{
		Transport: &apiKeyTransport{apiKey: apiKey, base: http.DefaultTransport},
		Timeout:   30 * time.Second,
	}
	return newClient(athleteID, httpClient, opts)
}

func newClient(athleteID string, httpClient *http.Client, opts []Option) *Client {
	if athleteID == "" {
		athleteID = CurrentAthlete
	}
	c := &Client{
		httpClient:  httpClient,
		rateLimiter: DefaultRateLimiter(),
		baseURL:     BaseURL,
		athleteID:   athleteID,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiKeyTransport struct {
	apiKey string
	base   http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.SetBasicAuth("API_KEY", t.apiKey)
	return t.base.RoundTrip(r)
}

// AthleteID returns the athlete the client is bound to
func (c *Client) AthleteID() string {
	return c.athleteID
}

// GetAthlete fetches the athlete record including sport settings
func (c *Client) GetAthlete(ctx context.Context) (*Athlete, error) {
	var athlete Athlete
	if err := c.getJSON(ctx, "athlete", c.athletePath(""), nil, &athlete); err != nil {
		return nil, fmt.Errorf("fetching athlete: %w", err)
	}
	return &athlete, nil
}

// GetRecentActivities fetches activities from the last daysBehind days
func (c *Client) GetRecentActivities(ctx context.Context, daysBehind int) ([]Activity, error) {
	newest := c.today()
	oldest := newest.AddDate(0, 0, -daysBehind)

	params := url.Values{}
	params.Set("oldest", oldest.Format(DateLayout))
	params.Set("newest", newest.Format(DateLayout))

	var activities []Activity
	if err := c.getJSON(ctx, "activities", c.athletePath("/activities"), params, &activities); err != nil {
		return nil, fmt.Errorf("fetching activities: %w", err)
	}

	log.Printf("intervals: retrieved %d activities", len(activities))
	return activities, nil
}

// GetWellness fetches wellness data for a single day
func (c *Client) GetWellness(ctx context.Context, date time.Time) (*Wellness, error) {
	var w Wellness
	path := c.athletePath("/wellness/" + date.Format(DateLayout))
	if err := c.getJSON(ctx, "wellness", path, nil, &w); err != nil {
		return nil, fmt.Errorf("fetching wellness for %s: %w", date.Format(DateLayout), err)
	}
	return &w, nil
}

// GetFutureEvents fetches calendar events from today to daysAhead days out
func (c *Client) GetFutureEvents(ctx context.Context, daysAhead int) ([]Event, error) {
	oldest := c.today()
	newest := oldest.AddDate(0, 0, daysAhead)

	params := url.Values{}
	params.Set("oldest", oldest.Format(DateLayout))
	params.Set("newest", newest.Format(DateLayout))

	var events []Event
	if err := c.getJSON(ctx, "events", c.athletePath("/events"), params, &events); err != nil {
		return nil, fmt.Errorf("fetching events: %w", err)
	}

	log.Printf("intervals: retrieved %d future events", len(events))
	return events, nil
}

// AddWorkoutEvent creates a WORKOUT calendar event. Notes, when present, are
// placed above the builder text separated by a blank line.
func (c *Client) AddWorkoutEvent(ctx context.Context, pw PlannedWorkout, text string) (*Event, error) {
	log.Printf("intervals: adding workout event %q on %s", pw.Name, pw.Date.Format(DateLayout))

	req := NewWorkoutEventRequest(pw, text)

	var created Event
	if err := c.postJSON(ctx, "add_event", c.athletePath("/events"), req, &created); err != nil {
		return nil, fmt.Errorf("adding workout event: %w", err)
	}

	log.Printf("intervals: added workout event %q with id %d", pw.Name, created.ID)
	return &created, nil
}

// NewWorkoutEventRequest builds the calendar payload for a planned workout
func NewWorkoutEventRequest(pw PlannedWorkout, text string) EventRequest {
	description := text
	if strings.TrimSpace(pw.Notes) != "" {
		description = pw.Notes + "\n\n" + text
	}
	return EventRequest{
		Category:       CategoryWorkout,
		StartDateLocal: pw.Date.Format(DateLayout) + "T00:00:00",
		Name:           pw.Name,
		Description:    description,
		Type:           string(pw.Sport),
	}
}

// RateLimitStatus returns the remaining request budget
func (c *Client) RateLimitStatus() (remaining int, resetsAt time.Time) {
	return c.rateLimiter.Status()
}

// Throttled returns how many requests intervals.icu has rejected with 429
func (c *Client) Throttled() int {
	return c.rateLimiter.Throttled()
}

func (c *Client) athletePath(suffix string) string {
	return "/athlete/" + url.PathEscape(c.athleteID) + suffix
}

func (c *Client) today() time.Time {
	now := c.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (c *Client) getJSON(ctx context.Context, op, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return c.do(ctx, op, http.MethodGet, reqURL, nil, out)
}

func (c *Client) postJSON(ctx context.Context, op, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}
	return c.do(ctx, op, http.MethodPost, c.baseURL+path, payload, out)
}

// do performs the request, retrying once after a 429
func (c *Client) do(ctx context.Context, op, method, reqURL string, payload []byte, out any) error {
	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return err
		}

		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.record(op, 0, time.Since(start))
			return err
		}
		c.record(op, resp.StatusCode, time.Since(start))

		if resp.StatusCode == http.StatusTooManyRequests && attempt == 0 {
			wait := c.rateLimiter.Backoff(resp.Header)
			resp.Body.Close()
			log.Printf("intervals: %s throttled, retrying in %s", op, wait)
			continue
		}

		err = decodeResponse(resp, out)
		resp.Body.Close()
		return err
	}
}

func decodeResponse(resp *http.Response, out any) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func (c *Client) record(op string, status int, elapsed time.Duration) {
	if c.observe != nil {
		c.observe(op, status, elapsed)
	}
}
