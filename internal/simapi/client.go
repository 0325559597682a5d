// Package simapi is a client for the Infinite Flight Live API v2.
//
// Every operation returns (nil, nil) when the API answered but the result
// envelope was empty, and (nil, err) on any transport or protocol failure.
// Callers treat both as "absent"; nothing here panics on bad vendor data.
package simapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/dhawton/log4g"
)

var log = log4g.Category("simapi")

// DefaultBaseURL is the public v2 endpoint.
const DefaultBaseURL = "https://api.infiniteflight.com/public/v2"

// requestTimeout bounds every single API call.
const requestTimeout = 15 * time.Second

// Client talks to the Live API with one pooled HTTP session. On transport
// failure the session is torn down; the next call builds a fresh one.
type Client struct {
	apiKey  string
	baseURL string

	mu      sync.Mutex
	session *http.Client
}

// New creates a client. The API key is mandatory; an empty baseURL selects
// the public endpoint.
func New(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{apiKey: apiKey, baseURL: baseURL}
}

// envelope is the common {"result": ...} wrapper of every v2 response.
type envelope struct {
	ErrorCode int             `json:"errorCode"`
	Result    json.RawMessage `json:"result"`
}

func (c *Client) getSession() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		c.session = &http.Client{Timeout: requestTimeout}
	}
	return c.session
}

// closeSession drops the current session so the next call recreates it.
// Only the session that actually failed is dropped; a concurrent caller
// that already replaced it is left alone.
func (c *Client) closeSession(failed *http.Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == failed && c.session != nil {
		c.session.CloseIdleConnections()
		c.session = nil
	}
}

// call performs one request and decodes the result envelope into out.
// A nil return with *out untouched means the envelope was empty.
func (c *Client) call(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if query == nil {
		query = url.Values{}
	}
	query.Set("apikey", c.apiKey)
	fullURL := c.baseURL + path + "?" + query.Encode()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	session := c.getSession()
	resp, err := session.Do(req)
	if err != nil {
		log.Error(fmt.Sprintf("%s %s: transport failure: %s", method, path, err.Error()))
		c.closeSession(session)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error(fmt.Sprintf("%s %s: read body: %s", method, path, err.Error()))
		c.closeSession(session)
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// HTTP-level errors keep the session alive.
		log.Error(fmt.Sprintf("%s %s: status %d: %s", method, path, resp.StatusCode, trimForLog(raw)))
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Error(fmt.Sprintf("%s %s: bad envelope: %s", method, path, err.Error()))
		return fmt.Errorf("%s %s: decode envelope: %w", method, path, err)
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		log.Error(fmt.Sprintf("%s %s: bad result: %s", method, path, err.Error()))
		return fmt.Errorf("%s %s: decode result: %w", method, path, err)
	}
	return nil
}

func trimForLog(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

// GetSessions lists the active multiplayer servers.
func (c *Client) GetSessions(ctx context.Context) ([]SessionInfo, error) {
	var out []SessionInfo
	if err := c.call(ctx, http.MethodGet, "/sessions", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetFlights lists all in-progress flights on a session.
func (c *Client) GetFlights(ctx context.Context, sessionID string) ([]FlightEntry, error) {
	var out []FlightEntry
	if err := c.call(ctx, http.MethodGet, "/flights/"+url.PathEscape(sessionID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetFlightRoute returns the trailing position reports of a flight,
// oldest first.
func (c *Client) GetFlightRoute(ctx context.Context, flightID string) ([]RoutePoint, error) {
	var out []RoutePoint
	if err := c.call(ctx, http.MethodGet, "/flight/"+url.PathEscape(flightID)+"/route", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetFlightPlan returns the filed flight plan of a flight.
func (c *Client) GetFlightPlan(ctx context.Context, flightID string) (*FlightPlan, error) {
	var out FlightPlan
	if err := c.call(ctx, http.MethodGet, "/flight/"+url.PathEscape(flightID)+"/flightplan", nil, nil, &out); err != nil {
		return nil, err
	}
	if out.FlightID == "" && len(out.Items) == 0 {
		return nil, nil
	}
	return &out, nil
}

// GetUserStats looks up user profiles by IFC forum usernames.
func (c *Client) GetUserStats(ctx context.Context, ifcNames []string) ([]UserStats, error) {
	body := map[string][]string{"discourseNames": ifcNames}
	var out []UserStats
	if err := c.call(ctx, http.MethodPost, "/user/stats", nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUserByIFCUsername resolves one IFC forum username to a user profile,
// or nil when the forum name is unknown to the simulator.
func (c *Client) GetUserByIFCUsername(ctx context.Context, name string) (*UserStats, error) {
	stats, err := c.GetUserStats(ctx, []string{name})
	if err != nil {
		return nil, err
	}
	if len(stats) == 0 {
		return nil, nil
	}
	return &stats[0], nil
}

// GetUserGrade returns the raw grade document for a user. The grade table
// is large and caller-specific, so it is returned undecoded.
func (c *Client) GetUserGrade(ctx context.Context, userID string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.call(ctx, http.MethodGet, "/user/grade/"+url.PathEscape(userID), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUserFlights returns a user's flights from the last hoursWindow hours,
// newest first.
func (c *Client) GetUserFlights(ctx context.Context, simUserID string, hoursWindow int) ([]UserFlight, error) {
	q := url.Values{}
	q.Set("hours", strconv.Itoa(hoursWindow))
	var page UserFlightsPage
	if err := c.call(ctx, http.MethodGet, "/users/"+url.PathEscape(simUserID)+"/flights", q, nil, &page); err != nil {
		return nil, err
	}
	return page.Data, nil
}

// GetAircraft returns the full aircraft catalog.
func (c *Client) GetAircraft(ctx context.Context) ([]AircraftInfo, error) {
	var out []AircraftInfo
	if err := c.call(ctx, http.MethodGet, "/aircraft", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAircraftLiveries returns all liveries of one aircraft.
func (c *Client) GetAircraftLiveries(ctx context.Context, aircraftID string) ([]LiveryInfo, error) {
	var out []LiveryInfo
	if err := c.call(ctx, http.MethodGet, "/aircraft/"+url.PathEscape(aircraftID)+"/liveries", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
