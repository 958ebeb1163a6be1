// Package pagerduty is a minimal client for the PagerDuty REST API,
// covering the two calls the console needs: list incidents and update
// a single incident's status.
package pagerduty

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/linnemanlabs/oncall/internal/incident"
)

// DefaultBaseURL is the public PagerDuty REST API endpoint.
const DefaultBaseURL = "https://api.pagerduty.com"

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 5 << 20 // 5 MB
)

// Client issues authenticated requests against the PagerDuty API. It
// is stateless: one call maps to one request, with no retries.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// New creates a PagerDuty client with the given credential. An empty
// baseURL selects the public API endpoint; a zero timeout selects the
// 10s default. The credential is checked per call so a misconfigured
// key fails fast without a network round trip.
func New(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type listResponse struct {
	Incidents []incident.Incident `json:"incidents"`
}

type updateRequest struct {
	Incident updateBody `json:"incident"`
}

type updateBody struct {
	Type   string          `json:"type"`
	Status incident.Status `json:"status"`
	Note   string          `json:"note,omitempty"`
}

type updateResponse struct {
	Incident incident.Incident `json:"incident"`
}

// ListIncidents fetches the incident list sorted newest-created-first.
// The server's order is trusted and returned as-is; only the first
// page the server returns is ever visible to callers.
func (c *Client) ListIncidents(ctx context.Context) ([]incident.Incident, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: empty api key", incident.ErrAuth)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid endpoint: %v", incident.ErrFetch, err)
	}
	u.Path = path.Join(u.Path, "incidents")

	q := u.Query()
	q.Set("sort_by", "created_at:desc")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", incident.ErrFetch, err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: baseURL is set at construction from config, not request input
	if err != nil {
		return nil, fmt.Errorf("%w: %v", incident.ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", incident.ErrFetch, err)
	}

	if err := classifyStatus(resp.StatusCode, body, incident.ErrFetch); err != nil {
		return nil, err
	}

	var out listResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", incident.ErrFetch, err)
	}
	return out.Incidents, nil
}

// UpdateIncident transitions one incident to the target status and
// returns the server's canonical updated record. The note travels only
// on resolve. Transition validity is the caller's concern; the server
// still rejects transitions it does not allow, and a 404 for an
// unknown id surfaces as ErrUpdate.
func (c *Client) UpdateIncident(ctx context.Context, id string, target incident.Status, note string) (incident.Incident, error) {
	var zero incident.Incident

	if c.apiKey == "" {
		return zero, fmt.Errorf("%w: empty api key", incident.ErrAuth)
	}
	if id == "" {
		return zero, fmt.Errorf("%w: empty incident id", incident.ErrUpdate)
	}

	payload := updateRequest{Incident: updateBody{Type: "incident", Status: target}}
	if target == incident.StatusResolved {
		payload.Incident.Note = note
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return zero, fmt.Errorf("%w: marshal request: %v", incident.ErrUpdate, err)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return zero, fmt.Errorf("%w: invalid endpoint: %v", incident.ErrUpdate, err)
	}
	u.Path = path.Join(u.Path, "incidents", id)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u.String(), bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("%w: create request: %v", incident.ErrUpdate, err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // G704: baseURL is set at construction from config, not request input
	if err != nil {
		return zero, fmt.Errorf("%w: %v", incident.ErrUpdate, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return zero, fmt.Errorf("%w: read response: %v", incident.ErrUpdate, err)
	}

	if err := classifyStatus(resp.StatusCode, respBody, incident.ErrUpdate); err != nil {
		return zero, err
	}

	var out updateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return zero, fmt.Errorf("%w: decode response: %v", incident.ErrUpdate, err)
	}
	return out.Incident, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Token token="+c.apiKey)
	req.Header.Set("Accept", "application/json")
}

// classifyStatus maps a non-2xx response to the error taxonomy. 401
// and 403 are credential failures and carry both the operation error
// and ErrAuth so callers can match either.
func classifyStatus(code int, body []byte, op error) error {
	if code >= 200 && code < 300 {
		return nil
	}
	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return fmt.Errorf("%w: %w: pagerduty returned %d: %s", op, incident.ErrAuth, code, body)
	}
	return fmt.Errorf("%w: pagerduty returned %d: %s", op, code, body)
}
