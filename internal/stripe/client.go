package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultBaseURL = "https://api.stripe.com"

// APIError is returned when Stripe answers with a non-success status.
// Message carries the provider's structured error message when one could
// be parsed, the raw response body otherwise, or a generic description
// when the body was empty.
type APIError struct {
	StatusCode int
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return e.Message
}

// errorEnvelope is Stripe's error response shape.
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client performs authenticated read-only calls against the Stripe API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a Stripe client. An empty baseURL selects the production
// API host; tests point it at a local server.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Get performs a single GET against the Stripe API with a bearer
// credential. No retries: a failed call surfaces immediately. A success
// response whose body is not valid JSON yields a nil payload without an
// error, so callers can tell "no body" apart from "call failed".
func (c *Client) Get(ctx context.Context, path, secretKey string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}

	if !json.Valid(body) {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		return apiErr
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		apiErr.Message = trimmed
		return apiErr
	}
	apiErr.Message = fmt.Sprintf("stripe API request failed (status %d)", statusCode)
	return apiErr
}

// GetCheckoutSession retrieves a checkout session by its identifier.
func (c *Client) GetCheckoutSession(ctx context.Context, sessionID, secretKey string) (*CheckoutSession, error) {
	payload, err := c.Get(ctx, "/v1/checkout/sessions/"+url.PathEscape(sessionID), secretKey)
	if err != nil {
		return nil, err
	}

	var session CheckoutSession
	if payload == nil {
		return &session, nil
	}
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("error unmarshaling checkout session: %w", err)
	}
	return &session, nil
}

// ListLineItems retrieves the line items of a checkout session, with the
// purchased product expanded inline so no per-item round trip is needed.
// The page size of 20 is far above any real cart here.
func (c *Client) ListLineItems(ctx context.Context, sessionID, secretKey string) (*LineItemList, error) {
	path := fmt.Sprintf(
		"/v1/checkout/sessions/%s/line_items?limit=20&expand[]=data.price.product",
		url.PathEscape(sessionID),
	)
	payload, err := c.Get(ctx, path, secretKey)
	if err != nil {
		return nil, err
	}

	var items LineItemList
	if payload == nil {
		return &items, nil
	}
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("error unmarshaling line items: %w", err)
	}
	return &items, nil
}
