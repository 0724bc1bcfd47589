package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	authcore "github.com/cobaltadmin/authcore"
)

const defaultTimeout = 15 * time.Second

// Client issues authenticated API calls and classifies every failure.
// The session rides in on the request context (set by the route guard);
// calls without one go out unauthenticated.
type Client struct {
	base    string
	http    *http.Client
	backoff Backoff
	log     zerolog.Logger
}

// Validator lets a response type check its own shape after decoding.
// A non-nil return classifies the call as a validation failure; return a
// *APIError to control the code and field.
type Validator interface {
	Validate() error
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithBackoff replaces the network retry schedule.
func WithBackoff(b Backoff) Option {
	return func(c *Client) { c.backoff = b }
}

// WithLogger attaches a structured logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient builds a client for the API at base.
func NewClient(base string, opts ...Option) *Client {
	c := &Client{
		base:    base,
		http:    &http.Client{Timeout: defaultTimeout},
		backoff: DefaultBackoff(),
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do issues one API call. A nil return means success and out (when non-nil)
// holds the decoded response.
//
// Two recovery behaviors are folded in, each bounded:
//
//   - A 401 triggers one refresh exchange and one replay. A second 401,
//     or a failed refresh, comes back as KindAuthentication.
//   - Network-kind failures retry on the backoff schedule up to its
//     attempt budget. Nothing else retries.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) *APIError {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return newError(KindUnknown, "", "", 0, err)
		}
	}

	sc := authcore.SessionFrom(ctx)
	budget := c.backoff.Attempts
	if budget < 1 {
		budget = 1
	}

	refreshed := false
	attempt := 0
	for {
		apiErr := c.send(ctx, sc, method, path, payload, out)
		if apiErr == nil {
			return nil
		}

		if apiErr.Kind == KindAuthentication && sc != nil && !refreshed {
			refreshed = true
			// Forced: the backend's 401 outranks local expiry arithmetic.
			if _, err := sc.ForceRefresh(ctx); err == nil {
				c.log.Debug().Str("path", path).Msg("replaying call after refresh")
				// The replay does not consume the retry budget.
				continue
			}
			return apiErr
		}

		attempt++
		if !apiErr.Retryable() || attempt >= budget {
			return apiErr
		}
		c.log.Debug().Str("path", path).Int("attempt", attempt).Msg("retrying after network failure")
		if err := c.backoff.Wait(ctx, attempt); err != nil {
			return apiErr
		}
	}
}

func (c *Client) send(ctx context.Context, sc *authcore.SessionContext, method, path string, payload []byte, out any) *APIError {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return newError(KindUnknown, "", "", 0, err)
	}
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	if sc != nil {
		if tok, err := sc.AccessToken(ctx); err == nil && tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		if out == nil {
			return nil
		}
		// A success status with a body we cannot decode is a contract
		// violation, never silently coerced.
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return newError(KindValidation, "invalid_response", "", resp.StatusCode, err)
		}
		if v, ok := out.(Validator); ok {
			if err := v.Validate(); err != nil {
				var apiErr *APIError
				if errors.As(err, &apiErr) {
					return apiErr
				}
				return newError(KindValidation, "invalid_response", "", resp.StatusCode, err)
			}
		}
		return nil
	}

	// A malformed error body still classifies by status alone.
	var body wireError
	_ = json.NewDecoder(resp.Body).Decode(&body)
	return classifyStatus(resp.StatusCode, body, nil)
}

// Call is the typed convenience wrapper around [Client.Do].
func Call[T any](ctx context.Context, c *Client, method, path string, body any) (T, *APIError) {
	var out T
	if err := c.Do(ctx, method, path, body, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
