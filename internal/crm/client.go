// Package crm is the HTTP client for the CRM API. It translates HTTP outcomes
// into the domain errors of the lead and session packages.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/hay-kot/leadr/internal/core/lead"
	"github.com/hay-kot/leadr/internal/core/session"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// RequestError is a transport failure or an unexpected HTTP status.
// Status is 0 when no response was received.
type RequestError struct {
	Method  string
	Path    string
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Message returns the server-provided message carried by err, falling back to
// the error text.
func Message(err error) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	return err.Error()
}

// Options configures a Client.
type Options struct {
	BaseURL string
	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
	// RateLimit is the sustained requests per second. Zero disables limiting.
	RateLimit float64
	RateBurst int
	// HTTPClient overrides the default client. Timeout is ignored when set.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client talks to the CRM API. It holds no cache; the bearer token is read
// from the TokenSource when each request is built.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  session.TokenSource
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// New creates a Client for the API at opts.BaseURL.
func New(tokens session.TokenSource, opts Options) (*Client, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", opts.BaseURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    hc,
		tokens:  tokens,
		logger:  opts.Logger,
	}

	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return c, nil
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do performs one request. When auth is set the request carries the current
// bearer token and fails with session.ErrUnauthenticated if there is none.
func (c *Client) do(ctx context.Context, method, path string, auth bool, body, out any) error {
	var token string
	if auth {
		tok, ok := c.tokens.CurrentToken()
		if !ok {
			return session.ErrUnauthenticated
		}
		token = tok
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &RequestError{Method: method, Path: path, Err: err}
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &RequestError{Method: method, Path: path, Err: err}
	}

	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger := c.logger.With().
		Str("method", method).
		Str("path", path).
		Str("request_id", reqID).
		Logger()

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Debug().Err(err).Msg("request failed")
		return &RequestError{Method: method, Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &RequestError{Method: method, Path: path, Status: resp.StatusCode, Message: "read response body", Err: err}
	}

	logger.Debug().
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request complete")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(method, path, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &RequestError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: "invalid response body",
			Err:     err,
		}
	}
	return nil
}

// statusError maps a non-success status onto the domain error taxonomy. The
// RequestError stays in the chain so callers can read the server message.
func statusError(method, path string, status int, body []byte) error {
	reqErr := &RequestError{
		Method:  method,
		Path:    path,
		Status:  status,
		Message: serverMessage(status, body),
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", session.ErrUnauthenticated, reqErr)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", lead.ErrNotFound, reqErr)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %w", lead.ErrValidation, reqErr)
	default:
		return reqErr
	}
}

// serverMessage extracts {message} or {error} from a JSON body, falling back
// to the raw text and then the status text.
func serverMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}

	if text := strings.TrimSpace(string(body)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return http.StatusText(status)
}
