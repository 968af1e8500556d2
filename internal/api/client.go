// Package api provides the authenticated HTTP client for the MicroCrop
// backend. All outbound calls go through this package: it joins paths onto the
// configured base URL, attaches the bearer token, unwraps the JSON response
// envelope and surfaces every failure as a typed *APIError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// apiPrefix is prepended to every request path under the base URL.
const apiPrefix = "/api"

// =============================================================================
// Envelope
// =============================================================================

// Pagination is the paging block of a list response envelope.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination,omitempty"`
	Error      *envelopeError  `json:"error,omitempty"`
}

type envelopeError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// =============================================================================
// Client
// =============================================================================

// Client performs authenticated calls against the MicroCrop REST API.
// The zero value is not usable; construct with New.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     zerolog.Logger

	mu             sync.RWMutex
	accessToken    string
	onUnauthorized func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout on the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRateLimit throttles outbound requests to rps with the given burst.
// Useful for bulk operations (exports, imports) against shared environments.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithLogger sets the client logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the given base URL. The URL may be empty when the
// environment does not configure one; every request will then fail with a
// transport error rather than panic.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetAccessToken stores the bearer token attached to subsequent requests.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

// ClearAccessToken removes the stored token; subsequent requests carry no
// Authorization header.
func (c *Client) ClearAccessToken() {
	c.SetAccessToken("")
}

// AccessToken returns the currently stored token, empty when unset.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

// OnUnauthorized registers the callback fired when a request fails with 401 on
// a non-auth endpoint. Registering replaces any previous callback; there is at
// most one for the lifetime of the client.
func (c *Client) OnUnauthorized(fn func()) {
	c.mu.Lock()
	c.onUnauthorized = fn
	c.mu.Unlock()
}

func (c *Client) fireUnauthorized() {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// isAuthPath reports whether path belongs to the auth endpoints, which are
// exempt from the unauthorized callback: a 401 from login or refresh means bad
// credentials, not a revoked session.
func isAuthPath(path string) bool {
	return strings.HasPrefix(path, "/auth/")
}

// =============================================================================
// Request primitives
// =============================================================================

// Request performs a JSON API call and decodes the envelope's data field into
// out. body is JSON-encoded when non-nil; out may be nil when the caller does
// not need the response data. Every failure is returned as a *APIError:
// Status 0 for transport failures, the real HTTP status otherwise.
func (c *Client) Request(ctx context.Context, method, path string, body, out any) error {
	_, err := c.do(ctx, method, path, body, out, !isAuthPath(path))
	return err
}

// RequestPage is Request for paginated list endpoints: it additionally returns
// the envelope's pagination block, which may be nil when the backend omits it.
func (c *Client) RequestPage(ctx context.Context, method, path string, body, out any) (*Pagination, error) {
	return c.do(ctx, method, path, body, out, !isAuthPath(path))
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, notifyUnauthorized bool) (*Pagination, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := c.newRequest(ctx, method, path, bodyReader)
	if err != nil {
		return nil, err
	}
	if bodyReader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return c.decodeEnvelope(resp, path, out, notifyUnauthorized)
}

// Upload performs a multipart POST built from form, decoding the envelope's
// data field into out. The Content-Type carries the multipart boundary; the
// unauthorized callback fires unconditionally on 401 since no upload endpoint
// lives under /auth/.
func (c *Client) Upload(ctx context.Context, path string, form *Form, out any) error {
	payload, contentType, err := form.encode()
	if err != nil {
		return fmt.Errorf("encode multipart form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	_, err = c.decodeEnvelope(resp, path, out, true)
	return err
}

// Download performs a GET against a binary endpoint and returns the raw body.
// Error bodies of export endpoints are not assumed to be JSON: on a non-2xx
// status the returned *APIError carries a fixed message and the real status.
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxEnvelopeBytes))
		if resp.StatusCode == http.StatusUnauthorized {
			c.fireUnauthorized()
		}
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("download failed")
		return nil, newDownloadError(resp.StatusCode)
	}

	data, err := readAllStrict(resp.Body, maxDownloadBytes)
	if err != nil {
		return nil, fmt.Errorf("read download body: %w", err)
	}
	return data, nil
}

// =============================================================================
// Internals
// =============================================================================

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if token := c.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// send executes the request, mapping anything that prevents a response from
// arriving to the transport error.
func (c *Client) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, newTransportError()
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", req.URL.String()).Msg("transport failure")
		return nil, newTransportError()
	}
	return resp, nil
}

func (c *Client) decodeEnvelope(resp *http.Response, path string, out any, notifyUnauthorized bool) (*Pagination, error) {
	raw, err := readAllStrict(resp.Body, maxEnvelopeBytes)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Message: genericErrorMessage, Status: resp.StatusCode}
		var env envelope
		if jsonErr := json.Unmarshal(raw, &env); jsonErr == nil && env.Error != nil {
			if env.Error.Message != "" {
				apiErr.Message = env.Error.Message
			}
			apiErr.Code = env.Error.Code
		}
		if resp.StatusCode == http.StatusUnauthorized && notifyUnauthorized {
			c.fireUnauthorized()
		}
		c.logger.Debug().Int("status", resp.StatusCode).Str("path", path).Str("code", apiErr.Code).Msg("request failed")
		return nil, apiErr
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode response envelope: %w", err)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, fmt.Errorf("decode response data: %w", err)
		}
	}
	return env.Pagination, nil
}

// =============================================================================
// Multipart form
// =============================================================================

// Form assembles the multipart payload for Upload.
type Form struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	err    error
}

// NewForm returns an empty multipart form.
func NewForm() *Form {
	f := &Form{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

// AddField appends a plain text field.
func (f *Form) AddField(name, value string) *Form {
	if f.err == nil {
		f.err = f.writer.WriteField(name, value)
	}
	return f
}

// AddFile appends a file part read from r.
func (f *Form) AddFile(field, filename string, r io.Reader) *Form {
	if f.err != nil {
		return f
	}
	part, err := f.writer.CreateFormFile(field, filename)
	if err != nil {
		f.err = err
		return f
	}
	if _, err := io.Copy(part, r); err != nil {
		f.err = err
	}
	return f
}

func (f *Form) encode() ([]byte, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	if err := f.writer.Close(); err != nil {
		return nil, "", err
	}
	return f.buf.Bytes(), f.writer.FormDataContentType(), nil
}
