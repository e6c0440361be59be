package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parishkit/parishkit/core/logger"
	"github.com/parishkit/parishkit/core/token"
)

// DefaultTimeout bounds each request end to end.
const DefaultTimeout = 30 * time.Second

// Client issues requests against one backend base URL, attaching the current
// session's credential read from the token source on every call.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	source  token.Source
	log     *slog.Logger
}

type clientConfig struct {
	transport    http.RoundTripper
	interceptors []Interceptor
	timeout      time.Duration
	log          *slog.Logger
}

// ClientOption configures the client.
type ClientOption func(*clientConfig)

// WithTransport overrides the base transport wrapped by the interceptor chain.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *clientConfig) {
		if rt != nil {
			c.transport = rt
		}
	}
}

// WithInterceptors appends interceptors to the chain, ordered outermost first.
func WithInterceptors(interceptors ...Interceptor) ClientOption {
	return func(c *clientConfig) {
		c.interceptors = append(c.interceptors, interceptors...)
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the structured logger. Default discards output.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *clientConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a client for the backend at baseURL. The source provides the
// stored session token; it may be a session.Store.
func New(baseURL string, source token.Source, opts ...ClientOption) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Host == "" {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}

	cfg := &clientConfig{
		timeout: DefaultTimeout,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		baseURL: parsed,
		source:  source,
		log:     cfg.log,
		http: &http.Client{
			Transport: Chain(cfg.transport, cfg.interceptors...),
			Timeout:   cfg.timeout,
		},
	}, nil
}

type requestConfig struct {
	skipAuth bool
	headers  http.Header
	query    url.Values
}

// RequestOption configures a single request.
type RequestOption func(*requestConfig)

// WithoutAuth issues the request without credentials. This is the escape
// hatch for public endpoints such as login, not the default.
func WithoutAuth() RequestOption {
	return func(c *requestConfig) {
		c.skipAuth = true
	}
}

// WithHeader sets a header on the request, overriding the defaults.
func WithHeader(key, value string) RequestOption {
	return func(c *requestConfig) {
		if c.headers == nil {
			c.headers = http.Header{}
		}
		c.headers.Set(key, value)
	}
}

// WithQuery adds a query parameter to the request URL.
func WithQuery(key, value string) RequestOption {
	return func(c *requestConfig) {
		if c.query == nil {
			c.query = url.Values{}
		}
		c.query.Add(key, value)
	}
}

// Do issues a request against path relative to the base URL. A non-nil body
// is JSON-encoded. Unless WithoutAuth is set, the stored token is attached as
// a bearer credential; when no token is present the call fails fast with
// ErrUnauthenticated before any network I/O.
//
// The caller owns the response body and must close it.
func (c *Client) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*http.Response, error) {
	cfg := &requestConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	bearer := ""
	if !cfg.skipAuth {
		raw, err := c.source.Read(ctx)
		if err != nil || raw == "" {
			return nil, ErrUnauthenticated
		}
		// Normalize a stored "Bearer ..." value so the header never carries
		// a doubled scheme.
		bearer = token.Normalize(raw)
	}

	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("apiclient: failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(raw)
	}

	target := c.baseURL.JoinPath(path)
	if len(cfg.query) > 0 {
		q := target.Query()
		for key, values := range cfg.query {
			for _, value := range values {
				q.Add(key, value)
			}
		}
		target.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("apiclient: failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	for key, values := range cfg.headers {
		req.Header.Del(key)
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: request failed: %w", err)
	}

	c.log.DebugContext(ctx, "request completed",
		logger.Component("apiclient"),
		logger.Method(method),
		logger.Path(target.Path),
		logger.StatusCode(resp.StatusCode),
		logger.Elapsed(start),
	)
	return resp, nil
}

// DoJSON issues the request and decodes the response into out (which may be
// nil to discard the body). Status handling:
//
//	2xx   decode per content type into out
//	204   success with no content; out is left untouched
//	401   ErrSessionExpired
//	other *APIError with the status and a best-effort parsed body
//
// The backend labels some JSON payloads as plain text, so text-labeled bodies
// are tried as JSON first; when out is a *string (or *any) an undecodable
// body is returned as the raw text instead of an error.
func (c *Client) DoJSON(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	resp, err := c.Do(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrSessionExpired
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("apiclient: failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Body: parseErrorBody(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	return decodeBody(resp.Header.Get("Content-Type"), raw, out)
}

// decodeBody decides between JSON decoding and raw text based on the labeled
// content type, tolerating JSON payloads mislabeled as plain text.
func decodeBody(contentType string, raw []byte, out any) error {
	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}

	isJSON := mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")

	if err := json.Unmarshal(raw, out); err != nil {
		if isJSON {
			return errors.Join(ErrDecodeResponse, err)
		}
		// Not labeled JSON and not parseable as JSON: hand back the raw text.
		switch target := out.(type) {
		case *string:
			*target = string(raw)
			return nil
		case *any:
			*target = string(raw)
			return nil
		default:
			return errors.Join(ErrDecodeResponse, err)
		}
	}
	return nil
}

// parseErrorBody best-effort parses an error payload: JSON when possible,
// raw text otherwise.
func parseErrorBody(raw []byte) any {
	if len(raw) == 0 {
		return ""
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return string(raw)
	}
	return parsed
}
