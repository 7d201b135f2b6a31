// Package transport sends requests to the fintrack REST API.
//
// Send never retries. Failures come back as errors whose kind is matched
// with errors.Is (ErrUnavailable, ErrUnauthorized, ...); non-2xx responses
// are *HTTPError and are returned together with the response.
package transport

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

	"github.com/dmitrijs2005/fintrack/internal/client/credentials"
	"github.com/dmitrijs2005/fintrack/internal/client/tasks"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/google/uuid"
)

const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"

	// RequestIDHeader carries a per-request uuid for server-side correlation.
	RequestIDHeader = "X-Request-ID"

	maxErrorBody = 1 << 20
)

// Request describes one API call. URL is relative to the gateway's base URL.
// Data is JSON-encoded unless Headers sets a form Content-Type, in which case
// it must be url.Values or map[string]string.
type Request struct {
	Method  string
	URL     string
	Data    any
	Headers map[string]string
}

// Response is a normalised API response.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("%w: decode body: %v", ErrUnexpected, err)
	}
	return nil
}

// Gateway is what the session and profile layers need from the transport.
type Gateway interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// TokenReader yields the stored access credential; credentials.Store
// satisfies it.
type TokenReader interface {
	Get(ctx context.Context, kind credentials.Kind) (string, error)
}

// Client is the HTTP Gateway.
type Client struct {
	baseURL    string
	tokens     TokenReader
	httpClient *http.Client
	log        logging.Logger
}

type Option func(*Client)

// WithTimeout bounds every exchange. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a gateway for baseURL. tokens may be nil, in which case no
// Authorization header is ever sent.
func New(baseURL string, tokens TokenReader, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        logging.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send performs req. On a non-2xx status both the response and an
// *HTTPError are returned. Network failures wrap ErrUnavailable.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	contentType := headerValue(req.Headers, "Content-Type")
	if contentType == "" {
		contentType = ContentTypeJSON
	}

	body, err := encodeBody(req.Data, contentType)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+req.URL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", ContentTypeJSON)
	if body != nil {
		httpReq.Header.Set("Content-Type", contentType)
	}
	for k, v := range req.Headers {
		if strings.EqualFold(k, "Content-Type") {
			continue
		}
		httpReq.Header.Set(k, v)
	}

	requestID, ok := tasks.RequestID(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	httpReq.Header.Set(RequestIDHeader, requestID)

	if c.tokens != nil {
		token, err := c.tokens.Get(ctx, credentials.Access)
		if err != nil {
			c.log.Warn(ctx, "read access credential", "error", err)
		} else if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	log := c.log.With("method", method, "url", req.URL, "request_id", requestID)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		log.Debug(ctx, "request failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer httpResp.Body.Close() //nolint:errcheck // best-effort close

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		raw, readErr := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		resp := &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: raw}
		msg := errorMessage(raw)
		if readErr != nil {
			msg = fmt.Sprintf("failed to read body: %v", readErr)
		}
		log.Debug(ctx, "request rejected", "status", httpResp.StatusCode)
		return resp, &HTTPError{Status: httpResp.StatusCode, Message: msg}
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	log.Debug(ctx, "request done", "status", httpResp.StatusCode)
	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: raw}, nil
}

// IsOK reports whether a Send result is a success: no error and a 2xx status.
func IsOK(resp *Response, err error) bool {
	return err == nil && resp != nil && resp.Status >= 200 && resp.Status < 300
}

// Check folds a Send result into a single error: nil on success, the Send
// error otherwise, ErrUnexpected for the impossible "no error, no 2xx".
func Check(resp *Response, err error) error {
	if IsOK(resp, err) {
		return nil
	}
	if err != nil {
		return err
	}
	return ErrUnexpected
}

func encodeBody(data any, contentType string) (io.Reader, error) {
	if data == nil {
		return nil, nil
	}
	if strings.HasPrefix(contentType, ContentTypeForm) {
		var form url.Values
		switch v := data.(type) {
		case url.Values:
			form = v
		case map[string]string:
			form = make(url.Values, len(v))
			for key, value := range v {
				form.Set(key, value)
			}
		default:
			return nil, fmt.Errorf("form body must be url.Values or map[string]string, got %T", data)
		}
		return strings.NewReader(form.Encode()), nil
	}

	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}
	return bytes.NewReader(b), nil
}

// errorMessage pulls a human message out of {"detail": ...} or
// {"error": ...} bodies, falling back to the raw text.
func errorMessage(raw []byte) string {
	var apiErr struct {
		Detail any    `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(raw, &apiErr) == nil {
		if s, ok := apiErr.Detail.(string); ok && s != "" {
			return s
		}
		if apiErr.Error != "" {
			return apiErr.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

func headerValue(h map[string]string, name string) string {
	for k, v := range h {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// IsNetworkError reports whether err is a transport-level failure rather
// than a server answer.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrUnavailable) && StatusOf(err) == 0
}
