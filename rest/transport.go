package rest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/hashicorp/go-cleanhttp"
	"github.com/rs/zerolog"
)

// Transport performs single HTTP round trips relative to a base URL. It never
// classifies responses; executors do that.
type Transport struct {
	baseURL    string
	httpClient *http.Client
	settings   Settings
	logger     zerolog.Logger
}

// NewTransport creates a transport rooted at baseURL
func NewTransport(baseURL string, logger zerolog.Logger, opts ...Option) (*Transport, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return newTransport(baseURL, logger, o)
}

func newTransport(baseURL string, logger zerolog.Logger, o *clientOptions) (*Transport, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	httpClient := o.httpClient
	if httpClient == nil {
		transport := cleanhttp.DefaultPooledTransport()
		if o.settings.Proxy != nil {
			transport.Proxy = http.ProxyURL(o.settings.Proxy)
		}
		httpClient = &http.Client{
			Timeout:   o.settings.Timeout,
			Transport: transport,
		}
	}

	return &Transport{
		baseURL:    normalized,
		httpClient: httpClient,
		settings:   o.settings,
		logger:     logger,
	}, nil
}

// NormalizeBaseURL validates u and ensures it ends with exactly one slash
func NormalizeBaseURL(u string) (string, error) {
	u = strings.TrimSpace(u)
	if u == "" {
		return "", fmt.Errorf("%w: URL is required", ErrInvalidConfig)
	}
	parsed, err := url.Parse(u)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: invalid URL %q", ErrInvalidConfig, u)
	}
	return strings.TrimRight(u, "/") + "/", nil
}

// BaseURL returns the normalized base URL
func (t *Transport) BaseURL() string {
	return t.baseURL
}

// Settings returns the transport settings
func (t *Transport) Settings() Settings {
	return t.settings
}

// OnUpstream reports whether req targets the host of the base URL.
// Relative resources always do.
func (t *Transport) OnUpstream(req *Request) bool {
	target, err := url.Parse(req.Resource)
	if err != nil || !target.IsAbs() {
		return true
	}
	base, err := url.Parse(t.baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(target.Scheme, base.Scheme) && strings.EqualFold(target.Host, base.Host)
}

// Resolve builds the absolute URL for req. Absolute resources are used as-is.
func (t *Transport) Resolve(req *Request) (string, error) {
	target := req.Resource
	if parsed, err := url.Parse(target); err != nil || !parsed.IsAbs() {
		target = t.baseURL + strings.TrimLeft(req.Resource, "/")
	}
	if len(req.Params) == 0 {
		return target, nil
	}

	u, err := url.Parse(target)
	if err != nil {
		return "", contractViolation("invalid resource %q: %v", req.Resource, err)
	}
	q := u.Query()
	for name, values := range req.Params {
		for _, v := range values {
			q.Add(name, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Send performs one round trip signed by auth, which may be nil. Transport
// problems are reported through Response.Status; the returned error is
// reserved for local contract violations and cancellation.
func (t *Transport) Send(ctx context.Context, req *Request, auth Authenticator) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	target, err := t.Resolve(req)
	if err != nil {
		return nil, err
	}

	body, contentType, err := req.encode()
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method.HTTPMethod(), target, body)
	if err != nil {
		return nil, contractViolation("failed to create request: %v", err)
	}
	for name, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	if t.settings.UserAgent != "" {
		httpReq.Header.Set("User-Agent", t.settings.UserAgent)
	}

	if auth != nil {
		if err := auth.Authenticate(httpReq); err != nil {
			return nil, transportFailure("failed to authenticate request", err)
		}
	}

	traceID := t.traceRequest(req, target)

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Resource, ctxErr)
		}
		status := StatusError
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			status = StatusTimedOut
		}
		return &Response{Status: status, ErrorMessage: err.Error()}, nil
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Resource, ctxErr)
		}
		return &Response{
			StatusCode:   resp.StatusCode,
			Status:       StatusError,
			ErrorMessage: fmt.Sprintf("failed to read response body: %v", err),
		}, nil
	}

	t.traceResponse(traceID, req, resp.StatusCode, data)

	return &Response{
		StatusCode: resp.StatusCode,
		Content:    string(data),
		RawContent: data,
		Status:     StatusCompleted,
	}, nil
}

func (t *Transport) traceRequest(req *Request, target string) string {
	if !t.settings.EnableRequestTrace {
		return ""
	}
	id := uuid.NewString()
	event := t.logger.Info().
		Str("trace_id", id).
		Str("method", string(req.Method)).
		Str("url", target)
	if text, ok, _ := req.BodyText(); ok {
		event = event.Str("body", text)
	}
	event.Msg("Request")
	return id
}

func (t *Transport) traceResponse(id string, req *Request, status int, data []byte) {
	if !t.settings.EnableRequestTrace {
		return
	}
	t.logger.Info().
		Str("trace_id", id).
		Str("method", string(req.Method)).
		Str("resource", req.Resource).
		Int("status", status).
		Str("content", strings.TrimSpace(string(data))).
		Msg("Response")
}
