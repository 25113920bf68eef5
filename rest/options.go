package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds a single transport call
const DefaultTimeout = 30 * time.Second

// JSONOptions controls how responses are decoded into typed values
type JSONOptions struct {
	DisallowUnknownFields bool
	UseNumber             bool
}

// Decode unmarshals data into v using these options
func (o JSONOptions) Decode(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if o.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if o.UseNumber {
		dec.UseNumber()
	}
	return dec.Decode(v)
}

// Settings is fixed at construction and shared read-only by all calls
type Settings struct {
	Proxy              *url.URL
	Timeout            time.Duration
	EnableRequestTrace bool
	JSON               JSONOptions
	UserAgent          string
}

// Option configures a Client or Transport.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	settings    Settings
	httpClient  *http.Client
	auth        Authenticator
	fallback    Authenticator
	mediatorURL string
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		settings: Settings{
			Timeout:   DefaultTimeout,
			UserAgent: "jiralink",
		},
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.settings.Timeout = timeout
		}
	}
}

// WithProxy routes outbound calls through an HTTP proxy.
func WithProxy(proxy *url.URL) Option {
	return func(o *clientOptions) {
		o.settings.Proxy = proxy
	}
}

// WithRequestTrace logs method, URL, request body and response text.
// Payloads are logged verbatim, so keep this off when they carry secrets.
func WithRequestTrace(enabled bool) Option {
	return func(o *clientOptions) {
		o.settings.EnableRequestTrace = enabled
	}
}

// WithJSONOptions sets the decoder options used for typed results.
func WithJSONOptions(opts JSONOptions) Option {
	return func(o *clientOptions) {
		o.settings.JSON = opts
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.settings.UserAgent = userAgent
	}
}

// WithHTTPClient replaces the underlying HTTP client. Proxy and timeout
// settings are not applied to a caller-supplied client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = client
	}
}

// WithAuthenticator sets the authenticator used for every direct call.
func WithAuthenticator(auth Authenticator) Option {
	return func(o *clientOptions) {
		o.auth = auth
	}
}

// WithBasicAuth is shorthand for WithAuthenticator(BasicAuth(username, password)).
func WithBasicAuth(username, password string) Option {
	return func(o *clientOptions) {
		if username != "" {
			o.auth = BasicAuth(username, password)
		}
	}
}

// WithFallbackAuthenticator enables one retry with auth after a 401.
func WithFallbackAuthenticator(auth Authenticator) Option {
	return func(o *clientOptions) {
		o.fallback = auth
	}
}

// WithMediator switches the client to mediated execution through the
// forwarding proxy at proxyURL.
func WithMediator(proxyURL string) Option {
	return func(o *clientOptions) {
		o.mediatorURL = proxyURL
	}
}
