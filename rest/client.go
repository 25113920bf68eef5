package rest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Client is the facade domain services use to talk to Jira
type Client struct {
	url      string
	settings Settings
	executor Executor
	logger   zerolog.Logger
}

// NewClient creates a client for the Jira server at baseURL. Calls go direct
// unless WithMediator is given.
func NewClient(baseURL string, logger zerolog.Logger, opts ...Option) (*Client, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	var executor Executor
	if o.mediatorURL != "" {
		transport, err := newTransport(o.mediatorURL, logger, o)
		if err != nil {
			return nil, fmt.Errorf("invalid mediator URL: %w", err)
		}
		executor = NewMediatedExecutor(transport, logger)
	} else {
		transport, err := newTransport(normalized, logger, o)
		if err != nil {
			return nil, err
		}
		executor = NewDirectExecutor(transport, o.auth, o.fallback, logger)
	}

	return &Client{
		url:      normalized,
		settings: o.settings,
		executor: executor,
		logger:   logger,
	}, nil
}

// NewClientWithExecutor creates a client around an existing execution strategy
func NewClientWithExecutor(baseURL string, executor Executor, settings Settings, logger zerolog.Logger) (*Client, error) {
	normalized, err := NormalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		url:      normalized,
		settings: settings,
		executor: executor,
		logger:   logger,
	}, nil
}

// URL returns the normalized base URL of the Jira server
func (c *Client) URL() string {
	return c.url
}

// Settings returns the client settings
func (c *Client) Settings() Settings {
	return c.settings
}

// ExecuteRequest validates and runs a request, returning its JSON payload
func (c *Client) ExecuteRequest(ctx context.Context, method Method, resource string, body any) (json.RawMessage, error) {
	req, err := NewRequest(method, resource, body)
	if err != nil {
		return nil, err
	}
	return c.executor.Execute(ctx, req)
}

// Execute runs a pre-built request
func (c *Client) Execute(ctx context.Context, req *Request) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.executor.Execute(ctx, req)
}

// DownloadData fetches url and returns the raw bytes
func (c *Client) DownloadData(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, contractViolation("download URL is required")
	}
	return c.executor.Download(ctx, url)
}

// Decode unmarshals data using the client's JSON options
func (c *Client) Decode(data []byte, v any) error {
	if err := c.settings.JSON.Decode(data, v); err != nil {
		return &Error{
			Kind:   KindMalformedResponse,
			Body:   string(data),
			Reason: fmt.Sprintf("failed to decode response into %T", v),
			Err:    err,
		}
	}
	return nil
}

// ExecuteRequestAs runs a request and decodes the payload into T
func ExecuteRequestAs[T any](ctx context.Context, c Requester, method Method, resource string, body any) (T, error) {
	var result T
	raw, err := c.ExecuteRequest(ctx, method, resource, body)
	if err != nil {
		return result, err
	}
	if err := c.Decode(raw, &result); err != nil {
		return result, err
	}
	return result, nil
}
