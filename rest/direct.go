package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// DirectExecutor sends requests straight to the target host
type DirectExecutor struct {
	transport *Transport
	auth      Authenticator
	fallback  Authenticator
	logger    zerolog.Logger
}

// NewDirectExecutor creates a direct executor. fallback may be nil.
func NewDirectExecutor(transport *Transport, auth, fallback Authenticator, logger zerolog.Logger) *DirectExecutor {
	return &DirectExecutor{
		transport: transport,
		auth:      auth,
		fallback:  fallback,
		logger:    logger,
	}
}

// Execute implements Executor
func (e *DirectExecutor) Execute(ctx context.Context, req *Request) (json.RawMessage, error) {
	resp, err := e.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return Classify(resp)
}

// Download implements Executor
func (e *DirectExecutor) Download(ctx context.Context, url string) ([]byte, error) {
	resp, err := e.Send(ctx, &Request{Method: MethodGet, Resource: url})
	if err != nil {
		return nil, err
	}
	if _, err := CheckStatus(resp); err != nil {
		return nil, err
	}
	return resp.RawContent, nil
}

// Send performs the call without classifying the response and, when a fallback is configured, exactly one
// retry after a completed 401. The fallback is passed per call so
// concurrent requests never see it. Absolute resources on another host
// are sent without credentials.
func (e *DirectExecutor) Send(ctx context.Context, req *Request) (*Response, error) {
	if !e.transport.OnUpstream(req) {
		e.logger.Debug().
			Str("resource", req.Resource).
			Msg("Sending request to foreign host without credentials")
		return e.transport.Send(ctx, req, nil)
	}

	resp, err := e.transport.Send(ctx, req, e.auth)
	if err != nil {
		return nil, err
	}

	if e.fallback == nil || resp.Status != StatusCompleted || resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	e.logger.Debug().
		Str("method", string(req.Method)).
		Str("resource", req.Resource).
		Msg("Retrying request with fallback authenticator")

	return e.transport.Send(ctx, req, e.fallback)
}
