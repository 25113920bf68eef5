package rest

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
)

// MediatedExecutor tunnels every call through a forwarding proxy
type MediatedExecutor struct {
	transport *Transport
	logger    zerolog.Logger
}

// NewMediatedExecutor creates a mediated executor whose transport is rooted
// at the proxy base URL
func NewMediatedExecutor(transport *Transport, logger zerolog.Logger) *MediatedExecutor {
	return &MediatedExecutor{
		transport: transport,
		logger:    logger,
	}
}

// Execute implements Executor
func (e *MediatedExecutor) Execute(ctx context.Context, req *Request) (json.RawMessage, error) {
	env, err := e.forward(ctx, req)
	if err != nil {
		return nil, err
	}
	return Classify(&Response{
		StatusCode: env.StatusCode,
		Content:    env.JSONBody,
		Status:     StatusCompleted,
	})
}

// Download implements Executor
func (e *MediatedExecutor) Download(ctx context.Context, url string) ([]byte, error) {
	env, err := e.forward(ctx, &Request{Method: MethodGet, Resource: url})
	if err != nil {
		return nil, err
	}
	if _, err := CheckStatus(&Response{StatusCode: env.StatusCode, Content: env.JSONBody, Status: StatusCompleted}); err != nil {
		return nil, err
	}
	return env.RawContent, nil
}

func (e *MediatedExecutor) forward(ctx context.Context, req *Request) (*ResponseEnvelope, error) {
	env, err := EncodeRequest(req)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("method", env.Method).
		Str("resource", env.Resource).
		Msg("Forwarding request through mediator")

	resp, err := e.transport.Send(ctx, &Request{
		Method:   MethodPost,
		Resource: ForwardingPath,
		Body:     env,
	}, nil)
	if err != nil {
		return nil, err
	}

	return DecodeResponse(resp)
}
