package rest

import (
	"context"
	"encoding/json"
)

// Executor is an execution strategy: it runs one logical call and returns
// the classified result.
type Executor interface {
	// Execute runs req and returns its JSON payload
	Execute(ctx context.Context, req *Request) (json.RawMessage, error)

	// Download fetches url and returns the raw bytes
	Download(ctx context.Context, url string) ([]byte, error)
}

// Requester is what domain services need from a client
type Requester interface {
	// ExecuteRequest builds, validates and runs a request
	ExecuteRequest(ctx context.Context, method Method, resource string, body any) (json.RawMessage, error)

	// Execute runs a pre-built request
	Execute(ctx context.Context, req *Request) (json.RawMessage, error)

	// DownloadData fetches url and returns the raw bytes
	DownloadData(ctx context.Context, url string) ([]byte, error)

	// Decode unmarshals a payload using the client's JSON options
	Decode(data []byte, v any) error
}

var (
	_ Executor  = (*DirectExecutor)(nil)
	_ Executor  = (*MediatedExecutor)(nil)
	_ Requester = (*Client)(nil)
)
