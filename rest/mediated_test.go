package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMediator records the last envelope and answers with reply
func fakeMediator(t *testing.T, reply func(env RequestEnvelope) any) (*httptest.Server, *atomic.Pointer[RequestEnvelope]) {
	t.Helper()
	last := &atomic.Pointer[RequestEnvelope]{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, ForwardingPath, r.URL.Path)

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var env RequestEnvelope
		require.NoError(t, json.Unmarshal(data, &env))
		last.Store(&env)

		switch v := reply(env).(type) {
		case string:
			w.Write([]byte(v))
		default:
			json.NewEncoder(w).Encode(v)
		}
	}))
	return server, last
}

func TestMediatedExecutor_Execute(t *testing.T) {
	server, last := fakeMediator(t, func(env RequestEnvelope) any {
		return ResponseEnvelope{RequestSuccessful: true, StatusCode: 200, JSONBody: `{"key":"TST"}`}
	})
	defer server.Close()

	executor := NewMediatedExecutor(newTestTransport(t, server.URL), zerolog.Nop())
	req := &Request{Method: MethodSearch, Resource: "rest/api/2/search"}
	req.AddParam("jql", "project = TST")

	got, err := executor.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"TST"}`, string(got))

	env := last.Load()
	require.NotNil(t, env)
	assert.Equal(t, http.MethodTrace, env.Method)
	assert.Equal(t, "rest/api/2/search", env.Resource)
	assert.Nil(t, env.Body)
	assert.Equal(t, []ParameterEnvelope{{Name: "jql", Value: "project = TST", Type: ParameterQuery}}, env.Parameters)
}

func TestMediatedExecutor_ClassifiesInnerStatus(t *testing.T) {
	tests := []struct {
		name     string
		reply    any
		wantKind Kind
	}{
		{
			name:     "inner 404",
			reply:    ResponseEnvelope{RequestSuccessful: true, StatusCode: 404, JSONBody: `{"errorMessages":["gone"]}`},
			wantKind: KindResourceNotFound,
		},
		{
			name:     "inner 401",
			reply:    ResponseEnvelope{RequestSuccessful: true, StatusCode: 401},
			wantKind: KindAuthenticationFailed,
		},
		{
			name:     "inner errorMessages",
			reply:    ResponseEnvelope{RequestSuccessful: true, StatusCode: 200, JSONBody: `{"errorMessages":["bad"]}`},
			wantKind: KindServerReportedError,
		},
		{
			name:     "inner html",
			reply:    ResponseEnvelope{RequestSuccessful: true, StatusCode: 200, JSONBody: `<html/>`},
			wantKind: KindMalformedResponse,
		},
		{
			name:     "not successful",
			reply:    ResponseEnvelope{RequestSuccessful: false, StatusCode: 200, JSONBody: `{}`},
			wantKind: KindTransportFailure,
		},
		{
			name:     "empty reply",
			reply:    "",
			wantKind: KindTransportFailure,
		},
		{
			name:     "unreadable reply",
			reply:    "not an envelope",
			wantKind: KindTransportFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, _ := fakeMediator(t, func(RequestEnvelope) any { return tt.reply })
			defer server.Close()

			executor := NewMediatedExecutor(newTestTransport(t, server.URL), zerolog.Nop())
			_, err := executor.Execute(context.Background(), &Request{Method: MethodGet, Resource: "x"})
			assert.Equal(t, tt.wantKind, KindOf(err))
		})
	}
}

func TestMediatedExecutor_Download(t *testing.T) {
	payload := []byte("binary\x00data")
	server, last := fakeMediator(t, func(env RequestEnvelope) any {
		return ResponseEnvelope{RequestSuccessful: true, StatusCode: 200, RawContent: payload}
	})
	defer server.Close()

	executor := NewMediatedExecutor(newTestTransport(t, server.URL), zerolog.Nop())
	got, err := executor.Download(context.Background(), "https://jira.example.com/secure/attachment/1/a.bin")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, http.MethodGet, last.Load().Method)
	assert.Equal(t, "https://jira.example.com/secure/attachment/1/a.bin", last.Load().Resource)
}

func TestMediatedExecutor_RejectsBeforeSending(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	executor := NewMediatedExecutor(newTestTransport(t, server.URL), zerolog.Nop())
	_, err := executor.Execute(context.Background(), &Request{Method: MethodGet, Resource: "x", Body: "{}"})
	assert.Equal(t, KindContractViolation, KindOf(err))
	assert.Zero(t, hits.Load())
}
