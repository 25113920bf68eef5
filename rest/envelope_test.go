package rest

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeRequest(t *testing.T) {
	t.Run("search travels as trace", func(t *testing.T) {
		env, err := EncodeRequest(&Request{Method: MethodSearch, Resource: "rest/api/2/search"})
		require.NoError(t, err)
		assert.Equal(t, http.MethodTrace, env.Method)
	})

	t.Run("absent body is null", func(t *testing.T) {
		env, err := EncodeRequest(&Request{Method: MethodGet, Resource: "rest/api/2/project"})
		require.NoError(t, err)

		data, err := json.Marshal(env)
		require.NoError(t, err)
		assert.JSONEq(t, `{"method":"GET","resource":"rest/api/2/project","body":null}`, string(data))
	})

	t.Run("string body passes through", func(t *testing.T) {
		env, err := EncodeRequest(&Request{Method: MethodPost, Resource: "x", Body: `{"raw":true}`})
		require.NoError(t, err)
		require.NotNil(t, env.Body)
		assert.Equal(t, `{"raw":true}`, *env.Body)
	})

	t.Run("struct body serialized", func(t *testing.T) {
		body := struct {
			Name string `json:"name"`
		}{Name: "1.0"}
		env, err := EncodeRequest(&Request{Method: MethodPost, Resource: "x", Body: body})
		require.NoError(t, err)
		require.NotNil(t, env.Body)
		assert.JSONEq(t, `{"name":"1.0"}`, *env.Body)
	})

	t.Run("parameters and headers", func(t *testing.T) {
		req := &Request{Method: MethodGet, Resource: "x"}
		req.AddParam("expand", "lead").AddHeader("X-Atlassian-Token", "no-check")

		env, err := EncodeRequest(req)
		require.NoError(t, err)
		assert.ElementsMatch(t, []ParameterEnvelope{
			{Name: "expand", Value: "lead", Type: ParameterQuery},
			{Name: "X-Atlassian-Token", Value: "no-check", Type: ParameterHeader},
		}, env.Parameters)
	})

	t.Run("get with body rejected", func(t *testing.T) {
		_, err := EncodeRequest(&Request{Method: MethodGet, Resource: "x", Body: "{}"})
		assert.Equal(t, KindContractViolation, KindOf(err))
	})
}

func TestRequestEnvelopeRoundTrip(t *testing.T) {
	req := &Request{
		Method:   MethodSearch,
		Resource: "rest/api/2/search",
		Files: []File{
			{Name: "file", FileName: "a.txt", ContentType: "text/plain", Data: []byte("hello")},
		},
	}
	req.AddParam("jql", "project = TST")

	env, err := EncodeRequest(req)
	require.NoError(t, err)
	data, err := json.Marshal(env)
	require.NoError(t, err)

	got, err := DecodeRequest(data)
	require.NoError(t, err)
	assert.Equal(t, MethodSearch, got.Method)
	assert.Equal(t, req.Resource, got.Resource)
	assert.Nil(t, got.Body)
	assert.Equal(t, req.Files, got.Files)
	assert.Equal(t, "project = TST", got.Params.Get("jql"))
}

func TestDecodeRequest_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: "nope"},
		{name: "unknown method", data: `{"method":"PATCHY","resource":"x","body":null}`},
		{name: "get with body", data: `{"method":"GET","resource":"x","body":"{}"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRequest([]byte(tt.data))
			assert.Equal(t, KindContractViolation, KindOf(err))
		})
	}
}

func TestDecodeResponse(t *testing.T) {
	completed := func(content string) *Response {
		return &Response{StatusCode: 200, Content: content, Status: StatusCompleted}
	}

	tests := []struct {
		name    string
		resp    *Response
		wantErr bool
		want    *ResponseEnvelope
	}{
		{
			name: "successful envelope",
			resp: completed(`{"requestSuccessful":true,"statusCode":404,"jsonBody":"{}"}`),
			want: &ResponseEnvelope{RequestSuccessful: true, StatusCode: 404, JSONBody: "{}"},
		},
		{
			name:    "request not successful",
			resp:    completed(`{"requestSuccessful":false,"statusCode":0,"jsonBody":"","errorMessage":"dns"}`),
			wantErr: true,
		},
		{
			name:    "empty reply",
			resp:    completed(""),
			wantErr: true,
		},
		{
			name:    "null reply",
			resp:    completed("null"),
			wantErr: true,
		},
		{
			name:    "garbage reply",
			resp:    completed("<html>"),
			wantErr: true,
		},
		{
			name:    "outer call failed",
			resp:    &Response{Status: StatusError, ErrorMessage: "refused"},
			wantErr: true,
		},
		{
			name:    "outer call timed out",
			resp:    &Response{Status: StatusTimedOut},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeResponse(tt.resp)
			if tt.wantErr {
				assert.Equal(t, KindTransportFailure, KindOf(err))
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeResponse(t *testing.T) {
	t.Run("completed", func(t *testing.T) {
		env := EncodeResponse(&Response{StatusCode: 201, Content: `{"id":"1"}`, RawContent: []byte(`{"id":"1"}`), Status: StatusCompleted})
		assert.True(t, env.RequestSuccessful)
		assert.Equal(t, 201, env.StatusCode)
		assert.Equal(t, `{"id":"1"}`, env.JSONBody)
	})

	t.Run("failed", func(t *testing.T) {
		env := EncodeResponse(&Response{Status: StatusError, ErrorMessage: "refused"})
		assert.False(t, env.RequestSuccessful)
		assert.Equal(t, "refused", env.ErrorMessage)
	})
}
