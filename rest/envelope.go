package rest

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// ForwardingPath is the single proxy path every mediated call is posted to
const ForwardingPath = "/"

// Parameter kinds carried in a RequestEnvelope
const (
	ParameterQuery  = "query"
	ParameterHeader = "header"
)

// RequestEnvelope describes one logical call tunneled through the proxy
type RequestEnvelope struct {
	Method     string              `json:"method"`
	Resource   string              `json:"resource"`
	Body       *string             `json:"body"`
	Files      []FileEnvelope      `json:"files,omitempty"`
	Parameters []ParameterEnvelope `json:"parameters,omitempty"`
}

// FileEnvelope is a serialized File. Data is base64 on the wire.
type FileEnvelope struct {
	Name        string `json:"name"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType,omitempty"`
	Data        []byte `json:"data"`
}

// ParameterEnvelope is a serialized query parameter or header
type ParameterEnvelope struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Type  string `json:"type"`
}

// ResponseEnvelope is the proxy's verdict on a tunneled call
type ResponseEnvelope struct {
	RequestSuccessful bool   `json:"requestSuccessful"`
	StatusCode        int    `json:"statusCode"`
	JSONBody          string `json:"jsonBody"`
	RawContent        []byte `json:"rawContent,omitempty"`
	ErrorMessage      string `json:"errorMessage,omitempty"`
}

// EncodeRequest serializes req into an envelope. The logical method travels
// inside the envelope; the outer call is always a POST.
func EncodeRequest(req *Request) (*RequestEnvelope, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	env := &RequestEnvelope{
		Method:   req.Method.HTTPMethod(),
		Resource: req.Resource,
	}

	text, ok, err := req.BodyText()
	if err != nil {
		return nil, err
	}
	if ok {
		env.Body = &text
	}

	for _, f := range req.Files {
		env.Files = append(env.Files, FileEnvelope{
			Name:        f.Name,
			FileName:    f.FileName,
			ContentType: f.ContentType,
			Data:        f.Data,
		})
	}
	for name, values := range req.Params {
		for _, v := range values {
			env.Parameters = append(env.Parameters, ParameterEnvelope{Name: name, Value: v, Type: ParameterQuery})
		}
	}
	for name, values := range req.Headers {
		for _, v := range values {
			env.Parameters = append(env.Parameters, ParameterEnvelope{Name: name, Value: v, Type: ParameterHeader})
		}
	}

	return env, nil
}

// DecodeRequest rebuilds a Request from envelope JSON on the proxy side
func DecodeRequest(data []byte) (*Request, error) {
	var env RequestEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, contractViolation("failed to parse request envelope: %v", err)
	}

	method, err := ParseMethod(env.Method)
	if err != nil {
		return nil, err
	}

	req := &Request{
		Method:   method,
		Resource: env.Resource,
	}
	if env.Body != nil {
		req.Body = *env.Body
	}
	for _, f := range env.Files {
		req.Files = append(req.Files, File{
			Name:        f.Name,
			FileName:    f.FileName,
			ContentType: f.ContentType,
			Data:        f.Data,
		})
	}
	for _, p := range env.Parameters {
		switch strings.ToLower(p.Type) {
		case ParameterHeader:
			if req.Headers == nil {
				req.Headers = http.Header{}
			}
			req.Headers.Add(p.Name, p.Value)
		default:
			if req.Params == nil {
				req.Params = url.Values{}
			}
			req.Params.Add(p.Name, p.Value)
		}
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// EncodeResponse wraps an upstream response for the reply to the client
func EncodeResponse(resp *Response) *ResponseEnvelope {
	return &ResponseEnvelope{
		RequestSuccessful: resp.Status == StatusCompleted && resp.ErrorMessage == "",
		StatusCode:        resp.StatusCode,
		JSONBody:          resp.Content,
		RawContent:        resp.RawContent,
		ErrorMessage:      resp.ErrorMessage,
	}
}

// DecodeResponse unwraps the proxy's reply to the outer POST. Anything short
// of a parsed envelope with requestSuccessful set is a TransportFailure.
func DecodeResponse(resp *Response) (*ResponseEnvelope, error) {
	if resp == nil {
		return nil, transportFailure("no response received from mediator", nil)
	}
	if resp.ErrorMessage != "" {
		return nil, transportFailure("error message: "+resp.ErrorMessage, nil)
	}
	if resp.Status != StatusCompleted {
		return nil, transportFailure("request could not complete: "+resp.Status.String(), nil)
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" || content == "null" {
		return nil, transportFailure("mediated request could not complete: empty reply", nil)
	}

	var env ResponseEnvelope
	if err := json.Unmarshal([]byte(content), &env); err != nil {
		return nil, transportFailure("mediated request could not complete: unreadable reply", err)
	}
	if !env.RequestSuccessful {
		reason := "mediated request could not complete"
		if env.ErrorMessage != "" {
			reason += ": " + env.ErrorMessage
		}
		return nil, transportFailure(reason, nil)
	}

	return &env, nil
}
