package rest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"reflect"
	"strings"
)

// Method is the logical verb of a request
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodDelete  Method = http.MethodDelete
	MethodHead    Method = http.MethodHead
	MethodOptions Method = http.MethodOptions
	// MethodSearch is Jira's vendor verb. It travels as TRACE on the wire.
	MethodSearch Method = "SEARCH"
)

// HTTPMethod returns the verb used on the wire
func (m Method) HTTPMethod() string {
	if m == MethodSearch {
		return http.MethodTrace
	}
	return string(m)
}

// Valid reports whether m is one of the supported verbs
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodHead, MethodOptions, MethodSearch:
		return true
	}
	return false
}

// ParseMethod maps a wire verb back to a Method. TRACE maps to MethodSearch.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	if m == http.MethodTrace {
		return MethodSearch, nil
	}
	if !m.Valid() {
		return "", contractViolation("unsupported method %q", s)
	}
	return m, nil
}

// File is a multipart attachment carried by a request
type File struct {
	Name        string
	FileName    string
	ContentType string
	Data        []byte
}

// Request describes one logical call against the remote API
type Request struct {
	Method   Method
	Resource string
	// Body is sent as-is when it is a string, JSON-encoded otherwise
	Body    any
	Files   []File
	Headers http.Header
	Params  url.Values
}

// NewRequest builds and validates a request
func NewRequest(method Method, resource string, body any) (*Request, error) {
	if isNil(body) {
		body = nil
	}
	req := &Request{
		Method:   method,
		Resource: resource,
		Body:     body,
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate enforces the local request contract
func (r *Request) Validate() error {
	if !r.Method.Valid() {
		return contractViolation("unsupported method %q for resource %s", r.Method, r.Resource)
	}
	if r.Method == MethodGet && r.HasBody() {
		return contractViolation("GET requests are not allowed to have a request body. resource: %s. body: %v", r.Resource, r.Body)
	}
	if r.HasBody() && len(r.Files) > 0 {
		return contractViolation("request to %s cannot carry both a body and files", r.Resource)
	}
	return nil
}

// AddParam appends a query parameter
func (r *Request) AddParam(name, value string) *Request {
	if r.Params == nil {
		r.Params = url.Values{}
	}
	r.Params.Add(name, value)
	return r
}

// AddHeader appends a header value
func (r *Request) AddHeader(name, value string) *Request {
	if r.Headers == nil {
		r.Headers = http.Header{}
	}
	r.Headers.Add(name, value)
	return r
}

// HasBody reports whether a body is set. Nil pointers, maps and slices
// count as no body.
func (r *Request) HasBody() bool {
	return !isNil(r.Body)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// BodyText returns the serialized body and whether a body is present
func (r *Request) BodyText() (string, bool, error) {
	if !r.HasBody() {
		return "", false, nil
	}
	switch b := r.Body.(type) {
	case string:
		return b, true, nil
	case []byte:
		return string(b), true, nil
	case json.RawMessage:
		return string(b), true, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return "", false, contractViolation("failed to serialize request body for %s: %v", r.Resource, err)
		}
		return string(data), true, nil
	}
}

// encode produces the wire body and its content type
func (r *Request) encode() (io.Reader, string, error) {
	if len(r.Files) > 0 {
		return encodeMultipart(r.Files)
	}
	text, ok, err := r.BodyText()
	if err != nil || !ok {
		return nil, "", err
	}
	return strings.NewReader(text), "application/json", nil
}

func encodeMultipart(files []File) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Name, f.FileName))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create multipart section: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write multipart section: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return buf, w.FormDataContentType(), nil
}

// ResponseStatus is the completion state of a transport call
type ResponseStatus int

const (
	// StatusCompleted means an HTTP response was fully received
	StatusCompleted ResponseStatus = iota
	// StatusError means the call failed before a response was received
	StatusError
	// StatusTimedOut means the transport gave up waiting
	StatusTimedOut
)

// String returns the string representation of a ResponseStatus
func (s ResponseStatus) String() string {
	switch s {
	case StatusCompleted:
		return "Completed"
	case StatusError:
		return "Error"
	case StatusTimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// Response is the raw outcome of one transport call
type Response struct {
	StatusCode   int
	Content      string
	RawContent   []byte
	Status       ResponseStatus
	ErrorMessage string
}
