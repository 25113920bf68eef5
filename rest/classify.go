package rest

import (
	"encoding/json"
	"net/http"
	"strings"
)

// emptyObject is returned for successful responses without a body
var emptyObject = json.RawMessage(`{}`)

// Classify turns a transport response into decoded JSON or a typed *Error.
//
// Order matters: completion first, then status thresholds, and only then the
// body. A 404 with a JSON body is still ResourceNotFound.
func Classify(resp *Response) (json.RawMessage, error) {
	content, err := CheckStatus(resp)
	if err != nil {
		return nil, err
	}
	return decodeContent(content)
}

// CheckStatus applies the completion and status-code rules without looking at
// the body, returning the trimmed content on success.
func CheckStatus(resp *Response) (string, error) {
	if resp == nil {
		return "", transportFailure("no response received", nil)
	}

	content := strings.TrimSpace(resp.Content)

	if resp.ErrorMessage != "" {
		return "", transportFailure("error message: "+resp.ErrorMessage, nil)
	}
	if resp.Status != StatusCompleted {
		return "", transportFailure("request could not complete: "+resp.Status.String(), nil)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", &Error{Kind: KindAuthenticationFailed, StatusCode: resp.StatusCode, Body: content}
	case resp.StatusCode == http.StatusNotFound:
		return "", &Error{Kind: KindResourceNotFound, StatusCode: resp.StatusCode, Body: content}
	case resp.StatusCode >= http.StatusBadRequest:
		return "", &Error{Kind: KindRequestFailed, StatusCode: resp.StatusCode, Body: content}
	}

	return content, nil
}

func decodeContent(content string) (json.RawMessage, error) {
	if content == "" {
		return emptyObject, nil
	}
	if !strings.HasPrefix(content, "{") && !strings.HasPrefix(content, "[") {
		return nil, &Error{Kind: KindMalformedResponse, Body: content, Reason: "response was not recognized as JSON"}
	}
	if !json.Valid([]byte(content)) {
		return nil, &Error{Kind: KindMalformedResponse, Body: content, Reason: "failed to parse response as JSON"}
	}

	if strings.HasPrefix(content, "{") {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(content), &fields); err == nil {
			if raw, ok := fields["errorMessages"]; ok {
				return nil, &Error{
					Kind:     KindServerReportedError,
					Body:     content,
					Messages: errorMessages(raw),
				}
			}
		}
	}

	return json.RawMessage(content), nil
}

// errorMessages flattens the errorMessages member, which Jira sends as a
// string array but which may be anything.
func errorMessages(raw json.RawMessage) []string {
	var messages []string
	if err := json.Unmarshal(raw, &messages); err == nil {
		return messages
	}
	return []string{string(raw)}
}
