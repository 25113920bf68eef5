package rest

import (
	"net/http"
)

// Authenticator applies credentials to an outgoing request
type Authenticator interface {
	Authenticate(req *http.Request) error
}

// AuthenticatorFunc adapts a function to Authenticator
type AuthenticatorFunc func(req *http.Request) error

// Authenticate implements Authenticator
func (f AuthenticatorFunc) Authenticate(req *http.Request) error {
	return f(req)
}

// BasicAuth returns an Authenticator using HTTP basic credentials
func BasicAuth(username, password string) Authenticator {
	return AuthenticatorFunc(func(req *http.Request) error {
		req.SetBasicAuth(username, password)
		return nil
	})
}

// BearerToken returns an Authenticator sending a personal access token
func BearerToken(token string) Authenticator {
	return AuthenticatorFunc(func(req *http.Request) error {
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	})
}
