package oauth

import (
	"fmt"
	"strings"
)

const (
	// DefaultRequestTokenPath is the relative path that issues request tokens
	DefaultRequestTokenPath = "plugins/servlet/oauth/request-token"
	// DefaultAuthorizePath is the relative path users visit to authorize a token
	DefaultAuthorizePath = "plugins/servlet/oauth/authorize"
	// DefaultAccessTokenPath is the relative path that exchanges an authorized token
	DefaultAccessTokenPath = "plugins/servlet/oauth/access-token"
)

// SignatureMethod is the OAuth1 signature algorithm
type SignatureMethod int

const (
	RsaSha1 SignatureMethod = iota
	HmacSha1
	PlainText
)

// String returns the oauth_signature_method value
func (m SignatureMethod) String() string {
	switch m {
	case RsaSha1:
		return "RSA-SHA1"
	case HmacSha1:
		return "HMAC-SHA1"
	case PlainText:
		return "PLAINTEXT"
	default:
		return "UNKNOWN"
	}
}

// ParseSignatureMethod maps a configuration value to a SignatureMethod
func ParseSignatureMethod(s string) (SignatureMethod, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "_", "-")) {
	case "", "RSA-SHA1", "RSASHA1":
		return RsaSha1, nil
	case "HMAC-SHA1", "HMACSHA1":
		return HmacSha1, nil
	case "PLAINTEXT":
		return PlainText, nil
	}
	return 0, fmt.Errorf("%w: unknown signature method %q", ErrInvalidSettings, s)
}

// RequestTokenSettings configures the first leg of the exchange
type RequestTokenSettings struct {
	// URL is the base URL of the Jira server
	URL            string
	ConsumerKey    string
	ConsumerSecret string
	// CallbackURL is where Jira redirects after authorization. Empty means out-of-band.
	CallbackURL     string
	SignatureMethod SignatureMethod
	RequestTokenURL string
	AuthorizeURL    string
}

// NewRequestTokenSettings creates settings with the default paths
func NewRequestTokenSettings(url, consumerKey, consumerSecret string) RequestTokenSettings {
	return RequestTokenSettings{
		URL:             url,
		ConsumerKey:     consumerKey,
		ConsumerSecret:  consumerSecret,
		SignatureMethod: RsaSha1,
		RequestTokenURL: DefaultRequestTokenPath,
		AuthorizeURL:    DefaultAuthorizePath,
	}
}

// AccessTokenSettings configures the final leg of the exchange
type AccessTokenSettings struct {
	URL             string
	ConsumerKey     string
	ConsumerSecret  string
	RequestToken    string
	TokenSecret     string
	SignatureMethod SignatureMethod
	AccessTokenURL  string
}

// NewAccessTokenSettings derives access token settings from the settings and
// result of the request token leg
func NewAccessTokenSettings(settings RequestTokenSettings, token *RequestToken) AccessTokenSettings {
	s := AccessTokenSettings{
		URL:             settings.URL,
		ConsumerKey:     settings.ConsumerKey,
		ConsumerSecret:  settings.ConsumerSecret,
		SignatureMethod: settings.SignatureMethod,
		AccessTokenURL:  DefaultAccessTokenPath,
	}
	if token != nil {
		s.RequestToken = token.Token
		s.TokenSecret = token.TokenSecret
	}
	return s
}

// RequestToken is the outcome of a successful request token leg
type RequestToken struct {
	AuthorizeURL      string
	Token             string
	TokenSecret       string
	CallbackConfirmed bool
}

// Credentials are what a Signer needs to sign one request
type Credentials struct {
	ConsumerKey    string
	ConsumerSecret string
	Token          string
	TokenSecret    string
	CallbackURL    string
	Method         SignatureMethod
}

func (s RequestTokenSettings) credentials() Credentials {
	return Credentials{
		ConsumerKey:    s.ConsumerKey,
		ConsumerSecret: s.ConsumerSecret,
		CallbackURL:    s.CallbackURL,
		Method:         s.SignatureMethod,
	}
}

func (s AccessTokenSettings) credentials() Credentials {
	return Credentials{
		ConsumerKey:    s.ConsumerKey,
		ConsumerSecret: s.ConsumerSecret,
		Token:          s.RequestToken,
		TokenSecret:    s.TokenSecret,
		Method:         s.SignatureMethod,
	}
}
