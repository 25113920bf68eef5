package oauth

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dghubble/oauth1"

	"github.com/s0up4200/jiralink/rest"
)

// Signer adds an OAuth1 Authorization header to an outgoing request
type Signer interface {
	Sign(req *http.Request, creds Credentials) error
}

// SignerFunc adapts a function to the Signer interface
type SignerFunc func(req *http.Request, creds Credentials) error

// Sign implements Signer
func (f SignerFunc) Sign(req *http.Request, creds Credentials) error {
	return f(req, creds)
}

// Authenticator binds creds to signer for use with rest.WithAuthenticator
// once the exchange has produced an access token
func Authenticator(signer Signer, creds Credentials) rest.Authenticator {
	return rest.AuthenticatorFunc(func(req *http.Request) error {
		return signer.Sign(req, creds)
	})
}

// errSigned stops the oauth1 round trip once the header has been built
var errSigned = errors.New("oauth1 request signed")

// headerCapture is the base transport handed to oauth1. It records the
// signed Authorization header instead of sending anything.
type headerCapture struct {
	header string
}

func (c *headerCapture) RoundTrip(req *http.Request) (*http.Response, error) {
	c.header = req.Header.Get("Authorization")
	return nil, errSigned
}

// OAuth1Signer signs requests with github.com/dghubble/oauth1. It supports
// RSA-SHA1 (with a private key), HMAC-SHA1 and PLAINTEXT.
type OAuth1Signer struct {
	privateKey *rsa.PrivateKey
}

// NewSigner creates a signer. privateKey is only needed for RSA-SHA1.
func NewSigner(privateKey *rsa.PrivateKey) *OAuth1Signer {
	return &OAuth1Signer{privateKey: privateKey}
}

// Sign implements Signer. Credentials without a token sign the request
// token leg, which carries oauth_callback instead of oauth_token.
func (s *OAuth1Signer) Sign(req *http.Request, creds Credentials) error {
	method, err := s.method(creds)
	if err != nil {
		return err
	}

	capture := &headerCapture{}
	config := &oauth1.Config{
		ConsumerKey:    creds.ConsumerKey,
		ConsumerSecret: creds.ConsumerSecret,
		CallbackURL:    creds.CallbackURL,
		Signer:         method,
		HTTPClient:     &http.Client{Transport: capture},
	}

	if creds.Token == "" {
		if req.Method != http.MethodPost {
			return fmt.Errorf("%w: request token calls must be POST, got %s", ErrInvalidSettings, req.Method)
		}
		if config.CallbackURL == "" {
			config.CallbackURL = "oob"
		}
		config.Endpoint = oauth1.Endpoint{RequestTokenURL: req.URL.String()}
		_, _, err = config.RequestToken()
	} else {
		clone, cerr := cloneForSigning(req)
		if cerr != nil {
			return cerr
		}
		ctx := context.WithValue(req.Context(), oauth1.HTTPClient, config.HTTPClient)
		token := oauth1.NewToken(creds.Token, creds.TokenSecret)
		_, err = config.Client(ctx, token).Transport.RoundTrip(clone)
	}

	if !errors.Is(err, errSigned) {
		if err == nil {
			err = errors.New("oauth1 did not sign the request")
		}
		return fmt.Errorf("failed to sign request: %w", err)
	}
	req.Header.Set("Authorization", capture.header)
	return nil
}

func (s *OAuth1Signer) method(creds Credentials) (oauth1.Signer, error) {
	switch creds.Method {
	case RsaSha1:
		if s.privateKey == nil {
			return nil, fmt.Errorf("%w: RSA-SHA1 needs a private key", ErrInvalidSettings)
		}
		return &oauth1.RSASigner{PrivateKey: s.privateKey}, nil
	case HmacSha1:
		return &oauth1.HMACSigner{ConsumerSecret: creds.ConsumerSecret}, nil
	case PlainText:
		return plainText{consumerSecret: creds.ConsumerSecret}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, creds.Method)
}

// cloneForSigning gives oauth1 its own body so form parameters can be read
// without draining the request that is about to be sent
func cloneForSigning(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to copy request body: %w", err)
		}
		clone.Body = body
		return clone, nil
	}

	data, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	req.Body = io.NopCloser(bytes.NewReader(data))
	clone.Body = io.NopCloser(bytes.NewReader(data))
	return clone, nil
}

// plainText is the PLAINTEXT method, which oauth1 leaves to callers.
// It is only safe over TLS.
type plainText struct {
	consumerSecret string
}

func (p plainText) Name() string {
	return PlainText.String()
}

func (p plainText) Sign(tokenSecret, _ string) (string, error) {
	return oauth1.PercentEncode(p.consumerSecret) + "&" + oauth1.PercentEncode(tokenSecret), nil
}

// LoadPrivateKey reads a PEM encoded RSA key in PKCS#1 or PKCS#8 form, as
// registered with a Jira application link
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	return ParsePrivateKey(data)
}

// ParsePrivateKey decodes a PEM encoded RSA key
func ParsePrivateKey(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("%w: private key is not PEM encoded", ErrInvalidSettings)
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: private key is not RSA", ErrInvalidSettings)
	}
	return key, nil
}
