package oauth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/s0up4200/jiralink/rest"
)

// Exchanger runs the three-legged OAuth1 token exchange against Jira
type Exchanger struct {
	signer Signer
	logger zerolog.Logger
	opts   []rest.Option
}

// NewExchanger creates an exchanger. opts configure the transport used for
// the token calls (timeout, proxy, trace).
func NewExchanger(signer Signer, logger zerolog.Logger, opts ...rest.Option) *Exchanger {
	return &Exchanger{
		signer: signer,
		logger: logger,
		opts:   opts,
	}
}

// GenerateRequestToken performs the first leg. A nil token with a nil error
// means Jira did not issue one; the returned error is reserved for
// cancellation and invalid settings.
func (e *Exchanger) GenerateRequestToken(ctx context.Context, settings RequestTokenSettings) (*RequestToken, error) {
	path := settings.RequestTokenURL
	if path == "" {
		path = DefaultRequestTokenPath
	}

	values, ok, err := e.post(ctx, settings.URL, path, settings.credentials())
	if err != nil || !ok {
		return nil, err
	}

	authorize := settings.AuthorizeURL
	if authorize == "" {
		authorize = DefaultAuthorizePath
	}

	token := values.Get("oauth_token")
	confirmed, _ := strconv.ParseBool(values.Get("oauth_callback_confirmed"))

	return &RequestToken{
		AuthorizeURL:      authorizeURL(settings.URL, authorize, token),
		Token:             token,
		TokenSecret:       values.Get("oauth_token_secret"),
		CallbackConfirmed: confirmed,
	}, nil
}

// ObtainAccessToken performs the final leg after the user authorized the
// request token. An empty token with a nil error means Jira refused, or the
// secret it returned does not match the request token secret.
func (e *Exchanger) ObtainAccessToken(ctx context.Context, settings AccessTokenSettings) (string, error) {
	path := settings.AccessTokenURL
	if path == "" {
		path = DefaultAccessTokenPath
	}

	values, ok, err := e.post(ctx, settings.URL, path, settings.credentials())
	if err != nil || !ok {
		return "", err
	}

	if values.Get("oauth_token_secret") != settings.TokenSecret {
		e.logger.Warn().Msg("Access token secret does not match request token secret")
		return "", nil
	}

	return values.Get("oauth_token"), nil
}

// post sends one signed token call. ok is false when Jira did not answer 200.
func (e *Exchanger) post(ctx context.Context, baseURL, path string, creds Credentials) (url.Values, bool, error) {
	if e.signer == nil {
		return nil, false, ErrNoSigner
	}

	transport, err := rest.NewTransport(baseURL, e.logger, e.opts...)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrInvalidSettings, err)
	}

	resp, err := transport.Send(ctx, &rest.Request{Method: rest.MethodPost, Resource: path}, Authenticator(e.signer, creds))
	if err != nil {
		return nil, false, err
	}

	if resp.Status != rest.StatusCompleted || resp.StatusCode != http.StatusOK {
		e.logger.Debug().
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("state", resp.Status.String()).
			Msg("Token request was not granted")
		return nil, false, nil
	}

	values, err := url.ParseQuery(strings.TrimSpace(resp.Content))
	if err != nil {
		e.logger.Debug().Err(err).Str("path", path).Msg("Token response is not form encoded")
		return nil, false, nil
	}
	return values, true, nil
}

func authorizeURL(baseURL, path, token string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/") + "?oauth_token=" + url.QueryEscape(token)
}
