package config

import (
	"fmt"
	"net/url"

	"github.com/s0up4200/jiralink/oauth"
	"github.com/s0up4200/jiralink/rest"
)

// Credentials picks the primary and fallback authenticators. An OAuth
// access token wins over a personal token, which wins over basic auth;
// basic auth is the fallback whenever something else is primary.
func (c *Config) Credentials() (primary, fallback rest.Authenticator, err error) {
	var basic rest.Authenticator
	if c.Jira.Username != "" {
		basic = rest.BasicAuth(c.Jira.Username, c.Jira.Password)
	}

	switch {
	case c.OAuth.AccessToken != "":
		signer, err := c.Signer()
		if err != nil {
			return nil, nil, err
		}
		return oauth.Authenticator(signer, c.OAuthCredentials()), basic, nil
	case c.Jira.Token != "":
		return rest.BearerToken(c.Jira.Token), basic, nil
	default:
		return basic, nil, nil
	}
}

// Signer builds the OAuth1 signer for the configured signature method.
// RSA-SHA1 requires oauth.private_key_file.
func (c *Config) Signer() (*oauth.OAuth1Signer, error) {
	method, err := oauth.ParseSignatureMethod(c.OAuth.SignatureMethod)
	if err != nil {
		return nil, err
	}
	if method != oauth.RsaSha1 {
		return oauth.NewSigner(nil), nil
	}
	if c.OAuth.PrivateKeyFile == "" {
		return nil, fmt.Errorf("%w: oauth.private_key_file is required for %s", oauth.ErrInvalidSettings, method)
	}
	key, err := oauth.LoadPrivateKey(c.OAuth.PrivateKeyFile)
	if err != nil {
		return nil, err
	}
	return oauth.NewSigner(key), nil
}

// OAuthCredentials returns the signing credentials for the configured access token
func (c *Config) OAuthCredentials() oauth.Credentials {
	method, _ := oauth.ParseSignatureMethod(c.OAuth.SignatureMethod)
	return oauth.Credentials{
		ConsumerKey:    c.OAuth.ConsumerKey,
		ConsumerSecret: c.OAuth.ConsumerSecret,
		Token:          c.OAuth.AccessToken,
		TokenSecret:    c.OAuth.TokenSecret,
		Method:         method,
	}
}

// RequestTokenSettings builds the first-leg OAuth settings
func (c *Config) RequestTokenSettings() (oauth.RequestTokenSettings, error) {
	method, err := oauth.ParseSignatureMethod(c.OAuth.SignatureMethod)
	if err != nil {
		return oauth.RequestTokenSettings{}, err
	}
	s := oauth.NewRequestTokenSettings(c.Jira.URL, c.OAuth.ConsumerKey, c.OAuth.ConsumerSecret)
	s.CallbackURL = c.OAuth.CallbackURL
	s.SignatureMethod = method
	if c.OAuth.RequestTokenPath != "" {
		s.RequestTokenURL = c.OAuth.RequestTokenPath
	}
	if c.OAuth.AuthorizePath != "" {
		s.AuthorizeURL = c.OAuth.AuthorizePath
	}
	return s, nil
}

// TransportOptions returns the options shared by every outbound call
func (c *Config) TransportOptions() ([]rest.Option, error) {
	opts := []rest.Option{
		rest.WithTimeout(c.Jira.Timeout),
		rest.WithRequestTrace(c.Jira.Trace),
		rest.WithJSONOptions(rest.JSONOptions{
			DisallowUnknownFields: c.Jira.JSON.DisallowUnknownFields,
			UseNumber:             c.Jira.JSON.UseNumber,
		}),
	}
	if c.Jira.UserAgent != "" {
		opts = append(opts, rest.WithUserAgent(c.Jira.UserAgent))
	}
	if c.Jira.Proxy != "" {
		proxy, err := url.Parse(c.Jira.Proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid jira.proxy: %w", err)
		}
		opts = append(opts, rest.WithProxy(proxy))
	}
	return opts, nil
}

// ClientOptions returns everything needed by rest.NewClient
func (c *Config) ClientOptions() ([]rest.Option, error) {
	opts, err := c.TransportOptions()
	if err != nil {
		return nil, err
	}

	if c.Mediator.Enabled {
		return append(opts, rest.WithMediator(c.Mediator.URL)), nil
	}

	primary, fallback, err := c.Credentials()
	if err != nil {
		return nil, err
	}
	if primary != nil {
		opts = append(opts, rest.WithAuthenticator(primary))
	}
	if fallback != nil {
		opts = append(opts, rest.WithFallbackAuthenticator(fallback))
	}
	return opts, nil
}
