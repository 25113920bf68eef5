package oauth

import (
	"context"
	"crypto"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/dghubble/oauth1"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authParams splits an OAuth Authorization header into decoded parameters
func authParams(t *testing.T, header string) map[string]string {
	t.Helper()
	require.True(t, strings.HasPrefix(header, "OAuth "), header)

	params := map[string]string{}
	for _, pair := range strings.Split(strings.TrimPrefix(header, "OAuth "), ", ") {
		key, value, ok := strings.Cut(pair, "=")
		require.True(t, ok, pair)
		decoded, err := url.PathUnescape(strings.Trim(value, `"`))
		require.NoError(t, err)
		params[key] = decoded
	}
	return params
}

// baseString rebuilds the RFC 5849 signature base string from the header
// parameters plus any form parameters
func baseString(method, uri string, oauthParams map[string]string, form url.Values) string {
	params := map[string]string{}
	for k, v := range oauthParams {
		if k != "oauth_signature" {
			params[k] = v
		}
	}
	for k := range form {
		params[k] = form.Get(k)
	}

	pairs := make([]string, 0, len(params))
	for k, v := range params {
		pairs = append(pairs, oauth1.PercentEncode(k)+"="+oauth1.PercentEncode(v))
	}
	sort.Strings(pairs)

	return method + "&" + oauth1.PercentEncode(uri) + "&" + oauth1.PercentEncode(strings.Join(pairs, "&"))
}

func TestOAuth1Signer_PlainText(t *testing.T) {
	signer := NewSigner(nil)

	t.Run("access token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "https://jira.example.com/rest/api/2/project", nil)
		require.NoError(t, signer.Sign(req, Credentials{
			ConsumerKey:    "consumer",
			ConsumerSecret: "c&s",
			Token:          "T1",
			TokenSecret:    "S1",
			Method:         PlainText,
		}))

		params := authParams(t, req.Header.Get("Authorization"))
		assert.Equal(t, "consumer", params["oauth_consumer_key"])
		assert.Equal(t, "PLAINTEXT", params["oauth_signature_method"])
		assert.Equal(t, "T1", params["oauth_token"])
		assert.Equal(t, "1.0", params["oauth_version"])
		assert.NotEmpty(t, params["oauth_nonce"])
		assert.NotEmpty(t, params["oauth_timestamp"])
		assert.Equal(t, "c%26s&S1", params["oauth_signature"])
		assert.NotContains(t, params, "oauth_callback")
	})

	t.Run("request token leg", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "https://jira.example.com/"+DefaultRequestTokenPath, nil)
		require.NoError(t, signer.Sign(req, Credentials{
			ConsumerKey:    "consumer",
			ConsumerSecret: "secret",
			Method:         PlainText,
		}))

		params := authParams(t, req.Header.Get("Authorization"))
		assert.Equal(t, "oob", params["oauth_callback"])
		assert.Equal(t, "secret&", params["oauth_signature"])
		assert.NotContains(t, params, "oauth_token")
	})

	t.Run("request token leg keeps callback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "https://jira.example.com/"+DefaultRequestTokenPath, nil)
		require.NoError(t, signer.Sign(req, Credentials{
			ConsumerKey: "consumer",
			CallbackURL: "https://app.example.com/cb",
			Method:      PlainText,
		}))
		params := authParams(t, req.Header.Get("Authorization"))
		assert.Equal(t, "https://app.example.com/cb", params["oauth_callback"])
	})
}

func TestOAuth1Signer_HmacSha1(t *testing.T) {
	const body = "b=2&a=1"
	req := httptest.NewRequest(http.MethodPost, "https://jira.example.com/rest/x", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	creds := Credentials{
		ConsumerKey:    "consumer",
		ConsumerSecret: "csecret",
		Token:          "T1",
		TokenSecret:    "tsecret",
		Method:         HmacSha1,
	}
	require.NoError(t, NewSigner(nil).Sign(req, creds))

	// the body is still there to be sent
	data, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, body, string(data))

	params := authParams(t, req.Header.Get("Authorization"))
	assert.Equal(t, "HMAC-SHA1", params["oauth_signature_method"])

	form, err := url.ParseQuery(body)
	require.NoError(t, err)
	mac := hmac.New(sha1.New, []byte("csecret&tsecret"))
	mac.Write([]byte(baseString(http.MethodPost, "https://jira.example.com/rest/x", params, form)))
	assert.Equal(t, base64.StdEncoding.EncodeToString(mac.Sum(nil)), params["oauth_signature"])
}

func TestOAuth1Signer_RsaSha1(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "https://jira.example.com/rest/api/2/myself", nil)
	require.NoError(t, NewSigner(key).Sign(req, Credentials{
		ConsumerKey: "consumer",
		Token:       "T1",
		Method:      RsaSha1,
	}))

	params := authParams(t, req.Header.Get("Authorization"))
	assert.Equal(t, "RSA-SHA1", params["oauth_signature_method"])

	sig, err := base64.StdEncoding.DecodeString(params["oauth_signature"])
	require.NoError(t, err)
	digest := sha1.Sum([]byte(baseString(http.MethodGet, "https://jira.example.com/rest/api/2/myself", params, nil)))
	assert.NoError(t, rsa.VerifyPKCS1v15(&key.PublicKey, crypto.SHA1, digest[:], sig))
}

func TestOAuth1Signer_Errors(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://jira.example.com/x", nil)

	err := NewSigner(nil).Sign(req, Credentials{Token: "T", Method: RsaSha1})
	assert.ErrorIs(t, err, ErrInvalidSettings)

	err = NewSigner(nil).Sign(req, Credentials{Token: "T", Method: SignatureMethod(42)})
	assert.ErrorIs(t, err, ErrUnsupportedMethod)

	// request token calls are POSTs
	err = NewSigner(nil).Sign(req, Credentials{Method: HmacSha1})
	assert.ErrorIs(t, err, ErrInvalidSettings)
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestOAuth1Signer_Exchange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.Contains(header, `oauth_signature_method="HMAC-SHA1"`) || !strings.Contains(header, `oauth_callback="oob"`) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("oauth_token=T1&oauth_token_secret=S1&oauth_callback_confirmed=true"))
	}))
	defer server.Close()

	settings := NewRequestTokenSettings(server.URL, "consumer", "secret")
	settings.SignatureMethod = HmacSha1

	token, err := NewExchanger(NewSigner(nil), zerolog.Nop()).
		GenerateRequestToken(context.Background(), settings)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "T1", token.Token)
}

func TestLoadPrivateKey(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	dir := t.TempDir()

	pkcs1 := filepath.Join(dir, "pkcs1.pem")
	require.NoError(t, os.WriteFile(pkcs1, pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}), 0o600))

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	pkcs8 := filepath.Join(dir, "pkcs8.pem")
	require.NoError(t, os.WriteFile(pkcs8, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), 0o600))

	for _, path := range []string{pkcs1, pkcs8} {
		got, err := LoadPrivateKey(path)
		require.NoError(t, err)
		assert.True(t, key.Equal(got))
	}

	_, err = ParsePrivateKey([]byte("not pem"))
	assert.ErrorIs(t, err, ErrInvalidSettings)

	_, err = LoadPrivateKey(filepath.Join(dir, "missing.pem"))
	assert.Error(t, err)
}
