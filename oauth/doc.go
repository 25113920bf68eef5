// Package oauth implements Jira's three-legged OAuth1 token exchange.
//
// The exchange has three steps:
//
//  1. GenerateRequestToken obtains a request token and the authorize URL
//  2. The user visits the authorize URL and approves access
//  3. ObtainAccessToken trades the authorized request token for an access token
//
// Requests are signed through Signer. OAuth1Signer, built on
// github.com/dghubble/oauth1, covers RSA-SHA1, HMAC-SHA1 and PLAINTEXT.
//
// Refusals are not errors. GenerateRequestToken returns a nil token and
// ObtainAccessToken an empty string when Jira does not grant the token.
package oauth
