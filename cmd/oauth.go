package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/jiralink/oauth"
)

var (
	requestToken       string
	requestTokenSecret string
)

// oauthCmd groups the OAuth token exchange
var oauthCmd = &cobra.Command{
	Use:   "oauth",
	Short: "Run the OAuth1 token exchange",
	Long: `Obtain an OAuth access token in two steps:

  jiralink oauth request-token
  (visit the printed URL and approve access)
  jiralink oauth access-token --token TOKEN --secret SECRET

Requests are signed with oauth.signature_method. RSA-SHA1, the Jira
default, reads the application link key from oauth.private_key_file.`,
}

var oauthRequestCmd = &cobra.Command{
	Use:   "request-token",
	Short: "Obtain a request token and print the authorization URL",
	RunE:  runOAuthRequest,
}

var oauthAccessCmd = &cobra.Command{
	Use:   "access-token",
	Short: "Exchange an authorized request token for an access token",
	RunE:  runOAuthAccess,
}

func init() {
	rootCmd.AddCommand(oauthCmd)
	oauthCmd.AddCommand(oauthRequestCmd, oauthAccessCmd)

	oauthAccessCmd.Flags().StringVar(&requestToken, "token", "", "authorized request token")
	oauthAccessCmd.Flags().StringVar(&requestTokenSecret, "secret", "", "request token secret")
	_ = oauthAccessCmd.MarkFlagRequired("token")
}

func newExchanger() (*oauth.Exchanger, oauth.RequestTokenSettings, error) {
	settings, err := cfg.RequestTokenSettings()
	if err != nil {
		return nil, settings, err
	}
	signer, err := cfg.Signer()
	if err != nil {
		return nil, settings, err
	}

	opts, err := cfg.TransportOptions()
	if err != nil {
		return nil, settings, err
	}
	return oauth.NewExchanger(signer, logger, opts...), settings, nil
}

func runOAuthRequest(cmd *cobra.Command, args []string) error {
	exchanger, settings, err := newExchanger()
	if err != nil {
		return err
	}

	token, err := exchanger.GenerateRequestToken(cmd.Context(), settings)
	if err != nil {
		return fmt.Errorf("failed to request token: %w", err)
	}
	if token == nil {
		return errors.New("jira did not issue a request token; check the consumer key and application link")
	}

	fmt.Printf("Request token:  %s\n", token.Token)
	fmt.Printf("Token secret:   %s\n", token.TokenSecret)
	fmt.Printf("\nAuthorize at:\n  %s\n", token.AuthorizeURL)
	fmt.Printf("\nThen run:\n  jiralink oauth access-token --token %s --secret %s\n", token.Token, token.TokenSecret)
	return nil
}

func runOAuthAccess(cmd *cobra.Command, args []string) error {
	exchanger, settings, err := newExchanger()
	if err != nil {
		return err
	}

	access := oauth.NewAccessTokenSettings(settings, &oauth.RequestToken{
		Token:       requestToken,
		TokenSecret: requestTokenSecret,
	})
	if cfg.OAuth.AccessTokenPath != "" {
		access.AccessTokenURL = cfg.OAuth.AccessTokenPath
	}

	token, err := exchanger.ObtainAccessToken(cmd.Context(), access)
	if err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}
	if token == "" {
		return errors.New("jira did not issue an access token; was the request token authorized?")
	}

	fmt.Printf("Access token: %s\n", token)
	fmt.Println("\nAdd it to your config:")
	fmt.Printf("  oauth:\n    access_token: %s\n    token_secret: %s\n", token, requestTokenSecret)
	return nil
}
