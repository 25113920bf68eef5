package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	Jira     JiraConfig     `mapstructure:"jira"`
	Mediator MediatorConfig `mapstructure:"mediator"`
	OAuth    OAuthConfig    `mapstructure:"oauth"`
	Filter   FilterConfig   `mapstructure:"filter"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// JiraConfig holds Jira connection details
type JiraConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// Token is a personal access token. With Username set as well, basic
	// auth becomes the fallback after a 401.
	Token     string        `mapstructure:"token"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Proxy     string        `mapstructure:"proxy"`
	Trace     bool          `mapstructure:"trace"`
	UserAgent string        `mapstructure:"user_agent"`
	JSON      JSONConfig    `mapstructure:"json"`
}

// JSONConfig controls decoding of typed results
type JSONConfig struct {
	DisallowUnknownFields bool `mapstructure:"disallow_unknown_fields"`
	UseNumber             bool `mapstructure:"use_number"`
}

// MediatorConfig covers both sides of mediated execution
type MediatorConfig struct {
	// Enabled routes client calls through URL
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
	// Listen is the address `jiralink mediate` serves on
	Listen string `mapstructure:"listen"`
}

// OAuthConfig holds the OAuth1 consumer and, once exchanged, the access token
type OAuthConfig struct {
	ConsumerKey     string `mapstructure:"consumer_key"`
	ConsumerSecret  string `mapstructure:"consumer_secret"`
	SignatureMethod string `mapstructure:"signature_method"`
	// PrivateKeyFile is the PEM RSA key of the application link, used by RSA-SHA1
	PrivateKeyFile   string `mapstructure:"private_key_file"`
	CallbackURL      string `mapstructure:"callback_url"`
	RequestTokenPath string `mapstructure:"request_token_path"`
	AuthorizePath    string `mapstructure:"authorize_path"`
	AccessTokenPath  string `mapstructure:"access_token_path"`
	AccessToken      string `mapstructure:"access_token"`
	TokenSecret      string `mapstructure:"token_secret"`
}

// FilterConfig maps names to filter expressions usable with --filter
type FilterConfig map[string]string

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
