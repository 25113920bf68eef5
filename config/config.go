package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/s0up4200/jiralink/oauth"
	"github.com/s0up4200/jiralink/rest"
)

// EnvPrefix prefixes environment overrides, e.g. JIRALINK_JIRA_URL
const EnvPrefix = "JIRALINK"

// Load loads the configuration from file and environment. Without an
// explicit path a missing config file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".jiralink"))
		}
		v.AddConfigPath("/etc/jiralink/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values. Every key is registered so
// environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	// Jira defaults
	v.SetDefault("jira.url", "")
	v.SetDefault("jira.username", "")
	v.SetDefault("jira.password", "")
	v.SetDefault("jira.token", "")
	v.SetDefault("jira.timeout", rest.DefaultTimeout)
	v.SetDefault("jira.proxy", "")
	v.SetDefault("jira.trace", false)
	v.SetDefault("jira.user_agent", "jiralink")
	v.SetDefault("jira.json.disallow_unknown_fields", false)
	v.SetDefault("jira.json.use_number", false)

	// Mediator defaults
	v.SetDefault("mediator.enabled", false)
	v.SetDefault("mediator.url", "")
	v.SetDefault("mediator.listen", "127.0.0.1:8085")

	// OAuth defaults
	v.SetDefault("oauth.consumer_key", "")
	v.SetDefault("oauth.consumer_secret", "")
	v.SetDefault("oauth.signature_method", "RSA-SHA1")
	v.SetDefault("oauth.private_key_file", "")
	v.SetDefault("oauth.callback_url", "")
	v.SetDefault("oauth.request_token_path", oauth.DefaultRequestTokenPath)
	v.SetDefault("oauth.authorize_path", oauth.DefaultAuthorizePath)
	v.SetDefault("oauth.access_token_path", oauth.DefaultAccessTokenPath)
	v.SetDefault("oauth.access_token", "")
	v.SetDefault("oauth.token_secret", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Jira.URL == "" {
		return fmt.Errorf("jira.url is required")
	}
	if _, err := rest.NormalizeBaseURL(cfg.Jira.URL); err != nil {
		return fmt.Errorf("jira.url: %w", err)
	}

	if cfg.Jira.Timeout < 0 {
		return fmt.Errorf("jira.timeout must not be negative")
	}

	if cfg.Jira.Proxy != "" {
		if u, err := url.Parse(cfg.Jira.Proxy); err != nil || u.Host == "" {
			return fmt.Errorf("invalid jira.proxy: %s", cfg.Jira.Proxy)
		}
	}

	if cfg.Mediator.Enabled {
		if cfg.Mediator.URL == "" {
			return fmt.Errorf("mediator.url is required when mediator.enabled is set")
		}
		if _, err := rest.NormalizeBaseURL(cfg.Mediator.URL); err != nil {
			return fmt.Errorf("mediator.url: %w", err)
		}
	}

	if _, err := oauth.ParseSignatureMethod(cfg.OAuth.SignatureMethod); err != nil {
		return fmt.Errorf("oauth.signature_method: %w", err)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"trace": true,
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
