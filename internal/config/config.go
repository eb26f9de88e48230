package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"chatcourse/internal/constants"
	"chatcourse/internal/models"
)

var (
	ErrMissingChatURL      = models.ConfigError{Message: "missing Google Chat API base URL"}
	ErrMissingDiscourseURL = models.ConfigError{Message: "missing Discourse base URL"}
	ErrMissingAPIUsername  = models.ConfigError{Message: "missing Discourse API username"}
	ErrMissingDBPath       = models.ConfigError{Message: "missing database path"}
)

// LoadConfig reads a JSON or YAML configuration file, applies environment
// overrides, and fills in defaults. The format is picked by file extension.
func LoadConfig(path string) (*models.Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config path: %w", err)
	}

	file, err := os.ReadFile(path) // #nosec G304 - Path validated above
	if err != nil {
		return nil, err
	}

	var config models.Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(file, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		if err := json.Unmarshal(file, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	}

	applyEnvironmentOverrides(&config)

	if err := validate(&config); err != nil {
		return nil, err
	}

	if err := validateSecurity(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func validateConfigPath(path string) error {
	if path == "" {
		return models.ConfigError{Message: "config path is empty"}
	}
	if strings.Contains(path, "..") {
		return models.ConfigError{Message: "config path must not contain traversal sequences"}
	}
	return nil
}

func validate(c *models.Config) error {
	if c.GoogleChat.APIBaseURL == "" {
		return ErrMissingChatURL
	}
	if c.Discourse.BaseURL == "" {
		return ErrMissingDiscourseURL
	}
	if c.Discourse.APIUsername == "" {
		return ErrMissingAPIUsername
	}
	if c.Database.Path == "" {
		return ErrMissingDBPath
	}

	seen := make(map[string]bool)
	for i, mapping := range c.SpaceMappings {
		if mapping.GoogleSpaceID == "" {
			return models.ConfigError{Message: fmt.Sprintf("empty Google space ID in space_mappings entry %d", i)}
		}
		if seen[mapping.GoogleSpaceID] {
			return models.ConfigError{Message: fmt.Sprintf("duplicate Google space ID: %s", mapping.GoogleSpaceID)}
		}
		seen[mapping.GoogleSpaceID] = true
	}

	if c.GoogleChat.TimeoutSec <= 0 {
		c.GoogleChat.TimeoutSec = constants.DefaultHTTPTimeoutSec
	}
	if c.GoogleChat.PageSize <= 0 {
		c.GoogleChat.PageSize = constants.DefaultMessagePageSize
	}
	if c.Discourse.TimeoutSec <= 0 {
		c.Discourse.TimeoutSec = constants.DefaultHTTPTimeoutSec
	}
	if c.Discourse.RetryCount <= 0 {
		c.Discourse.RetryCount = constants.DefaultMaxAttempts
	}
	if c.Discourse.EmailDomain == "" {
		c.Discourse.EmailDomain = constants.DefaultEmailDomain
	}
	if c.Server.Port <= 0 {
		c.Server.Port = constants.DefaultServerPort
	}
	if c.Retry.InitialBackoffMs <= 0 {
		c.Retry.InitialBackoffMs = constants.DefaultRetryBackoffMs
	}
	if c.Retry.MaxBackoffMs <= 0 {
		c.Retry.MaxBackoffMs = constants.DefaultMaxBackoffMs
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = constants.DefaultMaxAttempts
	}
	if c.Sync.IntervalMinutes <= 0 {
		c.Sync.IntervalMinutes = constants.DefaultSyncIntervalMinutes
	}
	return nil
}

func applyEnvironmentOverrides(c *models.Config) {
	if url := os.Getenv("GCHAT_API_URL"); url != "" {
		c.GoogleChat.APIBaseURL = url
	}
	if token := os.Getenv("GCHAT_ACCESS_TOKEN"); token != "" {
		c.GoogleChat.AccessToken = token
	}

	if url := os.Getenv("DISCOURSE_URL"); url != "" {
		c.Discourse.BaseURL = url
	}
	// SECURITY: API keys and webhook secrets should come from the environment
	if key := os.Getenv("DISCOURSE_API_KEY"); key != "" {
		c.Discourse.APIKey = key
	}
	if secret := os.Getenv("CHATCOURSE_WEBHOOK_SECRET"); secret != "" {
		c.Server.WebhookSecret = secret
	}

	if path := os.Getenv("DB_PATH"); path != "" {
		c.Database.Path = path
	}
}

// validateSecurity performs security-specific validation
func validateSecurity(c *models.Config) error {
	isProduction := os.Getenv("CHATCOURSE_ENV") == "production"

	if isProduction {
		if c.Server.WebhookSecret == "" {
			return models.ConfigError{Message: "webhook secret is required in production (set CHATCOURSE_WEBHOOK_SECRET environment variable)"}
		}
		if len(c.Server.WebhookSecret) < 32 {
			return models.ConfigError{Message: "webhook secret must be at least 32 characters long"}
		}
		if c.Discourse.APIKey == "" {
			return models.ConfigError{Message: "Discourse API key is required in production (set DISCOURSE_API_KEY environment variable)"}
		}
		if c.LogLevel == "debug" {
			return models.ConfigError{Message: "debug logging should not be used in production (security risk)"}
		}
	} else {
		if c.Server.WebhookSecret == "" {
			fmt.Fprintf(os.Stderr, "WARNING: webhook secret not set. Set CHATCOURSE_WEBHOOK_SECRET environment variable for security.\n")
		}
	}

	return nil
}
