package models

// Config holds the application configuration
type Config struct {
	GoogleChat    GoogleChatConfig `json:"google_chat" yaml:"google_chat"`
	Discourse     DiscourseConfig  `json:"discourse" yaml:"discourse"`
	Database      DatabaseConfig   `json:"database" yaml:"database"`
	Server        ServerConfig     `json:"server" yaml:"server"`
	Retry         RetryConfig      `json:"retry" yaml:"retry"`
	Sync          SyncConfig       `json:"sync" yaml:"sync"`
	Tracing       TracingConfig    `json:"tracing" yaml:"tracing"`
	SpaceMappings []SpaceMapping   `json:"space_mappings" yaml:"space_mappings"`
	LogLevel      string           `json:"log_level" yaml:"log_level"`
}

// GoogleChatConfig holds Google Chat API related configuration
type GoogleChatConfig struct {
	APIBaseURL  string `json:"api_base_url" yaml:"api_base_url"`
	AccessToken string `json:"access_token" yaml:"access_token"`
	TimeoutSec  int    `json:"timeout_sec" yaml:"timeout_sec"`
	PageSize    int    `json:"page_size" yaml:"page_size"`
}

// DiscourseConfig holds Discourse API related configuration
type DiscourseConfig struct {
	BaseURL     string `json:"base_url" yaml:"base_url"`
	APIKey      string `json:"api_key" yaml:"api_key"`
	APIUsername string `json:"api_username" yaml:"api_username"`
	TimeoutSec  int    `json:"timeout_sec" yaml:"timeout_sec"`
	RetryCount  int    `json:"retry_count" yaml:"retry_count"`
	EmailDomain string `json:"email_domain" yaml:"email_domain"`
}

// DatabaseConfig holds database related configuration
type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

// ServerConfig holds webhook server configuration
type ServerConfig struct {
	Port          int    `json:"port" yaml:"port"`
	WebhookSecret string `json:"webhook_secret" yaml:"webhook_secret"`
}

// RetryConfig holds backoff configuration for the platform adapters
type RetryConfig struct {
	InitialBackoffMs int `json:"initial_backoff_ms" yaml:"initial_backoff_ms"`
	MaxBackoffMs     int `json:"max_backoff_ms" yaml:"max_backoff_ms"`
	MaxAttempts      int `json:"max_attempts" yaml:"max_attempts"`
}

// SyncConfig holds catch-up scheduler configuration
type SyncConfig struct {
	IntervalMinutes int  `json:"interval_minutes" yaml:"interval_minutes"`
	RunOnStartup    bool `json:"run_on_startup" yaml:"run_on_startup"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled        bool    `json:"enabled" yaml:"enabled"`
	ServiceName    string  `json:"service_name" yaml:"service_name"`
	ServiceVersion string  `json:"service_version" yaml:"service_version"`
	Environment    string  `json:"environment" yaml:"environment"`
	OTLPEndpoint   string  `json:"otlp_endpoint" yaml:"otlp_endpoint"`
	SampleRate     float64 `json:"sample_rate" yaml:"sample_rate"`
	UseStdout      bool    `json:"use_stdout" yaml:"use_stdout"`
}

// SpaceMapping is one configured space-to-category pair. CategoryID and
// ParentCategoryID are optional; a zero CategoryID means the bridge creates
// a category named after the space.
type SpaceMapping struct {
	GoogleSpaceID    string `json:"google_space_id" yaml:"google_space_id"`
	CategoryID       int    `json:"discourse_category_id" yaml:"discourse_category_id"`
	ParentCategoryID int    `json:"discourse_parent_category_id" yaml:"discourse_parent_category_id"`
}

type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string {
	return e.Message
}
