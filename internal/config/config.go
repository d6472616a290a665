package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Hasura   HasuraConfig
	Google   GoogleConfig
	Slack    SlackConfig
	MSTeams  MSTeamsConfig
	Notion   NotionConfig
	Briefing BriefingConfig
	External ExternalConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        // Default: "127.0.0.1"
	Port            int           // Default: 8080
	ShutdownTimeout time.Duration // Default: 30s
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // Default: "info" (trace, debug, info, warn, error, fatal, panic)
	Environment string // production|development|staging|test (affects format)
}

// HasuraConfig holds the GraphQL credential-store settings
type HasuraConfig struct {
	Endpoint    string // Required, e.g. https://hasura.example.com/v1/graphql
	AdminSecret string
	Timeout     time.Duration
}

// GoogleConfig holds Google OAuth client settings
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string // OAuth callback, e.g. http://localhost:8080/api/v1/auth/google/callback
}

// SlackConfig holds Slack workspace settings
type SlackConfig struct {
	BotToken string // Optional; enables the Slack collaborator
}

// MSTeamsConfig holds Microsoft Graph settings
type MSTeamsConfig struct {
	GraphBaseURL string // Default: https://graph.microsoft.com/v1.0
}

// NotionConfig holds Notion API settings
type NotionConfig struct {
	APIKey          string
	TasksDatabaseID string // Required for task queries in the briefing
}

// BriefingConfig holds the scheduled morning-briefing settings
type BriefingConfig struct {
	CronSpec string   // Default: "0 0 7 * * *" (07:00 daily, with seconds field)
	UserIDs  []string // Users who receive a scheduled briefing
}

// ExternalConfig holds secrets that don't belong to a single integration
type ExternalConfig struct {
	APIKey             string // Protects the skill endpoints
	TokenEncryptionKey string // 32-byte hex key for OAuth tokens at rest
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation failed for %s: %s", e.Field, e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var sb strings.Builder
	sb.WriteString("configuration validation failed:\n")
	for _, err := range e {
		sb.WriteString(fmt.Sprintf("  - %s: %s\n", err.Field, err.Message))
	}
	return sb.String()
}

// Constants for default values
const (
	DefaultServerHost      = "127.0.0.1"
	DefaultServerPort      = 8080
	DefaultShutdownTimeout = 30 * time.Second
	DefaultHasuraTimeout   = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultEnvironment     = "development"
	DefaultGraphBaseURL    = "https://graph.microsoft.com/v1.0"
	DefaultBriefingCron    = "0 0 7 * * *"
)

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("HOST", DefaultServerHost),
			Port:            getEnvAsInt("PORT", DefaultServerPort),
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", DefaultLogLevel),
			Environment: getEnv("APP_ENV", DefaultEnvironment),
		},
		Hasura: HasuraConfig{
			Endpoint:    getEnv("HASURA_GRAPHQL_ENDPOINT", ""),
			AdminSecret: getEnv("HASURA_ADMIN_SECRET", ""),
			Timeout:     DefaultHasuraTimeout,
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		},
		Slack: SlackConfig{
			BotToken: getEnv("SLACK_BOT_TOKEN", ""),
		},
		MSTeams: MSTeamsConfig{
			GraphBaseURL: getEnv("MSGRAPH_BASE_URL", DefaultGraphBaseURL),
		},
		Notion: NotionConfig{
			APIKey:          getEnv("NOTION_API_KEY", ""),
			TasksDatabaseID: getEnv("NOTION_TASKS_DATABASE_ID", ""),
		},
		Briefing: BriefingConfig{
			CronSpec: getEnv("BRIEFING_CRON_SPEC", DefaultBriefingCron),
			UserIDs:  getEnvAsSlice("BRIEFING_USER_IDS"),
		},
		External: ExternalConfig{
			APIKey:             getEnv("AGENT_API_KEY", ""),
			TokenEncryptionKey: getEnv("TOKEN_ENCRYPTION_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks configuration for errors
func (c *Config) Validate() error {
	var errors ValidationErrors

	if c.Hasura.Endpoint == "" {
		errors = append(errors, ValidationError{
			Field:   "HASURA_GRAPHQL_ENDPOINT",
			Message: "hasura endpoint is required",
		})
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "PORT",
			Message: fmt.Sprintf("port must be between 0 and 65535, got %d", c.Server.Port),
		})
	}

	validLogLevels := []string{"trace", "debug", "info", "warn", "warning", "error", "fatal", "panic"}
	if !contains(validLogLevels, strings.ToLower(c.Logger.Level)) {
		errors = append(errors, ValidationError{
			Field:   "LOG_LEVEL",
			Message: fmt.Sprintf("invalid log level %q, must be one of: %v", c.Logger.Level, validLogLevels),
		})
	}

	validEnvs := []string{"production", "development", "staging", "test"}
	if !contains(validEnvs, c.Logger.Environment) {
		errors = append(errors, ValidationError{
			Field:   "APP_ENV",
			Message: fmt.Sprintf("invalid environment %q, must be one of: %v", c.Logger.Environment, validEnvs),
		})
	}

	if c.Logger.Environment == "production" {
		if c.External.APIKey == "" {
			errors = append(errors, ValidationError{
				Field:   "AGENT_API_KEY",
				Message: "API key is required in production",
			})
		}
		if c.External.TokenEncryptionKey == "" {
			errors = append(errors, ValidationError{
				Field:   "TOKEN_ENCRYPTION_KEY",
				Message: "token encryption key is required in production",
			})
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// getEnv returns an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns an environment variable as int or a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice returns a comma-separated environment variable as a slice
func getEnvAsSlice(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}
	var values []string
	for _, p := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
