// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Agent provider names
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderHTTP      = "http" // remote agent service with submit/poll runs
)

// Defaults
const (
	DefaultPort          = 8080
	DefaultPollInterval  = 2 * time.Second
	DefaultTailorTimeout = 480 * time.Second
	DefaultMergeTimeout  = 90 * time.Second
	DefaultParseTimeout  = 120 * time.Second
)

// Duration is a time.Duration that reads "90s" style strings from JSON
type Duration time.Duration

// UnmarshalJSON accepts either a Go duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("duration must be a string or number of seconds")
	}
	*d = Duration(time.Duration(seconds * float64(time.Second)))
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// AgentConfig selects and configures the agent backend
type AgentConfig struct {
	Provider string `json:"provider,omitempty"`  // gemini, openai, anthropic, http
	APIKey   string `json:"api_key,omitempty"`   // provider API key
	Model    string `json:"model,omitempty"`     // overrides the provider default model
	BaseURL  string `json:"base_url,omitempty"`  // openai-compatible or http agent endpoint
	EngineID string `json:"engine_id,omitempty"` // engine identifier sent with every run

	PollInterval  Duration `json:"poll_interval,omitempty"`
	TailorTimeout Duration `json:"tailor_timeout,omitempty"`
	MergeTimeout  Duration `json:"merge_timeout,omitempty"`
	ParseTimeout  Duration `json:"parse_timeout,omitempty"`
}

// Config is the full service configuration. Fields may come from a JSON file,
// the environment, or both; environment values win.
type Config struct {
	Port        int         `json:"port,omitempty"`
	DatabaseURL string      `json:"database_url,omitempty"`
	DevMode     bool        `json:"dev_mode,omitempty"`  // expose diagnostic details to clients
	LogLevel    string      `json:"log_level,omitempty"` // debug, info, warn, error
	LogFormat   string      `json:"log_format,omitempty"`
	Agent       AgentConfig `json:"agent"`
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Load builds a Config from an optional JSON file overlaid with environment
// variables, then fills defaults. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields with any environment variables that are set.
func (c *Config) applyEnv() {
	c.Port = getEnvInt("PORT", c.Port)
	c.DatabaseURL = getEnvString("DATABASE_URL", c.DatabaseURL)
	c.DevMode = getEnvBool("DEV_MODE", c.DevMode)
	c.LogLevel = getEnvString("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvString("LOG_FORMAT", c.LogFormat)

	c.Agent.Provider = getEnvString("AGENT_PROVIDER", c.Agent.Provider)
	c.Agent.Model = getEnvString("AGENT_MODEL", c.Agent.Model)
	c.Agent.BaseURL = getEnvString("AGENT_BASE_URL", c.Agent.BaseURL)
	c.Agent.EngineID = getEnvString("AGENT_ENGINE_ID", c.Agent.EngineID)
	c.Agent.PollInterval = Duration(getEnvDuration("AGENT_POLL_INTERVAL", time.Duration(c.Agent.PollInterval)))
	c.Agent.TailorTimeout = Duration(getEnvDuration("AGENT_TAILOR_TIMEOUT", time.Duration(c.Agent.TailorTimeout)))
	c.Agent.MergeTimeout = Duration(getEnvDuration("AGENT_MERGE_TIMEOUT", time.Duration(c.Agent.MergeTimeout)))
	c.Agent.ParseTimeout = Duration(getEnvDuration("AGENT_PARSE_TIMEOUT", time.Duration(c.Agent.ParseTimeout)))

	// Provider-specific key names are accepted as well as the generic one.
	c.Agent.APIKey = getEnvString("AGENT_API_KEY", c.Agent.APIKey)
	if c.Agent.APIKey == "" {
		switch c.Agent.Provider {
		case ProviderOpenAI:
			c.Agent.APIKey = os.Getenv("OPENAI_API_KEY")
		case ProviderAnthropic:
			c.Agent.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		case ProviderGemini, "":
			c.Agent.APIKey = os.Getenv("GEMINI_API_KEY")
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		if c.DevMode {
			c.LogFormat = "text"
		} else {
			c.LogFormat = "json"
		}
	}
	if c.Agent.Provider == "" {
		c.Agent.Provider = ProviderGemini
	}
	c.Agent.Provider = strings.ToLower(c.Agent.Provider)
	if c.Agent.PollInterval == 0 {
		c.Agent.PollInterval = Duration(DefaultPollInterval)
	}
	if c.Agent.TailorTimeout == 0 {
		c.Agent.TailorTimeout = Duration(DefaultTailorTimeout)
	}
	if c.Agent.MergeTimeout == 0 {
		c.Agent.MergeTimeout = Duration(DefaultMergeTimeout)
	}
	if c.Agent.ParseTimeout == 0 {
		c.Agent.ParseTimeout = Duration(DefaultParseTimeout)
	}
}

// Validate checks that the configuration has valid values.
// Required-ness of the database URL is checked by the commands that need it.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}

	switch c.Agent.Provider {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
	case ProviderHTTP:
		if c.Agent.BaseURL == "" {
			return fmt.Errorf("config error: 'agent.base_url' is required for the http provider")
		}
	default:
		return fmt.Errorf("config error: unknown agent provider %q", c.Agent.Provider)
	}

	if c.Agent.PollInterval < 0 || c.Agent.TailorTimeout < 0 || c.Agent.MergeTimeout < 0 || c.Agent.ParseTimeout < 0 {
		return fmt.Errorf("config error: agent durations must be non-negative")
	}
	if time.Duration(c.Agent.PollInterval) > time.Duration(c.Agent.TailorTimeout) {
		return fmt.Errorf("config error: 'agent.poll_interval' exceeds 'agent.tailor_timeout'")
	}

	return nil
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
