// Package config loads runtime configuration for the job tracker from a JSON
// or YAML file, then applies environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/job-tracker/internal/llm"
	"gopkg.in/yaml.v3"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Defaults
const (
	DefaultPort                 = 8080
	DefaultExtractTimeout       = 60 * time.Second
	DefaultChatTimeout          = 60 * time.Second
	DefaultNotificationDuration = 3 * time.Second
	DefaultStorePath            = "data/state.json"
)

// Duration is a time.Duration that decodes from strings like "45s" in both
// JSON and YAML.
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return d.set(s)
	}
	var secs float64
	if err := json.Unmarshal(b, &secs); err != nil {
		return fmt.Errorf("invalid duration %s", string(b))
	}
	*d = Duration(secs * float64(time.Second))
	return nil
}

// UnmarshalYAML accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.set(node.Value)
}

func (d *Duration) set(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		*d = Duration(secs * float64(time.Second))
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config represents the runtime configuration. All fields are optional;
// missing values use defaults.
type Config struct {
	// Model endpoint. DoubaoAPIKey also serves the openai provider.
	Provider     string `json:"provider,omitempty" yaml:"provider"`
	DoubaoAPIKey string `json:"doubao_api_key,omitempty" yaml:"doubao_api_key"`
	GeminiAPIKey string `json:"gemini_api_key,omitempty" yaml:"gemini_api_key"`
	BaseURL      string `json:"base_url,omitempty" yaml:"base_url"`
	TextModel    string `json:"text_model,omitempty" yaml:"text_model"`
	VisionModel  string `json:"vision_model,omitempty" yaml:"vision_model"`
	ChatModel    string `json:"chat_model,omitempty" yaml:"chat_model"`

	ExtractTimeout Duration `json:"extract_timeout,omitempty" yaml:"extract_timeout"`
	ChatTimeout    Duration `json:"chat_timeout,omitempty" yaml:"chat_timeout"`

	// Persistence. StorePath is the file or sqlite path.
	StoreBackend string `json:"store_backend,omitempty" yaml:"store_backend"`
	StorePath    string `json:"store_path,omitempty" yaml:"store_path"`
	DatabaseURL  string `json:"database_url,omitempty" yaml:"database_url"`

	// Reminder digest
	TelegramToken  string `json:"telegram_token,omitempty" yaml:"telegram_token"`
	TelegramChatID int64  `json:"telegram_chat_id,omitempty" yaml:"telegram_chat_id"`

	// Behavior. Seed nil means start from demo data when nothing is stored.
	Port                 int      `json:"port,omitempty" yaml:"port"`
	NotificationDuration Duration `json:"notification_duration,omitempty" yaml:"notification_duration"`
	Seed                 *bool    `json:"seed,omitempty" yaml:"seed"`
	Verbose              bool     `json:"verbose,omitempty" yaml:"verbose"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Provider:             string(llm.ProviderDoubao),
		ExtractTimeout:       Duration(DefaultExtractTimeout),
		ChatTimeout:          Duration(DefaultChatTimeout),
		StoreBackend:         BackendMemory,
		Port:                 DefaultPort,
		NotificationDuration: Duration(DefaultNotificationDuration),
	}
}

// LoadConfig reads a JSON or YAML file (chosen by extension) over the
// defaults. It does not apply environment overrides.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
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

	cfg := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}
	return cfg, nil
}

// Load returns the defaults, or the file at path when one is given, with
// environment overrides applied and validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = LoadConfig(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables that are set.
func (c *Config) ApplyEnv() error {
	setString := func(key string, dst *string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString("LLM_PROVIDER", &c.Provider)
	setString("DOUBAO_API_KEY", &c.DoubaoAPIKey)
	setString("GEMINI_API_KEY", &c.GeminiAPIKey)
	setString("LLM_BASE_URL", &c.BaseURL)
	setString("LLM_TEXT_MODEL", &c.TextModel)
	setString("LLM_VISION_MODEL", &c.VisionModel)
	setString("LLM_CHAT_MODEL", &c.ChatModel)
	setString("STORE_BACKEND", &c.StoreBackend)
	setString("STORE_PATH", &c.StorePath)
	setString("DATABASE_URL", &c.DatabaseURL)
	setString("TELEGRAM_BOT_TOKEN", &c.TelegramToken)

	durations := map[string]*Duration{
		"EXTRACT_TIMEOUT":       &c.ExtractTimeout,
		"CHAT_TIMEOUT":          &c.ChatTimeout,
		"NOTIFICATION_DURATION": &c.NotificationDuration,
	}
	for key, dst := range durations {
		if v := os.Getenv(key); v != "" {
			if err := dst.set(v); err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
		}
	}

	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID: %v", err)
		}
		c.TelegramChatID = id
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT: %v", err)
		}
		c.Port = port
	}
	return nil
}

// Validate checks enums and ranges. Required secrets are checked by the
// commands that need them.
func (c *Config) Validate() error {
	switch llm.Provider(c.Provider) {
	case llm.ProviderDoubao, llm.ProviderOpenAI, llm.ProviderGemini:
	default:
		return fmt.Errorf("config error: unknown provider %q", c.Provider)
	}

	switch c.StoreBackend {
	case BackendMemory, BackendFile, BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config error: unknown store backend %q", c.StoreBackend)
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	if c.ExtractTimeout < 0 || c.ChatTimeout < 0 || c.NotificationDuration < 0 {
		return fmt.Errorf("config error: durations must be non-negative")
	}
	return nil
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	if llm.Provider(c.Provider) == llm.ProviderGemini {
		return c.GeminiAPIKey
	}
	return c.DoubaoAPIKey
}

// LLMConfig builds the model client configuration.
func (c *Config) LLMConfig() *llm.Config {
	cfg := llm.ConfigFor(llm.Provider(c.Provider))
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	if c.TextModel != "" {
		cfg = cfg.WithModel(llm.TierText, c.TextModel)
	}
	if c.VisionModel != "" {
		cfg = cfg.WithModel(llm.TierVision, c.VisionModel)
	}
	if c.ChatModel != "" {
		cfg = cfg.WithModel(llm.TierChat, c.ChatModel)
	}
	return cfg
}

// ExtractTimeoutOrDefault returns the extraction timeout.
func (c *Config) ExtractTimeoutOrDefault() time.Duration {
	return orDefault(c.ExtractTimeout, DefaultExtractTimeout)
}

// ChatTimeoutOrDefault returns the chat reply timeout.
func (c *Config) ChatTimeoutOrDefault() time.Duration {
	return orDefault(c.ChatTimeout, DefaultChatTimeout)
}

// NotificationDurationOrDefault returns the notification lifetime.
func (c *Config) NotificationDurationOrDefault() time.Duration {
	return orDefault(c.NotificationDuration, DefaultNotificationDuration)
}

// StorePathOrDefault returns the snapshot path for file and sqlite backends.
func (c *Config) StorePathOrDefault() string {
	if c.StorePath != "" {
		return c.StorePath
	}
	if c.StoreBackend == BackendSQLite {
		return "data/state.db"
	}
	return DefaultStorePath
}

// ShouldSeed reports whether an empty store starts from demo data.
func (c *Config) ShouldSeed() bool {
	return c.Seed == nil || *c.Seed
}

func orDefault(d Duration, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return time.Duration(d)
}
