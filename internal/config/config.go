// Package config loads the revq configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roasbeef/revq/internal/review"
	"github.com/roasbeef/revq/internal/sequencer"
)

// DefaultConfigFilename is the config file looked up when no explicit
// path is given.
const DefaultConfigFilename = "revq.yaml"

// GitHubConfig names the repository and credential used for posting
// actions.
type GitHubConfig struct {
	// Owner and Repo name the repository under review.
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`

	// Token is the API credential. When empty, TokenEnv names the
	// environment variable to read it from.
	Token    string `yaml:"token"`
	TokenEnv string `yaml:"token_env"`
}

// ResolveToken returns the configured token, falling back to the named
// environment variable.
func (g *GitHubConfig) ResolveToken() string {
	if g.Token != "" {
		return g.Token
	}
	if g.TokenEnv != "" {
		return os.Getenv(g.TokenEnv)
	}

	return ""
}

// LLMConfig names the model endpoint.
type LLMConfig struct {
	// Model is the model identifier to request.
	Model string `yaml:"model"`

	// APIKey is the endpoint credential. When empty, APIKeyEnv names
	// the environment variable to read it from.
	APIKey    string `yaml:"api_key"`
	APIKeyEnv string `yaml:"api_key_env"`

	// BaseURL overrides the endpoint, mainly for tests and proxies.
	BaseURL string `yaml:"base_url"`
}

// ResolveAPIKey returns the configured key, falling back to the named
// environment variable.
func (l *LLMConfig) ResolveAPIKey() string {
	if l.APIKey != "" {
		return l.APIKey
	}
	if l.APIKeyEnv != "" {
		return os.Getenv(l.APIKeyEnv)
	}

	return ""
}

// ReviewConfig tunes the review pipeline.
type ReviewConfig struct {
	// Language is the natural language for synthesized comments.
	Language string `yaml:"language"`

	// Strategy names the sequencer strategy for multi-agent runs.
	Strategy string `yaml:"strategy"`

	// ApprovalThreshold is the least severity that blocks
	// auto-approval: critical, major, minor, or none.
	ApprovalThreshold string `yaml:"approval_threshold"`

	// MaxTurns bounds a multi-agent run.
	MaxTurns int `yaml:"max_turns"`

	// Specialists enables the concurrent specialist passes.
	Specialists bool `yaml:"specialists"`
}

// LogConfig tunes structured logging.
type LogConfig struct {
	// Level is the minimum level: trace, debug, info, warn, error.
	Level string `yaml:"level"`

	// Dir is the rotating log file directory. Empty disables file
	// logging.
	Dir string `yaml:"dir"`
}

// Config is the full revq configuration.
type Config struct {
	GitHub GitHubConfig `yaml:"github"`
	LLM    LLMConfig    `yaml:"llm"`
	Review ReviewConfig `yaml:"review"`
	Log    LogConfig    `yaml:"log"`

	// DBPath is the SQLite database path.
	DBPath string `yaml:"db_path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:     "claude-sonnet-4-5",
			APIKeyEnv: "ANTHROPIC_API_KEY",
		},
		GitHub: GitHubConfig{
			TokenEnv: "GITHUB_TOKEN",
		},
		Review: ReviewConfig{
			Language:          "English",
			Strategy:          "workflow",
			ApprovalThreshold: string(review.ThresholdMajor),
			MaxTurns:          9,
		},
		Log: LogConfig{
			Level: "info",
		},
		DBPath: filepath.Join(".", "revq.db"),
	}
}

// Load reads the config file at path, layering it over the defaults. A
// missing file at the default location is not an error; an explicitly
// named missing file is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err) && !explicit:
		return cfg, nil

	case err != nil:
		return nil, fmt.Errorf("unable to read config %s: %w",
			path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config %s: %w",
			path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks cross-field consistency. Credentials are not checked
// here: commands that do not touch the network must work without them.
func (c *Config) Validate() error {
	if _, err := review.ParseApprovalThreshold(
		c.Review.ApprovalThreshold,
	); err != nil {
		return err
	}

	if _, err := sequencer.NewStrategy(c.Review.Strategy); err != nil {
		return err
	}

	if c.Review.MaxTurns < 1 {
		return fmt.Errorf("max_turns must be at least 1, got %d",
			c.Review.MaxTurns)
	}

	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "error", "critical", "off":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	return nil
}
