// Package config handles the XDG configuration directory, the optional
// config.yaml file and the identity-service environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "todo"

	// ConfigFile is the optional settings filename.
	ConfigFile = "config.yaml"

	// SessionFile is the stored session filename.
	SessionFile = "session.json"

	// LogFile receives debug logs when --debug is set.
	LogFile = "debug.log"

	// DefaultAPIURL is the task API base URL.
	DefaultAPIURL = "https://todo-mern-vmue.onrender.com"

	// DefaultRequestTimeout bounds a single task API call.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultMessageTTL is how long a success message stays on screen.
	DefaultMessageTTL = 3 * time.Second
)

// Environment variables for identity-service configuration.
const (
	EnvIdentityAPIKey   = "TODO_IDENTITY_API_KEY"
	EnvIdentityEndpoint = "TODO_IDENTITY_ENDPOINT"
	EnvIdentityTokenURL = "TODO_IDENTITY_TOKEN_URL"
)

// Identity holds identity-service settings.
type Identity struct {
	// APIKey is the identity project's web API key.
	APIKey string `yaml:"api_key"`

	// Endpoint overrides the identity toolkit base URL.
	Endpoint string `yaml:"endpoint"`

	// TokenURL overrides the secure-token refresh endpoint.
	TokenURL string `yaml:"token_url"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// Ephemeral keeps the session in memory instead of session.json.
	Ephemeral bool

	// APIURL is the task API base URL.
	APIURL string

	// RequestTimeout bounds each task API call.
	RequestTimeout time.Duration

	// MessageTTL is how long a success message is shown.
	MessageTTL time.Duration

	// Identity holds identity-service settings.
	Identity Identity
}

// fileConfig mirrors config.yaml. Zero values leave defaults untouched.
type fileConfig struct {
	APIURL         string        `yaml:"api_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MessageTTL     time.Duration `yaml:"message_ttl"`
	Identity       Identity      `yaml:"identity"`
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/todo or $HOME/.config/todo.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{
		Dir:            dir,
		APIURL:         DefaultAPIURL,
		RequestTimeout: DefaultRequestTimeout,
		MessageTTL:     DefaultMessageTTL,
	}, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// Load merges config.yaml (if present) and the environment into c.
func (c *Config) Load() error {
	data, err := os.ReadFile(c.FilePath())
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to read %s: %w", ConfigFile, err)
	default:
		if err := c.merge(data); err != nil {
			return err
		}
	}

	if v := os.Getenv(EnvIdentityAPIKey); v != "" {
		c.Identity.APIKey = v
	}
	if v := os.Getenv(EnvIdentityEndpoint); v != "" {
		c.Identity.Endpoint = v
	}
	if v := os.Getenv(EnvIdentityTokenURL); v != "" {
		c.Identity.TokenURL = v
	}

	return c.Validate()
}

func (c *Config) merge(data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("invalid %s: %w", ConfigFile, err)
	}
	if fc.APIURL != "" {
		c.APIURL = fc.APIURL
	}
	if fc.RequestTimeout > 0 {
		c.RequestTimeout = fc.RequestTimeout
	}
	if fc.MessageTTL > 0 {
		c.MessageTTL = fc.MessageTTL
	}
	if fc.Identity.APIKey != "" {
		c.Identity.APIKey = fc.Identity.APIKey
	}
	if fc.Identity.Endpoint != "" {
		c.Identity.Endpoint = fc.Identity.Endpoint
	}
	if fc.Identity.TokenURL != "" {
		c.Identity.TokenURL = fc.Identity.TokenURL
	}
	return nil
}

// Validate checks the settings that would otherwise fail at request time.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_url: %q", c.APIURL)
	}
	c.APIURL = strings.TrimRight(c.APIURL, "/")
	return nil
}

// FilePath returns the path to config.yaml.
func (c *Config) FilePath() string {
	return filepath.Join(c.Dir, ConfigFile)
}

// SessionPath returns the path to the stored session file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.Dir, SessionFile)
}

// LogPath returns the path to the debug log.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, LogFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}
