package netatmo

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the file-based configuration for building a client and auth
// session. All fields are optional except the client id and secret; either a
// username/password pair or a refresh token must be present for the session
// to authenticate.
type Config struct {
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Username     string   `yaml:"username"`
	Password     string   `yaml:"password"`
	RefreshToken string   `yaml:"refresh_token"`
	Scopes       []string `yaml:"scopes"`

	BaseURL    string `yaml:"base_url"`
	UserPrefix string `yaml:"user_prefix"`

	// TokenFile is where the auth session persists tokens between runs.
	// Empty disables persistence.
	TokenFile string `yaml:"token_file"`

	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// setDefaults fills unset fields with their documented defaults.
func (c *Config) setDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if len(c.Scopes) == 0 {
		c.Scopes = DefaultScopes()
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = int(DefaultTimeout / time.Second)
	}
}

// Validate checks that the configuration can produce a working auth session.
func (c *Config) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("config: client_id is required")
	}
	if c.ClientSecret == "" {
		return fmt.Errorf("config: client_secret is required")
	}
	if c.RefreshToken == "" && (c.Username == "" || c.Password == "") {
		return fmt.Errorf("config: either refresh_token or username and password are required")
	}
	return nil
}

// Credentials returns the OAuth credentials described by the configuration.
func (c *Config) Credentials() Credentials {
	return Credentials{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Username:     c.Username,
		Password:     c.Password,
		RefreshToken: c.RefreshToken,
		Scopes:       c.Scopes,
	}
}

// LoadConfig reads a YAML configuration file. ${VAR} references in the file
// are expanded from the environment before parsing, so secrets can stay out
// of the file itself.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses YAML configuration bytes, expanding ${VAR} environment
// references and applying defaults.
func ParseConfig(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing yaml: %w", err)
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
