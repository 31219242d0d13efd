package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables read on top of the optional YAML file.
const (
	EnvWebhookURL     = "WEBHOOK_URL"
	EnvGTAAPIKey      = "GTA_API_KEY"
	EnvGTABaseURL     = "GTA_BASE_URL"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	EnvPushgatewayURL = "PUSHGATEWAY_URL"
	EnvHTTPTimeout    = "HTTP_TIMEOUT"
)

// ErrMissingEnv is the sentinel behind every MissingEnvError.
var ErrMissingEnv = errors.New("required environment variable not set")

// MissingEnvError names the required variable that was empty.
type MissingEnvError struct {
	Var string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("the '%s' environment variable is not set", e.Var)
}

func (e *MissingEnvError) Unwrap() error { return ErrMissingEnv }

type CommonHTTP struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type GTAConfig struct {
	BaseURL string     `yaml:"base_url"` // e.g. https://api.globaltradealert.org
	APIKey  string     `yaml:"api_key"`  // sent as "Authorization: APIKey <key>"
	HTTP    CommonHTTP `yaml:"http"`
}

type TeamsConfig struct {
	WebhookURL string     `yaml:"webhook_url"` // Teams incoming webhook
	HTTP       CommonHTTP `yaml:"http"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // trace|debug|info|warn|error
	Format string `yaml:"format"` // console|json
}

type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url"` // empty disables the push
	Job            string `yaml:"job"`
}

type Config struct {
	GTA     GTAConfig     `yaml:"gta"`
	Teams   TeamsConfig   `yaml:"teams"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// Load reads the optional YAML file at path, overlays the environment seen
// through getenv and fills defaults. It does not check required values; see
// Validate.
func Load(path string, getenv func(string) string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	}
	if getenv == nil {
		getenv = os.Getenv
	}
	if err := c.applyEnv(getenv); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Teams.WebhookURL, EnvWebhookURL)
	set(&c.GTA.APIKey, EnvGTAAPIKey)
	set(&c.GTA.BaseURL, EnvGTABaseURL)
	set(&c.Log.Level, EnvLogLevel)
	set(&c.Log.Format, EnvLogFormat)
	set(&c.Metrics.PushgatewayURL, EnvPushgatewayURL)

	if raw := strings.TrimSpace(getenv(EnvHTTPTimeout)); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s: invalid duration %q: %w", EnvHTTPTimeout, raw, err)
		}
		if d < 0 {
			return fmt.Errorf("%s: duration must be >= 0", EnvHTTPTimeout)
		}
		c.GTA.HTTP.Timeout = d
		c.Teams.HTTP.Timeout = d
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.GTA.BaseURL == "" {
		c.GTA.BaseURL = "https://api.globaltradealert.org"
	}
	if c.GTA.HTTP.Timeout == 0 {
		c.GTA.HTTP.Timeout = 15 * time.Second
	}
	if c.Teams.HTTP.Timeout == 0 {
		c.Teams.HTTP.Timeout = 10 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Metrics.Job == "" {
		c.Metrics.Job = "ms_teams_push"
	}
}

// Validate reports the first missing required value as a *MissingEnvError.
// The webhook is checked before the API key. requireWebhook is false for dry
// runs, which never post.
func (c *Config) Validate(requireWebhook bool) error {
	if requireWebhook && strings.TrimSpace(c.Teams.WebhookURL) == "" {
		return &MissingEnvError{Var: EnvWebhookURL}
	}
	if strings.TrimSpace(c.GTA.APIKey) == "" {
		return &MissingEnvError{Var: EnvGTAAPIKey}
	}
	return nil
}
