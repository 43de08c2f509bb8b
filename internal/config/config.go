// Package config loads settings from .env, an optional YAML file and the
// environment, in that order of precedence.
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBackendURL   = "http://localhost:8000"
	DefaultBaseDelay    = 2000 * time.Millisecond
	DefaultMaxDelay     = 16000 * time.Millisecond
	DefaultFetchTimeout = 10 * time.Second
	DefaultPort         = "3000"
	DefaultVoiceAPIURL  = "https://api.vapi.ai"
	defaultConfigPath   = "configs/linguacv.yaml"
)

type Config struct {
	BackendURL string `yaml:"backend_url"`
	// Poll timings are milliseconds in YAML and env.
	PollBaseMS     int    `yaml:"poll_base_ms"`
	PollMaxMS      int    `yaml:"poll_max_ms"`
	FetchTimeoutMS int    `yaml:"fetch_timeout_ms"`
	Port           string `yaml:"port"`
	ChromePath     string `yaml:"chrome_path"`
	ArtifactDir    string `yaml:"artifact_dir"`
	DatabaseURL    string `yaml:"exports_database_url"`
	LogJSON        bool   `yaml:"log_json"`
	Debug          bool   `yaml:"debug"`

	Voice VoiceConfig `yaml:"voice"`
}

type VoiceConfig struct {
	APIURL      string `yaml:"api_url"`
	APIKey      string `yaml:"api_key"`
	AssistantID string `yaml:"assistant_id"`
}

// Enabled reports whether voice sessions can be started.
func (v VoiceConfig) Enabled() bool {
	return v.APIURL != "" && v.AssistantID != ""
}

func (c *Config) BaseDelay() time.Duration {
	return time.Duration(c.PollBaseMS) * time.Millisecond
}

func (c *Config) MaxDelay() time.Duration {
	return time.Duration(c.PollMaxMS) * time.Millisecond
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		BackendURL:     DefaultBackendURL,
		PollBaseMS:     int(DefaultBaseDelay / time.Millisecond),
		PollMaxMS:      int(DefaultMaxDelay / time.Millisecond),
		FetchTimeoutMS: int(DefaultFetchTimeout / time.Millisecond),
		Port:           DefaultPort,
		Voice:          VoiceConfig{APIURL: DefaultVoiceAPIURL},
	}
}

// Load reads configuration from .env, the YAML file named by
// LINGUACV_CONFIG (or configs/linguacv.yaml), and the environment, in that
// order of increasing precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	path := os.Getenv("LINGUACV_CONFIG")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.BackendURL, "BACKEND_URL")
	setString(&c.Port, "PORT")
	setString(&c.ChromePath, "CHROME_PATH")
	setString(&c.ArtifactDir, "ARTIFACT_DIR")
	setString(&c.DatabaseURL, "EXPORTS_DATABASE_URL")
	setString(&c.Voice.APIURL, "VOICE_API_URL")
	setString(&c.Voice.APIKey, "VOICE_API_KEY")
	setString(&c.Voice.AssistantID, "VOICE_ASSISTANT_ID")

	for key, dst := range map[string]*int{
		"POLL_BASE_MS":     &c.PollBaseMS,
		"POLL_MAX_MS":      &c.PollMaxMS,
		"FETCH_TIMEOUT_MS": &c.FetchTimeoutMS,
	} {
		if err := setInt(dst, key); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*bool{
		"LOG_JSON": &c.LogJSON,
		"DEBUG":    &c.Debug,
	} {
		if err := setBool(dst, key); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects settings the poller and HTTP client cannot run with.
func (c *Config) Validate() error {
	c.BackendURL = strings.TrimRight(strings.TrimSpace(c.BackendURL), "/")
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.WithHint(
			errors.Newf("invalid backend url %q", c.BackendURL),
			"set BACKEND_URL to something like http://localhost:8000",
		)
	}
	if c.PollBaseMS <= 0 {
		return errors.Newf("poll_base_ms must be positive, got %d", c.PollBaseMS)
	}
	if c.PollMaxMS < c.PollBaseMS {
		return errors.Newf("poll_max_ms (%d) must not be below poll_base_ms (%d)", c.PollMaxMS, c.PollBaseMS)
	}
	if c.FetchTimeoutMS <= 0 {
		return errors.Newf("fetch_timeout_ms must be positive, got %d", c.FetchTimeoutMS)
	}
	if c.Port == "" {
		c.Port = DefaultPort
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", key)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return errors.Wrapf(err, "invalid %s", key)
	}
	*dst = b
	return nil
}
