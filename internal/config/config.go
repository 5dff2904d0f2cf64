package config

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Quiz struct {
		TTL           string `yaml:"ttl"`
		QuestionCount int    `yaml:"question_count"`
		TimeLimit     int    `yaml:"time_limit"`
		Tick          string `yaml:"tick"`
	} `yaml:"quiz"`
	Auth struct {
		Secret     string `yaml:"secret"`
		TokenTTL   string `yaml:"token_ttl"`
		CookieName string `yaml:"cookie_name"`
		Issuer     string `yaml:"issuer"`
		IssuerKey  string `yaml:"issuer_key"`
	} `yaml:"auth"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// Load reads YAML config from path and fills unset quiz, auth and log fields.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Quiz.QuestionCount <= 0 {
		c.Quiz.QuestionCount = 5
	}
	if c.Quiz.TimeLimit <= 0 {
		c.Quiz.TimeLimit = 30
	}
	if c.Auth.CookieName == "" {
		c.Auth.CookieName = "quiz_session"
	}
	if c.Auth.Secret == "" {
		c.Auth.Secret = os.Getenv("AUTH_SECRET")
	}
	if c.Auth.IssuerKey == "" {
		c.Auth.IssuerKey = os.Getenv("AUTH_ISSUER_KEY")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}

// placeholderSecrets are sample values that must never sign real sessions.
var placeholderSecrets = map[string]bool{"change-me": true, "changeme": true, "secret": true}

// ValidateAuth rejects missing or placeholder signing keys.
func (c Config) ValidateAuth() error {
	switch {
	case c.Auth.Secret == "":
		return errors.New("auth secret not configured")
	case placeholderSecrets[c.Auth.Secret]:
		return errors.New("auth secret is a placeholder; set auth.secret or AUTH_SECRET")
	case c.Auth.IssuerKey == "":
		return errors.New("auth issuer key not configured")
	case placeholderSecrets[c.Auth.IssuerKey]:
		return errors.New("auth issuer key is a placeholder; set auth.issuer_key or AUTH_ISSUER_KEY")
	}
	return nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
