package inference

import (
	"errors"
	"strings"
	"time"

	"github.com/animus-labs/infersync/internal/platform/env"
)

type Config struct {
	BaseURL        string
	TokenURL       string
	ClientID       string
	ClientSecret   string
	Scopes         []string
	RequestTimeout time.Duration
}

func ConfigFromEnv() (Config, error) {
	requestTimeout, err := env.Duration("INFERSYNC_PROVIDER_REQUEST_TIMEOUT", 10*time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BaseURL:        env.String("INFERSYNC_PROVIDER_URL", "http://localhost:8090"),
		TokenURL:       env.String("INFERSYNC_PROVIDER_TOKEN_URL", ""),
		ClientID:       env.String("INFERSYNC_PROVIDER_CLIENT_ID", ""),
		ClientSecret:   env.String("INFERSYNC_PROVIDER_CLIENT_SECRET", ""),
		Scopes:         splitScopes(env.String("INFERSYNC_PROVIDER_SCOPES", "")),
		RequestTimeout: requestTimeout,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("provider url is required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("provider request timeout must be positive")
	}
	if strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.TokenURL) == "" {
		return errors.New("provider token url is required when a client id is set")
	}
	if strings.TrimSpace(c.ClientID) != "" && strings.TrimSpace(c.ClientSecret) == "" {
		return errors.New("provider client secret is required when a client id is set")
	}
	return nil
}

func splitScopes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
