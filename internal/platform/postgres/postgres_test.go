package postgres

import "testing"

func TestConfigFromEnvDefaults(t *testing.T) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() err=%v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() err=%v", err)
	}
}

func TestConfigValidateRejections(t *testing.T) {
	base, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() err=%v", err)
	}

	cfg := base
	cfg.URL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for missing url")
	}

	cfg = base
	cfg.MaxIdleConns = cfg.MaxOpenConns + 1
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for idle > open")
	}

	cfg = base
	cfg.PingTimeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero ping timeout")
	}
}
