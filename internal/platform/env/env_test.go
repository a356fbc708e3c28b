package env

import (
	"testing"
	"time"
)

func TestString(t *testing.T) {
	if got := String("INFERSYNC_ENV_MISSING", "fallback"); got != "fallback" {
		t.Fatalf("String()=%q, want fallback", got)
	}
	t.Setenv("INFERSYNC_ENV_STRING", "value")
	if got := String("INFERSYNC_ENV_STRING", "fallback"); got != "value" {
		t.Fatalf("String()=%q, want value", got)
	}
}

func TestDuration(t *testing.T) {
	got, err := Duration("INFERSYNC_ENV_MISSING", 5*time.Second)
	if err != nil || got != 5*time.Second {
		t.Fatalf("Duration()=%v err=%v, want 5s", got, err)
	}
	t.Setenv("INFERSYNC_ENV_DURATION", "90s")
	got, err = Duration("INFERSYNC_ENV_DURATION", 5*time.Second)
	if err != nil || got != 90*time.Second {
		t.Fatalf("Duration()=%v err=%v, want 90s", got, err)
	}
	t.Setenv("INFERSYNC_ENV_DURATION", "soon")
	if _, err := Duration("INFERSYNC_ENV_DURATION", 5*time.Second); err == nil {
		t.Fatalf("Duration() expected parse error")
	}
}

func TestBool(t *testing.T) {
	got, err := Bool("INFERSYNC_ENV_MISSING", true)
	if err != nil || !got {
		t.Fatalf("Bool()=%v err=%v, want true", got, err)
	}
	t.Setenv("INFERSYNC_ENV_BOOL", "false")
	got, err = Bool("INFERSYNC_ENV_BOOL", true)
	if err != nil || got {
		t.Fatalf("Bool()=%v err=%v, want false", got, err)
	}
	t.Setenv("INFERSYNC_ENV_BOOL", "yep")
	if _, err := Bool("INFERSYNC_ENV_BOOL", true); err == nil {
		t.Fatalf("Bool() expected parse error")
	}
}

func TestInt(t *testing.T) {
	got, err := Int("INFERSYNC_ENV_MISSING", 7)
	if err != nil || got != 7 {
		t.Fatalf("Int()=%v err=%v, want 7", got, err)
	}
	t.Setenv("INFERSYNC_ENV_INT", "42")
	got, err = Int("INFERSYNC_ENV_INT", 7)
	if err != nil || got != 42 {
		t.Fatalf("Int()=%v err=%v, want 42", got, err)
	}
	t.Setenv("INFERSYNC_ENV_INT", "many")
	if _, err := Int("INFERSYNC_ENV_INT", 7); err == nil {
		t.Fatalf("Int() expected parse error")
	}
}
