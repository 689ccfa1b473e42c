package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		s, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if s.Rate.Ceiling != 6 || s.Rate.IntervalSec != 60 {
			t.Errorf("rate defaults = %d/%ds", s.Rate.Ceiling, s.Rate.IntervalSec)
		}
		if s.Retry.MaxAttempts != 5 {
			t.Errorf("max_attempts = %d, want 5", s.Retry.MaxAttempts)
		}
		if s.RequestTimeout() != 20*time.Second {
			t.Errorf("request timeout = %v", s.RequestTimeout())
		}
		if s.WallClock() != 0 {
			t.Errorf("wall clock = %v, want unlimited", s.WallClock())
		}
	})

	t.Run("partial file overrides only named values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `rate:
  ceiling: 3
  interval_sec: 120
run:
  wall_clock_min: 30
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		s, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if s.Rate.Ceiling != 3 {
			t.Errorf("ceiling = %d, want 3", s.Rate.Ceiling)
		}
		if s.RateInterval() != 2*time.Minute {
			t.Errorf("interval = %v", s.RateInterval())
		}
		if s.WallClock() != 30*time.Minute {
			t.Errorf("wall clock = %v", s.WallClock())
		}
		if s.Retry.MaxAttempts != 5 {
			t.Errorf("max_attempts = %d, untouched default expected", s.Retry.MaxAttempts)
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		cases := []struct {
			name    string
			content string
		}{
			{"zero ceiling", "rate:\n  ceiling: 0\n"},
			{"zero interval", "rate:\n  interval_sec: 0\n"},
			{"zero attempts", "retry:\n  max_attempts: 0\n"},
			{"negative auth retries", "retry:\n  auth_retries: -1\n"},
			{"negative wall clock", "run:\n  wall_clock_min: -5\n"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "config.yaml")
				if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
					t.Fatalf("failed to write config: %v", err)
				}
				if _, err := Load(path); err == nil {
					t.Fatal("expected validation error")
				}
			})
		}
	})

	t.Run("malformed yaml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		os.WriteFile(path, []byte("rate: [broken\n"), 0644)
		if _, err := Load(path); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("duration accessors", func(t *testing.T) {
		s := defaults()
		if s.PenaltyBase() != 2*time.Second {
			t.Errorf("penalty base = %v", s.PenaltyBase())
		}
		if s.PenaltyCap() != 5*time.Minute {
			t.Errorf("penalty cap = %v", s.PenaltyCap())
		}
	})
}

func TestLoadCredentials(t *testing.T) {
	t.Run("both set", func(t *testing.T) {
		t.Setenv("NAVER_ID", "someone")
		t.Setenv("NAVER_PW", "secret")

		c, err := LoadCredentials()
		if err != nil {
			t.Fatalf("LoadCredentials failed: %v", err)
		}
		if c.ID != "someone" || c.Password != "secret" {
			t.Errorf("got %+v", c)
		}
	})

	t.Run("missing password", func(t *testing.T) {
		t.Setenv("NAVER_ID", "someone")
		t.Setenv("NAVER_PW", "")

		if _, err := LoadCredentials(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("missing id", func(t *testing.T) {
		t.Setenv("NAVER_ID", "")
		t.Setenv("NAVER_PW", "secret")

		if _, err := LoadCredentials(); err == nil {
			t.Fatal("expected error")
		}
	})
}
