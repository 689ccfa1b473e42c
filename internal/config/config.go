// Package config loads runner settings from .cafeloop/config.yaml and
// credentials from the environment. Settings govern pacing and budgets;
// credentials never touch disk.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks for the settings file.
const DefaultPath = ".cafeloop/config.yaml"

// Settings are the tunables for a run. Every field has a working default;
// the file only needs the values the operator wants to change.
type Settings struct {
	Cafe struct {
		BaseURL string `yaml:"base_url"`
		AuthURL string `yaml:"auth_url"`
		// RequestTimeoutSec bounds each HTTP call.
		RequestTimeoutSec int `yaml:"request_timeout_sec"`
	} `yaml:"cafe"`

	Rate struct {
		// Ceiling is the maximum comment actions per interval.
		Ceiling     int `yaml:"ceiling"`
		IntervalSec int `yaml:"interval_sec"`
		// PenaltyBaseMs/PenaltyCapSec bound the backoff applied after
		// throttle signals.
		PenaltyBaseMs int `yaml:"penalty_base_ms"`
		PenaltyCapSec int `yaml:"penalty_cap_sec"`
	} `yaml:"rate"`

	Retry struct {
		// MaxAttempts is the per-task ceiling for retryable failures.
		MaxAttempts int `yaml:"max_attempts"`
		// AuthRetries is the extra login attempts after a credential
		// rejection before the run aborts.
		AuthRetries int `yaml:"auth_retries"`
	} `yaml:"retry"`

	Run struct {
		// WallClockMin caps a run's total duration; 0 means unlimited.
		WallClockMin int `yaml:"wall_clock_min"`
	} `yaml:"run"`
}

// Credentials identify the posting account. Supplied via environment only.
type Credentials struct {
	ID       string
	Password string
}

func defaults() Settings {
	var s Settings
	s.Cafe.RequestTimeoutSec = 20
	s.Rate.Ceiling = 6
	s.Rate.IntervalSec = 60
	s.Rate.PenaltyBaseMs = 2000
	s.Rate.PenaltyCapSec = 300
	s.Retry.MaxAttempts = 5
	s.Retry.AuthRetries = 1
	return s
}

// Load reads settings from path (DefaultPath when empty). A missing file
// yields the defaults.
func Load(path string) (Settings, error) {
	if path == "" {
		path = DefaultPath
	}
	s := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return Settings{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}
	if err := s.validate(); err != nil {
		return Settings{}, fmt.Errorf("config %s: %w", path, err)
	}
	return s, nil
}

func (s Settings) validate() error {
	if s.Rate.Ceiling < 1 {
		return errors.New("rate.ceiling must be at least 1")
	}
	if s.Rate.IntervalSec < 1 {
		return errors.New("rate.interval_sec must be at least 1")
	}
	if s.Retry.MaxAttempts < 1 {
		return errors.New("retry.max_attempts must be at least 1")
	}
	if s.Retry.AuthRetries < 0 {
		return errors.New("retry.auth_retries must not be negative")
	}
	if s.Run.WallClockMin < 0 {
		return errors.New("run.wall_clock_min must not be negative")
	}
	return nil
}

// RequestTimeout returns the per-request timeout as a duration.
func (s Settings) RequestTimeout() time.Duration {
	return time.Duration(s.Cafe.RequestTimeoutSec) * time.Second
}

// RateInterval returns the rate window as a duration.
func (s Settings) RateInterval() time.Duration {
	return time.Duration(s.Rate.IntervalSec) * time.Second
}

// PenaltyBase returns the initial penalty backoff.
func (s Settings) PenaltyBase() time.Duration {
	return time.Duration(s.Rate.PenaltyBaseMs) * time.Millisecond
}

// PenaltyCap returns the maximum penalty backoff.
func (s Settings) PenaltyCap() time.Duration {
	return time.Duration(s.Rate.PenaltyCapSec) * time.Second
}

// WallClock returns the run budget, 0 for unlimited.
func (s Settings) WallClock() time.Duration {
	return time.Duration(s.Run.WallClockMin) * time.Minute
}

// LoadCredentials reads the posting account from NAVER_ID / NAVER_PW.
func LoadCredentials() (Credentials, error) {
	c := Credentials{
		ID:       os.Getenv("NAVER_ID"),
		Password: os.Getenv("NAVER_PW"),
	}
	if c.ID == "" || c.Password == "" {
		return Credentials{}, errors.New("NAVER_ID and NAVER_PW must be set")
	}
	return c, nil
}
