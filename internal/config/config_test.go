package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:                 "8000",
		Env:                  "development",
		RespLookbackHours:    24,
		LiverLookbackHours:   48,
		KidneyLookbackHours:  48,
		HemoLookbackHours:    48,
		MinPressorEpisodeMin: 60,
		RatioToleranceHours:  4,
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_ProductionRequiresAuthSecret(t *testing.T) {
	cfg := validConfig()
	cfg.Env = "production"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for missing AUTH_SECRET in production")
	}
	cfg.AuthSecret = "s3cret"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsNonPositiveLookbacks(t *testing.T) {
	cfg := validConfig()
	cfg.KidneyLookbackHours = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero lookback")
	}
	cfg = validConfig()
	cfg.MinPressorEpisodeMin = -5
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative episode duration")
	}
}

func TestScoring_Conversion(t *testing.T) {
	cfg := validConfig()
	sc := cfg.Scoring()
	if sc.RespiratoryLookback != 24*time.Hour {
		t.Errorf("respiratory lookback: got %v", sc.RespiratoryLookback)
	}
	if sc.MinPressorEpisode != 60*time.Minute {
		t.Errorf("min pressor episode: got %v", sc.MinPressorEpisode)
	}
	if sc.RatioTolerance != 4*time.Hour {
		t.Errorf("ratio tolerance: got %v", sc.RatioTolerance)
	}
}
