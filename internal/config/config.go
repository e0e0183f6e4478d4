package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/icuscore/sofa2/internal/domain/sofa"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`
	AuthSecret  string `mapstructure:"AUTH_SECRET"`

	RespLookbackHours      int `mapstructure:"RESP_LOOKBACK_HOURS"`
	LiverLookbackHours     int `mapstructure:"LIVER_LOOKBACK_HOURS"`
	KidneyLookbackHours    int `mapstructure:"KIDNEY_LOOKBACK_HOURS"`
	HemoLookbackHours      int `mapstructure:"HEMO_LOOKBACK_HOURS"`
	MinPressorEpisodeMin   int `mapstructure:"MIN_PRESSOR_EPISODE_MINUTES"`
	RatioToleranceHours    int `mapstructure:"RATIO_TOLERANCE_HOURS"`
	SedationInvalidationHr int `mapstructure:"SEDATION_INVALIDATION_HOURS"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	def := sofa.DefaultConfig()
	v.SetDefault("RESP_LOOKBACK_HOURS", int(def.RespiratoryLookback.Hours()))
	v.SetDefault("LIVER_LOOKBACK_HOURS", int(def.LiverLookback.Hours()))
	v.SetDefault("KIDNEY_LOOKBACK_HOURS", int(def.KidneyLookback.Hours()))
	v.SetDefault("HEMO_LOOKBACK_HOURS", int(def.HemostasisLookback.Hours()))
	v.SetDefault("MIN_PRESSOR_EPISODE_MINUTES", int(def.MinPressorEpisode.Minutes()))
	v.SetDefault("RATIO_TOLERANCE_HOURS", int(def.RatioTolerance.Hours()))
	v.SetDefault("SEDATION_INVALIDATION_HOURS", int(def.SedationInvalidation.Hours()))

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_SECRET")
	v.BindEnv("RESP_LOOKBACK_HOURS")
	v.BindEnv("LIVER_LOOKBACK_HOURS")
	v.BindEnv("KIDNEY_LOOKBACK_HOURS")
	v.BindEnv("HEMO_LOOKBACK_HOURS")
	v.BindEnv("MIN_PRESSOR_EPISODE_MINUTES")
	v.BindEnv("RATIO_TOLERANCE_HOURS")
	v.BindEnv("SEDATION_INVALIDATION_HOURS")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run. Lookbacks and
// tolerances must be positive; in non-development modes AUTH_SECRET must
// be set so the API actually enforces authentication.
func (c *Config) Validate() error {
	if !c.IsDev() && c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET is required when ENV=%q", c.Env)
	}
	for name, v := range map[string]int{
		"RESP_LOOKBACK_HOURS":         c.RespLookbackHours,
		"LIVER_LOOKBACK_HOURS":        c.LiverLookbackHours,
		"KIDNEY_LOOKBACK_HOURS":       c.KidneyLookbackHours,
		"HEMO_LOOKBACK_HOURS":         c.HemoLookbackHours,
		"MIN_PRESSOR_EPISODE_MINUTES": c.MinPressorEpisodeMin,
		"RATIO_TOLERANCE_HOURS":       c.RatioToleranceHours,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be positive, got %d", name, v)
		}
	}
	if c.SedationInvalidationHr < 0 {
		return fmt.Errorf("SEDATION_INVALIDATION_HOURS must not be negative, got %d", c.SedationInvalidationHr)
	}
	return nil
}

// Scoring converts the environment knobs into the engine's immutable
// configuration value.
func (c *Config) Scoring() sofa.Config {
	return sofa.Config{
		RespiratoryLookback:  time.Duration(c.RespLookbackHours) * time.Hour,
		LiverLookback:        time.Duration(c.LiverLookbackHours) * time.Hour,
		KidneyLookback:       time.Duration(c.KidneyLookbackHours) * time.Hour,
		HemostasisLookback:   time.Duration(c.HemoLookbackHours) * time.Hour,
		MinPressorEpisode:    time.Duration(c.MinPressorEpisodeMin) * time.Minute,
		RatioTolerance:       time.Duration(c.RatioToleranceHours) * time.Hour,
		SedationInvalidation: time.Duration(c.SedationInvalidationHr) * time.Hour,
	}
}
