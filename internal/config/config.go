package config

import (
	"time"

	"github.com/tolujimoh/flowdrift/internal/adapters/compliance"
	"github.com/tolujimoh/flowdrift/internal/adapters/store"
	"github.com/tolujimoh/flowdrift/internal/log"
	"github.com/tolujimoh/flowdrift/internal/reporting/text"
)

type Config struct {
	Settings   SettingsConfig    `yaml:"settings" mapstructure:"settings"`
	Store      store.Config      `yaml:"store" mapstructure:"store" validate:"required"`
	Compliance compliance.Config `yaml:"compliance" mapstructure:"compliance" validate:"required"`
}

type SettingsConfig struct {
	LogLevel     log.Level       `yaml:"log_level" mapstructure:"log_level"`
	LogFormat    log.Format      `yaml:"log_format" mapstructure:"log_format"`
	ReporterType string          `yaml:"reporter" mapstructure:"reporter" validate:"omitempty,oneof=text json"`
	Reporter     ReporterConfigs `yaml:"reporter_config" mapstructure:"reporter_config"`

	// Validation orchestrator tunables. The defaults match the behavior the
	// console exhibited before these were configurable.
	ComplianceThreshold float64       `yaml:"compliance_threshold" mapstructure:"compliance_threshold" validate:"gte=0,lte=100"`
	InitialWait         time.Duration `yaml:"initial_wait" mapstructure:"initial_wait"`
	PollInterval        time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	PollRetries         int           `yaml:"poll_retries" mapstructure:"poll_retries" validate:"gte=0,lte=10"`
}

type ReporterConfigs struct {
	Text *text.Config `yaml:"text,omitempty" mapstructure:"text"`
}

func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			LogLevel:            log.LevelInfo,
			LogFormat:           log.FormatText,
			ReporterType:        text.ReporterTypeText,
			Reporter:            ReporterConfigs{Text: &text.Config{NoColor: false}},
			ComplianceThreshold: 75,
			InitialWait:         30 * time.Second,
			PollInterval:        15 * time.Second,
			PollRetries:         2,
		},
		Store: store.Config{
			CacheTTL:    5 * time.Minute,
			MaxAttempts: 3,
		},
		Compliance: compliance.Config{
			RateLimitRPS: 10,
			MaxAttempts:  3,
		},
	}
}
