package config

import (
	"time"

	"github.com/kbukum/seqkit/observability"
)

// TelemetryConfig controls OpenTelemetry export. When Enabled is false the
// engine's spans and metrics go to the no-op global providers.
type TelemetryConfig struct {
	Enabled    bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint" validate:"omitempty,hostname_port"`
	Insecure   bool          `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64       `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Interval   time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults applies default values to telemetry configuration.
func (c *TelemetryConfig) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = "localhost:4318"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 1.0
	}
	if c.Interval == 0 {
		c.Interval = 15 * time.Second
	}
}

func (c TelemetryConfig) export(base BaseConfig) observability.Export {
	return observability.Export{
		ServiceName:    base.Name,
		ServiceVersion: base.Version,
		Environment:    base.Environment,
		Endpoint:       c.Endpoint,
		Insecure:       c.Insecure,
	}
}

// TracerConfig builds the tracer settings for base.
func (c TelemetryConfig) TracerConfig(base BaseConfig) observability.TracerConfig {
	return observability.TracerConfig{Export: c.export(base), SampleRate: c.SampleRate}
}

// MeterConfig builds the meter settings for base.
func (c TelemetryConfig) MeterConfig(base BaseConfig) observability.MeterConfig {
	return observability.MeterConfig{Export: c.export(base), Interval: c.Interval}
}
