package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/kbukum/seqkit/stream"
)

// EngineConfig selects how stream terminals evaluate.
type EngineConfig struct {
	// Parallel enables partitioned evaluation.
	Parallel bool `yaml:"parallel" mapstructure:"parallel"`
	// Unordered lets parallel ForEach deliver in completion order.
	Unordered bool `yaml:"unordered" mapstructure:"unordered"`
	// Workers bounds concurrent partitions; 0 means GOMAXPROCS.
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=0,lte=1024"`
	// MinPartition is the smallest number of elements given its own partition.
	MinPartition int `yaml:"min_partition" mapstructure:"min_partition" validate:"gte=0"`
	// MaxLine bounds one input line, e.g. "64MB".
	MaxLine string `yaml:"max_line" mapstructure:"max_line"`
}

// ApplyDefaults applies default values to engine configuration.
func (c *EngineConfig) ApplyDefaults() {
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.MinPartition == 0 {
		c.MinPartition = 1
	}
	if c.MaxLine == "" {
		c.MaxLine = "64MB"
	}
}

// Options converts the configuration into stream options for Parallel.
func (c EngineConfig) Options() []stream.Option {
	return []stream.Option{
		stream.WithWorkers(c.Workers),
		stream.WithMinPartition(c.MinPartition),
	}
}

// Apply switches s to the configured execution mode.
func Apply[T any](c EngineConfig, s *stream.Stream[T]) *stream.Stream[T] {
	if !c.Parallel {
		return s
	}
	s = stream.Parallel(s, c.Options()...)
	if c.Unordered {
		s = stream.Unordered(s)
	}
	return s
}

// MaxLineBytes returns MaxLine in bytes, or stream.MaxLineBytes when unset
// or unparsable.
func (c EngineConfig) MaxLineBytes() int {
	return int(ParseSize(c.MaxLine, stream.MaxLineBytes))
}

// ParseSize parses a human-readable size such as "10MB", "512KB" or "2GB"
// into bytes. It returns defaultBytes if s cannot be parsed.
func ParseSize(s string, defaultBytes int64) int64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return defaultBytes
	}

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "GB"):
		multiplier = 1 << 30
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "MB"):
		multiplier = 1 << 20
		s = s[:len(s)-2]
	case strings.HasSuffix(s, "KB"):
		multiplier = 1 << 10
		s = s[:len(s)-2]
	}

	var val int64
	if _, err := fmt.Sscanf(s, "%d", &val); err == nil && val > 0 {
		return val * multiplier
	}
	return defaultBytes
}
