package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/stream"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestBaseConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := BaseConfig{Name: "seqdemo"}
		cfg.ApplyDefaults()
		if cfg.Environment != "development" {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := BaseConfig{Name: "seqdemo", Environment: "production"}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})
}

func TestEngineConfig(t *testing.T) {
	var cfg EngineConfig
	cfg.ApplyDefaults()
	if cfg.Workers != runtime.GOMAXPROCS(0) {
		t.Errorf("expected GOMAXPROCS workers, got %d", cfg.Workers)
	}
	if cfg.MinPartition != 1 {
		t.Errorf("expected min partition 1, got %d", cfg.MinPartition)
	}
	if cfg.MaxLineBytes() != 64<<20 {
		t.Errorf("expected 64MB max line, got %d", cfg.MaxLineBytes())
	}
	if len(cfg.Options()) != 2 {
		t.Errorf("expected two stream options, got %d", len(cfg.Options()))
	}
}

func TestEngineConfig_Apply(t *testing.T) {
	tests := []struct {
		name         string
		cfg          EngineConfig
		wantParallel bool
	}{
		{"sequential", EngineConfig{}, false},
		{"parallel", EngineConfig{Parallel: true, Workers: 2}, true},
		{"parallel unordered", EngineConfig{Parallel: true, Unordered: true, Workers: 2}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := Apply(tc.cfg, stream.Range(0, 10))
			if s.IsParallel() != tc.wantParallel {
				t.Errorf("expected parallel=%v", tc.wantParallel)
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"10MB", 10 << 20},
		{"512KB", 512 << 10},
		{"2GB", 2 << 30},
		{"1024", 1024},
		{"  10mb  ", 10 << 20},
		{"", 7},
		{"invalid", 7},
		{"-5KB", 7},
	}
	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := ParseSize(tc.input, 7); got != tc.want {
				t.Errorf("ParseSize(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		cfg := Config{Base: BaseConfig{Name: "seqdemo"}}
		cfg.ApplyDefaults()
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"missing name", func(c *Config) { c.Base.Name = "" }, false},
		{"bad environment", func(c *Config) { c.Base.Environment = "qa" }, false},
		{"negative workers", func(c *Config) { c.Engine.Workers = -1 }, false},
		{"sample rate above one", func(c *Config) { c.Telemetry.SampleRate = 1.5 }, false},
		{"bad endpoint", func(c *Config) { c.Telemetry.Endpoint = "no-port" }, false},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected error")
			}
		})
	}

	cfg := valid()
	cfg.Engine.Workers = 5000
	if err := cfg.Validate(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
base:
  name: seqdemo
  environment: staging
  version: "1.2.0"
logging:
  level: warn
engine:
  parallel: true
  workers: 3
  min_partition: 50
  max_line: 1MB
telemetry:
  sample_rate: 0.25
  interval: 30s
`)

	cfg, err := Load("seqdemo", WithConfigFile(path), WithFileSystem(RealFileSystem{}))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := Config{
		Base:    BaseConfig{Name: "seqdemo", Environment: "staging", Version: "1.2.0"},
		Engine:  EngineConfig{Parallel: true, Workers: 3, MinPartition: 50, MaxLine: "1MB"},
		Telemetry: TelemetryConfig{
			Endpoint:   "localhost:4318",
			SampleRate: 0.25,
			Interval:   30 * time.Second,
		},
	}
	want.Logging = cfg.Logging
	if diff := cmp.Diff(want, *cfg); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("expected log level warn, got %q", cfg.Logging.Level)
	}
	if cfg.Engine.MaxLineBytes() != 1<<20 {
		t.Errorf("expected 1MB, got %d", cfg.Engine.MaxLineBytes())
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "engine:\n  workers: 3\n  min_partition: 10\n")
	t.Setenv("SEQKIT_ENGINE_WORKERS", "6")
	t.Setenv("SEQKIT_ENGINE_MIN_PARTITION", "64")
	t.Setenv("SEQKIT_LOGGING_LEVEL", "error")

	cfg, err := Load("seqdemo", WithConfigFile(path))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.Workers != 6 {
		t.Errorf("expected workers 6, got %d", cfg.Engine.Workers)
	}
	if cfg.Engine.MinPartition != 64 {
		t.Errorf("expected min partition 64, got %d", cfg.Engine.MinPartition)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("expected level error, got %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("SEQKIT_ENGINE_PARALLEL=true\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv never overwrites variables already present.
	t.Setenv("SEQKIT_ENGINE_PARALLEL", "")
	os.Unsetenv("SEQKIT_ENGINE_PARALLEL")

	cfg, err := Load("seqdemo", WithConfigFile(filepath.Join(dir, "absent.yml")), WithEnvFile(envPath))
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Engine.Parallel {
		t.Error("expected .env to enable parallel")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("seqdemo", WithConfigFile("/nonexistent/path.yml"), WithFileSystem(&mockFS{}))
	if err != nil {
		t.Fatalf("expected Load to succeed with missing file, got %v", err)
	}
	if cfg.Base.Name != "seqdemo" {
		t.Errorf("expected name from argument, got %q", cfg.Base.Name)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(string) error    { return nil }

func TestResolver(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		filepath.Join("cmd", "seqdemo", "config.yml"): true,
		"config.yml": true,
		".env":       true,
	}}
	files := (&Resolver{FileSystem: fs}).ResolveFiles("seqdemo", LoaderConfig{})
	want := ResolvedFiles{ConfigFile: filepath.Join("cmd", "seqdemo", "config.yml"), EnvFile: ".env"}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	explicit := (&Resolver{FileSystem: fs}).ResolveFiles("seqdemo", LoaderConfig{ConfigFile: "x.yml"})
	if explicit.ConfigFile != "x.yml" {
		t.Errorf("expected explicit path to win, got %q", explicit.ConfigFile)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"DEBUG", []string{"debug"}},
		{"ENGINE_WORKERS", []string{"engine.workers"}},
		{"ENGINE_MIN_PARTITION", []string{"engine.min.partition", "engine.min_partition", "engine_min.partition"}},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, envKeyVariants(tc.in)); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoaderOptions(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	WithConfigFile("/path/to/config.yml")(&lc)
	WithEnvFile("/path/to/.env")(&lc)
	if lc.FileSystem == nil || lc.ConfigFile != "/path/to/config.yml" || lc.EnvFile != "/path/to/.env" {
		t.Errorf("options not applied: %+v", lc)
	}
}
