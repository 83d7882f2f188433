package version

import (
	"runtime/debug"
	"testing"
	"time"
)

func restore(t *testing.T) {
	t.Helper()
	v, c, b, bt := Version, GitCommit, GitBranch, BuildTime
	t.Cleanup(func() {
		Version, GitCommit, GitBranch, BuildTime = v, c, b, bt
	})
}

func TestGet_LinkerValues(t *testing.T) {
	restore(t)
	Version = "1.0.0"
	GitCommit = "abc1234"
	GitBranch = "main"
	BuildTime = "2024-01-15T10:30:00Z"

	info := Get()
	if info.Version != "1.0.0" || info.GitCommit != "abc1234" {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.BuildDate.Year() != 2024 {
		t.Errorf("expected build year 2024, got %d", info.BuildDate.Year())
	}
	if info.GoVersion == "" {
		t.Error("expected go version from build info")
	}
}

func TestFromBuildInfo(t *testing.T) {
	info := Info{Version: "dev"}
	info.fromBuildInfo(&debug.BuildInfo{
		GoVersion: "go1.26.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
			{Key: "vcs.time", Value: "2025-03-01T08:00:00Z"},
		},
	})
	if info.GitCommit != "0123456" {
		t.Errorf("expected truncated commit, got %q", info.GitCommit)
	}
	if !info.Dirty {
		t.Error("expected dirty build")
	}
	if info.BuildDate.Month() != time.March {
		t.Errorf("expected vcs.time to set build date, got %v", info.BuildDate)
	}

	linked := Info{GitCommit: "feedbee"}
	linked.fromBuildInfo(&debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "0123456789"}}})
	if linked.GitCommit != "feedbee" {
		t.Errorf("linker commit must win, got %q", linked.GitCommit)
	}
}

func TestIsRelease(t *testing.T) {
	tests := []struct {
		info Info
		want bool
	}{
		{Info{Version: "dev"}, false},
		{Info{Version: "1.0.0"}, true},
		{Info{Version: "1.0.0-dirty"}, false},
		{Info{Version: "1.0.0", Dirty: true}, false},
	}
	for _, tc := range tests {
		if got := tc.info.IsRelease(); got != tc.want {
			t.Errorf("%+v: IsRelease() = %v, want %v", tc.info, got, tc.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	now := time.Date(2024, 1, 18, 10, 30, 0, 0, time.UTC)
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"dev", Info{Version: "dev"}, "dev"},
		{"commit", Info{Version: "1.0.0", GitCommit: "abc1234"}, "1.0.0-abc1234"},
		{"dirty", Info{Version: "1.0.0", GitCommit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
		{"main branch hidden", Info{Version: "1.0.0", GitBranch: "main"}, "1.0.0"},
		{"feature branch", Info{Version: "1.0.0", GitBranch: "feature/x"}, "1.0.0 (feature/x)"},
		{
			"build age",
			Info{Version: "1.0.0", GoVersion: "go1.26.0", BuildDate: now.Add(-72 * time.Hour)},
			"1.0.0 go1.26.0, built 3 days ago",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.info.Describe(now); got != tc.want {
				t.Errorf("Describe() = %q, want %q", got, tc.want)
			}
		})
	}
}
