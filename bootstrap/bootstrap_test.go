package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/seqkit/config"
	"github.com/kbukum/seqkit/logger"
)

func newTestApp(t *testing.T, out *bytes.Buffer) *App {
	t.Helper()
	cfg := &config.Config{Base: config.BaseConfig{Name: "seqdemo", Version: "1.0.0"}}
	app, err := NewApp(cfg, WithLogger(logger.Nop()), WithSummaryOutput(out), WithGracefulTimeout(time.Second))
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

func TestNewApp(t *testing.T) {
	app := newTestApp(t, &bytes.Buffer{})
	if app.Name != "seqdemo" || app.Version != "1.0.0" {
		t.Errorf("unexpected identity %q %q", app.Name, app.Version)
	}
	if app.Cfg.Engine.Workers == 0 {
		t.Error("expected engine defaults to be applied")
	}
	if app.gracefulTimeout != time.Second {
		t.Errorf("expected graceful timeout 1s, got %v", app.gracefulTimeout)
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	cfg := &config.Config{}
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected validation error for a config without a name")
	}
}

func TestRunTask_Lifecycle(t *testing.T) {
	var out bytes.Buffer
	app := newTestApp(t, &out)

	var order []string
	app.OnStart(func(context.Context) error { order = append(order, "start"); return nil })
	app.OnStop(
		func(context.Context) error { order = append(order, "stop1"); return nil },
		func(context.Context) error { order = append(order, "stop2"); return nil },
	)

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		order = append(order, "task")
		app.Summary.Track("count", 2*time.Millisecond, nil)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(order, ","); got != "start,task,stop2,stop1" {
		t.Errorf("unexpected order %s", got)
	}
	if !strings.Contains(out.String(), "└── ✅ count (2ms)") {
		t.Errorf("summary missing step:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "All steps succeeded (1/1)") {
		t.Errorf("summary missing totals:\n%s", out.String())
	}
}

func TestRunTask_Errors(t *testing.T) {
	taskErr := errors.New("task failed")
	stopErr := errors.New("stop failed")

	tests := []struct {
		name    string
		task    error
		stop    error
		wantErr error
	}{
		{"task error wins", taskErr, stopErr, taskErr},
		{"stop error surfaces", nil, stopErr, stopErr},
		{"clean", nil, nil, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(t, &bytes.Buffer{})
			app.OnStop(func(context.Context) error { return tc.stop })
			err := app.RunTask(context.Background(), func(context.Context) error { return tc.task })
			if !errors.Is(err, tc.wantErr) || (tc.wantErr == nil && err != nil) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRunTask_StartHookFailureSkipsTask(t *testing.T) {
	app := newTestApp(t, &bytes.Buffer{})
	app.OnStart(func(context.Context) error { return errors.New("boom") })
	ran := false
	err := app.RunTask(context.Background(), func(context.Context) error { ran = true; return nil })
	if err == nil || ran {
		t.Fatalf("expected start failure without running the task, err=%v ran=%v", err, ran)
	}
}

func TestRunTask_ParentCancellation(t *testing.T) {
	app := newTestApp(t, &bytes.Buffer{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := app.RunTask(ctx, func(ctx context.Context) error { return ctx.Err() })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSummary_Failures(t *testing.T) {
	var out bytes.Buffer
	s := NewSummary("seqdemo", "dev", &out)
	s.Track("ok", time.Millisecond, nil)
	s.Track("bad", 0, errors.New("PARSE"))
	s.Display()

	text := out.String()
	for _, want := range []string{"├── ✅ ok (1ms)", "└── ❌ bad (PARSE)", "Some steps failed (1/2 succeeded)"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}
}
