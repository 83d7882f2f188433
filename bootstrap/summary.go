package bootstrap

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// StepStatus records the outcome of one named step of a task.
type StepStatus struct {
	Name     string
	Duration time.Duration
	Err      error
}

// Summary tracks the steps of a task and prints them when it ends.
type Summary struct {
	name     string
	version  string
	out      io.Writer
	duration time.Duration

	mu    sync.Mutex
	steps []StepStatus
}

// NewSummary creates a summary printed to out, or stderr when out is nil.
func NewSummary(name, version string, out io.Writer) *Summary {
	if out == nil {
		out = os.Stderr
	}
	return &Summary{name: name, version: version, out: out}
}

// SetDuration records the total run time.
func (s *Summary) SetDuration(d time.Duration) {
	s.duration = d
}

// Track records a finished step. It is safe for concurrent use.
func (s *Summary) Track(name string, d time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, StepStatus{Name: name, Duration: d, Err: err})
}

// Steps returns a copy of the recorded steps.
func (s *Summary) Steps() []StepStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StepStatus(nil), s.steps...)
}

// Display prints the summary tree.
func (s *Summary) Display() {
	steps := s.Steps()
	fmt.Fprintf(s.out, "\n%s %s finished in %.2fs\n", s.name, s.version, s.duration.Seconds())
	if len(steps) == 0 {
		return
	}

	failed := 0
	for i, st := range steps {
		prefix := "├──"
		if i == len(steps)-1 {
			prefix = "└──"
		}
		icon := "✅"
		detail := st.Duration.Round(time.Microsecond).String()
		if st.Err != nil {
			icon = "❌"
			detail = st.Err.Error()
			failed++
		}
		fmt.Fprintf(s.out, "   %s %s %s (%s)\n", prefix, icon, st.Name, detail)
	}
	if failed == 0 {
		fmt.Fprintf(s.out, "All steps succeeded (%d/%d)\n", len(steps), len(steps))
	} else {
		fmt.Fprintf(s.out, "Some steps failed (%d/%d succeeded)\n", len(steps)-failed, len(steps))
	}
}
