package catalogue

import (
	"context"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"time"

	"github.com/kbukum/seqkit/config"
	"github.com/kbukum/seqkit/lines"
	"github.com/kbukum/seqkit/stream"
)

//go:embed data/*.txt
var embedded embed.FS

// Data returns the embedded bands.txt and data.txt.
func Data() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Env is the environment a sample runs in. Output is serialized so stages
// that print from parallel partitions never interleave within a line.
type Env struct {
	Data   fs.FS
	Engine config.EngineConfig

	mu  sync.Mutex
	out io.Writer
}

// NewEnv returns an Env printing to out. A nil data uses the embedded files.
func NewEnv(out io.Writer, data fs.FS, engine config.EngineConfig) *Env {
	if data == nil {
		data = Data()
	}
	return &Env{Data: data, Engine: engine, out: out}
}

func (e *Env) println(a ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintln(e.out, a...)
}

func (e *Env) printf(format string, a ...any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	fmt.Fprintf(e.out, format, a...)
}

// lines opens a data file under the configured line limit.
func (e *Env) lines(name string) (*stream.Stream[string], error) {
	s, err := lines.OpenFS(e.Data, name, lines.WithMaxLine(e.Engine.MaxLineBytes()))
	if err != nil {
		return nil, err
	}
	return use(e, s), nil
}

// use switches a source to the configured execution mode.
func use[T any](e *Env, s *stream.Stream[T]) *stream.Stream[T] {
	return config.Apply(e.Engine, s)
}

// each prints every value in encounter order.
func each[T any](ctx context.Context, e *Env, s *stream.Stream[T]) error {
	return stream.ForEachOrdered(ctx, s, func(_ context.Context, v T) error {
		e.println(v)
		return nil
	})
}

// Sample is one catalogue entry.
type Sample struct {
	ID    string
	Title string
	Run   func(ctx context.Context, env *Env) error
}

// All returns the whole catalogue in presentation order.
func All() []Sample {
	all := make([]Sample, 0, len(streamSamples)+len(peopleSamples)+len(extraSamples))
	all = append(all, streamSamples...)
	all = append(all, peopleSamples...)
	return append(all, extraSamples...)
}

// Find returns the sample with the given id.
func Find(id string) (Sample, bool) {
	for _, s := range All() {
		if s.ID == id {
			return s, true
		}
	}
	return Sample{}, false
}

// Run executes samples in order, printing a header before each. track, if
// not nil, is told the outcome of every sample. The first failure stops the
// run.
func Run(ctx context.Context, env *Env, samples []Sample, track func(id string, d time.Duration, err error)) error {
	for i, s := range samples {
		if i > 0 {
			env.println()
		}
		env.printf("%s: %s\n", s.ID, s.Title)

		start := time.Now()
		err := s.Run(ctx, env)
		if track != nil {
			track(s.ID, time.Since(start), err)
		}
		if err != nil {
			return fmt.Errorf("sample %s: %w", s.ID, err)
		}
	}
	return nil
}
