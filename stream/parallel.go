package stream

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
)

const defaultMinPartition = 1

// execMode is the evaluation strategy shared by every stream of one chain.
type execMode struct {
	parallel     bool
	unordered    bool
	workers      int
	minPartition int
}

// Option configures parallel execution.
type Option func(*execMode)

// WithWorkers bounds the number of partitions evaluated at once.
// Values below 1 fall back to GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(m *execMode) {
		if n < 1 {
			n = runtime.GOMAXPROCS(0)
		}
		m.workers = n
	}
}

// WithMinPartition sets the smallest number of elements worth a partition of
// its own. Small inputs use fewer partitions than workers.
func WithMinPartition(n int) Option {
	return func(m *execMode) {
		m.minPartition = max(n, 1)
	}
}

// Parallel switches the chain to partitioned evaluation. Terminals split the
// source into contiguous ranges, run each range through its own copy of the
// stage chain on a bounded worker pool, and merge partial results in
// encounter order.
func Parallel[T any](s *Stream[T], opts ...Option) *Stream[T] {
	out := derive(s, false, s.create)
	mode := execMode{
		parallel:     true,
		unordered:    s.org.mode.unordered,
		workers:      runtime.GOMAXPROCS(0),
		minPartition: defaultMinPartition,
	}
	for _, opt := range opts {
		opt(&mode)
	}
	out.org.mode = mode
	return out
}

// Unordered lets parallel ForEach deliver elements in completion order.
// Results of ToSlice, Collect and FindFirst keep encounter order regardless.
func Unordered[T any](s *Stream[T]) *Stream[T] {
	out := derive(s, false, s.create)
	out.org.mode.unordered = true
	return out
}

// Sequential switches the chain back to single-goroutine evaluation.
func Sequential[T any](s *Stream[T]) *Stream[T] {
	out := derive(s, false, s.create)
	out.org.mode.parallel = false
	return out
}

// partitions plans a parallel run. It returns nil when the chain must run
// sequentially. Unsized sources are drained into memory first.
func (s *Stream[T]) partitions(ctx context.Context, log *logger.Logger) ([]span, error) {
	mode := s.org.mode
	if !mode.parallel {
		return nil, nil
	}
	if s.seqOnly || s.org.unbounded {
		if log.DebugEnabled() {
			log.Debug("sequential fallback", logger.Fields(
				"order_dependent", s.seqOnly,
				"unbounded", s.org.unbounded,
			))
		}
		return nil, nil
	}
	n := s.org.size
	if n == unknownSize {
		if s.org.materialize == nil {
			return nil, nil
		}
		var err error
		if n, err = s.org.materialize(ctx); err != nil {
			return nil, err
		}
	}
	spans := split(n, mode.workers, mode.minPartition)
	if log.DebugEnabled() {
		log.Debug("partition plan", logger.Fields(
			logger.FieldElements, n,
			logger.FieldPartitions, len(spans),
			logger.FieldWorkers, mode.workers,
			"ordered", !mode.unordered,
		))
	}
	return spans, nil
}

// split divides n elements into contiguous balanced spans. It always returns
// at least one span.
func split(n, workers, minPartition int) []span {
	workers = max(workers, 1)
	minPartition = max(minPartition, 1)
	parts := min(workers, (n+minPartition-1)/minPartition)
	parts = max(parts, 1)

	spans := make([]span, parts)
	base, extra := n/parts, n%parts
	lo := 0
	for i := range spans {
		size := base
		if i < extra {
			size++
		}
		spans[i] = span{lo: lo, hi: lo + size, part: true}
		lo += size
	}
	return spans
}

// executor tracks the partitions of one parallel run so a short-circuiting
// partition can cancel its siblings without failing the run.
type executor struct {
	ctxs      []context.Context
	cancels   []context.CancelFunc
	cancelled []atomic.Bool
}

func newExecutor(ctx context.Context, n int) *executor {
	ex := &executor{
		ctxs:      make([]context.Context, n),
		cancels:   make([]context.CancelFunc, n),
		cancelled: make([]atomic.Bool, n),
	}
	for i := range n {
		ex.ctxs[i], ex.cancels[i] = context.WithCancel(ctx)
	}
	return ex
}

func (ex *executor) cancel(i int) {
	ex.cancelled[i].Store(true)
	ex.cancels[i]()
}

// cancelAfter stops every partition later in encounter order than i.
func (ex *executor) cancelAfter(i int) {
	for j := i + 1; j < len(ex.cancels); j++ {
		ex.cancel(j)
	}
}

// cancelOthers stops every partition except i.
func (ex *executor) cancelOthers(i int) {
	for j := range ex.cancels {
		if j != i {
			ex.cancel(j)
		}
	}
}

func (ex *executor) release() {
	for _, cancel := range ex.cancels {
		cancel()
	}
}

// partitionFunc evaluates one partition through its own iterator chain.
type partitionFunc[T, P any] func(ctx context.Context, ex *executor, i int, it Iterator[T]) (P, error)

// runPartitions evaluates every span on a bounded errgroup pool and returns
// the partial results in partition order. The first error cancels the other
// partitions and is returned alone; partials are discarded. A partition that
// was cancelled by a sibling's short-circuit contributes its zero value.
func runPartitions[T, P any](ctx context.Context, s *Stream[T], spans []span, work partitionFunc[T, P]) ([]P, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.org.mode.workers, 1))
	ex := newExecutor(gctx, len(spans))
	defer ex.release()

	if op := observability.OperationFromContext(ctx); op != nil {
		op.SetPartitions(len(spans))
	}

	results := make([]P, len(spans))
	for i, sp := range spans {
		g.Go(func() error {
			pctx := ex.ctxs[i]
			if err := pctx.Err(); err != nil {
				if ex.cancelled[i].Load() {
					return nil
				}
				return err
			}
			it := s.create(pctx, sp)
			p, err := work(pctx, ex, i, it)
			if cerr := it.Close(); cerr != nil && err == nil {
				err = cerr
			}
			if ex.cancelled[i].Load() {
				if err == nil {
					results[i] = p
				}
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// mergeTree combines adjacent partials pairwise until one remains. Left
// always precedes right in encounter order. Runs on the caller goroutine.
func mergeTree[P any](parts []P, combine func(left, right P) (P, error)) (P, error) {
	if len(parts) == 0 {
		var zero P
		return zero, nil
	}
	for len(parts) > 1 {
		next := make([]P, 0, (len(parts)+1)/2)
		for i := 0; i+1 < len(parts); i += 2 {
			merged, err := combine(parts[i], parts[i+1])
			if err != nil {
				var zero P
				return zero, err
			}
			next = append(next, merged)
		}
		if len(parts)%2 == 1 {
			next = append(next, parts[len(parts)-1])
		}
		parts = next
	}
	return parts[0], nil
}

// forEachOrdered buffers each partition's output and hands it to fn in
// partition order as soon as every earlier partition has been delivered.
// fn is never called concurrently.
func forEachOrdered[T any](ctx context.Context, s *Stream[T], spans []span, fn func(context.Context, T) error) error {
	done := make([]chan struct{}, len(spans))
	for i := range done {
		done[i] = make(chan struct{})
	}
	_, err := runPartitions(ctx, s, spans, func(pctx context.Context, _ *executor, i int, it Iterator[T]) (struct{}, error) {
		var buf []T
		err := drain(pctx, it, func(v T) (bool, error) {
			buf = append(buf, v)
			return true, nil
		})
		if err != nil {
			return struct{}{}, err
		}
		if i > 0 {
			select {
			case <-done[i-1]:
			case <-pctx.Done():
				return struct{}{}, pctx.Err()
			}
		}
		defer close(done[i])
		for _, v := range buf {
			if err := fn(pctx, v); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})
	return err
}

// forEachUnordered hands elements to fn as partitions produce them,
// serialized so fn is never called concurrently.
func forEachUnordered[T any](ctx context.Context, s *Stream[T], spans []span, fn func(context.Context, T) error) error {
	emit := make(chan struct{}, 1)
	_, err := runPartitions(ctx, s, spans, func(pctx context.Context, _ *executor, _ int, it Iterator[T]) (struct{}, error) {
		return struct{}{}, drain(pctx, it, func(v T) (bool, error) {
			select {
			case emit <- struct{}{}:
			case <-pctx.Done():
				return false, pctx.Err()
			}
			defer func() { <-emit }()
			return true, fn(pctx, v)
		})
	})
	return err
}
