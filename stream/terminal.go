package stream

import (
	"context"
	stderrors "errors"
	"sync"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/observability"
)

const component = "stream"

var (
	metricsOnce sync.Once
	metrics     *observability.StreamMetrics
)

func engineMetrics() *observability.StreamMetrics {
	metricsOnce.Do(func() {
		m, err := observability.NewStreamMetrics(observability.Meter(observability.InstrumentationName))
		if err != nil {
			logger.Get(component).Warn("stream metrics disabled", logger.ErrorFields("metrics", err))
			return
		}
		metrics = m
	})
	return metrics
}

// run executes one terminal operation: it marks the stream consumed, traces
// the operation, and releases the bound resource on every exit path.
func run[T, R any](ctx context.Context, s *Stream[T], name string, body func(ctx context.Context, log *logger.Logger) (R, error)) (result R, err error) {
	if err := s.begin(); err != nil {
		return result, err
	}

	log := logger.Get(component)
	if log.DebugEnabled() {
		ctx = logger.ContextWithQueryID(ctx, uuid.NewString())
		log = log.WithContext(ctx)
		log.Debug("terminal started", logger.Fields(
			logger.FieldOperation, name,
			"parallel", s.org.mode.parallel,
		))
	}
	ctx, op := observability.StartOperation(ctx, name, logger.QueryIDFromContext(ctx), engineMetrics())

	defer func() {
		if rerr := s.org.release(); rerr != nil {
			log.Debug("resource release failed", logger.ErrorFields(name, rerr))
			if err == nil {
				var zero R
				result, err = zero, rerr
			}
		}
		op.End(ctx, err, errorCode(err))
		if log.DebugEnabled() {
			fields := logger.DurationFields(name, op.Duration())
			fields[logger.FieldElements] = op.Elements()
			log.Debug("terminal finished", logger.MergeWithError(fields, err))
		}
	}()

	return body(ctx, log)
}

func errorCode(err error) string {
	if err == nil {
		return ""
	}
	if appErr, ok := errors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return "CANCELLED"
	}
	return "UNKNOWN"
}

// drain pulls values from it until it is exhausted, fn returns false, fn
// fails, or ctx is done. Pulled values are counted on the traced operation.
func drain[T any](ctx context.Context, it Iterator[T], fn func(T) (bool, error)) error {
	var n int64
	if op := observability.OperationFromContext(ctx); op != nil {
		defer func() { op.AddElements(n) }()
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		val, ok, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		n++
		more, err := fn(val)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// shortCircuit says which sibling partitions become irrelevant once one
// partition stops early.
type shortCircuit int

const (
	noShortCircuit shortCircuit = iota
	// stopLater cancels partitions after the stopping one; earlier ones may
	// still hold the first match.
	stopLater
	// stopOthers cancels every other partition.
	stopOthers
)

// reduction is the internal form of every terminal: a supplier of empty
// partial states, an accumulator that may ask to stop, and an
// encounter-ordered combiner.
type reduction[T, A any] struct {
	supply     func() A
	accumulate func(acc A, v T) (A, bool, error)
	combine    func(left, right A) (A, error)
	stop       shortCircuit
}

// evaluate runs r over s, sequentially or partitioned depending on the
// stream's mode, and returns the final partial state.
func evaluate[T, A any](ctx context.Context, log *logger.Logger, s *Stream[T], r reduction[T, A]) (A, error) {
	var zero A
	spans, err := s.partitions(ctx, log)
	if err != nil {
		return zero, err
	}
	if spans == nil {
		it := s.create(ctx, span{})
		acc, _, err := accumulate(ctx, it, r.supply(), r.accumulate)
		if cerr := it.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			return zero, err
		}
		return acc, nil
	}

	parts, err := runPartitions(ctx, s, spans, func(pctx context.Context, ex *executor, i int, it Iterator[T]) (A, error) {
		acc, stopped, err := accumulate(pctx, it, r.supply(), r.accumulate)
		if err == nil && stopped {
			switch r.stop {
			case stopLater:
				ex.cancelAfter(i)
			case stopOthers:
				ex.cancelOthers(i)
			}
		}
		return acc, err
	})
	if err != nil {
		return zero, err
	}
	return mergeTree(parts, r.combine)
}

func accumulate[T, A any](ctx context.Context, it Iterator[T], acc A, fn func(A, T) (A, bool, error)) (A, bool, error) {
	stopped := false
	err := drain(ctx, it, func(v T) (bool, error) {
		next, more, err := fn(acc, v)
		if err != nil {
			return false, err
		}
		acc = next
		stopped = !more
		return more, nil
	})
	return acc, stopped, err
}

// copyOf returns a deep copy of v so partitions never share a mutable identity.
func copyOf[T any](v T) T {
	if c, ok := deepcopy.Copy(v).(T); ok {
		return c
	}
	return v
}

// --- Terminals ---

// ForEach calls fn for every value. In parallel unordered mode fn sees values
// in completion order; otherwise in encounter order. fn is never called
// concurrently. An error from fn aborts the pipeline.
func ForEach[T any](ctx context.Context, s *Stream[T], fn func(context.Context, T) error) error {
	return forEach(ctx, s, "for_each", !s.org.mode.unordered, fn)
}

// ForEachOrdered calls fn for every value in encounter order, even in
// parallel unordered mode.
func ForEachOrdered[T any](ctx context.Context, s *Stream[T], fn func(context.Context, T) error) error {
	return forEach(ctx, s, "for_each_ordered", true, fn)
}

func forEach[T any](ctx context.Context, s *Stream[T], name string, ordered bool, fn func(context.Context, T) error) error {
	_, err := run(ctx, s, name, func(ctx context.Context, log *logger.Logger) (struct{}, error) {
		spans, err := s.partitions(ctx, log)
		if err != nil {
			return struct{}{}, err
		}
		switch {
		case spans == nil:
			it := s.create(ctx, span{})
			err = drain(ctx, it, func(v T) (bool, error) {
				return true, fn(ctx, v)
			})
			if cerr := it.Close(); cerr != nil && err == nil {
				err = cerr
			}
		case ordered:
			err = forEachOrdered(ctx, s, spans, fn)
		default:
			err = forEachUnordered(ctx, s, spans, fn)
		}
		return struct{}{}, err
	})
	return err
}

// Reduce folds the values with fn starting from identity. An empty stream
// yields identity. fn must be associative for parallel results to match
// sequential ones; each partition starts from its own copy of identity.
func Reduce[T any](ctx context.Context, s *Stream[T], identity T, fn func(a, b T) T) (T, error) {
	return run(ctx, s, "reduce", func(ctx context.Context, log *logger.Logger) (T, error) {
		return evaluate(ctx, log, s, reduction[T, T]{
			supply: func() T { return copyOf(identity) },
			accumulate: func(acc T, v T) (T, bool, error) {
				return fn(acc, v), true, nil
			},
			combine: func(left, right T) (T, error) { return fn(left, right), nil },
		})
	})
}

// ReduceOptional folds the values with fn, returning an empty Optional for
// an empty stream.
func ReduceOptional[T any](ctx context.Context, s *Stream[T], fn func(a, b T) T) (Optional[T], error) {
	return run(ctx, s, "reduce", func(ctx context.Context, log *logger.Logger) (Optional[T], error) {
		return evaluate(ctx, log, s, optionalReduction(fn))
	})
}

func optionalReduction[T any](fn func(a, b T) T) reduction[T, Optional[T]] {
	return reduction[T, Optional[T]]{
		supply: None[T],
		accumulate: func(acc Optional[T], v T) (Optional[T], bool, error) {
			if !acc.present {
				return Some(v), true, nil
			}
			return Some(fn(acc.value, v)), true, nil
		},
		combine: func(left, right Optional[T]) (Optional[T], error) {
			switch {
			case !left.present:
				return right, nil
			case !right.present:
				return left, nil
			default:
				return Some(fn(left.value, right.value)), nil
			}
		},
	}
}

// Fold accumulates values into a result of a different type. combine merges
// partition results in parallel mode.
func Fold[T, R any](ctx context.Context, s *Stream[T], identity R, acc func(R, T) R, combine func(R, R) R) (R, error) {
	return run(ctx, s, "fold", func(ctx context.Context, log *logger.Logger) (R, error) {
		return evaluate(ctx, log, s, reduction[T, R]{
			supply: func() R { return copyOf(identity) },
			accumulate: func(r R, v T) (R, bool, error) {
				return acc(r, v), true, nil
			},
			combine: func(left, right R) (R, error) { return combine(left, right), nil },
		})
	})
}

// Count returns the number of values.
func Count[T any](ctx context.Context, s *Stream[T]) (int, error) {
	return run(ctx, s, "count", func(ctx context.Context, log *logger.Logger) (int, error) {
		return evaluate(ctx, log, s, reduction[T, int]{
			supply:     func() int { return 0 },
			accumulate: func(n int, _ T) (int, bool, error) { return n + 1, true, nil },
			combine:    func(left, right int) (int, error) { return left + right, nil },
		})
	})
}

// Min returns the smallest value by compare. Among equal values the first
// encountered wins.
func Min[T any](ctx context.Context, s *Stream[T], compare func(a, b T) int) (Optional[T], error) {
	return run(ctx, s, "min", func(ctx context.Context, log *logger.Logger) (Optional[T], error) {
		return evaluate(ctx, log, s, optionalReduction(func(a, b T) T {
			if compare(b, a) < 0 {
				return b
			}
			return a
		}))
	})
}

// Max returns the largest value by compare. Among equal values the first
// encountered wins.
func Max[T any](ctx context.Context, s *Stream[T], compare func(a, b T) int) (Optional[T], error) {
	return run(ctx, s, "max", func(ctx context.Context, log *logger.Logger) (Optional[T], error) {
		return evaluate(ctx, log, s, optionalReduction(func(a, b T) T {
			if compare(b, a) > 0 {
				return b
			}
			return a
		}))
	})
}

// AnyMatch reports whether any value satisfies pred. It stops pulling at the
// first match; an empty stream yields false.
func AnyMatch[T any](ctx context.Context, s *Stream[T], pred func(T) bool) (bool, error) {
	return anyMatch(ctx, s, "any_match", pred)
}

// AllMatch reports whether every value satisfies pred. It stops pulling at
// the first value that fails; an empty stream yields true.
func AllMatch[T any](ctx context.Context, s *Stream[T], pred func(T) bool) (bool, error) {
	found, err := anyMatch(ctx, s, "all_match", func(v T) bool { return !pred(v) })
	return !found && err == nil, err
}

// NoneMatch reports whether no value satisfies pred. An empty stream yields true.
func NoneMatch[T any](ctx context.Context, s *Stream[T], pred func(T) bool) (bool, error) {
	found, err := anyMatch(ctx, s, "none_match", pred)
	return !found && err == nil, err
}

func anyMatch[T any](ctx context.Context, s *Stream[T], name string, pred func(T) bool) (bool, error) {
	return run(ctx, s, name, func(ctx context.Context, log *logger.Logger) (bool, error) {
		return evaluate(ctx, log, s, reduction[T, bool]{
			supply: func() bool { return false },
			accumulate: func(_ bool, v T) (bool, bool, error) {
				if pred(v) {
					return true, false, nil
				}
				return false, true, nil
			},
			combine: func(left, right bool) (bool, error) { return left || right, nil },
			stop:    stopOthers,
		})
	})
}

// FindFirst returns the first value in encounter order, or an empty Optional
// for an empty stream. It stops pulling after one value.
func FindFirst[T any](ctx context.Context, s *Stream[T]) (Optional[T], error) {
	return find(ctx, s, "find_first", stopLater)
}

// FindAny returns some value of the stream, or an empty Optional for an empty
// stream. Sequentially it is the first value; in parallel mode it may be the
// first value of any partition.
func FindAny[T any](ctx context.Context, s *Stream[T]) (Optional[T], error) {
	return find(ctx, s, "find_any", stopOthers)
}

func find[T any](ctx context.Context, s *Stream[T], name string, stop shortCircuit) (Optional[T], error) {
	return run(ctx, s, name, func(ctx context.Context, log *logger.Logger) (Optional[T], error) {
		return evaluate(ctx, log, s, reduction[T, Optional[T]]{
			supply: None[T],
			accumulate: func(_ Optional[T], v T) (Optional[T], bool, error) {
				return Some(v), false, nil
			},
			combine: func(left, right Optional[T]) (Optional[T], error) {
				if left.present {
					return left, nil
				}
				return right, nil
			},
			stop: stop,
		})
	})
}

// ToSlice returns all values in encounter order. The result is never nil.
func ToSlice[T any](ctx context.Context, s *Stream[T]) ([]T, error) {
	return run(ctx, s, "to_slice", func(ctx context.Context, log *logger.Logger) ([]T, error) {
		items, err := evaluate(ctx, log, s, reduction[T, []T]{
			supply: func() []T { return nil },
			accumulate: func(acc []T, v T) ([]T, bool, error) {
				return append(acc, v), true, nil
			},
			combine: func(left, right []T) ([]T, error) { return append(left, right...), nil },
		})
		if err != nil {
			return nil, err
		}
		out := make([]T, len(items))
		copy(out, items)
		return out, nil
	})
}

// Collect drives c over the stream. In parallel mode each partition
// accumulates into its own container and containers are combined pairwise
// in encounter order.
func Collect[T, A, R any](ctx context.Context, s *Stream[T], c Collector[T, A, R]) (R, error) {
	return run(ctx, s, "collect", func(ctx context.Context, log *logger.Logger) (R, error) {
		acc, err := evaluate(ctx, log, s, reduction[T, A]{
			supply: c.Supply,
			accumulate: func(acc A, v T) (A, bool, error) {
				next, err := c.Accumulate(acc, v)
				return next, true, err
			},
			combine: c.Combine,
		})
		if err != nil {
			var zero R
			return zero, err
		}
		return c.Finish(acc), nil
	})
}

// Sum adds the values. An empty stream yields zero.
func Sum[N Number](ctx context.Context, s *Stream[N]) (N, error) {
	return run(ctx, s, "sum", func(ctx context.Context, log *logger.Logger) (N, error) {
		return evaluate(ctx, log, s, reduction[N, N]{
			supply:     func() N { return 0 },
			accumulate: func(acc N, v N) (N, bool, error) { return acc + v, true, nil },
			combine:    func(left, right N) (N, error) { return left + right, nil },
		})
	})
}

// Average returns the arithmetic mean of the values, or an empty Optional
// for an empty stream.
func Average[N Number](ctx context.Context, s *Stream[N]) (Optional[float64], error) {
	stats, err := statistics(ctx, s, "average")
	if err != nil || stats.Count == 0 {
		return None[float64](), err
	}
	return Some(stats.Average()), nil
}

// Stats returns count, sum, min, max and average of the values in one pass.
func Stats[N Number](ctx context.Context, s *Stream[N]) (SummaryStatistics[N], error) {
	return statistics(ctx, s, "stats")
}

func statistics[N Number](ctx context.Context, s *Stream[N], name string) (SummaryStatistics[N], error) {
	return run(ctx, s, name, func(ctx context.Context, log *logger.Logger) (SummaryStatistics[N], error) {
		return evaluate(ctx, log, s, reduction[N, SummaryStatistics[N]]{
			supply: func() SummaryStatistics[N] { return SummaryStatistics[N]{} },
			accumulate: func(acc SummaryStatistics[N], v N) (SummaryStatistics[N], bool, error) {
				acc.Accept(v)
				return acc, true, nil
			},
			combine: func(left, right SummaryStatistics[N]) (SummaryStatistics[N], error) {
				left.Combine(right)
				return left, nil
			},
		})
	})
}
