package stream

import (
	"cmp"
	"context"
	"slices"
)

// Filter keeps only values that satisfy the predicate.
func Filter[T any](s *Stream[T], fn func(T) bool) *Stream[T] {
	return derive(s, false, func(ctx context.Context, sp span) Iterator[T] {
		return &filterIter[T]{source: s.create(ctx, sp), fn: fn}
	})
}

// FilterErr keeps values for which fn reports true. An error from fn, such
// as a parse failure, aborts the pipeline.
func FilterErr[T any](s *Stream[T], fn func(context.Context, T) (bool, error)) *Stream[T] {
	return derive(s, false, func(ctx context.Context, sp span) Iterator[T] {
		return &filterErrIter[T]{source: s.create(ctx, sp), fn: fn}
	})
}

// Map transforms each value using fn.
func Map[I, O any](s *Stream[I], fn func(context.Context, I) (O, error)) *Stream[O] {
	return derive(s, false, func(ctx context.Context, sp span) Iterator[O] {
		return &mapIter[I, O]{source: s.create(ctx, sp), fn: fn}
	})
}

// MapTo transforms each value using an infallible fn.
func MapTo[I, O any](s *Stream[I], fn func(I) O) *Stream[O] {
	return Map(s, func(_ context.Context, v I) (O, error) { return fn(v), nil })
}

// FlatMap transforms each value into a sub-stream and flattens the results.
// Each sub-stream is exhausted and released before the next upstream value
// is pulled.
func FlatMap[I, O any](s *Stream[I], fn func(context.Context, I) (*Stream[O], error)) *Stream[O] {
	return derive(s, false, func(ctx context.Context, sp span) Iterator[O] {
		return &flatMapIter[I, O]{source: s.create(ctx, sp), fn: fn}
	})
}

// FlatMapSlice transforms each value into a slice and flattens the results.
func FlatMapSlice[I, O any](s *Stream[I], fn func(I) []O) *Stream[O] {
	return FlatMap(s, func(_ context.Context, v I) (*Stream[O], error) {
		return FromSlice(fn(v)), nil
	})
}

// Peek calls fn for each value as it is pulled, then passes the value
// through unchanged.
func Peek[T any](s *Stream[T], fn func(T)) *Stream[T] {
	return derive(s, false, func(ctx context.Context, sp span) Iterator[T] {
		return &peekIter[T]{source: s.create(ctx, sp), fn: fn}
	})
}

// Distinct suppresses values equal to one already seen. Memory grows with
// the number of distinct values.
func Distinct[T comparable](s *Stream[T]) *Stream[T] {
	return DistinctBy(s, func(v T) T { return v })
}

// DistinctBy suppresses values whose key was already seen.
func DistinctBy[T any, K comparable](s *Stream[T], key func(T) K) *Stream[T] {
	return derive(s, true, func(ctx context.Context, sp span) Iterator[T] {
		return &distinctIter[T, K]{source: s.create(ctx, sp), key: key, seen: make(map[K]struct{})}
	})
}

// Limit yields at most n values. Once n values have been delivered the
// upstream is closed and never pulled again.
func Limit[T any](s *Stream[T], n int) *Stream[T] {
	return derive(s, true, func(ctx context.Context, sp span) Iterator[T] {
		return &limitIter[T]{up: &upstream[T]{source: s.create(ctx, sp)}, remaining: max(n, 0)}
	})
}

// Skip discards the first n values.
func Skip[T any](s *Stream[T], n int) *Stream[T] {
	return derive(s, true, func(ctx context.Context, sp span) Iterator[T] {
		return &skipIter[T]{source: s.create(ctx, sp), remaining: max(n, 0)}
	})
}

// TakeWhile yields values while fn holds and stops at the first that fails.
func TakeWhile[T any](s *Stream[T], fn func(T) bool) *Stream[T] {
	return derive(s, true, func(ctx context.Context, sp span) Iterator[T] {
		return &takeWhileIter[T]{up: &upstream[T]{source: s.create(ctx, sp)}, fn: fn}
	})
}

// DropWhile discards values while fn holds, then yields the rest.
func DropWhile[T any](s *Stream[T], fn func(T) bool) *Stream[T] {
	return derive(s, true, func(ctx context.Context, sp span) Iterator[T] {
		return &dropWhileIter[T]{source: s.create(ctx, sp), fn: fn, dropping: true}
	})
}

// Sorted yields the values ordered by compare, keeping equal values in
// encounter order. It is not lazy: the first pull drains the whole upstream,
// then releases it, before yielding anything.
func Sorted[T any](s *Stream[T], compare func(a, b T) int) *Stream[T] {
	return derive(s, true, func(ctx context.Context, sp span) Iterator[T] {
		return &sortedIter[T]{up: &upstream[T]{source: s.create(ctx, sp)}, compare: compare}
	})
}

// SortedNatural yields the values in ascending natural order.
func SortedNatural[T cmp.Ordered](s *Stream[T]) *Stream[T] {
	return Sorted(s, cmp.Compare[T])
}

// --- Iterator implementations ---

type filterIter[T any] struct {
	source Iterator[T]
	fn     func(T) bool
}

func (it *filterIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return val, false, err
		}
		if it.fn(val) {
			return val, true, nil
		}
	}
}

func (it *filterIter[T]) Close() error { return it.source.Close() }

type filterErrIter[T any] struct {
	source Iterator[T]
	fn     func(context.Context, T) (bool, error)
}

func (it *filterErrIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return val, false, err
		}
		keep, err := it.fn(ctx, val)
		if err != nil {
			var zero T
			return zero, false, err
		}
		if keep {
			return val, true, nil
		}
	}
}

func (it *filterErrIter[T]) Close() error { return it.source.Close() }

type mapIter[I, O any] struct {
	source Iterator[I]
	fn     func(context.Context, I) (O, error)
}

func (it *mapIter[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		var zero O
		return zero, false, err
	}
	out, err := it.fn(ctx, val)
	if err != nil {
		var zero O
		return zero, false, err
	}
	return out, true, nil
}

func (it *mapIter[I, O]) Close() error { return it.source.Close() }

type flatMapIter[I, O any] struct {
	source  Iterator[I]
	fn      func(context.Context, I) (*Stream[O], error)
	current Iterator[O]
}

func (it *flatMapIter[I, O]) Next(ctx context.Context) (result O, ok bool, err error) {
	var zero O
	for {
		if it.current != nil {
			val, ok, err := it.current.Next(ctx)
			if err != nil {
				return zero, false, err
			}
			if ok {
				return val, true, nil
			}
			cerr := it.current.Close()
			it.current = nil
			if cerr != nil {
				return zero, false, cerr
			}
		}
		in, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return zero, false, err
		}
		sub, err := it.fn(ctx, in)
		if err != nil {
			return zero, false, err
		}
		if sub == nil {
			continue
		}
		inner, err := sub.Iter(ctx)
		if err != nil {
			return zero, false, err
		}
		it.current = inner
	}
}

func (it *flatMapIter[I, O]) Close() error {
	var err error
	if it.current != nil {
		err = it.current.Close()
		it.current = nil
	}
	if serr := it.source.Close(); serr != nil && err == nil {
		err = serr
	}
	return err
}

type peekIter[T any] struct {
	source Iterator[T]
	fn     func(T)
}

func (it *peekIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	val, ok, err := it.source.Next(ctx)
	if err != nil || !ok {
		return val, ok, err
	}
	it.fn(val)
	return val, true, nil
}

func (it *peekIter[T]) Close() error { return it.source.Close() }

type distinctIter[T any, K comparable] struct {
	source Iterator[T]
	key    func(T) K
	seen   map[K]struct{}
}

func (it *distinctIter[T, K]) Next(ctx context.Context) (result T, ok bool, err error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return val, false, err
		}
		k := it.key(val)
		if _, dup := it.seen[k]; dup {
			continue
		}
		it.seen[k] = struct{}{}
		return val, true, nil
	}
}

func (it *distinctIter[T, K]) Close() error { return it.source.Close() }

// upstream wraps a source that a stage may close early. Close is forwarded once.
type upstream[T any] struct {
	source Iterator[T]
	closed bool
}

func (u *upstream[T]) close() error {
	if u.closed {
		return nil
	}
	u.closed = true
	return u.source.Close()
}

type limitIter[T any] struct {
	up        *upstream[T]
	remaining int
}

func (it *limitIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	var zero T
	if it.remaining <= 0 {
		return zero, false, it.up.close()
	}
	val, ok, err := it.up.source.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	it.remaining--
	if it.remaining == 0 {
		// Stop signal: nothing upstream is pulled past the n-th value.
		if err := it.up.close(); err != nil {
			return zero, false, err
		}
	}
	return val, true, nil
}

func (it *limitIter[T]) Close() error { return it.up.close() }

type skipIter[T any] struct {
	source    Iterator[T]
	remaining int
}

func (it *skipIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for it.remaining > 0 {
		_, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			var zero T
			return zero, false, err
		}
		it.remaining--
	}
	return it.source.Next(ctx)
}

func (it *skipIter[T]) Close() error { return it.source.Close() }

type takeWhileIter[T any] struct {
	up   *upstream[T]
	fn   func(T) bool
	done bool
}

func (it *takeWhileIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	var zero T
	if it.done {
		return zero, false, nil
	}
	val, ok, err := it.up.source.Next(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	if !it.fn(val) {
		it.done = true
		return zero, false, it.up.close()
	}
	return val, true, nil
}

func (it *takeWhileIter[T]) Close() error { return it.up.close() }

type dropWhileIter[T any] struct {
	source   Iterator[T]
	fn       func(T) bool
	dropping bool
}

func (it *dropWhileIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	for {
		val, ok, err := it.source.Next(ctx)
		if err != nil || !ok {
			return val, false, err
		}
		if it.dropping && it.fn(val) {
			continue
		}
		it.dropping = false
		return val, true, nil
	}
}

func (it *dropWhileIter[T]) Close() error { return it.source.Close() }

type sortedIter[T any] struct {
	up      *upstream[T]
	compare func(a, b T) int
	items   []T
	index   int
	loaded  bool
}

func (it *sortedIter[T]) load(ctx context.Context) error {
	for {
		val, ok, err := it.up.source.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		it.items = append(it.items, val)
	}
	it.loaded = true
	slices.SortStableFunc(it.items, it.compare)
	// Fully materialized: the upstream and its resource are no longer needed.
	return it.up.close()
}

func (it *sortedIter[T]) Next(ctx context.Context) (result T, ok bool, err error) {
	var zero T
	if !it.loaded {
		if err := it.load(ctx); err != nil {
			return zero, false, err
		}
	}
	if it.index >= len(it.items) {
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sortedIter[T]) Close() error { return it.up.close() }
