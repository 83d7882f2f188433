package stream

import (
	"bufio"
	"context"
	"io"
	"math"

	"github.com/kbukum/seqkit/errors"
)

const (
	initialLineBuffer = 64 * 1024
	// MaxLineBytes is the longest line FromResource accepts.
	MaxLineBytes = 64 * 1024 * 1024
)

// --- Sized sources ---

// FromSlice creates a stream over the elements of items, in order.
// The slice is read, never modified.
func FromSlice[T any](items []T) *Stream[T] {
	return newStream(newOrigin(len(items)), func(_ context.Context, sp span) Iterator[T] {
		lo, hi := sp.bounds(len(items))
		return &sliceIter[T]{items: items[lo:hi]}
	})
}

// Of creates a stream over the given values.
func Of[T any](items ...T) *Stream[T] {
	return FromSlice(items)
}

// Empty creates a stream with no elements.
func Empty[T any]() *Stream[T] {
	return FromSlice[T](nil)
}

// Range creates a stream of consecutive integers from start up to, but not
// including, end. A range longer than math.MaxInt is capped at math.MaxInt
// elements.
func Range(start, end int) *Stream[int] {
	if end <= start {
		return ints(start, 0)
	}
	return ints(start, distance(start, end))
}

// RangeClosed creates a stream of consecutive integers from start to end
// inclusive, with the same cap as Range.
func RangeClosed(start, end int) *Stream[int] {
	if end < start {
		return ints(start, 0)
	}
	n := distance(start, end)
	if n < math.MaxInt {
		n++
	}
	return ints(start, n)
}

// distance returns end-start for end > start, saturating at math.MaxInt.
func distance(start, end int) int {
	if d := end - start; d > 0 {
		return d
	}
	return math.MaxInt
}

func ints(start, n int) *Stream[int] {
	return newStream(newOrigin(n), func(_ context.Context, sp span) Iterator[int] {
		lo, hi := sp.bounds(n)
		return &rangeIter{next: start + lo, remaining: hi - lo}
	})
}

// --- Unbounded sources ---

// Iterate creates an infinite stream seed, fn(seed), fn(fn(seed)), ...
// Bound it with Limit or a short-circuiting terminal.
func Iterate[T any](seed T, fn func(T) T) *Stream[T] {
	return unbounded(func() Iterator[T] {
		return &iterateIter[T]{next: seed, fn: fn}
	})
}

// Generate creates an infinite stream of values returned by fn.
func Generate[T any](fn func() T) *Stream[T] {
	return unbounded(func() Iterator[T] {
		return &generateIter[T]{fn: fn}
	})
}

func unbounded[T any](open func() Iterator[T]) *Stream[T] {
	org := newOrigin(unknownSize)
	org.unbounded = true
	return newStream(org, func(context.Context, span) Iterator[T] { return open() })
}

// --- Unsized sources ---

// FromIterator creates a stream that pulls from iter. The stream owns iter:
// it is closed when the stream's resource is released.
func FromIterator[T any](iter Iterator[T]) *Stream[T] {
	org := newOrigin(unknownSize)
	org.onRelease(iter.Close)
	org.resource = true
	return fromUnsized(org, func(context.Context) Iterator[T] {
		return &boundIter[T]{source: iter, org: org}
	})
}

// FromResource creates a stream with one element per newline-delimited line
// of rc, in resource order. Line terminators are stripped; nothing else is.
// rc is closed exactly once: when a terminal completes or fails, or when the
// stream is closed.
func FromResource(rc io.ReadCloser) *Stream[string] {
	return FromResourceLimit(rc, MaxLineBytes)
}

// FromResourceLimit is FromResource with a custom bound on line length.
// A longer line fails the pipeline with a RESOURCE error.
func FromResourceLimit(rc io.ReadCloser, maxLineBytes int) *Stream[string] {
	if maxLineBytes <= 0 {
		maxLineBytes = MaxLineBytes
	}
	org := newOrigin(unknownSize)
	org.onRelease(rc.Close)
	org.resource = true
	sc := bufio.NewScanner(rc)
	sc.Buffer(make([]byte, 0, min(initialLineBuffer, maxLineBytes)), maxLineBytes)
	src := &lineIter{scanner: sc}
	return fromUnsized(org, func(context.Context) Iterator[string] {
		return &boundIter[string]{source: src, org: org}
	})
}

// Concat joins streams sequentially: all values of the first stream are
// yielded before the second, etc. Every input stream is linked, and their
// resources are released together with the result's.
func Concat[T any](streams ...*Stream[T]) *Stream[T] {
	org := newOrigin(unknownSize)
	var firstErr error
	for _, s := range streams {
		if s.err != nil && firstErr == nil {
			firstErr = s.err
		}
		if err := s.link(); err != nil && firstErr == nil {
			firstErr = err
		}
		if s.org.unbounded {
			org.unbounded = true
		}
		if s.org.resource {
			org.resource = true
		}
		org.onRelease(s.org.release)
	}
	out := fromUnsized(org, func(context.Context) Iterator[T] {
		return &concatIter[T]{streams: streams}
	})
	out.err = firstErr
	return out
}

// fromUnsized wires an unsized source so the parallel executor can drain it
// into memory once and then split the buffer.
func fromUnsized[T any](org *origin, open func(ctx context.Context) Iterator[T]) *Stream[T] {
	var (
		buffered []T
		ready    bool
	)
	org.materialize = func(ctx context.Context) (int, error) {
		if ready {
			return len(buffered), nil
		}
		it := open(ctx)
		for {
			val, ok, err := it.Next(ctx)
			if err != nil {
				it.Close()
				return 0, err
			}
			if !ok {
				break
			}
			buffered = append(buffered, val)
		}
		if err := it.Close(); err != nil {
			return 0, err
		}
		ready = true
		return len(buffered), nil
	}
	return newStream(org, func(ctx context.Context, sp span) Iterator[T] {
		if ready {
			lo, hi := sp.bounds(len(buffered))
			return &sliceIter[T]{items: buffered[lo:hi]}
		}
		return open(ctx)
	})
}

// --- Source iterators ---

type sliceIter[T any] struct {
	items []T
	index int
}

func (it *sliceIter[T]) Next(_ context.Context) (T, bool, error) {
	if it.index >= len(it.items) {
		var zero T
		return zero, false, nil
	}
	val := it.items[it.index]
	it.index++
	return val, true, nil
}

func (it *sliceIter[T]) Close() error { return nil }

// rangeIter never advances past its last value, which may be math.MaxInt.
type rangeIter struct {
	next, remaining int
}

func (it *rangeIter) Next(_ context.Context) (int, bool, error) {
	if it.remaining <= 0 {
		return 0, false, nil
	}
	val := it.next
	it.remaining--
	if it.remaining > 0 {
		it.next++
	}
	return val, true, nil
}

func (it *rangeIter) Close() error { return nil }

type iterateIter[T any] struct {
	next    T
	fn      func(T) T
	started bool
}

func (it *iterateIter[T]) Next(ctx context.Context) (T, bool, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, false, err
	}
	if it.started {
		it.next = it.fn(it.next)
	}
	it.started = true
	return it.next, true, nil
}

func (it *iterateIter[T]) Close() error { return nil }

type generateIter[T any] struct {
	fn func() T
}

func (it *generateIter[T]) Next(ctx context.Context) (T, bool, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, false, err
	}
	return it.fn(), true, nil
}

func (it *generateIter[T]) Close() error { return nil }

// boundIter guards a resource-backed iterator: pulls after release fail, and
// closing it releases the resource.
type boundIter[T any] struct {
	source Iterator[T]
	org    *origin
}

func (it *boundIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.org.isReleased() {
		var zero T
		return zero, false, errors.ResourceReleased()
	}
	return it.source.Next(ctx)
}

func (it *boundIter[T]) Close() error { return it.org.release() }

type lineIter struct {
	scanner *bufio.Scanner
}

func (it *lineIter) Next(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	if !it.scanner.Scan() {
		if err := it.scanner.Err(); err != nil {
			return "", false, errors.Resource("read", err)
		}
		return "", false, nil
	}
	return it.scanner.Text(), true, nil
}

func (it *lineIter) Close() error { return nil }

type concatIter[T any] struct {
	streams []*Stream[T]
	current Iterator[T]
	index   int
}

func (it *concatIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	for it.index < len(it.streams) {
		if it.current == nil {
			it.current = it.streams[it.index].create(ctx, span{})
		}
		val, ok, err := it.current.Next(ctx)
		if err != nil {
			return zero, false, err
		}
		if ok {
			return val, true, nil
		}
		cerr := it.current.Close()
		it.current = nil
		if rerr := it.streams[it.index].org.release(); rerr != nil && cerr == nil {
			cerr = rerr
		}
		it.index++
		if cerr != nil {
			return zero, false, cerr
		}
	}
	return zero, false, nil
}

func (it *concatIter[T]) Close() error {
	if it.current == nil {
		return nil
	}
	err := it.current.Close()
	it.current = nil
	return err
}
