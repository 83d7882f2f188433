package stream

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/kbukum/seqkit/errors"
)

// Iterator provides pull-based sequential access to a stream of values.
// Every source and stage implements it.
type Iterator[T any] interface {
	// Next returns the next value. Returns (zero, false, nil) when exhausted.
	Next(ctx context.Context) (T, bool, error)
	// Close releases any resources held by the iterator. Safe to call more than once.
	Close() error
}

// Stream is a lazy, single-pass query over elements of type T.
// No work happens until a terminal operation pulls values.
type Stream[T any] struct {
	org    *origin
	create func(ctx context.Context, sp span) Iterator[T]
	// seqOnly is set when the chain contains a stage whose result depends on
	// global encounter order, which partitions cannot reproduce.
	seqOnly bool
	state   atomic.Int32
	err     error
}

const (
	stateFresh int32 = iota
	stateLinked
	stateConsumed
)

func stateName(s int32) string {
	switch s {
	case stateLinked:
		return "linked"
	case stateConsumed:
		return "consumed"
	default:
		return "closed"
	}
}

// span selects the part of a sized source one chain instance reads.
// The zero value reads everything.
type span struct {
	lo, hi int
	part   bool
}

func (sp span) bounds(n int) (int, int) {
	if !sp.part {
		return 0, n
	}
	return sp.lo, sp.hi
}

const unknownSize = -1

// origin is shared by every stream of one chain: the bound resource, the
// source size, and the execution mode.
type origin struct {
	mu       sync.Mutex
	closers  []func() error
	released bool
	closed   bool
	// resource is set when the chain reads from a caller-owned resource.
	resource bool

	size      int
	unbounded bool
	// materialize drains an unsized source into memory so it can be split.
	materialize func(ctx context.Context) (int, error)

	mode execMode
}

func newOrigin(size int) *origin {
	return &origin{size: size}
}

func (o *origin) onRelease(fn func() error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closers = append(o.closers, fn)
}

func (o *origin) isReleased() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.released
}

func (o *origin) isClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}

// release runs the registered release hooks exactly once. Later calls are no-ops.
func (o *origin) release() error {
	o.mu.Lock()
	if o.released {
		o.mu.Unlock()
		return nil
	}
	o.released = true
	closers := o.closers
	o.closers = nil
	o.mu.Unlock()

	var firstErr error
	for _, fn := range closers {
		if err := fn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return errors.Resource("release", firstErr)
	}
	return nil
}

func newStream[T any](org *origin, create func(ctx context.Context, sp span) Iterator[T]) *Stream[T] {
	return &Stream[T]{org: org, create: create}
}

// derive chains a new stage onto up. up is marked linked; if it was already
// linked or consumed the new stream carries a SEQUENCE_REUSE error that
// surfaces when a terminal runs.
func derive[I, O any](up *Stream[I], sequentialOnly bool, create func(ctx context.Context, sp span) Iterator[O]) *Stream[O] {
	s := &Stream[O]{
		org:     up.org,
		create:  create,
		seqOnly: up.seqOnly || sequentialOnly,
		err:     up.err,
	}
	if err := up.link(); err != nil && s.err == nil {
		s.err = err
	}
	return s
}

func (s *Stream[T]) link() error {
	if !s.state.CompareAndSwap(stateFresh, stateLinked) {
		return errors.SequenceReuse(stateName(s.state.Load()))
	}
	if s.org.isClosed() {
		return errors.SequenceReuse("closed")
	}
	return nil
}

// begin marks the stream consumed. It fails if the stream was already used,
// closed, or built on a reused upstream.
func (s *Stream[T]) begin() error {
	if s.err != nil {
		return s.err
	}
	if !s.state.CompareAndSwap(stateFresh, stateConsumed) {
		return errors.SequenceReuse(stateName(s.state.Load()))
	}
	if s.org.isReleased() {
		return errors.SequenceReuse("closed")
	}
	return nil
}

// Close releases the resource bound to the stream's source and makes any
// later terminal fail. Idempotent; the first call wins.
func (s *Stream[T]) Close() error {
	s.org.mu.Lock()
	if !s.org.released {
		s.org.closed = true
	}
	s.org.mu.Unlock()
	return s.org.release()
}

// OnClose registers fn to run when the stream's resource is released.
func (s *Stream[T]) OnClose(fn func() error) *Stream[T] {
	s.org.onRelease(fn)
	return s
}

// IsParallel reports whether terminals on this stream use the parallel executor.
func (s *Stream[T]) IsParallel() bool {
	return s.org.mode.parallel
}

// Iter returns the raw Iterator for this stream and marks it consumed.
// The caller must Close the iterator, which also releases the bound resource.
func (s *Stream[T]) Iter(ctx context.Context) (Iterator[T], error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	return &ownedIter[T]{source: s.create(ctx, span{}), org: s.org}, nil
}

// ownedIter releases the origin after closing the chain. Pulls after Close
// fail even when a stage still buffers values.
type ownedIter[T any] struct {
	source Iterator[T]
	org    *origin
	closed bool
}

func (it *ownedIter[T]) Next(ctx context.Context) (T, bool, error) {
	if it.closed {
		var zero T
		if it.org.resource {
			return zero, false, errors.ResourceReleased()
		}
		return zero, false, errors.SequenceReuse("closed")
	}
	return it.source.Next(ctx)
}

func (it *ownedIter[T]) Close() error {
	it.closed = true
	err := it.source.Close()
	if rerr := it.org.release(); rerr != nil && err == nil {
		err = rerr
	}
	return err
}
