package stream

import (
	"cmp"
	"strings"

	"github.com/kbukum/seqkit/errors"
)

// Collector is a mutable reduction: Supply creates an empty container,
// Accumulate folds one value into it, Combine merges two containers built
// from adjacent ranges (left precedes right in encounter order), and Finish
// converts the container into the result.
//
// Accumulate and Combine may mutate and return their first argument.
// Combine must be associative for parallel results to match sequential ones.
type Collector[T, A, R any] interface {
	Supply() A
	Accumulate(acc A, v T) (A, error)
	Combine(left, right A) (A, error)
	Finish(acc A) R
}

type funcCollector[T, A, R any] struct {
	supply     func() A
	accumulate func(A, T) (A, error)
	combine    func(A, A) (A, error)
	finish     func(A) R
}

func (c funcCollector[T, A, R]) Supply() A                        { return c.supply() }
func (c funcCollector[T, A, R]) Accumulate(acc A, v T) (A, error) { return c.accumulate(acc, v) }
func (c funcCollector[T, A, R]) Combine(l, r A) (A, error)        { return c.combine(l, r) }
func (c funcCollector[T, A, R]) Finish(acc A) R                   { return c.finish(acc) }

// NewCollector builds a Collector from its four functions. A nil finish
// requires A and R to be the same type.
func NewCollector[T, A, R any](
	supply func() A,
	accumulate func(A, T) (A, error),
	combine func(A, A) (A, error),
	finish func(A) R,
) Collector[T, A, R] {
	if finish == nil {
		finish = func(a A) R { return any(a).(R) }
	}
	return funcCollector[T, A, R]{supply: supply, accumulate: accumulate, combine: combine, finish: finish}
}

func identityFinish[A any](a A) A { return a }

// ToList collects values into a slice in encounter order. The result is never nil.
func ToList[T any]() Collector[T, []T, []T] {
	return NewCollector(
		func() []T { return nil },
		func(acc []T, v T) ([]T, error) { return append(acc, v), nil },
		func(l, r []T) ([]T, error) { return append(l, r...), nil },
		func(acc []T) []T {
			if acc == nil {
				return []T{}
			}
			return acc
		},
	)
}

// ToSet collects distinct values.
func ToSet[T comparable]() Collector[T, map[T]struct{}, map[T]struct{}] {
	return NewCollector(
		func() map[T]struct{} { return make(map[T]struct{}) },
		func(acc map[T]struct{}, v T) (map[T]struct{}, error) {
			acc[v] = struct{}{}
			return acc, nil
		},
		func(l, r map[T]struct{}) (map[T]struct{}, error) {
			for v := range r {
				l[v] = struct{}{}
			}
			return l, nil
		},
		identityFinish[map[T]struct{}],
	)
}

// ToMap collects values into an insertion-ordered map. When two values map
// to the same key, merge(old, new) decides the stored value; with a nil
// merge the collision fails with DUPLICATE_KEY.
func ToMap[T any, K comparable, V any](key func(T) K, value func(T) V, merge func(old, new V) V) Collector[T, *OrderedMap[K, V], *OrderedMap[K, V]] {
	put := func(m *OrderedMap[K, V], k K, v V) error {
		if old, ok := m.Get(k); ok {
			if merge == nil {
				return errors.DuplicateKey(k)
			}
			v = merge(old, v)
		}
		m.Put(k, v)
		return nil
	}
	return NewCollector(
		NewOrderedMap[K, V],
		func(acc *OrderedMap[K, V], v T) (*OrderedMap[K, V], error) {
			return acc, put(acc, key(v), value(v))
		},
		func(l, r *OrderedMap[K, V]) (*OrderedMap[K, V], error) {
			var err error
			r.Each(func(k K, v V) {
				if err == nil {
					err = put(l, k, v)
				}
			})
			return l, err
		},
		identityFinish[*OrderedMap[K, V]],
	)
}

// ToSortedMap is ToMap with a key-ordered result.
func ToSortedMap[T any, K cmp.Ordered, V any](key func(T) K, value func(T) V, merge func(old, new V) V) Collector[T, *SortedMap[K, V], *SortedMap[K, V]] {
	put := func(m *SortedMap[K, V], k K, v V) error {
		if old, ok := m.Get(k); ok {
			if merge == nil {
				return errors.DuplicateKey(k)
			}
			v = merge(old, v)
		}
		m.Put(k, v)
		return nil
	}
	return NewCollector(
		NewSortedMap[K, V],
		func(acc *SortedMap[K, V], v T) (*SortedMap[K, V], error) {
			return acc, put(acc, key(v), value(v))
		},
		func(l, r *SortedMap[K, V]) (*SortedMap[K, V], error) {
			var err error
			r.Each(func(k K, v V) {
				if err == nil {
					err = put(l, k, v)
				}
			})
			return l, err
		},
		identityFinish[*SortedMap[K, V]],
	)
}

// GroupingBy groups values by classify and reduces each group with
// downstream. Groups appear in first-encounter order of their keys.
func GroupingBy[T any, K comparable, A, R any](classify func(T) K, downstream Collector[T, A, R]) Collector[T, *OrderedMap[K, A], *OrderedMap[K, R]] {
	return NewCollector(
		NewOrderedMap[K, A],
		func(acc *OrderedMap[K, A], v T) (*OrderedMap[K, A], error) {
			k := classify(v)
			group, ok := acc.Get(k)
			if !ok {
				group = downstream.Supply()
			}
			group, err := downstream.Accumulate(group, v)
			if err != nil {
				return acc, err
			}
			acc.Put(k, group)
			return acc, nil
		},
		func(l, r *OrderedMap[K, A]) (*OrderedMap[K, A], error) {
			var err error
			r.Each(func(k K, right A) {
				if err != nil {
					return
				}
				if left, ok := l.Get(k); ok {
					right, err = downstream.Combine(left, right)
				}
				l.Put(k, right)
			})
			return l, err
		},
		func(acc *OrderedMap[K, A]) *OrderedMap[K, R] {
			return mapValues(acc, downstream.Finish)
		},
	)
}

// GroupingByList groups values by classify into slices.
func GroupingByList[T any, K comparable](classify func(T) K) Collector[T, *OrderedMap[K, []T], *OrderedMap[K, []T]] {
	return GroupingBy(classify, ToList[T]())
}

// GroupingBySorted is GroupingBy with groups in key order.
func GroupingBySorted[T any, K cmp.Ordered, A, R any](classify func(T) K, downstream Collector[T, A, R]) Collector[T, *SortedMap[K, A], *SortedMap[K, R]] {
	return NewCollector(
		NewSortedMap[K, A],
		func(acc *SortedMap[K, A], v T) (*SortedMap[K, A], error) {
			k := classify(v)
			group, ok := acc.Get(k)
			if !ok {
				group = downstream.Supply()
			}
			group, err := downstream.Accumulate(group, v)
			if err != nil {
				return acc, err
			}
			acc.Put(k, group)
			return acc, nil
		},
		func(l, r *SortedMap[K, A]) (*SortedMap[K, A], error) {
			var err error
			r.Each(func(k K, right A) {
				if err != nil {
					return
				}
				if left, ok := l.Get(k); ok {
					right, err = downstream.Combine(left, right)
				}
				l.Put(k, right)
			})
			return l, err
		},
		func(acc *SortedMap[K, A]) *SortedMap[K, R] {
			out := NewSortedMap[K, R]()
			acc.Each(func(k K, a A) {
				out.Put(k, downstream.Finish(a))
			})
			return out
		},
	)
}

// Partition is the result of PartitioningBy: the reduction of the values
// that matched the predicate and of those that did not.
type Partition[R any] struct {
	Matched R
	Rest    R
}

// PartitioningBy splits values by pred and reduces each side with downstream.
// Both sides are always present, even when empty.
func PartitioningBy[T, A, R any](pred func(T) bool, downstream Collector[T, A, R]) Collector[T, Partition[A], Partition[R]] {
	return NewCollector(
		func() Partition[A] {
			return Partition[A]{Matched: downstream.Supply(), Rest: downstream.Supply()}
		},
		func(acc Partition[A], v T) (Partition[A], error) {
			var err error
			if pred(v) {
				acc.Matched, err = downstream.Accumulate(acc.Matched, v)
			} else {
				acc.Rest, err = downstream.Accumulate(acc.Rest, v)
			}
			return acc, err
		},
		func(l, r Partition[A]) (Partition[A], error) {
			matched, err := downstream.Combine(l.Matched, r.Matched)
			if err != nil {
				return l, err
			}
			rest, err := downstream.Combine(l.Rest, r.Rest)
			if err != nil {
				return l, err
			}
			return Partition[A]{Matched: matched, Rest: rest}, nil
		},
		func(acc Partition[A]) Partition[R] {
			return Partition[R]{Matched: downstream.Finish(acc.Matched), Rest: downstream.Finish(acc.Rest)}
		},
	)
}

// Mapping applies fn to each value before handing it to downstream.
func Mapping[T, U, A, R any](fn func(T) U, downstream Collector[U, A, R]) Collector[T, A, R] {
	return NewCollector(
		downstream.Supply,
		func(acc A, v T) (A, error) { return downstream.Accumulate(acc, fn(v)) },
		downstream.Combine,
		downstream.Finish,
	)
}

// Filtering hands only values satisfying pred to downstream.
func Filtering[T, A, R any](pred func(T) bool, downstream Collector[T, A, R]) Collector[T, A, R] {
	return NewCollector(
		downstream.Supply,
		func(acc A, v T) (A, error) {
			if !pred(v) {
				return acc, nil
			}
			return downstream.Accumulate(acc, v)
		},
		downstream.Combine,
		downstream.Finish,
	)
}

// Counting counts values.
func Counting[T any]() Collector[T, int, int] {
	return NewCollector(
		func() int { return 0 },
		func(n int, _ T) (int, error) { return n + 1, nil },
		func(l, r int) (int, error) { return l + r, nil },
		identityFinish[int],
	)
}

// Summing adds fn(v) over all values.
func Summing[T any, N Number](fn func(T) N) Collector[T, N, N] {
	return NewCollector(
		func() N { return 0 },
		func(acc N, v T) (N, error) { return acc + fn(v), nil },
		func(l, r N) (N, error) { return l + r, nil },
		identityFinish[N],
	)
}

// Averaging returns the arithmetic mean of fn(v), or 0 when there are no values.
func Averaging[T any, N Number](fn func(T) N) Collector[T, SummaryStatistics[N], float64] {
	return CollectingAndThen(SummarizingStats(fn), SummaryStatistics[N].Average)
}

// SummarizingStats computes count, sum, min, max and average of fn(v).
func SummarizingStats[T any, N Number](fn func(T) N) Collector[T, SummaryStatistics[N], SummaryStatistics[N]] {
	return NewCollector(
		func() SummaryStatistics[N] { return SummaryStatistics[N]{} },
		func(acc SummaryStatistics[N], v T) (SummaryStatistics[N], error) {
			acc.Accept(fn(v))
			return acc, nil
		},
		func(l, r SummaryStatistics[N]) (SummaryStatistics[N], error) {
			l.Combine(r)
			return l, nil
		},
		identityFinish[SummaryStatistics[N]],
	)
}

// Joining concatenates strings with sep between them.
func Joining(sep string) Collector[string, []string, string] {
	return CollectingAndThen(ToList[string](), func(parts []string) string {
		return strings.Join(parts, sep)
	})
}

// Reducing folds values with fn starting from a copy of identity.
func Reducing[T any](identity T, fn func(a, b T) T) Collector[T, T, T] {
	return NewCollector(
		func() T { return copyOf(identity) },
		func(acc T, v T) (T, error) { return fn(acc, v), nil },
		func(l, r T) (T, error) { return fn(l, r), nil },
		identityFinish[T],
	)
}

// CollectingAndThen applies then to the result of downstream.
func CollectingAndThen[T, A, R, RR any](downstream Collector[T, A, R], then func(R) RR) Collector[T, A, RR] {
	return NewCollector(
		downstream.Supply,
		downstream.Accumulate,
		downstream.Combine,
		func(acc A) RR { return then(downstream.Finish(acc)) },
	)
}
