package stream

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/seqkit/errors"
)

type person struct {
	name string
	age  int
}

var people = []person{
	{"Sara", 20},
	{"Bob", 20},
	{"Sara", 22},
	{"Paul", 32},
}

func TestToMap(t *testing.T) {
	words := []string{"a", "bb", "a", "cc", "a"}
	first := func(s string) string { return s[:1] }
	one := func(string) int { return 1 }

	t.Run("with merge", func(t *testing.T) {
		got, err := Collect(context.Background(), Of("a", "b", "a", "b", "a", "b"),
			ToMap(func(s string) string { return s }, one, func(old, new int) int { return old + new }))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(map[string]int{"a": 3, "b": 3}, got.Map()); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"a", "b"}, got.Keys()); diff != "" {
			t.Errorf("key order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("without merge fails on duplicate", func(t *testing.T) {
		_, err := Collect(context.Background(), FromSlice(words), ToMap(first, one, nil))
		if !errors.Is(err, errors.ErrCodeDuplicateKey) {
			t.Fatalf("expected DUPLICATE_KEY, got %v", err)
		}
	})

	t.Run("sorted", func(t *testing.T) {
		got, err := Collect(context.Background(), Of("pear", "apple", "fig"),
			ToSortedMap(func(s string) string { return s }, func(s string) int { return len(s) }, nil))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"apple", "fig", "pear"}, got.Keys()); diff != "" {
			t.Errorf("key order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]int{5, 3, 4}, got.Values()); diff != "" {
			t.Errorf("values mismatch (-want +got):\n%s", diff)
		}
		if got.String() != "{apple=5, fig=3, pear=4}" {
			t.Errorf("unexpected rendering %s", got)
		}
	})
}

func TestGroupingBy(t *testing.T) {
	byName := func(p person) string { return p.name }

	t.Run("list", func(t *testing.T) {
		got, err := Collect(context.Background(), FromSlice(people), GroupingByList(byName))
		if err != nil {
			t.Fatal(err)
		}
		want := map[string][]person{
			"Sara": {{"Sara", 20}, {"Sara", 22}},
			"Bob":  {{"Bob", 20}},
			"Paul": {{"Paul", 32}},
		}
		if diff := cmp.Diff(want, got.Map(), cmp.AllowUnexported(person{})); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]string{"Sara", "Bob", "Paul"}, got.Keys()); diff != "" {
			t.Errorf("group order mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("mapping ages", func(t *testing.T) {
		under30 := Filter(FromSlice(people), func(p person) bool { return p.age < 30 })
		got, err := Collect(context.Background(), under30,
			GroupingBy(byName, Mapping(func(p person) int { return p.age }, ToList[int]())))
		if err != nil {
			t.Fatal(err)
		}
		want := map[string][]int{"Sara": {20, 22}, "Bob": {20}}
		if diff := cmp.Diff(want, got.Map()); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		if got.String() != "{Sara=[20 22], Bob=[20]}" {
			t.Errorf("unexpected rendering %s", got)
		}
	})

	t.Run("counting", func(t *testing.T) {
		got, err := Collect(context.Background(), FromSlice(people), GroupingBy(byName, Counting[person]()))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(map[string]int{"Sara": 2, "Bob": 1, "Paul": 1}, got.Map()); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("sorted keys", func(t *testing.T) {
		got, err := Collect(context.Background(), FromSlice(people),
			GroupingBySorted(byName, Averaging(func(p person) int { return p.age })))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"Bob", "Paul", "Sara"}, got.Keys()); diff != "" {
			t.Errorf("key order mismatch (-want +got):\n%s", diff)
		}
		if diff := cmp.Diff([]float64{20, 32, 21}, got.Values()); diff != "" {
			t.Errorf("values mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty stream", func(t *testing.T) {
		got, err := Collect(context.Background(), Empty[person](), GroupingByList(byName))
		if err != nil {
			t.Fatal(err)
		}
		if got.Len() != 0 {
			t.Errorf("expected no groups, got %s", got)
		}
	})
}

func TestPartitioningBy(t *testing.T) {
	adult := func(p person) bool { return p.age >= 21 }
	got, err := Collect(context.Background(), FromSlice(people), PartitioningBy(adult, Counting[person]()))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(Partition[int]{Matched: 2, Rest: 2}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	empty, err := Collect(context.Background(), Empty[person](), PartitioningBy(adult, ToList[person]()))
	if err != nil {
		t.Fatal(err)
	}
	if empty.Matched == nil || empty.Rest == nil {
		t.Errorf("expected both sides present, got %+v", empty)
	}
}

func TestDownstreamCollectors(t *testing.T) {
	ctx := context.Background()
	age := func(p person) int { return p.age }

	joined, err := Collect(ctx, MapTo(FromSlice(people), func(p person) string { return p.name }), Joining(", "))
	if err != nil {
		t.Fatal(err)
	}
	if joined != "Sara, Bob, Sara, Paul" {
		t.Errorf("unexpected join %q", joined)
	}

	empty, err := Collect(ctx, Empty[string](), Joining(","))
	if err != nil {
		t.Fatal(err)
	}
	if empty != "" {
		t.Errorf("expected empty join, got %q", empty)
	}

	total, err := Collect(ctx, FromSlice(people), Summing(age))
	if err != nil {
		t.Fatal(err)
	}
	if total != 94 {
		t.Errorf("expected 94, got %d", total)
	}

	avg, err := Collect(ctx, Empty[person](), Averaging(age))
	if err != nil {
		t.Fatal(err)
	}
	if avg != 0 {
		t.Errorf("expected 0 average for no values, got %v", avg)
	}

	stats, err := Collect(ctx, FromSlice(people), SummarizingStats(age))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(SummaryStatistics[int]{Count: 4, Sum: 94, Min: 20, Max: 32}, stats); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	oldest, err := Collect(ctx, MapTo(FromSlice(people), age), Reducing(0, func(a, b int) int { return max(a, b) }))
	if err != nil {
		t.Fatal(err)
	}
	if oldest != 32 {
		t.Errorf("expected 32, got %d", oldest)
	}

	shout, err := Collect(ctx, Of("a", "b"), CollectingAndThen(Joining("-"), strings.ToUpper))
	if err != nil {
		t.Fatal(err)
	}
	if shout != "A-B" {
		t.Errorf("expected A-B, got %q", shout)
	}

	older, err := Collect(ctx, FromSlice(people), Filtering(func(p person) bool { return p.age > 21 }, Counting[person]()))
	if err != nil {
		t.Fatal(err)
	}
	if older != 2 {
		t.Errorf("expected 2, got %d", older)
	}
}

func TestToListAndToSet(t *testing.T) {
	list, err := Collect(context.Background(), Empty[int](), ToList[int]())
	if err != nil {
		t.Fatal(err)
	}
	if list == nil {
		t.Error("expected non-nil empty list")
	}

	set, err := Collect(context.Background(), Of(1, 2, 2, 3, 1), ToSet[int]())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(map[int]struct{}{1: {}, 2: {}, 3: {}}, set); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestNewCollector_AccumulateError(t *testing.T) {
	failing := NewCollector[string, int, int](
		func() int { return 0 },
		func(n int, s string) (int, error) {
			if s == "bad" {
				return n, errors.Parse(s, "word", nil)
			}
			return n + 1, nil
		},
		func(l, r int) (int, error) { return l + r, nil },
		nil,
	)
	_, err := Collect(context.Background(), Of("ok", "bad", "ok"), failing)
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Fatalf("expected PARSE error, got %v", err)
	}
}

func TestOrderedMap_RePutKeepsPosition(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Put("x", 1)
	m.Put("y", 2)
	m.Put("x", 3)
	if diff := cmp.Diff([]string{"x", "y"}, m.Keys()); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if v, ok := m.Get("x"); !ok || v != 3 {
		t.Errorf("expected x=3, got %v %v", v, ok)
	}
	if _, ok := m.Get("z"); ok {
		t.Error("expected missing key")
	}
}
