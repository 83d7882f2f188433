package stream

import (
	"cmp"
	"context"
	"strings"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"

	"github.com/kbukum/seqkit/errors"
)

func TestReduce(t *testing.T) {
	add := func(a, b int) int { return a + b }
	tests := []struct {
		name string
		in   []int
		want int
	}{
		{"empty yields identity", nil, 0},
		{"single", []int{7}, 7},
		{"many", []int{1, 2, 3, 4}, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Reduce(context.Background(), FromSlice(tc.in), 0, add)
			if err != nil {
				t.Fatal(err)
			}
			if got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestReduceOptional(t *testing.T) {
	mul := func(a, b int) int { return a * b }

	got, err := ReduceOptional(context.Background(), Of(2, 3, 4), mul)
	if err != nil {
		t.Fatal(err)
	}
	if v, err := got.Get(); err != nil || v != 24 {
		t.Errorf("expected 24, got %v (%v)", v, err)
	}

	empty, err := ReduceOptional(context.Background(), Empty[int](), mul)
	if err != nil {
		t.Fatal(err)
	}
	if empty.IsPresent() {
		t.Errorf("expected absent, got %v", empty)
	}
}

func TestFold(t *testing.T) {
	got, err := Fold(context.Background(), Of("a", "bb", "ccc"), 0,
		func(n int, s string) int { return n + len(s) },
		func(a, b int) int { return a + b },
	)
	if err != nil {
		t.Fatal(err)
	}
	if got != 6 {
		t.Errorf("expected 6, got %d", got)
	}
}

func TestFold_IdentityNotShared(t *testing.T) {
	appendLen := func(acc []int, s string) []int { return append(acc, len(s)) }
	concat := func(a, b []int) []int { return append(a, b...) }
	identity := make([]int, 0, 8)

	first, err := Fold(context.Background(), Of("a", "bb"), identity, appendLen, concat)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Fold(context.Background(), Of("ccc"), identity, appendLen, concat)
	if err != nil {
		t.Fatal(err)
	}
	if diff := gocmp.Diff([]int{1, 2}, first); diff != "" {
		t.Errorf("first fold mismatch (-want +got):\n%s", diff)
	}
	if diff := gocmp.Diff([]int{3}, second); diff != "" {
		t.Errorf("second fold mismatch (-want +got):\n%s", diff)
	}
}

func TestCount(t *testing.T) {
	n, err := Count(context.Background(), Filter(Range(0, 100), func(n int) bool { return n%10 == 0 }))
	if err != nil {
		t.Fatal(err)
	}
	if n != 10 {
		t.Errorf("expected 10, got %d", n)
	}
}

type scored struct {
	name  string
	score int
}

func byScore(a, b scored) int { return cmp.Compare(a.score, b.score) }

func TestMinMax(t *testing.T) {
	players := []scored{{"ann", 3}, {"bob", 1}, {"cid", 3}, {"dan", 1}}

	lo, err := Min(context.Background(), FromSlice(players), byScore)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := lo.Get(); v.name != "bob" {
		t.Errorf("expected first minimal value bob, got %v", v)
	}

	hi, err := Max(context.Background(), FromSlice(players), byScore)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := hi.Get(); v.name != "ann" {
		t.Errorf("expected first maximal value ann, got %v", v)
	}

	none, err := Min(context.Background(), Empty[scored](), byScore)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := none.Get(); !errors.Is(err, errors.ErrCodeEmptyResult) {
		t.Errorf("expected EMPTY_RESULT from Get on empty min, got %v", err)
	}
}

func TestMatch(t *testing.T) {
	even := func(n int) bool { return n%2 == 0 }
	tests := []struct {
		name     string
		in       []int
		wantAny  bool
		wantAll  bool
		wantNone bool
	}{
		{"empty", nil, false, true, true},
		{"all even", []int{2, 4}, true, true, false},
		{"mixed", []int{1, 2}, true, false, false},
		{"all odd", []int{1, 3}, false, false, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := context.Background()
			anyOK, err := AnyMatch(ctx, FromSlice(tc.in), even)
			if err != nil {
				t.Fatal(err)
			}
			allOK, err := AllMatch(ctx, FromSlice(tc.in), even)
			if err != nil {
				t.Fatal(err)
			}
			noneOK, err := NoneMatch(ctx, FromSlice(tc.in), even)
			if err != nil {
				t.Fatal(err)
			}
			if anyOK != tc.wantAny || allOK != tc.wantAll || noneOK != tc.wantNone {
				t.Errorf("expected any=%v all=%v none=%v, got any=%v all=%v none=%v",
					tc.wantAny, tc.wantAll, tc.wantNone, anyOK, allOK, noneOK)
			}
		})
	}
}

func TestAnyMatch_StopsAtFirstMatch(t *testing.T) {
	pulls := 0
	found, err := AnyMatch(context.Background(), Peek(Range(0, 1000), func(int) { pulls++ }), func(n int) bool {
		return n == 4
	})
	if err != nil {
		t.Fatal(err)
	}
	if !found {
		t.Fatal("expected a match")
	}
	if pulls != 5 {
		t.Errorf("expected 5 pulls, got %d", pulls)
	}
}

func TestAllMatch_InfiniteStreamStops(t *testing.T) {
	ok, err := AllMatch(context.Background(), Iterate(1, func(n int) int { return n + 1 }), func(n int) bool {
		return n < 10
	})
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected false")
	}
}

func TestFindFirst(t *testing.T) {
	got, err := FindFirst(context.Background(), Filter(Of("kiwi", "plum", "pear"), func(s string) bool {
		return strings.HasPrefix(s, "p")
	}))
	if err != nil {
		t.Fatal(err)
	}
	if got.OrElse("") != "plum" {
		t.Errorf("expected plum, got %v", got)
	}
}

func TestFindAny_Sequential(t *testing.T) {
	got, err := FindAny(context.Background(), Of(5, 6))
	if err != nil {
		t.Fatal(err)
	}
	if got.OrElse(0) != 5 {
		t.Errorf("expected 5, got %v", got)
	}
}

func TestSumAverageStats(t *testing.T) {
	ctx := context.Background()

	sum, err := Sum(ctx, Of(1.5, 2.5, 3))
	if err != nil {
		t.Fatal(err)
	}
	if sum != 7 {
		t.Errorf("expected sum 7, got %v", sum)
	}

	avg, err := Average(ctx, Of(1, 2, 3, 4))
	if err != nil {
		t.Fatal(err)
	}
	if avg.OrElse(-1) != 2.5 {
		t.Errorf("expected average 2.5, got %v", avg)
	}

	emptyAvg, err := Average(ctx, Empty[int]())
	if err != nil {
		t.Fatal(err)
	}
	if emptyAvg.IsPresent() {
		t.Errorf("expected absent average, got %v", emptyAvg)
	}

	stats, err := Stats(ctx, Of(4, -2, 9, 1))
	if err != nil {
		t.Fatal(err)
	}
	want := SummaryStatistics[int]{Count: 4, Sum: 12, Min: -2, Max: 9}
	if diff := gocmp.Diff(want, stats); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if stats.Average() != 3 {
		t.Errorf("expected average 3, got %v", stats.Average())
	}
}

func TestSummaryStatistics_Format(t *testing.T) {
	var s SummaryStatistics[int64]
	for _, v := range []int64{1000, 2500, 1600} {
		s.Accept(v)
	}
	if got, want := s.String(), "SummaryStatistics{count=3, sum=5100, min=1000, average=1700.000000, max=2500}"; got != want {
		t.Errorf("String:\nwant %s\ngot  %s", want, got)
	}
	if got, want := s.Humanize(), "count=3 sum=5,100 min=1,000 average=1,700 max=2,500"; got != want {
		t.Errorf("Humanize:\nwant %s\ngot  %s", want, got)
	}
}

func TestSummaryStatistics_CombineEmpty(t *testing.T) {
	var left, right SummaryStatistics[int]
	right.Accept(-5)
	left.Combine(right)
	if left.Min != -5 || left.Max != -5 || left.Count != 1 {
		t.Errorf("unexpected combined stats %+v", left)
	}
	left.Combine(SummaryStatistics[int]{})
	if left.Count != 1 {
		t.Errorf("combining empty stats changed count: %+v", left)
	}
}

func TestOptional(t *testing.T) {
	some := Some("x")
	none := None[string]()

	if !some.IsPresent() || none.IsPresent() {
		t.Fatal("presence mismatch")
	}
	if some.OrElse("y") != "x" || none.OrElse("y") != "y" {
		t.Error("OrElse mismatch")
	}
	called := false
	none.IfPresent(func(string) { called = true })
	if called {
		t.Error("IfPresent called on empty optional")
	}
	some.IfPresent(func(v string) { called = v == "x" })
	if !called {
		t.Error("IfPresent not called on present optional")
	}
	if _, err := none.Get(); !errors.Is(err, errors.ErrCodeEmptyResult) {
		t.Errorf("expected EMPTY_RESULT, got %v", err)
	}
}
