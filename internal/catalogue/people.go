package catalogue

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/seqkit/stream"
)

type gender int

const (
	male gender = iota
	female
)

func (g gender) String() string {
	if g == female {
		return "FEMALE"
	}
	return "MALE"
}

type person struct {
	name   string
	gender gender
	age    int
}

func (p person) String() string {
	return fmt.Sprintf("Person [name=%s, gender=%s, age=%d]", p.name, p.gender, p.age)
}

func people() []person {
	return []person{
		{"Sara", female, 20},
		{"Sara", female, 22},
		{"Bob", male, 20},
		{"Paula", female, 32},
		{"Paul", male, 32},
		{"Jack", male, 2},
		{"Jack", male, 72},
		{"Jill", female, 12},
	}
}

func isEven(n int) bool { return n%2 == 0 }

// doubledEvens is the shared head of the reduction samples.
func doubledEvens(e *Env) *stream.Stream[int] {
	evens := stream.Filter(use(e, stream.RangeClosed(1, 10)), isEven)
	return stream.MapTo(evens, func(n int) int { return n * 2 })
}

var peopleSamples = []Sample{
	{"people-1", "filter chain and first element", func(ctx context.Context, e *Env) error {
		s := use(e, stream.RangeClosed(1, 10))
		s = stream.Filter(s, func(n int) bool { return n > 5 })
		s = stream.Filter(s, isEven)
		s = stream.Filter(s, func(n int) bool { return n < 9 })
		s = stream.Filter(s, func(n int) bool { return n*2 > 15 })
		first, err := stream.FindFirst(ctx, s)
		if err != nil {
			return err
		}
		v, err := first.Get()
		if err != nil {
			return err
		}
		e.println(v)
		return nil
	}},
	{"people-2", "map, peek and reduce", func(ctx context.Context, e *Env) error {
		s := stream.Peek(doubledEvens(e), func(n int) { e.println(n) })
		total, err := stream.Reduce(ctx, s, 0, func(carry, n int) int { return carry + n })
		if err != nil {
			return err
		}
		e.printf("\n%d\n", total)
		return nil
	}},
	{"people-3", "map, peek and sum", func(ctx context.Context, e *Env) error {
		total, err := stream.Sum(ctx, stream.Peek(doubledEvens(e), func(n int) { e.println(n) }))
		if err != nil {
			return err
		}
		e.printf("\n%d\n", total)
		return nil
	}},
	{"people-4", "map to float and sum", func(ctx context.Context, e *Env) error {
		evens := stream.Filter(use(e, stream.RangeClosed(1, 10)), isEven)
		doubled := stream.MapTo(evens, func(n int) float64 { return float64(n) * 2.0 })
		total, err := stream.Sum(ctx, stream.Peek(doubled, func(v float64) { e.printf("%.1f\n", v) }))
		if err != nil {
			return err
		}
		e.printf("\n%.1f\n", total)
		return nil
	}},
	{"people-5", "doubled evens to a list", func(ctx context.Context, e *Env) error {
		list, err := stream.Collect(ctx, doubledEvens(e), stream.ToList[int]())
		if err != nil {
			return err
		}
		e.println(list)
		return nil
	}},
	{"people-6", "map keyed by name and age", func(ctx context.Context, e *Env) error {
		m, err := stream.Collect(ctx, use(e, stream.FromSlice(people())), stream.ToMap(
			func(p person) string { return p.name + strconv.Itoa(p.age) },
			func(p person) person { return p },
			nil,
		))
		if err != nil {
			return err
		}
		e.println(m)
		return nil
	}},
	{"people-7", "group people by name", func(ctx context.Context, e *Env) error {
		groups, err := stream.Collect(ctx, use(e, stream.FromSlice(people())),
			stream.GroupingByList(func(p person) string { return p.name }))
		if err != nil {
			return err
		}
		e.println(groups)
		return nil
	}},
	{"people-8", "group ages by name", func(ctx context.Context, e *Env) error {
		groups, err := stream.Collect(ctx, use(e, stream.FromSlice(people())),
			stream.GroupingBy(
				func(p person) string { return p.name },
				stream.Mapping(func(p person) int { return p.age }, stream.ToList[int]()),
			))
		if err != nil {
			return err
		}
		e.println(groups)
		return nil
	}},
}

var extraSamples = []Sample{
	{"extra-1", "partition people into adults and minors", func(ctx context.Context, e *Env) error {
		p, err := stream.Collect(ctx, use(e, stream.FromSlice(people())),
			stream.PartitioningBy(func(p person) bool { return p.age >= 18 }, stream.Counting[person]()))
		if err != nil {
			return err
		}
		e.printf("adults=%d minors=%d\n", p.Matched, p.Rest)
		return nil
	}},
	{"extra-2", "average age by gender", func(ctx context.Context, e *Env) error {
		avg, err := stream.Collect(ctx, use(e, stream.FromSlice(people())),
			stream.GroupingBySorted(
				func(p person) string { return p.gender.String() },
				stream.Averaging(func(p person) int { return p.age }),
			))
		if err != nil {
			return err
		}
		e.println(avg)
		return nil
	}},
	{"extra-3", "distinct words in file lines", func(ctx context.Context, e *Env) error {
		bands, err := e.lines("bands.txt")
		if err != nil {
			return err
		}
		words := stream.FlatMapSlice(bands, strings.Fields)
		n, err := stream.Count(ctx, stream.Distinct(stream.MapTo(words, strings.ToLower)))
		if err != nil {
			return err
		}
		e.printf("%d distinct words\n", n)
		return nil
	}},
	{"extra-4", "scores of rows above fifteen", func(ctx context.Context, e *Env) error {
		rs, err := readings(e)
		if err != nil {
			return err
		}
		over := stream.Filter(rs, func(r reading) bool { return r.value > 15 })
		stats, err := stream.Collect(ctx, over, stream.SummarizingStats(func(r reading) float64 { return r.score }))
		if err != nil {
			return err
		}
		e.println(stats.Humanize())
		return nil
	}},
}
