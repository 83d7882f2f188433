package catalogue

import (
	"context"
	"strconv"
	"strings"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/records"
	"github.com/kbukum/seqkit/stream"
)

// reading is one well-formed row of data.txt.
type reading struct {
	name  string
	value int
	score float64
}

func parseReading(_ context.Context, f []string) (reading, error) {
	v, err := records.Int(f, 1)
	if err != nil {
		return reading{}, err
	}
	score, err := records.Float(f, 2)
	if err != nil {
		return reading{}, err
	}
	return reading{name: f[0], value: v, score: score}, nil
}

// readings streams the rows of data.txt that have all three fields.
func readings(e *Env) (*stream.Stream[reading], error) {
	rows, err := e.lines("data.txt")
	if err != nil {
		return nil, err
	}
	return stream.Map(stream.Filter(records.Rows(rows), records.HasFields(3)), parseReading), nil
}

type employee struct {
	salary string
}

var streamSamples = []Sample{
	{"streams-1", "integer range", func(ctx context.Context, e *Env) error {
		return each(ctx, e, use(e, stream.Range(1, 10)))
	}},
	{"streams-2", "integer range with skip", func(ctx context.Context, e *Env) error {
		return each(ctx, e, stream.Skip(use(e, stream.Range(1, 10)), 5))
	}},
	{"streams-3", "integer range sum", func(ctx context.Context, e *Env) error {
		sum, err := stream.Sum(ctx, use(e, stream.Range(1, 5)))
		if err != nil {
			return err
		}
		e.println(sum)
		return nil
	}},
	{"streams-4", "filter, sort and find first", func(ctx context.Context, e *Env) error {
		s := stream.Filter(use(e, stream.Of("Gary", "Derek", "Alicia")), func(x string) bool {
			return strings.HasPrefix(x, "Ga")
		})
		first, err := stream.FindFirst(ctx, stream.SortedNatural(s))
		if err != nil {
			return err
		}
		first.IfPresent(func(x string) { e.println(x) })
		return nil
	}},
	{"streams-5", "filter and sort a slice", func(ctx context.Context, e *Env) error {
		names := []string{"Gary", "Derek", "Alicia", "Nadine", "George"}
		s := stream.Filter(use(e, stream.FromSlice(names)), func(x string) bool {
			return strings.HasPrefix(x, "G")
		})
		return each(ctx, e, stream.SortedNatural(s))
	}},
	{"streams-6", "average of squares", func(ctx context.Context, e *Env) error {
		squares := stream.MapTo(use(e, stream.Of(2, 4, 6, 8, 10)), func(x int) int { return x * x })
		avg, err := stream.Average(ctx, squares)
		if err != nil {
			return err
		}
		avg.IfPresent(func(v float64) { e.println(v) })
		return nil
	}},
	{"streams-7", "filter by length and sort", func(ctx context.Context, e *Env) error {
		s := stream.Filter(use(e, stream.Of("Gary", "Derek", "Alicia")), func(x string) bool {
			return len(x) > 4
		})
		return each(ctx, e, stream.SortedNatural(s))
	}},
	{"streams-8", "sort and filter file lines", func(ctx context.Context, e *Env) error {
		bands, err := e.lines("bands.txt")
		if err != nil {
			return err
		}
		return each(ctx, e, stream.Filter(stream.SortedNatural(bands), func(x string) bool {
			return len(x) < 14
		}))
	}},
	{"streams-9", "collect matching file lines", func(ctx context.Context, e *Env) error {
		bands, err := e.lines("bands.txt")
		if err != nil {
			return err
		}
		matches, err := stream.ToSlice(ctx, stream.Filter(bands, func(x string) bool {
			return strings.Contains(x, "ovi")
		}))
		if err != nil {
			return err
		}
		for _, m := range matches {
			e.println(m)
		}
		return nil
	}},
	{"streams-10", "count CSV rows", func(ctx context.Context, e *Env) error {
		rows, err := e.lines("data.txt")
		if err != nil {
			return err
		}
		n, err := stream.Count(ctx, stream.Filter(records.Rows(rows), records.HasFields(3)))
		if err != nil {
			return err
		}
		e.printf("%d rows.\n", n)
		return nil
	}},
	{"streams-11", "parse CSV rows", func(ctx context.Context, e *Env) error {
		rows, err := e.lines("data.txt")
		if err != nil {
			return err
		}
		over := stream.FilterErr(stream.Filter(records.Rows(rows), records.HasFields(3)),
			func(_ context.Context, f []string) (bool, error) {
				v, err := records.Int(f, 1)
				return v > 15, err
			})
		return stream.ForEachOrdered(ctx, over, func(_ context.Context, f []string) error {
			e.println(strings.Join(f, " "))
			return nil
		})
	}},
	{"streams-12", "CSV rows to a keyed map", func(ctx context.Context, e *Env) error {
		rs, err := readings(e)
		if err != nil {
			return err
		}
		over := stream.Filter(rs, func(r reading) bool { return r.value > 15 })
		m, err := stream.Collect(ctx, over, stream.ToMap(
			func(r reading) string { return r.name },
			func(r reading) int { return r.value },
			nil,
		))
		if err != nil {
			return err
		}
		m.Each(func(k string, v int) { e.printf("key: %s  value: %d\n", k, v) })
		return nil
	}},
	{"streams-13", "reduce to a total", func(ctx context.Context, e *Env) error {
		total, err := stream.Reduce(ctx, use(e, stream.Of(7.3, 1.5, 4.8)), 0.0, func(a, b float64) float64 {
			return a + b
		})
		if err != nil {
			return err
		}
		e.printf("Total = %.2f\n", total)
		return nil
	}},
	{"streams-14", "summary statistics", func(ctx context.Context, e *Env) error {
		stats, err := stream.Stats(ctx, use(e, stream.Of(7, 2, 19, 88, 73, 4, 10)))
		if err != nil {
			return err
		}
		e.println(stats)
		return nil
	}},
	{"streams-15", "employee salary sum", func(ctx context.Context, e *Env) error {
		staff := []employee{{"5000"}, {"6000"}, {"4000"}}
		salaries := stream.Map(use(e, stream.FromSlice(staff)), func(_ context.Context, emp employee) (int, error) {
			n, err := strconv.Atoi(emp.salary)
			if err != nil {
				return 0, errors.Parse(emp.salary, "int", err)
			}
			return n, nil
		})
		sum, err := stream.Reduce(ctx, salaries, 0, func(a, b int) int { return a + b })
		if err != nil {
			return err
		}
		e.printf("salary sum = %d\n", sum)
		return nil
	}},
}
