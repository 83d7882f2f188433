package stream

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"golang.org/x/exp/constraints"
)

// Number is the set of element types Sum, Average and Stats accept.
type Number interface {
	constraints.Integer | constraints.Float
}

// SummaryStatistics accumulates count, sum, min and max of numeric values.
// The zero value is empty and ready to use. Min and Max are zero while
// Count is zero.
type SummaryStatistics[N Number] struct {
	Count int64
	Sum   N
	Min   N
	Max   N
}

// Accept records one value.
func (s *SummaryStatistics[N]) Accept(v N) {
	if s.Count == 0 {
		s.Min, s.Max = v, v
	} else {
		s.Min = min(s.Min, v)
		s.Max = max(s.Max, v)
	}
	s.Count++
	s.Sum += v
}

// Combine merges other into s.
func (s *SummaryStatistics[N]) Combine(other SummaryStatistics[N]) {
	if other.Count == 0 {
		return
	}
	if s.Count == 0 {
		*s = other
		return
	}
	s.Count += other.Count
	s.Sum += other.Sum
	s.Min = min(s.Min, other.Min)
	s.Max = max(s.Max, other.Max)
}

// Average returns Sum/Count, or 0 when empty.
func (s SummaryStatistics[N]) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.Count)
}

func (s SummaryStatistics[N]) String() string {
	return fmt.Sprintf("SummaryStatistics{count=%d, sum=%v, min=%v, average=%f, max=%v}",
		s.Count, s.Sum, s.Min, s.Average(), s.Max)
}

// Humanize renders the statistics with thousands separators.
func (s SummaryStatistics[N]) Humanize() string {
	return fmt.Sprintf("count=%s sum=%s min=%s average=%s max=%s",
		humanize.Comma(s.Count),
		humanize.CommafWithDigits(float64(s.Sum), 2),
		humanize.CommafWithDigits(float64(s.Min), 2),
		humanize.CommafWithDigits(s.Average(), 2),
		humanize.CommafWithDigits(float64(s.Max), 2),
	)
}
