// Package stream provides lazy, single-pass, pull-based sequence pipelines.
//
// A Stream is built from a source (slice, integer range, generator, iterator
// or line-oriented resource), extended with stages (Filter, Map, FlatMap,
// Distinct, Limit, Skip, Peek, Sorted, ...) and finally consumed by exactly
// one terminal operation (ForEach, Reduce, Count, Min, Max, AnyMatch,
// FindFirst, ToSlice, Collect, ...). No work happens until the terminal pulls.
//
// Streams are single-pass. Using a stream as the upstream of a second stage,
// running a second terminal on it, or running a terminal after Close fails
// with a SEQUENCE_REUSE error. A resource bound to the source (an open file
// for FromResource) is released exactly once: when the terminal completes,
// when it fails, or on an explicit Close, whichever comes first.
//
// # Collectors
//
// Collect drives a Collector, a four-part accumulation protocol
// (Supply, Accumulate, Combine, Finish). Collectors compose:
//
//	byName, err := stream.Collect(ctx, people,
//	    stream.GroupingBy(Person.Name, stream.Mapping(Person.Age, stream.ToList[int]())))
//
// GroupingBy and ToMap results keep first-encounter key order.
//
// # Parallel execution
//
// Parallel switches a stream to partitioned evaluation: the source is split
// into contiguous ranges, each range runs through its own copy of the stage
// chain on a bounded worker pool, and partial results are merged pairwise in
// encounter order. Ordered mode (the default) keeps ForEach, ToSlice and
// FindFirst in encounter order; Unordered lets ForEach interleave. Chains that
// contain order-dependent stateful stages (Distinct, Sorted, Limit, Skip,
// TakeWhile, DropWhile) run sequentially.
//
// # Usage
//
//	evens := stream.Filter(stream.Range(1, 11), func(n int) bool { return n%2 == 0 })
//	doubled := stream.MapTo(evens, func(n int) int { return n * 2 })
//	sum, err := stream.Reduce(ctx, doubled, 0, func(a, b int) int { return a + b })
package stream
