// Package lines opens line-oriented text resources as bound streams.
//
// A path of "-" reads standard input. Gzip-compressed files are detected and
// decompressed transparently. Failure to open is a RESOURCE error.
//
//	n, err := lines.With(ctx, "bands.txt", func(ctx context.Context, s *stream.Stream[string]) (int, error) {
//	    return stream.Count(ctx, stream.Filter(s, func(l string) bool { return strings.Contains(l, "jit") }))
//	})
package lines
