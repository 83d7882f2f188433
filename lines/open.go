package lines

import (
	"bufio"
	"context"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/logger"
	"github.com/kbukum/seqkit/stream"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

const component = "lines"

// multiReadCloser closes every closer in order when Close is called.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// OpenReader opens path for reading. Gzip content is detected by its magic
// number or a .gz suffix and decompressed transparently. Stdin is never
// closed by the returned reader.
func OpenReader(path string) (io.ReadCloser, error) {
	if path == Stdin {
		return decompress(io.NopCloser(os.Stdin), path)
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Resource("open", err).WithDetail(logger.FieldPath, path)
	}
	return decompress(fh, path)
}

// OpenFSReader is OpenReader for a file inside fsys, such as an embedded
// data set.
func OpenFSReader(fsys fs.FS, name string) (io.ReadCloser, error) {
	fh, err := fsys.Open(name)
	if err != nil {
		return nil, errors.Resource("open", err).WithDetail(logger.FieldPath, name)
	}
	return decompress(fh, name)
}

func decompress(rc io.ReadCloser, name string) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	sig, _ := br.Peek(2)
	gz := len(sig) == 2 && sig[0] == 0x1f && sig[1] == 0x8b
	if !gz && !strings.HasSuffix(name, ".gz") {
		return &multiReadCloser{Reader: br, closers: []io.Closer{rc}}, nil
	}

	gr, err := gzip.NewReader(br)
	if err != nil {
		_ = rc.Close()
		return nil, errors.Resource("open", err).WithDetail(logger.FieldPath, name)
	}
	logger.Get(component).Debug("gzip input detected", logger.Fields(logger.FieldPath, name))
	return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, rc}}, nil
}

type options struct {
	maxLineBytes int
}

// Option configures Open.
type Option func(*options)

// WithMaxLine bounds the length of a single line. Non-positive values keep
// stream.MaxLineBytes.
func WithMaxLine(n int) Option {
	return func(o *options) { o.maxLineBytes = n }
}

// Open returns a stream of the lines of path. The file is released when a
// terminal completes or fails, or when the stream is closed.
func Open(path string, opts ...Option) (*stream.Stream[string], error) {
	o := options{maxLineBytes: stream.MaxLineBytes}
	for _, opt := range opts {
		opt(&o)
	}
	rc, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	return stream.FromResourceLimit(rc, o.maxLineBytes), nil
}

// OpenFS returns a stream of the lines of name inside fsys.
func OpenFS(fsys fs.FS, name string, opts ...Option) (*stream.Stream[string], error) {
	o := options{maxLineBytes: stream.MaxLineBytes}
	for _, opt := range opts {
		opt(&o)
	}
	rc, err := OpenFSReader(fsys, name)
	if err != nil {
		return nil, err
	}
	return stream.FromResourceLimit(rc, o.maxLineBytes), nil
}

// With opens path, runs fn over its lines and releases the file on every
// exit path, including a panic in fn.
func With[R any](ctx context.Context, path string, fn func(context.Context, *stream.Stream[string]) (R, error), opts ...Option) (result R, err error) {
	s, err := Open(path, opts...)
	if err != nil {
		return result, err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(ctx, s)
}
