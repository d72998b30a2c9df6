package beide

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/starford/beidekit/internal/apperr"
)

// Source is a project file loaded completely into memory. It is never
// modified after construction.
type Source struct {
	name string
	data []byte
}

// ReadSource reads the whole file at path. Any failure to open, stat, or fully
// read the file is reported as apperr.ErrIO.
func ReadSource(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("beide: open %s: %w: %w", path, apperr.ErrIO, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("beide: stat %s: %w: %w", path, apperr.ErrIO, err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("beide: %s is not a regular file: %w", path, apperr.ErrIO)
	}

	data := make([]byte, info.Size())
	if _, err := io.ReadFull(f, data); err != nil {
		return nil, fmt.Errorf("beide: read %s: %w: %w", path, apperr.ErrIO, err)
	}
	return &Source{name: path, data: data}, nil
}

// NewSource wraps an in-memory copy of data. name is used in log output only.
func NewSource(name string, data []byte) *Source {
	return &Source{name: name, data: bytes.Clone(data)}
}

// Name returns the path or label the source was created with.
func (s *Source) Name() string { return s.name }

// Size returns the buffer length in bytes.
func (s *Source) Size() int64 { return int64(len(s.data)) }

// Range returns n bytes starting at off. The slice aliases the buffer and
// must not be modified.
func (s *Source) Range(off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off > s.Size() || n > s.Size()-off {
		return nil, &DecodeError{Op: "range", Offset: off, Err: apperr.ErrTruncatedRecord}
	}
	return s.data[off : off+n], nil
}
