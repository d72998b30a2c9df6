package beide

import (
	"bytes"
	"encoding/binary"

	"github.com/starford/beidekit/internal/apperr"
)

// decoder interprets a Source in one byte order. Every read takes the current
// cursor and an upper limit (the end of the enclosing record or of the
// buffer) and returns the advanced cursor.
type decoder struct {
	src   *Source
	order binary.ByteOrder

	// onSkip, if set, sees every record the scanner steps over.
	onSkip func(record)
}

// window returns n bytes at cur, refusing to cross limit or the buffer end.
func (d decoder) window(op string, cur, n, limit int64) ([]byte, error) {
	if limit > d.src.Size() {
		limit = d.src.Size()
	}
	if cur < 0 || n < 0 || cur > limit || n > limit-cur {
		return nil, &DecodeError{Op: op, Offset: cur, Err: apperr.ErrTruncatedRecord}
	}
	return d.src.data[cur : cur+n], nil
}

func (d decoder) readUint32(cur, limit int64) (uint32, int64, error) {
	b, err := d.window("read int32", cur, 4, limit)
	if err != nil {
		return 0, cur, err
	}
	return d.order.Uint32(b), cur + 4, nil
}

func (d decoder) readInt32(cur, limit int64) (int32, int64, error) {
	v, next, err := d.readUint32(cur, limit)
	return int32(v), next, err
}

// readString reads a NUL-terminated string. The terminator must appear before
// limit; the returned cursor points past it.
func (d decoder) readString(cur, limit int64) (string, int64, error) {
	if limit > d.src.Size() {
		limit = d.src.Size()
	}
	b, err := d.window("read string", cur, limit-cur, limit)
	if err != nil {
		return "", cur, err
	}
	i := bytes.IndexByte(b, 0)
	if i < 0 {
		return "", cur, &DecodeError{Op: "read string", Offset: cur, Err: apperr.ErrTruncatedRecord}
	}
	return string(b[:i]), cur + int64(i) + 1, nil
}
