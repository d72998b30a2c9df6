package beide

import "github.com/starford/beidekit/internal/apperr"

// recordHeaderSize is the tag identifier plus the payload length.
const recordHeaderSize = 8

// record locates one tagged record inside the buffer.
type record struct {
	tag     Tag
	start   int64 // offset of the tag identifier
	payload int64 // first payload byte
	end     int64 // one past the last payload byte
}

// next reads the record header at off. The declared payload must fit before
// limit; anything else means the file was cut short or is corrupt.
func (d decoder) next(off, limit int64) (record, error) {
	if limit-off < recordHeaderSize {
		return record{}, &DecodeError{Op: "scan", Offset: off, Err: apperr.ErrTruncatedRecord}
	}
	id, cur, err := d.readUint32(off, limit)
	if err != nil {
		return record{}, err
	}
	n, cur, err := d.readInt32(cur, limit)
	if err != nil {
		return record{}, tagged(err, Tag(id))
	}
	if n < 0 || int64(n) > limit-cur {
		return record{}, &DecodeError{Op: "scan", Tag: Tag(id), Offset: off, Err: apperr.ErrTruncatedRecord}
	}
	return record{tag: Tag(id), start: off, payload: cur, end: cur + int64(n)}, nil
}

// findTag walks records from start and returns the first one tagged tag.
// Records in between are skipped by their declared length. Reaching limit
// without a match is not an error.
func (d decoder) findTag(tag Tag, start, limit int64) (record, bool, error) {
	for off := start; off < limit; {
		rec, err := d.next(off, limit)
		if err != nil {
			return record{}, false, err
		}
		if rec.tag == tag {
			return rec, true, nil
		}
		if d.onSkip != nil {
			d.onSkip(rec)
		}
		off = rec.end
	}
	return record{}, false, nil
}

// walk calls fn for every record in [start, limit).
func (d decoder) walk(start, limit int64, fn func(record) error) error {
	for off := start; off < limit; {
		rec, err := d.next(off, limit)
		if err != nil {
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
		off = rec.end
	}
	return nil
}
