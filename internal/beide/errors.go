package beide

import (
	"errors"
	"fmt"
)

// DecodeError describes where a load failed. Err is one of the apperr kinds,
// so callers match with errors.Is(err, apperr.ErrTruncatedRecord) and friends.
type DecodeError struct {
	Op     string
	Tag    Tag
	Offset int64
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Tag != 0 {
		return fmt.Sprintf("beide: %s %s at offset %d: %v", e.Op, e.Tag, e.Offset, e.Err)
	}
	return fmt.Sprintf("beide: %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// tagged attaches tag to a DecodeError that does not carry one yet.
func tagged(err error, tag Tag) error {
	var de *DecodeError
	if errors.As(err, &de) && de.Tag == 0 {
		de.Tag = tag
	}
	return err
}
