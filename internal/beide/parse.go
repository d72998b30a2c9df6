package beide

import (
	"encoding/binary"
	"log/slog"

	"github.com/starford/beidekit/internal/apperr"
)

// model is the parsed state of a Project. A fresh model is built for every
// load and swapped in only when the load succeeds.
type model struct {
	version int32

	targetName         string
	targetType         TargetType
	sysIncludesAsLocal bool
	fileDetection      FileDetectionMode
	langOpts           LanguageOptions
	warnMode           WarningMode
	warnings           Warnings
	codeGen            CodeGenFlags
	optMode            OptimizationMode
	strip              StripFlags
	compilerOpts       string
	linkerOpts         string

	sysIncludes   []string
	localIncludes []string
	files         []ProjectFile
	rules         []FileTypeRule
}

// DetectByteOrder inspects the leading 'MIDE' marker. Files without one are
// assumed big-endian.
func DetectByteOrder(src *Source) binary.ByteOrder {
	b, err := src.Range(0, 4)
	if err != nil {
		return binary.BigEndian
	}
	switch TagHeader {
	case Tag(binary.BigEndian.Uint32(b)):
		return binary.BigEndian
	case Tag(binary.LittleEndian.Uint32(b)):
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// parse makes one pass over src. Every lookup starts where the previous
// match ended, so the buffer is scanned at most once for found tags.
func parse(src *Source, order binary.ByteOrder, logger *slog.Logger) (*model, error) {
	d := decoder{src: src, order: order}
	d.onSkip = func(rec record) {
		if known(rec.tag) {
			logger.Debug("beide: known tag passed over",
				slog.String("tag", rec.tag.String()), slog.Int64("offset", rec.start))
			return
		}
		logger.Debug("beide: unknown tag skipped",
			slog.String("tag", rec.tag.String()),
			slog.Int64("offset", rec.start),
			slog.Int64("length", rec.end-rec.payload))
	}

	m := &model{}
	limit := src.Size()
	var cursor int64

	if limit >= recordHeaderSize {
		if rec, err := d.next(0, limit); err == nil && rec.tag == TagHeader {
			v, _, err := d.readInt32(rec.payload, rec.end)
			if err != nil {
				return nil, tagged(err, TagHeader)
			}
			m.version = v
			cursor = rec.end
		}
	}

	for _, f := range schema {
		rec, found, err := d.findTag(f.tag, cursor, limit)
		if err != nil {
			return nil, err
		}
		if !found {
			if f.required {
				return nil, &DecodeError{Op: "find " + f.name, Tag: f.tag, Offset: cursor, Err: apperr.ErrMissingRequiredField}
			}
			logger.Debug("beide: optional tag not found",
				slog.String("field", f.name), slog.String("tag", f.tag.String()))
			continue
		}
		if err := f.decode(d, rec, m); err != nil {
			return nil, err
		}
		// An empty target name is as good as none.
		if f.tag == TagTargetName && m.targetName == "" {
			return nil, &DecodeError{Op: "decode " + f.name, Tag: f.tag, Offset: rec.start, Err: apperr.ErrMissingRequiredField}
		}
		cursor = rec.end
	}

	// The tail holds no known records, but its framing must still be sound.
	if err := d.walk(cursor, limit, func(rec record) error {
		d.onSkip(rec)
		return nil
	}); err != nil {
		return nil, err
	}
	return m, nil
}
