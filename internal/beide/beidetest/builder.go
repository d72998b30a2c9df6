// Package beidetest assembles BeIDE project files for tests.
package beidetest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Builder writes tagged records in one byte order. Top-level records are
// kept separately so tests can insert or cut at record boundaries.
type Builder struct {
	order   binary.ByteOrder
	records [][]byte
}

// New returns an empty builder.
func New(order binary.ByteOrder) *Builder {
	return &Builder{order: order}
}

// Tag packs a four-character code.
func Tag(code string) uint32 {
	if len(code) != 4 {
		panic("beidetest: tag must be four characters: " + code)
	}
	return binary.BigEndian.Uint32([]byte(code))
}

func (b *Builder) encode(tag string, payload []byte) []byte {
	var buf bytes.Buffer
	_ = binary.Write(&buf, b.order, Tag(tag))
	_ = binary.Write(&buf, b.order, int32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

// Raw appends a record with an arbitrary payload.
func (b *Builder) Raw(tag string, payload []byte) *Builder {
	b.records = append(b.records, b.encode(tag, payload))
	return b
}

// Int appends a 32-bit integer record.
func (b *Builder) Int(tag string, v int32) *Builder {
	var buf bytes.Buffer
	_ = binary.Write(&buf, b.order, v)
	return b.Raw(tag, buf.Bytes())
}

// String appends a NUL-terminated string record.
func (b *Builder) String(tag, s string) *Builder {
	return b.Raw(tag, append([]byte(s), 0))
}

// List appends a record whose payload is the records written by fn.
func (b *Builder) List(tag string, fn func(*Builder)) *Builder {
	child := New(b.order)
	fn(child)
	return b.Raw(tag, child.Bytes())
}

// Header appends the 'MIDE' format record.
func (b *Builder) Header(version int32) *Builder {
	return b.Int("MIDE", version)
}

// Insert places a raw record before the i-th top-level record.
func (b *Builder) Insert(i int, tag string, payload []byte) *Builder {
	rec := b.encode(tag, payload)
	b.records = append(b.records[:i], append([][]byte{rec}, b.records[i:]...)...)
	return b
}

// Len returns the number of top-level records.
func (b *Builder) Len() int { return len(b.records) }

// Boundaries returns the start offset of every top-level record followed by
// the total length.
func (b *Builder) Boundaries() []int {
	out := make([]int, 0, len(b.records)+1)
	off := 0
	for _, r := range b.records {
		out = append(out, off)
		off += len(r)
	}
	return append(out, off)
}

// Bytes concatenates the records.
func (b *Builder) Bytes() []byte {
	return bytes.Join(b.records, nil)
}

// WriteFile writes data to name inside a fresh temp dir and returns the path.
func WriteFile(t testing.TB, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}
