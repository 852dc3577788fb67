package a2s

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// reader walks a received datagram. Integers on the wire are little-endian,
// strings are null-terminated. Every accessor fails with ErrProtocol instead
// of reading past the datagram boundary.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) remaining() int {
	return len(r.data) - r.pos
}

func (r *reader) need(n int, field string) error {
	if r.remaining() < n {
		return fmt.Errorf("%w: truncated before %s (%d of %d bytes left)",
			ErrProtocol, field, r.remaining(), n)
	}
	return nil
}

func (r *reader) readByte(field string) (byte, error) {
	if err := r.need(1, field); err != nil {
		return 0, err
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readUint16(field string) (uint16, error) {
	if err := r.need(2, field); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) readInt32(field string) (int32, error) {
	if err := r.need(4, field); err != nil {
		return 0, err
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.pos:]))
	r.pos += 4
	return v, nil
}

func (r *reader) readUint64(field string) (uint64, error) {
	if err := r.need(8, field); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// readString consumes bytes up to and including the first null terminator.
func (r *reader) readString(field string) (string, error) {
	end := bytes.IndexByte(r.data[r.pos:], 0)
	if end == -1 {
		return "", fmt.Errorf("%w: string field %s is not null-terminated", ErrProtocol, field)
	}
	s := string(r.data[r.pos : r.pos+end])
	r.pos += end + 1
	return s, nil
}
