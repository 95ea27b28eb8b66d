// Package tlv provides BER-TLV (Basic Encoding Rules - Tag-Length-Value)
// primitives for building and inspecting smart card data structures.
//
// The central type is Writer, a bounded buffer that appends TLV records with
// BER length encoding. Card buffers are fixed-size, so every append is
// capacity-checked up front: a record is either written in full or not at
// all, and a failed append leaves the buffer untouched.
package tlv

import "errors"

// BER length encoding thresholds.
//
//	content < 0x80          one length byte
//	0x80 <= content < 0xFF  '81' followed by one length byte
//	0xFF <= content         '82' followed by two length bytes (big endian)
//
// Content longer than MaxContentLen cannot be represented and is rejected.
const MaxContentLen = 0xFFFF

// ErrBufferTooSmall is returned when a record would not fit in the remaining
// buffer capacity, or when its content exceeds MaxContentLen.
var ErrBufferTooSmall = errors.New("tlv: buffer too small")

// Writer appends BER-TLV records into a caller-supplied buffer.
// The zero value is not usable; construct with NewWriter.
type Writer struct {
	buf  []byte
	used int
}

// NewWriter returns a Writer that appends into buf. The buffer's length is
// the writer's total capacity; the caller keeps ownership of the memory.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

// headerLen returns the size of the tag and length fields for n content bytes.
func headerLen(n int) int {
	switch {
	case n < 0x80:
		return 2
	case n < 0xFF:
		return 3
	default:
		return 4
	}
}

// PutTag appends one record: a single tag byte, the BER-encoded length of
// content, and content itself. If the record does not fit in the remaining
// capacity, or content exceeds MaxContentLen, it returns ErrBufferTooSmall
// and writes nothing.
func (w *Writer) PutTag(tag byte, content []byte) error {
	n := len(content)
	if n > MaxContentLen {
		return ErrBufferTooSmall
	}

	h := headerLen(n)
	if h+n > len(w.buf)-w.used {
		return ErrBufferTooSmall
	}

	p := w.buf[w.used:]
	p[0] = tag
	switch h {
	case 2:
		p[1] = byte(n)
	case 3:
		p[1] = 0x81
		p[2] = byte(n)
	case 4:
		p[1] = 0x82
		p[2] = byte(n >> 8)
		p[3] = byte(n)
	}
	copy(p[h:], content)
	w.used += h + n

	return nil
}

// PutTag0 appends a zero-length record.
func (w *Writer) PutTag0(tag byte) error {
	return w.PutTag(tag, nil)
}

// PutTag1 appends a record with a single content byte.
func (w *Writer) PutTag1(tag, value byte) error {
	return w.PutTag(tag, []byte{value})
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.used
}

// Bytes returns the written portion of the underlying buffer.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.used]
}
