package pdu

import (
	"bytes"
	"encoding/binary"
	"io"
)

// reader wraps bytes.Buffer with the C-octet-string and length-prefixed
// string helpers SMPP body decoding needs everywhere.
type reader struct {
	*bytes.Buffer
}

func newReader(b []byte) *reader {
	return &reader{Buffer: bytes.NewBuffer(b)}
}

// readCString reads bytes up to and including a NUL terminator, limit
// counting the terminator, and returns the string without it.
func (r *reader) readCString(limit int) (string, error) {
	var out []byte
	for i := 1; ; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return "", ErrCStringNotNull
		}
		if b == 0 {
			return string(out), nil
		}
		if i == limit {
			return "", ErrCStringTooLong
		}
		out = append(out, b)
	}
}

// readOctetString reads n raw bytes.
func (r *reader) readOctetString(n int) ([]byte, error) {
	out := make([]byte, n)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, ErrTLVTruncated
	}
	return out, nil
}

// readLengthPrefixed reads a one-byte length n followed by n bytes.
func (r *reader) readLengthPrefixed() ([]byte, error) {
	l, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	return r.readOctetString(int(l))
}

func writeCString(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
}

// TLV is one decoded optional parameter.
type TLV struct {
	Tag   TagID
	Value []byte
}

func encodeTLV(buf *bytes.Buffer, tag TagID, value []byte) {
	var hdr [4]byte
	binary.BigEndian.PutUint16(hdr[0:2], uint16(tag))
	binary.BigEndian.PutUint16(hdr[2:4], uint16(len(value)))
	buf.Write(hdr[:])
	buf.Write(value)
}

// decodeTLVs parses a trailing run of TLVs, e.g. the tail of a
// submit_sm/deliver_sm body after its mandatory fields.
func decodeTLVs(b []byte) ([]TLV, error) {
	var out []TLV
	r := newReader(b)
	for r.Len() > 0 {
		if r.Len() < 4 {
			return nil, ErrTLVTruncated
		}
		var hdr [4]byte
		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			return nil, ErrTLVTruncated
		}
		tag := TagID(binary.BigEndian.Uint16(hdr[0:2]))
		length := int(binary.BigEndian.Uint16(hdr[2:4]))
		if r.Len() < length {
			return nil, ErrTLVTruncated
		}
		value := make([]byte, length)
		if _, err := io.ReadFull(r, value); err != nil {
			return nil, ErrTLVTruncated
		}
		out = append(out, TLV{Tag: tag, Value: value})
	}
	return out, nil
}
