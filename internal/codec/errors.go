// Package codec implements the SMS text encodings recognized by the SMPP
// data-coding register: GSM 03.38 7-bit (unpacked and packed), UCS-2, and
// a registry that lets a caller plug in additional encodings or fall back
// to a general Unicode codec.
package codec

import "errors"

// ErrorMode selects how encode/decode handle characters or bytes that
// can't be represented in the target encoding.
type ErrorMode int

const (
	// Strict fails the whole operation at the offending position.
	Strict ErrorMode = iota
	// Replace substitutes a fallback character ('?' on encode, U+00A0
	// on GSM decode) and continues.
	Replace
	// Ignore drops the offending unit and continues.
	Ignore
)

var (
	ErrEncode          = errors.New("codec: character not representable in target encoding")
	ErrDecode          = errors.New("codec: invalid byte sequence for encoding")
	ErrUnknownEncoding = errors.New("codec: unknown encoding name")
	ErrTruncatedEscape = errors.New("codec: trailing escape byte with no following byte")
)
