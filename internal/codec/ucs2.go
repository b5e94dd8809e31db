package codec

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
)

// ucs2Encoding is big-endian UTF-16 without a byte-order mark. The byte
// length of a well-formed stream is always even. Characters outside the
// BMP round-trip as surrogate pairs, which is what real SMSCs accept in
// practice.
var ucs2Encoding = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// EncodeUCS2 encodes text as big-endian UTF-16.
func EncodeUCS2(text string, mode ErrorMode) ([]byte, error) {
	enc := ucs2Encoding.NewEncoder()
	out, err := enc.Bytes([]byte(text))
	if err != nil {
		if mode == Strict {
			return nil, fmt.Errorf("%w: %v", ErrEncode, err)
		}
		if mode == Replace {
			out, _ = enc.Bytes([]byte("?"))
			return out, nil
		}
		return nil, nil
	}
	return out, nil
}

// DecodeUCS2 decodes a big-endian UTF-16 byte slice back to text.
func DecodeUCS2(input []byte, mode ErrorMode) (string, error) {
	if len(input)%2 != 0 {
		if mode == Strict {
			return "", fmt.Errorf("%w: odd byte length %d", ErrDecode, len(input))
		}
		input = input[:len(input)-1]
	}
	dec := ucs2Encoding.NewDecoder()
	out, err := dec.Bytes(input)
	if err != nil {
		if mode == Strict {
			return "", fmt.Errorf("%w: %v", ErrDecode, err)
		}
		return string(out), nil
	}
	return string(out), nil
}
