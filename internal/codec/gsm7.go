package codec

import "fmt"

// gsm7Basic maps the 128-entry GSM 03.38 default alphabet, byte to rune;
// the encode direction inverts it.
var gsm7Basic = map[byte]rune{
	0x00: '@', 0x01: '£', 0x02: '$', 0x03: '¥', 0x04: 'è', 0x05: 'é', 0x06: 'ù',
	0x07: 'ì', 0x08: 'ò', 0x09: 'Ç', 0x0A: '\n', 0x0B: 'Ø', 0x0C: 'ø', 0x0D: '\r',
	0x0E: 'Å', 0x0F: 'å', 0x10: 'Δ', 0x11: '_', 0x12: 'Φ', 0x13: 'Γ', 0x14: 'Λ',
	0x15: 'Ω', 0x16: 'Π', 0x17: 'Ψ', 0x18: 'Σ', 0x19: 'Θ', 0x1A: 'Ξ',
	0x1C: 'Æ', 0x1D: 'æ', 0x1E: 'ß', 0x1F: 'É', 0x20: ' ', 0x21: '!', 0x22: '"',
	0x23: '#', 0x24: '$', 0x25: '%', 0x26: '&', 0x27: '\'', 0x28: '(', 0x29: ')',
	0x2A: '*', 0x2B: '+', 0x2C: ',', 0x2D: '-', 0x2E: '.', 0x2F: '/',
	0x30: '0', 0x31: '1', 0x32: '2', 0x33: '3', 0x34: '4', 0x35: '5', 0x36: '6',
	0x37: '7', 0x38: '8', 0x39: '9', 0x3A: ':', 0x3B: ';', 0x3C: '<', 0x3D: '=',
	0x3E: '>', 0x3F: '?', 0x40: '¡', 0x41: 'A', 0x42: 'B', 0x43: 'C', 0x44: 'D',
	0x45: 'E', 0x46: 'F', 0x47: 'G', 0x48: 'H', 0x49: 'I', 0x4A: 'J', 0x4B: 'K',
	0x4C: 'L', 0x4D: 'M', 0x4E: 'N', 0x4F: 'O', 0x50: 'P', 0x51: 'Q', 0x52: 'R',
	0x53: 'S', 0x54: 'T', 0x55: 'U', 0x56: 'V', 0x57: 'W', 0x58: 'X', 0x59: 'Y',
	0x5A: 'Z', 0x5B: 'Ä', 0x5C: 'Ö', 0x5D: 'Ñ', 0x5E: 'Ü', 0x5F: '§', 0x60: '¿',
	0x61: 'a', 0x62: 'b', 0x63: 'c', 0x64: 'd', 0x65: 'e', 0x66: 'f', 0x67: 'g',
	0x68: 'h', 0x69: 'i', 0x6A: 'j', 0x6B: 'k', 0x6C: 'l', 0x6D: 'm', 0x6E: 'n',
	0x6F: 'o', 0x70: 'p', 0x71: 'q', 0x72: 'r', 0x73: 's', 0x74: 't', 0x75: 'u',
	0x76: 'v', 0x77: 'w', 0x78: 'x', 0x79: 'y', 0x7A: 'z', 0x7B: 'ä', 0x7C: 'ö',
	0x7D: 'ñ', 0x7E: 'ü', 0x7F: 'à',
}

// gsm7Ext maps the 10-entry extension table (reached via the 0x1B escape).
var gsm7Ext = map[byte]rune{
	0x0A: '\f', 0x14: '^', 0x28: '{', 0x29: '}', 0x2F: '\\',
	0x3C: '[', 0x3D: '~', 0x3E: ']', 0x40: '|', 0x65: '€',
}

// gsm7ReplaceDown lets a handful of look-alike characters decay to a
// basic-table byte under Replace mode instead of failing the encode.
var gsm7ReplaceDown = map[rune]byte{
	'Ά': 0x41, 'Έ': 0x45, 'Ή': 0x49, // Greek capitals -> nearest Latin look-alike
	'ç': 0x09, // c-cedilla -> Ç slot
}

var (
	gsm7BasicEncode = invertRuneMap(gsm7Basic)
	gsm7ExtEncode   = invertRuneMap(gsm7Ext)
)

func invertRuneMap(m map[byte]rune) map[rune]byte {
	out := make(map[rune]byte, len(m))
	for b, r := range m {
		out[r] = b
	}
	return out
}

// EncodeGSM7Unpacked encodes text into one byte (or an escape pair) per
// character, per the GSM 03.38 default/extension tables.
func EncodeGSM7Unpacked(text string, mode ErrorMode) ([]byte, error) {
	var out []byte
	for _, r := range text {
		if b, ok := gsm7BasicEncode[r]; ok {
			out = append(out, b)
			continue
		}
		if b, ok := gsm7ExtEncode[r]; ok {
			out = append(out, 0x1B, b)
			continue
		}
		if b, ok := gsm7ReplaceDown[r]; ok && mode == Replace {
			out = append(out, b)
			continue
		}
		switch mode {
		case Strict:
			return nil, fmt.Errorf("%w: %q", ErrEncode, r)
		case Replace:
			out = append(out, gsm7BasicEncode['?'])
		case Ignore:
			// drop
		}
	}
	return out, nil
}

// DecodeGSM7Unpacked decodes a GSM 03.38 unpacked byte slice (each byte
// one septet, escapes handled) back into text.
func DecodeGSM7Unpacked(input []byte, mode ErrorMode) (string, error) {
	var out []rune
	for i := 0; i < len(input); i++ {
		b := input[i]
		if b == 0x1B {
			if i+1 >= len(input) {
				if mode == Strict {
					return "", ErrTruncatedEscape
				}
				break
			}
			i++
			if r, ok := gsm7Ext[input[i]]; ok {
				out = append(out, r)
				continue
			}
			switch mode {
			case Strict:
				return "", fmt.Errorf("%w: extension byte 0x%02X", ErrDecode, input[i])
			case Replace:
				out = append(out, 0x00A0)
			case Ignore:
			}
			continue
		}
		if r, ok := gsm7Basic[b]; ok {
			out = append(out, r)
			continue
		}
		switch mode {
		case Strict:
			return "", fmt.Errorf("%w: byte 0x%02X", ErrDecode, b)
		case Replace:
			out = append(out, 0x00A0)
		case Ignore:
		}
	}
	return string(out), nil
}

// gsm7SeptetLen returns how many septets text occupies when encoded,
// counting an extension-table character as two.
func gsm7SeptetLen(text string) int {
	n := 0
	for _, r := range text {
		if _, ok := gsm7BasicEncode[r]; ok {
			n++
			continue
		}
		n += 2
	}
	return n
}
