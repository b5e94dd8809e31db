package codec

import (
	"encoding/binary"
	"math/rand"
)

// Segment is one part of a (possibly single-part) concatenated SMS.
type Segment struct {
	UDH   []byte // nil for a single-part message with no UDH
	Text  string // the slice of the original text carried by this segment
	Seq   int    // 1-based segment index
	Total int
}

const (
	singleLimitGSM7Septets = 160
	multiLimitGSM7Septets  = 153
	singleLimitUCS2Octets  = 140
	multiLimitUCS2Octets   = 134
)

// SplitOptions controls concatenation-reference width and, for tests,
// lets the caller pin the reference number instead of drawing one at
// random.
type SplitOptions struct {
	Use16BitRef bool
	RefNum      int // if 0, one is drawn at random in the configured width
}

// GSM7UnitLen reports how many septets text occupies when GSM-encoded,
// for comparing against the single-part/multi-part thresholds without
// actually encoding it.
func GSM7UnitLen(text string) int { return gsm7SeptetLen(text) }

// UCS2UnitLen reports how many octets text occupies when UCS-2 encoded.
func UCS2UnitLen(text string) int { return ucs2OctetLen(text) }

// SplitGSM7 splits text for GSM 03.38 7-bit transport. Splitting happens
// on whole-rune boundaries, which by construction never divides a
// 2-septet extension-table escape pair across two segments.
func SplitGSM7(text string, opts SplitOptions) []Segment {
	if gsm7SeptetLen(text) <= singleLimitGSM7Septets {
		return []Segment{{Text: text, Seq: 1, Total: 1}}
	}
	return splitByUnit(text, multiLimitGSM7Septets, gsm7RuneLen, opts)
}

func gsm7RuneLen(r rune) int {
	if _, ok := gsm7BasicEncode[r]; ok {
		return 1
	}
	return 2
}

// SplitUCS2 splits text for UCS-2 transport. A rune encoded as a UTF-16
// surrogate pair counts as 4 octets and is never divided across segments,
// since splitting happens on whole-rune boundaries.
func SplitUCS2(text string, opts SplitOptions) []Segment {
	if ucs2OctetLen(text) <= singleLimitUCS2Octets {
		return []Segment{{Text: text, Seq: 1, Total: 1}}
	}
	return splitByUnit(text, multiLimitUCS2Octets, ucs2RuneLen, opts)
}

func ucs2RuneLen(r rune) int {
	if r > 0xFFFF {
		return 4
	}
	return 2
}

func ucs2OctetLen(text string) int {
	n := 0
	for _, r := range text {
		n += ucs2RuneLen(r)
	}
	return n
}

// splitByUnit greedily packs runes into segments of at most limitUnits
// (septets or octets, per unitLen), then stamps each with a UDH carrying
// a shared concatenation reference.
func splitByUnit(text string, limitUnits int, unitLen func(rune) int, opts SplitOptions) []Segment {
	var chunks []string
	var cur []rune
	n := 0
	for _, r := range text {
		l := unitLen(r)
		if n+l > limitUnits && len(cur) > 0 {
			chunks = append(chunks, string(cur))
			cur = nil
			n = 0
		}
		cur = append(cur, r)
		n += l
	}
	if len(cur) > 0 {
		chunks = append(chunks, string(cur))
	}

	ref := opts.RefNum
	if ref == 0 {
		if opts.Use16BitRef {
			ref = 1 + rand.Intn(0xFFFF)
		} else {
			ref = 1 + rand.Intn(0xFF)
		}
	}

	segs := make([]Segment, len(chunks))
	for i, chunk := range chunks {
		segs[i] = Segment{
			UDH:   buildUDH(ref, i+1, len(chunks), opts.Use16BitRef),
			Text:  chunk,
			Seq:   i + 1,
			Total: len(chunks),
		}
	}
	return segs
}

// buildUDH encodes the concatenated-SMS information element: an 8-bit
// reference uses IEI 0x00 (length 3); a 16-bit reference uses IEI 0x08
// (length 4). The leading byte is the total UDH length, not counting
// itself.
func buildUDH(ref, seq, total int, use16 bool) []byte {
	if use16 {
		return []byte{
			0x06, 0x08, 0x04,
			byte(ref >> 8), byte(ref),
			byte(total), byte(seq),
		}
	}
	return []byte{0x05, 0x00, 0x03, byte(ref), byte(total), byte(seq)}
}

// ParseUDH extracts the concatenation reference, segment sequence and
// total from a leading UDH, per SeparateUDH-style parsing of an inbound
// deliver_sm short_message.
func ParseUDH(udh []byte) (ref, seq, total int, ok bool) {
	if len(udh) < 1 {
		return 0, 0, 0, false
	}
	if len(udh) >= 6 && udh[1] == 0x00 && udh[2] == 0x03 {
		return int(udh[3]), int(udh[5]), int(udh[4]), true
	}
	if len(udh) >= 7 && udh[1] == 0x08 && udh[2] == 0x04 {
		ref16 := binary.BigEndian.Uint16(udh[3:5])
		return int(ref16), int(udh[6]), int(udh[5]), true
	}
	return 0, 0, 0, false
}
