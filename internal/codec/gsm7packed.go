package codec

// packSeptets bit-shifts a septet stream into octets, 8 septets filling
// every 7 output bytes. This is the inverse of unpackSeptets below.
func packSeptets(septets []byte) []byte {
	out := make([]byte, (len(septets)*7+7)/8)
	for i, s := range septets {
		s &= 0x7F
		bit := i * 7
		idx, shift := bit/8, uint(bit%8)
		out[idx] |= s << shift
		if shift > 1 {
			out[idx+1] |= s >> (8 - shift)
		}
	}
	return out
}

// unpackSeptets reverses packSeptets: each input byte contributes its
// carried-over low bits plus the next chunk of bits from the following
// byte until a full 7-bit septet accumulates.
func unpackSeptets(packed []byte, septetCount int) []byte {
	var septets []byte
	var carry uint8
	var carryBits uint

	for i := 0; i < len(packed); i++ {
		b := packed[i]
		septet := (b << carryBits) | carry
		septets = append(septets, septet&0x7F)
		carry = b >> (7 - carryBits)
		carryBits++
		if carryBits == 7 {
			septets = append(septets, carry&0x7F)
			carry = 0
			carryBits = 0
		}
	}
	if septetCount > 0 && len(septets) > septetCount {
		septets = septets[:septetCount]
	}
	return septets
}

// EncodeGSM7Packed encodes text into the bit-packed GSM 03.38 wire form.
func EncodeGSM7Packed(text string, mode ErrorMode) ([]byte, error) {
	septets, err := EncodeGSM7Unpacked(text, mode)
	if err != nil {
		return nil, err
	}
	return packSeptets(septets), nil
}

// DecodeGSM7Packed decodes a bit-packed GSM 03.38 byte slice. septetCount,
// when known (e.g. from a UDH-adjusted length), trims trailing padding
// bits that would otherwise decode as a spurious '@' character.
func DecodeGSM7Packed(input []byte, septetCount int, mode ErrorMode) (string, error) {
	septets := unpackSeptets(input, septetCount)
	return DecodeGSM7Unpacked(septets, mode)
}
