package codec

import "testing"

func TestUCS2RoundTrip(t *testing.T) {
	cases := []string{
		"hello",
		"日本語テスト",
		"emoji \U0001F600 surrogate pair",
	}
	for _, text := range cases {
		enc, err := EncodeUCS2(text, Strict)
		if err != nil {
			t.Fatalf("encode %q: %v", text, err)
		}
		if len(enc)%2 != 0 {
			t.Fatalf("encoded length %d is not even for %q", len(enc), text)
		}
		dec, err := DecodeUCS2(enc, Strict)
		if err != nil {
			t.Fatalf("decode %q: %v", text, err)
		}
		if dec != text {
			t.Fatalf("round trip mismatch: got %q, want %q", dec, text)
		}
	}
}

func TestUCS2DecodeOddLengthStrictFails(t *testing.T) {
	if _, err := DecodeUCS2([]byte{0x00}, Strict); err == nil {
		t.Fatal("expected error decoding odd-length input under Strict")
	}
}

func TestUCS2DecodeOddLengthReplaceTruncates(t *testing.T) {
	// "A" then a trailing stray byte.
	in := []byte{0x00, 'A', 0x00}
	dec, err := DecodeUCS2(in, Replace)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec != "A" {
		t.Fatalf("got %q, want %q", dec, "A")
	}
}
