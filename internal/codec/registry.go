package codec

import (
	"golang.org/x/text/encoding/htmlindex"
)

// Codec is the encode/decode pair a registry entry provides.
type Codec struct {
	Encode func(text string, mode ErrorMode) ([]byte, error)
	Decode func(data []byte, mode ErrorMode) (string, error)
}

// DataCoding is the SMPP numeric data_coding value associated with a
// named encoding, per the SMPP data-coding register aliases.
type DataCoding byte

const (
	DataCodingDefault DataCoding = 0x00 // SMSC default (usually gsm0338)
	DataCodingASCII   DataCoding = 0x01
	DataCodingLatin1  DataCoding = 0x03
	DataCodingUCS2    DataCoding = 0x08
)

// Registry resolves an encoding name to a Codec, consulting a
// user-supplied override map first, then the built-in table, then
// falling back to a general Unicode codec from golang.org/x/text/encoding
// if nothing else matches.
type Registry struct {
	overrides map[string]Codec
	builtin   map[string]Codec
	aliases   map[string]DataCoding
}

// NewRegistry builds a registry seeded with the gsm0338 (unpacked),
// gsm0338-packed and ucs2 codecs and the data_coding aliases for gsm0338,
// ascii, latin1 and ucs2, plus custom overriding any of those codecs or
// adding new named encodings. ascii and latin1 themselves resolve through
// Lookup's general Unicode fallback.
func NewRegistry(custom map[string]Codec) *Registry {
	r := &Registry{
		overrides: make(map[string]Codec),
		builtin: map[string]Codec{
			"gsm0338": {Encode: EncodeGSM7Unpacked, Decode: DecodeGSM7Unpacked},
			"gsm0338-packed": {
				Encode: EncodeGSM7Packed,
				Decode: func(b []byte, m ErrorMode) (string, error) { return DecodeGSM7Packed(b, 0, m) },
			},
			"ucs2": {Encode: EncodeUCS2, Decode: DecodeUCS2},
		},
		aliases: map[string]DataCoding{
			"gsm0338": DataCodingDefault,
			"ascii":   DataCodingASCII,
			"latin1":  DataCodingLatin1,
			"ucs2":    DataCodingUCS2,
		},
	}
	for name, c := range custom {
		r.overrides[name] = c
	}
	return r
}

// Lookup resolves name to a Codec: overrides first, then the built-in
// table, then a general Unicode codec (e.g. "ascii", "latin1", "utf-8")
// via golang.org/x/text/encoding/htmlindex.
func (r *Registry) Lookup(name string) (Codec, error) {
	if c, ok := r.overrides[name]; ok {
		return c, nil
	}
	if c, ok := r.builtin[name]; ok {
		return c, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return Codec{}, ErrUnknownEncoding
	}
	return Codec{
		Encode: func(text string, mode ErrorMode) ([]byte, error) {
			out, encErr := enc.NewEncoder().Bytes([]byte(text))
			if encErr != nil && mode == Strict {
				return nil, encErr
			}
			return out, nil
		},
		Decode: func(data []byte, mode ErrorMode) (string, error) {
			out, decErr := enc.NewDecoder().Bytes(data)
			if decErr != nil && mode == Strict {
				return "", decErr
			}
			return string(out), nil
		},
	}, nil
}

// DataCodingFor returns the numeric data_coding value registered for
// name, or ok=false if name has no known alias (the caller should encode
// it as message_payload-only or fail per its own policy).
func (r *Registry) DataCodingFor(name string) (DataCoding, bool) {
	dc, ok := r.aliases[name]
	return dc, ok
}
