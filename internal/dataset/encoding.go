package dataset

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
)

// Charset is the IANA name of the legacy codepage the dataset is authored in.
const Charset = "Shift_JIS"

func newDecoder() *encoding.Decoder {
	return japanese.ShiftJIS.NewDecoder()
}

// EncodeShiftJIS converts UTF-8 text to Shift_JIS bytes. It fails on runes
// the codepage cannot represent.
func EncodeShiftJIS(b []byte) ([]byte, error) {
	out, err := japanese.ShiftJIS.NewEncoder().Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", Charset, err)
	}
	return out, nil
}

// DecodeShiftJIS converts Shift_JIS bytes to UTF-8 text.
func DecodeShiftJIS(b []byte) ([]byte, error) {
	out, err := newDecoder().Bytes(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", Charset, err)
	}
	return out, nil
}
