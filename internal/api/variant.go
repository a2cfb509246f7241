// Package api builds the /api responses: the users dataset serialized as
// JSON in one of a fixed set of encoding and Content-Type combinations.
package api

import "github.com/JonMunkholm/charsetlab/internal/dataset"

// Variant selects the byte encoding and declared charset of a response.
type Variant int

const (
	// VariantUTF8 sends UTF-8 bytes declared as charset=UTF-8.
	VariantUTF8 Variant = iota
	// VariantSJIS sends Shift_JIS bytes declared as charset=Shift_JIS.
	VariantSJIS
	// VariantSJISNoHeader sends the same Shift_JIS bytes as VariantSJIS but
	// omits the charset parameter, forcing clients to override the charset.
	VariantSJISNoHeader

	numVariants
)

// profile is the wire contract of one variant.
type profile struct {
	query       string
	contentType string
	encode      func([]byte) ([]byte, error)
}

// profiles is indexed by Variant; every variant has exactly one entry.
var profiles = [numVariants]profile{
	VariantUTF8: {
		query:       "users-utf8",
		contentType: "application/json; charset=UTF-8",
		encode:      passUTF8,
	},
	VariantSJIS: {
		query:       "users-sjis",
		contentType: "application/json; charset=" + dataset.Charset,
		encode:      dataset.EncodeShiftJIS,
	},
	VariantSJISNoHeader: {
		query:       "users-sjis-no-header",
		contentType: "application/json",
		encode:      dataset.EncodeShiftJIS,
	},
}

// ParseVariant maps the api query value to a Variant. Unknown and empty
// values select VariantUTF8.
func ParseVariant(q string) Variant {
	for v := Variant(0); v < numVariants; v++ {
		if profiles[v].query == q {
			return v
		}
	}
	return VariantUTF8
}

// Variants returns every variant in declaration order.
func Variants() []Variant {
	out := make([]Variant, 0, numVariants)
	for v := Variant(0); v < numVariants; v++ {
		out = append(out, v)
	}
	return out
}

// Valid reports whether v is one of the declared variants.
func (v Variant) Valid() bool {
	return v >= 0 && v < numVariants
}

// Query returns the api query value that selects v.
func (v Variant) Query() string {
	if !v.Valid() {
		return ""
	}
	return profiles[v].query
}

// ContentType returns the Content-Type header sent for v.
func (v Variant) ContentType() string {
	if !v.Valid() {
		return ""
	}
	return profiles[v].contentType
}

func (v Variant) String() string {
	switch v {
	case VariantUTF8:
		return "utf8"
	case VariantSJIS:
		return "sjis"
	case VariantSJISNoHeader:
		return "sjis-no-header"
	default:
		return "unknown"
	}
}

// passUTF8 returns JSON text unchanged; Go strings are already UTF-8.
func passUTF8(b []byte) ([]byte, error) {
	return b, nil
}
