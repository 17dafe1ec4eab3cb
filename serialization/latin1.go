package serialization

import (
	"golang.org/x/text/encoding/charmap"

	"github.com/ezoic/surrogo/pkg/errors"
)

// EncodeBytes maps every byte of b to the Unicode code point of the same
// value (ISO-8859-1). The result is valid UTF-8 and survives any text based
// format; DecodeBytes reverses it exactly for all 256 byte values.
func EncodeBytes(b []byte) (string, error) {
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.Wrap(err, "latin-1 encode")
	}
	return string(s), nil
}

// DecodeBytes is the inverse of EncodeBytes. It fails on code points above
// U+00FF, which EncodeBytes never produces.
func DecodeBytes(s string) ([]byte, error) {
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.Wrap(err, "latin-1 decode")
	}
	return b, nil
}
