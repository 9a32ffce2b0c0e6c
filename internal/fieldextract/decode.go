package fieldextract

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/joseph-ayodele/material-list/internal/rules"
)

var errUndecodable = errors.New("content is not valid in this encoding")

// decoder converts the whole file content, failing on bytes the encoding
// does not define.
type decoder func([]byte) (string, error)

func decoderFor(name string) (decoder, error) {
	switch name {
	case rules.EncodingUTF8:
		return decodeUTF8, nil
	case rules.EncodingLatin1, rules.EncodingISO88591:
		return decodeLatin1, nil
	case rules.EncodingCP1252, rules.EncodingWindows1252:
		return decodeCP1252, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", name)
}

func decodeUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errUndecodable
	}
	return string(b), nil
}

// Every byte is assigned in ISO-8859-1.
func decodeLatin1(b []byte) (string, error) {
	return charmap.ISO8859_1.NewDecoder().String(string(b))
}

// cp1252Unassigned are the bytes Windows-1252 leaves undefined; charmap maps
// them to control characters, so they are rejected up front.
var cp1252Unassigned = [256]bool{0x81: true, 0x8D: true, 0x8F: true, 0x90: true, 0x9D: true}

func decodeCP1252(b []byte) (string, error) {
	for i, c := range b {
		if cp1252Unassigned[c] {
			return "", fmt.Errorf("%w: byte 0x%02X at offset %d", errUndecodable, c, i)
		}
	}
	return charmap.Windows1252.NewDecoder().String(string(b))
}
