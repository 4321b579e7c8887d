// Package encoding decodes scene sources written in legacy charsets to UTF-8.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownCharset is returned for charset names Lookup does not know.
var ErrUnknownCharset = errors.New("unknown charset")

// DefaultCharset is used when no charset is configured.
const DefaultCharset = "utf-8"

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// UTF-8 sources are passed through byte for byte; invalid sequences are
// kept rather than replaced with U+FFFD.
var charsets = map[string]encoding.Encoding{
	"utf-8":        encoding.Nop,
	"utf8":         encoding.Nop,
	"utf-16":       unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	"euc-kr":       korean.EUCKR,
	"cp949":        korean.EUCKR,
	"shift-jis":    japanese.ShiftJIS,
	"sjis":         japanese.ShiftJIS,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
}

// Lookup returns the encoding registered under name (case-insensitive).
// An empty name means DefaultCharset.
func Lookup(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultCharset
	}
	enc, ok := charsets[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownCharset, name, strings.Join(Names(), ", "))
	}
	return enc, nil
}

// Names returns the accepted charset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(charsets))
	for name := range charsets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Decode converts data from charset to UTF-8. A UTF-8 byte order mark is
// stripped so that a leading section tag still matches.
func Decode(data []byte, charset string) ([]byte, error) {
	enc, err := Lookup(charset)
	if err != nil {
		return nil, err
	}
	if enc == encoding.Nop {
		return bytes.TrimPrefix(data, utf8BOM), nil
	}
	result, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", charset, err)
	}
	return result, nil
}
