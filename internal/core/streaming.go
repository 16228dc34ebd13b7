package core

// streaming.go prepares raw file bytes for the CSV reader.
//
//   - BOM stripping: Excel "CSV UTF-8" exports start with 0xEF 0xBB 0xBF,
//     which would otherwise glue itself onto the first header name.
//   - Legacy encodings: registrar exports saved from older Excel builds are
//     Windows-1252; they are transcoded to UTF-8 before parsing.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewBOMSkippingReader returns a reader that drops a leading UTF-8 BOM.
func NewBOMSkippingReader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// ToUTF8 returns data unchanged when it is valid UTF-8, otherwise decodes it
// as Windows-1252. A leading BOM is preserved for NewBOMSkippingReader.
//
// Bytes that are neither valid UTF-8 nor assigned in Windows-1252
// (0x81, 0x8D, 0x8F, 0x90, 0x9D) are reported as an encoding error.
func ToUTF8(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}
	for i, b := range data {
		if isUnassigned1252(b) {
			return nil, fmt.Errorf("encoding error: byte 0x%02X at offset %d is not UTF-8 or Windows-1252", b, i)
		}
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}
	return decoded, nil
}

func isUnassigned1252(b byte) bool {
	switch b {
	case 0x81, 0x8D, 0x8F, 0x90, 0x9D:
		return true
	}
	return false
}
