package core

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for file extensions other than csv, xlsx
// and json. It is never retryable.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// DetectFileType derives the file type from the name's extension.
func DetectFileType(fileName string) (FileType, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	switch FileType(ext) {
	case FileCSV, FileXLSX, FileJSON:
		return FileType(ext), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Decode turns a file's raw bytes into either CSV text for the row parser
// or a constraints payload. Both spreadsheet types produce the same textual
// form, so the parser never needs to know which one it was given.
func Decode(fileName string, data []byte) (Payload, error) {
	ft, err := DetectFileType(fileName)
	if err != nil {
		return Payload{}, err
	}

	switch ft {
	case FileXLSX:
		text, err := XLSXToCSV(data)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Type: ft, Text: text}, nil

	case FileJSON:
		constraints, err := ParseConstraints(data)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Type: ft, Constraints: constraints}, nil

	default:
		text, err := ToUTF8(data)
		if err != nil {
			return Payload{}, err
		}
		return Payload{Type: ft, Text: string(text)}, nil
	}
}

// XLSXToCSV selects the first sheet of a workbook by position and
// re-serializes it as CSV.
func XLSXToCSV(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("invalid xlsx workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return "", fmt.Errorf("invalid xlsx workbook: no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return "", fmt.Errorf("read sheet %q: %w", sheetName, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return "", fmt.Errorf("write csv: %w", err)
	}
	return buf.String(), nil
}

// ParseConstraints decodes a constraints file. Two shapes are accepted:
//
//	[["MATH-171", "CS-108"], ["CS-262", "CS-232", "CS-212"]]
//	{"constraints": [[...], ...], "CS-336": ["CS-214"]}
//
// Every group is expanded so each member maps to all other members of it.
// In the object form, keys besides "constraints" are kept as given and then
// extended by the expanded groups.
func ParseConstraints(data []byte) (Constraints, error) {
	data, err := ToUTF8(data)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(bytes.TrimSpace(data), utf8BOM)

	if len(data) > 0 && data[0] == '[' {
		var groups [][]string
		if err := json.Unmarshal(data, &groups); err != nil {
			return nil, fmt.Errorf("invalid constraints json: %w", err)
		}
		return ExpandConstraints(nil, groups), nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("invalid constraints json: %w", err)
	}

	base := make(Constraints)
	var groups [][]string
	for key, raw := range obj {
		if key == "constraints" {
			if err := json.Unmarshal(raw, &groups); err != nil {
				return nil, fmt.Errorf("invalid constraints json: %q: %w", key, err)
			}
			continue
		}
		var names []string
		if err := json.Unmarshal(raw, &names); err != nil {
			return nil, fmt.Errorf("invalid constraints json: %q: %w", key, err)
		}
		base[key] = names
	}

	return ExpandConstraints(base, groups), nil
}

// ExpandConstraints adds, for every member of every group, all other members
// of that group to its conflict list. A name appearing in several groups
// conflicts with the union of them. base is not modified.
func ExpandConstraints(base Constraints, groups [][]string) Constraints {
	out := make(Constraints, len(base))
	for k, v := range base {
		out[k] = append([]string(nil), v...)
	}

	for _, group := range groups {
		for _, name := range group {
			for _, other := range group {
				if other == name || contains(out[name], other) {
					continue
				}
				out[name] = append(out[name], other)
			}
			if _, ok := out[name]; !ok {
				out[name] = []string{}
			}
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
