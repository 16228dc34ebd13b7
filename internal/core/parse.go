package core

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/schedulizer/internal/schedule"
)

// ContextCheckInterval is how often (in rows) to check for context cancellation.
var ContextCheckInterval = 100

// ParseCSV converts delimited text with a header line into a Schedule.
// Malformed rows and unknown columns are absorbed, so the only way to get
// an empty result is input with no usable rows.
func ParseCSV(text string) schedule.Schedule {
	s, _, err := ParseCSVContext(context.Background(), strings.NewReader(text))
	if err != nil {
		return schedule.Schedule{}
	}
	return s
}

// ParseCSVContext reads CSV from r and merges one row at a time into a new
// Schedule. Each row starts from NewRowBuilder defaults; every header that
// resolves in the registry has its callback applied to the cell.
//
// The returned error is non-nil only for cancellation or an unreadable
// stream, in which case no schedule is returned.
func ParseCSVContext(ctx context.Context, r io.Reader) (schedule.Schedule, ParseStats, error) {
	var (
		s     schedule.Schedule
		stats ParseStats
	)

	reader := csv.NewReader(NewBOMSkippingReader(r))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return s, stats, nil
	}
	if err != nil {
		return schedule.Schedule{}, stats, fmt.Errorf("invalid csv header: %w", err)
	}

	fields, unknown := resolveHeader(header)
	stats.UnknownHeaders = unknown
	if len(fields) == 0 {
		// No recognizable columns: nothing a row could contribute.
		return s, stats, nil
	}

	for line := 2; ; line++ {
		if line%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return schedule.Schedule{}, stats, fmt.Errorf("parse cancelled: %w", err)
			}
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.SkippedRows++
				continue
			}
			return schedule.Schedule{}, stats, fmt.Errorf("invalid csv at line %d: %w", line, err)
		}

		if isBlankRecord(record) {
			stats.SkippedRows++
			continue
		}

		row := NewRowBuilder()
		for _, f := range fields {
			value := ""
			if f.index < len(record) {
				value = record[f.index]
			}
			f.fn(value, row)
		}

		course, section := row.Finalize()
		for _, m := range section.Meetings {
			if m.IsEmpty() {
				stats.EmptyMeetings++
			}
		}
		schedule.Insert(&s, section, course)
		stats.Rows++
	}

	return s, stats, nil
}

type boundField struct {
	index int
	fn    FieldFunc
}

// resolveHeader binds each recognized column to its callback, in column order.
func resolveHeader(header []string) ([]boundField, []string) {
	var (
		fields  []boundField
		unknown []string
	)
	for i, h := range header {
		name := StripWhitespace(h)
		if name == "" {
			continue
		}
		if fn, ok := Lookup(name); ok {
			fields = append(fields, boundField{index: i, fn: fn})
		} else {
			unknown = append(unknown, name)
		}
	}
	return fields, unknown
}

func isBlankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
