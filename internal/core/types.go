// Package core provides the schedule import pipeline.
// This package has no UI dependencies and can be used by any frontend.
package core

import (
	"time"

	"github.com/JonMunkholm/schedulizer/internal/schedule"
)

// FieldFunc applies one spreadsheet cell to the row being built.
// Implementations must accept empty values.
type FieldFunc func(value string, row *RowBuilder)

// Schema is one spreadsheet export convention: a set of column headers
// (with all whitespace removed) mapped to the callbacks that consume them.
type Schema struct {
	Name   string               // Unique identifier: "registrar"
	Label  string               // Display name: "Registrar export"
	Fields map[string]FieldFunc // Header -> callback
}

// Headers returns the schema's column names in no particular order.
func (s Schema) Headers() []string {
	out := make([]string, 0, len(s.Fields))
	for h := range s.Fields {
		out = append(out, h)
	}
	return out
}

// RowBuilder accumulates one spreadsheet row. It is owned exclusively by the
// parser for the duration of a single row and finalized before merging.
type RowBuilder struct {
	Course   schedule.Course
	Section  schedule.Section
	Meetings []schedule.Meeting
}

// NewRowBuilder returns a builder holding the per-row defaults: one
// placeholder meeting, zeroed counts, term Fall and a full semester.
func NewRowBuilder() *RowBuilder {
	return &RowBuilder{
		Course: schedule.Course{
			Prefixes: []string{},
		},
		Section: schedule.Section{
			Term:           schedule.TermFall,
			SemesterLength: schedule.SemesterFull,
			Instructors:    []string{},
		},
		Meetings: []schedule.Meeting{schedule.EmptyMeeting()},
	}
}

// Meeting returns the i-th meeting of the row, appending blank meetings as
// needed so that multi-line meeting cells can address later meetings.
func (b *RowBuilder) Meeting(i int) *schedule.Meeting {
	for len(b.Meetings) <= i {
		b.Meetings = append(b.Meetings, schedule.EmptyMeeting())
	}
	return &b.Meetings[i]
}

// Finalize returns the course and section built from the row. The builder
// must not be used afterwards.
func (b *RowBuilder) Finalize() (schedule.Course, schedule.Section) {
	section := b.Section
	section.Meetings = b.Meetings
	if section.IsNonTeaching {
		section.Meetings = []schedule.Meeting{}
	}
	return b.Course, section
}

// FileType identifies how an uploaded file is decoded.
type FileType string

const (
	FileCSV  FileType = "csv"
	FileXLSX FileType = "xlsx"
	FileJSON FileType = "json"
)

// Constraints maps an entity name to the names it must not be scheduled with.
type Constraints map[string][]string

// Payload is the decoded form of an uploaded file. Text is set for
// spreadsheet types, Constraints for json.
type Payload struct {
	Type        FileType
	Text        string
	Constraints Constraints
}

// ParseStats summarizes a parse for logging and metrics.
type ParseStats struct {
	Rows           int      // Data rows applied
	SkippedRows    int      // Blank rows ignored
	EmptyMeetings  int      // Blank meetings that the merge will drop
	UnknownHeaders []string // Headers no schema recognizes
}

// ImportRequest is one user-initiated file load.
type ImportRequest struct {
	FileName string
	Data     []byte
	Additive bool
}

// ImportResult describes a completed import.
type ImportResult struct {
	ImportID             string        `json:"importId,omitempty"`
	FileName             string        `json:"fileName"`
	Type                 FileType      `json:"type"`
	Additive             bool          `json:"additive"`
	ImportedBy           string        `json:"importedBy,omitempty"`
	Rows                 int           `json:"rows"`
	SkippedRows          int           `json:"skippedRows"`
	EmptyMeetings        int           `json:"emptyMeetings"`
	UnknownHeaders       []string      `json:"unknownHeaders,omitempty"`
	Courses              int           `json:"courses"`
	Sections             int           `json:"sections"`
	Constraints          int           `json:"constraints"`
	NumDistinctSchedules int           `json:"numDistinctSchedules"`
	Duration             time.Duration `json:"duration"`
	Warning              string        `json:"warning,omitempty"`
	ErrorCode            string        `json:"errorCode,omitempty"` // Set in History for failed imports
	StartedAt            time.Time     `json:"startedAt"`
}
