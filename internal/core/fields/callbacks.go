// Package fields registers the known spreadsheet schemas with the core registry.
// Import this package to ensure both schemas are registered.
package fields

import (
	"strings"

	"github.com/JonMunkholm/schedulizer/internal/core"
	"github.com/JonMunkholm/schedulizer/internal/schedule"
)

// Course-level callbacks.

func name(v string, row *core.RowBuilder) {
	row.Course.Name = core.CleanCell(v)
}

func number(v string, row *core.RowBuilder) {
	row.Course.Number = core.CleanCell(v)
}

func prefixes(v string, row *core.RowBuilder) {
	row.Course.Prefixes = core.SplitPrefixes(v)
}

func department(v string, row *core.RowBuilder) {
	row.Course.Department = core.CleanCell(v)
}

// facultyHours sets the course default and the section override, so a
// section keeps its own load after merging into a course parsed earlier.
func facultyHours(v string, row *core.RowBuilder) {
	h := core.ParseFloat(v)
	row.Course.FacultyHours = h
	row.Section.FacultyHours = &h
}

func studentHours(v string, row *core.RowBuilder) {
	h := core.ParseFloat(v)
	row.Course.StudentHours = h
	row.Section.StudentHours = &h
}

// Section-level callbacks.

func letter(v string, row *core.RowBuilder) {
	v = core.CleanCell(v)
	// Some exports repeat the course in the code ("MATH-171-A").
	if i := strings.LastIndexByte(v, '-'); i >= 0 {
		v = v[i+1:]
	}
	row.Section.Letter = v
}

func term(v string, row *core.RowBuilder) {
	if t, ok := schedule.ParseTerm(core.CleanCell(v)); ok {
		row.Section.Term = t
	}
}

func semesterLength(v string, row *core.RowBuilder) {
	if l, ok := schedule.ParseSemesterLength(core.CleanCell(v)); ok {
		row.Section.SemesterLength = l
	}
}

func year(v string, row *core.RowBuilder) {
	row.Section.Year = core.CleanCell(v)
}

func instructors(v string, row *core.RowBuilder) {
	row.Section.Instructors = core.SplitList(v)
}

func globalMax(v string, row *core.RowBuilder) {
	row.Section.GlobalMax = core.ParseInt(v)
}

func localMax(v string, row *core.RowBuilder) {
	row.Section.LocalMax = core.ParseInt(v)
}

func used(v string, row *core.RowBuilder) {
	row.Section.Used = core.ParseInt(v)
}

func day10Used(v string, row *core.RowBuilder) {
	row.Section.Day10Used = core.ParseInt(v)
}

func anticipatedSize(v string, row *core.RowBuilder) {
	row.Section.AnticipatedSize = core.ParseInt(v)
}

func comments(v string, row *core.RowBuilder) {
	row.Section.Comments = strings.TrimSpace(v)
}

func instructionalMethod(v string, row *core.RowBuilder) {
	row.Section.InstructionalMethod = core.CleanCell(v)
}

func status(v string, row *core.RowBuilder) {
	row.Section.Status = core.CleanCell(v)
}

func nonTeaching(v string, row *core.RowBuilder) {
	row.Section.IsNonTeaching = core.ParseBool(v)
}

func sectionStart(v string, row *core.RowBuilder) {
	row.Section.StartDate = core.ParseDate(v)
}

func sectionEnd(v string, row *core.RowBuilder) {
	row.Section.EndDate = core.ParseDate(v)
}

// Meeting-level callbacks. A cell may list one value per meeting on
// separate lines; line i fills meeting i.

func eachMeeting(v string, row *core.RowBuilder, apply func(string, *schedule.Meeting)) {
	for i, line := range core.SplitLines(v) {
		apply(line, row.Meeting(i))
	}
}

func days(v string, row *core.RowBuilder) {
	eachMeeting(v, row, func(s string, m *schedule.Meeting) {
		m.Days = core.ParseDays(s)
	})
}

func duration(v string, row *core.RowBuilder) {
	eachMeeting(v, row, func(s string, m *schedule.Meeting) {
		m.Duration = core.ParseInt(s)
	})
}

func startTime(v string, row *core.RowBuilder) {
	eachMeeting(v, row, func(s string, m *schedule.Meeting) {
		m.StartTime = core.ParseStartTime(s)
	})
}

func location(v string, row *core.RowBuilder) {
	eachMeeting(v, row, func(s string, m *schedule.Meeting) {
		capacity := m.Location.RoomCapacity
		m.Location = core.ParseLocation(s)
		m.Location.RoomCapacity = capacity
	})
}

func roomCapacity(v string, row *core.RowBuilder) {
	eachMeeting(v, row, func(s string, m *schedule.Meeting) {
		m.Location.RoomCapacity = core.ParseInt(s)
	})
}
