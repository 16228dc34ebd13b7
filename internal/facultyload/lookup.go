package facultyload

import "github.com/JonMunkholm/schedulizer/internal/schedule"

// Column is a report column header.
type Column string

const (
	ColumnFaculty        Column = "Faculty"
	ColumnFallSections   Column = "Fall Course Sections"
	ColumnFallHours      Column = "Fall Hours"
	ColumnSpringSections Column = "Spring Course Sections"
	ColumnSpringHours    Column = "Spring Hours"
	ColumnSummerSections Column = "Summer Course Sections"
	ColumnSummerHours    Column = "Summer Hours"
	ColumnOtherDuties    Column = "Other Duties"
	ColumnOtherHours     Column = "Other Hours"
	ColumnTotalHours     Column = "Total Hours"
)

// Columns lists the report columns in display order.
var Columns = []Column{
	ColumnFaculty,
	ColumnFallSections, ColumnFallHours,
	ColumnSpringSections, ColumnSpringHours,
	ColumnSummerSections, ColumnSummerHours,
	ColumnOtherDuties, ColumnOtherHours,
	ColumnTotalHours,
}

// sectionColumnTerms maps the section-list columns to the term they show.
var sectionColumnTerms = map[Column]schedule.Term{
	ColumnFallSections:   schedule.TermFall,
	ColumnSpringSections: schedule.TermSpring,
	ColumnSummerSections: schedule.TermSummer,
}

// CellMatch is the result of resolving a report cell.
type CellMatch struct {
	Match    *schedule.CourseSectionMeeting `json:"match,omitempty"`
	Sections []string                       `json:"sections"`
	Term     schedule.Term                  `json:"term"`
}

// LookupCell resolves the first section named in a report cell. The summer
// column also holds interim sections, so when the column's own term finds
// nothing the lookup is retried under Interim and Term reports which one
// matched. Cells outside the section columns never match.
func LookupCell(s schedule.Schedule, column Column, value string) CellMatch {
	out := CellMatch{Sections: SplitCell(value), Term: schedule.TermFall}

	term, ok := sectionColumnTerms[column]
	if !ok || len(out.Sections) == 0 {
		return out
	}

	out.Term = term
	if csm, found := schedule.FindSection(s, out.Sections[0], term); found {
		out.Match = &csm
		return out
	}

	out.Term = schedule.TermInterim
	if csm, found := schedule.FindSection(s, out.Sections[0], schedule.TermInterim); found {
		out.Match = &csm
	}
	return out
}
