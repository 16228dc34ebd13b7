// Package schedule holds the normalized in-memory schedule model and the
// pure operations over it: merging parsed sections, resolving section labels,
// and applying state transitions.
//
// A Schedule exclusively owns its courses, a Course its sections, and a
// Section its meetings. Instructors are plain name strings shared by value.
package schedule

import (
	"strings"
)

// Term is the academic term a section runs in.
type Term string

const (
	TermFall    Term = "FA"
	TermSpring  Term = "SP"
	TermInterim Term = "IN"
	TermSummer  Term = "SU"
)

// Terms lists every term in calendar order.
var Terms = []Term{TermFall, TermInterim, TermSpring, TermSummer}

// ParseTerm normalizes term text such as "FA", "Fall", "2020FA" or "20/SP".
func ParseTerm(s string) (Term, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", false
	}

	switch s {
	case "FA", "FALL":
		return TermFall, true
	case "SP", "SPRING":
		return TermSpring, true
	case "IN", "INTERIM", "JANUARY", "J-TERM", "JTERM":
		return TermInterim, true
	case "SU", "SUMMER":
		return TermSummer, true
	}

	// Registrar exports prefix the code with the year ("2020FA", "20/SP").
	if len(s) > 2 {
		return ParseTerm(s[len(s)-2:])
	}
	return "", false
}

// SemesterLength is the portion of a term a section occupies.
type SemesterLength string

const (
	SemesterFull       SemesterLength = "Full"
	SemesterHalfFirst  SemesterLength = "First"
	SemesterHalfSecond SemesterLength = "Second"
	SemesterIntensiveA SemesterLength = "A"
	SemesterIntensiveB SemesterLength = "B"
	SemesterIntensiveC SemesterLength = "C"
	SemesterIntensiveD SemesterLength = "D"
)

// ParseSemesterLength normalizes semester length text.
func ParseSemesterLength(s string) (SemesterLength, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "full semester":
		return SemesterFull, true
	case "first", "half first", "first half", "1":
		return SemesterHalfFirst, true
	case "second", "half second", "second half", "2":
		return SemesterHalfSecond, true
	case "a", "intensive a":
		return SemesterIntensiveA, true
	case "b", "intensive b":
		return SemesterIntensiveB, true
	case "c", "intensive c":
		return SemesterIntensiveC, true
	case "d", "intensive d":
		return SemesterIntensiveD, true
	default:
		return "", false
	}
}

// Day is a weekday a meeting occurs on.
type Day string

const (
	Monday    Day = "M"
	Tuesday   Day = "T"
	Wednesday Day = "W"
	Thursday  Day = "TH"
	Friday    Day = "F"
	Saturday  Day = "SA"
	Sunday    Day = "SU"
)

// Weekdays lists every day in week order starting Monday.
var Weekdays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Location is a room a meeting is held in.
type Location struct {
	Building     string `json:"building" yaml:"building"`
	RoomNumber   string `json:"roomNumber" yaml:"roomNumber"`
	RoomCapacity int    `json:"roomCapacity,omitempty" yaml:"roomCapacity,omitempty"`
}

// String returns "BUILDING ROOM", or whichever half is present.
func (l Location) String() string {
	return strings.TrimSpace(l.Building + " " + l.RoomNumber)
}

// Meeting is one recurring day/time/room slot of a section.
type Meeting struct {
	Days      []Day    `json:"days" yaml:"days"`
	Duration  int      `json:"duration" yaml:"duration"` // minutes
	StartTime string   `json:"startTime" yaml:"startTime"` // like "8:00 AM"
	Location  Location `json:"location" yaml:"location"`
}

// IsEmpty reports whether the meeting has neither days nor a duration.
// Such meetings come from blank spreadsheet cells.
func (m Meeting) IsEmpty() bool {
	return len(m.Days) == 0 && m.Duration <= 0
}

// Section is one offering of a course, identified within it by (Letter, Term).
type Section struct {
	Letter         string         `json:"letter" yaml:"letter"`
	Term           Term           `json:"term" yaml:"term"`
	SemesterLength SemesterLength `json:"semesterLength" yaml:"semesterLength"`
	Year           string         `json:"year,omitempty" yaml:"year,omitempty"`

	// Asynchronous sections legitimately have no meetings.
	Meetings    []Meeting `json:"meetings" yaml:"meetings"`
	Instructors []string  `json:"instructors" yaml:"instructors"`

	GlobalMax       int `json:"globalMax" yaml:"globalMax"`
	LocalMax        int `json:"localMax" yaml:"localMax"`
	Used            int `json:"used" yaml:"used"`
	Day10Used       int `json:"day10Used" yaml:"day10Used"`
	AnticipatedSize int `json:"anticipatedSize,omitempty" yaml:"anticipatedSize,omitempty"`

	// Overrides for the course defaults; nil means inherit.
	FacultyHours *float64 `json:"facultyHours,omitempty" yaml:"facultyHours,omitempty"`
	StudentHours *float64 `json:"studentHours,omitempty" yaml:"studentHours,omitempty"`

	Comments            string `json:"comments,omitempty" yaml:"comments,omitempty"`
	InstructionalMethod string `json:"instructionalMethod,omitempty" yaml:"instructionalMethod,omitempty"`
	Status              string `json:"status,omitempty" yaml:"status,omitempty"`
	StartDate           string `json:"startDate,omitempty" yaml:"startDate,omitempty"`
	EndDate             string `json:"endDate,omitempty" yaml:"endDate,omitempty"`
	IsNonTeaching       bool   `json:"isNonTeaching,omitempty" yaml:"isNonTeaching,omitempty"`
}

// Course is identified by (Prefixes, Number) and owns its sections.
type Course struct {
	Department   string    `json:"department,omitempty" yaml:"department,omitempty"`
	Name         string    `json:"name" yaml:"name"`
	Number       string    `json:"number" yaml:"number"`
	Prefixes     []string  `json:"prefixes" yaml:"prefixes"`
	FacultyHours float64   `json:"facultyHours" yaml:"facultyHours"`
	StudentHours float64   `json:"studentHours" yaml:"studentHours"`
	ImportRank   int       `json:"importRank" yaml:"importRank"`
	Sections     []Section `json:"sections" yaml:"sections"`
}

// HasPrefix reports whether p is one of the course's prefixes.
func (c Course) HasPrefix(p string) bool {
	for _, cp := range c.Prefixes {
		if cp == p {
			return true
		}
	}
	return false
}

// SharesPrefix reports whether the two courses have at least one prefix in common.
func (c Course) SharesPrefix(other Course) bool {
	for _, p := range other.Prefixes {
		if c.HasPrefix(p) {
			return true
		}
	}
	return false
}

// Schedule is the full set of courses from one or more imports.
type Schedule struct {
	Courses []Course `json:"courses" yaml:"courses"`

	// NumDistinctSchedules counts imports applied so far; it seeds ImportRank.
	NumDistinctSchedules int    `json:"numDistinctSchedules" yaml:"numDistinctSchedules"`
	FileURL              string `json:"fileUrl,omitempty" yaml:"fileUrl,omitempty"`
}

// SectionCount returns the number of sections across all courses.
func (s Schedule) SectionCount() int {
	n := 0
	for _, c := range s.Courses {
		n += len(c.Sections)
	}
	return n
}

// Clone returns a deep copy of the schedule.
func (s Schedule) Clone() Schedule {
	out := s
	if s.Courses != nil {
		out.Courses = make([]Course, len(s.Courses))
		for i, c := range s.Courses {
			out.Courses[i] = c.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the course.
func (c Course) Clone() Course {
	out := c
	out.Prefixes = cloneStrings(c.Prefixes)
	if c.Sections != nil {
		out.Sections = make([]Section, len(c.Sections))
		for i, sec := range c.Sections {
			out.Sections[i] = sec.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	out.Instructors = cloneStrings(s.Instructors)
	if s.FacultyHours != nil {
		v := *s.FacultyHours
		out.FacultyHours = &v
	}
	if s.StudentHours != nil {
		v := *s.StudentHours
		out.StudentHours = &v
	}
	if s.Meetings != nil {
		out.Meetings = make([]Meeting, len(s.Meetings))
		for i, m := range s.Meetings {
			out.Meetings[i] = m.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the meeting.
func (m Meeting) Clone() Meeting {
	out := m
	if m.Days != nil {
		out.Days = make([]Day, len(m.Days))
		copy(out.Days, m.Days)
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// EffectiveFacultyHours returns the section override, else the course default.
func EffectiveFacultyHours(c Course, s Section) float64 {
	if s.FacultyHours != nil {
		return *s.FacultyHours
	}
	return c.FacultyHours
}

// EffectiveStudentHours returns the section override, else the course default.
func EffectiveStudentHours(c Course, s Section) float64 {
	if s.StudentHours != nil {
		return *s.StudentHours
	}
	return c.StudentHours
}

// SectionName returns the display label "PREFIX-NUMBER-LETTER" using the
// course's first prefix.
func SectionName(c Course, s Section) string {
	prefix := ""
	if len(c.Prefixes) > 0 {
		prefix = c.Prefixes[0]
	}
	return prefix + "-" + c.Number + "-" + s.Letter
}

// EmptyMeeting returns the placeholder meeting a freshly parsed row starts with.
func EmptyMeeting() Meeting {
	return Meeting{Days: []Day{}}
}
