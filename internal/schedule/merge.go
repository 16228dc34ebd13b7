package schedule

// Insert merges a parsed section and its course into s and returns s.
//
// Empty meetings are dropped first. The course is matched by an overlapping
// prefix plus an equal number, and the section within it by (Letter, Term).
// Lookups are linear scans where the first match in insertion order wins, so
// two unrelated courses that happen to share a prefix and number collapse
// into whichever was inserted first.
//
// A matched section receives the incoming meetings appended as-is; identical
// meetings are not deduplicated.
func Insert(s *Schedule, section Section, course Course) *Schedule {
	section.Meetings = nonEmptyMeetings(section.Meetings)

	ci := findCourse(s.Courses, course)
	if ci < 0 {
		course.Sections = append(course.Sections, section)
		s.Courses = append(s.Courses, course)
		return s
	}

	existing := &s.Courses[ci]
	si := findSection(existing.Sections, section.Letter, section.Term)
	if si < 0 {
		existing.Sections = append(existing.Sections, section)
		return s
	}

	target := &existing.Sections[si]
	target.Meetings = append(target.Meetings, section.Meetings...)
	return s
}

// Combine merges every section of incoming into a copy of current.
// Neither argument is modified.
func Combine(current, incoming Schedule) Schedule {
	out := current.Clone()
	for _, c := range incoming.Courses {
		shell := c.Clone()
		shell.Sections = nil
		for _, sec := range c.Sections {
			Insert(&out, sec.Clone(), shell.Clone())
		}
	}
	return out
}

func nonEmptyMeetings(meetings []Meeting) []Meeting {
	kept := make([]Meeting, 0, len(meetings))
	for _, m := range meetings {
		if !m.IsEmpty() {
			kept = append(kept, m)
		}
	}
	return kept
}

func findCourse(courses []Course, course Course) int {
	for i, c := range courses {
		if c.Number == course.Number && c.SharesPrefix(course) {
			return i
		}
	}
	return -1
}

func findSection(sections []Section, letter string, term Term) int {
	for i, s := range sections {
		if s.Letter == letter && s.Term == term {
			return i
		}
	}
	return -1
}
