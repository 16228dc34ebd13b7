package schedule

import "strings"

// CourseSectionMeeting addresses one section together with its course and
// the meeting shown first for it.
type CourseSectionMeeting struct {
	Course  Course  `json:"course"`
	Section Section `json:"section"`
	Meeting Meeting `json:"meeting"`
}

// FindSection resolves a "PREFIX-NUMBER-LETTER" label back to its course and
// section under the given term. The first course carrying the prefix and
// number is the only one searched. Returns false when nothing matches.
func FindSection(s Schedule, name string, term Term) (CourseSectionMeeting, bool) {
	if name == "" {
		return CourseSectionMeeting{}, false
	}

	parts := strings.Split(name, "-")
	if len(parts) < 3 {
		return CourseSectionMeeting{}, false
	}
	prefix, number, letter := parts[0], parts[1], parts[2]

	ci := -1
	for i, c := range s.Courses {
		if c.HasPrefix(prefix) && c.Number == number {
			ci = i
			break
		}
	}
	if ci < 0 {
		return CourseSectionMeeting{}, false
	}
	course := s.Courses[ci]

	si := findSection(course.Sections, letter, term)
	if si < 0 {
		return CourseSectionMeeting{}, false
	}
	section := course.Sections[si]

	meeting := EmptyMeeting()
	if len(section.Meetings) > 0 {
		meeting = section.Meetings[0]
	}

	return CourseSectionMeeting{Course: course, Section: section, Meeting: meeting}, true
}
