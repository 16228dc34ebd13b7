// Package facultyload builds the per-instructor teaching load report from a
// schedule: which sections each instructor teaches in each term, and how
// many faculty hours that adds up to.
package facultyload

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/JonMunkholm/schedulizer/internal/schedule"
)

// Row is one instructor's load. Section lists are comma-joined section names
// in schedule order; OtherDuties lists non-teaching assignments as
// "method (hours)".
type Row struct {
	Faculty              string  `json:"faculty" yaml:"faculty"`
	FallCourseSections   string  `json:"fallCourseSections,omitempty" yaml:"fallCourseSections,omitempty"`
	FallHours            float64 `json:"fallHours" yaml:"fallHours"`
	SpringCourseSections string  `json:"springCourseSections,omitempty" yaml:"springCourseSections,omitempty"`
	SpringHours          float64 `json:"springHours" yaml:"springHours"`
	SummerCourseSections string  `json:"summerCourseSections,omitempty" yaml:"summerCourseSections,omitempty"`
	SummerHours          float64 `json:"summerHours" yaml:"summerHours"`
	OtherDuties          string  `json:"otherDuties,omitempty" yaml:"otherDuties,omitempty"`
	OtherHours           float64 `json:"otherHours" yaml:"otherHours"`
	TotalHours           float64 `json:"totalHours" yaml:"totalHours"`
}

type bucket int

const (
	bucketNone bucket = iota
	bucketFall
	bucketSpring
	bucketSummer
	bucketOther
)

// bucketFor places a section in a report column. Interim counts as summer.
func bucketFor(sec schedule.Section) bucket {
	if sec.IsNonTeaching {
		return bucketOther
	}
	switch sec.Term {
	case schedule.TermFall:
		return bucketFall
	case schedule.TermSpring:
		return bucketSpring
	case schedule.TermSummer, schedule.TermInterim:
		return bucketSummer
	default:
		return bucketNone
	}
}

// Aggregate produces one Row per distinct instructor, sorted by total hours
// descending. Rows with equal totals keep the order in which their
// instructor first appears in the schedule.
//
// Each instructor of a section is credited the section's effective faculty
// hours divided evenly among its instructors. A section whose term fits no
// column still gives its instructors a row, with no hours from it.
func Aggregate(s schedule.Schedule) []Row {
	var rows []Row
	index := make(map[string]int)

	for _, course := range s.Courses {
		for _, sec := range course.Sections {
			if len(sec.Instructors) == 0 {
				continue
			}
			hours := schedule.EffectiveFacultyHours(course, sec) / float64(len(sec.Instructors))
			b := bucketFor(sec)
			label := schedule.SectionName(course, sec)
			switch b {
			case bucketNone:
				slog.Warn("section left out of faculty loads: unknown term",
					"section", label,
					"term", sec.Term,
				)
			case bucketOther:
				label = sec.InstructionalMethod + " (" + formatHours(hours) + ")"
			}

			for _, instructor := range sec.Instructors {
				i, ok := index[instructor]
				if !ok {
					i = len(rows)
					index[instructor] = i
					rows = append(rows, Row{Faculty: instructor})
				}
				rows[i].add(b, label, hours)
			}
		}
	}

	for i := range rows {
		r := &rows[i]
		r.TotalHours = r.FallHours + r.SpringHours + r.SummerHours + r.OtherHours
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].TotalHours > rows[j].TotalHours
	})
	return rows
}

func (r *Row) add(b bucket, label string, hours float64) {
	switch b {
	case bucketFall:
		r.FallCourseSections = appendLabel(r.FallCourseSections, label)
		r.FallHours += hours
	case bucketSpring:
		r.SpringCourseSections = appendLabel(r.SpringCourseSections, label)
		r.SpringHours += hours
	case bucketSummer:
		r.SummerCourseSections = appendLabel(r.SummerCourseSections, label)
		r.SummerHours += hours
	case bucketOther:
		r.OtherDuties = appendLabel(r.OtherDuties, label)
		r.OtherHours += hours
	}
}

func appendLabel(list, label string) string {
	if list == "" {
		return label
	}
	return list + SectionSeparator + label
}

// SectionSeparator joins section names within a report cell.
const SectionSeparator = ", "

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// SplitCell splits a report cell back into its section names.
func SplitCell(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.Split(value, SectionSeparator)
}
