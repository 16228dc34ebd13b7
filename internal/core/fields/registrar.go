package fields

import "github.com/JonMunkholm/schedulizer/internal/core"

func init() {
	registerRegistrar()
}

// registerRegistrar registers the registrar's section export, whose headers
// are PascalCase column titles ("Subject Code" arrives as "SubjectCode").
func registerRegistrar() {
	core.Register(core.Schema{
		Name:  "registrar",
		Label: "Registrar section export",
		Fields: map[string]core.FieldFunc{
			"AcademicYear":        year,
			"BuildingAndRoom":     location,
			"CourseNum":           number,
			"Day10Used":           day10Used,
			"Department":          department,
			"Faculty":             instructors,
			"FacultyLoad":         facultyHours,
			"GlobalMax":           globalMax,
			"InstructionalMethod": instructionalMethod,
			"LocalMax":            localMax,
			"MeetingDays":         days,
			"MeetingStart":        startTime,
			"MeetingTime":         duration,
			"MinimumCredits":      studentHours,
			"RoomCapacity":        roomCapacity,
			"SectionCode":         letter,
			"SectionEndDate":      sectionEnd,
			"SectionStartDate":    sectionStart,
			"SectionStatus":       status,
			"ShortTitle":          name,
			"SubjectCode":         prefixes,
			"Term":                term,
			"Used":                used,
		},
	})
}
