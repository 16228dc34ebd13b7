package fields

import "github.com/JonMunkholm/schedulizer/internal/core"

func init() {
	registerPruim()
}

// registerPruim registers the department planning spreadsheet, whose headers
// are camelCase field names.
func registerPruim() {
	core.Register(core.Schema{
		Name:  "pruim",
		Label: "Department planning spreadsheet",
		Fields: map[string]core.FieldFunc{
			"anticipatedSize":     anticipatedSize,
			"comments":            comments,
			"day10Used":           day10Used,
			"days":                days,
			"department":          department,
			"duration":            duration,
			"facultyHours":        facultyHours,
			"globalMax":           globalMax,
			"half":                semesterLength,
			"instructionalMethod": instructionalMethod,
			"instructor":          instructors,
			"instructors":         instructors,
			"isNonTeaching":       nonTeaching,
			"localMax":            localMax,
			"location":            location,
			"name":                name,
			"number":              number,
			"prefix":              prefixes,
			"prefixes":            prefixes,
			"roomCapacity":        roomCapacity,
			"section":             letter,
			"semesterLength":      semesterLength,
			"startTime":           startTime,
			"startTimeStr":        startTime,
			"status":              status,
			"studentHours":        studentHours,
			"term":                term,
			"used":                used,
			"year":                year,
		},
	})
}
