package core

// convert.go provides the lenient cell conversions used by field callbacks.
//
// These functions handle the messy reality of institutional spreadsheet exports:
//   - Numbers with stray spaces, thousands separators or decimal hours
//   - Day lists written as "MWF", "TTh", "T R" or "M,W,F"
//   - Start times as "8:00AM", "08:00:00" or "13:30"
//   - Excel formula prefixes (="value")
//   - Multiple dates formats (US, ISO, etc.)
//
// None of them return errors: unusable input yields the zero value so that a
// bad cell never rejects a whole import.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/JonMunkholm/schedulizer/internal/schedule"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 20

// DateLayout is the normalized form of section start and end dates.
const DateLayout = "1/2/2006"

// Date layouts split by year format for proper 2-digit year handling
var (
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
	}
	fourDigitYearLayouts = []string{
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"2006-01-02", "2006/01/02", "2006.01.02",
		"2006-01-02T15:04:05", "2006-01-02 15:04:05",
		"Jan 2, 2006", "2 Jan 2006",
		"20060102",
	}
	startTimeLayouts = []string{
		"3:04 PM", "3:04PM", "3:04 pm", "3:04pm",
		"3:04:05 PM", "3:04:05PM",
		"15:04", "15:04:05",
		"3PM", "3 PM",
	}
)

// StripWhitespace removes every whitespace rune from s.
// Header names are normalized this way before registry lookup.
func StripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	// Remove leading '='
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	// Remove any surrounding quotes
	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// ParseFloat converts a cell to a float64, returning 0 for empty or
// malformed input. Thousands separators are removed.
func ParseFloat(s string) float64 {
	s = strings.ReplaceAll(CleanCell(s), ",", "")
	if s == "" || !numericRegex.MatchString(s) {
		return 0
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseInt converts a cell to an int, truncating any fractional part.
// Returns 0 for empty, malformed or out-of-range input.
func ParseInt(s string) int {
	f := math.Trunc(ParseFloat(s))
	if f < math.MinInt || f >= -math.MinInt {
		return 0
	}
	return int(f)
}

// ParseBool accepts various representations: true/false, yes/no, t/f, y/n, 1/0.
// Anything else is false.
func ParseBool(s string) bool {
	switch strings.ToLower(CleanCell(s)) {
	case "true", "t", "yes", "y", "1", "x":
		return true
	default:
		return false
	}
}

// ParseDate normalizes a date cell to DateLayout.
// Unrecognized values are returned trimmed but otherwise unchanged.
func ParseDate(s string) string {
	s = CleanCell(s)
	if s == "" {
		return ""
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return t.Format(DateLayout)
		}
	}

	return s
}

// ParseStartTime normalizes a start time to schedule.StartTimeLayout
// ("8:00 AM"). Unrecognized values are returned trimmed.
func ParseStartTime(s string) string {
	s = CleanCell(s)
	if s == "" {
		return ""
	}

	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(schedule.StartTimeLayout)
		}
	}
	// Spreadsheet time cells sometimes arrive with a date attached.
	if i := strings.LastIndexByte(s, ' '); i > 0 && strings.Contains(s[:i], "-") {
		return ParseStartTime(s[i+1:])
	}
	return s
}

// ParseDays converts a day cell into an ordered, duplicate-free day list.
// Accepts compact forms ("MWF", "TTh", "TR"), separated forms ("M W F",
// "Mon,Wed") and full names. A word counts only when day codes cover all of
// its letters, so placeholders such as "TBA", "ARR" or "ASYNC" add no days.
func ParseDays(s string) []schedule.Day {
	s = strings.ToUpper(CleanCell(s))
	days := []schedule.Day{}
	if s == "" {
		return days
	}

	seen := make(map[schedule.Day]bool)
	for _, word := range strings.FieldsFunc(s, isDaySeparator) {
		parsed, ok := fullDayNames[word]
		var wordDays []schedule.Day
		if ok {
			wordDays = []schedule.Day{parsed}
		} else if wordDays, ok = compactDays(word); !ok {
			continue
		}
		for _, d := range wordDays {
			if !seen[d] {
				seen[d] = true
				days = append(days, d)
			}
		}
	}

	return orderDays(days)
}

// compactDays splits a word such as "MWF" or "TUTH" into day codes. It
// reports false when any letter is not part of a code.
func compactDays(word string) ([]schedule.Day, bool) {
	var days []schedule.Day
	for i := 0; i < len(word); {
		if d, ok := twoLetterDays[prefixOf(word[i:], 2)]; ok {
			days = append(days, d)
			i += 2
			continue
		}
		d, ok := dayLetters[word[i]]
		if !ok {
			return nil, false
		}
		days = append(days, d)
		i++
	}
	return days, true
}

func prefixOf(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

var twoLetterDays = map[string]schedule.Day{
	"TU": schedule.Tuesday,
	"TH": schedule.Thursday,
	"SA": schedule.Saturday,
	"SU": schedule.Sunday,
}

var dayLetters = map[byte]schedule.Day{
	'M': schedule.Monday,
	'T': schedule.Tuesday,
	'W': schedule.Wednesday,
	'R': schedule.Thursday,
	'F': schedule.Friday,
	'S': schedule.Saturday,
	'U': schedule.Sunday,
}

var fullDayNames = map[string]schedule.Day{
	"MON": schedule.Monday, "MONDAY": schedule.Monday,
	"TUE": schedule.Tuesday, "TUES": schedule.Tuesday, "TUESDAY": schedule.Tuesday,
	"WED": schedule.Wednesday, "WEDNESDAY": schedule.Wednesday,
	"THU": schedule.Thursday, "THUR": schedule.Thursday, "THURS": schedule.Thursday, "THURSDAY": schedule.Thursday,
	"FRI": schedule.Friday, "FRIDAY": schedule.Friday,
	"SAT": schedule.Saturday, "SATURDAY": schedule.Saturday,
	"SUN": schedule.Sunday, "SUNDAY": schedule.Sunday,
}

func isDaySeparator(r rune) bool {
	return r == ',' || r == '/' || r == ';' || r == '-' || unicode.IsSpace(r)
}

func orderDays(days []schedule.Day) []schedule.Day {
	ordered := make([]schedule.Day, 0, len(days))
	for _, d := range schedule.Weekdays {
		for _, got := range days {
			if got == d {
				ordered = append(ordered, d)
				break
			}
		}
	}
	return ordered
}

// ParseLocation splits "BUILDING ROOM" into its parts. A value with no
// space is split at the first hyphen, else treated as a building alone.
func ParseLocation(s string) schedule.Location {
	s = CleanCell(s)
	if s == "" {
		return schedule.Location{}
	}

	if fields := strings.Fields(s); len(fields) > 1 {
		return schedule.Location{
			Building:   fields[0],
			RoomNumber: strings.Join(fields[1:], " "),
		}
	}
	if building, room, ok := strings.Cut(s, "-"); ok && building != "" && room != "" {
		return schedule.Location{Building: building, RoomNumber: room}
	}
	return schedule.Location{Building: s}
}

// SplitList splits a multi-valued cell on semicolons and newlines.
// Commas are kept because names are often written "Last, First".
func SplitList(s string) []string {
	return splitClean(s, func(r rune) bool {
		return r == ';' || r == '\n' || r == '\r'
	})
}

// SplitPrefixes splits a cross-listed prefix cell such as "MATH/STAT" or
// "MATH, STAT".
func SplitPrefixes(s string) []string {
	return splitClean(s, func(r rune) bool {
		return r == ',' || r == '/' || r == ';' || r == '&' || unicode.IsSpace(r)
	})
}

// SplitLines splits a meeting cell into one value per meeting. A cell with
// no line breaks yields a single value, which may be empty.
func SplitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}

func splitClean(s string, sep func(rune) bool) []string {
	out := []string{}
	for _, part := range strings.FieldsFunc(s, sep) {
		if part = CleanCell(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
