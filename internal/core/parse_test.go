package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/schedulizer/internal/schedule"
)

// testSchema is a minimal layout for exercising the parser without the
// production schemas.
func testSchema() Schema {
	return Schema{
		Name: "test",
		Fields: map[string]FieldFunc{
			"prefix":     func(v string, row *RowBuilder) { row.Course.Prefixes = SplitPrefixes(v) },
			"number":     func(v string, row *RowBuilder) { row.Course.Number = CleanCell(v) },
			"section":    func(v string, row *RowBuilder) { row.Section.Letter = CleanCell(v) },
			"instructor": func(v string, row *RowBuilder) { row.Section.Instructors = SplitList(v) },
			"term": func(v string, row *RowBuilder) {
				if t, ok := schedule.ParseTerm(v); ok {
					row.Section.Term = t
				}
			},
			"days": func(v string, row *RowBuilder) {
				for i, line := range SplitLines(v) {
					row.Meeting(i).Days = ParseDays(line)
				}
			},
			"duration": func(v string, row *RowBuilder) {
				for i, line := range SplitLines(v) {
					row.Meeting(i).Duration = ParseInt(line)
				}
			},
		},
	}
}

func TestParseCSV_Basic(t *testing.T) {
	withSchemas(t, testSchema())

	text := "prefix,number,section,instructor,days,duration\n" +
		"MATH,171,A,Smith,MWF,65\n" +
		"MATH,171,B,Jones,TTh,95\n" +
		"CS,108,A,Lee,MWF,50\n"

	s := ParseCSV(text)

	if len(s.Courses) != 2 {
		t.Fatalf("len(Courses) = %d, want 2", len(s.Courses))
	}
	math := s.Courses[0]
	if math.Number != "171" || len(math.Sections) != 2 {
		t.Errorf("MATH 171 = %+v", math)
	}
	if got := math.Sections[1].Meetings[0].Days; len(got) != 2 || got[1] != schedule.Thursday {
		t.Errorf("MATH-171-B days = %v", got)
	}
	if s.Courses[1].Sections[0].Instructors[0] != "Lee" {
		t.Errorf("CS-108-A instructors = %v", s.Courses[1].Sections[0].Instructors)
	}
}

func TestParseCSV_HeaderWhitespaceIgnored(t *testing.T) {
	withSchemas(t, testSchema())

	s := ParseCSV(" pre fix , number ,section\nMATH,171,A\n")
	if len(s.Courses) != 1 || s.Courses[0].Prefixes[0] != "MATH" {
		t.Fatalf("Courses = %+v", s.Courses)
	}
}

func TestParseCSV_SameSectionRowsConcatenateMeetings(t *testing.T) {
	withSchemas(t, testSchema())

	text := "prefix,number,section,days,duration\n" +
		"MATH,171,A,MWF,50\n" +
		"MATH,171,A,T,50\n"

	s := ParseCSV(text)
	if len(s.Courses) != 1 || len(s.Courses[0].Sections) != 1 {
		t.Fatalf("Courses = %+v", s.Courses)
	}
	if n := len(s.Courses[0].Sections[0].Meetings); n != 2 {
		t.Errorf("meetings = %d, want 2", n)
	}
}

func TestParseCSV_MultiLineMeetingCells(t *testing.T) {
	withSchemas(t, testSchema())

	text := "prefix,number,section,days,duration\n" +
		"MATH,171,A,\"MWF\nT\",\"50\n75\"\n"

	s := ParseCSV(text)
	meetings := s.Courses[0].Sections[0].Meetings
	if len(meetings) != 2 {
		t.Fatalf("meetings = %+v, want 2", meetings)
	}
	if meetings[1].Duration != 75 || meetings[1].Days[0] != schedule.Tuesday {
		t.Errorf("second meeting = %+v", meetings[1])
	}
}

func TestParseCSV_PlaceholderDaysProduceNoMeetings(t *testing.T) {
	withSchemas(t, testSchema())

	text := "prefix,number,section,days,duration\n" +
		"MATH,101,A,TBA,0\n" +
		"MATH,101,B,ARR,\n" +
		"MATH,101,C,ASYNC,0\n"

	s := ParseCSV(text)
	if len(s.Courses) != 1 || len(s.Courses[0].Sections) != 3 {
		t.Fatalf("Courses = %+v", s.Courses)
	}
	for _, sec := range s.Courses[0].Sections {
		if len(sec.Meetings) != 0 {
			t.Errorf("section %s meetings = %+v, want none", sec.Letter, sec.Meetings)
		}
	}
}

func TestParseCSV_TermDefaultsToFall(t *testing.T) {
	withSchemas(t, testSchema())

	s := ParseCSV("prefix,number,section,term\nMATH,171,A,\nMATH,171,A,2021SP\nMATH,171,A,bogus\n")
	sections := s.Courses[0].Sections
	if len(sections) != 2 {
		t.Fatalf("sections = %+v, want FA and SP", sections)
	}
	if sections[0].Term != schedule.TermFall || sections[1].Term != schedule.TermSpring {
		t.Errorf("terms = %s, %s", sections[0].Term, sections[1].Term)
	}
}

func TestParseCSVContext_Stats(t *testing.T) {
	withSchemas(t, testSchema())

	text := "prefix,number,section,room,days,duration\n" +
		"MATH,171,A,NH 253,MWF,50\n" +
		",,,,,\n" +
		"CS,108,A,SB 1,,\n"

	s, stats, err := ParseCSVContext(context.Background(), strings.NewReader(text))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Rows != 2 || stats.SkippedRows != 1 || stats.EmptyMeetings != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.UnknownHeaders) != 1 || stats.UnknownHeaders[0] != "room" {
		t.Errorf("UnknownHeaders = %v", stats.UnknownHeaders)
	}
	if len(s.Courses[1].Sections[0].Meetings) != 0 {
		t.Errorf("empty meeting should be dropped on insert")
	}
}

func TestParseCSV_DegenerateInput(t *testing.T) {
	withSchemas(t, testSchema())

	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "header only", text: "prefix,number,section\n"},
		{name: "no known headers", text: "foo,bar\n1,2\n"},
		{name: "blank rows", text: "prefix,number\n,\n , \n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if s := ParseCSV(tt.text); len(s.Courses) != 0 {
				t.Errorf("Courses = %+v, want none", s.Courses)
			}
		})
	}
}

func TestParseCSV_BOMAndRaggedRows(t *testing.T) {
	withSchemas(t, testSchema())

	text := "\xEF\xBB\xBFprefix,number,section\nMATH,171\nCS,108,A,extra\n"
	s := ParseCSV(text)

	if len(s.Courses) != 2 {
		t.Fatalf("Courses = %+v, want 2", s.Courses)
	}
	if s.Courses[0].Sections[0].Letter != "" {
		t.Errorf("missing cell should parse as empty, got %q", s.Courses[0].Sections[0].Letter)
	}
}

func TestParseCSVContext_Cancelled(t *testing.T) {
	withSchemas(t, testSchema())

	old := ContextCheckInterval
	ContextCheckInterval = 2
	t.Cleanup(func() { ContextCheckInterval = old })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	text := "prefix,number,section\n" + strings.Repeat("MATH,171,A\n", 10)
	_, _, err := ParseCSVContext(ctx, strings.NewReader(text))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := MapError(err).Code; got != "IMP002" {
		t.Errorf("MapError code = %s, want IMP002", got)
	}
}
