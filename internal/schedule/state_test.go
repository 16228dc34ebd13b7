package schedule

import (
	"reflect"
	"testing"
)

func TestParseTerm(t *testing.T) {
	tests := []struct {
		input  string
		want   Term
		wantOK bool
	}{
		{"FA", TermFall, true},
		{"fall", TermFall, true},
		{" Spring ", TermSpring, true},
		{"IN", TermInterim, true},
		{"Summer", TermSummer, true},
		{"2020FA", TermFall, true},
		{"21/SP", TermSpring, true},
		{"", "", false},
		{"Winter", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseTerm(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseTerm(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestParseSemesterLength(t *testing.T) {
	tests := []struct {
		input  string
		want   SemesterLength
		wantOK bool
	}{
		{"Full", SemesterFull, true},
		{"first", SemesterHalfFirst, true},
		{"Second", SemesterHalfSecond, true},
		{"c", SemesterIntensiveC, true},
		{"", "", false},
		{"quarter", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseSemesterLength(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseSemesterLength(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func sampleSchedule() Schedule {
	var s Schedule
	Insert(&s, Section{
		Letter:      "A",
		Term:        TermFall,
		Instructors: []string{"Smith", "Jones"},
		Meetings: []Meeting{{
			Days:      []Day{Monday, Wednesday, Friday},
			Duration:  50,
			StartTime: "8:00 AM",
			Location:  Location{Building: "NH", RoomNumber: "253"},
		}},
	}, Course{Number: "171", Prefixes: []string{"MATH"}})
	Insert(&s, Section{
		Letter:      "B",
		Term:        TermSpring,
		Instructors: []string{"Smith"},
		Meetings: []Meeting{{
			Days:      []Day{Tuesday, Thursday},
			Duration:  75,
			StartTime: "2:30 PM",
			Location:  Location{Building: "SB", RoomNumber: "372"},
		}},
	}, Course{Number: "108", Prefixes: []string{"CS"}})
	return s
}

func TestReduce_SetScheduleDerivesFields(t *testing.T) {
	st := Reduce(NewState(), SetSchedule{Schedule: sampleSchedule()})

	if want := []string{"Jones", "Smith"}; !reflect.DeepEqual(st.Professors, want) {
		t.Errorf("Professors = %v, want %v", st.Professors, want)
	}
	if want := []string{"NH 253", "SB 372"}; !reflect.DeepEqual(st.Rooms, want) {
		t.Errorf("Rooms = %v, want %v", st.Rooms, want)
	}
	if want := []string{"CS-108", "MATH-171"}; !reflect.DeepEqual(st.Classes, want) {
		t.Errorf("Classes = %v, want %v", st.Classes, want)
	}
	if st.SlotMinTime != "08:00" {
		t.Errorf("SlotMinTime = %q, want %q", st.SlotMinTime, "08:00")
	}
	// 2:30 PM + 75 minutes = 3:45 PM, widened to 16:00
	if st.SlotMaxTime != "16:00" {
		t.Errorf("SlotMaxTime = %q, want %q", st.SlotMaxTime, "16:00")
	}
}

func TestReduce_EmptyScheduleUsesDefaultWindow(t *testing.T) {
	st := NewState()
	if st.SlotMinTime != DefaultSlotMinTime || st.SlotMaxTime != DefaultSlotMaxTime {
		t.Errorf("window = %s-%s, want %s-%s", st.SlotMinTime, st.SlotMaxTime, DefaultSlotMinTime, DefaultSlotMaxTime)
	}
	if st.SelectedTerm != TermFall {
		t.Errorf("SelectedTerm = %q, want %q", st.SelectedTerm, TermFall)
	}
}

func TestReduce_ImportReplaceStampsRankAndCounter(t *testing.T) {
	st := NewState()
	st = Reduce(st, SetFileURL{FileURL: "https://example.edu/schedule.csv"})

	st = Reduce(st, ImportSchedule{Schedule: sampleSchedule()})

	if st.Schedule.NumDistinctSchedules != 1 {
		t.Errorf("NumDistinctSchedules = %d, want 1", st.Schedule.NumDistinctSchedules)
	}
	if st.Schedule.FileURL != "" {
		t.Errorf("FileURL = %q, want empty after replacing import", st.Schedule.FileURL)
	}
	for _, c := range st.Schedule.Courses {
		if c.ImportRank != 0 {
			t.Errorf("course %s ImportRank = %d, want 0", c.Number, c.ImportRank)
		}
	}

	var second Schedule
	Insert(&second, Section{Letter: "A", Term: TermFall}, Course{Number: "262", Prefixes: []string{"CS"}})
	st = Reduce(st, ImportSchedule{Schedule: second, Additive: true})

	if st.Schedule.NumDistinctSchedules != 2 {
		t.Errorf("NumDistinctSchedules = %d, want 2", st.Schedule.NumDistinctSchedules)
	}
	if len(st.Schedule.Courses) != 3 {
		t.Fatalf("len(Courses) = %d, want 3", len(st.Schedule.Courses))
	}
	if rank := st.Schedule.Courses[2].ImportRank; rank != 1 {
		t.Errorf("additive course ImportRank = %d, want 1", rank)
	}
	if rank := st.Schedule.Courses[0].ImportRank; rank != 0 {
		t.Errorf("existing course ImportRank = %d, want 0", rank)
	}
}

func TestReduce_ImportDoesNotMutatePreviousState(t *testing.T) {
	before := Reduce(NewState(), ImportSchedule{Schedule: sampleSchedule()})
	snapshot := before.Schedule.Clone()

	var more Schedule
	Insert(&more, Section{Letter: "A", Term: TermFall, Meetings: []Meeting{{
		Days: []Day{Tuesday}, Duration: 50, StartTime: "9:00 AM",
	}}}, Course{Number: "171", Prefixes: []string{"MATH"}})

	_ = Reduce(before, ImportSchedule{Schedule: more, Additive: true})

	if !reflect.DeepEqual(before.Schedule, snapshot) {
		t.Error("Reduce modified the schedule of the previous state")
	}
}

func TestReduce_EqualImportIsNoop(t *testing.T) {
	st := NewState()
	got := Reduce(st, ImportSchedule{Schedule: Schedule{}})

	if got.Schedule.NumDistinctSchedules != 0 {
		t.Errorf("NumDistinctSchedules = %d, want 0", got.Schedule.NumDistinctSchedules)
	}
}

func TestReduce_SetConstraintsAndTerm(t *testing.T) {
	st := Reduce(NewState(), SetConstraints{Constraints: map[string][]string{"A": {"B"}}})
	st = Reduce(st, SetSelectedTerm{Term: TermSpring})

	if !reflect.DeepEqual(st.Constraints["A"], []string{"B"}) {
		t.Errorf("Constraints[A] = %v, want [B]", st.Constraints["A"])
	}
	if st.SelectedTerm != TermSpring {
		t.Errorf("SelectedTerm = %q, want %q", st.SelectedTerm, TermSpring)
	}

	st = Reduce(st, SetSelectedTerm{})
	if st.SelectedTerm != TermFall {
		t.Errorf("empty SelectedTerm = %q, want %q", st.SelectedTerm, TermFall)
	}
}

func TestFindSection(t *testing.T) {
	s := sampleSchedule()

	got, ok := FindSection(s, "MATH-171-A", TermFall)
	if !ok {
		t.Fatal("FindSection(MATH-171-A, FA) not found")
	}
	if got.Course.Number != "171" || got.Section.Letter != "A" || got.Section.Term != TermFall {
		t.Errorf("FindSection returned %s-%s", got.Course.Number, got.Section.Letter)
	}
	if got.Meeting.StartTime != "8:00 AM" {
		t.Errorf("Meeting.StartTime = %q, want first meeting", got.Meeting.StartTime)
	}

	misses := []struct {
		name string
		term Term
	}{
		{"", TermFall},
		{"MATH-171", TermFall},
		{"MATH-171-A", TermSpring},
		{"MATH-999-A", TermFall},
		{"PHYS-171-A", TermFall},
	}
	for _, m := range misses {
		if _, ok := FindSection(s, m.name, m.term); ok {
			t.Errorf("FindSection(%q, %s) found, want not found", m.name, m.term)
		}
	}
}

func TestFindSection_AsyncSectionGetsEmptyMeeting(t *testing.T) {
	var s Schedule
	Insert(&s, Section{Letter: "OL", Term: TermSummer}, Course{Number: "100", Prefixes: []string{"ENGL"}})

	got, ok := FindSection(s, "ENGL-100-OL", TermSummer)
	if !ok {
		t.Fatal("FindSection not found")
	}
	if !got.Meeting.IsEmpty() {
		t.Errorf("Meeting = %+v, want empty", got.Meeting)
	}
}

func TestSectionName(t *testing.T) {
	c := Course{Number: "344", Prefixes: []string{"MATH", "STAT"}}
	if got := SectionName(c, Section{Letter: "A"}); got != "MATH-344-A" {
		t.Errorf("SectionName = %q, want %q", got, "MATH-344-A")
	}
}
