package schedule

import (
	"reflect"
	"sort"
	"time"
)

// Default calendar window used when a schedule has no timed meetings.
const (
	DefaultSlotMinTime = "07:00"
	DefaultSlotMaxTime = "22:00"
)

// State is the application state derived from the current schedule.
type State struct {
	Schedule     Schedule            `json:"schedule"`
	Constraints  map[string][]string `json:"constraints,omitempty"`
	SelectedTerm Term                `json:"selectedTerm"`

	// Derived from Schedule on every SetSchedule.
	Professors  []string `json:"professors"`
	Rooms       []string `json:"rooms"`
	Classes     []string `json:"classes"`
	SlotMinTime string   `json:"slotMinTime"`
	SlotMaxTime string   `json:"slotMaxTime"`
}

// NewState returns the state of an empty application.
func NewState() State {
	return Reduce(State{SelectedTerm: TermFall}, SetSchedule{})
}

// Action is a state transition applied by Reduce.
type Action interface {
	action()
}

// SetSchedule replaces the schedule and recomputes derived fields.
type SetSchedule struct {
	Schedule Schedule
}

// ImportSchedule applies a freshly parsed schedule, either replacing the
// current one or merging into it.
type ImportSchedule struct {
	Schedule Schedule
	Additive bool
}

// SetConstraints replaces the conflict constraints.
type SetConstraints struct {
	Constraints map[string][]string
}

// SetFileURL records where the current schedule was loaded from.
type SetFileURL struct {
	FileURL string
}

// SetSelectedTerm changes the term being viewed.
type SetSelectedTerm struct {
	Term Term
}

func (SetSchedule) action()     {}
func (ImportSchedule) action()  {}
func (SetConstraints) action()  {}
func (SetFileURL) action()      {}
func (SetSelectedTerm) action() {}

// Reduce returns the state that results from applying a to st.
// st is never modified.
func Reduce(st State, a Action) State {
	switch act := a.(type) {
	case SetSchedule:
		next := st
		next.Schedule = act.Schedule
		next.Professors = professors(act.Schedule)
		next.Rooms = rooms(act.Schedule)
		next.Classes = classes(act.Schedule)
		next.SlotMinTime, next.SlotMaxTime = slotWindow(act.Schedule)
		return next

	case ImportSchedule:
		merged, changed := applyImport(st.Schedule, act.Schedule, act.Additive)
		if !changed {
			return st
		}
		return Reduce(st, SetSchedule{Schedule: merged})

	case SetConstraints:
		next := st
		next.Constraints = act.Constraints
		return next

	case SetFileURL:
		next := st
		next.Schedule = st.Schedule.Clone()
		next.Schedule.FileURL = act.FileURL
		return next

	case SetSelectedTerm:
		next := st
		next.SelectedTerm = act.Term
		if next.SelectedTerm == "" {
			next.SelectedTerm = TermFall
		}
		return next

	default:
		return st
	}
}

// applyImport stamps the incoming courses with the current import generation
// and either merges them into current or replaces it. The counter is bumped
// once per distinct import; an import equal to the current schedule is a no-op.
func applyImport(current, incoming Schedule, additive bool) (Schedule, bool) {
	if reflect.DeepEqual(current, incoming) {
		return current, false
	}

	stamped := incoming.Clone()
	for i := range stamped.Courses {
		stamped.Courses[i].ImportRank = current.NumDistinctSchedules
	}

	var next Schedule
	if additive {
		next = Combine(current, stamped)
	} else {
		next = stamped
		next.FileURL = ""
	}
	next.NumDistinctSchedules = current.NumDistinctSchedules + 1
	return next, true
}

func professors(s Schedule) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range s.Courses {
		for _, sec := range c.Sections {
			for _, name := range sec.Instructors {
				if name == "" || seen[name] {
					continue
				}
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

func rooms(s Schedule) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range s.Courses {
		for _, sec := range c.Sections {
			for _, m := range sec.Meetings {
				room := m.Location.String()
				if room == "" || seen[room] {
					continue
				}
				seen[room] = true
				out = append(out, room)
			}
		}
	}
	sort.Strings(out)
	return out
}

func classes(s Schedule) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range s.Courses {
		for _, p := range c.Prefixes {
			name := p + "-" + c.Number
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// slotWindow returns the earliest start and latest end over all timed
// meetings, widened to whole hours.
func slotWindow(s Schedule) (string, string) {
	var minStart, maxEnd time.Time
	found := false

	for _, c := range s.Courses {
		for _, sec := range c.Sections {
			for _, m := range sec.Meetings {
				start, err := time.Parse(StartTimeLayout, m.StartTime)
				if err != nil {
					continue
				}
				end := start.Add(time.Duration(m.Duration) * time.Minute)
				if !found || start.Before(minStart) {
					minStart = start
				}
				if !found || end.After(maxEnd) {
					maxEnd = end
				}
				found = true
			}
		}
	}

	if !found {
		return DefaultSlotMinTime, DefaultSlotMaxTime
	}

	minStart = minStart.Truncate(time.Hour)
	if rounded := maxEnd.Truncate(time.Hour); rounded.Before(maxEnd) {
		maxEnd = rounded.Add(time.Hour)
	}
	return minStart.Format("15:04"), maxEnd.Format("15:04")
}

// StartTimeLayout is the normalized Meeting.StartTime format.
const StartTimeLayout = "3:04 PM"
