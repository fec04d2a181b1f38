package model

import (
	"math"

	"college-scheduler/internal/milp"
)

type SessionKind int

const (
	SessionIdle SessionKind = iota
	SessionLecture
	SessionSection
)

func (k SessionKind) String() string {
	switch k {
	case SessionLecture:
		return "lecture"
	case SessionSection:
		return "section"
	default:
		return "idle"
	}
}

// Session is one cell of a class's weekly grid.
type Session struct {
	Kind    SessionKind
	Subject string
	Staff   string
}

// ClassTimetable is the weekly grid of one class: Grid[day-1][period-1].
type ClassTimetable struct {
	Environment string
	Group       string
	Class       string
	Grid        [][]Session
}

type StaffRole int

const (
	RoleDoctor StaffRole = iota
	RoleAssistant
)

func (r StaffRole) String() string {
	if r == RoleDoctor {
		return "doctor"
	}
	return "assistant"
}

// Engagement is one cell of a staff member's weekly grid. Class is empty for
// lectures, which engage the whole group at once.
type Engagement struct {
	Group   string
	Class   string
	Subject string
}

// StaffTimetable is the weekly grid of one staff member; nil cells are free.
type StaffTimetable struct {
	Name string
	Role StaffRole
	Grid [][]*Engagement
}

// Schedule is the decoded solver assignment: per-class and per-staff weekly
// grids plus aggregate diagnostic counters. TimeLimited marks a feasible
// incumbent that was not proven optimal within the time budget.
type Schedule struct {
	Status      milp.Status
	TimeLimited bool
	Objective   float64

	Classes []ClassTimetable
	Staff   []StaffTimetable

	TotalGapPeriods int
	TotalActiveDays int
}

// resultExtractor walks a solver assignment and reconstructs the schedule
// view. It is a pure read over the catalog: binary values are thresholded at
// 0.5 since solver output is floating point.
type resultExtractor struct {
	idx    *entityIndex
	cat    *catalog
	values []float64
}

func newResultExtractor(idx *entityIndex, cat *catalog, values []float64) *resultExtractor {
	return &resultExtractor{idx: idx, cat: cat, values: values}
}

func (x *resultExtractor) active(id milp.VarID) bool {
	return x.values[id] > 0.5
}

func (x *resultExtractor) rounded(id milp.VarID) int {
	return int(math.Round(x.values[id]))
}

func (x *resultExtractor) Extract() *Schedule {
	schedule := &Schedule{
		Classes: x.classTimetables(),
		Staff:   x.staffTimetables(),
	}

	x.cat.eachClassDay(func(day classDayKey) {
		schedule.TotalGapPeriods += x.rounded(x.cat.gap[day])
		if x.active(x.cat.busyDay[day]) {
			schedule.TotalActiveDays++
		}
	})

	return schedule
}

func (x *resultExtractor) classTimetables() []ClassTimetable {
	idx := x.idx
	var timetables []ClassTimetable

	for e, env := range idx.environments {
		for _, g := range idx.groupsByEnv[e] {
			group := idx.groups[g]
			for classID, className := range group.classes {
				grid := make([][]Session, idx.days)
				for d := range grid {
					grid[d] = make([]Session, idx.periods)
				}

				for _, s := range idx.subjectsByEnv[e] {
					for d := 1; d <= idx.days; d++ {
						for p := 1; p <= idx.periods; p++ {
							key := sessionKey{env: e, group: g, class: classID, subject: s, day: d, period: p}
							if x.active(must(x.cat.Lecture(key))) {
								grid[d-1][p-1] = Session{
									Kind:    SessionLecture,
									Subject: idx.subjects[s],
									Staff:   x.linkedStaff(idx.doctors, x.cat.doctorLink, key),
								}
							}
							if x.active(must(x.cat.Section(key))) {
								grid[d-1][p-1] = Session{
									Kind:    SessionSection,
									Subject: idx.subjects[s],
									Staff:   x.linkedStaff(idx.assistants, x.cat.assistantLink, key),
								}
							}
						}
					}
				}

				timetables = append(timetables, ClassTimetable{
					Environment: env,
					Group:       group.name,
					Class:       className,
					Grid:        grid,
				})
			}
		}
	}

	return timetables
}

// linkedStaff returns the name of the staff member whose link variable is
// active for the session, or empty if none is.
func (x *resultExtractor) linkedStaff(staff []string, links map[staffSessionKey]milp.VarID, session sessionKey) string {
	for i, name := range staff {
		if x.active(links[staffSessionKey{staff: i, session: session}]) {
			return name
		}
	}
	return ""
}

func (x *resultExtractor) staffTimetables() []StaffTimetable {
	idx := x.idx
	timetables := make([]StaffTimetable, 0, len(idx.doctors)+len(idx.assistants))

	for t, name := range idx.doctors {
		grid := x.emptyStaffGrid()
		x.cat.eachSession(func(session sessionKey) {
			// A lecture engages the doctor once per group; read the
			// representative class only.
			if session.class != idx.representative(session.group) {
				return
			}
			key := staffSessionKey{staff: t, session: session}
			if x.active(must(x.cat.DoctorLink(key))) && x.active(must(x.cat.Lecture(session))) {
				grid[session.day-1][session.period-1] = &Engagement{
					Group:   idx.groups[session.group].name,
					Subject: idx.subjects[session.subject],
				}
			}
		})
		timetables = append(timetables, StaffTimetable{Name: name, Role: RoleDoctor, Grid: grid})
	}

	for a, name := range idx.assistants {
		grid := x.emptyStaffGrid()
		x.cat.eachSession(func(session sessionKey) {
			key := staffSessionKey{staff: a, session: session}
			if x.active(must(x.cat.AssistantLink(key))) && x.active(must(x.cat.Section(session))) {
				grid[session.day-1][session.period-1] = &Engagement{
					Group:   idx.groups[session.group].name,
					Class:   idx.groups[session.group].classes[session.class],
					Subject: idx.subjects[session.subject],
				}
			}
		})
		timetables = append(timetables, StaffTimetable{Name: name, Role: RoleAssistant, Grid: grid})
	}

	return timetables
}

func (x *resultExtractor) emptyStaffGrid() [][]*Engagement {
	grid := make([][]*Engagement, x.idx.days)
	for d := range grid {
		grid[d] = make([]*Engagement, x.idx.periods)
	}
	return grid
}
