package model

import (
	"errors"
	"fmt"
	"time"

	"college-scheduler/internal/config"
	"college-scheduler/internal/logger"
	"college-scheduler/internal/milp"
)

var (
	// ErrInfeasible means no assignment satisfies the hard constraints. No
	// automatic relaxation is attempted; the caller decides what to loosen.
	ErrInfeasible = errors.New("no timetable satisfies the hard constraints")
	// ErrSolver means the solving environment failed; distinct from
	// ErrInfeasible because the remediation differs.
	ErrSolver = errors.New("solver failed")
)

// Scheduler builds a weekly timetable from a scheduling-inputs document and
// verifies a decoded schedule against it.
type Scheduler interface {
	Build(input ModelInput) (*Schedule, error)
	Verify(schedule *Schedule, input ModelInput) bool
}

// NewScheduler returns a Scheduler that formulates the timetable as a MILP
// and delegates solving to the given backend.
func NewScheduler(solver milp.Solver, run config.Run, log logger.Logger) Scheduler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &milpScheduler{solver: solver, run: run, log: log}
}

type milpScheduler struct {
	solver milp.Solver
	run    config.Run
	log    logger.Logger
}

func (s *milpScheduler) Build(input ModelInput) (*Schedule, error) {
	idx, err := newEntityIndex(input)
	if err != nil {
		return nil, err
	}

	m := milp.NewModel()
	cat := newCatalog(idx, m)
	newConstraintGenerator(idx, cat, m).EmitAll()
	m.Objective = composeObjective(idx, cat, s.run.Weights)

	s.log.Debugf("model built: %d variables, %d constraints", len(m.Variables), len(m.Constraints))

	solution, err := s.solver.Solve(m, time.Duration(s.run.TimeLimitSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolver, err)
	}

	switch solution.Status {
	case milp.StatusInfeasible:
		return nil, ErrInfeasible
	case milp.StatusUnbounded:
		return nil, fmt.Errorf("%w: model reported unbounded", ErrSolver)
	case milp.StatusError:
		return nil, fmt.Errorf("%w: no usable outcome", ErrSolver)
	}

	schedule := newResultExtractor(idx, cat, solution.Values).Extract()
	schedule.Status = solution.Status
	schedule.TimeLimited = solution.Status == milp.StatusFeasible
	schedule.Objective = solution.Objective

	s.log.Infof("solve finished: %v, objective %.2f, %d gap periods, %d active days",
		solution.Status, solution.Objective, schedule.TotalGapPeriods, schedule.TotalActiveDays)

	return schedule, nil
}

// Verify re-checks the hard rules against the decoded grids: exactly-once
// coverage, capacities, group cohesion, staff assignment and caps, and the
// gap accounting. Counter equality is demanded only for proven-optimal
// solutions; a time-limited incumbent may carry slack in the extremum
// variables.
func (s *milpScheduler) Verify(schedule *Schedule, input ModelInput) bool {
	if schedule == nil {
		return false
	}
	idx, err := newEntityIndex(input)
	if err != nil {
		return false
	}

	classes := make(map[[2]string]*ClassTimetable) // (group, class) -> grid
	for i := range schedule.Classes {
		timetable := &schedule.Classes[i]
		classes[[2]string{timetable.Group, timetable.Class}] = timetable
	}

	type slot struct{ day, period int }
	hallUse := make(map[slot]int)
	labUse := make(map[slot]int)
	staffUse := make(map[string]map[slot]bool)
	staffPeriods := make(map[string]int)
	staffSubjects := make(map[string]map[string]bool)

	engage := func(staff string, at slot, subject string) bool {
		if staffUse[staff] == nil {
			staffUse[staff] = make(map[slot]bool)
			staffSubjects[staff] = make(map[string]bool)
		}
		if staffUse[staff][at] {
			return false // double-booked
		}
		staffUse[staff][at] = true
		staffPeriods[staff]++
		staffSubjects[staff][subject] = true
		return true
	}

	derivedGaps, derivedActiveDays := 0, 0

	for e, env := range idx.environments {
		for _, g := range idx.groupsByEnv[e] {
			group := idx.groups[g]

			// Lecture slots of the representative class, for cohesion and
			// hall/doctor accounting (one engagement per group).
			repLectures := make(map[string]slot)

			for classID, className := range group.classes {
				timetable, found := classes[[2]string{group.name, className}]
				if !found || timetable.Environment != env {
					return false
				}

				lectures := make(map[string]slot)
				sections := make(map[string]int)

				for d := 1; d <= idx.days; d++ {
					load, first, last := 0, 0, 0
					for p := 1; p <= idx.periods; p++ {
						session := timetable.Grid[d-1][p-1]
						if session.Kind == SessionIdle {
							continue
						}
						if session.Staff == "" {
							return false // staff linking is a hard requirement
						}
						load++
						if first == 0 {
							first = p
						}
						last = p

						at := slot{day: d, period: p}
						switch session.Kind {
						case SessionLecture:
							if _, duplicate := lectures[session.Subject]; duplicate {
								return false
							}
							lectures[session.Subject] = at
							if classID == idx.representative(g) {
								repLectures[session.Subject] = at
								hallUse[at]++
								if !engage(session.Staff, at, session.Subject) {
									return false
								}
							}
						case SessionSection:
							sections[session.Subject]++
							labUse[at]++
							if !engage(session.Staff, at, session.Subject) {
								return false
							}
						}
					}
					if load > 0 {
						derivedActiveDays++
						derivedGaps += last - first + 1 - load
					}
				}

				// Exactly-once coverage over the environment's subjects.
				for _, sub := range idx.subjectsByEnv[e] {
					name := idx.subjects[sub]
					if _, scheduled := lectures[name]; !scheduled || sections[name] != 1 {
						return false
					}
				}
				if len(lectures) != len(idx.subjectsByEnv[e]) {
					return false
				}

				// Group cohesion against the representative class.
				for subject, at := range lectures {
					if repLectures[subject] != at {
						return false
					}
				}
			}
		}
	}

	for _, use := range hallUse {
		if use > idx.halls {
			return false
		}
	}
	for _, use := range labUse {
		if use > idx.labs {
			return false
		}
	}

	for _, timetable := range schedule.Staff {
		periodCap, subjectCap := idx.assistantPeriodCap, idx.assistantSubjectCap
		if timetable.Role == RoleDoctor {
			periodCap, subjectCap = idx.doctorPeriodCap, idx.doctorSubjectCap
		}
		if staffPeriods[timetable.Name] > periodCap || len(staffSubjects[timetable.Name]) > subjectCap {
			return false
		}
	}

	if schedule.Status == milp.StatusOptimal {
		return schedule.TotalGapPeriods == derivedGaps && schedule.TotalActiveDays == derivedActiveDays
	}
	return schedule.TotalGapPeriods >= derivedGaps && schedule.TotalActiveDays >= derivedActiveDays
}
