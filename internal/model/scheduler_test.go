package model

import (
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"college-scheduler/internal/config"
	"college-scheduler/internal/milp"
)

// fakeSolver returns a canned outcome and records the solve call.
type fakeSolver struct {
	status    milp.Status
	objective float64
	err       error

	gotModel *milp.Model
	gotLimit time.Duration
}

func (f *fakeSolver) Solve(model *milp.Model, timeLimit time.Duration) (milp.Solution, error) {
	f.gotModel = model
	f.gotLimit = timeLimit
	if f.err != nil {
		return milp.Solution{Status: milp.StatusError}, f.err
	}
	return milp.Solution{
		Status:    f.status,
		Objective: f.objective,
		Values:    make([]float64, len(model.Variables)),
	}, nil
}

func TestSchedulerBuild(t *testing.T) {
	run := config.Default()

	t.Run("rejects invalid input before solving", func(t *testing.T) {
		// Arrange
		solver := &fakeSolver{}
		scheduler := NewScheduler(solver, run, nil)
		input := singleClassInput()
		input.Halls = 0

		// Act
		_, err := scheduler.Build(input)

		// Assert
		require.Error(t, err)
		var validation *ValidationError
		assert.ErrorAs(t, err, &validation)
		assert.Nil(t, solver.gotModel, "solver must not run on invalid input")
	})

	t.Run("wraps solver failures in ErrSolver", func(t *testing.T) {
		solver := &fakeSolver{err: errors.New("binary not found")}
		scheduler := NewScheduler(solver, run, nil)

		_, err := scheduler.Build(singleClassInput())

		assert.ErrorIs(t, err, ErrSolver)
		assert.NotErrorIs(t, err, ErrInfeasible)
	})

	t.Run("maps infeasible outcomes to ErrInfeasible", func(t *testing.T) {
		scheduler := NewScheduler(&fakeSolver{status: milp.StatusInfeasible}, run, nil)

		_, err := scheduler.Build(singleClassInput())

		assert.ErrorIs(t, err, ErrInfeasible)
	})

	t.Run("treats unusable outcomes as solver failures", func(t *testing.T) {
		for _, status := range []milp.Status{milp.StatusUnbounded, milp.StatusError} {
			scheduler := NewScheduler(&fakeSolver{status: status}, run, nil)

			_, err := scheduler.Build(singleClassInput())

			assert.ErrorIs(t, err, ErrSolver, status.String())
		}
	})

	t.Run("marks time-limited incumbents", func(t *testing.T) {
		scheduler := NewScheduler(&fakeSolver{status: milp.StatusFeasible, objective: 12.5}, run, nil)

		schedule, err := scheduler.Build(singleClassInput())

		require.NoError(t, err)
		assert.True(t, schedule.TimeLimited)
		assert.Equal(t, milp.StatusFeasible, schedule.Status)
		assert.Equal(t, 12.5, schedule.Objective)
	})

	t.Run("passes the configured time limit through", func(t *testing.T) {
		solver := &fakeSolver{status: milp.StatusOptimal}
		custom := run
		custom.TimeLimitSeconds = 7
		scheduler := NewScheduler(solver, custom, nil)

		_, err := scheduler.Build(singleClassInput())

		require.NoError(t, err)
		assert.Equal(t, 7*time.Second, solver.gotLimit)
		assert.NotEmpty(t, solver.gotModel.Constraints)
		assert.NotEmpty(t, solver.gotModel.Objective.Terms)
	})
}

func TestSchedulerVerify(t *testing.T) {
	run := config.Default()
	scheduler := NewScheduler(&fakeSolver{}, run, nil)

	verified := func(t *testing.T) (*Schedule, ModelInput) {
		t.Helper()
		idx, cat, values := assignedFixture(t)
		schedule := newResultExtractor(idx, cat, values).Extract()
		return schedule, singleClassInput()
	}

	t.Run("accepts a consistent schedule", func(t *testing.T) {
		schedule, input := verified(t)
		assert.True(t, scheduler.Verify(schedule, input))
	})

	t.Run("rejects nil schedules", func(t *testing.T) {
		assert.False(t, scheduler.Verify(nil, singleClassInput()))
	})

	t.Run("rejects unstaffed sessions", func(t *testing.T) {
		schedule, input := verified(t)
		schedule.Classes[0].Grid[0][0].Staff = ""
		assert.False(t, scheduler.Verify(schedule, input))
	})

	t.Run("rejects missing coverage", func(t *testing.T) {
		schedule, input := verified(t)
		schedule.Classes[0].Grid[0][1] = Session{} // drop the Math section
		assert.False(t, scheduler.Verify(schedule, input))
	})

	t.Run("rejects double-booked staff", func(t *testing.T) {
		// Two classes of one group, one subject, one day: both sections land
		// in the same slot with the only assistant, which is a clash even
		// though two labs are free.
		input := twoClassInput()
		lecture := Session{Kind: SessionLecture, Subject: "Math", Staff: "Dr.Omar"}
		section := Session{Kind: SessionSection, Subject: "Math", Staff: "eng.Ali"}
		schedule := &Schedule{
			Classes: []ClassTimetable{
				{Environment: "year1", Group: "G1", Class: "C1", Grid: [][]Session{{lecture, section}}},
				{Environment: "year1", Group: "G1", Class: "C2", Grid: [][]Session{{lecture, section}}},
			},
			TotalActiveDays: 2,
		}

		assert.False(t, scheduler.Verify(schedule, input))
	})

	t.Run("rejects schedules exceeding the period cap", func(t *testing.T) {
		schedule, input := verified(t)
		input.AssistantCaps = []int{1, 2}
		assert.False(t, scheduler.Verify(schedule, input))
	})

	t.Run("tolerates counter slack for time-limited incumbents", func(t *testing.T) {
		schedule, input := verified(t)
		schedule.TotalGapPeriods++ // extremum slack in a non-proven incumbent

		assert.False(t, scheduler.Verify(schedule, input))

		schedule.Status = milp.StatusFeasible
		assert.True(t, scheduler.Verify(schedule, input))
	})
}

func TestSchedulerEndToEnd(t *testing.T) {
	if _, err := exec.LookPath("cbc"); err != nil {
		t.Skip("cbc not installed")
	}

	run := config.Default()
	scheduler := NewScheduler(milp.NewCBCSolver(), run, nil)

	t.Run("schedules the dense single-class week", func(t *testing.T) {
		// Arrange: 2 subjects x (lecture + section) fill a 2x2 grid exactly.
		input := singleClassInput()

		// Act
		schedule, err := scheduler.Build(input)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, milp.StatusOptimal, schedule.Status)
		assert.True(t, scheduler.Verify(schedule, input))

		require.Len(t, schedule.Classes, 1)
		for d := 0; d < input.Days; d++ {
			for p := 0; p < input.Periods; p++ {
				assert.NotEqual(t, SessionIdle, schedule.Classes[0].Grid[d][p].Kind)
			}
		}
		assert.Equal(t, 2, schedule.TotalActiveDays)
		assert.Equal(t, 0, schedule.TotalGapPeriods)
	})

	t.Run("reports infeasibility when the grid cannot hold the sessions", func(t *testing.T) {
		// 4 sessions cannot fit a one-day, two-period grid.
		input := singleClassInput()
		input.Days = 1
		input.AssistantTimePrefs = fullTimePrefs(input.Assistants, 1, 2, 1)
		input.DoctorTimePrefs = fullTimePrefs(input.Doctors, 1, 2, 1)

		_, err := scheduler.Build(input)

		assert.ErrorIs(t, err, ErrInfeasible)
	})

	t.Run("reports infeasibility when halls are oversubscribed", func(t *testing.T) {
		// Three groups need three lectures, but one hall over two periods
		// admits at most two; everything else (labs, staff) is abundant.
		assistants := []string{"eng.Ali", "eng.Sara", "eng.Nour"}
		doctors := []string{"Dr.Omar", "Dr.Mona", "Dr.Tarek"}
		subjects := []string{"Math"}
		input := ModelInput{
			Halls:        1,
			Labs:         3,
			Days:         1,
			Periods:      2,
			Environments: []string{"year1"},
			Groups:       map[string][]string{"year1": {"G1", "G2", "G3"}},
			Classes:      map[string][]string{"G1": {"C1"}, "G2": {"C1"}, "G3": {"C1"}},
			Subjects:     map[string][]string{"year1": subjects},

			Assistants:    assistants,
			Doctors:       doctors,
			AssistantCaps: []int{4, 2},
			DoctorCaps:    []int{4, 2},

			AssistantTimePrefs:    fullTimePrefs(assistants, 1, 2, 1),
			DoctorTimePrefs:       fullTimePrefs(doctors, 1, 2, 1),
			AssistantSubjectPrefs: fullSubjectPrefs(assistants, subjects, 1),
			DoctorSubjectPrefs:    fullSubjectPrefs(doctors, subjects, 1),
		}

		_, err := scheduler.Build(input)

		assert.ErrorIs(t, err, ErrInfeasible)
	})

	t.Run("reports infeasibility when a cap forbids mandatory staffing", func(t *testing.T) {
		// Lectures must be staffed, but the only doctor may teach zero
		// periods.
		input := singleClassInput()
		input.DoctorCaps = []int{0, 2}

		_, err := scheduler.Build(input)

		assert.ErrorIs(t, err, ErrInfeasible)
	})
}
