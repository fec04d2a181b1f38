package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"college-scheduler/internal/config"
	"college-scheduler/internal/milp"
)

func coefOf(expr milp.LinearExpr, id milp.VarID) float64 {
	total := 0.0
	for _, term := range expr.Terms {
		if term.Var == id {
			total += term.Coef
		}
	}
	return total
}

func TestComposeObjective(t *testing.T) {
	weights := config.Weights{Deviation: 0.5, ActiveDay: 2, Gap: 2}

	t.Run("weights the per-day soft costs", func(t *testing.T) {
		// Arrange
		idx, err := newEntityIndex(twoClassInput())
		require.NoError(t, err)
		cat := newCatalog(idx, milp.NewModel())

		// Act
		objective := composeObjective(idx, cat, weights)

		// Assert
		day := classDayKey{env: 0, group: 0, class: 0, day: 1}
		assert.Equal(t, 0.5, coefOf(objective, cat.deviation[day]))
		assert.Equal(t, 2.0, coefOf(objective, cat.busyDay[day]))
		assert.Equal(t, 2.0, coefOf(objective, cat.gap[day]))
	})

	t.Run("omits terms for zero weights", func(t *testing.T) {
		idx, err := newEntityIndex(twoClassInput())
		require.NoError(t, err)
		cat := newCatalog(idx, milp.NewModel())

		objective := composeObjective(idx, cat, config.Weights{})

		// Only the time-preference rewards remain: the doctor is rewarded on
		// the representative class (2 slots), the assistant on every class
		// session (4); subject preferences are all zero in this fixture.
		assert.Len(t, objective.Terms, 6)
		for _, term := range objective.Terms {
			assert.Equal(t, -1.0, term.Coef)
		}
	})

	t.Run("rewards doctor links on the representative class only", func(t *testing.T) {
		idx, err := newEntityIndex(twoClassInput())
		require.NoError(t, err)
		cat := newCatalog(idx, milp.NewModel())

		objective := composeObjective(idx, cat, weights)

		repSession := sessionKey{env: 0, group: 0, class: 0, subject: 0, day: 1, period: 1}
		otherSession := repSession
		otherSession.class = 1

		repLink, _ := cat.DoctorLink(staffSessionKey{staff: 0, session: repSession})
		otherLink, _ := cat.DoctorLink(staffSessionKey{staff: 0, session: otherSession})
		assert.Equal(t, -1.0, coefOf(objective, repLink))
		assert.Equal(t, 0.0, coefOf(objective, otherLink))

		// Sections are per-class events, so both classes carry a reward.
		for class := 0; class < 2; class++ {
			session := repSession
			session.class = class
			link, _ := cat.AssistantLink(staffSessionKey{staff: 0, session: session})
			assert.Equal(t, -1.0, coefOf(objective, link))
		}
	})

	t.Run("rewards preferred subjects", func(t *testing.T) {
		// singleClassInput marks every subject preferred for both roles.
		idx, err := newEntityIndex(singleClassInput())
		require.NoError(t, err)
		cat := newCatalog(idx, milp.NewModel())

		objective := composeObjective(idx, cat, weights)

		for s := range idx.subjects {
			assert.Equal(t, -1.0, coefOf(objective, cat.doctorSubject[staffSubjectKey{staff: 0, subject: s}]))
			assert.Equal(t, -1.0, coefOf(objective, cat.assistantSubject[staffSubjectKey{staff: 0, subject: s}]))
		}
	})

	t.Run("skips rewards for unavailable slots", func(t *testing.T) {
		input := singleClassInput()
		input.DoctorTimePrefs["Dr.Omar"]["1"]["1"] = 0
		idx, err := newEntityIndex(input)
		require.NoError(t, err)
		cat := newCatalog(idx, milp.NewModel())

		objective := composeObjective(idx, cat, weights)

		blocked := sessionKey{env: 0, group: 0, class: 0, subject: 0, day: 1, period: 1}
		open := blocked
		open.period = 2
		blockedLink, _ := cat.DoctorLink(staffSessionKey{staff: 0, session: blocked})
		openLink, _ := cat.DoctorLink(staffSessionKey{staff: 0, session: open})
		assert.Equal(t, 0.0, coefOf(objective, blockedLink))
		assert.Equal(t, -1.0, coefOf(objective, openLink))
	})
}
