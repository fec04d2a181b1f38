package milp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToLP(t *testing.T) {
	t.Run("serializes objective, constraints, bounds and domains", func(t *testing.T) {
		// Arrange
		model := NewModel()
		y := model.AddVariable(Variable{Name: "Y_0", Kind: Binary})
		x := model.AddVariable(Variable{Name: "X_0", Kind: Binary})
		load := model.AddVariable(Variable{Name: "Load_0", Kind: IntegerVar, Low: 0, High: 5})

		model.Objective.Add(load, 0.5)
		model.Objective.Add(y, -1)

		var coverage LinearExpr
		coverage.Add(y, 1)
		coverage.Add(x, 1)
		model.AddConstraint(Constraint{Category: LectureOnce, Key: "e0_g0", Expr: coverage, Sense: Equal, RHS: 1})

		var link LinearExpr
		link.Add(load, 1)
		link.Add(y, -5)
		model.AddConstraint(Constraint{Category: BusyDayLink, Key: "e0_g0_d1", Expr: link, Sense: LessEq, RHS: 0})

		// Act
		lp := model.ToLP()

		// Assert
		assert.Contains(t, lp, "Minimize\n obj: 0.5 Load_0 - Y_0")
		assert.Contains(t, lp, "LectureOnce_e0_g0_0: Y_0 + X_0 = 1")
		assert.Contains(t, lp, "BusyDayLink_e0_g0_d1_1: Load_0 - 5 Y_0 <= 0")
		assert.Contains(t, lp, "0 <= Load_0 <= 5")
		assert.Contains(t, lp, "General\n Load_0")
		assert.Contains(t, lp, "Binaries\n Y_0\n X_0")
		assert.True(t, strings.HasSuffix(lp, "End\n"))
	})

	t.Run("folds expression constants into the right-hand side", func(t *testing.T) {
		// Arrange
		model := NewModel()
		dev := model.AddVariable(Variable{Name: "Dev_0", Kind: IntegerVar, Low: 0, High: 5})

		expr := LinearExpr{Const: 2}
		expr.Add(dev, 1)
		model.AddConstraint(Constraint{Category: DeviationBound, Key: "k", Expr: expr, Sense: GreaterEq, RHS: 0})

		// Act
		lp := model.ToLP()

		// Assert
		assert.Contains(t, lp, "Dev_0 >= -2")
	})
}

func TestConstraintCategoryString(t *testing.T) {
	assert.Equal(t, "HallCapacity", HallCapacity.String())
	assert.Equal(t, "GapLink", GapLink.String())
}
