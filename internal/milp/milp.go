package milp

import (
	"fmt"
	"strings"
)

// VarID is the handle of a declared variable within a Model.
type VarID int

type VarKind int

const (
	Binary VarKind = iota
	IntegerVar
)

// Variable is a typed decision variable. Low/High bound IntegerVar only;
// Binary variables are implicitly bounded to {0, 1}.
type Variable struct {
	Name string
	Kind VarKind
	Low  float64
	High float64
}

// Term is a single coefficient*variable product of a linear expression.
type Term struct {
	Var  VarID
	Coef float64
}

// LinearExpr is an ordered sum of terms plus a constant.
type LinearExpr struct {
	Terms []Term
	Const float64
}

// Add appends coef*v to the expression and returns it for chaining.
func (e *LinearExpr) Add(v VarID, coef float64) *LinearExpr {
	e.Terms = append(e.Terms, Term{Var: v, Coef: coef})
	return e
}

type Sense int

const (
	LessEq Sense = iota
	GreaterEq
	Equal
)

func (s Sense) String() string {
	switch s {
	case LessEq:
		return "<="
	case GreaterEq:
		return ">="
	default:
		return "="
	}
}

// ConstraintCategory tags each constraint with the rule it enforces, so
// diagnostics stay structured instead of being parsed out of names.
type ConstraintCategory int

const (
	HallCapacity ConstraintCategory = iota
	LabCapacity
	LectureOnce
	SectionOnce
	NoDoubleBooking
	BusyPeriodLink
	GroupCohesion
	StaffLink
	StaffCohesion
	StaffSlotClash
	StaffPeriodCap
	StaffSubjectCap
	SubjectIndicatorLink
	LoadLink
	BusyDayLink
	DeviationBound
	FirstPeriodBound
	LastPeriodBound
	GapLink
)

var categoryNames = map[ConstraintCategory]string{
	HallCapacity:         "HallCapacity",
	LabCapacity:          "LabCapacity",
	LectureOnce:          "LectureOnce",
	SectionOnce:          "SectionOnce",
	NoDoubleBooking:      "NoDoubleBooking",
	BusyPeriodLink:       "BusyPeriodLink",
	GroupCohesion:        "GroupCohesion",
	StaffLink:            "StaffLink",
	StaffCohesion:        "StaffCohesion",
	StaffSlotClash:       "StaffSlotClash",
	StaffPeriodCap:       "StaffPeriodCap",
	StaffSubjectCap:      "StaffSubjectCap",
	SubjectIndicatorLink: "SubjectIndicatorLink",
	LoadLink:             "LoadLink",
	BusyDayLink:          "BusyDayLink",
	DeviationBound:       "DeviationBound",
	FirstPeriodBound:     "FirstPeriodBound",
	LastPeriodBound:      "LastPeriodBound",
	GapLink:              "GapLink",
}

func (c ConstraintCategory) String() string {
	return categoryNames[c]
}

// Constraint relates a linear expression to a right-hand side. Key carries
// the originating key tuple of the rule (e.g. "d2_p3") for diagnostics.
type Constraint struct {
	Category ConstraintCategory
	Key      string
	Expr     LinearExpr
	Sense    Sense
	RHS      float64
}

// Model is a complete MILP instance: variables, constraints and a single
// linear objective, always minimized.
type Model struct {
	Variables   []Variable
	Constraints []Constraint
	Objective   LinearExpr
}

func NewModel() *Model {
	return &Model{}
}

// AddVariable declares a variable and returns its handle.
func (m *Model) AddVariable(v Variable) VarID {
	m.Variables = append(m.Variables, v)
	return VarID(len(m.Variables) - 1)
}

// AddConstraint appends a constraint to the model.
func (m *Model) AddConstraint(c Constraint) {
	m.Constraints = append(m.Constraints, c)
}

func writeExpr(builder *strings.Builder, m *Model, expr LinearExpr) {
	first := true
	for _, term := range expr.Terms {
		if term.Coef == 0 {
			continue
		}
		coef := term.Coef
		if first {
			if coef < 0 {
				builder.WriteString("- ")
				coef = -coef
			}
			first = false
		} else if coef < 0 {
			builder.WriteString(" - ")
			coef = -coef
		} else {
			builder.WriteString(" + ")
		}
		if coef == 1 {
			builder.WriteString(m.Variables[term.Var].Name)
		} else {
			fmt.Fprintf(builder, "%g %s", coef, m.Variables[term.Var].Name)
		}
	}
	if first && len(expr.Terms) > 0 { // every coefficient was zero
		builder.WriteString("0 " + m.Variables[expr.Terms[0].Var].Name)
	}
}

// ToLP serializes the model into CPLEX LP file format, the lingua franca of
// the external MILP binaries. Expression constants are folded into the
// right-hand side since the LP format keeps constants there.
func (m *Model) ToLP() string {
	var builder strings.Builder

	builder.WriteString("Minimize\n obj: ")
	writeExpr(&builder, m, m.Objective)
	builder.WriteString("\nSubject To\n")

	for i, constraint := range m.Constraints {
		fmt.Fprintf(&builder, " %s_%s_%d: ", constraint.Category, constraint.Key, i)
		writeExpr(&builder, m, constraint.Expr)
		fmt.Fprintf(&builder, " %s %g\n", constraint.Sense, constraint.RHS-constraint.Expr.Const)
	}

	var generals, binaries []string
	builder.WriteString("Bounds\n")
	for _, variable := range m.Variables {
		switch variable.Kind {
		case Binary:
			binaries = append(binaries, variable.Name)
		case IntegerVar:
			fmt.Fprintf(&builder, " %g <= %s <= %g\n", variable.Low, variable.Name, variable.High)
			generals = append(generals, variable.Name)
		}
	}

	if len(generals) > 0 {
		builder.WriteString("General\n")
		for _, name := range generals {
			builder.WriteString(" " + name + "\n")
		}
	}
	if len(binaries) > 0 {
		builder.WriteString("Binaries\n")
		for _, name := range binaries {
			builder.WriteString(" " + name + "\n")
		}
	}
	builder.WriteString("End\n")

	return builder.String()
}
