package milp

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

const glpsolPath = "glpsol"

type glpkSolver struct{}

// NewGLPKSolver returns a Solver backed by the GLPK glpsol binary.
func NewGLPKSolver() Solver {
	return &glpkSolver{}
}

func (solver *glpkSolver) Solve(model *Model, timeLimit time.Duration) (Solution, error) {
	dir, err := os.MkdirTemp("", "glpk-solve")
	if err != nil {
		return Solution{Status: StatusError}, err
	}
	defer os.RemoveAll(dir)

	lpFile := filepath.Join(dir, "model.lp")
	solutionFile := filepath.Join(dir, "model.sol")
	if err := os.WriteFile(lpFile, []byte(model.ToLP()), 0o644); err != nil {
		return Solution{Status: StatusError}, err
	}

	cmd := exec.Command(glpsolPath, "--lp", lpFile, "--tmlim", strconv.Itoa(limitSeconds(timeLimit)), "-o", solutionFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Solution{Status: StatusError}, fmt.Errorf("an error occurred during glpsol execution: %v : %v", err.Error(), stderr.String())
	}

	content, err := os.ReadFile(solutionFile)
	if err != nil {
		return Solution{Status: StatusError}, fmt.Errorf("glpsol produced no solution file: %v", err)
	}

	return parseGLPKSolution(string(content), model)
}

// parseGLPKSolution reads a glpsol plain-text report: a "Status:" line and a
// column table. Long column names wrap onto a continuation line, so the
// activity value is taken from the first numeric field after the name.
func parseGLPKSolution(output string, model *Model) (Solution, error) {
	lines := strings.Split(output, "\n")

	statusLine, ok := lo.Find(lines, func(line string) bool { return strings.HasPrefix(line, "Status:") })
	if !ok {
		return Solution{Status: StatusError}, fmt.Errorf("no status in glpsol output")
	}

	var status Status
	switch {
	case strings.Contains(statusLine, "NON-OPTIMAL"):
		status = StatusFeasible
	case strings.Contains(statusLine, "OPTIMAL"):
		status = StatusOptimal
	case strings.Contains(statusLine, "INTEGER EMPTY"), strings.Contains(statusLine, "INFEASIBLE"):
		return Solution{Status: StatusInfeasible}, nil
	case strings.Contains(statusLine, "UNBOUNDED"):
		return Solution{Status: StatusUnbounded}, nil
	default:
		return Solution{Status: StatusError}, fmt.Errorf("unrecognized glpsol status: %v", statusLine)
	}

	solution := Solution{Status: status, Values: make([]float64, len(model.Variables))}
	if objectiveLine, found := lo.Find(lines, func(line string) bool { return strings.HasPrefix(line, "Objective:") }); found {
		fields := strings.Fields(objectiveLine)
		for i, field := range fields {
			if field == "=" && i+1 < len(fields) {
				solution.Objective, _ = strconv.ParseFloat(fields[i+1], 64)
				break
			}
		}
	}

	ids := variableIDsByName(model)
	start := -1
	for i, line := range lines {
		if strings.Contains(line, "Column name") {
			start = i + 2 // skip the dashes row under the header
			break
		}
	}
	if start < 0 {
		return Solution{Status: StatusError}, fmt.Errorf("no column table in glpsol output")
	}

	for i := start; i < len(lines); i++ {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			break
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		name := fields[1]
		rest := fields[2:]
		if len(rest) == 0 && i+1 < len(lines) { // wrapped row: activity is on the next line
			i++
			rest = strings.Fields(lines[i])
		}
		id, declared := ids[name]
		if !declared {
			continue
		}
		for _, field := range rest {
			if value, err := strconv.ParseFloat(field, 64); err == nil {
				solution.Values[id] = value
				break
			}
		}
	}

	return solution, nil
}
