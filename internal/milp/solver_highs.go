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
)

const highsPath = "highs"

type highsSolver struct{}

// NewHiGHSSolver returns a Solver backed by the HiGHS binary.
func NewHiGHSSolver() Solver {
	return &highsSolver{}
}

func (solver *highsSolver) Solve(model *Model, timeLimit time.Duration) (Solution, error) {
	dir, err := os.MkdirTemp("", "highs-solve")
	if err != nil {
		return Solution{Status: StatusError}, err
	}
	defer os.RemoveAll(dir)

	lpFile := filepath.Join(dir, "model.lp")
	solutionFile := filepath.Join(dir, "model.sol")
	if err := os.WriteFile(lpFile, []byte(model.ToLP()), 0o644); err != nil {
		return Solution{Status: StatusError}, err
	}

	cmd := exec.Command(highsPath, lpFile, "--time_limit", strconv.Itoa(limitSeconds(timeLimit)), "--solution_file", solutionFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Solution{Status: StatusError}, fmt.Errorf("an error occurred during highs execution: %v : %v", err.Error(), stderr.String())
	}

	content, err := os.ReadFile(solutionFile)
	if err != nil {
		return Solution{Status: StatusError}, fmt.Errorf("highs produced no solution file: %v", err)
	}

	return parseHiGHSSolution(string(content), model)
}

// parseHiGHSSolution reads a HiGHS raw solution file: a "Model status"
// section, then "# Columns n" followed by n "name value" rows.
func parseHiGHSSolution(output string, model *Model) (Solution, error) {
	lines := strings.Split(output, "\n")

	var status Status
	statusLine := sectionValue(lines, "Model status")
	switch {
	case statusLine == "Optimal":
		status = StatusOptimal
	case statusLine == "Infeasible":
		return Solution{Status: StatusInfeasible}, nil
	case strings.Contains(statusLine, "nbounded"):
		return Solution{Status: StatusUnbounded}, nil
	case strings.HasPrefix(statusLine, "Time limit"):
		status = StatusFeasible
	default:
		return Solution{Status: StatusError}, fmt.Errorf("unrecognized highs status: %v", statusLine)
	}

	if sectionValue(lines, "# Primal solution values") == "None" {
		return Solution{Status: StatusError}, fmt.Errorf("highs reported %v without a primal solution", statusLine)
	}

	solution := Solution{Status: status, Values: make([]float64, len(model.Variables))}
	ids := variableIDsByName(model)

	haveColumns := false
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "Objective") {
			fields := strings.Fields(line)
			solution.Objective, _ = strconv.ParseFloat(fields[len(fields)-1], 64)
			continue
		}
		if !strings.HasPrefix(line, "# Columns") {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "# Columns")))
		if err != nil {
			return Solution{Status: StatusError}, fmt.Errorf("invalid column count in highs output: %v", err)
		}
		for j := i + 1; j <= i+count && j < len(lines); j++ {
			fields := strings.Fields(lines[j])
			if len(fields) < 2 {
				continue
			}
			if id, declared := ids[fields[0]]; declared {
				value, err := strconv.ParseFloat(fields[1], 64)
				if err != nil {
					return Solution{Status: StatusError}, fmt.Errorf("invalid value in highs output: %v", err)
				}
				solution.Values[id] = value
			}
		}
		haveColumns = true
		break
	}

	if !haveColumns { // time limit hit before any incumbent was found
		return Solution{Status: StatusError}, fmt.Errorf("highs reported %v without a primal solution", statusLine)
	}

	return solution, nil
}

// sectionValue returns the first non-empty line following the given header.
func sectionValue(lines []string, header string) string {
	for i, line := range lines {
		if strings.TrimSpace(line) != header {
			continue
		}
		for j := i + 1; j < len(lines); j++ {
			if value := strings.TrimSpace(lines[j]); value != "" {
				return value
			}
		}
	}
	return ""
}
