package milp

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

const cbcPath = "cbc"

type cbcSolver struct{}

// NewCBCSolver returns a Solver backed by the COIN-OR cbc binary.
func NewCBCSolver() Solver {
	return &cbcSolver{}
}

func (solver *cbcSolver) Solve(model *Model, timeLimit time.Duration) (Solution, error) {
	dir, err := os.MkdirTemp("", "cbc-solve")
	if err != nil {
		return Solution{Status: StatusError}, err
	}
	defer os.RemoveAll(dir)

	lpFile := filepath.Join(dir, "model.lp")
	solutionFile := filepath.Join(dir, "model.sol")
	if err := os.WriteFile(lpFile, []byte(model.ToLP()), 0o644); err != nil {
		return Solution{Status: StatusError}, err
	}

	cmd := exec.Command(cbcPath, lpFile, "sec", strconv.Itoa(limitSeconds(timeLimit)), "solve", "solu", solutionFile)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return Solution{Status: StatusError}, fmt.Errorf("an error occurred during cbc execution: %v : %v", err.Error(), stderr.String())
	}

	content, err := os.ReadFile(solutionFile)
	if err != nil {
		return Solution{Status: StatusError}, fmt.Errorf("cbc produced no solution file: %v", err)
	}

	return parseCBCSolution(string(content), model)
}

// parseCBCSolution reads a cbc "solu" file: a status header line followed by
// one "index name value reduced-cost" row per column.
func parseCBCSolution(output string, model *Model) (Solution, error) {
	lines := strings.Split(output, "\n")
	header, ok := lo.Find(lines, func(line string) bool { return strings.TrimSpace(line) != "" })
	if !ok {
		return Solution{Status: StatusError}, fmt.Errorf("empty cbc solution file")
	}

	var status Status
	switch {
	case strings.HasPrefix(header, "Optimal"):
		status = StatusOptimal
	case strings.HasPrefix(header, "Stopped on time"):
		status = StatusFeasible
	case strings.HasPrefix(header, "Infeasible"), strings.HasPrefix(header, "Integer infeasible"):
		return Solution{Status: StatusInfeasible}, nil
	case strings.HasPrefix(header, "Unbounded"):
		return Solution{Status: StatusUnbounded}, nil
	default:
		return Solution{Status: StatusError}, fmt.Errorf("unrecognized cbc status: %v", header)
	}

	solution := Solution{Status: status, Values: make([]float64, len(model.Variables))}
	if _, after, found := strings.Cut(header, "objective value"); found {
		solution.Objective, _ = strconv.ParseFloat(strings.TrimSpace(after), 64)
	}

	ids := variableIDsByName(model)
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) > 0 && fields[0] == "**" { // cbc flags out-of-bound columns with a leading marker
			fields = fields[1:]
		}
		if len(fields) < 3 {
			continue
		}
		id, declared := ids[fields[1]]
		if !declared {
			continue
		}
		value, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return Solution{Status: StatusError}, fmt.Errorf("invalid value in cbc output: %v", err)
		}
		solution.Values[id] = value
	}

	return solution, nil
}

func variableIDsByName(model *Model) map[string]VarID {
	ids := make(map[string]VarID, len(model.Variables))
	for i, variable := range model.Variables {
		ids[variable.Name] = VarID(i)
	}
	return ids
}

func limitSeconds(timeLimit time.Duration) int {
	seconds := int(math.Ceil(timeLimit.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
