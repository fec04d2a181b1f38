package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"college-scheduler/internal/config"
	"college-scheduler/internal/milp"
)

var (
	inputPath string
	cfgPath   string
)

var rootCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Weekly college timetable generator",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "inputs/scheduling_inputs.json", "scheduling inputs file")
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "run configuration file (JSON or YAML)")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadRun() (config.Run, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Run{}, fmt.Errorf("load config: %w", err)
	}
	return *cfg, nil
}

func newSolver(name string) milp.Solver {
	switch name {
	case "highs":
		return milp.NewHiGHSSolver()
	case "glpk":
		return milp.NewGLPKSolver()
	default:
		return milp.NewCBCSolver()
	}
}
