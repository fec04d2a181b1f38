package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"college-scheduler/internal/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a scheduling-inputs document without solving",
	RunE:  validateInputs,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateInputs(cmd *cobra.Command, args []string) error {
	input, err := model.InputFromJSON(inputPath)
	if err != nil {
		return fmt.Errorf("parse input: %w", err)
	}
	if err := model.Validate(input); err != nil {
		return err
	}
	fmt.Println("configuration is valid")
	return nil
}
