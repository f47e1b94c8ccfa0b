package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbd-project/dbd/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [project_dir]",
	Short: "Check the project's model without touching the target database",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := "."
		if len(args) == 1 {
			dest = args[0]
		}

		exec, db, err := buildExecutor(dest)
		if err != nil {
			return err
		}
		defer db.Close()

		results, err := exec.Validate()
		if err != nil {
			return err
		}
		printValidationResult(results)
		return nil
	},
}

// printValidationResult renders the indented error tree spec.md §6
// describes, without failing the process - `validate` always exits 0
// for validation (as opposed to config/IO) failures.
func printValidationResult(results []validator.TaskErrors) {
	if len(results) == 0 {
		fmt.Println("No errors found. Model is valid.")
		return
	}
	fmt.Println("Model isn't valid. Please fix the following errors:")
	for _, r := range results {
		fmt.Printf("  %s\n", r.TaskID)
		for _, e := range r.Errors {
			fmt.Printf("    %s\n", e.String())
		}
	}
}
