package main

import (
	"context"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [project_dir]",
	Short: "Drop, create and load every task in the project's model",
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

		return exec.Execute(context.Background())
	},
}
