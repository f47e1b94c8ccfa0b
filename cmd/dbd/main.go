// Command dbd compiles a model directory of declarative artifacts into
// a dependency-ordered execution plan and materializes it against a
// target relational database.
//
// Grounded on the teacher's cmd/{mysqldef,psqldef}'s thin main.go
// (delegate everything to a package-level Execute, exit nonzero on
// error) and jchantrell-exiledb/cmd/exiledb's cobra+slog+tint wiring
// for the ambient CLI stack this spec's tool needs beyond a single
// dialect-specific diff command.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
