package main

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dbd-project/dbd/internal/dbderrors"
)

//go:embed template
var templateFS embed.FS

var initCmd = &cobra.Command{
	Use:   "init [dest]",
	Short: "Generate a new project skeleton",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := "my_new_dbd_project"
		if len(args) == 1 {
			dest = args[0]
		}
		if _, err := os.Stat(dest); err == nil {
			return dbderrors.New(dbderrors.KindConfig, fmt.Sprintf("can't overwrite directory %q", dest))
		}
		if err := copyTemplate(dest); err != nil {
			return err
		}
		fmt.Printf("New project %s generated. Do cd %s; dbd run .\n", dest, dest)
		return nil
	},
}

func copyTemplate(dest string) error {
	return fs.WalkDir(templateFS, "template", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel("template", path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := templateFS.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0o644)
	})
}
