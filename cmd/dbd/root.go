package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/dbd-project/dbd/internal/config"
)

// version is overridden at release build time via -ldflags, the same
// convention the teacher's cmd/*def binaries use for their own Version.
var version = "dev"

var (
	flagDebug   bool
	flagLogFile string
	flagProfile string
	flagProject string

	settings config.Settings
)

var rootCmd = &cobra.Command{
	Use:     "dbd",
	Short:   "Compile a declarative model directory into a running database build",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		settings = config.ResolveSettings(flagDebug, flagLogFile, flagProfile, flagProject)
		configureLogging(settings)
		return nil
	},
}

func configureLogging(s config.Settings) {
	level := slog.LevelInfo
	if s.Debug {
		level = slog.LevelDebug
	}

	writer := os.Stderr
	handler := slog.Handler(tint.NewHandler(writer, &tint.Options{Level: level}))
	if s.LogFile != "" {
		if f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			handler = tint.NewHandler(io.MultiWriter(writer, f), &tint.Options{Level: level, NoColor: true})
		} else {
			slog.Warn("could not open log file, logging to stderr instead", "logfile", s.LogFile, "error", err)
		}
	}
	slog.SetDefault(slog.New(handler))
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "logfile", "", "also write logs to this file")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "explicit path to dbd.profile")
	rootCmd.PersistentFlags().StringVar(&flagProject, "project", "", "explicit path to dbd.project")

	rootCmd.AddCommand(initCmd, runCmd, validateCmd)
}
