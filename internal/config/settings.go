package config

import "github.com/spf13/viper"

// Settings are the global, flag-or-env-driven knobs cmd/dbd's root
// command exposes (SPEC_FULL §2.3): debug logging, an extra log file,
// and explicit profile/project overrides. Each resolves flag value
// over environment variable over zero value, so `--debug` always wins
// but a bare `DBD_DEBUG=1` still works for CI/cron invocations that
// don't pass flags.
type Settings struct {
	Debug   bool
	LogFile string
	Profile string
	Project string
}

// ResolveSettings merges explicit flag values (empty/false meaning
// "not set") with the DBD_DEBUG/DBD_LOG_FILE/DBD_PROFILE/DBD_PROJECT
// environment variables via viper's env binding.
func ResolveSettings(flagDebug bool, flagLogFile, flagProfile, flagProject string) Settings {
	v := viper.New()
	v.BindEnv("debug", "DBD_DEBUG")
	v.BindEnv("logfile", "DBD_LOG_FILE")
	v.BindEnv("profile", "DBD_PROFILE")
	v.BindEnv("project", "DBD_PROJECT")

	return Settings{
		Debug:   flagDebug || v.GetBool("debug"),
		LogFile: firstNonEmpty(flagLogFile, v.GetString("logfile")),
		Profile: firstNonEmpty(flagProfile, v.GetString("profile")),
		Project: firstNonEmpty(flagProject, v.GetString("project")),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
