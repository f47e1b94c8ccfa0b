package main

import (
	"database/sql"
	"path/filepath"

	"github.com/dbd-project/dbd/internal/config"
	"github.com/dbd-project/dbd/internal/executor"
	"github.com/dbd-project/dbd/internal/loader"
)

// resolveProjectPath composes the positional project_dir argument with
// the --project override the same way the Python CLI combined `dest`
// with its own `--project` flag: an explicit --project is used as-is;
// otherwise it's dbd.project inside dest.
func resolveProjectPath(dest string) string {
	if settings.Project != "" {
		return settings.Project
	}
	return filepath.Join(dest, config.DefaultProjectFileName)
}

// buildExecutor loads the profile/project pair for dest and wires an
// Executor against the project's declared database connection and
// model directory.
func buildExecutor(dest string) (*executor.Executor, *sql.DB, error) {
	profile, err := config.LoadProfile(settings.Profile)
	if err != nil {
		return nil, nil, err
	}
	project, err := config.LoadProject(resolveProjectPath(dest))
	if err != nil {
		return nil, nil, err
	}

	modelDir, err := project.ModelDirectory()
	if err != nil {
		return nil, nil, err
	}

	conn, err := profile.Connection(project.Database)
	if err != nil {
		return nil, nil, err
	}
	db, dialect, err := openDatabase(conn)
	if err != nil {
		return nil, nil, err
	}

	stage, err := resolveStage(project, profile)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	session := map[string]interface{}{
		"database": project.Database,
		"model":    modelDir,
	}
	exec, err := executor.New(modelDir, dialect, db, session, stage)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return exec, db, nil
}

func resolveStage(project *config.Project, profile *config.Profile) (*loader.StageStorage, error) {
	cfg, err := project.CopyStageConfig(profile)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, nil
	}
	stage := &loader.StageStorage{}
	if v, ok := cfg["bucket"].(string); ok {
		stage.Bucket = v
	}
	if v, ok := cfg["prefix"].(string); ok {
		stage.Prefix = v
	}
	if v, ok := cfg["region"].(string); ok {
		stage.Region = v
	}
	if v, ok := cfg["access_key"].(string); ok {
		stage.AccessKey = v
	}
	if v, ok := cfg["secret_key"].(string); ok {
		stage.SecretKey = v
	}
	return stage, nil
}
