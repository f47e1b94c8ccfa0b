package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbd-project/dbd/internal/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadProfileDecodesDatabasesAndStorages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dbd.profile")
	writeFile(t, path, "databases:\n  warehouse:\n    driver: postgres\n    host: localhost\nstorages:\n  stage:\n    bucket: dbd-stage\n")

	profile, err := config.LoadProfile(path)
	require.NoError(t, err)

	conn, err := profile.Connection("warehouse")
	require.NoError(t, err)
	assert.Equal(t, "postgres", conn["driver"])

	_, err = profile.Connection("missing")
	assert.Error(t, err)

	storage, err := profile.Storage("stage")
	require.NoError(t, err)
	assert.Equal(t, "dbd-stage", storage["bucket"])
}

func TestLoadProfileSubstitutesEnvVars(t *testing.T) {
	require.NoError(t, os.Setenv("DBD_TEST_HOST", "db.internal"))
	defer os.Unsetenv("DBD_TEST_HOST")

	dir := t.TempDir()
	path := filepath.Join(dir, "dbd.profile")
	writeFile(t, path, "databases:\n  warehouse:\n    host: {{ env.DBD_TEST_HOST }}\n")

	profile, err := config.LoadProfile(path)
	require.NoError(t, err)

	conn, err := profile.Connection("warehouse")
	require.NoError(t, err)
	assert.Equal(t, "db.internal", conn["host"])
}

func TestLoadProfileMissingReturnsConfigError(t *testing.T) {
	_, err := config.LoadProfile(filepath.Join(t.TempDir(), "nope.profile"))
	assert.Error(t, err)
}

func TestLoadProjectResolvesModelDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "model"), 0o755))
	path := filepath.Join(dir, "dbd.project")
	writeFile(t, path, "database: warehouse\nmodel: model\n")

	project, err := config.LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "warehouse", project.Database)

	modelDir, err := project.ModelDirectory()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "model"), modelDir)
}

func TestLoadProjectMissingModelDirectoryErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dbd.project")
	writeFile(t, path, "database: warehouse\nmodel: nonexistent\n")

	project, err := config.LoadProject(path)
	require.NoError(t, err)

	_, err = project.ModelDirectory()
	assert.Error(t, err)
}

func TestCopyStageConfigResolvesAgainstProfile(t *testing.T) {
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "dbd.profile")
	writeFile(t, profilePath, "databases:\n  warehouse:\n    driver: postgres\nstorages:\n  stage:\n    bucket: dbd-stage\n")
	profile, err := config.LoadProfile(profilePath)
	require.NoError(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "model"), 0o755))
	projectPath := filepath.Join(dir, "dbd.project")
	writeFile(t, projectPath, "database: warehouse\nmodel: model\ncopy_stage: stage\n")
	project, err := config.LoadProject(projectPath)
	require.NoError(t, err)

	stage, err := project.CopyStageConfig(profile)
	require.NoError(t, err)
	assert.Equal(t, "dbd-stage", stage["bucket"])
}

func TestResolveSettingsPrefersFlagOverEnv(t *testing.T) {
	require.NoError(t, os.Setenv("DBD_LOG_FILE", "/var/log/dbd.log"))
	defer os.Unsetenv("DBD_LOG_FILE")

	settings := config.ResolveSettings(false, "/tmp/custom.log", "", "")
	assert.Equal(t, "/tmp/custom.log", settings.LogFile)
}

func TestResolveSettingsFallsBackToEnv(t *testing.T) {
	require.NoError(t, os.Setenv("DBD_PROFILE", "/etc/dbd.profile"))
	defer os.Unsetenv("DBD_PROFILE")

	settings := config.ResolveSettings(false, "", "", "")
	assert.Equal(t, "/etc/dbd.profile", settings.Profile)
}
