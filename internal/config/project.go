package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dbd-project/dbd/internal/dbderrors"
)

// DefaultProjectFileName is the project file dbd looks for in the
// current directory when no explicit path is given.
const DefaultProjectFileName = "dbd.project"

// Project holds a single build's database connection name, model
// directory, and optional copy-stage name (original_source's
// DbdProject).
type Project struct {
	Path      string `mapstructure:"-"`
	Directory string `mapstructure:"-"`
	Database  string `mapstructure:"database"`
	Model     string `mapstructure:"model"`
	CopyStage string `mapstructure:"copy_stage"`
}

// LoadProject loads the project file at explicitPath, or
// "./dbd.project" if explicitPath is empty.
func LoadProject(explicitPath string) (*Project, error) {
	path := explicitPath
	if path == "" {
		path = filepath.Join(".", DefaultProjectFileName)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, dbderrors.New(dbderrors.KindConfig, fmt.Sprintf("can't find dbd project file %q", path))
	}

	project := &Project{Path: filepath.Clean(path), Directory: filepath.Dir(path)}
	if err := decodeYAML(path, project); err != nil {
		return nil, err
	}
	return project, nil
}

// ModelDirectory resolves the project's model directory relative to
// the project file, defaulting to "./model" when the project doesn't
// set one, matching model_directory_from_project.
func (p *Project) ModelDirectory() (string, error) {
	rel := p.Model
	if rel == "" {
		rel = "model"
	}
	dir := filepath.Clean(filepath.Join(p.Directory, rel))
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return "", dbderrors.New(dbderrors.KindConfig, fmt.Sprintf("model directory %q doesn't exist", dir))
	}
	return dir, nil
}

// CopyStageConfig resolves the project's copy_stage name against the
// profile's storages, or returns nil if the project names none.
func (p *Project) CopyStageConfig(profile *Profile) (map[string]interface{}, error) {
	if p.CopyStage == "" {
		return nil, nil
	}
	return profile.Storage(p.CopyStage)
}
