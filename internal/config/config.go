// Package config loads the profile file (database connections and
// object-storage stages, shared across projects) and the project file
// (which database connection and model directory a particular build
// uses), the same two-file split as the Python original's DbdProfile/
// DbdProject, decoded via the "parse loose, decode typed" shape used
// throughout this module: read bytes, run them through the template
// renderer so `{{ env.FOO }}` substitutions apply, yaml.Unmarshal into
// a loose map, then mapstructure.Decode into the typed struct.
package config

import (
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/dbd-project/dbd/internal/dbderrors"
	"github.com/dbd-project/dbd/internal/render"
)

// renderConfigFile reads path, applies the template renderer (rooted at
// the file's own directory, exposing the process environment), and
// returns the rendered bytes ready for yaml.Unmarshal.
func renderConfigFile(path string) ([]byte, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, dbderrors.Wrap(dbderrors.KindConfig, err, "read "+path)
	}

	env, err := render.NewEnvironment(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	vars := render.BuildContext("", "", nil)
	out, err := env.RenderString(filepath.Base(path), string(body), vars)
	if err != nil {
		return nil, err
	}
	return []byte(out), nil
}

func decodeYAML(path string, out interface{}) error {
	raw, err := renderConfigFile(path)
	if err != nil {
		return err
	}

	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return dbderrors.Wrap(dbderrors.KindConfig, err, "parse "+path)
	}
	if err := mapstructure.Decode(doc, out); err != nil {
		return dbderrors.Wrap(dbderrors.KindConfig, err, "decode "+path)
	}
	return nil
}
