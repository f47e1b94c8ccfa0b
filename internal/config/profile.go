package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dbd-project/dbd/internal/dbderrors"
)

// DefaultProfileFileName is the profile file dbd looks for when no
// explicit path is given (original_source's DbdProfile.load default).
const DefaultProfileFileName = "dbd.profile"

// Profile holds database connections and object-storage stage
// definitions shared across projects (original_source's DbdProfile).
type Profile struct {
	Path      string                            `mapstructure:"-"`
	Databases map[string]map[string]interface{} `mapstructure:"databases"`
	Storages  map[string]map[string]interface{} `mapstructure:"storages"`
}

// LoadProfile reads the explicit path when one is given (and searches
// nowhere else); otherwise it tries "./dbd.profile", then
// "$HOME/dbd.profile", the same two-location search as DbdProfile.load.
func LoadProfile(explicitPath string) (*Profile, error) {
	candidates := profileSearchPath(explicitPath)
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		profile := &Profile{Path: filepath.Clean(path)}
		if err := decodeYAML(path, profile); err != nil {
			return nil, err
		}
		return profile, nil
	}
	return nil, dbderrors.New(dbderrors.KindConfig,
		fmt.Sprintf("can't find dbd profile file; searched %s", strings.Join(candidates, ", ")))
}

func profileSearchPath(explicitPath string) []string {
	if explicitPath != "" {
		return []string{explicitPath}
	}
	paths := []string{filepath.Join(".", DefaultProfileFileName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, DefaultProfileFileName))
	}
	return paths
}

// Connection returns the named database connection's config, the
// dict `engine_from_config` consumed in the Python original.
func (p *Profile) Connection(name string) (map[string]interface{}, error) {
	if p.Databases == nil {
		return nil, dbderrors.New(dbderrors.KindConfig, fmt.Sprintf("profile %s doesn't contain a 'databases' key", p.Path))
	}
	cfg, ok := p.Databases[name]
	if !ok {
		return nil, dbderrors.New(dbderrors.KindConfig, fmt.Sprintf("connection %q isn't defined in profile %s", name, p.Path))
	}
	return cfg, nil
}

// Storage returns the named object-storage stage's config (bucket,
// region, credentials) used as a bulk-load staging area.
func (p *Profile) Storage(name string) (map[string]interface{}, error) {
	if p.Storages == nil {
		return nil, dbderrors.New(dbderrors.KindConfig, fmt.Sprintf("profile %s doesn't contain a 'storages' key", p.Path))
	}
	cfg, ok := p.Storages[name]
	if !ok {
		return nil, dbderrors.New(dbderrors.KindConfig, fmt.Sprintf("storage %q isn't defined in profile %s", name, p.Path))
	}
	return cfg, nil
}
