package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dbd-project/dbd/internal/config"
)

func TestResolveProjectPathPrefersExplicitOverride(t *testing.T) {
	defer func() { settings = config.Settings{} }()

	settings = config.Settings{Project: "/explicit/dbd.project"}
	assert.Equal(t, "/explicit/dbd.project", resolveProjectPath("some/dest"))
}

func TestResolveProjectPathDefaultsUnderDest(t *testing.T) {
	defer func() { settings = config.Settings{} }()

	settings = config.Settings{}
	assert.Equal(t, filepath.Join("some/dest", config.DefaultProjectFileName), resolveProjectPath("some/dest"))
}
