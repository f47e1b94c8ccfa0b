// Package render wraps gonja's Jinja-compatible template engine for the
// three places spec.md §2.5/§4.6 needs text substitution: model source
// files, sidecar YAML, and raw SQL task bodies. Every template sees
// {{ schema }}, {{ table }}, {{ session }} plus the process environment,
// and can call a handful of sprig string filters in addition to gonja's
// own Jinja builtins (upper/lower/trim/default/...).
package render

import (
	"github.com/Masterminds/sprig/v3"
	"github.com/nikolalohinski/gonja/v2"
	"github.com/nikolalohinski/gonja/v2/exec"
	"github.com/nikolalohinski/gonja/v2/loaders"

	"github.com/dbd-project/dbd/internal/dbderrors"
)

// Environment is a gonja environment rooted at a project's model
// directory, so {% include %}/{% extends %} in a model template can
// resolve sibling files the way the Python original's Jinja
// FileSystemLoader did.
type Environment struct {
	env *gonja.Environment
}

// NewEnvironment builds an environment rooted at rootDir with the
// project's sprig filter set registered alongside gonja's Jinja
// builtins.
func NewEnvironment(rootDir string) (*Environment, error) {
	loader := loaders.MustNewFileSystemLoader(rootDir)
	env := gonja.NewEnvironment(gonja.DefaultConfig, loader)
	registerSprigFilters(env)
	return &Environment{env: env}, nil
}

// RenderFile renders the template at relPath (relative to the
// environment's root) against vars.
func (e *Environment) RenderFile(relPath string, vars map[string]interface{}) (string, error) {
	tpl, err := e.env.FromFile(relPath)
	if err != nil {
		return "", dbderrors.Wrap(dbderrors.KindTemplate, err, "parse template "+relPath)
	}
	out, err := tpl.ExecuteToString(exec.NewContext(vars))
	if err != nil {
		return "", dbderrors.Wrap(dbderrors.KindTemplate, err, "render template "+relPath)
	}
	return out, nil
}

// RenderString renders a template body the caller has already read
// (used by internal/config for profile and project files); model files,
// sidecar YAML and SQL bodies included, go through RenderFile.
func (e *Environment) RenderString(name, body string, vars map[string]interface{}) (string, error) {
	tpl, err := e.env.FromString(body)
	if err != nil {
		return "", dbderrors.Wrap(dbderrors.KindTemplate, err, "parse template "+name)
	}
	out, err := tpl.ExecuteToString(exec.NewContext(vars))
	if err != nil {
		return "", dbderrors.Wrap(dbderrors.KindTemplate, err, "render template "+name)
	}
	return out, nil
}

// sprigStringFilters are the sprig functions spec.md §2.5 calls out by
// name (case conversion, whitespace trimming); each has the simple
// string-in/string-out shape a Jinja filter expects.
var sprigStringFilters = []string{
	"upper", "lower", "trim", "title", "snakecase", "camelcase", "kebabcase",
}

func registerSprigFilters(env *gonja.Environment) {
	funcs := sprig.TxtFuncMap()
	for _, name := range sprigStringFilters {
		fn, ok := funcs[name].(func(string) string)
		if !ok {
			continue
		}
		env.Filters.Register(name, makeStringFilter(fn))
	}
}

func makeStringFilter(fn func(string) string) exec.FilterFunction {
	return func(e *exec.Evaluator, in *exec.Value, params *exec.VarArgs) *exec.Value {
		return exec.AsValue(fn(in.String()))
	}
}
