// Package executor is the Model Executor (spec.md §4.6): it crawls a
// model directory into a task.Graph, orders that graph, and drives the
// drop/create phases (or the read-only validate phase) against a
// target database.
//
// Grounded on original_source/dbd/executors/model_executor.py almost
// line-for-line for control flow: `__populate_model_from_directory`,
// `__order_tasks_by_dependencies`, `execute`, `validate`.
package executor

import (
	"database/sql"

	"github.com/dbd-project/dbd/internal/loader"
	"github.com/dbd-project/dbd/internal/metadata"
	"github.com/dbd-project/dbd/internal/render"
	"github.com/dbd-project/dbd/internal/sqltype"
	"github.com/dbd-project/dbd/internal/task"
)

// Executor ties the model directory, the rendering environment, and
// the target database connection together for one build.
type Executor struct {
	ModelDir string
	Dialect  sqltype.Dialect
	DB       *sql.DB
	Render   *render.Environment
	Session  map[string]interface{}
	Stage    *loader.StageStorage

	graph *task.Graph
	cache *metadata.Cache
}

// New builds an Executor rooted at modelDir, with its own rendering
// environment (so {% include %} resolves model-relative paths).
func New(modelDir string, dialect sqltype.Dialect, db *sql.DB, session map[string]interface{}, stage *loader.StageStorage) (*Executor, error) {
	env, err := render.NewEnvironment(modelDir)
	if err != nil {
		return nil, err
	}
	return &Executor{
		ModelDir: modelDir,
		Dialect:  dialect,
		DB:       db,
		Render:   env,
		Session:  session,
		Stage:    stage,
	}, nil
}
