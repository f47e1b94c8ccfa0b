package executor

import (
	"context"

	"github.com/dbd-project/dbd/internal/dbschema"
	"github.com/dbd-project/dbd/internal/metadata"
	"github.com/dbd-project/dbd/internal/task"
	"github.com/dbd-project/dbd/internal/validator"
)

// Execute runs a full build: populate the graph, order it, reflect the
// database's current state (so a table-backed task whose
// materialization changed since the last run can still be dropped
// correctly), drop every table-backed task in dependents-first order,
// reflect the database again so the create phase sees the post-drop
// state, then create every task - DDL scripts included - in
// dependency-first order.
//
// Grounded on model_executor.py's `execute`: two passes over the same
// ordering, a drop pass forward and a create pass reversed, with a
// metadata cache consulted for drop decisions.
func (e *Executor) Execute(ctx context.Context) error {
	if _, err := e.Populate(); err != nil {
		return err
	}
	order, err := e.Order()
	if err != nil {
		return err
	}

	cache, err := metadata.Build(ctx, e.DB, e.Dialect, schemasOf(order))
	if err != nil {
		return err
	}
	e.cache = cache

	for _, t := range order {
		if err := e.dropTask(ctx, t); err != nil {
			return err
		}
	}

	cache, err = metadata.Build(ctx, e.DB, e.Dialect, schemasOf(order))
	if err != nil {
		return err
	}
	e.cache = cache

	for _, t := range task.CreateOrder(order) {
		if err := e.createTask(ctx, t); err != nil {
			return err
		}
	}
	return nil
}

// Validate populates the graph and runs the structural/semantic
// validator over every task, without touching the target database.
// Grounded on model_executor.py's `validate`, which builds the same
// graph Execute would but stops short of issuing any SQL.
func (e *Executor) Validate() ([]validator.TaskErrors, error) {
	g, err := e.Populate()
	if err != nil {
		return nil, err
	}
	return validator.ValidateGraph(g), nil
}

func schemasOf(order []*task.Task) []string {
	seen := map[string]bool{}
	var schemas []string
	for _, t := range order {
		if t.TargetSchema == "" || seen[t.TargetSchema] {
			continue
		}
		seen[t.TargetSchema] = true
		schemas = append(schemas, t.TargetSchema)
	}
	return schemas
}

// resolveDropStatement picks DROP VIEW over DROP TABLE when e's cache
// of the database's pre-drop state shows the target is currently a
// view - a table-backed task whose materialization changed from view
// to table since the last run needs its old view form dropped
// explicitly, since `DROP TABLE` can't touch a view in most dialects.
func (e *Executor) resolveDropStatement(t *dbschema.Table) string {
	if e.cache != nil {
		if snap := e.cache.Schema(t.Schema); snap != nil {
			if obj, ok := snap.Lookup(t.Name); ok && obj.Kind == metadata.KindView {
				return "DROP VIEW IF EXISTS " + qualifiedTableName(t, e.Dialect)
			}
		}
	}
	return t.DropTableDDL(e.Dialect)
}
