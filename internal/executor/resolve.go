package executor

import (
	"github.com/dbd-project/dbd/internal/sqlanalyzer"
	"github.com/dbd-project/dbd/internal/task"
)

// Order returns e's populated graph's tasks and DDL scripts arranged in
// drop order (dependents first): forward iteration is the sequence
// the drop phase walks; task.CreateOrder(order) reverses it into the
// sequence the create phase walks.
//
// Must be called after Populate.
func (e *Executor) Order() ([]*task.Task, error) {
	return e.graph.OrderByDependencies(resolveSQLRefs)
}

// resolveSQLRefs extracts the table references a KindSQL task's
// rendered SELECT depends on, so Graph.OrderByDependencies can add
// them as edges. Non-SQL tasks have no SQL-derived dependencies.
func resolveSQLRefs(t *task.Task) ([]string, error) {
	if t.Kind != task.KindSQL {
		return nil, nil
	}
	return sqlanalyzer.Tables(t.SQLText), nil
}
