package task_test

import (
	"testing"

	"github.com/dbd-project/dbd/internal/dbschema"
	"github.com/dbd-project/dbd/internal/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableTask(target, schema string, fks ...string) *task.Task {
	tbl := &dbschema.Table{Name: target, Schema: schema}
	if len(fks) > 0 {
		tbl.Columns = []dbschema.Column{{Name: "ref_id", ForeignKeys: fks}}
	}
	return &task.Task{Kind: task.KindData, Target: target, TargetSchema: schema, Table: tbl}
}

func ddlTask(target, schema string) *task.Task {
	return &task.Task{Kind: task.KindDDL, Target: target, TargetSchema: schema}
}

func TestGenerateIDUsesTopLevelSentinelForEmptySchema(t *testing.T) {
	assert.Equal(t, "*.prolog", task.GenerateID("prolog", ""))
	assert.Equal(t, "sales.orders", task.GenerateID("orders", "sales"))
}

func TestDependsOnQualifiesBareForeignKeyWithOwnSchema(t *testing.T) {
	tsk := tableTask("orders", "sales", "customers.id")
	deps, err := tsk.DependsOn(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"sales.customers"}, deps)
}

func TestDependsOnKeepsAlreadyQualifiedForeignKey(t *testing.T) {
	tsk := tableTask("orders", "sales", "public.customers.id")
	deps, err := tsk.DependsOn(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"public.customers"}, deps)
}

func TestOrderByDependenciesPlacesDependencyBeforeDependent(t *testing.T) {
	g := task.NewGraph()
	customers := tableTask("customers", "sales")
	orders := tableTask("orders", "sales", "customers.id")
	g.Tasks[customers.ID()] = customers
	g.Tasks[orders.ID()] = orders

	order, err := g.OrderByDependencies(nil)
	require.NoError(t, err)
	require.Len(t, order, 2)
	// orders depends on customers, so orders comes first in drop order;
	// CreateOrder reverses it so customers is created first.
	assert.Equal(t, "orders", order[0].Target)
	assert.Equal(t, "customers", order[1].Target)
	assert.Equal(t, "customers", task.CreateOrder(order)[0].Target)
}

func TestOrderByDependenciesPlacesIndependentTasksFirst(t *testing.T) {
	g := task.NewGraph()
	customers := tableTask("customers", "sales")
	orders := tableTask("orders", "sales", "customers.id")
	standalone := tableTask("reference_data", "sales")
	g.Tasks[customers.ID()] = customers
	g.Tasks[orders.ID()] = orders
	g.Tasks[standalone.ID()] = standalone

	order, err := g.OrderByDependencies(nil)
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Equal(t, "reference_data", order[0].Target)
}

func TestOrderByDependenciesSplicesSchemaPrologAndEpilog(t *testing.T) {
	g := task.NewGraph()
	orders := tableTask("orders", "sales")
	g.Tasks[orders.ID()] = orders
	epilog := ddlTask(task.TargetEpilog, "sales")
	prolog := ddlTask(task.TargetProlog, "sales")
	g.DDLTasks[epilog.ID()] = epilog
	g.DDLTasks[prolog.ID()] = prolog

	order, err := g.OrderByDependencies(nil)
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Equal(t, task.TargetEpilog, order[0].Target)
	assert.Equal(t, "orders", order[1].Target)
	assert.Equal(t, task.TargetProlog, order[2].Target)
}

func TestOrderByDependenciesSplicesGlobalPrologEpilogAtEnds(t *testing.T) {
	g := task.NewGraph()
	orders := tableTask("orders", "sales")
	g.Tasks[orders.ID()] = orders
	globalProlog := ddlTask(task.TargetProlog, task.TopLevelSchemaName)
	globalEpilog := ddlTask(task.TargetEpilog, task.TopLevelSchemaName)
	g.DDLTasks[globalProlog.ID()] = globalProlog
	g.DDLTasks[globalEpilog.ID()] = globalEpilog

	order, err := g.OrderByDependencies(nil)
	require.NoError(t, err)
	require.Len(t, order, 3)
	assert.Equal(t, task.TargetEpilog, order[0].Target)
	assert.Equal(t, task.TargetProlog, order[len(order)-1].Target)
}

func TestOrderByDependenciesUsesSQLRefsResolver(t *testing.T) {
	g := task.NewGraph()
	base := tableTask("base", "sales")
	derived := &task.Task{Kind: task.KindSQL, Target: "derived", TargetSchema: "sales", SQLText: "select * from base"}
	g.Tasks[base.ID()] = base
	g.Tasks[derived.ID()] = derived

	order, err := g.OrderByDependencies(func(t *task.Task) ([]string, error) {
		if t.Kind == task.KindSQL {
			return []string{"base"}, nil
		}
		return nil, nil
	})
	require.NoError(t, err)
	require.Len(t, order, 2)
	assert.Equal(t, "derived", order[0].Target)
	assert.Equal(t, "base", order[1].Target)
}

func TestOrderByDependenciesRejectsCycle(t *testing.T) {
	g := task.NewGraph()
	a := tableTask("a", "sales", "b.id")
	b := tableTask("b", "sales", "a.id")
	g.Tasks[a.ID()] = a
	g.Tasks[b.ID()] = b

	_, err := g.OrderByDependencies(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle:")
	assert.Contains(t, err.Error(), "sales.a")
	assert.Contains(t, err.Error(), "sales.b")
}
