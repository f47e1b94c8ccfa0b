package executor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbd-project/dbd/internal/dbschema"
	"github.com/dbd-project/dbd/internal/executor"
	"github.com/dbd-project/dbd/internal/sqltype"
	"github.com/dbd-project/dbd/internal/task"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newExecutor(t *testing.T, modelDir string) *executor.Executor {
	t.Helper()
	exec, err := executor.New(modelDir, sqltype.DialectPostgres, nil, nil, nil)
	require.NoError(t, err)
	return exec
}

func TestPopulateBuildsDataTaskFromCSVAndSidecar(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "public", "customers.csv"), "id,name\n1,Ada\n")
	writeFile(t, filepath.Join(dir, "public", "customers.yaml"), "table:\n  columns:\n    id: { type: integer, primary_key: true }\n    name: { type: \"varchar(100)\" }\n")

	exec := newExecutor(t, dir)
	g, err := exec.Populate()
	require.NoError(t, err)

	tsk, ok := g.Tasks["public.customers"]
	require.True(t, ok)
	assert.Equal(t, task.KindData, tsk.Kind)
	require.NotNil(t, tsk.Table)
	assert.Equal(t, []string{"id", "name"}, columnNames(tsk.Table))
	require.Len(t, tsk.DataFiles, 1)
	assert.Contains(t, tsk.DataFiles[0], "customers.csv")
}

func TestPopulateBuildsSQLTaskFromRenderedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "public", "active_customers.sql"), "-- comment\nSELECT * FROM {{ schema }}.customers WHERE active\n")

	exec := newExecutor(t, dir)
	g, err := exec.Populate()
	require.NoError(t, err)

	tsk, ok := g.Tasks["public.active_customers"]
	require.True(t, ok)
	assert.Equal(t, task.KindSQL, tsk.Kind)
	assert.Equal(t, task.MaterializeTable, tsk.Materialization)
	assert.Contains(t, tsk.SQLText, "SELECT * FROM public.customers")
	assert.NotContains(t, tsk.SQLText, "-- comment")
}

func TestPopulateBuildsDDLTaskAsProlog(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "public", "prolog.ddl"), "CREATE SCHEMA IF NOT EXISTS public;\nSET search_path TO public;\n")

	exec := newExecutor(t, dir)
	g, err := exec.Populate()
	require.NoError(t, err)

	tsk, ok := g.DDLTasks["public.prolog"]
	require.True(t, ok)
	assert.Equal(t, task.KindDDL, tsk.Kind)
	assert.Equal(t, []string{"CREATE SCHEMA IF NOT EXISTS public", "SET search_path TO public"}, tsk.Statements)
}

func TestPopulateRejectsDuplicateTargets(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "public", "orders.sql"), "SELECT 1\n")
	writeFile(t, filepath.Join(dir, "public", "orders.csv"), "id\n1\n")

	exec := newExecutor(t, dir)
	_, err := exec.Populate()
	assert.Error(t, err)
}

func TestPopulateTopLevelFileHasWildcardSchema(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "settings.csv"), "key,value\nfoo,bar\n")

	exec := newExecutor(t, dir)
	g, err := exec.Populate()
	require.NoError(t, err)

	_, ok := g.Tasks["*.settings"]
	assert.True(t, ok)
}

func TestOrderPlacesDependencyBeforeDependent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "public", "customers.csv"), "id,name\n1,Ada\n")
	writeFile(t, filepath.Join(dir, "public", "customers.yaml"), "table:\n  columns:\n    id: { type: integer, primary_key: true }\n    name: { type: \"varchar(100)\" }\n")
	writeFile(t, filepath.Join(dir, "public", "orders.csv"), "id,customer_id\n1,1\n")
	writeFile(t, filepath.Join(dir, "public", "orders.yaml"), "table:\n  columns:\n    id: { type: integer, primary_key: true }\n    customer_id: { type: integer, foreign_keys: [\"public.customers.id\"] }\n")

	exec := newExecutor(t, dir)
	_, err := exec.Populate()
	require.NoError(t, err)

	order, err := exec.Order()
	require.NoError(t, err)
	createOrder := task.CreateOrder(order)

	idx := map[string]int{}
	for i, tsk := range createOrder {
		idx[tsk.ID()] = i
	}
	assert.Less(t, idx["public.customers"], idx["public.orders"])
}

func columnNames(t *dbschema.Table) []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}
