package executor

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbd-project/dbd/internal/dbschema"
	"github.com/dbd-project/dbd/internal/loader"
	"github.com/dbd-project/dbd/internal/sqltype"
	"github.com/dbd-project/dbd/internal/task"
)

func testTable(name, schema string) *dbschema.Table {
	textType, _ := sqltype.Parse("text")
	return &dbschema.Table{
		Name:   name,
		Schema: schema,
		Columns: []dbschema.Column{
			{Name: "id", Type: textType},
		},
	}
}

func TestTruncateDDLFallsBackToDeleteOnBigQuery(t *testing.T) {
	tbl := testTable("events", "public")
	assert.Equal(t, "TRUNCATE TABLE public.events", truncateDDL(tbl, sqltype.DialectPostgres))
	assert.Equal(t, "DELETE FROM public.events WHERE TRUE", truncateDDL(tbl, sqltype.DialectBigQuery))
}

func TestQualifiedTableNameOmitsEmptySchema(t *testing.T) {
	assert.Equal(t, "events", qualifiedTableName(testTable("events", ""), sqltype.DialectPostgres))
	assert.Equal(t, "public.events", qualifiedTableName(testTable("events", "public"), sqltype.DialectPostgres))
}

func TestInferTextTableSortsColumnNames(t *testing.T) {
	records := []loader.Record{
		{"b": "2", "a": "1"},
		{"c": "3"},
	}
	tbl := inferTextTable("events", "public", records)
	var names []string
	for _, c := range tbl.Columns {
		names = append(names, c.Name)
		assert.True(t, c.Nullable)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)
}

func TestDropTaskSkipsDDLAndTablelessTasks(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	e := &Executor{DB: db, Dialect: sqltype.DialectPostgres}
	assert.NoError(t, e.dropTask(context.Background(), &task.Task{Kind: task.KindDDL}))
	assert.NoError(t, e.dropTask(context.Background(), &task.Task{Kind: task.KindData}))
}

func TestDropTaskTruncatesWhenModeIsTruncate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`TRUNCATE TABLE public\.events`).WillReturnResult(sqlmock.NewResult(0, 0))

	e := &Executor{DB: db, Dialect: sqltype.DialectPostgres}
	tsk := &task.Task{Kind: task.KindData, Mode: task.ModeTruncate, Table: testTable("events", "public")}
	require.NoError(t, e.dropTask(context.Background(), tsk))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSQLTaskIssuesCreateTableAsSelect(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE public\.active_customers AS SELECT \* FROM public\.customers`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	e := &Executor{DB: db, Dialect: sqltype.DialectPostgres}
	tsk := &task.Task{
		Kind:            task.KindSQL,
		Target:          "active_customers",
		TargetSchema:    "public",
		SQLText:         "SELECT * FROM public.customers",
		Materialization: task.MaterializeTable,
	}
	require.NoError(t, e.createSQLTask(context.Background(), tsk))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateSQLTaskIssuesCreateViewForViewMaterialization(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE VIEW public\.recent_orders AS SELECT \* FROM public\.orders`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	e := &Executor{DB: db, Dialect: sqltype.DialectPostgres}
	tsk := &task.Task{
		Kind:            task.KindSQL,
		Target:          "recent_orders",
		TargetSchema:    "public",
		SQLText:         "SELECT * FROM public.orders",
		Materialization: task.MaterializeView,
	}
	require.NoError(t, e.createSQLTask(context.Background(), tsk))
	assert.NoError(t, mock.ExpectationsWereMet())
}
