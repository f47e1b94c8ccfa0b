package metadata_test

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbd-project/dbd/internal/metadata"
	"github.com/dbd-project/dbd/internal/sqltype"
)

func TestBuildReflectsPerSchemaAndTopLevel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("select table_name as name, table_type as kind from information_schema.tables where table_schema = \\$1").
		WithArgs("analytics").
		WillReturnRows(sqlmock.NewRows([]string{"name", "kind"}).
			AddRow("orders", "BASE TABLE").
			AddRow("orders_view", "VIEW"))

	mock.ExpectQuery("select table_name as name, table_type as kind from information_schema.tables where table_schema = current_schema\\(\\)").
		WillReturnRows(sqlmock.NewRows([]string{"name", "kind"}))

	cache, err := metadata.Build(context.Background(), db, sqltype.DialectPostgres, []string{"analytics"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	snap := cache.Schema("analytics")
	assert.True(t, snap.Exists("orders"))
	obj, ok := snap.Lookup("orders_view")
	require.True(t, ok)
	assert.Equal(t, metadata.KindView, obj.Kind)

	top := cache.Schema("")
	assert.False(t, top.Exists("orders"))
}

func TestSnapshotExistsHandlesNilReceiver(t *testing.T) {
	var snap *metadata.Snapshot
	assert.False(t, snap.Exists("anything"))
}

func TestCacheSchemaReturnsEmptySnapshotWhenNeverBuilt(t *testing.T) {
	cache, err := metadata.Build(context.Background(), mustEmptyDB(t), sqltype.DialectPostgres, nil)
	require.NoError(t, err)

	snap := cache.Schema("unknown")
	assert.False(t, snap.Exists("whatever"))
}

func mustEmptyDB(t *testing.T) *sql.DB {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectQuery("select table_name as name, table_type as kind from information_schema.tables where table_schema = current_schema\\(\\)").
		WillReturnRows(sqlmock.NewRows([]string{"name", "kind"}))
	return db
}
