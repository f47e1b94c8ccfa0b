// Package loader is the Loader component (spec.md §4.5): reads a data
// file (or a `.url`/`.ref` indirection file) into rows, coerces each
// cell against the target table's declared column type, and bulk-loads
// the result into the target database using whichever ingest strategy
// is fastest for that dialect.
//
// Grounded on original_source/dbd/tasks/data_task.py's
// __read_file_to_dataframe (extension dispatch) and
// DataFrame.to_sql(chunksize=1024, method='multi') default path, and on
// the teacher's adapter/postgres+database/mysql "one concrete type per
// dialect behind a shared interface" shape (adapter.Database).
package loader

import (
	"context"
	"database/sql"

	"github.com/dbd-project/dbd/internal/dbschema"
	"github.com/dbd-project/dbd/internal/dbderrors"
	"github.com/dbd-project/dbd/internal/sqltype"
)

// Record is one raw row read from a data file, keyed by column name,
// before type coercion is applied.
type Record map[string]string

// StageStorage carries the object-storage staging parameters dialects
// that COPY through cloud storage need (Snowflake, Redshift), mirroring
// model_executor.execute's `copy_stage_storage` kwarg.
type StageStorage struct {
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string
	SecretKey string
}

// Loader bulk-loads coerced rows into a table using whatever mechanism
// is fastest for a dialect (COPY, LOAD DATA LOCAL INFILE, a staged
// object-storage COPY, or a chunked INSERT fallback).
type Loader interface {
	Load(ctx context.Context, db *sql.DB, table *dbschema.Table, records []Record, stage *StageStorage) (int64, error)
}

// New returns the Loader for dialect (spec.md §4.5.1's per-dialect
// ingest table).
func New(dialect sqltype.Dialect) Loader {
	switch dialect {
	case sqltype.DialectPostgres, sqltype.DialectRedshift:
		return &postgresLoader{dialect: dialect}
	case sqltype.DialectMySQL:
		return &mysqlLoader{}
	case sqltype.DialectSnowflake:
		return &snowflakeLoader{}
	case sqltype.DialectBigQuery:
		return &bigQueryLoader{}
	default:
		return &chunkedInsertLoader{dialect: dialect, chunkSize: 16384}
	}
}

// coerceRecords converts every raw Record against table's column types,
// in table.Columns order, returning one []any per row ready for a
// parameterized statement.
func coerceRecords(table *dbschema.Table, dialect sqltype.Dialect, records []Record) ([][]any, error) {
	rows := make([][]any, len(records))
	for i, rec := range records {
		row := make([]any, len(table.Columns))
		for j, col := range table.Columns {
			raw, ok := rec[col.Name]
			if !ok || (raw == "" && col.Nullable) {
				row[j] = nil
				continue
			}
			v, err := CoerceValue(raw, col.Type, dialect)
			if err != nil {
				return nil, dbderrors.Wrap(dbderrors.KindDatabase, err, "coercing column "+col.Name)
			}
			row[j] = v
		}
		rows[i] = row
	}
	return rows, nil
}
