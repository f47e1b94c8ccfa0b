package loader

import (
	"context"
	"database/sql"

	"github.com/dbd-project/dbd/internal/dbschema"
	"github.com/dbd-project/dbd/internal/dbderrors"
	"github.com/dbd-project/dbd/internal/sqltype"
	"github.com/lib/pq"
)

// postgresLoader streams rows through the PostgreSQL wire protocol's
// COPY FROM STDIN via lib/pq.CopyIn. Used for both Postgres and
// Redshift: Redshift speaks the Postgres wire protocol, so the same
// local COPY path works when no S3 staging bucket is configured; with
// one configured, redshiftCopyFromStage is used instead (see
// redshift.go) since a real Redshift COPY FROM S3 is an order of
// magnitude faster than streaming rows over the wire.
//
// Grounded on the teacher's adapter/postgres.NewDatabase (sql.Open("postgres", ...)
// connection shape) and spec.md §4.5.1's "Postgres: COPY protocol" row.
type postgresLoader struct {
	dialect sqltype.Dialect
}

func (l *postgresLoader) Load(ctx context.Context, db *sql.DB, table *dbschema.Table, records []Record, stage *StageStorage) (int64, error) {
	if l.dialect == sqltype.DialectRedshift && stage != nil {
		return redshiftCopyFromStage(ctx, db, table, records, stage)
	}

	rows, err := coerceRecords(table, l.dialect, records)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, dbderrors.WrapDatabase(err, table.Name, "load")
	}
	defer tx.Rollback()

	columns := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		columns[i] = c.Name
	}

	copySQL := pq.CopyIn(table.Name, columns...)
	if table.Schema != "" {
		copySQL = pq.CopyInSchema(table.Schema, table.Name, columns...)
	}
	stmt, err := tx.PrepareContext(ctx, copySQL)
	if err != nil {
		return 0, dbderrors.WrapDatabase(err, table.Name, "load")
	}

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			stmt.Close()
			return 0, dbderrors.WrapDatabase(err, table.Name, "load")
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return 0, dbderrors.WrapDatabase(err, table.Name, "load")
	}
	if err := stmt.Close(); err != nil {
		return 0, dbderrors.WrapDatabase(err, table.Name, "load")
	}
	if err := tx.Commit(); err != nil {
		return 0, dbderrors.WrapDatabase(err, table.Name, "load")
	}
	return int64(len(rows)), nil
}
