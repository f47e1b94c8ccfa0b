package loader

import (
	"context"
	"database/sql"

	"cloud.google.com/go/bigquery"
	"github.com/dbd-project/dbd/internal/dbschema"
	"github.com/dbd-project/dbd/internal/dbderrors"
	"github.com/dbd-project/dbd/internal/sqltype"
)

// bigQueryLoader appends rows directly through the BigQuery client's
// streaming inserter (spec.md §4.5.1: "BigQuery: direct append"),
// bypassing database/sql entirely - BigQuery's `bigquery.Client` is the
// idiomatic access path, not a database/sql driver.
//
// Grounded on spec.md §4.5.1 and cloud.google.com/go/bigquery's
// documented Inserter API (out-of-pack: no example repo wires BigQuery;
// see DESIGN.md).
type bigQueryLoader struct{}

// rowCoercer adapts a single coerced row to bigquery.ValueSaver so
// Inserter.Put can stream it without an intermediate struct type.
type rowCoercer struct {
	columns []string
	values  []any
}

func (r *rowCoercer) Save() (map[string]bigquery.Value, string, error) {
	out := make(map[string]bigquery.Value, len(r.columns))
	for i, col := range r.columns {
		out[col] = r.values[i]
	}
	return out, "", nil
}

func (l *bigQueryLoader) Load(ctx context.Context, _ *sql.DB, table *dbschema.Table, records []Record, _ *StageStorage) (int64, error) {
	rows, err := coerceRecords(table, sqltype.DialectBigQuery, records)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	columns := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		columns[i] = c.Name
	}

	client, err := bigquery.NewClient(ctx, bigquery.DetectProjectID)
	if err != nil {
		return 0, dbderrors.WrapDatabase(err, table.Name, "load")
	}
	defer client.Close()

	inserter := client.Dataset(table.Schema).Table(table.Name).Inserter()
	savers := make([]*rowCoercer, len(rows))
	for i, row := range rows {
		savers[i] = &rowCoercer{columns: columns, values: row}
	}
	if err := inserter.Put(ctx, savers); err != nil {
		return 0, dbderrors.WrapDatabase(err, table.Name, "load")
	}
	return int64(len(rows)), nil
}
