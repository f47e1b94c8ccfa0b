package executor

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/dbd-project/dbd/internal/dbderrors"
	"github.com/dbd-project/dbd/internal/dbschema"
	"github.com/dbd-project/dbd/internal/loader"
	"github.com/dbd-project/dbd/internal/sqltype"
	"github.com/dbd-project/dbd/internal/task"
)

// dropTask drops (or truncates) t's table ahead of a rebuild, per its
// declared Mode. DDL tasks have nothing to drop - their prolog/epilog
// statements simply rerun.
func (e *Executor) dropTask(ctx context.Context, t *task.Task) error {
	if t.Kind == task.KindDDL || t.Table == nil {
		return nil
	}

	var stmt string
	switch t.Mode {
	case task.ModeTruncate:
		stmt = truncateDDL(t.Table, e.Dialect)
	default:
		stmt = e.resolveDropStatement(t.Table)
	}
	if _, err := e.DB.ExecContext(ctx, stmt); err != nil {
		return dbderrors.WrapDatabase(err, t.ID(), "drop")
	}
	return nil
}

func truncateDDL(t *dbschema.Table, dialect sqltype.Dialect) string {
	name := qualifiedTableName(t, dialect)
	if dialect == sqltype.DialectBigQuery {
		// BigQuery has no TRUNCATE statement; DELETE ALL ROWS is its
		// documented equivalent.
		return fmt.Sprintf("DELETE FROM %s WHERE TRUE", name)
	}
	return "TRUNCATE TABLE " + name
}

func qualifiedTableName(t *dbschema.Table, dialect sqltype.Dialect) string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// createTask materializes t: runs a KindDDL script's statements in
// file order, loads a KindData task's files into its target table
// (creating the table first if it doesn't already exist), or
// CREATE-TABLE/VIEW-AS-SELECTs a KindSQL task.
func (e *Executor) createTask(ctx context.Context, t *task.Task) error {
	switch t.Kind {
	case task.KindDDL:
		for _, stmt := range t.Statements {
			if _, err := e.DB.ExecContext(ctx, stmt); err != nil {
				return dbderrors.WrapDatabase(err, t.ID(), "ddl")
			}
		}
		return nil
	case task.KindSQL:
		return e.createSQLTask(ctx, t)
	case task.KindData:
		return e.createDataTask(ctx, t)
	default:
		return dbderrors.New(dbderrors.KindInvalidModel, "unknown task kind for "+t.ID())
	}
}

// createSQLTask materializes a SELECT as a table or view.
//
// original_source/dbd/tasks/elt_task.py first creates a temporary
// reflection view, introspects its columns through SQLAlchemy, and
// only then issues the real CREATE TABLE so column metadata is
// available up front. Go has no SQLAlchemy-style reflection layer and
// database/sql callers don't need pre-declared columns to create a
// table from a query, so this instead issues a direct, dialect-portable
// CREATE TABLE/VIEW ... AS SELECT and lets the database infer the
// result's column set (see DESIGN.md).
func (e *Executor) createSQLTask(ctx context.Context, t *task.Task) error {
	target := t.Target
	if t.TargetSchema != "" {
		target = t.TargetSchema + "." + t.Target
	}

	var stmt string
	switch t.Materialization {
	case task.MaterializeView:
		stmt = fmt.Sprintf("CREATE VIEW %s AS %s", target, t.SQLText)
	default:
		stmt = fmt.Sprintf("CREATE TABLE %s AS %s", target, t.SQLText)
	}
	if _, err := e.DB.ExecContext(ctx, stmt); err != nil {
		return dbderrors.WrapDatabase(err, t.ID(), "create")
	}
	return nil
}

// createDataTask creates t's target table unless the post-drop metadata
// cache shows it already exists (as after a truncate), inferring
// TEXT-typed columns from the data when the model gave no explicit
// `table:` sidecar (original_source's data_task.py default), and loads
// every declared file/URL into it.
func (e *Executor) createDataTask(ctx context.Context, t *task.Task) error {
	records, err := e.readDataTaskRecords(t)
	if err != nil {
		return err
	}

	table := t.Table
	if table == nil {
		table = inferTextTable(t.Target, t.TargetSchema, records)
	}

	exists := false
	if e.cache != nil {
		exists = e.cache.Schema(table.Schema).Exists(table.Name)
	}
	if !exists {
		if _, err := e.DB.ExecContext(ctx, table.CreateTableDDL(e.Dialect)); err != nil {
			return dbderrors.WrapDatabase(err, t.ID(), "create")
		}
		for _, stmt := range table.CreateIndexDDL(e.Dialect) {
			if _, err := e.DB.ExecContext(ctx, stmt); err != nil {
				return dbderrors.WrapDatabase(err, t.ID(), "create index")
			}
		}
	}

	ld := loader.New(e.Dialect)
	if _, err := ld.Load(ctx, e.DB, table, records, e.Stage); err != nil {
		return dbderrors.WrapDatabase(err, t.ID(), "load")
	}
	return nil
}

// readDataTaskRecords resolves every DataFiles entry (a local path, or
// a URL that must first be downloaded to a temp file) and concatenates
// the records read from each, in declared order - mirrors
// original_source's __urls_to_dataframe/__refs_to_dataframe concat.
func (e *Executor) readDataTaskRecords(t *task.Task) ([]loader.Record, error) {
	var all []loader.Record
	for _, entry := range t.DataFiles {
		path := entry
		if isURL(entry) {
			tmp, err := downloadTemp(entry)
			if err != nil {
				return nil, dbderrors.Wrap(dbderrors.KindUnsupportedFile, err, "downloading "+entry)
			}
			path = tmp
		}
		recs, err := loader.ReadDataFile(path)
		if err != nil {
			return nil, err
		}
		all = append(all, recs...)
	}
	return all, nil
}

// inferTextTable builds a table with every column typed TEXT and
// nullable, in sorted-name order, from a data task's own rows - used
// only when the model declares no sidecar `table:` definition.
// Go's database/sql has no dtype-inference layer comparable to
// pandas, so unlike original_source's per-column override merge this
// always defaults the whole table to TEXT; an explicit sidecar
// `table:` is the way to declare real column types (see DESIGN.md).
func inferTextTable(name, schema string, records []loader.Record) *dbschema.Table {
	seen := map[string]bool{}
	var names []string
	for _, rec := range records {
		for col := range rec {
			if !seen[col] {
				seen[col] = true
				names = append(names, col)
			}
		}
	}
	sort.Strings(names)

	textType, _ := sqltype.Parse("text")
	t := &dbschema.Table{Name: name, Schema: schema}
	for _, n := range names {
		t.Columns = append(t.Columns, dbschema.Column{Name: n, Type: textType, Nullable: true})
	}
	return t
}

func downloadTemp(url string) (string, error) {
	dest := tempFileFor(url)
	if err := loader.DownloadToFile(url, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func tempFileFor(url string) string {
	name := strings.ReplaceAll(url, "/", "_")
	name = strings.ReplaceAll(name, ":", "_")
	return fmt.Sprintf("%s/dbd-%s", os.TempDir(), name)
}
