// Package metadata reflects the set of tables and views that already
// exist in the target database, one snapshot per schema plus a
// top-level sentinel snapshot for schema-less objects, mirroring the
// Python original's SQLAlchemy `MetaData` cache
// (model_executor.py's `__build_metadata_cache`). The executor rebuilds
// the cache right before the create phase so DROP/CREATE decisions see
// the post-drop state of the database, not a stale pre-drop snapshot.
package metadata

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/dbd-project/dbd/internal/dbderrors"
	"github.com/dbd-project/dbd/internal/sqltype"
)

// TopLevelSchema is the sentinel key for objects with no schema,
// matching task.TopLevelSchemaName.
const TopLevelSchema = "*"

// Kind distinguishes a reflected table from a reflected view, since
// dropping a view requires DROP VIEW rather than DROP TABLE.
type Kind string

const (
	KindTable Kind = "table"
	KindView  Kind = "view"
)

// Object is one reflected relation.
type Object struct {
	Name string
	Kind Kind
}

// Snapshot is the set of relations reflected for a single schema.
type Snapshot struct {
	Schema  string
	Objects map[string]Object
}

// Exists reports whether name is present in the snapshot.
func (s *Snapshot) Exists(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.Objects[name]
	return ok
}

// Lookup returns the reflected object for name, if any.
func (s *Snapshot) Lookup(name string) (Object, bool) {
	if s == nil {
		return Object{}, false
	}
	o, ok := s.Objects[name]
	return o, ok
}

// Cache holds one Snapshot per schema name, keyed the same way the
// task graph keys its tasks: a real schema name, or TopLevelSchema for
// schema-less objects.
type Cache struct {
	snapshots map[string]*Snapshot
}

// Schema returns the snapshot for the given schema name (TopLevelSchema
// for schema-less tasks), or an empty snapshot if the cache was never
// rebuilt for that schema.
func (c *Cache) Schema(schema string) *Snapshot {
	if schema == "" {
		schema = TopLevelSchema
	}
	if snap, ok := c.snapshots[schema]; ok {
		return snap
	}
	return &Snapshot{Schema: schema, Objects: map[string]Object{}}
}

// Build reflects one Snapshot per distinct schema in schemas plus the
// top-level sentinel, replacing any previous cache contents.
// Grounded on `__build_metadata_cache`'s "one MetaData object per
// schema, plus one for the top level" shape.
func Build(ctx context.Context, db *sql.DB, dialect sqltype.Dialect, schemas []string) (*Cache, error) {
	sqlxDB := sqlx.NewDb(db, string(dialect))

	seen := map[string]bool{}
	distinct := make([]string, 0, len(schemas))
	for _, s := range schemas {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		distinct = append(distinct, s)
	}

	cache := &Cache{snapshots: make(map[string]*Snapshot, len(distinct)+1)}
	for _, schema := range distinct {
		snap, err := reflectSchema(ctx, sqlxDB, dialect, schema)
		if err != nil {
			return nil, err
		}
		cache.snapshots[schema] = snap
	}

	top, err := reflectSchema(ctx, sqlxDB, dialect, "")
	if err != nil {
		return nil, err
	}
	top.Schema = TopLevelSchema
	cache.snapshots[TopLevelSchema] = top

	return cache, nil
}

type relationRow struct {
	Name string `db:"name"`
	Kind string `db:"kind"`
}

// reflectSchema queries information_schema for the tables and views
// visible in schema ("" for the database's default/current schema),
// the same reflection surface the teacher's TableNames queries by hand
// per dialect.
func reflectSchema(ctx context.Context, db *sqlx.DB, dialect sqltype.Dialect, schema string) (*Snapshot, error) {
	query, args := relationQuery(dialect, schema)

	rows := []relationRow{}
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, dbderrors.Wrap(dbderrors.KindDatabase, err, "reflect metadata for schema "+displaySchema(schema))
	}

	objects := make(map[string]Object, len(rows))
	for _, r := range rows {
		kind := KindTable
		if r.Kind == "VIEW" || r.Kind == "view" {
			kind = KindView
		}
		objects[r.Name] = Object{Name: r.Name, Kind: kind}
	}
	return &Snapshot{Schema: schema, Objects: objects}, nil
}

func displaySchema(schema string) string {
	if schema == "" {
		return TopLevelSchema
	}
	return schema
}

// relationQuery builds the information_schema/catalog query for a
// dialect. Postgres, MySQL, Redshift and Snowflake all expose a
// standard information_schema.tables view; SQLite has no such catalog
// and is reflected through sqlite_master instead.
func relationQuery(dialect sqltype.Dialect, schema string) (string, []interface{}) {
	switch dialect {
	case sqltype.DialectDefault:
		return "select name as name, type as kind from sqlite_master where type in ('table', 'view')", nil
	case sqltype.DialectMySQL:
		if schema == "" {
			return "select table_name as name, table_type as kind from information_schema.tables where table_schema = database()", nil
		}
		return "select table_name as name, table_type as kind from information_schema.tables where table_schema = ?", []interface{}{schema}
	default:
		if schema == "" {
			return "select table_name as name, table_type as kind from information_schema.tables where table_schema = current_schema()", nil
		}
		return "select table_name as name, table_type as kind from information_schema.tables where table_schema = $1", []interface{}{schema}
	}
}
