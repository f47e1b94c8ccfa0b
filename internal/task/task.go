// Package task is the Task Model (spec.md §4.4): the tagged-variant
// in-memory representation of everything a model directory crawl
// produces (table-backed data/SQL tasks and schema-level prolog/epilog
// DDL scripts), plus the DAG ordering logic that decides execution
// order across them.
//
// Grounded on original_source/dbd/tasks/{task,db_table_task,data_task,
// elt_task,ddl_task}.py for task-kind semantics, redesigned per spec.md
// §9 from a class hierarchy (Task -> DbTableTask -> {DataTask, EltTask})
// into a single tagged struct with a Kind discriminator, the idiomatic
// Go substitute for "ancestor carries shared fields, subclass overrides
// a couple of methods".
package task

import (
	"strings"

	"github.com/dbd-project/dbd/internal/dbschema"
	"github.com/dbd-project/dbd/internal/sqlanalyzer"
)

// Sentinel identifiers shared with every task ID and DAG-ordering rule
// (original_source/dbd/tasks/task.py's Task.TOP_LEVEL_SCHEMA_NAME etc).
const (
	TopLevelSchemaName = "*"
	idDelimiter        = "."
	TargetProlog       = "prolog"
	TargetEpilog       = "epilog"
)

// Kind discriminates a Task's variant.
type Kind int

const (
	// KindData loads one or more data files (CSV/JSON/Excel/Parquet/URL
	// reference) into a table.
	KindData Kind = iota
	// KindSQL materializes a table or view from a SELECT statement
	// (spec.md calls this an ELT task).
	KindSQL
	// KindDDL runs a schema prolog/epilog SQL script.
	KindDDL
)

// Mode controls what the executor's drop phase does to a table-backed task ahead of a
// rebuild (spec.md §4.6.4, original_source's `mode: drop|truncate`).
type Mode string

const (
	ModeDrop     Mode = "drop"
	ModeTruncate Mode = "truncate"
)

// Materialization controls whether a SQL task becomes a table or a view.
type Materialization string

const (
	MaterializeTable Materialization = "table"
	MaterializeView  Materialization = "view"
)

// Task is one node of the build's dependency graph. Exactly one of the
// Data/SQL/DDL-specific fields is meaningful, selected by Kind.
type Task struct {
	Kind Kind

	Target       string // table name, or "prolog"/"epilog" for DDL tasks
	TargetSchema string // "" for top-level / unqualified

	Table           *dbschema.Table // KindData, KindSQL: target table definition
	Mode            Mode            // KindData, KindSQL: drop|truncate before rebuild
	Materialization Materialization // KindSQL: table|view

	DataFiles []string // KindData: absolute paths or URLs, in declared order
	SQLText   string   // KindSQL: the rendered SELECT statement
	Statements []string // KindDDL: semicolon-split SQL statements, in file order
}

// GenerateID builds the canonical "schema.target" task identifier
// (original_source/dbd/tasks/task.py Task.generate_task_id).
func GenerateID(target, schema string) string {
	if schema == "" {
		schema = TopLevelSchemaName
	}
	return schema + idDelimiter + target
}

// ID returns t's canonical task identifier.
func (t *Task) ID() string {
	return GenerateID(t.Target, t.TargetSchema)
}

// FullyQualifiedTarget returns "schema.target", or bare "target" when
// TargetSchema is empty (spec.md glossary: "Fully qualified target").
func (t *Task) FullyQualifiedTarget() string {
	if t.TargetSchema == "" {
		return t.Target
	}
	return t.TargetSchema + "." + t.Target
}

// DependsOn returns the fully qualified targets this task must be
// created after. Foreign keys on the target table always count; a SQL
// task additionally depends on every table its SELECT references
// (callers pass those in via sqlRefs, extracted with sqlanalyzer.Tables).
//
// Grounded on DbTableTask.depends_on / EltTask.depends_on: both extract
// table names from raw references, then qualify any unqualified name
// with the task's own target schema before returning it.
func (t *Task) DependsOn(sqlRefs []string) ([]string, error) {
	var deps []string
	if t.Table != nil {
		for _, c := range t.Table.Columns {
			if len(c.ForeignKeys) == 0 {
				continue
			}
			if _, err := sqlanalyzer.ExtractForeignKeyTables(c.ForeignKeys); err != nil {
				return nil, err
			}
			for _, fk := range c.ForeignKeys {
				// Drop the trailing ".column": "table" or "schema.table".
				tbl := fk[:strings.LastIndex(fk, ".")]
				deps = append(deps, qualifyDependency(t.TargetSchema, tbl))
			}
		}
	}
	for _, ref := range sqlRefs {
		deps = append(deps, qualifyDependency(t.TargetSchema, ref))
	}
	return deps, nil
}

// qualifyDependency mirrors DbTableTask.depends_on's rule: a reference
// with fewer than two dotted segments is assumed to live in the task's
// own target schema.
func qualifyDependency(targetSchema, ref string) string {
	if strings.Count(ref, ".") >= 1 {
		return ref
	}
	return GenerateID(ref, targetSchema)
}
