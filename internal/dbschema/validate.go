package dbschema

import (
	"fmt"

	"github.com/dbd-project/dbd/internal/sqlanalyzer"
	"github.com/dbd-project/dbd/internal/sqltype"
)

// FieldError is one structural validation failure, addressed by a
// dotted path into the table definition (e.g. "columns.email.type").
type FieldError struct {
	Path    string
	Message string
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

var validConstraintKinds = map[ConstraintKind]bool{
	PrimaryKeyConstraint: true, ForeignKeyConstraint: true,
	UniqueConstraint: true, CheckConstraint: true,
}

// ValidateRawTable structurally validates a decoded RawTable before
// FromCode is applied, mirroring the cerberus column/constraint schemas
// of original_source/dbd/db/{db_column,db_table}.py: every column's type
// must parse, every foreign key must be table-qualified, every
// constraint must name a known kind and the columns it needs, and every
// index must reference at least one column.
func ValidateRawTable(name string, raw RawTable) []FieldError {
	var errs []FieldError

	for colName, rc := range raw.Columns {
		path := "columns." + colName
		if rc.Type == "" {
			errs = append(errs, FieldError{path + ".type", "type is required"})
		} else if _, err := sqltype.Parse(rc.Type); err != nil {
			errs = append(errs, FieldError{path + ".type", err.Error()})
		}
		if len(rc.ForeignKeys) > 0 {
			if _, err := sqlanalyzer.ExtractForeignKeyTables(rc.ForeignKeys); err != nil {
				errs = append(errs, FieldError{path + ".foreign_keys", err.Error()})
			}
		}
	}

	for i, rc := range raw.Constraints {
		path := fmt.Sprintf("constraints[%d]", i)
		kind := ConstraintKind(rc.Type)
		if !validConstraintKinds[kind] {
			errs = append(errs, FieldError{path + ".type", "unknown constraint type: " + rc.Type})
			continue
		}
		if kind == CheckConstraint {
			if rc.SQLText == "" {
				errs = append(errs, FieldError{path + ".sqltext", "check constraint requires sqltext"})
			}
			continue
		}
		if len(rc.Columns) == 0 {
			errs = append(errs, FieldError{path + ".columns", "constraint requires at least one column"})
		}
		for _, cn := range rc.Columns {
			if _, ok := raw.Columns[cn]; !ok {
				errs = append(errs, FieldError{path + ".columns", "references undeclared column: " + cn})
			}
		}
		if kind == ForeignKeyConstraint && len(rc.References) != len(rc.Columns) {
			errs = append(errs, FieldError{path + ".references", "must have one reference per column"})
		}
	}

	for i, ri := range raw.Indexes {
		path := fmt.Sprintf("indexes[%d]", i)
		if len(ri.Columns) == 0 {
			errs = append(errs, FieldError{path + ".columns", "index requires at least one column"})
		}
		for _, cn := range ri.Columns {
			if _, ok := raw.Columns[cn]; !ok {
				errs = append(errs, FieldError{path + ".columns", "references undeclared column: " + cn})
			}
		}
	}

	return errs
}
