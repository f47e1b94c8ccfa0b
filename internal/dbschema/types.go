// Package dbschema is the in-memory Schema Model (spec.md §4.3): Column,
// Table, Schema, constraints and indexes, with equality, DDL generation,
// and structural+semantic validation.
//
// Grounded on the teacher's schema/ast.go (Column/Index/Table field
// shapes), generalized away from sqldef's diff-oriented DDL-statement
// caching toward this spec's declarative build model, and on
// original_source/dbd/db/{db_column,db_table,db_schema}.py for exact
// validation-key semantics and default index naming.
package dbschema

import (
	"fmt"

	"github.com/dbd-project/dbd/internal/sqltype"
	"github.com/go-viper/mapstructure/v2"
)

// Column is a single table column (spec.md §3 "Column").
type Column struct {
	Name        string
	Type        sqltype.Descriptor
	PrimaryKey  bool
	Nullable    bool // default true
	Unique      bool
	Index       bool
	Default     *string
	ForeignKeys []string // each "table.column" or "schema.table.column"
}

// ConstraintKind tags a table-level Constraint variant.
type ConstraintKind string

const (
	PrimaryKeyConstraint ConstraintKind = "primaryKeyConstraint"
	ForeignKeyConstraint ConstraintKind = "foreignKeyConstraint"
	UniqueConstraint     ConstraintKind = "uniqueConstraint"
	CheckConstraint      ConstraintKind = "checkConstraint"
)

// Constraint is a table-level constraint (spec.md §3 "Table").
type Constraint struct {
	Kind       ConstraintKind
	Columns    []string // PrimaryKey, ForeignKey, Unique
	References []string // ForeignKey only, parallel to Columns
	SQLText    string   // Check only
}

// Index is a named, possibly-unique index over one or more columns.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// Table is an ordered-column table definition, optionally schema-qualified.
type Table struct {
	Name        string
	Schema      string // "" means top-level
	Columns     []Column
	Constraints []Constraint
	Indexes     []Index
}

// Column looks up a column by name, or returns nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// Schema is a named container of Tables (spec.md §3 "Schema").
type Schema struct {
	Name   string
	Tables map[string]*Table
}

// --- raw (YAML-shaped) decode DTOs -----------------------------------

// RawColumn mirrors the sidecar YAML shape of spec.md §6:
// `{ type, primary_key, nullable, unique, index, default, foreign_keys }`.
type RawColumn struct {
	Type        string        `mapstructure:"type"`
	PrimaryKey  bool          `mapstructure:"primary_key"`
	Nullable    *bool         `mapstructure:"nullable"`
	Unique      bool          `mapstructure:"unique"`
	Index       bool          `mapstructure:"index"`
	Default     interface{}   `mapstructure:"default"`
	ForeignKeys []string      `mapstructure:"foreign_keys"`
}

// RawConstraint mirrors `{ type, columns, references, sqltext }`.
type RawConstraint struct {
	Type       string   `mapstructure:"type"`
	Columns    []string `mapstructure:"columns"`
	References []string `mapstructure:"references"`
	SQLText    string   `mapstructure:"sqltext"`
}

// RawIndex mirrors `{ name?, columns, unique? }`.
type RawIndex struct {
	Name    string   `mapstructure:"name"`
	Columns []string `mapstructure:"columns"`
	Unique  bool     `mapstructure:"unique"`
}

// RawTable mirrors the sidecar YAML's `table:` key.
type RawTable struct {
	Columns     map[string]RawColumn `mapstructure:"columns"`
	Constraints []RawConstraint      `mapstructure:"constraints"`
	Indexes     []RawIndex           `mapstructure:"indexes"`
}

// ColumnOrder is the insertion order of a map-shaped `columns:` YAML
// mapping. YAML maps decode order is not otherwise preserved once routed
// through mapstructure's generic map[string]interface{}, so callers that
// care about DDL column order (spec.md invariant 3) must supply it
// alongside the decoded map (see executor's sidecar-YAML loader, which
// keeps the *yaml.Node key order).
type ColumnOrder []string

// FromCode builds a Table from a table name, its decoded RawTable, and an
// explicit column name order (DDL column order is insertion order, which
// a plain Go map cannot carry).
func FromCode(name, schema string, raw RawTable, order ColumnOrder) (*Table, error) {
	t := &Table{Name: name, Schema: schema}
	for _, colName := range order {
		rc, ok := raw.Columns[colName]
		if !ok {
			continue
		}
		col, err := columnFromRaw(colName, rc)
		if err != nil {
			return nil, err
		}
		t.Columns = append(t.Columns, col)
	}
	for _, rc := range raw.Constraints {
		t.Constraints = append(t.Constraints, Constraint{
			Kind:       ConstraintKind(rc.Type),
			Columns:    rc.Columns,
			References: rc.References,
			SQLText:    rc.SQLText,
		})
	}
	for i, ri := range raw.Indexes {
		name := ri.Name
		if name == "" {
			name = fmt.Sprintf("idx_%s_%d", t.Name, i+1)
		}
		t.Indexes = append(t.Indexes, Index{Name: name, Columns: ri.Columns, Unique: ri.Unique})
	}
	return t, nil
}

func columnFromRaw(name string, rc RawColumn) (Column, error) {
	desc, err := sqltype.Parse(rc.Type)
	if err != nil {
		return Column{}, err
	}
	nullable := true
	if rc.Nullable != nil {
		nullable = *rc.Nullable
	}
	var def *string
	if rc.Default != nil {
		s := fmt.Sprintf("%v", rc.Default)
		def = &s
	}
	return Column{
		Name:        name,
		Type:        desc,
		PrimaryKey:  rc.PrimaryKey,
		Nullable:    nullable,
		Unique:      rc.Unique,
		Index:       rc.Index,
		Default:     def,
		ForeignKeys: rc.ForeignKeys,
	}, nil
}

// DecodeRawTable decodes a loosely-typed YAML map (as produced by
// yaml.v3's Unmarshal into map[string]interface{}) into a RawTable using
// mapstructure, the Go analogue of the original's cerberus-validated
// dict-to-object step (see DESIGN.md).
func DecodeRawTable(m map[string]interface{}) (RawTable, error) {
	var raw RawTable
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &raw,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return raw, err
	}
	if err := dec.Decode(m); err != nil {
		return raw, err
	}
	return raw, nil
}

// ToCode renders t back into the loosely-typed map shape FromCode
// accepts, for round-trip testing (spec.md invariant 6).
func (t *Table) ToCode() (map[string]interface{}, ColumnOrder) {
	columns := map[string]interface{}{}
	var order ColumnOrder
	for _, c := range t.Columns {
		order = append(order, c.Name)
		entry := map[string]interface{}{
			"type":       sqltype.Render(c.Type, sqltype.DialectDefault),
			"primary_key": c.PrimaryKey,
			"nullable":    c.Nullable,
			"unique":      c.Unique,
			"index":       c.Index,
		}
		if c.Default != nil {
			entry["default"] = *c.Default
		}
		if len(c.ForeignKeys) > 0 {
			entry["foreign_keys"] = c.ForeignKeys
		}
		columns[c.Name] = entry
	}
	out := map[string]interface{}{"columns": columns}
	if len(t.Constraints) > 0 {
		var cs []interface{}
		for _, c := range t.Constraints {
			e := map[string]interface{}{"type": string(c.Kind)}
			if len(c.Columns) > 0 {
				e["columns"] = c.Columns
			}
			if len(c.References) > 0 {
				e["references"] = c.References
			}
			if c.SQLText != "" {
				e["sqltext"] = c.SQLText
			}
			cs = append(cs, e)
		}
		out["constraints"] = cs
	}
	if len(t.Indexes) > 0 {
		var is []interface{}
		for _, idx := range t.Indexes {
			is = append(is, map[string]interface{}{
				"name": idx.Name, "columns": idx.Columns, "unique": idx.Unique,
			})
		}
		out["indexes"] = is
	}
	return out, order
}
