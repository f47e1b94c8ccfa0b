// Package sqltype parses dialect-neutral column type strings like
// "VARCHAR(50)" or "DECIMAL(13,2)" into a Descriptor, and renders a
// Descriptor back out as a concrete dialect's type name.
//
// Grounded on original_source/dbd/utils/sql_parser.py's
// parse_alchemy_data_type (core type name + length + scale extraction)
// and the teacher's schema/ast.go Column, which carries length/scale as
// optional numeric attributes alongside a bare type-kind string.
package sqltype

import (
	"strconv"
	"strings"

	"github.com/dbd-project/dbd/internal/dbderrors"
)

// Kind is one of the recognized column type kinds (spec.md §3).
type Kind string

const (
	Char      Kind = "CHAR"
	Varchar   Kind = "VARCHAR"
	Text      Kind = "TEXT"
	Integer   Kind = "INTEGER"
	Smallint  Kind = "SMALLINT"
	Decimal   Kind = "DECIMAL"
	Numeric   Kind = "NUMERIC"
	Float     Kind = "FLOAT"
	Real      Kind = "REAL"
	Double    Kind = "DOUBLE"
	Boolean   Kind = "BOOLEAN"
	Date      Kind = "DATE"
	Datetime  Kind = "DATETIME"
	Timestamp Kind = "TIMESTAMP"
)

var knownKinds = map[Kind]bool{
	Char: true, Varchar: true, Text: true, Integer: true, Smallint: true,
	Decimal: true, Numeric: true, Float: true, Real: true, Double: true,
	Boolean: true, Date: true, Datetime: true, Timestamp: true,
}

// lengthRequired kinds are invalid without a length; text-like kinds may
// omit it (spec.md §4.1 edge cases).
var lengthRequired = map[Kind]bool{Char: true, Varchar: true}

// Dialect identifies a target database for Render.
type Dialect string

const (
	DialectPostgres  Dialect = "postgres"
	DialectMySQL     Dialect = "mysql"
	DialectSnowflake Dialect = "snowflake"
	DialectBigQuery  Dialect = "bigquery"
	DialectRedshift  Dialect = "redshift"
	DialectDefault   Dialect = "default"
)

// Descriptor is a dialect-neutral parsed column type.
type Descriptor struct {
	Kind      Kind
	Length    *int
	Precision *int
	Scale     *int
}

// Parse parses a SQL-ish type fragment such as "VARCHAR(50)" or
// "DECIMAL(13,2)" into a Descriptor. Input is case-insensitive; the
// Descriptor's Kind is always canonical uppercase.
func Parse(typeString string) (Descriptor, error) {
	s := strings.TrimSpace(typeString)
	name, args, err := splitNameArgs(s)
	if err != nil {
		return Descriptor{}, err
	}
	kind := Kind(strings.ToUpper(name))
	if !knownKinds[kind] {
		return Descriptor{}, dbderrors.New(dbderrors.KindUnsupportedType,
			"unsupported column type kind: "+name)
	}

	d := Descriptor{Kind: kind}
	switch kind {
	case Char, Varchar:
		if len(args) == 0 {
			return Descriptor{}, dbderrors.New(dbderrors.KindUnsupportedType,
				string(kind)+" requires a length, e.g. "+string(kind)+"(50)")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return Descriptor{}, dbderrors.New(dbderrors.KindUnsupportedType, "invalid length for "+string(kind))
		}
		d.Length = &n
	case Decimal, Numeric:
		if len(args) >= 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return Descriptor{}, dbderrors.New(dbderrors.KindUnsupportedType, "invalid precision")
			}
			d.Precision = &n
		}
		scale := 0
		if len(args) >= 2 {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return Descriptor{}, dbderrors.New(dbderrors.KindUnsupportedType, "invalid scale")
			}
			scale = n
		}
		d.Scale = &scale
	default:
		// TEXT-like and other length-bearing kinds: length optional.
		if len(args) >= 1 {
			n, err := strconv.Atoi(args[0])
			if err == nil {
				d.Length = &n
			}
		}
	}
	return d, nil
}

// splitNameArgs splits "VARCHAR(50)" into ("VARCHAR", ["50"]) and
// "TIMESTAMP" into ("TIMESTAMP", nil).
func splitNameArgs(s string) (string, []string, error) {
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return s, nil, nil
	}
	if !strings.HasSuffix(s, ")") {
		return "", nil, dbderrors.New(dbderrors.KindUnsupportedType, "malformed type string: "+s)
	}
	name := strings.TrimSpace(s[:open])
	inner := s[open+1 : len(s)-1]
	var args []string
	for _, p := range strings.Split(inner, ",") {
		args = append(args, strings.TrimSpace(p))
	}
	return name, args, nil
}

// Render emits dialect's concrete column type name for d.
func Render(d Descriptor, dialect Dialect) string {
	if dialect == DialectBigQuery {
		return renderBigQuery(d)
	}
	switch d.Kind {
	case Char, Varchar:
		if d.Length != nil {
			return string(d.Kind) + "(" + strconv.Itoa(*d.Length) + ")"
		}
		return string(d.Kind)
	case Decimal, Numeric:
		scale := 0
		if d.Scale != nil {
			scale = *d.Scale
		}
		if d.Precision != nil {
			return string(d.Kind) + "(" + strconv.Itoa(*d.Precision) + "," + strconv.Itoa(scale) + ")"
		}
		return string(d.Kind)
	default:
		if d.Length != nil {
			return string(d.Kind) + "(" + strconv.Itoa(*d.Length) + ")"
		}
		return string(d.Kind)
	}
}

// renderBigQuery applies the coarser BigQuery type mapping from spec.md
// §4.1: CHAR/VARCHAR/TEXT -> STRING, DECIMAL/NUMERIC -> FLOAT,
// DATETIME -> DATETIME, TIMESTAMP -> TIMESTAMP, otherwise uppercase kind.
func renderBigQuery(d Descriptor) string {
	switch d.Kind {
	case Char, Varchar, Text:
		return "STRING"
	case Decimal, Numeric:
		return "FLOAT"
	case Datetime:
		return "DATETIME"
	case Timestamp:
		return "TIMESTAMP"
	default:
		return string(d.Kind)
	}
}
