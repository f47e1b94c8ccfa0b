package dbschema

import (
	"sort"

	"github.com/dbd-project/dbd/internal/sqltype"
)

// Equal reports whether a and b describe the same table: same name and
// schema, same columns in the same declared order (column order is DDL
// order and so is significant), and the same constraints/indexes as sets
// (their declaration order does not matter).
//
// Grounded on original_source/dbd/db/db_table.py's __eq__, which compares
// column lists positionally but constraint/index lists as unordered
// collections.
func Equal(a, b *Table) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Name != b.Name || a.Schema != b.Schema {
		return false
	}
	if len(a.Columns) != len(b.Columns) {
		return false
	}
	for i := range a.Columns {
		if !columnsEqual(a.Columns[i], b.Columns[i]) {
			return false
		}
	}
	return constraintSetsEqual(a.Constraints, b.Constraints) && indexSetsEqual(a.Indexes, b.Indexes)
}

func columnsEqual(a, b Column) bool {
	if a.Name != b.Name || !typesEqual(a.Type, b.Type) {
		return false
	}
	if a.PrimaryKey != b.PrimaryKey || a.Nullable != b.Nullable || a.Unique != b.Unique || a.Index != b.Index {
		return false
	}
	if (a.Default == nil) != (b.Default == nil) {
		return false
	}
	if a.Default != nil && *a.Default != *b.Default {
		return false
	}
	return stringsEqualAsSet(a.ForeignKeys, b.ForeignKeys)
}

// typesEqual compares two descriptors by value (kind, length, precision,
// scale), not by the addresses of their optional fields.
func typesEqual(a, b sqltype.Descriptor) bool {
	return a.Kind == b.Kind && intPtrEqual(a.Length, b.Length) &&
		intPtrEqual(a.Precision, b.Precision) && intPtrEqual(a.Scale, b.Scale)
}

func intPtrEqual(a, b *int) bool {
	return (a == nil) == (b == nil) && (a == nil || *a == *b)
}

func constraintSetsEqual(a, b []Constraint) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, ca := range a {
		found := false
		for j, cb := range b {
			if used[j] {
				continue
			}
			if constraintsEqual(ca, cb) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func constraintsEqual(a, b Constraint) bool {
	return a.Kind == b.Kind && a.SQLText == b.SQLText &&
		stringsEqualOrdered(a.Columns, b.Columns) && stringsEqualOrdered(a.References, b.References)
}

func indexSetsEqual(a, b []Index) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, ia := range a {
		found := false
		for j, ib := range b {
			if used[j] {
				continue
			}
			if ia.Name == ib.Name && ia.Unique == ib.Unique && stringsEqualAsSet(ia.Columns, ib.Columns) {
				used[j] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func stringsEqualOrdered(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringsEqualAsSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]string(nil), a...)
	sb := append([]string(nil), b...)
	sort.Strings(sa)
	sort.Strings(sb)
	return stringsEqualOrdered(sa, sb)
}
