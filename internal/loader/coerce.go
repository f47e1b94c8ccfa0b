package loader

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dbd-project/dbd/internal/dbderrors"
	"github.com/dbd-project/dbd/internal/sqltype"
	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order for DATE/DATETIME/TIMESTAMP columns,
// covering the shapes spec.md §4.5.2 calls out (bare date, space- and
// T-separated datetime, with and without fractional seconds).
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339,
}

// CoerceValue converts a raw cell string into the Go value appropriate
// for desc under dialect, per spec.md §4.5.2's type-coercion pipeline:
// DECIMAL via shopspring/decimal, booleans per-dialect (MySQL represents
// them as the integers 0/1), dates/timestamps parsed then re-formatted
// as the dialect-specific string BigQuery and Snowflake drivers expect,
// and everything else passed through as int64/float64/string. Empty or
// NaN INTEGER/FLOAT input becomes NULL, and temporal input matching no
// known layout becomes NULL; INTEGER/FLOAT input that is not a number
// at all, and DECIMAL input that does not parse (empty input included),
// return an error.
func CoerceValue(raw string, desc sqltype.Descriptor, dialect sqltype.Dialect) (any, error) {
	raw = strings.TrimSpace(raw)
	switch desc.Kind {
	case sqltype.Boolean:
		return coerceBool(raw, dialect), nil
	case sqltype.Integer, sqltype.Smallint:
		return coerceInteger(raw)
	case sqltype.Float, sqltype.Real, sqltype.Double:
		return coerceFloat(raw)
	case sqltype.Decimal, sqltype.Numeric:
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, dbderrors.Wrap(dbderrors.KindDatabase, err, "invalid decimal: "+raw)
		}
		return d.StringFixed(int32(scaleOf(desc))), nil
	case sqltype.Date, sqltype.Datetime, sqltype.Timestamp:
		return coerceTemporal(raw, desc.Kind, dialect), nil
	default:
		return raw, nil
	}
}

func scaleOf(desc sqltype.Descriptor) int {
	if desc.Scale != nil {
		return *desc.Scale
	}
	return 0
}

// coerceInteger parses raw through an intermediate float64 so
// "3.0"-style numeric strings coerce cleanly, per spec.md §4.5.2.
// Empty strings and NaN become NULL unconditionally, regardless of the
// column's own nullability; anything else that isn't even a valid
// number is still a hard error.
func coerceInteger(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, dbderrors.Wrap(dbderrors.KindDatabase, err, "invalid integer: "+raw)
	}
	if math.IsNaN(f) {
		return nil, nil
	}
	return int64(f), nil
}

// coerceFloat casts raw to a native float64, per spec.md §4.5.2. Empty
// strings and NaN become NULL unconditionally.
func coerceFloat(raw string) (any, error) {
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, dbderrors.Wrap(dbderrors.KindDatabase, err, "invalid float: "+raw)
	}
	if math.IsNaN(f) {
		return nil, nil
	}
	return f, nil
}

// coerceBool follows spec.md §4.5.2: the string forms {true,1,t,y,yes}
// (case-insensitive) are true; any other numeric string falls back to
// an integer or float non-zero check (float NaN is NULL); anything
// else is false. Never errors - an unrecognized token is just false.
func coerceBool(raw string, dialect sqltype.Dialect) any {
	switch strings.ToLower(raw) {
	case "true", "1", "t", "y", "yes":
		return boolResult(true, dialect)
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return boolResult(n != 0, dialect)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(f) {
			return nil
		}
		return boolResult(f != 0, dialect)
	}
	return boolResult(false, dialect)
}

// boolResult renders b as dialect expects: MySQL has no native BOOLEAN
// and stores 0/1, every other dialect gets a native bool.
func boolResult(b bool, dialect sqltype.Dialect) any {
	if dialect == sqltype.DialectMySQL {
		if b {
			return int64(1)
		}
		return int64(0)
	}
	return b
}

// coerceTemporal parses raw against dateLayouts in order; an
// unparseable value becomes NULL rather than failing the load, per
// spec.md §4.5.2.
func coerceTemporal(raw string, kind sqltype.Kind, dialect sqltype.Dialect) any {
	var t time.Time
	var err error
	parsed := false
	for _, layout := range dateLayouts {
		t, err = time.Parse(layout, raw)
		if err == nil {
			parsed = true
			break
		}
	}
	if !parsed {
		return nil
	}

	switch dialect {
	case sqltype.DialectBigQuery, sqltype.DialectSnowflake:
		// Both drivers expect a pre-formatted string rather than a
		// native time.Time for bulk-insert parameters.
		if kind == sqltype.Date {
			return t.Format("2006-01-02")
		}
		return t.Format("2006-01-02 15:04:05.999999999")
	default:
		return t
	}
}
