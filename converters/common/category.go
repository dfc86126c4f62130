package common

import (
	"strings"
)

// Category is the semantic class a column's declared type falls into.
// Every generator and parser decides rendering rules per category.
type Category int

const (
	Text Category = iota
	Numeric
	Temporal
	Binary
)

func (c Category) String() string {
	switch c {
	case Numeric:
		return "numeric"
	case Temporal:
		return "temporal"
	case Binary:
		return "binary"
	default:
		return "text"
	}
}

// categories maps normalized database type names to their category.
// Names not present fall back to Text.
var categories = map[string]Category{
	// Numeric
	"BIT":              Numeric,
	"BOOL":             Numeric,
	"BOOLEAN":          Numeric,
	"TINYINT":          Numeric,
	"SMALLINT":         Numeric,
	"MEDIUMINT":        Numeric,
	"INT":              Numeric,
	"INTEGER":          Numeric,
	"BIGINT":           Numeric,
	"INT2":             Numeric,
	"INT4":             Numeric,
	"INT8":             Numeric,
	"SERIAL":           Numeric,
	"BIGSERIAL":        Numeric,
	"DECIMAL":          Numeric,
	"DEC":              Numeric,
	"NUMERIC":          Numeric,
	"NUMBER":           Numeric,
	"MONEY":            Numeric,
	"SMALLMONEY":       Numeric,
	"FLOAT":            Numeric,
	"FLOAT4":           Numeric,
	"FLOAT8":           Numeric,
	"REAL":             Numeric,
	"DOUBLE":           Numeric,
	"DOUBLE PRECISION": Numeric,

	// Temporal
	"DATE":           Temporal,
	"TIME":           Temporal,
	"DATETIME":       Temporal,
	"DATETIME2":      Temporal,
	"SMALLDATETIME":  Temporal,
	"DATETIMEOFFSET": Temporal,
	"TIMESTAMP":      Temporal,
	"TIMESTAMPTZ":    Temporal,
	"TIMETZ":         Temporal,
	"YEAR":           Temporal,

	// Binary
	"BLOB":          Binary,
	"TINYBLOB":      Binary,
	"MEDIUMBLOB":    Binary,
	"LONGBLOB":      Binary,
	"BINARY":        Binary,
	"VARBINARY":     Binary,
	"LONGVARBINARY": Binary,
	"IMAGE":         Binary,
	"BYTEA":         Binary,
}

var booleanTypes = map[string]bool{
	"BIT":     true,
	"BOOL":    true,
	"BOOLEAN": true,
}

// normalizeType upper-cases a declared type and strips length/precision
// arguments and sign modifiers: "decimal(10,2) unsigned" -> "DECIMAL".
func normalizeType(declared string) string {
	t := strings.ToUpper(strings.TrimSpace(declared))
	if idx := strings.IndexByte(t, '('); idx >= 0 {
		t = strings.TrimSpace(t[:idx])
	}
	t = strings.TrimSuffix(t, " UNSIGNED")
	t = strings.TrimSuffix(t, " ZEROFILL")
	t = strings.TrimPrefix(t, "UNSIGNED ")
	return strings.TrimSpace(t)
}

// Classify maps a declared column type to its Category.
// Unknown types are Text.
func Classify(declaredType string) Category {
	if c, ok := categories[normalizeType(declaredType)]; ok {
		return c
	}
	return Text
}

// IsBooleanType reports whether a declared type holds boolean-like values.
// TINYINT(1) is the MySQL spelling of BOOLEAN.
func IsBooleanType(declaredType string) bool {
	if booleanTypes[normalizeType(declaredType)] {
		return true
	}
	t := strings.ReplaceAll(strings.ToUpper(declaredType), " ", "")
	return strings.HasPrefix(t, "TINYINT(1)")
}
