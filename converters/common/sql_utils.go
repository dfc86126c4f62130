package common

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)
	columnName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ValidateIdentifier rejects table names that cannot be interpolated into
// SQL text unquoted. An optional schema prefix is allowed.
func ValidateIdentifier(name string) error {
	if !identifier.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// ValidateColumns rejects column names read from a document that cannot be
// interpolated into an INSERT column list unquoted.
func ValidateColumns(columns []string) error {
	for i, c := range columns {
		if !columnName.MatchString(c) {
			return Malformedf("invalid column name %q at position %d", c, i+1)
		}
	}
	return nil
}

// QuoteText wraps s in single quotes, doubling embedded quotes.
func QuoteText(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// SQLLiteral renders a cell as a SQL literal by its kind alone.
func SQLLiteral(c Cell, d Dialect) string {
	switch c.Kind {
	case KindNull:
		return "NULL"
	case KindNumber:
		if c.Text == "" {
			return "NULL"
		}
		return c.Text
	case KindBinary:
		return ToSQLLiteral(c.Bytes, d)
	default:
		return QuoteText(c.Text)
	}
}

// ImportLiteral renders a cell read from an external document. Text that is
// already written as a binary literal is re-emitted in the target dialect
// instead of being quoted.
func ImportLiteral(c Cell, d Dialect) string {
	if c.Kind == KindText && LooksLikeSQLBinaryLiteral(c.Text) {
		if b, err := ParseSQLBinaryLiteral(c.Text); err == nil {
			return ToSQLLiteral(b, d)
		}
	}
	return SQLLiteral(c, d)
}

// GenInsertSQL generates one INSERT statement for a single row. The row must
// be as long as columns.
func GenInsertSQL(table string, columns []string, row Row, d Dialect) (string, error) {
	if table == "" || len(columns) == 0 {
		return "", fmt.Errorf("table name and columns are required")
	}
	if len(row) != len(columns) {
		return "", fmt.Errorf("row has %d values, want %d", len(row), len(columns))
	}

	var builder strings.Builder
	builder.Grow(len(table) + len(columns)*24) // Heuristic pre-allocation

	builder.WriteString("INSERT INTO ")
	builder.WriteString(table)
	builder.WriteString(" (")
	builder.WriteString(strings.Join(columns, ", "))
	builder.WriteString(") VALUES (")
	for i, c := range row {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(ImportLiteral(c, d))
	}
	builder.WriteByte(')')
	return builder.String(), nil
}
