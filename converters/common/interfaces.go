package common

import "io"

// Generator renders every row of a cursor into one external representation.
// It advances the cursor to exhaustion and never holds more than one row.
type Generator interface {
	Generate(cur Cursor, w io.Writer, table string) error
}

// Parser reads one external representation and deduces the column list and
// rows to load into table.
type Parser interface {
	Parse(r io.Reader, table string) (*BatchPlan, error)
}
