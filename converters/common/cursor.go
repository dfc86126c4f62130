package common

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// ColumnDescriptor describes one result column. Ordinal is 1-based.
type ColumnDescriptor struct {
	Name         string
	Category     Category
	Ordinal      int
	DeclaredType string
	DisplaySize  int
}

// Cursor is a forward-only sequence of rows. Column and Value take a
// 0-based index; Value is only valid after Next has returned true.
type Cursor interface {
	Next() bool
	ColumnCount() int
	Column(i int) ColumnDescriptor
	Value(i int) Cell
	Err() error
}

// Columns collects every descriptor of a cursor.
func Columns(cur Cursor) []ColumnDescriptor {
	cols := make([]ColumnDescriptor, cur.ColumnCount())
	for i := range cols {
		cols[i] = cur.Column(i)
	}
	return cols
}

// ColumnNames returns the names of cols in order.
func ColumnNames(cols []ColumnDescriptor) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}

// RowsCursor adapts *sql.Rows to Cursor.
type RowsCursor struct {
	rows *sql.Rows
	cols []ColumnDescriptor
	raw  []any
	ptrs []any
	err  error
}

// Ensure RowsCursor implements Cursor
var _ Cursor = (*RowsCursor)(nil)

// NewRowsCursor classifies the result columns of rows. The caller still owns
// rows and must close it.
func NewRowsCursor(rows *sql.Rows) (*RowsCursor, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to read column types: %w", err)
	}

	cols := make([]ColumnDescriptor, len(types))
	for i, ct := range types {
		declared := ct.DatabaseTypeName()
		size := 0
		if n, ok := ct.Length(); ok && n > 0 && n < 1<<20 {
			size = int(n)
		} else if p, _, ok := ct.DecimalSize(); ok && p > 0 {
			size = int(p)
		}
		cols[i] = ColumnDescriptor{
			Name:         ct.Name(),
			Category:     Classify(declared),
			Ordinal:      i + 1,
			DeclaredType: declared,
			DisplaySize:  size,
		}
	}

	raw := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range raw {
		ptrs[i] = &raw[i]
	}

	return &RowsCursor{rows: rows, cols: cols, raw: raw, ptrs: ptrs}, nil
}

func (c *RowsCursor) Next() bool {
	if c.err != nil {
		return false
	}
	if !c.rows.Next() {
		c.err = c.rows.Err()
		return false
	}
	if err := c.rows.Scan(c.ptrs...); err != nil {
		c.err = fmt.Errorf("failed to scan row: %w", err)
		return false
	}
	return true
}

func (c *RowsCursor) ColumnCount() int { return len(c.cols) }
func (c *RowsCursor) Column(i int) ColumnDescriptor { return c.cols[i] }
func (c *RowsCursor) Value(i int) Cell { return ValueToCell(c.raw[i], c.cols[i]) }
func (c *RowsCursor) Err() error { return c.err }

// SliceCursor iterates over rows held in memory.
type SliceCursor struct {
	cols []ColumnDescriptor
	rows []Row
	pos  int
}

// Ensure SliceCursor implements Cursor
var _ Cursor = (*SliceCursor)(nil)

// NewSliceCursor builds a cursor over rows. Ordinals are renumbered from 1.
func NewSliceCursor(cols []ColumnDescriptor, rows []Row) *SliceCursor {
	numbered := make([]ColumnDescriptor, len(cols))
	for i, c := range cols {
		c.Ordinal = i + 1
		numbered[i] = c
	}
	return &SliceCursor{cols: numbered, rows: rows, pos: -1}
}

func (c *SliceCursor) Next() bool {
	if c.pos+1 >= len(c.rows) {
		c.pos = len(c.rows)
		return false
	}
	c.pos++
	return true
}

func (c *SliceCursor) ColumnCount() int { return len(c.cols) }
func (c *SliceCursor) Column(i int) ColumnDescriptor { return c.cols[i] }
func (c *SliceCursor) Err() error { return nil }

func (c *SliceCursor) Value(i int) Cell {
	row := c.rows[c.pos]
	if i >= len(row) {
		return NullCell()
	}
	return row[i]
}

// ValueToCell converts a value scanned by database/sql into a Cell. The
// column category decides the cell kind; when the driver did not report a
// declared type the Go type of the value decides instead.
func ValueToCell(v any, col ColumnDescriptor) Cell {
	if v == nil {
		return NullCell()
	}
	if col.DeclaredType == "" {
		return inferCell(v)
	}

	switch col.Category {
	case Binary:
		switch t := v.(type) {
		case []byte:
			return BinaryCell(append([]byte(nil), t...))
		case string:
			return BinaryCell([]byte(t))
		}
		return BinaryCell([]byte(scalarText(v, col.DeclaredType)))
	case Numeric:
		if b, ok := v.([]byte); ok && normalizeType(col.DeclaredType) == "BIT" && len(b) <= 8 {
			return NumberCell(strconv.FormatUint(bitValue(b), 10))
		}
		return NumberCell(scalarText(v, col.DeclaredType))
	case Temporal:
		return TemporalCell(scalarText(v, col.DeclaredType))
	default:
		return TextCell(scalarText(v, col.DeclaredType))
	}
}

// bitValue decodes a MySQL BIT column, which the driver returns as
// big-endian bytes.
func bitValue(b []byte) uint64 {
	var n uint64
	for _, c := range b {
		n = n<<8 | uint64(c)
	}
	return n
}

func inferCell(v any) Cell {
	switch t := v.(type) {
	case []byte:
		return BinaryCell(append([]byte(nil), t...))
	case string:
		return TextCell(t)
	case time.Time:
		return TemporalCell(FormatTemporal(t, ""))
	case int64, int32, int, float64, float32, bool:
		return NumberCell(scalarText(v, ""))
	}
	return TextCell(fmt.Sprint(v))
}

func scalarText(v any, declared string) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int:
		return strconv.Itoa(t)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case time.Time:
		return FormatTemporal(t, declared)
	}
	return fmt.Sprint(v)
}

// FormatTemporal renders a time in the ISO-8601 shape matching the declared
// type: date only, time only, or date and time with optional fraction.
// Zone-bearing types keep their offset.
func FormatTemporal(t time.Time, declared string) string {
	switch normalizeType(declared) {
	case "DATE":
		return t.Format(time.DateOnly)
	case "TIME":
		return t.Format(time.TimeOnly)
	case "TIMETZ":
		return t.Format("15:04:05.999999999Z07:00")
	case "DATETIMEOFFSET", "TIMESTAMPTZ", "TIMESTAMP WITH TIME ZONE":
		return t.Format(time.RFC3339Nano)
	case "YEAR":
		return t.Format("2006")
	}
	if t.Nanosecond() != 0 {
		return t.Format("2006-01-02 15:04:05.999999999")
	}
	return t.Format(time.DateTime)
}
