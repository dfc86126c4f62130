package txt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/darianmavgo/mktransfer/converters/common"
)

// Border glyphs of the box table.
const (
	TopLeft     = "╔"
	TopMid      = "╦"
	TopRight    = "╗"
	HeadLeft    = "╠"
	HeadMid     = "╬"
	HeadRight   = "╣"
	RowLeft     = "╟"
	RowMid      = "╫"
	RowRight    = "╢"
	BottomLeft  = "╚"
	BottomMid   = "╩"
	BottomRight = "╝"
	DoubleLine  = "═"
	SingleLine  = "─"
	DoubleSide  = "║"
)

// Generator writes a fixed-width table framed with box-drawing characters.
type Generator struct{}

// Ensure Generator implements Generator
var _ common.Generator = (*Generator)(nil)

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate implements common.Generator. Column widths come from
// common.ColumnWidth; longer values are truncated with an ellipsis.
func (g *Generator) Generate(cur common.Cursor, w io.Writer, table string) error {
	bw := bufio.NewWriterSize(w, 65536)

	cols := common.Columns(cur)
	widths := common.ColumnWidths(cols)
	aligns := make([]common.Align, len(cols))
	for i, c := range cols {
		aligns[i] = common.ColumnAlign(c)
	}

	bw.WriteString(rule(widths, TopLeft, TopMid, TopRight, DoubleLine))
	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = common.Fit(c.Name, widths[i], common.AlignCenter)
	}
	bw.WriteString(line(headers))

	headSep := rule(widths, HeadLeft, HeadMid, HeadRight, DoubleLine)
	rowSep := rule(widths, RowLeft, RowMid, RowRight, SingleLine)

	var row bytes.Buffer
	cells := make([]string, len(cols))
	n := 0
	for cur.Next() {
		row.Reset()
		if n == 0 {
			row.WriteString(headSep)
		} else {
			row.WriteString(rowSep)
		}
		for i := range cols {
			cells[i] = common.Fit(common.DisplayText(cur.Value(i)), widths[i], aligns[i])
		}
		row.WriteString(line(cells))

		if _, err := bw.Write(row.Bytes()); err != nil {
			return fmt.Errorf("failed to write text row: %w", err)
		}
		n++
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	bw.WriteString(rule(widths, BottomLeft, BottomMid, BottomRight, DoubleLine))
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush text table: %w", err)
	}
	return nil
}

// rule draws a horizontal border. Each segment spans the column width plus
// its one-space margins.
func rule(widths []int, left, mid, right, fill string) string {
	var sb strings.Builder
	sb.WriteString(left)
	for i, w := range widths {
		if i > 0 {
			sb.WriteString(mid)
		}
		sb.WriteString(strings.Repeat(fill, w+2))
	}
	sb.WriteString(right)
	sb.WriteByte('\n')
	return sb.String()
}

func line(cells []string) string {
	var sb strings.Builder
	sb.WriteString(DoubleSide)
	for i, c := range cells {
		if i > 0 {
			sb.WriteString(DoubleSide)
		}
		sb.WriteByte(' ')
		sb.WriteString(c)
		sb.WriteByte(' ')
	}
	sb.WriteString(DoubleSide)
	sb.WriteByte('\n')
	return sb.String()
}
