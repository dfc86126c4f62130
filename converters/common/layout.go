package common

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Align is the horizontal alignment of a column in fixed-width layouts.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
	AlignCenter
)

const (
	MinColumnWidth   = 11
	MaxColumnWidth   = 200
	FixedColumnWidth = 10
)

// fixedWidthColumns always get FixedColumnWidth regardless of content.
var fixedWidthColumns = map[string]bool{
	"sexo":   true,
	"genero": true,
	"gênero": true,
}

// ColumnWidth is the content width of a column in the fixed-width and HTML
// reports: the larger of the header width and the declared display size,
// clamped to [MinColumnWidth, MaxColumnWidth].
func ColumnWidth(col ColumnDescriptor) int {
	if fixedWidthColumns[strings.ToLower(strings.TrimSpace(col.Name))] {
		return FixedColumnWidth
	}
	w := max(runewidth.StringWidth(col.Name), col.DisplaySize)
	return min(max(w, MinColumnWidth), MaxColumnWidth)
}

// ColumnWidths computes ColumnWidth for every column.
func ColumnWidths(cols []ColumnDescriptor) []int {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = ColumnWidth(c)
	}
	return widths
}

// ColumnAlign: numbers right, dates and booleans centered, everything else left.
func ColumnAlign(col ColumnDescriptor) Align {
	if IsBooleanType(col.DeclaredType) {
		return AlignCenter
	}
	switch col.Category {
	case Numeric:
		return AlignRight
	case Temporal:
		return AlignCenter
	}
	return AlignLeft
}

var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

// DisplayText is the single-line text shown for a cell in a report.
func DisplayText(c Cell) string {
	return flatten.Replace(c.String())
}

// Fit truncates s to width display cells, marking the cut with an ellipsis,
// and pads it according to the alignment.
func Fit(s string, width int, a Align) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	switch a {
	case AlignRight:
		return runewidth.FillLeft(s, width)
	case AlignCenter:
		gap := width - runewidth.StringWidth(s)
		left := gap / 2
		return strings.Repeat(" ", left) + runewidth.FillRight(s, width-left)
	default:
		return runewidth.FillRight(s, width)
	}
}

// WidthPercents converts column widths into percentages of the total.
func WidthPercents(widths []int) []float64 {
	total := 0
	for _, w := range widths {
		total += w
	}
	pct := make([]float64, len(widths))
	if total == 0 {
		return pct
	}
	for i, w := range widths {
		pct[i] = float64(w) * 100 / float64(total)
	}
	return pct
}
