package excel

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/darianmavgo/mktransfer/converters/common"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

var sheetNameReplacer = strings.NewReplacer(
	":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_",
)

// SheetName turns a table name into a valid worksheet name.
func SheetName(table string) string {
	name := sheetNameReplacer.Replace(table)
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	if name == "" {
		return "Sheet1"
	}
	return name
}

// Generator writes one worksheet with a bold header row through the
// excelize stream writer.
type Generator struct{}

// Ensure Generator implements Generator
var _ common.Generator = (*Generator)(nil)

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate implements common.Generator. Numeric text that survives a float
// round trip becomes a number cell; everything else is written as text.
func (g *Generator) Generate(cur common.Cursor, w io.Writer, table string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(table)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	cols := common.Columns(cur)
	for i, width := range common.ColumnWidths(cols) {
		if err := sw.SetColWidth(i+1, i+1, float64(min(width, 100))); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	header := make([]interface{}, len(cols))
	for i, c := range cols {
		header[i] = excelize.Cell{StyleID: bold, Value: c.Name}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	rowNum := 2
	values := make([]interface{}, len(cols))
	for cur.Next() {
		for i := range cols {
			values[i] = cellValue(cur.Value(i))
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return common.Encodingf("row %d: %v", rowNum-1, err)
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", rowNum-1, err)
		}
		rowNum++
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func cellValue(c common.Cell) interface{} {
	switch c.Kind {
	case common.KindNull:
		return nil
	case common.KindNumber:
		if v, err := strconv.ParseFloat(c.Text, 64); err == nil && strconv.FormatFloat(v, 'f', -1, 64) == c.Text {
			return v
		}
		return c.Text
	default:
		return c.String()
	}
}

// Parser reads the worksheet named after the table, or the first sheet
// when there is none. The first row names the columns.
type Parser struct{}

// Ensure Parser implements Parser
var _ common.Parser = (*Parser)(nil)

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse implements common.Parser. Empty cells are Null and rows with no
// value at all are skipped.
func (p *Parser) Parse(r io.Reader, table string) (*common.BatchPlan, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, common.Malformed(err, "failed to open Excel stream")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.Malformedf("no sheets found in Excel file")
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if strings.EqualFold(s, SheetName(table)) {
			sheet = s
			break
		}
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, common.Malformed(err, "failed to get rows iterator for sheet %s", sheet)
	}
	defer rows.Close()

	plan := &common.BatchPlan{Table: table}
	first := true
	for rows.Next() {
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, common.Malformed(err, "failed to read row")
		}

		if first {
			first = false
			for _, name := range cols {
				plan.Columns = append(plan.Columns, strings.TrimSpace(name))
			}
			continue
		}

		row := make(common.Row, max(len(cols), len(plan.Columns)))
		blank := true
		for i := range row {
			if i < len(cols) && cols[i] != "" {
				row[i] = common.TextCell(cols[i])
				blank = false
			} else {
				row[i] = common.NullCell()
			}
		}
		if !blank {
			plan.Rows = append(plan.Rows, row)
		}
	}
	if err := rows.Error(); err != nil {
		return nil, common.Malformed(err, "failed to iterate sheet %s", sheet)
	}

	return plan, nil
}
