package xml

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/darianmavgo/mktransfer/converters/common"
)

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

var elementName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// RowElement is the element name of one row: the table name with its first
// letter upper-cased.
func RowElement(table string) string {
	r, size := utf8.DecodeRuneInString(table)
	if r == utf8.RuneError {
		return table
	}
	return string(unicode.ToUpper(r)) + table[size:]
}

// Generator writes a <data> document with one element per row and one
// child element per column.
type Generator struct {
	opts common.Options
}

// Ensure Generator implements Generator
var _ common.Generator = (*Generator)(nil)

// NewGenerator creates a Generator stamped with the current time.
func NewGenerator() *Generator {
	return NewGeneratorWithOptions(common.DefaultOptions())
}

// NewGeneratorWithOptions creates a Generator. Only Clock is used.
func NewGeneratorWithOptions(opts common.Options) *Generator {
	return &Generator{opts: opts}
}

// Generate implements common.Generator. Null cells become self-closing
// elements flagged with xsi:nil.
func (g *Generator) Generate(cur common.Cursor, w io.Writer, table string) error {
	rowName := RowElement(table)
	if !elementName.MatchString(rowName) {
		return common.Encodingf("table name %q is not a valid XML element name", table)
	}
	cols := common.Columns(cur)
	for _, c := range cols {
		if !elementName.MatchString(c.Name) {
			return common.Encodingf("column name %q is not a valid XML element name", c.Name)
		}
	}

	bw := bufio.NewWriterSize(w, 65536)
	bw.WriteString(xml.Header)
	bw.WriteString(`<data exported_table="`)
	xml.EscapeText(bw, []byte(table))
	bw.WriteString(`" timestamp="`)
	bw.WriteString(g.opts.Now().Format(time.RFC3339))
	bw.WriteString(`" xmlns:xsi="` + xsiNamespace + `">` + "\n")

	var row bytes.Buffer
	for cur.Next() {
		row.Reset()
		row.WriteString("  <" + rowName + ">\n")
		for i, c := range cols {
			v := cur.Value(i)
			if v.IsNull() {
				row.WriteString("    <" + c.Name + ` xsi:nil="true"/>` + "\n")
				continue
			}
			text := v.String()
			if err := checkChars(text); err != nil {
				return common.Encodingf("column %q: %v", c.Name, err)
			}
			row.WriteString("    <" + c.Name + ">")
			if err := xml.EscapeText(&row, []byte(text)); err != nil {
				return common.Encodingf("column %q: %v", c.Name, err)
			}
			row.WriteString("</" + c.Name + ">\n")
		}
		row.WriteString("  </" + rowName + ">\n")

		if _, err := bw.Write(row.Bytes()); err != nil {
			return fmt.Errorf("failed to write XML row: %w", err)
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	bw.WriteString("</data>\n")
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush XML: %w", err)
	}
	return nil
}

// checkChars rejects text that XML 1.0 cannot carry. xml.EscapeText would
// replace those characters silently.
func checkChars(s string) error {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return fmt.Errorf("invalid UTF-8 at byte %d", i)
		}
		if !isXMLChar(r) {
			return fmt.Errorf("character %U at byte %d is not allowed in XML", r, i)
		}
		i += size
	}
	return nil
}

func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// Parser collects every element named after the table as a row.
type Parser struct {
	strict bool
}

// Ensure Parser implements Parser
var _ common.Parser = (*Parser)(nil)

// NewParser creates a lenient Parser.
func NewParser() *Parser {
	return NewParserWithOptions(common.DefaultOptions())
}

// NewParserWithOptions creates a Parser. With StrictRecords set, a row whose
// child element names differ from the first row's is rejected.
func NewParserWithOptions(opts common.Options) *Parser {
	return &Parser{strict: opts.StrictRecords}
}

type field struct {
	name string
	null bool
	text strings.Builder
}

// Parse implements common.Parser. A child carrying nil="true" in any
// namespace is Null; an empty child is an empty string.
func (p *Parser) Parse(r io.Reader, table string) (*common.BatchPlan, error) {
	dec := xml.NewDecoder(bufio.NewReaderSize(r, 65536))
	rowName := RowElement(table)
	plan := &common.BatchPlan{Table: table}

	var (
		depth    int
		rowDepth int // depth of the open row element, 0 when outside a row
		record   map[string]common.Cell
		order    []string
		cur      *field
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, common.Malformed(err, "failed to decode XML")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			switch {
			case rowDepth == 0 && t.Name.Local == rowName:
				rowDepth = depth
				record = map[string]common.Cell{}
				order = nil
			case rowDepth != 0 && depth == rowDepth+1:
				cur = &field{name: t.Name.Local, null: isNil(t.Attr)}
			}

		case xml.CharData:
			if cur != nil {
				cur.text.Write(t)
			}

		case xml.EndElement:
			switch {
			case cur != nil && depth == rowDepth+1:
				if _, seen := record[cur.name]; !seen {
					order = append(order, cur.name)
				}
				if cur.null {
					record[cur.name] = common.NullCell()
				} else {
					record[cur.name] = common.TextCell(cur.text.String())
				}
				cur = nil
			case rowDepth != 0 && depth == rowDepth:
				if err := p.appendRow(plan, record, order); err != nil {
					return nil, err
				}
				rowDepth = 0
			}
			depth--
		}
	}

	if rowDepth != 0 {
		return nil, common.Malformedf("unterminated <%s> element", rowName)
	}
	return plan, nil
}

func (p *Parser) appendRow(plan *common.BatchPlan, record map[string]common.Cell, order []string) error {
	if len(plan.Rows) == 0 {
		plan.Columns = order
	} else if p.strict {
		if err := common.MatchRecordKeys(plan.Columns, order); err != nil {
			return fmt.Errorf("row %d: %w", len(plan.Rows)+1, err)
		}
	}

	row := make(common.Row, len(plan.Columns))
	for i, name := range plan.Columns {
		if c, ok := record[name]; ok {
			row[i] = c
		} else {
			row[i] = common.NullCell()
		}
	}
	plan.Rows = append(plan.Rows, row)
	return nil
}

func isNil(attrs []xml.Attr) bool {
	for _, a := range attrs {
		if a.Name.Local == "nil" {
			v := strings.TrimSpace(a.Value)
			return v == "true" || v == "1"
		}
	}
	return false
}
