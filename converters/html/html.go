package html

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/darianmavgo/mktransfer/converters/common"

	"golang.org/x/net/html"
)

const style = `body { font-family: "Segoe UI", Arial, sans-serif; margin: 24px; color: #222; }
h1 { font-size: 18px; margin-bottom: 4px; }
p.exported, p.footer { font-size: 12px; color: #666; }
table { border-collapse: collapse; table-layout: fixed; width: 100%; }
th { background: #2f4f6f; color: #fff; padding: 4px 6px; }
td { border: 1px solid #ccc; padding: 2px 6px; font-family: Consolas, monospace; white-space: pre; overflow: hidden; }
tr:nth-child(even) td { background: #f4f6f8; }
td.right { text-align: right; }
td.center { text-align: center; }
td.null { background: #fafafa; }
td img { max-width: 120px; max-height: 120px; }`

// Generator writes a complete styled HTML document holding one table.
type Generator struct {
	opts common.Options
}

// Ensure Generator implements Generator
var _ common.Generator = (*Generator)(nil)

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return NewGeneratorWithOptions(common.DefaultOptions())
}

// NewGeneratorWithOptions creates a Generator. Only Clock is used.
func NewGeneratorWithOptions(opts common.Options) *Generator {
	return &Generator{opts: opts}
}

// Generate implements common.Generator. Column widths follow the fixed-width
// report and are expressed as percentages. Binary values that sniff as an
// image are inlined as base64 <img> elements.
func (g *Generator) Generate(cur common.Cursor, w io.Writer, table string) error {
	bw := bufio.NewWriterSize(w, 65536)

	cols := common.Columns(cur)
	widths := common.ColumnWidths(cols)
	aligns := make([]common.Align, len(cols))
	for i, c := range cols {
		aligns[i] = common.ColumnAlign(c)
	}

	title := html.EscapeString(table)
	bw.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(bw, "<title>%s</title>\n<style>\n%s\n</style>\n</head>\n<body>\n", title, style)
	fmt.Fprintf(bw, "<h1>%s</h1>\n<p class=\"exported\">Exported %s</p>\n", title, g.opts.Now().Format(time.RFC3339))
	fmt.Fprintf(bw, "<table id=\"%s\">\n<colgroup>", title)
	for _, pct := range common.WidthPercents(widths) {
		fmt.Fprintf(bw, "<col style=\"width: %.2f%%\">", pct)
	}
	bw.WriteString("</colgroup>\n<thead><tr>")
	for _, c := range cols {
		fmt.Fprintf(bw, "<th>%s</th>", html.EscapeString(c.Name))
	}
	bw.WriteString("</tr></thead>\n<tbody>\n")

	var row bytes.Buffer
	n := 0
	for cur.Next() {
		row.Reset()
		row.WriteString("<tr>")
		for i, c := range cols {
			writeCell(&row, cur.Value(i), c.Name, widths[i], aligns[i])
		}
		row.WriteString("</tr>\n")

		if _, err := bw.Write(row.Bytes()); err != nil {
			return fmt.Errorf("failed to write HTML row: %w", err)
		}
		n++
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	bw.WriteString("</tbody>\n</table>\n")
	fmt.Fprintf(bw, "<p class=\"footer\">%s</p>\n</body>\n</html>\n", rowCount(n))
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush HTML: %w", err)
	}
	return nil
}

func writeCell(buf *bytes.Buffer, v common.Cell, name string, width int, align common.Align) {
	if v.IsNull() {
		buf.WriteString(`<td class="null"></td>`)
		return
	}
	if v.Kind == common.KindBinary && len(v.Bytes) > 0 {
		if ct := http.DetectContentType(v.Bytes); strings.HasPrefix(ct, "image/") {
			fmt.Fprintf(buf, `<td class="image"><img src="data:%s;base64,%s" alt="%s"></td>`,
				ct, common.ToBase64(v.Bytes), html.EscapeString(name))
			return
		}
	}

	text := html.EscapeString(common.Fit(common.DisplayText(v), width, align))
	switch align {
	case common.AlignRight:
		fmt.Fprintf(buf, `<td class="right">%s</td>`, text)
	case common.AlignCenter:
		fmt.Fprintf(buf, `<td class="center">%s</td>`, text)
	default:
		fmt.Fprintf(buf, `<td>%s</td>`, text)
	}
}

func rowCount(n int) string {
	if n == 1 {
		return "1 row"
	}
	return fmt.Sprintf("%d rows", n)
}

// Parser reads the first <table> of an HTML document. Its first row names
// the columns.
type Parser struct{}

// Ensure Parser implements Parser
var _ common.Parser = (*Parser)(nil)

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse implements common.Parser. A cell with class "null" is Null, an
// inline base64 image is Binary and anything else is its trimmed text.
// A document without a table yields an empty plan.
func (p *Parser) Parse(r io.Reader, table string) (*common.BatchPlan, error) {
	doc, err := html.Parse(bufio.NewReaderSize(r, 65536))
	if err != nil {
		return nil, common.Malformed(err, "failed to parse HTML")
	}

	plan := &common.BatchPlan{Table: table}
	n := findTable(doc)
	if n == nil {
		return plan, nil
	}

	rows, err := extractRows(n)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return plan, nil
	}

	for _, c := range rows[0] {
		plan.Columns = append(plan.Columns, c.String())
	}
	plan.Rows = rows[1:]
	return plan, nil
}

func findTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "table" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTable(c); t != nil {
			return t
		}
	}
	return nil
}

func extractRows(n *html.Node) ([]common.Row, error) {
	var rows []common.Row
	var visitErr error
	var visitRows func(*html.Node)
	visitRows = func(node *html.Node) {
		if visitErr != nil {
			return
		}
		if node.Type == html.ElementNode && node.Data == "tr" {
			var row common.Row
			for c := node.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
					cell, err := extractCell(c)
					if err != nil {
						visitErr = fmt.Errorf("row %d: %w", len(rows)+1, err)
						return
					}
					row = append(row, cell)
				}
			}
			rows = append(rows, row)
			return // Don't look for TRs inside TRs
		}

		for c := node.FirstChild; c != nil; c = c.NextSibling {
			// Don't traverse into nested tables here
			if c.Type == html.ElementNode && c.Data == "table" {
				continue
			}
			visitRows(c)
		}
	}
	visitRows(n)
	return rows, visitErr
}

func extractCell(n *html.Node) (common.Cell, error) {
	if hasClass(n, "null") {
		return common.NullCell(), nil
	}
	if src, ok := findImageSource(n); ok {
		b, err := decodeDataURI(src)
		if err != nil {
			return common.Cell{}, err
		}
		return common.BinaryCell(b), nil
	}
	return common.TextCell(extractText(n)), nil
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			for _, c := range strings.Fields(attr.Val) {
				if c == class {
					return true
				}
			}
		}
	}
	return false
}

func findImageSource(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && n.Data == "img" {
		for _, attr := range n.Attr {
			if attr.Key == "src" && strings.HasPrefix(attr.Val, "data:") {
				return attr.Val, true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if src, ok := findImageSource(c); ok {
			return src, true
		}
	}
	return "", false
}

// decodeDataURI returns the payload of a base64 data URI.
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return nil, common.Malformedf("image source is not a base64 data URI")
	}
	b, err := common.FromBase64(payload)
	if err != nil {
		return nil, common.Malformed(err, "invalid image payload")
	}
	return b, nil
}

func extractText(n *html.Node) string {
	var sb strings.Builder
	extractTextRecursive(n, &sb)
	return strings.TrimSpace(sb.String())
}

func extractTextRecursive(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractTextRecursive(c, sb)
	}
}
