package markdown

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/darianmavgo/mktransfer/converters/common"
)

var (
	headerRegex    = regexp.MustCompile(`^#{1,6}\s+(.+)$`)
	anchorRegex    = regexp.MustCompile(`^<a\s+(?:name|id)=["']([^"']+)["']\s*>\s*</a>$`)
	tableRegex     = regexp.MustCompile(`^\|.*\|$`)
	separatorRegex = regexp.MustCompile(`^\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?$`)
)

var cellEscaper = strings.NewReplacer(`\`, `\\`, "|", `\|`)

// Generator writes a GitHub-flavoured pipe table under a heading naming
// the table.
type Generator struct{}

// Ensure Generator implements Generator
var _ common.Generator = (*Generator)(nil)

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate implements common.Generator. The separator row carries the same
// alignment as the fixed-width report.
func (g *Generator) Generate(cur common.Cursor, w io.Writer, table string) error {
	bw := bufio.NewWriter(w)

	cols := common.Columns(cur)
	fmt.Fprintf(bw, "## %s\n\n", table)

	names := make([]string, len(cols))
	seps := make([]string, len(cols))
	for i, c := range cols {
		names[i] = cellEscaper.Replace(c.Name)
		switch common.ColumnAlign(c) {
		case common.AlignRight:
			seps[i] = "---:"
		case common.AlignCenter:
			seps[i] = ":---:"
		default:
			seps[i] = "---"
		}
	}
	bw.WriteString(pipeRow(names))
	bw.WriteString(pipeRow(seps))

	var row bytes.Buffer
	cells := make([]string, len(cols))
	for cur.Next() {
		row.Reset()
		for i := range cols {
			cells[i] = cellEscaper.Replace(common.DisplayText(cur.Value(i)))
		}
		row.WriteString(pipeRow(cells))
		if _, err := bw.Write(row.Bytes()); err != nil {
			return fmt.Errorf("failed to write markdown row: %w", err)
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush markdown: %w", err)
	}
	return nil
}

func pipeRow(cells []string) string {
	if len(cells) == 0 {
		return "|\n"
	}
	return "| " + strings.Join(cells, " | ") + " |\n"
}

// Parser reads a pipe table from a markdown document. A table introduced by
// a heading or anchor matching the table name wins over the first table.
type Parser struct{}

// Ensure Parser implements Parser
var _ common.Parser = (*Parser)(nil)

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

type tableData struct {
	name    string
	headers []string
	rows    []common.Row
}

// Parse implements common.Parser. Empty cells are Null. A document without
// a table yields an empty plan.
func (p *Parser) Parse(r io.Reader, table string) (*common.BatchPlan, error) {
	tables, err := parseMarkdown(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown: %w", err)
	}

	plan := &common.BatchPlan{Table: table}
	if len(tables) == 0 {
		return plan, nil
	}

	chosen := tables[0]
	for _, t := range tables {
		if strings.EqualFold(t.name, table) {
			chosen = t
			break
		}
	}
	plan.Columns = chosen.headers
	plan.Rows = chosen.rows
	return plan, nil
}

func parseMarkdown(r io.Reader) ([]tableData, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var tables []tableData
	var currentName string
	i := 0
	for i < len(lines) {
		trimLine := strings.TrimSpace(lines[i])

		// Check for Name (Header or Anchor)
		if match := headerRegex.FindStringSubmatch(trimLine); match != nil {
			currentName = strings.TrimSpace(match[1])
			i++
			continue
		}
		if match := anchorRegex.FindStringSubmatch(trimLine); match != nil {
			currentName = strings.TrimSpace(match[1])
			i++
			continue
		}

		// A table needs a separator line right after its header
		if tableRegex.MatchString(trimLine) && i+1 < len(lines) && separatorRegex.MatchString(strings.TrimSpace(lines[i+1])) {
			table, consumed := parseTable(lines[i:], currentName)
			tables = append(tables, table)
			i += consumed
			currentName = ""
			continue
		}

		i++
	}

	return tables, nil
}

func parseTable(lines []string, name string) (tableData, int) {
	t := tableData{name: name, headers: splitRow(lines[0])}
	consumed := 2 // header and separator

	for j := 2; j < len(lines); j++ {
		line := strings.TrimSpace(lines[j])
		if !strings.Contains(line, "|") {
			break
		}
		parts := splitRow(line)
		row := make(common.Row, len(parts))
		for k, v := range parts {
			if v == "" {
				row[k] = common.NullCell()
			} else {
				row[k] = common.TextCell(v)
			}
		}
		t.rows = append(t.rows, row)
		consumed++
	}

	return t, consumed
}

// splitRow splits a pipe row on unescaped pipes and trims every cell.
func splitRow(l string) []string {
	l = strings.TrimSpace(l)
	l = strings.TrimPrefix(l, "|")
	if strings.HasSuffix(l, "|") && !strings.HasSuffix(l, `\|`) {
		l = l[:len(l)-1]
	}

	var parts []string
	var cell strings.Builder
	escaped := false
	for _, r := range l {
		switch {
		case escaped:
			if r != '|' && r != '\\' {
				cell.WriteRune('\\')
			}
			cell.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '|':
			parts = append(parts, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteRune(r)
		}
	}
	if escaped {
		cell.WriteRune('\\')
	}
	parts = append(parts, strings.TrimSpace(cell.String()))
	return parts
}
