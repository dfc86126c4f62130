package csv

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/darianmavgo/mktransfer/converters/common"
)

// Generator writes a header line followed by one delimited line per row.
type Generator struct {
	delimiter string
}

// Ensure Generator implements Generator
var _ common.Generator = (*Generator)(nil)

// NewGenerator creates a Generator using the default ';' delimiter.
func NewGenerator() *Generator {
	return NewGeneratorWithOptions(common.DefaultOptions())
}

// NewGeneratorWithOptions creates a Generator with the delimiter from opts.
func NewGeneratorWithOptions(opts common.Options) *Generator {
	if opts.Delimiter == 0 {
		opts.Delimiter = common.DefaultDelimiter
	}
	return &Generator{delimiter: string(opts.Delimiter)}
}

// Generate implements common.Generator. Null renders as an empty field and
// binary values as 0x-prefixed hex.
func (g *Generator) Generate(cur common.Cursor, w io.Writer, table string) error {
	bw := bufio.NewWriterSize(w, 65536)

	cols := common.Columns(cur)
	var line bytes.Buffer
	for i, c := range cols {
		if i > 0 {
			line.WriteString(g.delimiter)
		}
		line.WriteString(g.field(c.Name))
	}
	line.WriteByte('\n')
	if _, err := bw.Write(line.Bytes()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for cur.Next() {
		line.Reset()
		for i := range cols {
			if i > 0 {
				line.WriteString(g.delimiter)
			}
			line.WriteString(g.field(cur.Value(i).String()))
		}
		line.WriteByte('\n')
		if _, err := bw.Write(line.Bytes()); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// field quotes s only when it contains the delimiter.
func (g *Generator) field(s string) string {
	if !strings.Contains(s, g.delimiter) {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Parser reads delimited text whose first line names the columns. Fields are
// split on the delimiter without quote handling.
type Parser struct {
	delimiter rune
	strict    bool
}

// Ensure Parser implements Parser
var _ common.Parser = (*Parser)(nil)

// NewParser creates a Parser that detects the delimiter from the header.
func NewParser() *Parser {
	return &Parser{}
}

// NewParserWithOptions creates a Parser. A zero delimiter is detected from
// the header line. With StrictRecords set, a line whose field count differs
// from the header fails the parse instead of being skipped at load time.
func NewParserWithOptions(opts common.Options) *Parser {
	return &Parser{delimiter: opts.Delimiter, strict: opts.StrictRecords}
}

// Parse implements common.Parser. Empty input yields an empty plan.
func (p *Parser) Parse(r io.Reader, table string) (*common.BatchPlan, error) {
	br := bufio.NewReaderSize(r, 65536)
	plan := &common.BatchPlan{Table: table}

	header, err := readLine(br)
	header = strings.TrimPrefix(header, "\ufeff")
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if strings.TrimSpace(header) == "" {
		if errors.Is(err, io.EOF) {
			return plan, nil
		}
		return nil, common.Malformedf("CSV header line is empty")
	}

	delim := p.delimiter
	if delim == 0 {
		delim = common.DetectDelimiter(header)
	}
	sep := string(delim)

	plan.Columns = make([]string, 0, common.ColumnCount(header, delim))
	for _, name := range strings.Split(header, sep) {
		plan.Columns = append(plan.Columns, strings.TrimSpace(name))
	}

	for !errors.Is(err, io.EOF) {
		var line string
		line, err = readLine(br)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(plan.Rows)+1, err)
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		if n := common.ColumnCount(line, delim); p.strict && n != len(plan.Columns) {
			return nil, common.Malformedf("CSV row %d has %d fields, header has %d", len(plan.Rows)+1, n, len(plan.Columns))
		}
		fields := strings.Split(line, sep)
		row := make(common.Row, len(fields))
		for i, f := range fields {
			if strings.TrimSpace(f) == "" {
				row[i] = common.NullCell()
			} else {
				row[i] = common.TextCell(f)
			}
		}
		plan.Rows = append(plan.Rows, row)
	}

	return plan, nil
}

// readLine returns the next line without its terminator. io.EOF is returned
// together with the final line.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, err
}
