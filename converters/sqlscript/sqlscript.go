package sqlscript

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/darianmavgo/mktransfer/converters/common"
)

// Generator writes a table as a script of batched INSERT statements.
type Generator struct {
	opts common.Options
}

// Ensure Generator implements Generator
var _ common.Generator = (*Generator)(nil)

// NewGenerator creates a Generator with the default batch size and dialect.
func NewGenerator() *Generator {
	return NewGeneratorWithOptions(common.DefaultOptions())
}

// NewGeneratorWithOptions creates a Generator. A non-positive batch size
// falls back to common.DefaultBatchSize.
func NewGeneratorWithOptions(opts common.Options) *Generator {
	if opts.BatchSize <= 0 {
		opts.BatchSize = common.DefaultBatchSize
	}
	return &Generator{opts: opts}
}

// Generate implements common.Generator. Every statement it writes is
// terminated with a semicolon; a table with no rows yields only the header.
func (g *Generator) Generate(cur common.Cursor, w io.Writer, table string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "-- Table: %s\n", table)
	fmt.Fprintf(bw, "-- Exported: %s\n", g.opts.Now().Format(time.RFC3339))
	fmt.Fprintf(bw, "-- Dialect: %s\n", g.opts.Dialect)
	fmt.Fprintf(bw, "-- Rows per statement: %d\n\n", g.opts.BatchSize)

	cols := common.Columns(cur)
	prefix := "INSERT INTO " + table + " (" + strings.Join(common.ColumnNames(cols), ", ") + ") VALUES "

	var stmt bytes.Buffer
	pending := 0
	flush := func() error {
		if pending == 0 {
			return nil
		}
		stmt.WriteString(";\n")
		if _, err := bw.Write(stmt.Bytes()); err != nil {
			return fmt.Errorf("failed to write statement: %w", err)
		}
		stmt.Reset()
		pending = 0
		return nil
	}

	for cur.Next() {
		if pending == 0 {
			stmt.WriteString(prefix)
		} else {
			stmt.WriteString(", ")
		}
		stmt.WriteByte('(')
		for i := range cols {
			if i > 0 {
				stmt.WriteString(", ")
			}
			stmt.WriteString(common.SQLLiteral(cur.Value(i), g.opts.Dialect))
		}
		stmt.WriteByte(')')
		pending++

		if pending == g.opts.BatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}
	if err := flush(); err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush SQL script: %w", err)
	}
	return nil
}

// Parser reads a SQL script one statement per line. Statements are not
// inspected; they run verbatim inside the loader's transaction.
type Parser struct{}

// Ensure Parser implements Parser
var _ common.Parser = (*Parser)(nil)

// NewParser creates a Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse implements common.Parser. Blank lines and lines starting with "--"
// are skipped. A statement spanning several lines is split into fragments.
func (p *Parser) Parse(r io.Reader, table string) (*common.BatchPlan, error) {
	br := bufio.NewReaderSize(r, 65536)
	plan := &common.BatchPlan{Table: table}

	first := true
	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read SQL script: %w", err)
		}
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}

		stmt := strings.TrimSpace(line)
		if stmt != "" && !strings.HasPrefix(stmt, "--") {
			plan.Statements = append(plan.Statements, stmt)
		}

		if errors.Is(err, io.EOF) {
			break
		}
	}

	return plan, nil
}
