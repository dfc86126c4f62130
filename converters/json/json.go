package json

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/darianmavgo/mktransfer/converters/common"
)

// jsonNumber is the number grammar of RFC 8259.
var jsonNumber = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// Generator writes a compact array with one flat object per row.
type Generator struct{}

// Ensure Generator implements Generator
var _ common.Generator = (*Generator)(nil)

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate implements common.Generator. Keys are the lower-cased column
// names. A numeric value that is not a valid JSON number fails with an
// encoding error before any byte of its row is written.
func (g *Generator) Generate(cur common.Cursor, w io.Writer, table string) error {
	bw := bufio.NewWriterSize(w, 65536)

	cols := common.Columns(cur)
	keys := make([][]byte, len(cols))
	for i, c := range cols {
		k, err := encodeString(strings.ToLower(c.Name))
		if err != nil {
			return common.Encodingf("column %q: %v", c.Name, err)
		}
		keys[i] = k
	}

	if err := bw.WriteByte('['); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}

	var row bytes.Buffer
	n := 0
	for cur.Next() {
		row.Reset()
		if n > 0 {
			row.WriteByte(',')
		}
		row.WriteByte('{')
		for i := range cols {
			if i > 0 {
				row.WriteByte(',')
			}
			row.Write(keys[i])
			row.WriteByte(':')
			if err := appendValue(&row, cur.Value(i)); err != nil {
				return fmt.Errorf("row %d, column %q: %w", n+1, cols[i].Name, err)
			}
		}
		row.WriteByte('}')

		if _, err := bw.Write(row.Bytes()); err != nil {
			return fmt.Errorf("failed to write JSON row: %w", err)
		}
		n++
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("failed to read rows: %w", err)
	}

	if err := bw.WriteByte(']'); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush JSON: %w", err)
	}
	return nil
}

func appendValue(buf *bytes.Buffer, c common.Cell) error {
	switch c.Kind {
	case common.KindNull:
		buf.WriteString("null")
	case common.KindNumber:
		if c.Text == "" {
			buf.WriteString("null")
			return nil
		}
		if !jsonNumber.MatchString(c.Text) {
			return common.Encodingf("%q is not a JSON number", c.Text)
		}
		buf.WriteString(c.Text)
	default:
		s, err := encodeString(c.String())
		if err != nil {
			return common.Encodingf("%v", err)
		}
		buf.Write(s)
	}
	return nil
}

// encodeString quotes s without the HTML escaping json.Marshal applies.
func encodeString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte{'\n'}), nil
}

// Parser reads a top-level array of flat objects. The first object decides
// the columns; later objects are matched by key.
type Parser struct {
	strict bool
}

// Ensure Parser implements Parser
var _ common.Parser = (*Parser)(nil)

// NewParser creates a lenient Parser.
func NewParser() *Parser {
	return NewParserWithOptions(common.DefaultOptions())
}

// NewParserWithOptions creates a Parser. With StrictRecords set, an object
// whose key set differs from the first object's is rejected.
func NewParserWithOptions(opts common.Options) *Parser {
	return &Parser{strict: opts.StrictRecords}
}

// Parse implements common.Parser. Missing keys read as Null and extra keys
// are ignored unless the parser is strict.
func (p *Parser) Parse(r io.Reader, table string) (*common.BatchPlan, error) {
	dec := json.NewDecoder(bufio.NewReaderSize(r, 65536))
	dec.UseNumber()
	plan := &common.BatchPlan{Table: table}

	token, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return plan, nil
	}
	if err != nil {
		return nil, common.Malformed(err, "failed to read JSON start")
	}
	if delim, ok := token.(json.Delim); !ok || delim != '[' {
		return nil, common.Malformedf("expected JSON array at root")
	}

	for dec.More() {
		record, order, err := readObject(dec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(plan.Rows)+1, err)
		}

		if len(plan.Rows) == 0 {
			plan.Columns = order
		} else if p.strict {
			if err := common.MatchRecordKeys(plan.Columns, order); err != nil {
				return nil, fmt.Errorf("record %d: %w", len(plan.Rows)+1, err)
			}
		}

		row := make(common.Row, len(plan.Columns))
		for i, k := range plan.Columns {
			if c, ok := record[k]; ok {
				row[i] = c
			} else {
				row[i] = common.NullCell()
			}
		}
		plan.Rows = append(plan.Rows, row)
	}

	if _, err := dec.Token(); err != nil {
		return nil, common.Malformed(err, "expected closing ']'")
	}
	return plan, nil
}

// readObject decodes one flat object, keeping its key order.
func readObject(dec *json.Decoder) (map[string]common.Cell, []string, error) {
	token, err := dec.Token()
	if err != nil {
		return nil, nil, common.Malformed(err, "failed to read record")
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return nil, nil, common.Malformedf("expected JSON object, got %v", token)
	}

	record := map[string]common.Cell{}
	var order []string
	for dec.More() {
		keyToken, err := dec.Token()
		if err != nil {
			return nil, nil, common.Malformed(err, "failed to read key")
		}
		key, ok := keyToken.(string)
		if !ok {
			return nil, nil, common.Malformedf("expected string key")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, common.Malformed(err, "failed to decode value for key %s", key)
		}
		cell, err := rawCell(raw)
		if err != nil {
			return nil, nil, common.Malformed(err, "invalid value for key %s", key)
		}

		if _, seen := record[key]; !seen {
			order = append(order, key)
		}
		record[key] = cell
	}

	// Consume closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, nil, common.Malformed(err, "expected closing '}'")
	}
	return record, order, nil
}

// rawCell maps one JSON value to a cell. Nested arrays and objects are kept
// as their compact JSON text.
func rawCell(raw json.RawMessage) (common.Cell, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return common.NullCell(), nil
	}

	switch raw[0] {
	case 'n':
		return common.NullCell(), nil
	case 't':
		return common.NumberCell("1"), nil
	case 'f':
		return common.NumberCell("0"), nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return common.Cell{}, err
		}
		return common.TextCell(s), nil
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return common.Cell{}, err
		}
		return common.TextCell(buf.String()), nil
	}
	return common.NumberCell(string(raw)), nil
}
