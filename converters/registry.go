package converters

import (
	"fmt"
	"io"

	"github.com/darianmavgo/mktransfer/converters/common"
	"github.com/darianmavgo/mktransfer/converters/csv"
	"github.com/darianmavgo/mktransfer/converters/excel"
	"github.com/darianmavgo/mktransfer/converters/html"
	"github.com/darianmavgo/mktransfer/converters/json"
	"github.com/darianmavgo/mktransfer/converters/markdown"
	"github.com/darianmavgo/mktransfer/converters/pdf"
	"github.com/darianmavgo/mktransfer/converters/sqlscript"
	"github.com/darianmavgo/mktransfer/converters/txt"
	"github.com/darianmavgo/mktransfer/converters/xml"
)

// driver pairs the constructors of one format. A nil parser marks an
// export-only format.
type driver struct {
	generator func(opts common.Options) common.Generator
	parser    func(opts common.Options) common.Parser
}

var drivers = [common.FormatCount]driver{
	common.FormatSQL: {
		generator: func(o common.Options) common.Generator { return sqlscript.NewGeneratorWithOptions(o) },
		parser:    func(common.Options) common.Parser { return sqlscript.NewParser() },
	},
	common.FormatCSV: {
		generator: func(o common.Options) common.Generator { return csv.NewGeneratorWithOptions(o) },
		parser:    func(o common.Options) common.Parser { return csv.NewParserWithOptions(o) },
	},
	common.FormatXML: {
		generator: func(o common.Options) common.Generator { return xml.NewGeneratorWithOptions(o) },
		parser:    func(o common.Options) common.Parser { return xml.NewParserWithOptions(o) },
	},
	common.FormatJSON: {
		generator: func(common.Options) common.Generator { return json.NewGenerator() },
		parser:    func(o common.Options) common.Parser { return json.NewParserWithOptions(o) },
	},
	common.FormatHTML: {
		generator: func(o common.Options) common.Generator { return html.NewGeneratorWithOptions(o) },
		parser:    func(common.Options) common.Parser { return html.NewParser() },
	},
	common.FormatText: {
		generator: func(common.Options) common.Generator { return txt.NewGenerator() },
	},
	common.FormatPDF: {
		generator: func(o common.Options) common.Generator { return pdf.NewGeneratorWithOptions(o) },
	},
	common.FormatXLSX: {
		generator: func(common.Options) common.Generator { return excel.NewGenerator() },
		parser:    func(common.Options) common.Parser { return excel.NewParser() },
	},
	common.FormatMarkdown: {
		generator: func(common.Options) common.Generator { return markdown.NewGenerator() },
		parser:    func(common.Options) common.Parser { return markdown.NewParser() },
	},
}

func init() {
	for _, f := range common.Formats() {
		if drivers[f].generator == nil {
			panic("converters: no generator registered for format " + f.String())
		}
	}
}

// CanImport reports whether format has a parser.
func CanImport(format common.Format) bool {
	return format >= 0 && format < common.FormatCount && drivers[format].parser != nil
}

// NewGenerator returns the generator for format.
func NewGenerator(format common.Format, opts common.Options) (common.Generator, error) {
	if format < 0 || format >= common.FormatCount {
		return nil, fmt.Errorf("converters: unknown format %s", format)
	}
	return drivers[format].generator(opts), nil
}

// NewParser returns the parser for format. Export-only formats fail with a
// malformed-input error.
func NewParser(format common.Format, opts common.Options) (common.Parser, error) {
	if format < 0 || format >= common.FormatCount {
		return nil, fmt.Errorf("converters: unknown format %s", format)
	}
	if drivers[format].parser == nil {
		return nil, common.Malformedf("format %s does not support import", format)
	}
	return drivers[format].parser(opts), nil
}

// Generate renders every row of cur into w in the given format.
func Generate(format common.Format, cur common.Cursor, w io.Writer, table string, opts common.Options) error {
	g, err := NewGenerator(format, opts)
	if err != nil {
		return err
	}
	return g.Generate(cur, w, table)
}

// Parse reads r in the given format into a batch plan for table.
func Parse(format common.Format, r io.Reader, table string, opts common.Options) (*common.BatchPlan, error) {
	p, err := NewParser(format, opts)
	if err != nil {
		return nil, err
	}
	return p.Parse(r, table)
}
