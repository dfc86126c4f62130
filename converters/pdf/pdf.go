package pdf

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/darianmavgo/mktransfer/converters/common"
	"github.com/darianmavgo/mktransfer/converters/txt"

	"github.com/go-pdf/fpdf"
)

const (
	MaxFontSize     = 10.0
	MinFontSize     = 5.0
	LandscapeColumn = 120
	margin          = 10.0 // mm
	pointsToMM      = 25.4 / 72
	courierAdvance  = 0.6 // glyph width as a fraction of the font size
	lineSpacing     = 1.15
)

// The core Courier font has no box-drawing glyphs.
var asciiBorders = strings.NewReplacer(
	txt.TopLeft, "+", txt.TopMid, "+", txt.TopRight, "+",
	txt.HeadLeft, "+", txt.HeadMid, "+", txt.HeadRight, "+",
	txt.RowLeft, "+", txt.RowMid, "+", txt.RowRight, "+",
	txt.BottomLeft, "+", txt.BottomMid, "+", txt.BottomRight, "+",
	txt.DoubleLine, "=", txt.SingleLine, "-", txt.DoubleSide, "|",
)

// Generator renders the fixed-width text table into a paginated A4
// document set in Courier.
type Generator struct {
	opts     common.Options
	compress bool
}

// Ensure Generator implements Generator
var _ common.Generator = (*Generator)(nil)

// NewGenerator creates a Generator.
func NewGenerator() *Generator {
	return NewGeneratorWithOptions(common.DefaultOptions())
}

// NewGeneratorWithOptions creates a Generator. Clock stamps the document
// creation date.
func NewGeneratorWithOptions(opts common.Options) *Generator {
	return &Generator{opts: opts, compress: true}
}

// Generate implements common.Generator.
func (g *Generator) Generate(cur common.Cursor, w io.Writer, table string) error {
	var text bytes.Buffer
	if err := txt.NewGenerator().Generate(cur, &text, table); err != nil {
		return err
	}
	lines := strings.Split(strings.TrimSuffix(asciiBorders.Replace(text.String()), "\n"), "\n")

	orientation, size := Layout(lines)
	doc := fpdf.New(orientation, "mm", "A4", "")
	doc.SetCompression(g.compress)
	doc.SetTitle(table, true)
	doc.SetCreator("mktransfer", false)
	doc.SetCreationDate(g.opts.Now())
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin+5)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-margin - 2)
		doc.SetFont("Courier", "", 7)
		doc.CellFormat(0, 4, fmt.Sprintf("%s - page %d/{nb}", table, doc.PageNo()), "", 0, "C", false, 0, "")
	})

	tr := doc.UnicodeTranslatorFromDescriptor("")
	lineHeight := size * pointsToMM * lineSpacing

	doc.AddPage()
	doc.SetFont("Courier", "", size)
	for _, line := range lines {
		doc.CellFormat(0, lineHeight, tr(line), "", 1, "L", false, 0, "")
	}

	if err := doc.Output(w); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

// Layout picks the page orientation and the largest Courier size, at most
// MaxFontSize and at least MinFontSize, at which the widest line fits.
func Layout(lines []string) (orientation string, size float64) {
	widest := 0
	for _, l := range lines {
		widest = max(widest, utf8.RuneCountInString(l))
	}

	orientation = "P"
	pageWidth := 210.0
	if widest > LandscapeColumn {
		orientation = "L"
		pageWidth = 297.0
	}
	if widest == 0 {
		return orientation, MaxFontSize
	}

	usable := pageWidth - 2*margin
	size = usable / (float64(widest) * courierAdvance * pointsToMM)
	return orientation, min(max(size, MinFontSize), MaxFontSize)
}
