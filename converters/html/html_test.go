package html

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/darianmavgo/mktransfer/converters/common"
	"github.com/google/go-cmp/cmp"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func photoCursor() common.Cursor {
	cols := []common.ColumnDescriptor{
		{Name: "id", Category: common.Numeric, DeclaredType: "INTEGER"},
		{Name: "Sexo", Category: common.Text, DeclaredType: "CHAR", DisplaySize: 1},
		{Name: "note", Category: common.Text, DeclaredType: "VARCHAR", DisplaySize: 30},
		{Name: "photo", Category: common.Binary, DeclaredType: "BLOB"},
	}
	return common.NewSliceCursor(cols, []common.Row{
		{common.NumberCell("1"), common.TextCell("F"), common.TextCell("a < b & c"), common.BinaryCell(pngHeader)},
		{common.NumberCell("2"), common.TextCell("M"), common.NullCell(), common.BinaryCell([]byte{0x00, 0x01})},
	})
}

func TestGenerate(t *testing.T) {
	opts := common.DefaultOptions()
	opts.Clock = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }

	var buf bytes.Buffer
	if err := NewGeneratorWithOptions(opts).Generate(photoCursor(), &buf, "pets"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<title>pets</title>",
		"Exported 2024-01-01T00:00:00Z",
		`<table id="pets">`,
		// widths 11, 10, 30, 11 of 62
		`<col style="width: 17.74%"><col style="width: 16.13%"><col style="width: 48.39%"><col style="width: 17.74%">`,
		"<th>id</th><th>Sexo</th><th>note</th><th>photo</th>",
		`<td class="right">          1</td>`,
		`<td>a &lt; b &amp; c` + strings.Repeat(" ", 21) + `</td>`,
		`<td class="null"></td>`,
		`<img src="data:image/png;base64,` + common.ToBase64(pngHeader) + `" alt="photo">`,
		"<td>0x0001     </td>",
		`<p class="footer">2 rows</p>`,
		"</html>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q\n%s", want, out)
		}
	}
}

func TestParse(t *testing.T) {
	content := `
<html>
<body>
<p>intro</p>
<table id="test_table">
<tr><th>Name</th><th>Age</th><th>Photo</th></tr>
<tr><td> Alice </td><td>30</td><td><img src="data:image/png;base64,AAEC"></td></tr>
<tr><td><b>Bob</b></td><td class="null"></td><td></td></tr>
</table>
<table><tr><th>ignored</th></tr></table>
</body>
</html>
`
	plan, err := NewParser().Parse(strings.NewReader(content), "people")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if diff := cmp.Diff([]string{"Name", "Age", "Photo"}, plan.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	want := []common.Row{
		{common.TextCell("Alice"), common.TextCell("30"), common.BinaryCell([]byte{0, 1, 2})},
		{common.TextCell("Bob"), common.NullCell(), common.TextCell("")},
	}
	if diff := cmp.Diff(want, plan.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseNoTable(t *testing.T) {
	plan, err := NewParser().Parse(strings.NewReader("<html><body><p>nothing</p></body></html>"), "t")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(plan.Columns) != 0 || len(plan.Rows) != 0 {
		t.Errorf("expected empty plan, got %+v", plan)
	}
}

func TestParseBadImage(t *testing.T) {
	content := `<table><tr><th>p</th></tr><tr><td><img src="data:image/png,raw"></td></tr></table>`
	if _, err := NewParser().Parse(strings.NewReader(content), "t"); err == nil {
		t.Error("expected error for non-base64 data URI")
	}
}

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := NewGenerator().Generate(photoCursor(), &buf, "pets"); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	plan, err := NewParser().Parse(&buf, "pets")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if diff := cmp.Diff([]string{"id", "Sexo", "note", "photo"}, plan.Columns); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	want := []common.Row{
		{common.TextCell("1"), common.TextCell("F"), common.TextCell("a < b & c"), common.BinaryCell(pngHeader)},
		{common.TextCell("2"), common.TextCell("M"), common.NullCell(), common.TextCell("0x0001")},
	}
	if diff := cmp.Diff(want, plan.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}
