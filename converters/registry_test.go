package converters

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/darianmavgo/mktransfer/converters/common"
	"github.com/google/go-cmp/cmp"
)

func peopleCursor() common.Cursor {
	cols := []common.ColumnDescriptor{
		{Name: "id", Category: common.Numeric, Ordinal: 1, DeclaredType: "INTEGER"},
		{Name: "name", Category: common.Text, Ordinal: 2, DeclaredType: "TEXT"},
	}
	return common.NewSliceCursor(cols, []common.Row{
		{common.NumberCell("1"), common.TextCell("Ana")},
		{common.NumberCell("2"), common.TextCell("Rui")},
		{common.NumberCell("3"), common.NullCell()},
	})
}

func TestGenerateEveryFormat(t *testing.T) {
	for _, f := range common.Formats() {
		t.Run(f.String(), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Generate(f, peopleCursor(), &buf, "people", common.DefaultOptions()); err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if buf.Len() == 0 {
				t.Error("no output")
			}
		})
	}
}

func TestRoundTripImportableFormats(t *testing.T) {
	want := []common.Row{
		{common.TextCell("1"), common.TextCell("Ana")},
		{common.TextCell("2"), common.TextCell("Rui")},
		{common.TextCell("3"), common.NullCell()},
	}

	for _, f := range []common.Format{common.FormatCSV, common.FormatXML, common.FormatHTML, common.FormatXLSX, common.FormatMarkdown} {
		t.Run(f.String(), func(t *testing.T) {
			opts := common.DefaultOptions()
			var buf bytes.Buffer
			if err := Generate(f, peopleCursor(), &buf, "people", opts); err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			plan, err := Parse(f, &buf, "people", opts)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if diff := cmp.Diff([]string{"id", "name"}, plan.Columns); diff != "" {
				t.Errorf("columns mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(want, plan.Rows); diff != "" {
				t.Errorf("rows mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExportOnlyFormats(t *testing.T) {
	for _, f := range []common.Format{common.FormatText, common.FormatPDF} {
		if CanImport(f) {
			t.Errorf("%s should be export-only", f)
		}
		_, err := Parse(f, strings.NewReader("x"), "t", common.DefaultOptions())
		if !errors.Is(err, common.ErrMalformedInput) {
			t.Errorf("Parse(%s) error = %v, want malformed input", f, err)
		}
	}
	if !CanImport(common.FormatSQL) {
		t.Error("sql should be importable")
	}
}

func TestUnknownFormat(t *testing.T) {
	if _, err := NewGenerator(common.FormatCount, common.DefaultOptions()); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, err := NewParser(common.Format(-1), common.DefaultOptions()); err == nil {
		t.Error("expected error for unknown format")
	}
}
