package excel

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/darianmavgo/mktransfer/converters/common"
)

func BenchmarkExcelRoundTrip(b *testing.B) {
	cols := []common.ColumnDescriptor{
		{Name: "id", Category: common.Numeric},
		{Name: "name", Category: common.Text},
	}
	rows := make([]common.Row, 2000)
	for i := range rows {
		rows[i] = common.Row{common.NumberCell(fmt.Sprint(i)), common.TextCell(fmt.Sprintf("name %d", i))}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		if err := NewGenerator().Generate(common.NewSliceCursor(cols, rows), &buf, "bench"); err != nil {
			b.Fatalf("Generate failed: %v", err)
		}
		if _, err := NewParser().Parse(&buf, "bench"); err != nil {
			b.Fatalf("Parse failed: %v", err)
		}
	}
}
