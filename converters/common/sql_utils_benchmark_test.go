package common

import (
	"fmt"
	"testing"
)

func BenchmarkGenInsertSQL(b *testing.B) {
	// Create a wide row
	numCols := 200
	cols := make([]string, numCols)
	row := make(Row, numCols)
	for i := 0; i < numCols; i++ {
		cols[i] = fmt.Sprintf("col_%d", i)
		switch i % 4 {
		case 0:
			row[i] = NumberCell("12345")
		case 1:
			row[i] = TextCell("it's a value")
		case 2:
			row[i] = BinaryCell([]byte{0xde, 0xad, 0xbe, 0xef})
		default:
			row[i] = NullCell()
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := GenInsertSQL("bench_table", cols, row, DialectMySQL); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkToHex(b *testing.B) {
	data := make([]byte, 64*1024)
	for i := range data {
		data[i] = byte(i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ToHex(data)
	}
}
