package common

import (
	"strings"
	"testing"
)

func TestColumnWidth(t *testing.T) {
	tests := []struct {
		name string
		col  ColumnDescriptor
		want int
	}{
		{"Sexo", ColumnDescriptor{Name: "Sexo", DisplaySize: 300}, 10},
		{"GeneroLower", ColumnDescriptor{Name: "genero", DisplaySize: 1}, 10},
		{"ShortClampedUp", ColumnDescriptor{Name: "id", DisplaySize: 4}, 11},
		{"DisplaySizeWins", ColumnDescriptor{Name: "nome", DisplaySize: 60}, 60},
		{"NameWins", ColumnDescriptor{Name: "data_de_nascimento_completa", DisplaySize: 10}, 27},
		{"ClampedDown", ColumnDescriptor{Name: "observacoes", DisplaySize: 65535}, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ColumnWidth(tt.col); got != tt.want {
				t.Errorf("ColumnWidth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestColumnAlign(t *testing.T) {
	if got := ColumnAlign(ColumnDescriptor{Category: Numeric, DeclaredType: "INTEGER"}); got != AlignRight {
		t.Errorf("numeric align = %v", got)
	}
	if got := ColumnAlign(ColumnDescriptor{Category: Numeric, DeclaredType: "TINYINT(1)"}); got != AlignCenter {
		t.Errorf("boolean align = %v", got)
	}
	if got := ColumnAlign(ColumnDescriptor{Category: Temporal, DeclaredType: "DATE"}); got != AlignCenter {
		t.Errorf("temporal align = %v", got)
	}
	if got := ColumnAlign(ColumnDescriptor{Category: Text, DeclaredType: "VARCHAR"}); got != AlignLeft {
		t.Errorf("text align = %v", got)
	}
}

func TestFit(t *testing.T) {
	if got := Fit("ab", 5, AlignLeft); got != "ab   " {
		t.Errorf("left = %q", got)
	}
	if got := Fit("ab", 5, AlignRight); got != "   ab" {
		t.Errorf("right = %q", got)
	}
	if got := Fit("ab", 6, AlignCenter); got != "  ab  " {
		t.Errorf("center = %q", got)
	}
	got := Fit(strings.Repeat("x", 20), 10, AlignLeft)
	if !strings.HasSuffix(got, "…") || len([]rune(got)) != 10 {
		t.Errorf("truncate = %q", got)
	}
}

func TestWidthPercents(t *testing.T) {
	pct := WidthPercents([]int{10, 30})
	if pct[0] != 25 || pct[1] != 75 {
		t.Errorf("WidthPercents = %v", pct)
	}
	if got := WidthPercents(nil); len(got) != 0 {
		t.Errorf("empty = %v", got)
	}
}
