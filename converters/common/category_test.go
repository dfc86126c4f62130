package common

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		declared string
		want     Category
	}{
		{"INTEGER", Numeric},
		{"int(11)", Numeric},
		{"BIGINT UNSIGNED", Numeric},
		{"decimal(10,2)", Numeric},
		{"DOUBLE PRECISION", Numeric},
		{"BOOLEAN", Numeric},
		{"DATE", Temporal},
		{"datetime2", Temporal},
		{"TIMESTAMP", Temporal},
		{"BLOB", Binary},
		{"LONGBLOB", Binary},
		{"varbinary(max)", Binary},
		{"VARCHAR(255)", Text},
		{"TEXT", Text},
		{"", Text},
		{"GEOMETRY", Text},
	}
	for _, tt := range tests {
		if got := Classify(tt.declared); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.declared, got, tt.want)
		}
	}
}

func TestIsBooleanType(t *testing.T) {
	for _, b := range []string{"BOOLEAN", "bool", "BIT", "tinyint(1)", "TINYINT(1) UNSIGNED"} {
		if !IsBooleanType(b) {
			t.Errorf("IsBooleanType(%q) = false", b)
		}
	}
	for _, b := range []string{"TINYINT", "TINYINT(4)", "INT", "VARCHAR"} {
		if IsBooleanType(b) {
			t.Errorf("IsBooleanType(%q) = true", b)
		}
	}
}
