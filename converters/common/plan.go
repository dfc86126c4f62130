package common

// BatchPlan is the output of a parser and the input of the batch loader.
// A SQL script fills Statements; every other format fills Columns and Rows.
type BatchPlan struct {
	Table      string
	Columns    []string
	Rows       []Row
	Statements []string
}

// Result is the terminal value of every export or import operation.
type Result struct {
	Succeeded    bool
	RowsAffected int
	ErrorDetail  string
}

// Failed builds an unsuccessful Result. Rows affected is always zero.
func Failed(err error) Result {
	return Result{ErrorDetail: err.Error()}
}

// Succeeded builds a successful Result.
func Succeeded(rows int) Result {
	return Result{Succeeded: true, RowsAffected: rows}
}

// MatchRecordKeys reports a malformed-input error when a record's key set
// differs from the columns deduced from the first record. Order is ignored.
func MatchRecordKeys(columns, keys []string) error {
	if len(keys) != len(columns) {
		return Malformedf("record has %d keys, first record has %d", len(keys), len(columns))
	}
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	for _, k := range keys {
		if !known[k] {
			return Malformedf("unexpected key %q", k)
		}
	}
	return nil
}
