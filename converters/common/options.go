package common

import (
	"strings"
	"time"
)

const (
	DefaultBatchSize = 10
	DefaultDelimiter = ';'
)

// Options stores the per-call settings shared by generators and parsers.
type Options struct {
	Delimiter     rune             // CSV field delimiter; 0 detects it from the header on import
	BatchSize     int              // Rows per INSERT statement in SQL scripts
	Dialect       Dialect          // Binary literal syntax for SQL output
	StrictRecords bool             // Reject CSV lines, JSON objects or XML rows that do not match the first record
	Clock         func() time.Time // Export timestamp source; time.Now when nil
}

// DefaultOptions returns the options used when a caller passes none.
func DefaultOptions() Options {
	return Options{
		Delimiter: DefaultDelimiter,
		BatchSize: DefaultBatchSize,
		Dialect:   DialectMySQL,
	}
}

// Now returns the export timestamp.
func (o Options) Now() time.Time {
	if o.Clock != nil {
		return o.Clock()
	}
	return time.Now()
}

// DetectDelimiter attempts to detect the delimiter from a raw line of text.
// It checks common delimiters and returns the one that produces the most fields.
// Defaults to semicolon if line is empty or no delimiter occurs at all.
func DetectDelimiter(line string) rune {
	if line == "" {
		return DefaultDelimiter
	}

	delimiters := []rune{';', ',', '\t', '|'}
	maxCount := 0
	winner := rune(DefaultDelimiter)

	for _, delim := range delimiters {
		count := strings.Count(line, string(delim))
		if count > maxCount {
			maxCount = count
			winner = delim
		}
	}

	return winner
}

// ColumnCount calculates the number of columns based on a line and delimiter.
// It assumes the delimiter splits the line directly (ignoring quotes for estimation).
func ColumnCount(line string, delimiter rune) int {
	if line == "" {
		return 0
	}
	return strings.Count(line, string(delimiter)) + 1
}
