package common

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

// Dialect selects the SQL literal syntax used for binary values.
type Dialect int

const (
	// DialectMySQL renders binary values as UNHEX('...'). SQLite 3.41+
	// accepts the same function.
	DialectMySQL Dialect = iota
	// DialectSQLServer renders binary values as 0x... literals.
	DialectSQLServer
)

func (d Dialect) String() string {
	switch d {
	case DialectSQLServer:
		return "sqlserver"
	default:
		return "mysql"
	}
}

// ParseDialect resolves a dialect by name.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql", "mariadb", "sqlite", "sqlite3":
		return DialectMySQL, nil
	case "sqlserver", "mssql":
		return DialectSQLServer, nil
	}
	return DialectMySQL, fmt.Errorf("unknown SQL dialect %q", name)
}

// ToHex encodes bytes as uppercase hex with no separators.
func ToHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// FromHex decodes hex text, accepting either letter case.
func FromHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, Encodingf("invalid hex value: %v", err)
	}
	return b, nil
}

// ToBase64 encodes bytes with the standard alphabet and no line wrapping.
func ToBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// FromBase64 decodes standard base64 text.
func FromBase64(s string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, Encodingf("invalid base64 value: %v", err)
	}
	return b, nil
}

// HexLiteral is the text form of a binary value in every text-based export:
// "0x" followed by uppercase hex.
func HexLiteral(b []byte) string {
	return "0x" + ToHex(b)
}

// ToSQLLiteral renders bytes as a binary literal valid for the dialect.
func ToSQLLiteral(b []byte, d Dialect) string {
	switch d {
	case DialectSQLServer:
		if len(b) == 0 {
			// 0x alone is a valid empty varbinary in T-SQL.
			return "0x"
		}
		return "0x" + ToHex(b)
	default:
		return "UNHEX('" + ToHex(b) + "')"
	}
}

var (
	hexPrefixLiteral = regexp.MustCompile(`^0[xX]([0-9A-Fa-f]{2})*$`)
	xQuotedLiteral   = regexp.MustCompile(`^[xX]'((?:[0-9A-Fa-f]{2})*)'$`)
	unhexLiteral     = regexp.MustCompile(`^(?i:unhex)\('((?:[0-9A-Fa-f]{2})*)'\)$`)
)

// LooksLikeSQLBinaryLiteral reports whether s is already written as a binary
// literal in one of the recognized notations: 0xABCD, X'ABCD' or UNHEX('ABCD').
// Text that happens to match is accepted as binary.
func LooksLikeSQLBinaryLiteral(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < 3 {
		return false
	}
	return hexPrefixLiteral.MatchString(s) || xQuotedLiteral.MatchString(s) || unhexLiteral.MatchString(s)
}

// ParseSQLBinaryLiteral decodes a literal recognized by LooksLikeSQLBinaryLiteral.
func ParseSQLBinaryLiteral(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	switch {
	case hexPrefixLiteral.MatchString(s):
		return FromHex(s[2:])
	case xQuotedLiteral.MatchString(s):
		return FromHex(xQuotedLiteral.FindStringSubmatch(s)[1])
	case unhexLiteral.MatchString(s):
		return FromHex(unhexLiteral.FindStringSubmatch(s)[1])
	}
	return nil, Encodingf("not a binary literal: %q", s)
}
