package common

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err  error
		is   error
		kind string
	}{
		{Malformedf("bad header"), ErrMalformedInput, "malformed_input"},
		{Malformed(io.ErrUnexpectedEOF, "truncated"), ErrMalformedInput, "malformed_input"},
		{Encodingf("bad number %q", "x"), ErrEncoding, "encoding"},
		{Connectivity(io.EOF, "ping"), ErrConnectivity, "connectivity"},
		{Transaction(io.EOF, "commit"), ErrTransaction, "transaction"},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, tt.is) {
			t.Errorf("%v: errors.Is(%v) = false", tt.err, tt.is)
		}
		if got := ErrorKind(tt.err); got != tt.kind {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.kind)
		}
	}

	wrapped := Malformed(io.ErrUnexpectedEOF, "truncated")
	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Error("cause is not reachable through errors.Is")
	}
	if !strings.Contains(wrapped.Error(), "truncated") {
		t.Errorf("message = %q", wrapped.Error())
	}
	if ErrorKind(io.EOF) != "io" || ErrorKind(nil) != "" {
		t.Error("unexpected kind for plain errors")
	}
}

func TestResult(t *testing.T) {
	r := Failed(Malformedf("x"))
	if r.Succeeded || r.RowsAffected != 0 || r.ErrorDetail == "" {
		t.Errorf("Failed = %+v", r)
	}
	if r := Succeeded(3); !r.Succeeded || r.RowsAffected != 3 {
		t.Errorf("Succeeded = %+v", r)
	}
}
