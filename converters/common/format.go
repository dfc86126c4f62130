package common

import (
	"fmt"
	"strings"
)

// Format is the closed set of external representations the engine handles.
type Format int

const (
	FormatSQL Format = iota
	FormatCSV
	FormatXML
	FormatJSON
	FormatHTML
	FormatText
	FormatPDF
	FormatXLSX
	FormatMarkdown

	// FormatCount is the number of formats; it sizes per-format tables.
	FormatCount
)

type formatInfo struct {
	name        string
	ext         string
	contentType string
	aliases     []string
}

var formatInfos = [FormatCount]formatInfo{
	FormatSQL:      {"sql", "sql", "application/sql", nil},
	FormatCSV:      {"csv", "csv", "text/csv; charset=utf-8", nil},
	FormatXML:      {"xml", "xml", "application/xml; charset=utf-8", nil},
	FormatJSON:     {"json", "json", "application/json; charset=utf-8", nil},
	FormatHTML:     {"html", "html", "text/html; charset=utf-8", []string{"htm"}},
	FormatText:     {"txt", "txt", "text/plain; charset=utf-8", []string{"text"}},
	FormatPDF:      {"pdf", "pdf", "application/pdf", nil},
	FormatXLSX:     {"xlsx", "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", []string{"excel"}},
	FormatMarkdown: {"markdown", "md", "text/markdown; charset=utf-8", []string{"md"}},
}

func (f Format) valid() bool { return f >= 0 && f < FormatCount }

func (f Format) String() string {
	if !f.valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatInfos[f].name
}

// Extension is the file extension used for <table>.<ext> paths, without the dot.
func (f Format) Extension() string {
	if !f.valid() {
		return ""
	}
	return formatInfos[f].ext
}

// ContentType is the MIME type to announce when streaming over HTTP.
func (f Format) ContentType() string {
	if !f.valid() {
		return "application/octet-stream"
	}
	return formatInfos[f].contentType
}

// Formats lists every format in declaration order.
func Formats() []Format {
	list := make([]Format, FormatCount)
	for i := range list {
		list[i] = Format(i)
	}
	return list
}

// ParseFormat resolves a format by name, alias or extension, ignoring case
// and a leading dot.
func ParseFormat(name string) (Format, error) {
	n := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")
	for i, info := range formatInfos {
		if n == info.name || n == info.ext {
			return Format(i), nil
		}
		for _, a := range info.aliases {
			if n == a {
				return Format(i), nil
			}
		}
	}
	return 0, fmt.Errorf("unknown format %q", name)
}
