package common

// Kind tags the variant held by a Cell.
type Kind int

const (
	KindNull Kind = iota
	KindNumber
	KindTemporal
	KindBinary
	KindText
)

// Cell is one value of a row. Number and Temporal cells keep their textual
// form so decimal precision survives untouched; Binary cells carry raw bytes.
type Cell struct {
	Kind  Kind
	Text  string
	Bytes []byte
}

// Row is a sequence of cells aligned positionally to a column list.
type Row []Cell

func NullCell() Cell { return Cell{Kind: KindNull} }
func NumberCell(s string) Cell { return Cell{Kind: KindNumber, Text: s} }
func TemporalCell(s string) Cell { return Cell{Kind: KindTemporal, Text: s} }
func BinaryCell(b []byte) Cell { return Cell{Kind: KindBinary, Bytes: b} }
func TextCell(s string) Cell { return Cell{Kind: KindText, Text: s} }
func (c Cell) IsNull() bool { return c.Kind == KindNull }

// String is the plain text form of the cell. Null is empty and binary
// values use HexLiteral.
func (c Cell) String() string {
	switch c.Kind {
	case KindNull:
		return ""
	case KindBinary:
		return HexLiteral(c.Bytes)
	default:
		return c.Text
	}
}
