package printer

import (
	"bytes"
	"fmt"
	"strings"
)

// ESC/POS command constants
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Text alignment
const (
	AlignLeft   = 0
	AlignCenter = 1
	AlignRight  = 2
)

// Print modes for ESC ! n. Bits combine: 0x08 emphasized, 0x10 double height,
// 0x20 double width.
const (
	ModeNormal     byte = 0x00
	ModeEmphasized byte = 0x08
	ModeHeadline   byte = 0x38
)

// Document builds an ESC/POS byte stream for thermal printers.
type Document struct {
	buf   bytes.Buffer
	width int // separator width in characters
}

// NewDocument creates a new ESC/POS document with the given character width.
// The POS-80 receipts use 32 columns for separators.
func NewDocument(charWidth int) *Document {
	if charWidth <= 0 {
		charWidth = 32
	}
	d := &Document{width: charWidth}
	d.Init()
	return d
}

// Init sends the ESC @ (initialize printer) command.
func (d *Document) Init() *Document {
	d.buf.Write([]byte{ESC, '@'})
	return d
}

// LineSpacing sets line spacing to n dots (ESC 3 n).
func (d *Document) LineSpacing(n byte) *Document {
	d.buf.Write([]byte{ESC, '3', n})
	return d
}

// DefaultLineSpacing restores the printer's default spacing (ESC 2).
func (d *Document) DefaultLineSpacing() *Document {
	d.buf.Write([]byte{ESC, '2'})
	return d
}

// PrintMode selects character size and emphasis (ESC ! n).
func (d *Document) PrintMode(mode byte) *Document {
	d.buf.Write([]byte{ESC, '!', mode})
	return d
}

// SetAlign sets text alignment: AlignLeft, AlignCenter, AlignRight.
func (d *Document) SetAlign(align int) *Document {
	d.buf.Write([]byte{ESC, 'a', byte(align)})
	return d
}

// LineFeed sends a line feed.
func (d *Document) LineFeed() *Document {
	d.buf.WriteByte(LF)
	return d
}

// FeedLines sends n line feeds.
func (d *Document) FeedLines(n int) *Document {
	for i := 0; i < n; i++ {
		d.buf.WriteByte(LF)
	}
	return d
}

// Text writes a line of text followed by a line feed.
func (d *Document) Text(s string) *Document {
	d.buf.WriteString(s)
	d.buf.WriteByte(LF)
	return d
}

// TextF writes a formatted line of text followed by a line feed.
func (d *Document) TextF(format string, args ...interface{}) *Document {
	d.buf.WriteString(fmt.Sprintf(format, args...))
	d.buf.WriteByte(LF)
	return d
}

// Separator prints a full-width separator line (e.g. "--------------------------------").
func (d *Document) Separator(char byte) *Document {
	d.buf.WriteString(strings.Repeat(string(char), d.width))
	d.buf.WriteByte(LF)
	return d
}

// FeedCut feeds n lines past the cutter then cuts (GS V B n).
func (d *Document) FeedCut(n byte) *Document {
	d.buf.Write([]byte{GS, 'V', 'B', n})
	return d
}

// Bytes returns the accumulated ESC/POS stream.
func (d *Document) Bytes() []byte {
	return d.buf.Bytes()
}

// String returns the stream as a string, the form the spooler expects.
func (d *Document) String() string {
	return d.buf.String()
}
