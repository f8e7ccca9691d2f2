package execshell

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// OutputEncoding identifies how captured standard output bytes are decoded into text.
type OutputEncoding string

// Supported output encodings.
const (
	// OutputEncodingConsole passes output through unchanged.
	OutputEncodingConsole OutputEncoding = "console"
	// OutputEncodingUTF16LE decodes 16-bit little-endian output, honouring a byte order mark when present.
	OutputEncodingUTF16LE OutputEncoding = "utf-16le"
)

// Normalize maps unknown or empty encodings onto the console default.
func (encoding OutputEncoding) Normalize() OutputEncoding {
	switch OutputEncoding(strings.ToLower(strings.TrimSpace(string(encoding)))) {
	case OutputEncodingUTF16LE:
		return OutputEncodingUTF16LE
	default:
		return OutputEncodingConsole
	}
}

// NewDecodingReader wraps the reader so that it yields UTF-8 text for the encoding.
func NewDecodingReader(reader io.Reader, encoding OutputEncoding) io.Reader {
	switch encoding.Normalize() {
	case OutputEncodingUTF16LE:
		decoder := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		return transform.NewReader(reader, decoder)
	default:
		return reader
	}
}
