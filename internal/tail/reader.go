package tail

import (
	"bufio"
	"io"
)

const readBufferSize = 64 * 1024

// lineReader returns newline-terminated lines from a file that may still be
// growing. bufio.Reader does not latch io.EOF, so reads resume once the file
// grows.
type lineReader struct {
	r       *bufio.Reader
	partial []byte
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReaderSize(r, readBufferSize)}
}

// next returns the next complete line without its terminator. A trailing
// fragment with no newline yet is held back and io.EOF returned; the fragment
// is prepended to whatever the next read finds.
func (lr *lineReader) next() ([]byte, error) {
	chunk, err := lr.r.ReadBytes('\n')
	lr.partial = append(lr.partial, chunk...)
	if err != nil {
		return nil, err
	}
	line := append([]byte(nil), trimLine(lr.partial)...)
	lr.partial = lr.partial[:0]
	return line, nil
}
