package client

import "strings"

// MaxLineLength caps how much of a single line is kept. Anything past it is
// discarded up to the next line terminator.
const MaxLineLength = 1024

// LineBuffer accumulates raw bytes from a connection and splits them into
// trimmed lines on CR or LF. A CR immediately followed by LF ends one line,
// not two. Incomplete lines stay buffered until their terminator arrives.
type LineBuffer struct {
	pending []byte
	sawCR   bool
}

// Feed appends data to the buffer and returns every line it completed.
func (b *LineBuffer) Feed(data []byte) []string {
	var lines []string

	for _, ch := range data {
		switch ch {
		case '\n':
			if b.sawCR {
				b.sawCR = false
				continue
			}
			lines = append(lines, b.flush())
		case '\r':
			b.sawCR = true
			lines = append(lines, b.flush())
		default:
			b.sawCR = false
			if len(b.pending) < MaxLineLength {
				b.pending = append(b.pending, ch)
			}
		}
	}

	return lines
}

// Pending returns the number of buffered bytes not yet part of a line.
func (b *LineBuffer) Pending() int {
	return len(b.pending)
}

func (b *LineBuffer) flush() string {
	line := strings.TrimSpace(string(b.pending))
	b.pending = b.pending[:0]
	return line
}
