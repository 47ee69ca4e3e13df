// Package lineio reconstructs discrete protocol lines from an unbounded
// sequence of byte chunks whose boundaries carry no meaning.
package lineio

import "bytes"

// Splitter accumulates raw chunks and emits complete, delimiter-stripped
// lines. A partial line at the end of a chunk is retained until later
// chunks complete it. Lines are delimited by LF; a preceding CR is
// stripped, so both CRLF and bare LF framing decode to the same line.
//
// A Splitter is not safe for concurrent use.
type Splitter struct {
	tail []byte
}

// NewSplitter returns an empty Splitter.
func NewSplitter() *Splitter {
	return &Splitter{}
}

// Feed appends chunk to the retained tail and returns every line completed
// by it, in delivery order. The returned slice is nil when no line was
// completed.
func (s *Splitter) Feed(chunk []byte) []string {
	if len(chunk) == 0 {
		return nil
	}
	s.tail = append(s.tail, chunk...)

	var lines []string
	for {
		i := bytes.IndexByte(s.tail, '\n')
		if i < 0 {
			break
		}
		line := s.tail[:i]
		if n := len(line); n > 0 && line[n-1] == '\r' {
			line = line[:n-1]
		}
		lines = append(lines, string(line))
		s.tail = s.tail[i+1:]
	}
	if len(s.tail) == 0 {
		s.tail = nil
	}
	return lines
}

// Tail returns a copy of the unterminated remainder held by the splitter.
func (s *Splitter) Tail() []byte {
	if len(s.tail) == 0 {
		return nil
	}
	return append([]byte(nil), s.tail...)
}

// Reset discards any retained partial line.
func (s *Splitter) Reset() {
	s.tail = nil
}
