package smtpwire

import (
	"strconv"
	"strings"
)

// replyCodeLen is the fixed width of a reply code per RFC 5321 §4.2.
const replyCodeLen = 3

// ReplyLine is a single decoded protocol line from the server.
//
// The reply code is the first three characters of the line, taken verbatim.
// A line is terminal (the last line of a possibly multi-line reply) when
// the character immediately after the code is a space; continuation lines
// use "-" instead. Lines shorter than four characters are malformed and can
// never terminate a reply.
type ReplyLine struct {
	// Text is the raw line with the trailing CRLF stripped.
	Text string

	// Code is the three-character reply code, or "" for lines shorter
	// than three characters.
	Code string

	// Terminal reports whether this line ends the reply block.
	Terminal bool
}

// ParseReplyCode returns the reply code of a raw line: its first three
// characters, or "" when the line is shorter than that.
func ParseReplyCode(line string) string {
	if len(line) < replyCodeLen {
		return ""
	}
	return line[:replyCodeLen]
}

// IsTerminalReply reports whether a raw line is the terminal line of a
// reply block: at least four characters with a space after the code.
// Shorter lines are never terminal.
func IsTerminalReply(line string) bool {
	return len(line) > replyCodeLen && line[replyCodeLen] == ' '
}

// DecodeReplyLine decodes a raw protocol line into a ReplyLine.
func DecodeReplyLine(line string) ReplyLine {
	return ReplyLine{
		Text:     line,
		Code:     ParseReplyCode(line),
		Terminal: IsTerminalReply(line),
	}
}

// Message returns the human-readable part of the line, after the code and
// separator. Empty for malformed lines.
func (l ReplyLine) Message() string {
	if len(l.Text) <= replyCodeLen+1 {
		return ""
	}
	return l.Text[replyCodeLen+1:]
}

// IsSuccess reports whether the reply indicates success (2xx).
func (l ReplyLine) IsSuccess() bool {
	return strings.HasPrefix(l.Code, "2")
}

// IsIntermediate reports whether the reply is intermediate (3xx).
func (l ReplyLine) IsIntermediate() bool {
	return strings.HasPrefix(l.Code, "3")
}

// IsTransientError reports whether the reply indicates a transient error (4xx).
func (l ReplyLine) IsTransientError() bool {
	return strings.HasPrefix(l.Code, "4")
}

// IsPermanentError reports whether the reply indicates a permanent error (5xx).
func (l ReplyLine) IsPermanentError() bool {
	return strings.HasPrefix(l.Code, "5")
}

// ParseEnhancedCode extracts an enhanced status code (RFC 3463, "X.Y.Z")
// from a reply message, or returns "" if none is present.
func ParseEnhancedCode(msg string) string {
	if len(msg) < 5 {
		return ""
	}

	parts := strings.SplitN(msg, " ", 2)
	if len(parts) == 0 {
		return ""
	}

	code := parts[0]
	subparts := strings.Split(code, ".")
	if len(subparts) != 3 {
		return ""
	}

	for _, p := range subparts {
		if _, err := strconv.Atoi(p); err != nil {
			return ""
		}
	}

	return code
}
