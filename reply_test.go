package smtpwire

import "testing"

func TestParseReplyCode(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"220 mail.example.com ESMTP ready", "220"},
		{"250-PIPELINING", "250"},
		{"250 ", "250"},
		{"250", "250"},
		{"25", ""},
		{"2", ""},
		{"", ""},
		{"xyz not a code", "xyz"},
	}

	for _, tt := range tests {
		if got := ParseReplyCode(tt.line); got != tt.want {
			t.Errorf("ParseReplyCode(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestIsTerminalReply(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"250 OK", true},
		{"250 ", true},
		{"250-PIPELINING", false},
		{"250", false},
		{"25", false},
		{"", false},
		{"354 Start mail input", true},
		{"250+nonstandard separator", false},
	}

	for _, tt := range tests {
		if got := IsTerminalReply(tt.line); got != tt.want {
			t.Errorf("IsTerminalReply(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestDecodeReplyLine(t *testing.T) {
	line := DecodeReplyLine("250-SIZE 35882577")
	if line.Text != "250-SIZE 35882577" {
		t.Errorf("Text = %q", line.Text)
	}
	if line.Code != "250" {
		t.Errorf("Code = %q, want 250", line.Code)
	}
	if line.Terminal {
		t.Error("continuation line decoded as terminal")
	}
	if got := line.Message(); got != "SIZE 35882577" {
		t.Errorf("Message() = %q, want %q", got, "SIZE 35882577")
	}

	// Malformed short line: empty code, never terminal, never panics.
	short := DecodeReplyLine("25")
	if short.Code != "" || short.Terminal {
		t.Errorf("DecodeReplyLine(%q) = %+v, want empty code and non-terminal", "25", short)
	}
	if got := short.Message(); got != "" {
		t.Errorf("Message() on short line = %q, want empty", got)
	}
}

func TestReplyLineClasses(t *testing.T) {
	tests := []struct {
		line      string
		success   bool
		interm    bool
		transient bool
		permanent bool
	}{
		{"250 OK", true, false, false, false},
		{"354 Go ahead", false, true, false, false},
		{"421 Shutting down", false, false, true, false},
		{"554 No relay", false, false, false, true},
		{"xx", false, false, false, false},
	}

	for _, tt := range tests {
		l := DecodeReplyLine(tt.line)
		if l.IsSuccess() != tt.success {
			t.Errorf("%q IsSuccess = %v", tt.line, l.IsSuccess())
		}
		if l.IsIntermediate() != tt.interm {
			t.Errorf("%q IsIntermediate = %v", tt.line, l.IsIntermediate())
		}
		if l.IsTransientError() != tt.transient {
			t.Errorf("%q IsTransientError = %v", tt.line, l.IsTransientError())
		}
		if l.IsPermanentError() != tt.permanent {
			t.Errorf("%q IsPermanentError = %v", tt.line, l.IsPermanentError())
		}
	}
}

func TestParseEnhancedCode(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"2.1.5 Recipient OK", "2.1.5"},
		{"5.7.1 Relaying denied", "5.7.1"},
		{"Recipient OK", ""},
		{"2.1 incomplete", ""},
		{"a.b.c letters", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ParseEnhancedCode(tt.msg); got != tt.want {
			t.Errorf("ParseEnhancedCode(%q) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}
