package lineio

import (
	"reflect"
	"testing"
)

func TestSplitterFeed(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   [][]string
	}{
		{
			name:   "single complete line",
			chunks: []string{"220 ready\r\n"},
			want:   [][]string{{"220 ready"}},
		},
		{
			name:   "line split across chunks",
			chunks: []string{"220 re", "ady\r\n"},
			want:   [][]string{nil, {"220 ready"}},
		},
		{
			name:   "delimiter split across chunks",
			chunks: []string{"220 ready\r", "\n"},
			want:   [][]string{nil, {"220 ready"}},
		},
		{
			name:   "multiple lines in one chunk",
			chunks: []string{"250-first\r\n250-second\r\n250 last\r\n"},
			want:   [][]string{{"250-first", "250-second", "250 last"}},
		},
		{
			name:   "bare LF framing",
			chunks: []string{"250 ok\n"},
			want:   [][]string{{"250 ok"}},
		},
		{
			name:   "trailing partial retained",
			chunks: []string{"250 ok\r\n354 go", " ahead\r\n"},
			want:   [][]string{{"250 ok"}, {"354 go ahead"}},
		},
		{
			name:   "empty line",
			chunks: []string{"\r\n"},
			want:   [][]string{{""}},
		},
		{
			name:   "empty chunk",
			chunks: []string{""},
			want:   [][]string{nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSplitter()
			for i, chunk := range tt.chunks {
				got := s.Feed([]byte(chunk))
				if !reflect.DeepEqual(got, tt.want[i]) {
					t.Errorf("Feed(%q) = %v, want %v", chunk, got, tt.want[i])
				}
			}
		})
	}
}

func TestSplitterTail(t *testing.T) {
	s := NewSplitter()
	if got := s.Tail(); got != nil {
		t.Errorf("Tail() on empty splitter = %q, want nil", got)
	}

	s.Feed([]byte("250 ok\r\npart"))
	if got := string(s.Tail()); got != "part" {
		t.Errorf("Tail() = %q, want %q", got, "part")
	}

	// The returned tail is a copy: mutating it must not affect the splitter.
	tail := s.Tail()
	tail[0] = 'X'
	if got := string(s.Tail()); got != "part" {
		t.Errorf("Tail() after mutating copy = %q, want %q", got, "part")
	}

	if got := s.Feed([]byte("ial\r\n")); len(got) != 1 || got[0] != "partial" {
		t.Errorf("Feed completing tail = %v, want [partial]", got)
	}
	if got := s.Tail(); got != nil {
		t.Errorf("Tail() after completion = %q, want nil", got)
	}
}

func TestSplitterReset(t *testing.T) {
	s := NewSplitter()
	s.Feed([]byte("orphaned partial"))
	s.Reset()

	if got := s.Tail(); got != nil {
		t.Errorf("Tail() after Reset = %q, want nil", got)
	}
	if got := s.Feed([]byte("250 ok\r\n")); len(got) != 1 || got[0] != "250 ok" {
		t.Errorf("Feed after Reset = %v, want [250 ok]", got)
	}
}

func TestSplitterOrderPreserved(t *testing.T) {
	s := NewSplitter()
	var got []string
	// One byte at a time: the pathological chunking case.
	for _, b := range []byte("150-a\r\n150-b\r\n150 c\r\n") {
		got = append(got, s.Feed([]byte{b})...)
	}
	want := []string{"150-a", "150-b", "150 c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("byte-at-a-time lines = %v, want %v", got, want)
	}
}
