package dns

import (
	"context"
	"errors"
	"net"
	"testing"
)

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		isNotFound bool
		isTemp     bool
	}{
		{
			name:       "not found error",
			err:        ErrNotFound,
			isNotFound: true,
		},
		{
			name:   "timeout error",
			err:    ErrTimeout,
			isTemp: true,
		},
		{
			name:   "server failure",
			err:    ErrServFail,
			isTemp: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("something else"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.isNotFound {
				t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, got, tt.isNotFound)
			}
			if got := IsTemporary(tt.err); got != tt.isTemp {
				t.Errorf("IsTemporary(%v) = %v, want %v", tt.err, got, tt.isTemp)
			}
		})
	}
}

func TestMockResolverLookupIP(t *testing.T) {
	resolver := MockResolver{
		A: map[string][]string{
			"mail.example.com.": {"192.0.2.10", "192.0.2.11"},
		},
		AAAA: map[string][]string{
			"mail.example.com.": {"2001:db8::10"},
		},
		Fail: []string{"broken.example.com"},
	}

	ips, err := resolver.LookupIP(context.Background(), "mail.example.com")
	if err != nil {
		t.Fatalf("LookupIP: %v", err)
	}
	if len(ips) != 3 {
		t.Fatalf("got %d records, want 3", len(ips))
	}
	if !ips[0].Equal(net.ParseIP("192.0.2.10")) {
		t.Errorf("first record = %v, want 192.0.2.10", ips[0])
	}
	if !ips[2].Equal(net.ParseIP("2001:db8::10")) {
		t.Errorf("last record = %v, want 2001:db8::10", ips[2])
	}
}

func TestMockResolverNotFound(t *testing.T) {
	resolver := MockResolver{}
	_, err := resolver.LookupIP(context.Background(), "missing.example.com")
	if !IsNotFound(err) {
		t.Errorf("LookupIP on empty mock = %v, want ErrNotFound", err)
	}
}

func TestMockResolverFail(t *testing.T) {
	resolver := MockResolver{
		A:    map[string][]string{"broken.example.com.": {"192.0.2.1"}},
		Fail: []string{"broken.example.com"},
	}
	_, err := resolver.LookupIP(context.Background(), "broken.example.com")
	if !errors.Is(err, ErrServFail) {
		t.Errorf("LookupIP on failing mock = %v, want ErrServFail", err)
	}
}

func TestMockResolverContextCancelled(t *testing.T) {
	resolver := MockResolver{
		A: map[string][]string{"mail.example.com.": {"192.0.2.10"}},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := resolver.LookupIP(ctx, "mail.example.com"); !errors.Is(err, context.Canceled) {
		t.Errorf("LookupIP with cancelled context = %v, want context.Canceled", err)
	}
}
