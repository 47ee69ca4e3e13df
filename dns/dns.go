// Package dns provides hostname resolution for the smtpwire dialer.
//
// The Resolver interface is intentionally small: the dialer only needs
// address records. Implementations are DNSResolver (github.com/miekg/dns,
// with configurable nameservers and retries), StdResolver (standard
// library), and MockResolver (tests).
package dns

import (
	"context"
	"errors"
	"net"
)

// Resolution errors.
var (
	// ErrNotFound indicates the name does not exist (NXDOMAIN) or has no
	// address records.
	ErrNotFound = errors.New("dns: name not found")

	// ErrServFail indicates the nameserver reported a failure.
	ErrServFail = errors.New("dns: server failure")

	// ErrTimeout indicates the query did not complete in time.
	ErrTimeout = errors.New("dns: query timed out")
)

// Resolver resolves hostnames to IP addresses.
type Resolver interface {
	// LookupIP returns the A and AAAA records for host, in the order the
	// nameserver returned them. It returns ErrNotFound when the name has
	// no address records.
	LookupIP(ctx context.Context, host string) ([]net.IP, error)
}

// IsNotFound reports whether err indicates a nonexistent name.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTemporary reports whether err is worth retrying later.
func IsTemporary(err error) bool {
	return errors.Is(err, ErrServFail) || errors.Is(err, ErrTimeout)
}
