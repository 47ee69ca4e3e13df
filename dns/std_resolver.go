package dns

import (
	"context"
	"errors"
	"net"
	"strings"
)

// StdResolver implements the Resolver interface using the standard library
// net package.
type StdResolver struct {
	resolver *net.Resolver
}

var _ Resolver = (*StdResolver)(nil)

// NewStdResolver creates a resolver using the standard library.
func NewStdResolver() *StdResolver {
	return &StdResolver{
		resolver: net.DefaultResolver,
	}
}

// NewStdResolverWithDialer creates a resolver using a custom dialer.
// This allows configuring custom DNS servers while using the stdlib interface.
func NewStdResolverWithDialer(dial func(ctx context.Context, network, address string) (net.Conn, error)) *StdResolver {
	return &StdResolver{
		resolver: &net.Resolver{
			PreferGo: true,
			Dial:     dial,
		},
	}
}

// LookupIP retrieves A and AAAA records using the standard library.
func (r *StdResolver) LookupIP(ctx context.Context, host string) ([]net.IP, error) {
	// Strip trailing dot for stdlib compatibility
	host = strings.TrimSuffix(host, ".")

	ips, err := r.resolver.LookupIP(ctx, "ip", host)
	if err != nil {
		return nil, convertError(err)
	}

	if len(ips) == 0 {
		return nil, ErrNotFound
	}

	return ips, nil
}

// convertError maps standard library DNS errors to package sentinels.
func convertError(err error) error {
	var dnsErr *net.DNSError
	if !errors.As(err, &dnsErr) {
		return err
	}
	switch {
	case dnsErr.IsNotFound:
		return ErrNotFound
	case dnsErr.IsTimeout:
		return ErrTimeout
	case dnsErr.IsTemporary:
		return ErrServFail
	default:
		return err
	}
}
