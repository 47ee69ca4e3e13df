package dns

import (
	"context"
	"net"
	"slices"
)

// MockResolver is a Resolver used for testing.
// Set DNS records in the fields, which map hostnames (with or without a
// trailing dot) to address strings.
type MockResolver struct {
	A    map[string][]string
	AAAA map[string][]string

	// Fail contains hostnames whose lookups return ErrServFail.
	Fail []string
}

var _ Resolver = MockResolver{}

// ensureFQDN ensures the name ends with a dot.
func ensureFQDN(name string) string {
	if len(name) == 0 || name[len(name)-1] != '.' {
		return name + "."
	}
	return name
}

// LookupIP returns the configured A and AAAA records for host.
func (r MockResolver) LookupIP(ctx context.Context, host string) ([]net.IP, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := ensureFQDN(host)
	if slices.Contains(r.Fail, host) || slices.Contains(r.Fail, name) {
		return nil, ErrServFail
	}

	var ips []net.IP
	for _, rec := range r.A[name] {
		if ip := net.ParseIP(rec); ip != nil {
			ips = append(ips, ip)
		}
	}
	for _, rec := range r.AAAA[name] {
		if ip := net.ParseIP(rec); ip != nil {
			ips = append(ips, ip)
		}
	}
	// Accept records keyed without the trailing dot as well.
	if name != host {
		for _, rec := range r.A[host] {
			if ip := net.ParseIP(rec); ip != nil {
				ips = append(ips, ip)
			}
		}
		for _, rec := range r.AAAA[host] {
			if ip := net.ParseIP(rec); ip != nil {
				ips = append(ips, ip)
			}
		}
	}

	if len(ips) == 0 {
		return nil, ErrNotFound
	}
	return ips, nil
}
