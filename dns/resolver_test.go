package dns

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	mdns "github.com/miekg/dns"
)

// serveTestZone starts a DNS server on a loopback UDP socket with a small
// fixed zone and returns its address.
func serveTestZone(t *testing.T) string {
	t.Helper()

	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}

	srv := &mdns.Server{
		PacketConn: pc,
		Handler: mdns.HandlerFunc(func(w mdns.ResponseWriter, req *mdns.Msg) {
			m := new(mdns.Msg)
			m.SetReply(req)
			q := req.Question[0]
			switch q.Name {
			case "mail.example.com.":
				switch q.Qtype {
				case mdns.TypeA:
					rr, _ := mdns.NewRR("mail.example.com. 300 IN A 192.0.2.5")
					m.Answer = append(m.Answer, rr)
				case mdns.TypeAAAA:
					rr, _ := mdns.NewRR("mail.example.com. 300 IN AAAA 2001:db8::5")
					m.Answer = append(m.Answer, rr)
				}
			case "v4only.example.com.":
				if q.Qtype == mdns.TypeA {
					rr, _ := mdns.NewRR("v4only.example.com. 300 IN A 192.0.2.6")
					m.Answer = append(m.Answer, rr)
				}
			case "missing.example.com.":
				m.Rcode = mdns.RcodeNameError
			case "broken.example.com.":
				m.Rcode = mdns.RcodeServerFailure
			}
			w.WriteMsg(m)
		}),
	}
	go srv.ActivateAndServe()
	t.Cleanup(func() { srv.Shutdown() })

	return pc.LocalAddr().String()
}

func testResolver(t *testing.T) *DNSResolver {
	t.Helper()
	return NewResolver(ResolverConfig{
		Nameservers: []string{serveTestZone(t)},
		Timeout:     2 * time.Second,
		Retries:     1,
	})
}

func TestDNSResolverLookupIP(t *testing.T) {
	r := testResolver(t)

	ips, err := r.LookupIP(context.Background(), "mail.example.com")
	if err != nil {
		t.Fatalf("LookupIP: %v", err)
	}
	if len(ips) != 2 {
		t.Fatalf("got %d records, want A and AAAA merged: %v", len(ips), ips)
	}
	if !ips[0].Equal(net.ParseIP("192.0.2.5")) {
		t.Errorf("A record = %v, want 192.0.2.5", ips[0])
	}
	if !ips[1].Equal(net.ParseIP("2001:db8::5")) {
		t.Errorf("AAAA record = %v, want 2001:db8::5", ips[1])
	}
}

func TestDNSResolverSingleFamily(t *testing.T) {
	r := testResolver(t)

	// An empty AAAA answer must not fail the lookup.
	ips, err := r.LookupIP(context.Background(), "v4only.example.com")
	if err != nil {
		t.Fatalf("LookupIP: %v", err)
	}
	if len(ips) != 1 || !ips[0].Equal(net.ParseIP("192.0.2.6")) {
		t.Errorf("got %v, want just 192.0.2.6", ips)
	}
}

func TestDNSResolverNXDomain(t *testing.T) {
	r := testResolver(t)

	_, err := r.LookupIP(context.Background(), "missing.example.com")
	if !IsNotFound(err) {
		t.Errorf("LookupIP on NXDOMAIN = %v, want ErrNotFound", err)
	}
}

func TestDNSResolverServFail(t *testing.T) {
	r := testResolver(t)

	// SERVFAIL is retried, then surfaced as a temporary failure.
	_, err := r.LookupIP(context.Background(), "broken.example.com")
	if !errors.Is(err, ErrServFail) {
		t.Errorf("LookupIP on SERVFAIL = %v, want ErrServFail", err)
	}
}

func TestNewResolverDefaults(t *testing.T) {
	r := NewResolver(ResolverConfig{Nameservers: []string{"192.0.2.1:53"}})
	cfg := r.Config()
	if cfg.Timeout != 5*time.Second {
		t.Errorf("default Timeout = %v, want 5s", cfg.Timeout)
	}
	if cfg.Retries != 2 {
		t.Errorf("default Retries = %d, want 2", cfg.Retries)
	}
}
