package smtpwire

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"

	"golang.org/x/net/proxy"

	"github.com/oxidelabs/smtpwire/dns"
)

// dialTransport turns the channel Config into an established connection:
// hostname resolution with address-family selection, optional local address
// binding, optional SOCKS5 proxying, and the TLS handshake for implicit-TLS
// sessions.
func dialTransport(ctx context.Context, cfg *Config) (net.Conn, error) {
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	host, err := resolveHost(ctx, cfg)
	if err != nil {
		return nil, err
	}
	address := net.JoinHostPort(host, strconv.Itoa(cfg.Port))

	netDialer := &net.Dialer{
		Timeout: cfg.ConnectTimeout,
	}
	if cfg.LocalAddr != "" || cfg.LocalPort != 0 {
		laddr, err := resolveLocalAddr(cfg.LocalAddr, cfg.LocalPort)
		if err != nil {
			return nil, fmt.Errorf("invalid local address: %w", err)
		}
		netDialer.LocalAddr = laddr
	}

	conn, err := dialNet(ctx, netDialer, cfg, address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	if !cfg.TLS {
		return conn, nil
	}

	tlsConn := tls.Client(conn, tlsClientConfig(cfg.TLSConfig, cfg.Host))
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("TLS handshake failed: %w", err)
	}
	return tlsConn, nil
}

// dialNet performs the TCP connect, directly or through the SOCKS5 proxy.
func dialNet(ctx context.Context, netDialer *net.Dialer, cfg *Config, address string) (net.Conn, error) {
	network := tcpNetwork(cfg.Family)

	if cfg.SOCKSProxy == "" {
		return netDialer.DialContext(ctx, network, address)
	}

	socks, err := proxy.SOCKS5("tcp", cfg.SOCKSProxy, nil, netDialer)
	if err != nil {
		return nil, fmt.Errorf("socks proxy: %w", err)
	}
	if cd, ok := socks.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}
	return socks.Dial(network, address)
}

// resolveHost picks the address to connect to: a literal IP passes through
// unchanged, otherwise the configured resolver supplies the records and the
// first one matching the configured family wins. With no resolver set, the
// hostname is handed to the dialer as-is and family selection happens via
// the network string.
func resolveHost(ctx context.Context, cfg *Config) (string, error) {
	if ip := net.ParseIP(cfg.Host); ip != nil {
		return cfg.Host, nil
	}
	if cfg.Resolver == nil {
		return cfg.Host, nil
	}

	ips, err := cfg.Resolver.LookupIP(ctx, cfg.Host)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", cfg.Host, err)
	}
	ip := pickAddress(ips, cfg.Family)
	if ip == nil {
		return "", fmt.Errorf("resolve %s: %w for family %q", cfg.Host, dns.ErrNotFound, cfg.Family)
	}
	return ip.String(), nil
}

// pickAddress returns the first record matching the address family, or nil.
func pickAddress(ips []net.IP, family string) net.IP {
	for _, ip := range ips {
		switch family {
		case "ip4":
			if ip.To4() != nil {
				return ip
			}
		case "ip6":
			if ip.To4() == nil {
				return ip
			}
		default:
			return ip
		}
	}
	return nil
}

// tcpNetwork maps an address family to the dialer network string.
func tcpNetwork(family string) string {
	switch family {
	case "ip4":
		return "tcp4"
	case "ip6":
		return "tcp6"
	default:
		return "tcp"
	}
}

// resolveLocalAddr builds the local *net.TCPAddr to bind to.
func resolveLocalAddr(addr string, port int) (*net.TCPAddr, error) {
	laddr := &net.TCPAddr{Port: port}
	if addr != "" {
		ip := net.ParseIP(addr)
		if ip == nil {
			return nil, fmt.Errorf("not an IP address: %q", addr)
		}
		laddr.IP = ip
	}
	return laddr, nil
}

// tlsClientConfig clones base (nil allowed) and defaults ServerName.
func tlsClientConfig(base *tls.Config, serverName string) *tls.Config {
	var config *tls.Config
	if base == nil {
		config = &tls.Config{}
	} else {
		config = base.Clone()
	}
	if config.ServerName == "" {
		config.ServerName = serverName
	}
	return config
}
