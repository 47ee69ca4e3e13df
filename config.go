package smtpwire

import (
	"crypto/tls"
	"log/slog"
	"time"

	"github.com/oxidelabs/smtpwire/dns"
)

// Config holds the per-session configuration for a channel. It is read at
// construction and never mutated by the channel; UpgradeOptions carries the
// per-call overrides for a TLS upgrade without touching the base Config.
type Config struct {
	// Host is the server hostname or IP address.
	Host string

	// Port is the server port.
	Port int

	// LocalAddr is an optional local IP address to bind to.
	LocalAddr string

	// LocalPort is an optional local port to bind to.
	LocalPort int

	// Family restricts address resolution: "ip" (default, either),
	// "ip4", or "ip6".
	Family string

	// ConnectTimeout bounds transport establishment, including the TLS
	// handshake for implicit-TLS connections.
	ConnectTimeout time.Duration

	// IdleTimeout is the inactivity threshold after which the channel
	// emits a timeout notification and issues its session-termination
	// command. Zero disables the idle timer.
	IdleTimeout time.Duration

	// TLS enables implicit TLS from the first byte (typically port 465).
	TLS bool

	// TLSConfig is the TLS configuration for implicit TLS and, unless
	// overridden per call, for UpgradeTLS. ServerName defaults to Host.
	TLSConfig *tls.Config

	// SOCKSProxy is an optional SOCKS5 proxy address ("host:port") to
	// dial through.
	SOCKSProxy string

	// Resolver resolves Host to IP addresses. Nil uses the system
	// resolver via the standard library.
	Resolver dns.Resolver

	// Logger receives structured debug output, including wire traces at
	// debug level. Nil discards all output.
	Logger *slog.Logger

	// Events holds the observer callbacks.
	Events *Events
}

// DefaultConfig returns a Config for the given endpoint with sensible
// defaults.
func DefaultConfig(host string, port int) *Config {
	return &Config{
		Host:           host,
		Port:           port,
		Family:         "ip",
		ConnectTimeout: 30 * time.Second,
		IdleTimeout:    5 * time.Minute,
	}
}

// ConnectOptions controls a single Connect call.
type ConnectOptions struct {
	// Handler is invoked for each line of the server greeting.
	Handler ReplyHandler

	// Timeout bounds the whole connect, greeting included. Zero means
	// no deadline beyond the dialer's own ConnectTimeout.
	Timeout time.Duration
}

// CommandOptions controls a single Command or CommandFrom call.
type CommandOptions struct {
	// Handler is invoked for each line of the reply block, before
	// settlement is considered. A handler error rejects the command.
	Handler ReplyHandler

	// Timeout bounds the wait for the terminal reply. Zero disables it.
	Timeout time.Duration
}

// UpgradeOptions controls a single UpgradeTLS call. Zero values fall back
// to the channel's base Config.
type UpgradeOptions struct {
	// TLSConfig overrides Config.TLSConfig for this upgrade.
	TLSConfig *tls.Config

	// ServerName overrides the TLS server name (default: Config.Host).
	ServerName string

	// Timeout bounds the handshake. Zero disables it.
	Timeout time.Duration
}
