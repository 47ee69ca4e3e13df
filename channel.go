package smtpwire

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/oxidelabs/smtpwire/lineio"
)

// Channel is a client-side session over a line-oriented request/reply
// protocol. It owns the live transport, the inbound and outbound line
// splitters, and the correlator matching commands to reply blocks.
//
// A Channel is safe for concurrent use, but the protocol itself is
// half-duplex at the command level: issuing a command while another is
// outstanding violates the protocol contract. The channel serializes such
// commands rather than rejecting them, but callers should not rely on
// that.
//
// A closed Channel may be connected again; each connect starts a fresh
// protocol session.
type Channel struct {
	id     string
	config *Config
	log    *slog.Logger
	events *Events

	mu       sync.Mutex
	tr       *transport
	gen      uint64
	secure   bool
	greeting ReplyLine
	corr     *correlator
	in       *lineio.Splitter
	out      *lineio.Splitter
}

// New creates a Channel for the given configuration. The configuration is
// not copied; it must not be mutated after this call.
func New(config *Config) *Channel {
	if config == nil {
		config = DefaultConfig("localhost", 25)
	}
	if config.Family == "" {
		config.Family = "ip"
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	id := ulid.Make().String()
	return &Channel{
		id:     id,
		config: config,
		log:    logger.With(slog.String("channel", id)),
		events: config.Events,
		in:     lineio.NewSplitter(),
		out:    lineio.NewSplitter(),
	}
}

// ID returns the channel's unique session identifier.
func (c *Channel) ID() string {
	return c.id
}

// IsSecure reports whether the current transport was established in
// encrypted mode.
func (c *Channel) IsSecure() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.secure
}

// IsConnected reports whether a live transport exists.
func (c *Channel) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tr != nil
}

// Connect establishes the transport and captures the server's unsolicited
// greeting, returning its terminal line. Connecting an already-connected
// channel is a no-op that returns the original greeting immediately.
//
// opts.Handler receives each greeting line; opts.Timeout bounds the whole
// operation. On timeout the dial keeps running in the background and is
// torn down if it completes after a subsequent Close.
func (c *Channel) Connect(ctx context.Context, opts *ConnectOptions) (ReplyLine, error) {
	if opts == nil {
		opts = &ConnectOptions{}
	}

	c.mu.Lock()
	if c.tr != nil {
		greeting := c.greeting
		c.mu.Unlock()
		return greeting, nil
	}
	c.gen++
	gen := c.gen
	corr := newCorrelator()
	c.corr = corr
	c.in.Reset()
	c.out.Reset()
	// Armed before any byte arrives: the greeting is an unsolicited
	// reply block and must not be dropped.
	pending := corr.arm(opts.Handler)
	c.mu.Unlock()

	c.log.Debug("connecting",
		slog.String("host", c.config.Host),
		slog.Int("port", c.config.Port),
		slog.Bool("tls", c.config.TLS))

	return race(ctx, opts.Timeout, ErrTimeout, func() (ReplyLine, error) {
		conn, err := dialTransport(ctx, c.config)
		if err != nil {
			c.mu.Lock()
			if c.gen == gen {
				c.corr = nil
			}
			c.mu.Unlock()
			return ReplyLine{}, err
		}

		c.mu.Lock()
		if c.gen != gen {
			// The caller stopped waiting and the channel moved on.
			c.mu.Unlock()
			conn.Close()
			return ReplyLine{}, ErrChannelClosed
		}
		t := newTransport(c, conn, gen, c.config.IdleTimeout)
		c.tr = t
		c.secure = c.config.TLS
		c.mu.Unlock()

		c.log.Debug("connected", slog.String("remote", conn.RemoteAddr().String()))
		c.emitConnect()
		t.start()

		s := <-pending.done
		if s.err != nil {
			// No greeting means no usable session: tear the transport
			// down so the channel is disconnected again, not stuck
			// installed with a zero greeting.
			c.mu.Lock()
			cleared := c.gen == gen && c.tr == t
			if cleared {
				c.tr = nil
				c.gen++
				c.secure = false
				c.corr = nil
			}
			c.mu.Unlock()
			t.destroy()
			if cleared {
				c.emitClose()
			}
			return ReplyLine{}, s.err
		}
		c.mu.Lock()
		if c.gen == gen {
			c.greeting = s.line
		}
		c.mu.Unlock()
		return s.line, nil
	})
}

// Command sends raw command bytes and waits for the terminal line of the
// reply block they provoke. The caller supplies complete protocol framing,
// trailing CRLF included; the channel does not know the protocol's verbs.
func (c *Channel) Command(ctx context.Context, data []byte, opts *CommandOptions) (ReplyLine, error) {
	return c.submit(ctx, bytesPayload(data), opts)
}

// CommandFrom is Command for payloads that are already streaming: the
// source is drained to the transport chunk by chunk without buffering it
// whole.
func (c *Channel) CommandFrom(ctx context.Context, r io.Reader, opts *CommandOptions) (ReplyLine, error) {
	return c.submit(ctx, readerPayload(r), opts)
}

func (c *Channel) submit(ctx context.Context, p payload, opts *CommandOptions) (ReplyLine, error) {
	if opts == nil {
		opts = &CommandOptions{}
	}

	c.mu.Lock()
	t := c.tr
	corr := c.corr
	c.mu.Unlock()
	if t == nil || corr == nil {
		return ReplyLine{}, ErrNoConnection
	}
	pending := corr.arm(opts.Handler)

	return race(ctx, opts.Timeout, ErrTimeout, func() (ReplyLine, error) {
		err := p.stream(func(chunk []byte) error {
			c.echoOutbound(chunk)
			_, werr := t.write(chunk)
			return werr
		})
		if err != nil {
			// A write failure travels the transport-error path, which
			// rejects every armed command. The targeted rejection after
			// it covers the case where the transport was already
			// replaced and the generation check swallowed the event.
			c.handleTransportError(t.gen, err)
			corr.reject(pending, err)
		}

		s := <-pending.done
		if s.err != nil {
			return ReplyLine{}, s.err
		}
		return s.line, nil
	})
}

// Close destroys the transport and waits for its pump to exit. The
// transport slot is cleared up front so concurrent commands fail fast with
// ErrNoConnection instead of targeting a half-dead socket. Closing a
// disconnected channel is a no-op.
func (c *Channel) Close(ctx context.Context, timeout time.Duration) error {
	c.mu.Lock()
	t := c.tr
	if t == nil {
		c.mu.Unlock()
		return nil
	}
	c.tr = nil
	c.gen++
	c.secure = false
	corr := c.corr
	c.corr = nil
	c.mu.Unlock()

	_, err := race(ctx, timeout, ErrTimeout, func() (struct{}, error) {
		t.destroy()
		<-t.done
		return struct{}{}, nil
	})

	if corr != nil {
		corr.failAll(ErrChannelClosed)
	}
	c.log.Debug("closed")
	c.emitClose()
	return err
}

// UpgradeTLS swaps the live plaintext transport for an encrypted one over
// the same underlying connection, preserving the correlator and any
// buffered splitter state. The caller must have completed the protocol's
// upgrade negotiation (e.g. STARTTLS and its 220 reply) first.
//
// On handshake failure the connection is left in an indeterminate state;
// the caller is expected to Close and reconnect.
func (c *Channel) UpgradeTLS(ctx context.Context, opts *UpgradeOptions) error {
	if opts == nil {
		opts = &UpgradeOptions{}
	}

	c.mu.Lock()
	t := c.tr
	if t == nil {
		c.mu.Unlock()
		return ErrNoConnection
	}
	if c.secure {
		c.mu.Unlock()
		return ErrTLSActive
	}
	// Bump the generation before detaching: anything the old pump still
	// delivers is stale from here on.
	c.gen++
	gen := c.gen
	c.mu.Unlock()

	_, err := race(ctx, opts.Timeout, ErrTimeout, func() (struct{}, error) {
		// Park the plaintext pump so it cannot steal handshake bytes.
		t.pause()

		base := opts.TLSConfig
		if base == nil {
			base = c.config.TLSConfig
		}
		serverName := opts.ServerName
		if serverName == "" {
			serverName = c.config.Host
		}

		tlsConn := tls.Client(t.conn, tlsClientConfig(base, serverName))
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			return struct{}{}, fmt.Errorf("TLS handshake failed: %w", err)
		}

		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			tlsConn.Close()
			return struct{}{}, ErrChannelClosed
		}
		nt := newTransport(c, tlsConn, gen, c.config.IdleTimeout)
		c.tr = nt
		c.secure = true
		c.mu.Unlock()

		nt.start()
		state := tlsConn.ConnectionState()
		c.log.Debug("transport upgraded",
			slog.String("version", tls.VersionName(state.Version)),
			slog.String("cipher", tls.CipherSuiteName(state.CipherSuite)))
		return struct{}{}, nil
	})
	return err
}

// echoOutbound forwards an outbound chunk to the outbound splitter and the
// observers. The splitter reconstructs protocol lines from the chunk stream
// so OnCommand fires per line, not per arbitrary chunk boundary.
func (c *Channel) echoOutbound(chunk []byte) {
	c.mu.Lock()
	lines := c.out.Feed(chunk)
	c.mu.Unlock()

	c.emitSend(chunk)
	for _, line := range lines {
		c.log.Debug("client", slog.String("line", line))
		c.emitCommand(line)
	}
}

// handleData is called by the pump for every inbound chunk, in delivery
// order. The chunk is only valid for the duration of the call.
func (c *Channel) handleData(gen uint64, chunk []byte) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	corr := c.corr
	lines := c.in.Feed(chunk)
	c.mu.Unlock()

	c.emitReceive(chunk)
	for _, raw := range lines {
		line := DecodeReplyLine(raw)
		c.log.Debug("server", slog.String("line", raw))
		c.emitReply(line)
		if corr != nil {
			corr.deliver(line)
		}
	}
}

// handleEnd is called when the server half-closes the stream.
func (c *Channel) handleEnd(gen uint64) {
	c.mu.Lock()
	stale := c.gen != gen
	c.mu.Unlock()
	if !stale {
		c.emitEnd()
	}
}

// handleClose is called when the transport is gone without Close having
// been asked for it. Commands still awaiting replies are rejected; the
// channel returns to the disconnected state.
func (c *Channel) handleClose(gen uint64) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	c.tr = nil
	c.gen++
	c.secure = false
	corr := c.corr
	c.corr = nil
	c.mu.Unlock()

	if corr != nil {
		corr.failAll(ErrUnexpectedClose)
	}
	c.log.Debug("connection closed by peer")
	c.emitClose()
}

// handleTransportError is called when the transport reports an error. It
// rejects the armed commands with the error verbatim but does not destroy
// the transport; destruction stays explicit, via Close.
func (c *Channel) handleTransportError(gen uint64, err error) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	corr := c.corr
	c.mu.Unlock()

	c.log.Debug("transport error", slog.Any("error", err))
	if corr != nil {
		corr.failAll(err)
	}
	c.emitError(err)
}

// handleIdleTimeout is called when the inactivity threshold elapses.
// Observers are notified and the session-termination command goes out
// fire-and-forget: its completion is not awaited and its failure is not
// surfaced. The pump keeps reading so the server's closing reply and close
// still arrive.
func (c *Channel) handleIdleTimeout(gen uint64) {
	c.mu.Lock()
	if c.gen != gen {
		c.mu.Unlock()
		return
	}
	t := c.tr
	c.mu.Unlock()

	c.log.Debug("inactivity timeout")
	c.emitTimeout()
	if t != nil {
		quit := []byte("QUIT\r\n")
		c.echoOutbound(quit)
		t.write(quit)
	}
}
