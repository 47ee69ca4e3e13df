package smtpwire

import (
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// readChunkSize is the read buffer size for the transport pump.
const readChunkSize = 4096

// transport owns one live connection and the goroutine pumping its inbound
// bytes into the channel. The channel holds the only reference to it; every
// swap (connect, upgrade, close) replaces the whole transport, never
// mutates one in place. Events carry the generation the transport was
// created under so the channel can discard deliveries from a transport it
// has already replaced.
type transport struct {
	conn net.Conn
	gen  uint64
	ch   *Channel
	idle time.Duration

	// stopped marks the pump as detached: it must exit without emitting
	// further events. Set by pause (TLS upgrade) and destroy (close).
	stopped atomic.Bool

	// deadlineMu serializes read-deadline updates between the pump and
	// interrupt, so an interrupt kick is never overwritten by the pump
	// re-arming the idle deadline.
	deadlineMu sync.Mutex

	// done is closed when the pump has exited.
	done chan struct{}
}

func newTransport(ch *Channel, conn net.Conn, gen uint64, idle time.Duration) *transport {
	return &transport{
		conn: conn,
		gen:  gen,
		ch:   ch,
		idle: idle,
		done: make(chan struct{}),
	}
}

func (t *transport) start() {
	go t.pump()
}

func (t *transport) write(p []byte) (int, error) {
	return t.conn.Write(p)
}

// pump reads the connection until it is detached or the connection dies,
// delivering chunks, end-of-stream, errors, and inactivity timeouts to the
// channel. Chunks read before a detach are still delivered; they were on
// the wire before the transport was replaced.
func (t *transport) pump() {
	defer close(t.done)

	buf := make([]byte, readChunkSize)
	quitSent := false
	for {
		if t.stopped.Load() {
			return
		}
		t.armReadDeadline()

		n, err := t.conn.Read(buf)
		if n > 0 {
			t.ch.handleData(t.gen, buf[:n])
		}
		if t.stopped.Load() {
			return
		}
		if err == nil {
			continue
		}

		var nerr net.Error
		switch {
		case errors.Is(err, io.EOF):
			t.ch.handleEnd(t.gen)
			t.ch.handleClose(t.gen)
			return
		case errors.As(err, &nerr) && nerr.Timeout():
			if quitSent {
				// The server never closed after our QUIT.
				t.conn.Close()
				t.ch.handleClose(t.gen)
				return
			}
			quitSent = true
			t.ch.handleIdleTimeout(t.gen)
		default:
			t.ch.handleTransportError(t.gen, err)
			return
		}
	}
}

// armReadDeadline applies the inactivity deadline for the next read, unless
// an interrupt already planted its kick.
func (t *transport) armReadDeadline() {
	t.deadlineMu.Lock()
	defer t.deadlineMu.Unlock()
	if t.stopped.Load() {
		return
	}
	if t.idle > 0 {
		t.conn.SetReadDeadline(time.Now().Add(t.idle))
	} else {
		t.conn.SetReadDeadline(time.Time{})
	}
}

// interrupt detaches the pump and kicks any blocked read with an immediate
// deadline so it returns promptly.
func (t *transport) interrupt() {
	t.stopped.Store(true)
	t.deadlineMu.Lock()
	t.conn.SetReadDeadline(time.Now().Add(-time.Second))
	t.deadlineMu.Unlock()
}

// pause detaches the pump and waits for it to exit, leaving the connection
// open and deadline-free. Used before a TLS handshake over the same
// connection: the plaintext pump must not steal handshake bytes.
func (t *transport) pause() {
	t.interrupt()
	<-t.done
	t.conn.SetReadDeadline(time.Time{})
}

// destroy detaches the pump and closes the connection. The pump exits on
// the failing read without emitting events.
func (t *transport) destroy() {
	t.stopped.Store(true)
	t.conn.Close()
}
