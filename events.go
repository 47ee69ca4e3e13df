package smtpwire

// Events defines the observer callbacks a channel emits to application
// code. All callbacks are optional; nil callbacks are simply not invoked.
// Callbacks are delivered from the channel's reader goroutine (or, for
// outbound notifications, from the goroutine performing the write) and
// should return quickly.
type Events struct {
	// OnConnect is called once the transport is established, before the
	// server greeting has been read.
	OnConnect func()

	// OnClose is called when the transport is gone, whether the server
	// closed it or Close was called.
	OnClose func()

	// OnEnd is called when the server half-closes the stream (EOF),
	// before the close notification.
	OnEnd func()

	// OnError is called when the transport reports an error. The error
	// also rejects the pending command, if any.
	OnError func(err error)

	// OnTimeout is called when the inactivity threshold elapses with no
	// traffic, before the channel issues its fire-and-forget QUIT.
	OnTimeout func()

	// OnReply is called for every decoded inbound protocol line.
	OnReply func(line ReplyLine)

	// OnCommand is called for every complete outbound protocol line, as
	// reconstructed from the written chunks.
	OnCommand func(line string)

	// OnSend is called for every chunk written to the transport.
	OnSend func(chunk []byte)

	// OnReceive is called for every chunk read from the transport.
	OnReceive func(chunk []byte)
}

func (c *Channel) emitConnect() {
	if c.events != nil && c.events.OnConnect != nil {
		c.events.OnConnect()
	}
}

func (c *Channel) emitClose() {
	if c.events != nil && c.events.OnClose != nil {
		c.events.OnClose()
	}
}

func (c *Channel) emitEnd() {
	if c.events != nil && c.events.OnEnd != nil {
		c.events.OnEnd()
	}
}

func (c *Channel) emitError(err error) {
	if c.events != nil && c.events.OnError != nil {
		c.events.OnError(err)
	}
}

func (c *Channel) emitTimeout() {
	if c.events != nil && c.events.OnTimeout != nil {
		c.events.OnTimeout()
	}
}

func (c *Channel) emitReply(line ReplyLine) {
	if c.events != nil && c.events.OnReply != nil {
		c.events.OnReply(line)
	}
}

func (c *Channel) emitCommand(line string) {
	if c.events != nil && c.events.OnCommand != nil {
		c.events.OnCommand(line)
	}
}

func (c *Channel) emitSend(chunk []byte) {
	if c.events != nil && c.events.OnSend != nil {
		c.events.OnSend(chunk)
	}
}

func (c *Channel) emitReceive(chunk []byte) {
	if c.events != nil && c.events.OnReceive != nil {
		c.events.OnReceive(chunk)
	}
}
