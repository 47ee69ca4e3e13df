// Package smtpwire implements the client-side wire channel for SMTP and
// other line-oriented request/reply protocols carried over a byte stream.
//
// The package does not know SMTP verbs. Callers hand it raw command bytes;
// the channel correlates each command with the contiguous block of reply
// lines it provokes, detects the terminal line of a multi-line reply, and
// settles the call exactly once with that terminal line, or with an error
// if the transport fails, closes unexpectedly, or the deadline elapses
// first.
//
// # Quick Start
//
//	ch := smtpwire.New(smtpwire.DefaultConfig("mail.example.com", 25))
//
//	greeting, err := ch.Connect(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("greeting: %s", greeting.Text)
//
//	reply, err := ch.Command(ctx, []byte("EHLO client.example.com\r\n"), &smtpwire.CommandOptions{
//	    Handler: func(line smtpwire.ReplyLine) error {
//	        log.Printf("S: %s", line.Text)
//	        return nil
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("final code: %s", reply.Code)
//
//	ch.Close(ctx, 5*time.Second)
//
// # TLS
//
// A channel can start encrypted (Config.TLS, typically port 465) or be
// upgraded in place after the server accepts STARTTLS:
//
//	if reply, err := ch.Command(ctx, []byte("STARTTLS\r\n"), nil); err == nil && reply.IsSuccess() {
//	    if err := ch.UpgradeTLS(ctx, nil); err != nil {
//	        // the connection is in an indeterminate state; close it
//	        ch.Close(ctx, 0)
//	    }
//	}
//
// The upgrade swaps the live transport for an encrypted one over the same
// underlying connection without losing buffered protocol state or observer
// registrations.
//
// # Observers
//
// The Events structure carries optional callbacks for every notification
// the channel produces: connection lifecycle (OnConnect, OnClose, OnEnd,
// OnError, OnTimeout), decoded protocol lines (OnReply, OnCommand), and raw
// chunks (OnSend, OnReceive). All callbacks are optional; nil callbacks are
// simply not invoked.
//
// # Concurrency
//
// The channel is half-duplex at the command level: at most one command may
// be outstanding at a time, and issuing a second while one is pending is a
// contract violation. Commands whose deadline elapsed remain armed until
// their delayed reply block arrives, so a late reply is never misattributed
// to a later command. Operation deadlines abandon the caller's wait only;
// the underlying socket operation keeps running and its eventual result is
// validated against the channel's current generation before it may touch
// channel state.
package smtpwire
