package smtpwire

import "errors"

// Failure taxonomy for channel operations. Transport errors are propagated
// verbatim and are not wrapped in any of these.
var (
	// ErrTimeout is returned when an operation does not settle within
	// its deadline. The underlying socket operation is not aborted.
	ErrTimeout = errors.New("smtp: operation timed out")

	// ErrUnexpectedClose is returned when the transport closes while a
	// command is still awaiting its terminal reply.
	ErrUnexpectedClose = errors.New("smtp: connection closed unexpectedly")

	// ErrNoConnection is returned when a command is issued with no live
	// transport.
	ErrNoConnection = errors.New("smtp: no connection established")

	// ErrChannelClosed is returned to commands that were pending when the
	// channel was closed explicitly, and by late-settling operations that
	// lost the race against a close.
	ErrChannelClosed = errors.New("smtp: channel closed")

	// ErrTLSActive is returned by UpgradeTLS when the transport is
	// already encrypted.
	ErrTLSActive = errors.New("smtp: TLS already active")
)

// HandlerError wraps a failure raised by a caller-supplied reply handler.
// When a handler fails, the command rejects with the handler's failure even
// if the failing line was the terminal one.
type HandlerError struct {
	Err error
}

func (e *HandlerError) Error() string {
	return "smtp: reply handler failed: " + e.Err.Error()
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}
