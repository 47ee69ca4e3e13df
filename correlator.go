package smtpwire

import "sync"

// ReplyHandler receives each line of a command's reply block before
// settlement is considered. Returning a non-nil error rejects the command
// with a *HandlerError, even when the offending line was the terminal one.
type ReplyHandler func(line ReplyLine) error

// settlement is the single outcome of a pending command.
type settlement struct {
	line ReplyLine
	err  error
}

// pendingCommand correlates one outbound command with the contiguous block
// of reply lines it provokes. It is settled exactly once, through done.
type pendingCommand struct {
	handler ReplyHandler
	done    chan settlement
}

// correlator routes decoded inbound lines to pending commands.
//
// Pendings form a FIFO: the head is the armed command, the one the next
// reply block belongs to. The protocol is half-duplex at the command level,
// so under contract-conforming use the queue holds at most one entry. The
// queue exists for commands whose caller stopped waiting after a deadline:
// they stay armed until their delayed reply block arrives, so that block is
// consumed on their behalf instead of being misattributed to the next
// command.
type correlator struct {
	mu    sync.Mutex
	queue []*pendingCommand
}

func newCorrelator() *correlator {
	return &correlator{}
}

// arm enqueues a pending command for the next unclaimed reply block and
// returns it. The caller awaits p.done.
func (co *correlator) arm(handler ReplyHandler) *pendingCommand {
	p := &pendingCommand{
		handler: handler,
		done:    make(chan settlement, 1),
	}
	co.mu.Lock()
	co.queue = append(co.queue, p)
	co.mu.Unlock()
	return p
}

// deliver routes one decoded line to the armed command. Unsolicited lines
// (no command armed) are dropped.
func (co *correlator) deliver(line ReplyLine) {
	co.mu.Lock()
	if len(co.queue) == 0 {
		co.mu.Unlock()
		return
	}
	p := co.queue[0]
	co.mu.Unlock()

	if p.handler != nil {
		if err := p.handler(line); err != nil {
			co.settle(p, settlement{err: &HandlerError{Err: err}})
			return
		}
	}

	if line.Terminal {
		co.settle(p, settlement{line: line})
	}
}

// settle resolves or rejects p if it is still armed. Popping under the lock
// is what makes settlement exactly-once: whichever path gets there first
// removes p, and every later path finds it gone.
func (co *correlator) settle(p *pendingCommand, s settlement) {
	co.mu.Lock()
	if len(co.queue) == 0 || co.queue[0] != p {
		co.mu.Unlock()
		return
	}
	co.queue = co.queue[1:]
	co.mu.Unlock()

	p.done <- s
}

// reject settles p with err wherever it sits in the queue. A no-op when p
// has already been settled.
func (co *correlator) reject(p *pendingCommand, err error) {
	co.mu.Lock()
	for i, q := range co.queue {
		if q == p {
			co.queue = append(co.queue[:i], co.queue[i+1:]...)
			co.mu.Unlock()
			p.done <- settlement{err: err}
			return
		}
	}
	co.mu.Unlock()
}

// failAll rejects every queued command with err. Used when the transport
// closes or reports an error: no queued reply block can arrive anymore.
func (co *correlator) failAll(err error) {
	co.mu.Lock()
	queue := co.queue
	co.queue = nil
	co.mu.Unlock()

	for _, p := range queue {
		p.done <- settlement{err: err}
	}
}
