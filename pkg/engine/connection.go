package engine

import (
	"github.com/fr3shw3b/varsync/pkg/protocol"
)

type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateOpen
	StateClosed
)

var stateNames = map[State]string{
	StateDisconnected: "disconnected",
	StateConnecting:   "connecting",
	StateOpen:         "open",
	StateClosed:       "closed",
}

func (s State) String() string {
	return stateNames[s]
}

// Transport is an established or establishing connection.
type Transport interface {
	Send(data []byte) error
	Close() error
}

// Handler receives the events of one connection attempt.
// Closed is called once, with a nil error for a clean close.
type Handler interface {
	Open()
	Message(data []byte)
	Closed(err error)
}

// Dialer starts a connection in the background and reports its
// events to handler. It must return without waiting for the connection.
type Dialer interface {
	Dial(address string, handler Handler) Transport
}

// lifecycle routes the events of one connection attempt into the engine.
// Events of attempts that were superseded are dropped.
type lifecycle struct {
	engine     *Engine
	generation int
}

func (l *lifecycle) Open() {
	l.engine.do(func() {
		if l.stale() {
			return
		}
		l.engine.handleOpen()
	})
}

func (l *lifecycle) Message(data []byte) {
	l.engine.do(func() {
		if l.stale() {
			return
		}
		l.engine.handleMessage(data)
	})
}

func (l *lifecycle) Closed(err error) {
	l.engine.do(func() {
		if l.stale() {
			return
		}
		l.engine.handleClosed(err)
	})
}

func (l *lifecycle) stale() bool {
	if l.generation != l.engine.generation {
		l.engine.logger.Debug("dropping event of superseded connection ", l.generation)
		return true
	}
	return false
}

// Connect starts a connection to address. It does nothing while a
// connection is already connecting or open. There is no automatic
// reconnect: after a close a new Connect call is required.
func (e *Engine) Connect(address string) {
	e.do(func() {
		e.connect(address)
	})
}

func (e *Engine) connect(address string) {
	if e.state == StateConnecting || e.state == StateOpen {
		e.logger.Debug("connect ignored, connection is ", e.state)
		return
	}

	e.generation += 1
	e.address = address
	e.state = StateConnecting
	e.logger.Info("connecting to ", address)

	// Channels joined on a previous connection are joined again.
	e.rejoinChannels()

	e.transport = e.dialer.Dial(address, &lifecycle{engine: e, generation: e.generation})
}

// Close closes the connection. Events still in flight for it are dropped.
func (e *Engine) Close() {
	e.do(func() {
		if e.state != StateConnecting && e.state != StateOpen {
			return
		}
		transport := e.transport
		e.generation += 1
		e.handleClosed(nil)
		if transport != nil {
			if err := transport.Close(); err != nil {
				e.logger.Debug("transport close error: ", err)
			}
		}
	})
}

// send transmits msg when the connection is open and queues it otherwise.
func (e *Engine) send(msg protocol.Message) {
	if e.state != StateOpen || e.transport == nil {
		e.logger.Debug("queueing ", msg.Op, " until the connection opens")
		e.queue = append(e.queue, msg)
		return
	}

	data, err := e.codec.Encode(msg)
	if err != nil {
		e.reportError(err)
		return
	}
	e.logger.Debug("sending: ", string(data))
	if err := e.transport.Send(data); err != nil {
		e.reportError(&TransportError{Address: e.address, Err: err})
	}
}

func (e *Engine) handleOpen() {
	e.state = StateOpen
	e.logger.Info("connected to ", e.address)

	queued := e.queue
	e.queue = nil
	for _, msg := range queued {
		e.send(msg)
	}
}

func (e *Engine) handleClosed(err error) {
	e.state = StateClosed
	e.transport = nil
	if err != nil {
		e.reportError(&TransportError{Address: e.address, Err: err})
	} else {
		e.logger.Info("disconnected from ", e.address)
	}

	if len(e.queue) > 0 {
		// Only joins and parts can be left here, channel messages wait in
		// their channel's pending queue and joins are regenerated on connect.
		e.logger.Debug("discarding ", len(e.queue), " messages queued for a connection that never opened")
		e.queue = nil
	}
	e.resetChannels()
}
