// Package engine implements the client side of the channel variable
// synchronization protocol: connection lifecycle and queuing, channel
// membership, inbound dispatch and local state bindings.
package engine

import (
	"sync"

	"github.com/fr3shw3b/varsync/pkg/protocol"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Params struct {
	// Codec used for every frame, JSON when nil.
	Codec protocol.Codec
	// OnError receives the non-fatal errors of the engine
	// (TransportError, ProtocolError, UnknownSigilError).
	// When nil they are logged.
	OnError func(err error)
}

// Engine owns all protocol client state for one logical connection.
//
// Operations run one at a time. An operation submitted while another is
// running, including from a callback invoked by the engine, is queued and
// runs once the current one returns, so callbacks may call back into the
// engine freely. The query methods (State, RefCount, IsJoined, Pending)
// must not be called from engine callbacks.
type Engine struct {
	id     string
	params *Params
	codec  protocol.Codec
	dialer Dialer
	logger *logrus.Entry

	opsMu    sync.Mutex
	ops      []func()
	draining bool

	stateMu sync.Mutex

	// Connection Manager.
	state      State
	generation int
	address    string
	transport  Transport
	queue      []protocol.Message

	// Channel Registry.
	channels      map[string]*membership
	joinObservers map[string]map[int]func(channel string)
	nextObserver  int

	// Binding Engine, channel -> remote variable -> bindings.
	bindings map[string]map[string][]*binding

	// Local slots receiving a remote update. Guarded by its own lock,
	// scope observers may run outside engine operations.
	applyingMu sync.Mutex
	applying   map[slotKey]int
}

func New(params *Params, dialer Dialer, logger *logrus.Logger) *Engine {
	if params == nil {
		params = &Params{}
	}
	codec := params.Codec
	if codec == nil {
		codec = protocol.NewJSONCodec()
	}
	id := uuid.New().String()
	return &Engine{
		id:            id,
		params:        params,
		codec:         codec,
		dialer:        dialer,
		logger:        logger.WithField("engine", id),
		state:         StateDisconnected,
		channels:      map[string]*membership{},
		joinObservers: map[string]map[int]func(string){},
		bindings:      map[string]map[string][]*binding{},
		applying:      map[slotKey]int{},
	}
}

func (e *Engine) ID() string {
	return e.id
}

// do runs op after every operation submitted before it. The first
// submitter drains the queue, later submitters return immediately.
func (e *Engine) do(op func()) {
	e.opsMu.Lock()
	e.ops = append(e.ops, op)
	if e.draining {
		e.opsMu.Unlock()
		return
	}
	e.draining = true
	for len(e.ops) > 0 {
		next := e.ops[0]
		e.ops[0] = nil
		e.ops = e.ops[1:]
		e.opsMu.Unlock()

		e.stateMu.Lock()
		next()
		e.stateMu.Unlock()

		e.opsMu.Lock()
	}
	e.draining = false
	e.opsMu.Unlock()
}

func (e *Engine) reportError(err error) {
	if e.params.OnError != nil {
		e.params.OnError(err)
		return
	}
	e.logger.WithError(err).Error("protocol client error")
}

// State returns the connection state.
func (e *Engine) State() State {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	return e.state
}

// RefCount returns the number of outstanding joins for channel.
func (e *Engine) RefCount(channel string) int {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	m := e.channels[channel]
	if m == nil {
		return 0
	}
	return m.refs
}

// IsJoined reports whether the server acknowledged the join for channel.
func (e *Engine) IsJoined(channel string) bool {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	m := e.channels[channel]
	return m != nil && m.joined
}

// Pending returns the number of messages waiting for the connection to
// open and the number waiting for channel's join acknowledgment.
func (e *Engine) Pending(channel string) (preOpen int, channelPending int) {
	e.stateMu.Lock()
	defer e.stateMu.Unlock()
	if m := e.channels[channel]; m != nil {
		channelPending = len(m.pending)
	}
	return len(e.queue), channelPending
}
