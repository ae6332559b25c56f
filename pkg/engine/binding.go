package engine

import (
	"sync"
	"sync/atomic"

	"github.com/fr3shw3b/varsync/pkg/protocol"
)

type binding struct {
	engine  *Engine
	channel string
	local   string
	remote  string
	policy  protocol.Policy
	scope   Scope
	stream  *Stream
	live    bool
	unwatch func()
}

// Attachment is the set of bindings created for one channel by Bind.
// Detach ends it.
type Attachment struct {
	engine   *Engine
	channel  string
	bindings []*binding
	streams  map[string]*Stream

	joined     chan struct{}
	joinedOnce sync.Once
	unobserve  func()
	detached   bool
}

func (a *Attachment) Channel() string {
	return a.channel
}

// Joined is closed once the server acknowledged the channel join.
func (a *Attachment) Joined() <-chan struct{} {
	return a.joined
}

// Stream returns the handle of the stream bound to local, or nil.
func (a *Attachment) Stream(local string) *Stream {
	return a.streams[local]
}

// Detach stops every binding of the attachment and parts the channel.
// Values already written to local slots are left as they are.
func (a *Attachment) Detach() {
	a.engine.do(func() {
		a.engine.detach(a)
	})
}

func (a *Attachment) markJoined() {
	a.joinedOnce.Do(func() {
		close(a.joined)
	})
}

// Stream is a two-way handle on a stream variable. Inbound values are
// appended to the local slot while the stream is enabled.
type Stream struct {
	binding *binding
	enabled atomic.Bool
}

// Send writes value to the remote variable.
func (s *Stream) Send(value interface{}) {
	b := s.binding
	b.engine.do(func() {
		if !b.live {
			b.engine.logger.Debug("send on detached stream ", b.remote, " dropped")
			return
		}
		b.engine.sendTo(b.channel, protocol.SetOne(b.channel, b.remote, value))
	})
}

func (s *Stream) Enable() {
	s.enabled.Store(true)
}

func (s *Stream) Disable() {
	s.enabled.Store(false)
}

func (s *Stream) Enabled() bool {
	return s.enabled.Load()
}

// Bind joins channel and keeps each declared local slot of scope in sync
// with its remote variable until the returned attachment is detached.
// Declarations with an unknown sigil are reported and skipped.
func (e *Engine) Bind(channel string, scope Scope, decls []Declaration) *Attachment {
	a := &Attachment{
		engine:  e,
		channel: channel,
		streams: map[string]*Stream{},
		joined:  make(chan struct{}),
	}

	var invalid []error
	for _, decl := range decls {
		_, policy, err := protocol.ParseSigil(decl.Remote)
		if err == nil && policy == protocol.PolicyLiteral {
			err = protocol.ErrNotVariable
		}
		if err != nil {
			invalid = append(invalid, &UnknownSigilError{
				Channel: channel,
				Local:   decl.Local,
				Remote:  decl.Remote,
				Err:     err,
			})
			continue
		}
		b := &binding{
			engine:  e,
			channel: channel,
			local:   decl.Local,
			remote:  decl.Remote,
			policy:  policy,
			scope:   scope,
		}
		if policy == protocol.PolicyStream {
			b.stream = &Stream{binding: b}
			b.stream.Enable()
			a.streams[decl.Local] = b.stream
		}
		a.bindings = append(a.bindings, b)
	}

	e.do(func() {
		for _, err := range invalid {
			e.reportError(err)
		}
		e.attach(a)
	})
	return a
}

// BindDeferred binds once channelSlot of scope holds a channel name.
// ready receives the attachment. The returned function cancels a bind
// that has not happened yet.
func (e *Engine) BindDeferred(scope Scope, channelSlot string, decls []Declaration, ready func(*Attachment)) func() {
	var once sync.Once
	bind := func(value interface{}) bool {
		channel, ok := value.(string)
		if !ok || channel == "" {
			return false
		}
		once.Do(func() {
			a := e.Bind(channel, scope, decls)
			if ready != nil {
				ready(a)
			}
		})
		return true
	}

	if value, ok := scope.Get(channelSlot); ok && bind(value) {
		return func() {}
	}

	var unwatch func()
	var mu sync.Mutex
	cancel := func() {
		mu.Lock()
		defer mu.Unlock()
		if unwatch != nil {
			unwatch()
			unwatch = nil
		}
	}
	mu.Lock()
	unwatch = scope.OnChange(channelSlot, func(value interface{}) {
		if bind(value) {
			cancel()
		}
	})
	mu.Unlock()
	return cancel
}

func (e *Engine) attach(a *Attachment) {
	channel := a.channel
	e.join(channel)
	id := e.addJoinObserver(channel, func(string) {
		a.markJoined()
	})
	a.unobserve = func() {
		e.removeJoinObserver(channel, id)
	}
	if m := e.channels[channel]; m != nil && m.joined {
		a.markJoined()
	}

	index := e.bindings[channel]
	if index == nil {
		index = map[string][]*binding{}
		e.bindings[channel] = index
	}

	var request []string
	requested := map[string]bool{}
	for _, b := range a.bindings {
		b.live = true
		index[b.remote] = append(index[b.remote], b)

		if b.policy == protocol.PolicyDuplex {
			b.unwatch = b.scope.OnChange(b.local, b.localChange)
			if current, ok := b.scope.Get(b.local); ok && !isEmpty(current) {
				e.sendTo(channel, protocol.SetOne(channel, b.remote, current))
				continue
			}
		}

		if b.policy.Requestable() && !requested[b.remote] {
			requested[b.remote] = true
			request = append(request, b.remote)
		}
	}

	if len(request) > 0 {
		e.sendTo(channel, protocol.Get(channel, request...))
	}
}

func (e *Engine) detach(a *Attachment) {
	if a.detached {
		return
	}
	a.detached = true
	a.unobserve()

	index := e.bindings[a.channel]
	for _, b := range a.bindings {
		b.live = false
		if b.unwatch != nil {
			b.unwatch()
		}
		remaining := index[b.remote][:0]
		for _, other := range index[b.remote] {
			if other != b {
				remaining = append(remaining, other)
			}
		}
		if len(remaining) == 0 {
			delete(index, b.remote)
		} else {
			index[b.remote] = remaining
		}
	}
	if len(index) == 0 {
		delete(e.bindings, a.channel)
	}

	e.part(a.channel)
}

// notify delivers a remote variable change to every binding of it.
func (e *Engine) notify(channel string, remote string, value interface{}) {
	bound := e.bindings[channel][remote]
	if len(bound) == 0 {
		e.logger.Debug("no binding for ", channel, " ", remote, ", update dropped")
		return
	}
	// Copy, observers may detach bindings while we deliver.
	for _, b := range append([]*binding(nil), bound...) {
		if b.live {
			b.remoteChange(value)
		}
	}
}

func (b *binding) remoteChange(value interface{}) {
	switch b.policy {
	case protocol.PolicyPushOnly, protocol.PolicyDuplex:
		b.apply(value)
	case protocol.PolicyAccumulate:
		current, _ := b.scope.Get(b.local)
		b.apply(appended(current, value))
	case protocol.PolicyStream:
		// A variable that was never set is read as nil, nothing to append.
		if !b.stream.Enabled() || value == nil {
			return
		}
		current, _ := b.scope.Get(b.local)
		b.apply(appended(current, value))
	}
}

// apply writes a remote update to the local slot. Local change
// notifications of the slot are suppressed meanwhile, whichever binding
// observes it.
func (b *binding) apply(value interface{}) {
	e := b.engine
	key := slotKey{scope: b.scope, slot: b.local}
	e.applyingMu.Lock()
	e.applying[key] += 1
	e.applyingMu.Unlock()
	defer func() {
		e.applyingMu.Lock()
		e.applying[key] -= 1
		if e.applying[key] == 0 {
			delete(e.applying, key)
		}
		e.applyingMu.Unlock()
	}()
	b.scope.Apply(b.local, value)
}

func (e *Engine) isApplying(scope Scope, slot string) bool {
	e.applyingMu.Lock()
	defer e.applyingMu.Unlock()
	return e.applying[slotKey{scope: scope, slot: slot}] > 0
}

// localChange is the scope observer of a duplex binding.
func (b *binding) localChange(value interface{}) {
	if b.engine.isApplying(b.scope, b.local) {
		return
	}
	b.engine.do(func() {
		if !b.live {
			return
		}
		b.engine.sendTo(b.channel, protocol.SetOne(b.channel, b.remote, value))
	})
}
