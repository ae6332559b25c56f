package engine

import (
	"fmt"

	"github.com/fr3shw3b/varsync/pkg/protocol"
)

type membership struct {
	refs int
	// joined is set once the server acknowledged the join.
	joined bool
	// wired is set once a join was submitted on the current connection.
	wired   bool
	pending []protocol.Message
}

// Join adds a reference to channel, sending a join request for the first one.
func (e *Engine) Join(channel string) {
	e.do(func() {
		e.join(channel)
	})
}

// Part drops a reference to channel, sending a part request for the last one.
func (e *Engine) Part(channel string) {
	e.do(func() {
		e.part(channel)
	})
}

// OnJoined registers fn to be called every time the server acknowledges
// a join of channel. The returned function unregisters it.
func (e *Engine) OnJoined(channel string, fn func(channel string)) func() {
	var id int
	e.do(func() {
		id = e.addJoinObserver(channel, fn)
	})
	return func() {
		e.do(func() {
			e.removeJoinObserver(channel, id)
		})
	}
}

func (e *Engine) join(channel string) {
	m := e.channels[channel]
	if m == nil {
		m = &membership{}
		e.channels[channel] = m
	}
	if m.refs > 0 {
		m.refs += 1
		return
	}
	m.refs = 1
	m.wired = true
	e.send(protocol.Join(channel))
}

func (e *Engine) part(channel string) {
	m := e.channels[channel]
	if m == nil || m.refs < 1 {
		e.logger.WithError(ErrRefCountUnderflow).Error("part of channel ", channel, " ignored")
		return
	}
	m.refs -= 1
	if m.refs > 0 {
		return
	}
	if m.wired {
		e.send(protocol.Part(channel))
	}
	if len(m.pending) > 0 {
		e.logger.Debug("dropping ", len(m.pending), " messages for parted channel ", channel)
	}
	delete(e.channels, channel)
}

// sendTo sends msg once channel's join is acknowledged, preserving
// submission order. Messages for a channel without a live join are
// reported and dropped.
func (e *Engine) sendTo(channel string, msg protocol.Message) {
	m := e.channels[channel]
	if m == nil || m.refs < 1 {
		e.reportError(fmt.Errorf("%q to channel %s dropped: %w", msg.Op, channel, ErrNotJoined))
		return
	}
	if m.joined {
		e.send(msg)
		return
	}
	e.logger.Debug("holding ", msg.Op, " for channel ", channel, " until joined")
	m.pending = append(m.pending, msg)
}

func (e *Engine) acknowledgeJoin(channel string) {
	m := e.channels[channel]
	if m == nil || m.refs < 1 {
		e.logger.Debug("join acknowledgment for unjoined channel ", channel, " dropped")
		return
	}
	m.joined = true
	e.logger.Debug("joined channel ", channel)

	pending := m.pending
	m.pending = nil
	for _, msg := range pending {
		e.send(msg)
	}

	for _, fn := range e.joinObservers[channel] {
		fn(channel)
	}
}

// resetChannels marks every channel as needing a new join after the
// connection closed. Pending channel messages are kept.
func (e *Engine) resetChannels() {
	for _, m := range e.channels {
		m.joined = false
		m.wired = false
	}
}

func (e *Engine) rejoinChannels() {
	for channel, m := range e.channels {
		if m.refs > 0 && !m.wired {
			m.wired = true
			e.send(protocol.Join(channel))
		}
	}
}

func (e *Engine) addJoinObserver(channel string, fn func(string)) int {
	e.nextObserver += 1
	observers := e.joinObservers[channel]
	if observers == nil {
		observers = map[int]func(string){}
		e.joinObservers[channel] = observers
	}
	observers[e.nextObserver] = fn
	return e.nextObserver
}

func (e *Engine) removeJoinObserver(channel string, id int) {
	observers := e.joinObservers[channel]
	delete(observers, id)
	if len(observers) == 0 {
		delete(e.joinObservers, channel)
	}
}

// Get requests the current value of names on channel. The values arrive
// as set notifications. channel must have been joined, see Join.
func (e *Engine) Get(channel string, names ...string) {
	if len(names) == 0 {
		return
	}
	e.do(func() {
		e.sendTo(channel, protocol.Get(channel, names...))
	})
}

// Set writes values to channel's variables. channel must have been
// joined, see Join.
func (e *Engine) Set(channel string, values map[string]interface{}) {
	if len(values) == 0 {
		return
	}
	e.do(func() {
		e.sendTo(channel, protocol.Set(channel, values))
	})
}
