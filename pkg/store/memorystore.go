package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrInvalidChannel = errors.New("invalid channel")

type InMemoryStoreParams struct {
	// Seconds the variables of a channel without listeners are kept.
	ExpireAfterIdleTime int
}

func NewInMemoryStore(params *InMemoryStoreParams, logger *logrus.Logger) ChannelStore {
	return &inMemoryStore{
		params:   params,
		channels: map[string]*channelState{},
		logger:   logger,
		now:      func() int { return int(time.Now().Unix()) },
	}
}

type inMemoryStore struct {
	mu       sync.Mutex
	params   *InMemoryStoreParams
	channels map[string]*channelState
	logger   *logrus.Logger
	now      func() int
}

type channelState struct {
	vars      map[string]interface{}
	listeners map[string]Listener
	// Last time the channel was used while it had no listeners.
	lastAccessed int
}

func (s *inMemoryStore) Join(channel string, listener Listener) ([]Listener, error) {
	if channel == "" {
		return nil, ErrInvalidChannel
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.load(channel, true)
	ch.listeners[listener.ID()] = listener
	return ch.sortedListeners(), nil
}

func (s *inMemoryStore) Part(channel string, listenerID string) []Listener {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.load(channel, false)
	if ch == nil {
		return nil
	}
	delete(ch.listeners, listenerID)
	ch.lastAccessed = s.now()
	return ch.sortedListeners()
}

func (s *inMemoryStore) PartAll(listenerID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	parted := []string{}
	for name, ch := range s.channels {
		if _, exists := ch.listeners[listenerID]; exists {
			delete(ch.listeners, listenerID)
			ch.lastAccessed = s.now()
			parted = append(parted, name)
		}
	}
	sort.Strings(parted)
	return parted
}

func (s *inMemoryStore) IsListening(channel string, listenerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.load(channel, false)
	if ch == nil {
		return false
	}
	_, exists := ch.listeners[listenerID]
	return exists
}

func (s *inMemoryStore) Listeners(channel string) []Listener {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.load(channel, false)
	if ch == nil {
		return nil
	}
	return ch.sortedListeners()
}

func (s *inMemoryStore) Get(channel string, name string) (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.load(channel, false)
	if ch == nil {
		return nil, false
	}
	if name == ListenersVar {
		return len(ch.listeners), true
	}
	value, exists := ch.vars[name]
	return value, exists
}

func (s *inMemoryStore) Set(channel string, name string, value interface{}) []Listener {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.load(channel, true)
	ch.vars[name] = value
	return ch.sortedListeners()
}

// load returns the channel, discarding its variables if it has been idle
// without listeners for longer than the expiry time.
func (s *inMemoryStore) load(channel string, create bool) *channelState {
	ch := s.channels[channel]
	now := s.now()
	if ch != nil && len(ch.listeners) == 0 &&
		ch.lastAccessed+s.params.ExpireAfterIdleTime < now {
		s.logger.Debug("expiring idle channel ", channel)
		delete(s.channels, channel)
		ch = nil
	}

	if ch == nil {
		if !create {
			return nil
		}
		ch = &channelState{
			vars:      map[string]interface{}{},
			listeners: map[string]Listener{},
		}
		s.channels[channel] = ch
	}
	if len(ch.listeners) == 0 {
		ch.lastAccessed = now
	}
	return ch
}

func (ch *channelState) sortedListeners() []Listener {
	listeners := make([]Listener, 0, len(ch.listeners))
	for _, listener := range ch.listeners {
		listeners = append(listeners, listener)
	}
	sort.Slice(listeners, func(i, j int) bool {
		return listeners[i].ID() < listeners[j].ID()
	})
	return listeners
}
