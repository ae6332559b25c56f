package store

import (
	"testing"

	"github.com/fr3shw3b/varsync/pkg/protocol"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testListener struct {
	id string
}

func (l *testListener) ID() string                      { return l.id }
func (l *testListener) Send(msg protocol.Message) error { return nil }

func newTestStore(clock *int) *inMemoryStore {
	s := NewInMemoryStore(&InMemoryStoreParams{ExpireAfterIdleTime: 30}, logrus.New()).(*inMemoryStore)
	s.now = func() int { return *clock }
	return s
}

func Test_join_part_and_listener_count(t *testing.T) {
	clock := 100
	s := newTestStore(&clock)
	a, b := &testListener{"a"}, &testListener{"b"}

	_, err := s.Join("lobby", a)
	require.NoError(t, err)
	listeners, err := s.Join("lobby", b)
	require.NoError(t, err)
	assert.Equal(t, []Listener{a, b}, listeners)

	count, _ := s.Get("lobby", ListenersVar)
	assert.Equal(t, 2, count)
	assert.True(t, s.IsListening("lobby", "a"))

	assert.Equal(t, []Listener{b}, s.Part("lobby", "a"))
	assert.False(t, s.IsListening("lobby", "a"))
	assert.Equal(t, []string{"lobby"}, s.PartAll("b"))
	assert.Empty(t, s.Listeners("lobby"))
}

func Test_join_rejects_empty_channel(t *testing.T) {
	clock := 0
	_, err := newTestStore(&clock).Join("", &testListener{"a"})
	assert.ErrorIs(t, err, ErrInvalidChannel)
}

func Test_set_returns_listeners_and_get_reads_back(t *testing.T) {
	clock := 100
	s := newTestStore(&clock)
	a := &testListener{"a"}
	s.Join("lobby", a)

	assert.Equal(t, []Listener{a}, s.Set("lobby", "%name", "x"))
	value, exists := s.Get("lobby", "%name")
	assert.True(t, exists)
	assert.Equal(t, "x", value)

	_, exists = s.Get("lobby", "%missing")
	assert.False(t, exists)
}

func Test_idle_channel_without_listeners_expires(t *testing.T) {
	clock := 100
	s := newTestStore(&clock)
	a := &testListener{"a"}
	s.Join("lobby", a)
	s.Set("lobby", "%name", "x")

	clock = 200
	s.Part("lobby", "a")

	clock = 220
	_, exists := s.Get("lobby", "%name")
	assert.True(t, exists)

	clock = 251
	_, exists = s.Get("lobby", "%name")
	assert.False(t, exists)
}

func Test_channel_with_listeners_never_expires(t *testing.T) {
	clock := 100
	s := newTestStore(&clock)
	s.Join("lobby", &testListener{"a"})
	s.Set("lobby", "%name", "x")

	clock = 10000
	_, exists := s.Get("lobby", "%name")
	assert.True(t, exists)
}
