package store

import "github.com/fr3shw3b/varsync/pkg/protocol"

// Listener is a connection joined to one or more channels.
type Listener interface {
	ID() string
	Send(msg protocol.Message) error
}

// ListenersVar is the system variable holding a channel's listener count.
const ListenersVar = "$listeners"

type ChannelStore interface {
	// Joins listener to channel and returns the channel's listeners.
	Join(channel string, listener Listener) ([]Listener, error)
	// Parts the listener and returns the remaining listeners.
	Part(channel string, listenerID string) []Listener
	// Parts the listener from every channel, returning the names of the
	// channels it left.
	PartAll(listenerID string) []string
	IsListening(channel string, listenerID string) bool
	Listeners(channel string) []Listener
	// Gets the value of a variable, the second return value reports
	// whether the variable was ever set.
	Get(channel string, name string) (interface{}, bool)
	// Sets a variable and returns the listeners to notify.
	Set(channel string, name string, value interface{}) []Listener
}
