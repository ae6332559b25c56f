package engine

import (
	"errors"
	"fmt"
)

// ErrRefCountUnderflow is logged when a channel is parted more times than it was joined.
var ErrRefCountUnderflow = errors.New("channel parted more times than joined")

// ErrNotJoined is reported for a get or set on a channel nobody joined.
var ErrNotJoined = errors.New("channel not joined")

// TransportError is reported when the connection fails or a frame cannot be written.
type TransportError struct {
	Address string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error (%s): %s", e.Address, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ProtocolError is an error message sent by the server.
type ProtocolError struct {
	// Code is the operation the error replies to.
	Code    string
	Channel string
	Var     string
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Channel != "" {
		return fmt.Sprintf("server error replying to %q on channel %s: %s", e.Code, e.Channel, e.Message)
	}
	return fmt.Sprintf("server error replying to %q: %s", e.Code, e.Message)
}

type UnknownMessageTypeError struct {
	Op string
}

func (e *UnknownMessageTypeError) Error() string {
	return fmt.Sprintf("unknown message type %q", e.Op)
}

// UnknownSigilError is reported for a binding declaration whose remote
// variable does not select a bindable policy. The declaration is skipped.
type UnknownSigilError struct {
	Channel string
	Local   string
	Remote  string
	Err     error
}

func (e *UnknownSigilError) Error() string {
	return fmt.Sprintf("cannot bind %s to %s on channel %s: %s", e.Local, e.Remote, e.Channel, e.Err)
}

func (e *UnknownSigilError) Unwrap() error {
	return e.Err
}
