package engine

import (
	"github.com/fr3shw3b/varsync/pkg/protocol"
)

func (e *Engine) handleMessage(data []byte) {
	msg, err := e.codec.Decode(data)
	if err != nil {
		e.logger.WithError(err).Warn("dropping undecodable message")
		return
	}
	e.logger.Debug("received: ", string(data))
	e.dispatch(msg)
}

// dispatch routes one inbound message. Nothing here fails the connection.
func (e *Engine) dispatch(msg protocol.Message) {
	switch msg.Op {
	case protocol.TagSet, protocol.TagMultiSet:
		for name, value := range msg.Values() {
			e.notify(msg.Channel, name, value)
		}
	case protocol.TagJoin:
		// Inbound joins are acknowledgments of our own join requests.
		e.acknowledgeJoin(msg.Channel)
	case protocol.TagPart:
		e.logger.Debug("part of channel ", msg.Channel, " acknowledged")
	case protocol.TagError:
		e.reportError(&ProtocolError{
			Code:    msg.ReplyTo,
			Channel: msg.Channel,
			Var:     msg.Names.First(),
			Message: msg.Text,
		})
	default:
		e.logger.WithError(&UnknownMessageTypeError{Op: msg.Op}).Warn("dropping message")
	}
}
