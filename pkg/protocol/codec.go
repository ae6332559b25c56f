package protocol

import (
	"encoding/json"
	"fmt"
)

// Codec converts messages to and from the transport's frame payload.
type Codec interface {
	Encode(msg Message) ([]byte, error)
	Decode(data []byte) (Message, error)
}

type jsonCodec struct{}

// NewJSONCodec returns the codec used on the wire by default,
// one JSON object per frame.
func NewJSONCodec() Codec {
	return jsonCodec{}
}

func (jsonCodec) Encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(&msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}

func (jsonCodec) Decode(data []byte) (Message, error) {
	msg := Message{}
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("failed to decode message: %w", err)
	}
	if msg.Op == "" {
		return Message{}, fmt.Errorf("failed to decode message: missing operation tag")
	}
	return msg, nil
}
