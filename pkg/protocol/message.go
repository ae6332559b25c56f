package protocol

import (
	"encoding/json"
	"errors"
)

// Operation tags carried in the "x" field.
// The server acknowledges a join by echoing TagJoin back, so an inbound
// TagJoin is always a join acknowledgment and an outbound one a join request.
const (
	TagJoin     = "j"
	TagPart     = "p"
	TagGet      = "g"
	TagMultiGet = "G"
	TagSet      = "s"
	TagMultiSet = "S"
	TagError    = "!"
)

// Message is one protocol frame.
type Message struct {
	Op      string      `json:"x"`
	Channel string      `json:"c,omitempty"`
	Names   Names       `json:"n,omitempty"`
	Value   interface{} `json:"v,omitempty"`
	ReplyTo string      `json:"w,omitempty"`
	Text    string      `json:"m,omitempty"`
}

// Names holds the "n" field, which is a single variable name for the
// single-value operations and an array of names for the multi operations.
type Names []string

func (n Names) MarshalJSON() ([]byte, error) {
	if len(n) == 1 {
		return json.Marshal(n[0])
	}
	return json.Marshal([]string(n))
}

func (n *Names) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*n = Names{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("n must be a string or an array of strings")
	}
	*n = many
	return nil
}

// First returns the first name or an empty string.
func (n Names) First() string {
	if len(n) == 0 {
		return ""
	}
	return n[0]
}

func Join(channel string) Message {
	return Message{Op: TagJoin, Channel: channel}
}

func Part(channel string) Message {
	return Message{Op: TagPart, Channel: channel}
}

// Get builds a request for one or more variables. A single name produces
// a get-one, anything more a multi-get.
func Get(channel string, names ...string) Message {
	op := TagMultiGet
	if len(names) == 1 {
		op = TagGet
	}
	return Message{Op: op, Channel: channel, Names: append(Names(nil), names...)}
}

// Set builds a write for one or more variables. A single entry produces
// a set-one carrying n and v, anything more a multi-set whose v is the map.
func Set(channel string, values map[string]interface{}) Message {
	if len(values) == 1 {
		for name, value := range values {
			return SetOne(channel, name, value)
		}
	}
	return Message{Op: TagMultiSet, Channel: channel, Value: values}
}

func SetOne(channel string, name string, value interface{}) Message {
	return Message{Op: TagSet, Channel: channel, Names: Names{name}, Value: value}
}

func Error(replyTo string, text string) Message {
	return Message{Op: TagError, ReplyTo: replyTo, Text: text}
}

// Values returns the variable -> value pairs carried by a set or multi-set.
func (m Message) Values() map[string]interface{} {
	switch m.Op {
	case TagSet:
		return map[string]interface{}{m.Names.First(): m.Value}
	case TagMultiSet:
		values, _ := m.Value.(map[string]interface{})
		return values
	}
	return nil
}
