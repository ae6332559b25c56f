package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_get_with_one_name_is_a_single_get(t *testing.T) {
	msg := Get("lobby", "%score")
	assert.Equal(t, TagGet, msg.Op)

	data, err := NewJSONCodec().Encode(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":"g","c":"lobby","n":"%score"}`, string(data))
}

func Test_get_with_several_names_is_a_multi_get(t *testing.T) {
	data, err := NewJSONCodec().Encode(Get("lobby", "%score", "&total"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":"G","c":"lobby","n":["%score","&total"]}`, string(data))
}

func Test_set_builds_single_or_multi_set(t *testing.T) {
	one := Set("lobby", map[string]interface{}{"%score": 42})
	assert.Equal(t, TagSet, one.Op)
	assert.Equal(t, Names{"%score"}, one.Names)
	assert.Equal(t, 42, one.Value)

	many := Set("lobby", map[string]interface{}{"%a": 1, "%b": 2})
	data, err := NewJSONCodec().Encode(many)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":"S","c":"lobby","v":{"%a":1,"%b":2}}`, string(data))
}

func Test_decode_set_notification(t *testing.T) {
	msg, err := NewJSONCodec().Decode([]byte(`{"x":"s","c":"lobby","n":"%score","v":7}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"%score": float64(7)}, msg.Values())
}

func Test_decode_multi_set_notification(t *testing.T) {
	msg, err := NewJSONCodec().Decode([]byte(`{"x":"S","c":"lobby","v":{"%a":"x","#log":"y"}}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"%a": "x", "#log": "y"}, msg.Values())
}

func Test_decode_error_message(t *testing.T) {
	msg, err := NewJSONCodec().Decode([]byte(`{"x":"!","w":"j","c":"nowhere","m":"invalid channel"}`))
	require.NoError(t, err)
	assert.Equal(t, TagError, msg.Op)
	assert.Equal(t, "j", msg.ReplyTo)
	assert.Equal(t, "nowhere", msg.Channel)
	assert.Equal(t, "invalid channel", msg.Text)
}

func Test_decode_rejects_invalid_frames(t *testing.T) {
	codec := NewJSONCodec()

	_, err := codec.Decode([]byte(`not json`))
	assert.Error(t, err)

	_, err = codec.Decode([]byte(`{"c":"lobby"}`))
	assert.Error(t, err)

	_, err = codec.Decode([]byte(`{"x":"s","n":12}`))
	assert.Error(t, err)
}
