package config

import (
	"testing"

	"github.com/fr3shw3b/varsync/pkg/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_load_for_client_defaults(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	conf, err := LoadForClient()
	require.NoError(t, err)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, 0, conf.MaxDialRetries)
	assert.Equal(t, "bindings.toml", conf.BindingsFile)
}

func Test_load_for_client_rejects_invalid_retries(t *testing.T) {
	t.Setenv("MAX_DIAL_RETRIES", "many")
	_, err := LoadForClient()
	assert.Error(t, err)
}

func Test_load_server_config(t *testing.T) {
	t.Setenv("CHANNEL_IDLE_TIME_EXPIRY", "5")
	conf, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, conf.ChannelIdleTimeExpiry)
	assert.Equal(t, "info", conf.LogLevel)
}

func Test_parse_bindings(t *testing.T) {
	bindings, err := ParseBindings(`
[[bind]]
channel = "lobby"
[bind.vars]
name = "%name"
log = "#log"

[[bind]]
channel = "room1"
[bind.vars]
score = "&score"
`)
	require.NoError(t, err)
	require.Len(t, bindings.Bind, 2)
	assert.Equal(t, "lobby", bindings.Bind[0].Channel)
	assert.Equal(t, []engine.Declaration{
		{Local: "log", Remote: "#log"},
		{Local: "name", Remote: "%name"},
	}, bindings.Bind[0].Declarations())
}

func Test_parse_bindings_requires_channel_and_vars(t *testing.T) {
	_, err := ParseBindings(`
[[bind]]
[bind.vars]
name = "%name"
`)
	assert.Error(t, err)

	_, err = ParseBindings(`
[[bind]]
channel = "lobby"
`)
	assert.Error(t, err)
}
