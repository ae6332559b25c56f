package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_parse_sigil_selects_policy(t *testing.T) {
	cases := map[string]Policy{
		"&avg":       PolicyPushOnly,
		"$listeners": PolicyPushOnly,
		"%name":      PolicyDuplex,
		"#chat":      PolicyAccumulate,
		"=wire":      PolicyStream,
		"'text":      PolicyLiteral,
	}
	for name, expected := range cases {
		_, policy, err := ParseSigil(name)
		assert.NoError(t, err, name)
		assert.Equal(t, expected, policy, name)
	}
}

func Test_parse_sigil_rejects_unknown_and_short_names(t *testing.T) {
	_, policy, err := ParseSigil("?what")
	assert.Error(t, err)
	assert.Equal(t, PolicyInvalid, policy)

	_, _, err = ParseSigil("%")
	assert.Error(t, err)
}

func Test_requestable_policies(t *testing.T) {
	assert.True(t, PolicyPushOnly.Requestable())
	assert.True(t, PolicyDuplex.Requestable())
	assert.True(t, PolicyStream.Requestable())
	assert.False(t, PolicyAccumulate.Requestable())
	assert.False(t, PolicyLiteral.Requestable())
}
