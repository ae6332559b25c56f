package client

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func Test_build_url(t *testing.T) {
	c := NewDefaultClient(&ClientParams{ServerHost: "localhost", ServerPort: 3000, Path: "/sync"}, logrus.New()).(*clientImpl)
	assert.Equal(t, "ws://localhost:3000/sync", c.buildUrl())

	c = NewDefaultClient(&ClientParams{ServerHost: "example.com", Secure: true}, logrus.New()).(*clientImpl)
	assert.Equal(t, "wss://example.com", c.buildUrl())
}

func Test_connect_requires_a_host(t *testing.T) {
	c := NewDefaultClient(&ClientParams{}, logrus.New())
	assert.Error(t, c.Connect())
}
