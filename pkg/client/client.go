package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/fr3shw3b/varsync/pkg/engine"
	"github.com/fr3shw3b/varsync/pkg/transport"
	"github.com/sirupsen/logrus"
)

type ClientParams struct {
	ServerHost     string
	ServerPort     int
	Path           string
	Secure         bool
	MaxDialRetries int
	WriteTimeout   time.Duration
	// Receives the engine's non-fatal errors, they are logged when nil.
	OnError func(err error)
}

type clientImpl struct {
	params *ClientParams
	engine *engine.Engine
	logger *logrus.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

func NewDefaultClient(params *ClientParams, logger *logrus.Logger) Client {
	dialer := transport.NewWebSocketDialer(&transport.DialerParams{
		MaxDialRetries:   params.MaxDialRetries,
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     params.WriteTimeout,
	}, logger)
	return &clientImpl{
		params: params,
		engine: engine.New(&engine.Params{OnError: params.OnError}, dialer, logger),
		logger: logger,
		closed: make(chan struct{}),
	}
}

func (c *clientImpl) Connect() error {
	if c.params.ServerHost == "" {
		return errors.New("server host is required")
	}
	c.engine.Connect(c.buildUrl())
	return nil
}

func (c *clientImpl) Bind(ctx context.Context, channel string, scope engine.Scope, decls []engine.Declaration) *engine.Attachment {
	attachment := c.engine.Bind(channel, scope, decls)
	go func() {
		select {
		case <-ctx.Done():
		case <-c.closed:
		}
		attachment.Detach()
	}()
	return attachment
}

func (c *clientImpl) Get(channel string, names ...string) {
	c.engine.Get(channel, names...)
}

func (c *clientImpl) Set(channel string, values map[string]interface{}) {
	c.engine.Set(channel, values)
}

func (c *clientImpl) Engine() *engine.Engine {
	return c.engine
}

func (c *clientImpl) buildUrl() string {
	scheme := "ws"
	if c.params.Secure {
		scheme = "wss"
	}
	host := c.params.ServerHost
	if c.params.ServerPort > 0 {
		host = fmt.Sprintf("%s:%d", c.params.ServerHost, c.params.ServerPort)
	}
	u := url.URL{
		Scheme: scheme,
		Host:   host,
		Path:   c.params.Path,
	}
	return u.String()
}

func (c *clientImpl) Close() error {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
	c.engine.Close()
	return nil
}
