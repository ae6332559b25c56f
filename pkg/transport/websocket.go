// Package transport connects the engine to a server over gorilla/websocket.
package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/fr3shw3b/varsync/pkg/engine"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var ErrNotOpen = errors.New("websocket connection is not open")

type DialerParams struct {
	// MaxDialRetries is the number of extra attempts made to establish
	// a connection. Once open, a closed connection is never retried.
	MaxDialRetries   int
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

type webSocketDialer struct {
	params *DialerParams
	dialer *websocket.Dialer
	logger *logrus.Logger
}

func NewWebSocketDialer(params *DialerParams, logger *logrus.Logger) engine.Dialer {
	dialer := *websocket.DefaultDialer
	if params.HandshakeTimeout > 0 {
		dialer.HandshakeTimeout = params.HandshakeTimeout
	}
	return &webSocketDialer{params: params, dialer: &dialer, logger: logger}
}

func (d *webSocketDialer) Dial(address string, handler engine.Handler) engine.Transport {
	conn := &webSocketConn{
		address: address,
		params:  d.params,
		handler: handler,
		logger:  d.logger,
	}
	go conn.run(d.dialer)
	return conn
}

type webSocketConn struct {
	address string
	params  *DialerParams
	handler engine.Handler
	logger  *logrus.Logger

	mu        sync.Mutex
	ws        *websocket.Conn
	closed    bool
	closeOnce sync.Once
}

func (c *webSocketConn) run(dialer *websocket.Dialer) {
	err := backoff.Retry(func() error {
		return c.dial(dialer)
	}, backoff.WithMaxRetries(
		backoff.NewExponentialBackOff(),
		uint64(c.params.MaxDialRetries),
	))
	if err != nil {
		c.handler.Closed(err)
		return
	}

	c.handler.Open()
	c.handleMessages()
}

func (c *webSocketConn) dial(dialer *websocket.Dialer) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return backoff.Permanent(ErrNotOpen)
	}

	ws, _, err := dialer.Dial(c.address, nil)
	if err != nil {
		c.logger.Debug("dial error: ", err)
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		ws.Close()
		return backoff.Permanent(ErrNotOpen)
	}
	c.ws = ws
	return nil
}

func (c *webSocketConn) handleMessages() {
	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			c.ws.Close()
			c.finish(err)
			return
		}
		c.handler.Message(message)
	}
}

// finish reports the end of the connection once. A close we asked for,
// or a normal closure from the server, is reported as a clean close.
func (c *webSocketConn) finish(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		requested := c.closed
		c.mu.Unlock()
		if requested || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			err = nil
		}
		c.logger.Debug("websocket closed: ", err)
		c.handler.Closed(err)
	})
}

func (c *webSocketConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ws == nil || c.closed {
		return ErrNotOpen
	}
	if c.params.WriteTimeout > 0 {
		c.ws.SetWriteDeadline(time.Now().Add(c.params.WriteTimeout))
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *webSocketConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.ws == nil {
		return nil
	}
	c.ws.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return c.ws.Close()
}
