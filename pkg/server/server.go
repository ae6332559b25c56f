package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/fr3shw3b/varsync/pkg/protocol"
	"github.com/fr3shw3b/varsync/pkg/store"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

type ServerParams struct {
	WriteTimeout time.Duration
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// No need for strict CORS checking for this implementation.
		return true
	},
}

type serverImpl struct {
	params *ServerParams
	store  store.ChannelStore
	codec  protocol.Codec
	logger *logrus.Logger
}

// NewDefaultServer returns a websocket handler serving channels held in store.
func NewDefaultServer(params *ServerParams, channels store.ChannelStore, logger *logrus.Logger) http.Handler {
	return &serverImpl{
		params: params,
		store:  channels,
		codec:  protocol.NewJSONCodec(),
		logger: logger,
	}
}

type listener struct {
	id     string
	conn   *websocket.Conn
	codec  protocol.Codec
	params *ServerParams
	mu     sync.Mutex
}

func (l *listener) ID() string {
	return l.id
}

func (l *listener) Send(msg protocol.Message) error {
	data, err := l.codec.Encode(msg)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.params.WriteTimeout > 0 {
		l.conn.SetWriteDeadline(time.Now().Add(l.params.WriteTimeout))
	}
	return l.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *serverImpl) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websockets upgrade error: ", err)
		return
	}
	defer conn.Close()

	l := &listener{
		id:     uuid.New().String(),
		conn:   conn,
		codec:  s.codec,
		params: s.params,
	}
	logger := s.logger.WithField("listener", l.id)
	logger.Debug("listener connected")

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			logger.Debug("read error: ", err)
			break
		}
		s.handleMessage(l, logger, message)
	}

	for _, channel := range s.store.PartAll(l.id) {
		s.broadcastListeners(channel, s.store.Listeners(channel))
	}
}

func (s *serverImpl) handleMessage(l *listener, logger *logrus.Entry, message []byte) {
	msg, err := s.codec.Decode(message)
	if err != nil {
		logger.Debug("invalid message: ", err)
		s.reply(l, logger, protocol.Error("?", "invalid cmd"))
		return
	}
	logger.Debug("received: ", string(message))

	switch msg.Op {
	case protocol.TagJoin:
		listeners, err := s.store.Join(msg.Channel, l)
		if err != nil {
			s.replyError(l, logger, msg, "", err.Error())
			return
		}
		s.reply(l, logger, protocol.Join(msg.Channel))
		s.broadcastListeners(msg.Channel, listeners)
	case protocol.TagPart:
		if !s.store.IsListening(msg.Channel, l.id) {
			s.replyError(l, logger, msg, "", "not joined")
			return
		}
		s.broadcastListeners(msg.Channel, s.store.Part(msg.Channel, l.id))
	case protocol.TagGet, protocol.TagMultiGet:
		s.handleGet(l, logger, msg)
	case protocol.TagSet, protocol.TagMultiSet:
		s.handleSet(l, logger, msg)
	default:
		s.replyError(l, logger, msg, "", "invalid cmd")
	}
}

func (s *serverImpl) handleGet(l *listener, logger *logrus.Entry, msg protocol.Message) {
	if !s.store.IsListening(msg.Channel, l.id) {
		s.replyError(l, logger, msg, "", "not joined")
		return
	}

	values := map[string]interface{}{}
	for _, name := range msg.Names {
		_, policy, err := protocol.ParseSigil(name)
		if err != nil || policy == protocol.PolicyLiteral {
			s.replyError(l, logger, msg, name, "invalid var")
			continue
		}
		// Variables that were never set are reported as null.
		value, _ := s.store.Get(msg.Channel, name)
		values[name] = value
	}
	if len(values) == 0 {
		return
	}
	s.reply(l, logger, protocol.Set(msg.Channel, values))
}

func (s *serverImpl) handleSet(l *listener, logger *logrus.Entry, msg protocol.Message) {
	if !s.store.IsListening(msg.Channel, l.id) {
		s.replyError(l, logger, msg, "", "not joined")
		return
	}

	for name, value := range msg.Values() {
		_, policy, err := protocol.ParseSigil(name)
		if err != nil || policy == protocol.PolicyLiteral {
			s.replyError(l, logger, msg, name, "invalid var")
			continue
		}
		if !policy.Writable() && policy != protocol.PolicyAccumulate {
			s.replyError(l, logger, msg, name, "read only")
			continue
		}
		listeners := s.store.Set(msg.Channel, name, value)
		s.broadcast(listeners, protocol.SetOne(msg.Channel, name, value))
	}
}

func (s *serverImpl) broadcastListeners(channel string, listeners []store.Listener) {
	s.broadcast(listeners, protocol.SetOne(channel, store.ListenersVar, len(listeners)))
}

func (s *serverImpl) broadcast(listeners []store.Listener, msg protocol.Message) {
	for _, listener := range listeners {
		if err := listener.Send(msg); err != nil {
			s.logger.WithField("listener", listener.ID()).Debug("broadcast write error: ", err)
		}
	}
}

func (s *serverImpl) replyError(l *listener, logger *logrus.Entry, msg protocol.Message, name string, text string) {
	reply := protocol.Error(msg.Op, text)
	reply.Channel = msg.Channel
	if name != "" {
		reply.Names = protocol.Names{name}
	}
	s.reply(l, logger, reply)
}

func (s *serverImpl) reply(l *listener, logger *logrus.Entry, msg protocol.Message) {
	if err := l.Send(msg); err != nil {
		logger.Error("write error: ", err)
	}
}
