package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	opened   chan struct{}
	messages chan []byte
	closed   chan error
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{
		opened:   make(chan struct{}, 1),
		messages: make(chan []byte, 10),
		closed:   make(chan error, 1),
	}
}

func (h *recordingHandler) Open()               { h.opened <- struct{}{} }
func (h *recordingHandler) Message(data []byte) { h.messages <- data }
func (h *recordingHandler) Closed(err error)    { h.closed <- err }

func createEchoServer() *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				return
			}
			conn.WriteMessage(messageType, message)
		}
	}))
}

func Test_frames_are_sent_and_received_once_open(t *testing.T) {
	server := createEchoServer()
	defer server.Close()

	handler := newRecordingHandler()
	dialer := NewWebSocketDialer(&DialerParams{WriteTimeout: time.Second}, logrus.New())
	conn := dialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), handler)

	select {
	case <-handler.opened:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the connection to open")
	}

	require.NoError(t, conn.Send([]byte(`{"x":"j","c":"lobby"}`)))
	select {
	case message := <-handler.messages:
		assert.Equal(t, `{"x":"j","c":"lobby"}`, string(message))
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the echo")
	}

	require.NoError(t, conn.Close())
	select {
	case err := <-handler.closed:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for close")
	}
	assert.ErrorIs(t, conn.Send([]byte("late")), ErrNotOpen)
}

func Test_failed_dial_reports_close_with_error(t *testing.T) {
	server := createEchoServer()
	address := "ws" + strings.TrimPrefix(server.URL, "http")
	server.Close()

	handler := newRecordingHandler()
	dialer := NewWebSocketDialer(&DialerParams{MaxDialRetries: 1}, logrus.New())
	conn := dialer.Dial(address, handler)

	select {
	case err := <-handler.closed:
		assert.Error(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for the dial to fail")
	}
	assert.Empty(t, handler.opened)
	assert.ErrorIs(t, conn.Send([]byte("x")), ErrNotOpen)
}
