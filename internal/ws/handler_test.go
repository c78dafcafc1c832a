package ws

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"companion_mock/internal/logbus"
)

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHandlerReplaysSnapshotThenStreams(t *testing.T) {
	bus := logbus.New(10, nil)
	bus.Publish("request", "first")
	srv := httptest.NewServer(NewHandler(bus, []string{"*"}))
	defer srv.Close()

	conn := dial(t, srv, "")
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg logbus.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "first", msg.Data)

	bus.Publish("request", "second")
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "second", msg.Data)
}

func TestHandlerFiltersByType(t *testing.T) {
	bus := logbus.New(10, nil)
	bus.Publish("request", "skipped")
	bus.Log("info", "kept", nil)
	srv := httptest.NewServer(NewHandler(bus, []string{"*"}))
	defer srv.Close()

	conn := dial(t, srv, "?type=log")
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg logbus.Message
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "log", msg.Type)
}

func TestCheckOrigin(t *testing.T) {
	h := NewHandler(logbus.New(1, nil), []string{"http://app.test"})

	r := httptest.NewRequest("GET", "/", nil)
	assert.True(t, h.checkOrigin(r))

	r.Header.Set("Origin", "http://APP.test")
	assert.True(t, h.checkOrigin(r))

	r.Header.Set("Origin", "http://evil.test")
	assert.False(t, h.checkOrigin(r))
}
