package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func waitForClients(t *testing.T, h *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return h.Clients() == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastsEnvelope(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(h.Serve))
	defer srv.Close()
	defer h.Close()

	conn := dial(t, srv)
	defer conn.Close()
	waitForClients(t, h, 1)

	require.NoError(t, h.Publish(context.Background(), "order.created", map[string]int{"orderId": 7}))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var env struct {
		Pattern string         `json:"pattern"`
		Data    map[string]int `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &env))
	assert.Equal(t, "order.created", env.Pattern)
	assert.Equal(t, 7, env.Data["orderId"])
}

func TestHub_ClientDisconnectUnregisters(t *testing.T) {
	h := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(h.Serve))
	defer srv.Close()

	conn := dial(t, srv)
	waitForClients(t, h, 1)
	conn.Close()
	waitForClients(t, h, 0)
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	h := NewHub([]string{"https://shop.example.com"})
	srv := httptest.NewServer(http.HandlerFunc(h.Serve))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	assert.Error(t, err)
	if resp != nil {
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	}
}
