package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hwmonitor/internal/logger"
	"hwmonitor/internal/tree"
)

type fakeSource struct {
	calls atomic.Int64
}

func (f *fakeSource) Snapshot() *tree.Node {
	n := f.calls.Add(1)
	return &tree.Node{ID: 0, Text: tree.RootText, Value: strings.Repeat("x", int(n)), Children: []*tree.Node{}}
}

func startHub(t *testing.T, interval time.Duration) (*Hub, *httptest.Server, context.CancelFunc) {
	t.Helper()

	src := &fakeSource{}
	hub := NewHub(src, interval, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	h := NewHandler(hub, []string{"*"}, logger.Discard())
	srv := httptest.NewServer(http.HandlerFunc(h.Serve))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})

	return hub, srv, cancel
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return conn
}

func readNode(t *testing.T, conn *websocket.Conn) tree.Node {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var node tree.Node
	require.NoError(t, json.Unmarshal(msg, &node))
	return node
}

func TestClientReceivesSnapshotOnConnect(t *testing.T) {
	_, srv, _ := startHub(t, time.Hour)
	conn := dial(t, srv)

	node := readNode(t, conn)
	assert.Equal(t, "Sensor", node.Text)
}

func TestHubPushesPeriodically(t *testing.T) {
	_, srv, _ := startHub(t, 20*time.Millisecond)
	conn := dial(t, srv)

	first := readNode(t, conn)
	second := readNode(t, conn)
	assert.NotEqual(t, first.Value, second.Value)
}

func TestHubClosesClientsOnShutdown(t *testing.T) {
	_, srv, cancel := startHub(t, time.Hour)
	conn := dial(t, srv)
	readNode(t, conn)

	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}

func TestOriginCheck(t *testing.T) {
	hub := NewHub(&fakeSource{}, time.Hour, logger.Discard())
	h := NewHandler(hub, []string{"http://ui.local"}, logger.Discard())

	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("Origin", "http://evil.local")
	assert.False(t, h.upgrader.CheckOrigin(req))

	req.Header.Set("Origin", "http://ui.local")
	assert.True(t, h.upgrader.CheckOrigin(req))
}
