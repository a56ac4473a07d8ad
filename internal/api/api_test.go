package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"remotemouse/internal/input"
	"remotemouse/internal/metrics"
	"remotemouse/internal/network"
	"remotemouse/internal/protocol"
)

type fakeStatus struct {
	stats network.Stats
}

func (f *fakeStatus) Stats() network.Stats { return f.stats }

func newTestServer(t *testing.T, status StatusSource) (*Server, *httptest.Server) {
	t.Helper()
	srv := NewServer("127.0.0.1:0", status, metrics.New())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return srv, ts
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t, &fakeStatus{})

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestStatus(t *testing.T) {
	status := &fakeStatus{stats: network.Stats{
		ListenAddr: "[::]:1978",
		Client:     "192.168.1.20:51234",
		Sessions:   3,
	}}
	_, ts := newTestServer(t, status)

	resp, err := http.Get(ts.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var got Status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.True(t, got.Connected)
	assert.Equal(t, "192.168.1.20:51234", got.Client)
	assert.Equal(t, uint64(3), got.Sessions)
	assert.GreaterOrEqual(t, got.UptimeSeconds, 0.0)

	status.stats.Client = ""
	resp2, err := http.Get(ts.URL + "/api/status")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&got))
	assert.False(t, got.Connected)
}

func TestMetricsEndpoint(t *testing.T) {
	_, ts := newTestServer(t, &fakeStatus{})

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	_, ts := newTestServer(t, &fakeStatus{})

	resp, err := http.Get(ts.URL + "/api/switch")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func dialFeed(t *testing.T, srv *Server, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return srv.hub.clientCount() == 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) map[string]json.RawMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestFeedBroadcastsSession(t *testing.T) {
	srv, ts := newTestServer(t, &fakeStatus{})
	conn := dialFeed(t, srv, ts)

	srv.BroadcastSession("10.0.0.5:4000", false, errors.New("invalid command data size"))

	msg := readMessage(t, conn)
	assert.JSONEq(t, `"session"`, string(msg["type"]))
	var payload protocol.SessionPayload
	require.NoError(t, json.Unmarshal(msg["payload"], &payload))
	assert.Equal(t, protocol.SessionPayload{
		Remote: "10.0.0.5:4000",
		Error:  "invalid command data size",
	}, payload)
}

func TestFeedBroadcastsInputInOrder(t *testing.T) {
	srv, ts := newTestServer(t, &fakeStatus{})
	conn := dialFeed(t, srv, ts)

	srv.BroadcastInput([]input.Event{
		{Type: input.EventMouseButton, Button: input.ButtonPrimary, Pressed: true},
		{Type: input.EventMouseButton, Button: input.ButtonPrimary},
		{Type: input.EventMouseMove, DeltaX: 71, DeltaY: -41},
	})

	var got []input.Event
	for i := 0; i < 3; i++ {
		msg := readMessage(t, conn)
		assert.JSONEq(t, `"input"`, string(msg["type"]))
		var ev input.Event
		require.NoError(t, json.Unmarshal(msg["payload"], &ev))
		got = append(got, ev)
	}
	assert.True(t, got[0].Pressed)
	assert.False(t, got[1].Pressed)
	assert.Equal(t, 71, got[2].DeltaX)
	assert.Equal(t, -41, got[2].DeltaY)
}

func TestFeedClientFollowsServer(t *testing.T) {
	srv, ts := newTestServer(t, &fakeStatus{})

	sessions := make(chan protocol.SessionPayload, 1)
	inputs := make(chan input.Event, 1)
	fc := network.NewFeedClient(strings.TrimPrefix(ts.URL, "http://"))
	fc.OnSession = func(ev protocol.SessionPayload) { sessions <- ev }
	fc.OnInput = func(ev input.Event) { inputs <- ev }
	fc.Start()
	defer fc.Close()

	require.Eventually(t, func() bool { return srv.hub.clientCount() == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Eventually(t, fc.IsConnected, time.Second, 5*time.Millisecond)

	srv.BroadcastSession("10.0.0.5:4000", true, nil)
	srv.BroadcastInput([]input.Event{{Type: input.EventMouseMove, DeltaX: 3, DeltaY: 4}})

	select {
	case ev := <-sessions:
		assert.True(t, ev.Connected)
		assert.Equal(t, "10.0.0.5:4000", ev.Remote)
	case <-time.After(2 * time.Second):
		t.Fatal("no session event")
	}
	select {
	case ev := <-inputs:
		assert.Equal(t, 3, ev.DeltaX)
	case <-time.After(2 * time.Second):
		t.Fatal("no input event")
	}
}

func TestCloseDisconnectsFeed(t *testing.T) {
	srv, ts := newTestServer(t, &fakeStatus{})
	conn := dialFeed(t, srv, ts)

	srv.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)

	// broadcasting after close must not block
	srv.BroadcastSession("x", true, nil)
}
