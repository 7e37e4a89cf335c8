package net

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/vide-coded/voxel-warfare/internal/net/proto"
	"github.com/vide-coded/voxel-warfare/internal/sim"
)

func TestHTTPHealthz(t *testing.T) {
	h := newHubHarness(t, sim.LoopConfig{})
	handler := NewHTTPHandler(h.hub, HTTPHandlerConfig{})

	req := httptest.NewRequest(nethttp.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, nethttp.StatusOK, resp.Code)
	require.Equal(t, "ok", resp.Body.String())
	require.Equal(t, "text/plain", resp.Header().Get("Content-Type"))
}

func TestHTTPJoinReturnsClientID(t *testing.T) {
	h := newHubHarness(t, sim.LoopConfig{})
	h.hub.Broadcast(testStepResult(6))
	handler := NewHTTPHandler(h.hub, HTTPHandlerConfig{})

	req := httptest.NewRequest(nethttp.MethodPost, "/join", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, nethttp.StatusOK, resp.Code)
	require.Equal(t, "application/json", resp.Header().Get("Content-Type"))

	var join proto.JoinResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &join))
	require.Equal(t, "client-1", join.ID)
	require.Equal(t, proto.Version, join.Ver)
	require.Equal(t, 30, join.TickRate)
	require.Len(t, join.Enemies, 1)
}

func TestHTTPJoinRejectsWrongMethod(t *testing.T) {
	h := newHubHarness(t, sim.LoopConfig{})
	handler := NewHTTPHandler(h.hub, HTTPHandlerConfig{})

	req := httptest.NewRequest(nethttp.MethodGet, "/join", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, nethttp.StatusMethodNotAllowed, resp.Code)
}

func TestHTTPTelemetryReportsState(t *testing.T) {
	h := newHubHarness(t, sim.LoopConfig{})
	h.hub.Broadcast(testStepResult(5))
	join := h.hub.Join()
	_, _, ok := h.hub.subscribe(join.ID, &recordingConn{})
	require.True(t, ok)

	handler := NewHTTPHandler(h.hub, HTTPHandlerConfig{Registry: h.registry})

	req := httptest.NewRequest(nethttp.MethodGet, "/telemetry", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, nethttp.StatusOK, resp.Code)

	var payload struct {
		Status   string            `json:"status"`
		Tick     uint64            `json:"tick"`
		TickRate int               `json:"tickRate"`
		Clients  []struct {
			ID string `json:"id"`
		} `json:"clients"`
		Counters map[string]uint64 `json:"counters"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &payload))
	require.Equal(t, "ok", payload.Status)
	require.Equal(t, uint64(5), payload.Tick)
	require.Equal(t, 30, payload.TickRate)
	require.Len(t, payload.Clients, 1)
	require.Equal(t, join.ID, payload.Clients[0].ID)
	require.Equal(t, uint64(1), payload.Counters[metricBroadcastsTotal])
}

func TestHTTPWebSocketRequiresID(t *testing.T) {
	h := newHubHarness(t, sim.LoopConfig{})
	handler := NewHTTPHandler(h.hub, HTTPHandlerConfig{})

	req := httptest.NewRequest(nethttp.MethodGet, "/ws", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	require.Equal(t, nethttp.StatusBadRequest, resp.Code)
}

func dialWebSocket(t *testing.T, srv *httptest.Server, clientID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?id=" + clientID
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	return conn
}

func TestWebSocketSessionEndToEnd(t *testing.T) {
	h := newHubHarness(t, sim.LoopConfig{})
	h.hub.Broadcast(testStepResult(2))
	join := h.hub.Join()

	handler := NewHTTPHandler(h.hub, HTTPHandlerConfig{Registry: h.registry})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	conn := dialWebSocket(t, srv, join.ID)
	defer conn.Close()

	// The first frame replays the most recent broadcast.
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var state proto.StateMessage
	require.NoError(t, json.Unmarshal(payload, &state))
	require.Equal(t, proto.TypeState, state.Type)
	require.Equal(t, uint64(2), state.Tick)

	// A sequenced move command is staged and acknowledged.
	cmd := map[string]any{
		"type":     "input",
		"seq":      1,
		"position": map[string]float64{"x": 4, "z": 4},
	}
	require.NoError(t, conn.WriteJSON(cmd))

	_, payload, err = conn.ReadMessage()
	require.NoError(t, err)
	var ack map[string]any
	require.NoError(t, json.Unmarshal(payload, &ack))
	require.Equal(t, "commandAck", ack["type"])
	require.Equal(t, float64(1), ack["seq"])
	require.Equal(t, 1, h.loop.Pending())

	// Heartbeats are answered with the server clock and RTT estimate.
	beat := map[string]any{"type": "heartbeat", "sentAt": h.clock.Now().UnixMilli()}
	require.NoError(t, conn.WriteJSON(beat))

	_, payload, err = conn.ReadMessage()
	require.NoError(t, err)
	var echo map[string]any
	require.NoError(t, json.Unmarshal(payload, &echo))
	require.Equal(t, "heartbeat", echo["type"])
	require.Contains(t, echo, "serverTime")
}

func TestWebSocketRejectsUnknownClient(t *testing.T) {
	h := newHubHarness(t, sim.LoopConfig{})
	handler := NewHTTPHandler(h.hub, HTTPHandlerConfig{})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	conn := dialWebSocket(t, srv, "ghost")
	defer conn.Close()

	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	require.Equal(t, websocket.ClosePolicyViolation, closeErr.Code)
}
