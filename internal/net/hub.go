// Package net exposes the simulation over HTTP and WebSocket transports.
// A Hub tracks joined clients and their live connections, fans the
// per-tick state broadcast out to every session, and stages inbound
// client commands into the simulation loop.
package net

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vide-coded/voxel-warfare/internal/net/intake"
	"github.com/vide-coded/voxel-warfare/internal/net/proto"
	"github.com/vide-coded/voxel-warfare/internal/sim"
	"github.com/vide-coded/voxel-warfare/internal/telemetry"
	"github.com/vide-coded/voxel-warfare/logging"
	"github.com/vide-coded/voxel-warfare/logging/lifecycle"
)

const (
	// writeWait bounds how long a single frame write may block before the
	// connection is considered dead.
	writeWait = 10 * time.Second
	// heartbeatInterval is the cadence clients are expected to ping at.
	heartbeatInterval = 2 * time.Second
	// disconnectAfter is how long a session may go without a heartbeat
	// before the broadcast sweep drops it.
	disconnectAfter = 3 * heartbeatInterval
)

const (
	metricClientsConnected = "net_clients_connected"
	metricBroadcastsTotal  = "net_broadcasts_total"
	metricBroadcastBytes   = "net_broadcast_bytes_total"
	metricFramesDropped    = "net_broadcast_frames_dropped_total"
)

// HubConfig wires the hub's collaborators. Zero values fall back to
// no-op implementations so tests can construct hubs piecemeal.
type HubConfig struct {
	TickRate  int
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Publisher logging.Publisher
	Clock     logging.Clock
}

func (cfg HubConfig) normalized() HubConfig {
	if cfg.TickRate <= 0 {
		cfg.TickRate = sim.DefaultLoopConfig().TickRate
	}
	if cfg.Logger == nil {
		cfg.Logger = telemetry.NopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = telemetry.NewRegistry()
	}
	if cfg.Clock == nil {
		cfg.Clock = logging.ClockFunc(time.Now)
	}
	return cfg
}

// Hub owns the set of connected clients. Joins, subscriptions and
// disconnects are serialized under one mutex; the encoded state of the
// most recent broadcast is cached so joins and fresh subscriptions can
// be answered without touching the simulation goroutine.
type Hub struct {
	loop      *sim.Loop
	tickRate  int
	logger    telemetry.Logger
	metrics   telemetry.Metrics
	publisher logging.Publisher
	clock     logging.Clock

	mu        sync.Mutex
	joined    map[string]bool
	sessions  map[string]*session
	lastState proto.StateMessage
	lastData  []byte

	nextID   atomic.Uint64
	lastTick atomic.Uint64
}

// NewHub builds a hub that stages commands into loop. A nil loop reports
// nil because a hub without a simulation behind it cannot serve anyone.
func NewHub(loop *sim.Loop, cfg HubConfig) *Hub {
	if loop == nil {
		return nil
	}
	cfg = cfg.normalized()
	return &Hub{
		loop:      loop,
		tickRate:  cfg.TickRate,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		publisher: cfg.Publisher,
		clock:     cfg.Clock,
	}
}

// Join registers a new client and hands back its id plus the most
// recently broadcast view of the world.
func (h *Hub) Join() proto.JoinResponse {
	if h == nil {
		return proto.JoinResponse{}
	}
	id := fmt.Sprintf("client-%d", h.nextID.Add(1))

	h.mu.Lock()
	if h.joined == nil {
		h.joined = make(map[string]bool)
	}
	h.joined[id] = true
	state := h.lastState
	h.mu.Unlock()

	lifecycle.PlayerJoined(context.Background(), h.publisher, h.lastTick.Load(),
		logging.EntityRef{ID: id, Kind: logging.EntityKindPlayer},
		lifecycle.PlayerJoinedPayload{
			SpawnX: state.Player.Position.X,
			SpawnY: state.Player.Position.Y,
			SpawnZ: state.Player.Position.Z,
		})

	return proto.JoinResponse{
		Ver:         proto.Version,
		ID:          id,
		TickRate:    h.tickRate,
		Player:      state.Player,
		Enemies:     state.Enemies,
		Projectiles: state.Projectiles,
	}
}

// HasClient reports whether id completed a join and has not disconnected.
func (h *Hub) HasClient(id string) bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.joined[id]
}

// ClientCount reports how many sessions hold a live connection.
func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Tick reports the tick of the most recent broadcast.
func (h *Hub) Tick() uint64 {
	if h == nil {
		return 0
	}
	return h.lastTick.Load()
}

// Stage validates and enqueues one client command.
func (h *Hub) Stage(clientID string, msg proto.ClientMessage) (sim.Command, bool, string) {
	if h == nil {
		return sim.Command{}, false, intake.RejectUnknownActor
	}
	ctx := intake.CommandContext{
		Queue:    h.loop,
		HasActor: h.HasClient,
		Tick:     h.Tick,
		Now:      h.clock.Now,
	}
	return intake.StageClientCommand(ctx, clientID, msg)
}

// Subscribe attaches conn as the live connection for clientID. It
// returns the session, the most recent encoded state frame for the
// initial write, and whether the client was known. An existing
// connection for the same client is closed and replaced.
func (h *Hub) Subscribe(clientID string, conn *websocket.Conn) (*session, []byte, bool) {
	if conn == nil {
		return nil, nil, false
	}
	return h.subscribe(clientID, textConn{conn: conn})
}

func (h *Hub) subscribe(clientID string, conn sessionConn) (*session, []byte, bool) {
	if h == nil {
		return nil, nil, false
	}
	now := h.clock.Now()

	h.mu.Lock()
	if !h.joined[clientID] {
		h.mu.Unlock()
		return nil, nil, false
	}
	existing := h.sessions[clientID]
	sess := newSession(clientID, conn, h.metrics)
	sess.touch(now)
	if h.sessions == nil {
		h.sessions = make(map[string]*session)
	}
	h.sessions[clientID] = sess
	data := h.lastData
	count := len(h.sessions)
	h.mu.Unlock()

	if existing != nil {
		existing.Close()
	}
	h.metrics.Store(metricClientsConnected, uint64(count))
	return sess, data, true
}

// Disconnect removes the client and closes its connection. The reason is
// carried on the lifecycle event so operators can tell timeouts from
// client-initiated closes.
func (h *Hub) Disconnect(clientID, reason string) bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	sess, hadSession := h.sessions[clientID]
	if hadSession {
		delete(h.sessions, clientID)
	}
	wasJoined := h.joined[clientID]
	if wasJoined {
		delete(h.joined, clientID)
	}
	count := len(h.sessions)
	h.mu.Unlock()

	if sess != nil {
		sess.Close()
	}
	if !hadSession && !wasJoined {
		return false
	}

	h.metrics.Store(metricClientsConnected, uint64(count))
	lifecycle.PlayerDisconnected(context.Background(), h.publisher, h.lastTick.Load(),
		logging.EntityRef{ID: clientID, Kind: logging.EntityKindPlayer},
		lifecycle.PlayerDisconnectedPayload{Reason: reason})
	return true
}

// Heartbeat records a client ping and reports the smoothed round-trip
// estimate. Client timestamps more than five seconds ahead of the server
// clock are ignored so a skewed client cannot poison the estimate.
func (h *Hub) Heartbeat(clientID string, receivedAt time.Time, clientSentMillis int64) (time.Duration, bool) {
	if h == nil {
		return 0, false
	}
	h.mu.Lock()
	sess, ok := h.sessions[clientID]
	h.mu.Unlock()
	if !ok {
		return 0, false
	}

	sess.touch(receivedAt)
	if clientSentMillis > 0 {
		clientTime := time.UnixMilli(clientSentMillis)
		if clientTime.Before(receivedAt.Add(5 * time.Second)) {
			rtt := receivedAt.Sub(clientTime)
			if rtt < 0 {
				rtt = 0
			}
			sess.lastRTT.Store(rtt.Milliseconds())
		}
	}
	return time.Duration(sess.lastRTT.Load()) * time.Millisecond, true
}

// Broadcast encodes the step result once and fans it out to every live
// session. Sessions that missed three heartbeat intervals are dropped
// before the send. Slow consumers lose this frame rather than stalling
// the loop; a fresh one arrives next tick.
func (h *Hub) Broadcast(result sim.StepResult) {
	if h == nil {
		return
	}
	msg := proto.StateFromSnapshot(result.Snapshot)
	data, err := proto.EncodeState(msg)
	if err != nil {
		h.logger.Printf("failed to marshal state broadcast: %v", err)
		return
	}
	h.lastTick.Store(result.Tick)

	now := h.clock.Now()
	deadline := now.Add(writeWait)

	h.mu.Lock()
	h.lastState = msg
	h.lastData = data
	targets := make([]*session, 0, len(h.sessions))
	var stale []string
	for id, sess := range h.sessions {
		if sess.staleSince(now) {
			stale = append(stale, id)
			continue
		}
		targets = append(targets, sess)
	}
	h.mu.Unlock()

	for _, id := range stale {
		h.logger.Printf("disconnecting %s after missed heartbeats", id)
		h.Disconnect(id, "heartbeat_timeout")
	}

	sent := 0
	for _, sess := range targets {
		if err := sess.EnqueueBroadcast(deadline, data); err != nil {
			h.logger.Printf("dropping state frame for %s: %v", sess.id, err)
			continue
		}
		sent++
	}

	h.metrics.Add(metricBroadcastsTotal, 1)
	h.metrics.Add(metricBroadcastBytes, uint64(len(data)*sent))
}

// Close tears down every live session. Used on server shutdown.
func (h *Hub) Close() {
	if h == nil {
		return
	}
	h.mu.Lock()
	sessions := make([]*session, 0, len(h.sessions))
	for _, sess := range h.sessions {
		sessions = append(sessions, sess)
	}
	h.sessions = nil
	h.joined = nil
	h.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}
	h.metrics.Store(metricClientsConnected, 0)
}

// ClientDiagnostics reports per-connection heartbeat health for the
// telemetry endpoint.
type ClientDiagnostics struct {
	ID            string `json:"id"`
	LastHeartbeat int64  `json:"lastHeartbeat"`
	RTTMillis     int64  `json:"rtt"`
	DroppedFrames uint64 `json:"droppedFrames"`
}

// Diagnostics lists every live session sorted by client id.
func (h *Hub) Diagnostics() []ClientDiagnostics {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	out := make([]ClientDiagnostics, 0, len(h.sessions))
	for id, sess := range h.sessions {
		out = append(out, ClientDiagnostics{
			ID:            id,
			LastHeartbeat: sess.lastBeat.Load(),
			RTTMillis:     sess.lastRTT.Load(),
			DroppedFrames: sess.dropped.Load(),
		})
	}
	h.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
