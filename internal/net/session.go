package net

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vide-coded/voxel-warfare/internal/net/proto"
	"github.com/vide-coded/voxel-warfare/internal/sim"
	"github.com/vide-coded/voxel-warfare/internal/telemetry"
)

// sessionSendQueueSize bounds how many broadcast frames may pile up for
// one connection before frames are dropped.
const sessionSendQueueSize = 32

var errSessionQueueFull = errors.New("net: session send queue full")

// sessionConn is the subset of a websocket connection the session write
// path needs. Production code adapts *websocket.Conn through textConn;
// tests substitute in-memory fakes.
type sessionConn interface {
	Write(data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// textConn adapts a gorilla connection to sessionConn. Every outbound
// frame is a text message because the protocol is JSON.
type textConn struct {
	conn *websocket.Conn
}

func (c textConn) Write(data []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c textConn) SetWriteDeadline(t time.Time) error {
	return c.conn.SetWriteDeadline(t)
}

func (c textConn) Close() error {
	return c.conn.Close()
}

type queuedFrame struct {
	deadline time.Time
	data     []byte
}

// session owns the write side of one client connection. State broadcasts
// flow through a bounded queue drained by a single writer goroutine so a
// slow consumer cannot stall the loop; direct replies (acks, heartbeat
// echoes) write synchronously under the connection mutex.
type session struct {
	id      string
	conn    sessionConn
	metrics telemetry.Metrics

	writeMu sync.Mutex

	queue     chan queuedFrame
	done      chan struct{}
	closeOnce sync.Once

	lastSeq  atomic.Uint64
	lastBeat atomic.Int64
	lastRTT  atomic.Int64
	dropped  atomic.Uint64
}

func newSession(id string, conn sessionConn, metrics telemetry.Metrics) *session {
	if metrics == nil {
		metrics = telemetry.NewRegistry()
	}
	s := &session{
		id:      id,
		conn:    conn,
		metrics: metrics,
		queue:   make(chan queuedFrame, sessionSendQueueSize),
		done:    make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

func (s *session) writeLoop() {
	for {
		select {
		case <-s.done:
			return
		case frame := <-s.queue:
			if err := s.write(frame.deadline, frame.data); err != nil {
				// The read loop observes the closed connection and
				// runs the disconnect path.
				s.conn.Close()
				return
			}
		}
	}
}

// Write sends one frame synchronously.
func (s *session) Write(deadline time.Time, data []byte) error {
	return s.write(deadline, data)
}

func (s *session) write(deadline time.Time, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return s.conn.Write(data)
}

// EnqueueBroadcast hands a frame to the writer goroutine. When the queue
// is full the frame is dropped and accounted rather than blocking the
// caller.
func (s *session) EnqueueBroadcast(deadline time.Time, data []byte) error {
	select {
	case s.queue <- queuedFrame{deadline: deadline, data: data}:
		return nil
	default:
		s.dropped.Add(1)
		s.metrics.Add(metricFramesDropped, 1)
		return errSessionQueueFull
	}
}

// Close stops the writer goroutine and closes the underlying connection.
// Safe to call more than once.
func (s *session) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// LastCommandSeq reports the highest acknowledged command sequence.
func (s *session) LastCommandSeq() uint64 {
	return s.lastSeq.Load()
}

// StoreLastCommandSeq records seq as acknowledged so retransmits of the
// same command can be answered without re-staging them.
func (s *session) StoreLastCommandSeq(seq uint64) {
	s.lastSeq.Store(seq)
}

func (s *session) touch(now time.Time) {
	s.lastBeat.Store(now.UnixMilli())
}

func (s *session) staleSince(now time.Time) bool {
	last := s.lastBeat.Load()
	if last == 0 {
		return false
	}
	return now.Sub(time.UnixMilli(last)) > disconnectAfter
}

// ServeSession runs the read loop for one upgraded connection. It blocks
// until the connection drops or the client misbehaves, and always leaves
// the hub without the session on return.
func (h *Hub) ServeSession(clientID string, conn *websocket.Conn) {
	if h == nil || conn == nil {
		return
	}
	sess, initial, ok := h.Subscribe(clientID, conn)
	if !ok {
		message := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "unknown client")
		if err := conn.WriteMessage(websocket.CloseMessage, message); err != nil {
			h.logger.Printf("failed to reject unknown client %s: %v", clientID, err)
		}
		conn.Close()
		return
	}

	if len(initial) > 0 {
		if err := sess.Write(h.clock.Now().Add(writeWait), initial); err != nil {
			h.Disconnect(clientID, "write_failed")
			return
		}
	}

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			h.Disconnect(clientID, "read_closed")
			return
		}

		msg, err := proto.DecodeClientMessage(payload)
		if err != nil {
			h.logger.Printf("discarding malformed message from %s: %v", clientID, err)
			continue
		}

		switch msg.Type {
		case proto.TypeHeartbeat:
			if !h.handleHeartbeat(sess, clientID, msg) {
				return
			}
		case proto.TypeInput, proto.TypeSwing, proto.TypeFire:
			if !h.handleCommand(sess, clientID, msg) {
				return
			}
		default:
			h.logger.Printf("unknown message type %q from %s", msg.Type, clientID)
		}
	}
}

// handleHeartbeat answers a client ping with the server clock and the
// round-trip estimate. It reports false when the connection died.
func (h *Hub) handleHeartbeat(sess *session, clientID string, msg proto.ClientMessage) bool {
	now := h.clock.Now()
	rtt, ok := h.Heartbeat(clientID, now, msg.SentAt)
	if !ok {
		return true
	}
	data, err := proto.EncodeHeartbeat(proto.Heartbeat{
		ServerTime: now.UnixMilli(),
		ClientTime: msg.SentAt,
		RTTMillis:  rtt.Milliseconds(),
	})
	if err != nil {
		h.logger.Printf("failed to marshal heartbeat ack for %s: %v", clientID, err)
		return true
	}
	return h.writeFrame(sess, clientID, data)
}

// handleCommand stages one client command and answers with an ack or a
// reject when the client supplied a sequence number. A sequence at or
// below the last acknowledged one is a retransmit and is acked without
// staging the command again. It reports false when the connection died.
func (h *Hub) handleCommand(sess *session, clientID string, msg proto.ClientMessage) bool {
	var seq uint64
	if msg.Seq != nil {
		seq = *msg.Seq
	}

	if seq > 0 {
		if last := sess.LastCommandSeq(); last > 0 && seq <= last {
			return h.writeAck(sess, clientID, proto.CommandAck{Seq: seq})
		}
	}

	cmd, ok, reason := h.Stage(clientID, msg)
	if seq == 0 {
		if !ok {
			h.logger.Printf("command %q from %s rejected: %s", msg.Type, clientID, reason)
		}
		return true
	}

	if !ok {
		retry := reason == sim.RejectThrottled || reason == sim.RejectQueueFull
		data, err := proto.EncodeCommandReject(proto.CommandReject{Seq: seq, Reason: reason, Retry: retry})
		if err != nil {
			h.logger.Printf("failed to marshal reject for %s: %v", clientID, err)
			return true
		}
		return h.writeFrame(sess, clientID, data)
	}

	if !h.writeAck(sess, clientID, proto.CommandAck{Seq: seq, Tick: cmd.OriginTick}) {
		return false
	}
	sess.StoreLastCommandSeq(seq)
	return true
}

func (h *Hub) writeAck(sess *session, clientID string, ack proto.CommandAck) bool {
	data, err := proto.EncodeCommandAck(ack)
	if err != nil {
		h.logger.Printf("failed to marshal ack for %s: %v", clientID, err)
		return true
	}
	return h.writeFrame(sess, clientID, data)
}

func (h *Hub) writeFrame(sess *session, clientID string, data []byte) bool {
	if err := sess.Write(h.clock.Now().Add(writeWait), data); err != nil {
		h.Disconnect(clientID, "write_failed")
		return false
	}
	return true
}
