// Package proto defines the JSON wire messages exchanged with clients over
// the websocket feed and the join endpoint.
package proto

import (
	"encoding/json"
	"fmt"

	"github.com/vide-coded/voxel-warfare/internal/combat"
	"github.com/vide-coded/voxel-warfare/internal/geom"
	"github.com/vide-coded/voxel-warfare/internal/sim"
	"github.com/vide-coded/voxel-warfare/internal/world"
)

// Version tracks the wire-protocol revision expected by clients.
const Version = 1

// Client message type identifiers.
const (
	TypeInput     = "input"
	TypeSwing     = "swing"
	TypeFire      = "fire"
	TypeHeartbeat = "heartbeat"
)

// Server message type identifiers.
const (
	TypeState         = "state"
	typeCommandAck    = "commandAck"
	typeCommandReject = "commandReject"
	typeHeartbeatAck  = "heartbeat"
)

// ClientMessage captures an inbound websocket message. Vector payloads are
// pointers so the hub can tell an absent field from the origin.
type ClientMessage struct {
	Ver       int        `json:"ver,omitempty"`
	Type      string     `json:"type"`
	Seq       *uint64    `json:"seq,omitempty"`
	SentAt    int64      `json:"sentAt,omitempty"`
	Position  *geom.Vec3 `json:"position,omitempty"`
	Origin    *geom.Vec3 `json:"origin,omitempty"`
	Direction *geom.Vec3 `json:"direction,omitempty"`
	Weapon    string     `json:"weapon,omitempty"`
	Speed     float64    `json:"speed,omitempty"`
	Damage    float64    `json:"damage,omitempty"`
}

// DecodeClientMessage converts a raw websocket payload into a structured
// message, rejecting protocol versions this server does not speak.
func DecodeClientMessage(payload []byte) (ClientMessage, error) {
	var msg ClientMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, err
	}
	if msg.Ver == 0 {
		msg.Ver = Version
	}
	if msg.Ver != Version {
		return msg, fmt.Errorf("unsupported client protocol version %d", msg.Ver)
	}
	return msg, nil
}

// ClientCommand maps a decoded message onto a simulation command. Origin
// metadata (actor, tick, timestamp) is stamped by the intake stage.
func ClientCommand(msg ClientMessage) (sim.Command, bool) {
	switch msg.Type {
	case TypeInput:
		if msg.Position == nil {
			return sim.Command{}, false
		}
		return sim.Command{
			Type: sim.CommandMove,
			Move: &sim.MoveCommand{Position: *msg.Position},
		}, true
	case TypeSwing:
		if msg.Origin == nil || msg.Direction == nil {
			return sim.Command{}, false
		}
		return sim.Command{
			Type: sim.CommandSwing,
			Swing: &sim.SwingCommand{
				Weapon:    msg.Weapon,
				Origin:    *msg.Origin,
				Direction: *msg.Direction,
			},
		}, true
	case TypeFire:
		if msg.Origin == nil || msg.Direction == nil {
			return sim.Command{}, false
		}
		return sim.Command{
			Type: sim.CommandFire,
			Fire: &sim.FireCommand{
				Weapon:    msg.Weapon,
				Origin:    *msg.Origin,
				Direction: *msg.Direction,
				Speed:     msg.Speed,
				Damage:    msg.Damage,
			},
		}, true
	default:
		return sim.Command{}, false
	}
}

// StateMessage is the per-tick world broadcast.
type StateMessage struct {
	Ver         int                 `json:"ver"`
	Type        string              `json:"type"`
	Tick        uint64              `json:"t"`
	ServerTime  int64               `json:"serverTime"`
	Player      sim.PlayerView      `json:"player"`
	Enemies     []world.Enemy       `json:"enemies"`
	Projectiles []combat.View       `json:"projectiles,omitempty"`
	Events      []world.DamageEvent `json:"events,omitempty"`
}

// StateFromSnapshot builds the wire message from an engine snapshot.
func StateFromSnapshot(snap sim.Snapshot) StateMessage {
	return StateMessage{
		Tick:        snap.Tick,
		ServerTime:  snap.Time.UnixMilli(),
		Player:      snap.Player,
		Enemies:     snap.Enemies,
		Projectiles: snap.Projectiles,
		Events:      snap.Events,
	}
}

// EncodeState renders a state broadcast payload.
func EncodeState(msg StateMessage) ([]byte, error) {
	msg.Ver = Version
	if msg.Type == "" {
		msg.Type = TypeState
	}
	return json.Marshal(msg)
}

// JoinResponse answers the HTTP join endpoint with the client's assigned id
// and the current world.
type JoinResponse struct {
	Ver         int            `json:"ver"`
	ID          string         `json:"id"`
	TickRate    int            `json:"tickRate"`
	Player      sim.PlayerView `json:"player"`
	Enemies     []world.Enemy  `json:"enemies"`
	Projectiles []combat.View  `json:"projectiles,omitempty"`
}

// EncodeJoinResponse renders a join response payload.
func EncodeJoinResponse(msg JoinResponse) ([]byte, error) {
	msg.Ver = Version
	return json.Marshal(msg)
}

// CommandAck acknowledges a processed command.
type CommandAck struct {
	Seq  uint64
	Tick uint64
}

// EncodeCommandAck renders a command acknowledgement response.
func EncodeCommandAck(msg CommandAck) ([]byte, error) {
	frame := struct {
		Ver  int    `json:"ver"`
		Type string `json:"type"`
		Seq  uint64 `json:"seq"`
		Tick uint64 `json:"tick,omitempty"`
	}{
		Ver:  Version,
		Type: typeCommandAck,
		Seq:  msg.Seq,
	}
	if msg.Tick > 0 {
		frame.Tick = msg.Tick
	}
	return json.Marshal(frame)
}

// CommandReject notifies the client that a command was refused.
type CommandReject struct {
	Seq    uint64
	Reason string
	Retry  bool
}

// EncodeCommandReject renders a command rejection response.
func EncodeCommandReject(msg CommandReject) ([]byte, error) {
	frame := struct {
		Ver    int    `json:"ver"`
		Type   string `json:"type"`
		Seq    uint64 `json:"seq"`
		Reason string `json:"reason"`
		Retry  bool   `json:"retry,omitempty"`
	}{
		Ver:    Version,
		Type:   typeCommandReject,
		Seq:    msg.Seq,
		Reason: msg.Reason,
		Retry:  msg.Retry,
	}
	return json.Marshal(frame)
}

// Heartbeat echoes timing metadata back to the client.
type Heartbeat struct {
	ServerTime int64
	ClientTime int64
	RTTMillis  int64
}

// EncodeHeartbeat renders a heartbeat acknowledgement payload.
func EncodeHeartbeat(msg Heartbeat) ([]byte, error) {
	frame := struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		ServerTime int64  `json:"serverTime"`
		ClientTime int64  `json:"clientTime"`
		RTTMillis  int64  `json:"rtt"`
	}{
		Ver:        Version,
		Type:       typeHeartbeatAck,
		ServerTime: msg.ServerTime,
		ClientTime: msg.ClientTime,
		RTTMillis:  msg.RTTMillis,
	}
	return json.Marshal(frame)
}
