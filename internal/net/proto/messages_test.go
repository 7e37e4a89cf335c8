package proto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vide-coded/voxel-warfare/internal/geom"
	"github.com/vide-coded/voxel-warfare/internal/sim"
	"github.com/vide-coded/voxel-warfare/internal/world"
)

func TestClientCommand(t *testing.T) {
	t.Run("move command", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{
			Type:     TypeInput,
			Position: &geom.Vec3{X: 3, Z: -2},
		})
		require.True(t, ok)
		assert.Equal(t, sim.CommandMove, cmd.Type)
		require.NotNil(t, cmd.Move)
		assert.Equal(t, geom.Vec3{X: 3, Z: -2}, cmd.Move.Position)
	})

	t.Run("move command requires position", func(t *testing.T) {
		_, ok := ClientCommand(ClientMessage{Type: TypeInput})
		assert.False(t, ok)
	})

	t.Run("swing command", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{
			Type:      TypeSwing,
			Weapon:    "axe",
			Origin:    &geom.Vec3{X: 1},
			Direction: &geom.Vec3{Z: 1},
		})
		require.True(t, ok)
		assert.Equal(t, sim.CommandSwing, cmd.Type)
		require.NotNil(t, cmd.Swing)
		assert.Equal(t, "axe", cmd.Swing.Weapon)
		assert.Equal(t, geom.Vec3{X: 1}, cmd.Swing.Origin)
		assert.Equal(t, geom.Vec3{Z: 1}, cmd.Swing.Direction)
	})

	t.Run("fire command", func(t *testing.T) {
		cmd, ok := ClientCommand(ClientMessage{
			Type:      TypeFire,
			Weapon:    "crossbow",
			Origin:    &geom.Vec3{Y: 1.5},
			Direction: &geom.Vec3{X: 1},
			Speed:     40,
			Damage:    30,
		})
		require.True(t, ok)
		assert.Equal(t, sim.CommandFire, cmd.Type)
		require.NotNil(t, cmd.Fire)
		assert.Equal(t, "crossbow", cmd.Fire.Weapon)
		assert.Equal(t, 40.0, cmd.Fire.Speed)
		assert.Equal(t, 30.0, cmd.Fire.Damage)
	})

	t.Run("swing command requires origin and direction", func(t *testing.T) {
		_, ok := ClientCommand(ClientMessage{Type: TypeSwing, Origin: &geom.Vec3{}})
		assert.False(t, ok)
	})

	t.Run("non command payload", func(t *testing.T) {
		_, ok := ClientCommand(ClientMessage{Type: TypeHeartbeat})
		assert.False(t, ok)
	})
}

func TestDecodeClientMessageChecksVersion(t *testing.T) {
	msg, err := DecodeClientMessage([]byte(`{"type":"input","position":{"x":1,"y":0,"z":2}}`))
	require.NoError(t, err)
	assert.Equal(t, Version, msg.Ver)
	require.NotNil(t, msg.Position)
	assert.Equal(t, geom.Vec3{X: 1, Z: 2}, *msg.Position)

	_, err = DecodeClientMessage([]byte(`{"ver":99,"type":"input"}`))
	require.Error(t, err)

	_, err = DecodeClientMessage([]byte(`{not json`))
	require.Error(t, err)
}

func TestEncodeStateSetsVersionAndType(t *testing.T) {
	msg := StateFromSnapshot(sim.Snapshot{
		Tick:    42,
		Time:    time.UnixMilli(5000),
		Player:  sim.PlayerView{Health: 85, MaxHealth: 100, Weapon: "sword"},
		Enemies: []world.Enemy{{ID: "zombie-1"}},
		Events:  []world.DamageEvent{{TargetID: "zombie-1", Amount: 23, Tick: 42}},
	})

	encoded, err := EncodeState(msg)
	require.NoError(t, err)

	// Encoding operates on a copy.
	assert.Zero(t, msg.Ver)

	var decoded struct {
		Ver        int    `json:"ver"`
		Type       string `json:"type"`
		Tick       uint64 `json:"t"`
		ServerTime int64  `json:"serverTime"`
		Enemies    []struct {
			ID string `json:"id"`
		} `json:"enemies"`
		Events []struct {
			Amount int `json:"amount"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, Version, decoded.Ver)
	assert.Equal(t, TypeState, decoded.Type)
	assert.Equal(t, uint64(42), decoded.Tick)
	assert.Equal(t, int64(5000), decoded.ServerTime)
	require.Len(t, decoded.Enemies, 1)
	assert.Equal(t, "zombie-1", decoded.Enemies[0].ID)
	require.Len(t, decoded.Events, 1)
	assert.Equal(t, 23, decoded.Events[0].Amount)
}

func TestEncodeJoinResponseSetsVersion(t *testing.T) {
	encoded, err := EncodeJoinResponse(JoinResponse{ID: "client-1", TickRate: 30})
	require.NoError(t, err)

	var decoded struct {
		Ver      int    `json:"ver"`
		ID       string `json:"id"`
		TickRate int    `json:"tickRate"`
	}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, Version, decoded.Ver)
	assert.Equal(t, "client-1", decoded.ID)
	assert.Equal(t, 30, decoded.TickRate)
}

func TestEncodeCommandRejectCarriesRetry(t *testing.T) {
	encoded, err := EncodeCommandReject(CommandReject{Seq: 7, Reason: "queue_full", Retry: true})
	require.NoError(t, err)

	var decoded struct {
		Type   string `json:"type"`
		Seq    uint64 `json:"seq"`
		Reason string `json:"reason"`
		Retry  bool   `json:"retry"`
	}
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, "commandReject", decoded.Type)
	assert.Equal(t, uint64(7), decoded.Seq)
	assert.Equal(t, "queue_full", decoded.Reason)
	assert.True(t, decoded.Retry)
}

func TestEncodeCommandAckOmitsZeroTick(t *testing.T) {
	encoded, err := EncodeCommandAck(CommandAck{Seq: 3})
	require.NoError(t, err)
	assert.NotContains(t, string(encoded), `"tick"`)

	encoded, err = EncodeCommandAck(CommandAck{Seq: 3, Tick: 11})
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"tick":11`)
}
