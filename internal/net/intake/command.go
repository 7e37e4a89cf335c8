// Package intake validates decoded client messages and stages them into the
// simulation loop as stamped commands.
package intake

import (
	"time"

	"github.com/vide-coded/voxel-warfare/internal/net/proto"
	"github.com/vide-coded/voxel-warfare/internal/sim"
	"github.com/vide-coded/voxel-warfare/stats"
)

// Rejection reasons produced before a command reaches the loop. The loop
// reports its own backpressure reasons on top of these.
const (
	RejectInvalidCommand = "invalid_command"
	RejectUnknownActor   = "unknown_actor"
)

// Queue admits commands into the simulation loop.
type Queue interface {
	Enqueue(cmd sim.Command) (bool, string)
}

// CommandContext carries the collaborators needed to stage a client command.
type CommandContext struct {
	Queue    Queue
	HasActor func(string) bool
	Tick     func() uint64
	Now      func() time.Time
}

// StageClientCommand validates a decoded client message, stamps its origin
// metadata, and enqueues it. The returned reason is empty on success.
func StageClientCommand(ctx CommandContext, actorID string, msg proto.ClientMessage) (sim.Command, bool, string) {
	var zero sim.Command

	command, ok := proto.ClientCommand(msg)
	if !ok {
		return zero, false, RejectInvalidCommand
	}

	switch command.Type {
	case sim.CommandMove:
		if command.Move == nil {
			return zero, false, RejectInvalidCommand
		}
	case sim.CommandSwing:
		if command.Swing == nil || !knownWeapon(command.Swing.Weapon) {
			return zero, false, RejectInvalidCommand
		}
	case sim.CommandFire:
		if command.Fire == nil || !knownWeapon(command.Fire.Weapon) {
			return zero, false, RejectInvalidCommand
		}
	default:
		return zero, false, RejectInvalidCommand
	}

	if ctx.HasActor != nil && !ctx.HasActor(actorID) {
		return zero, false, RejectUnknownActor
	}

	command.ActorID = actorID
	if ctx.Tick != nil {
		command.OriginTick = ctx.Tick()
	}
	if ctx.Now != nil {
		command.IssuedAt = ctx.Now()
	} else {
		command.IssuedAt = time.Now()
	}

	if ctx.Queue == nil {
		return zero, false, sim.RejectQueueFull
	}
	if ok, reason := ctx.Queue.Enqueue(command); !ok {
		return zero, false, reason
	}

	return command, true, ""
}

// knownWeapon accepts the empty name (the player's equipped weapon) and any
// preset from the closed table.
func knownWeapon(name string) bool {
	if name == "" {
		return true
	}
	_, ok := stats.WeaponByName(name)
	return ok
}
