package ai

import (
	"context"

	"github.com/looplab/fsm"

	"github.com/vide-coded/voxel-warfare/internal/world"
)

// Transition events. Handlers fire these against the per-enemy machine so an
// illegal jump (attack straight from idle, leaving dead without a revive) can
// never be committed.
const (
	eventWake      = "wake"
	eventSpot      = "spot"
	eventEngage    = "engage"
	eventStandDown = "standdown"
	eventReach     = "reach"
	eventDisengage = "disengage"
	eventPanic     = "panic"
	eventGiveUp    = "giveup"
	eventDie       = "die"
	eventRevive    = "revive"
)

// newMachine declares the full legal transition table. The die and revive
// edges are driven by the store (death inside ApplyDamage, revive inside
// Respawn) and reach the machine through the SetState resync at the top of
// each step rather than as fired events.
func newMachine(initial world.AIState) *fsm.FSM {
	living := []string{
		string(world.StateIdle),
		string(world.StatePatrol),
		string(world.StateAlert),
		string(world.StateChase),
		string(world.StateAttack),
		string(world.StateFlee),
	}
	return fsm.NewFSM(
		string(initial),
		fsm.Events{
			{Name: eventWake, Src: []string{string(world.StateIdle)}, Dst: string(world.StatePatrol)},
			{Name: eventSpot, Src: []string{string(world.StateIdle), string(world.StatePatrol)}, Dst: string(world.StateAlert)},
			{Name: eventEngage, Src: []string{string(world.StateAlert)}, Dst: string(world.StateChase)},
			{Name: eventStandDown, Src: []string{string(world.StateAlert)}, Dst: string(world.StatePatrol)},
			{Name: eventReach, Src: []string{string(world.StateChase)}, Dst: string(world.StateAttack)},
			{Name: eventDisengage, Src: []string{string(world.StateAttack)}, Dst: string(world.StateChase)},
			{Name: eventPanic, Src: []string{string(world.StateChase), string(world.StateAttack)}, Dst: string(world.StateFlee)},
			{Name: eventGiveUp, Src: []string{string(world.StateChase), string(world.StateAttack), string(world.StateFlee)}, Dst: string(world.StatePatrol)},
			{Name: eventDie, Src: living, Dst: string(world.StateDead)},
			{Name: eventRevive, Src: []string{string(world.StateDead)}, Dst: string(world.StatePatrol)},
		},
		fsm.Callbacks{},
	)
}

// fire advances the machine. The tables above make every handler-issued event
// legal from its source state, so errors are not a signal worth surfacing; an
// unreachable transition simply leaves the state put.
func fire(machine *fsm.FSM, event string) {
	_ = machine.Event(context.Background(), event)
}
