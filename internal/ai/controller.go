// Package ai implements the per-enemy behavior controller: a finite state
// machine stepped once per simulation tick against the shared player
// position. Controllers operate on value copies and never touch the store
// directly; StepAll commits results through world.Update.
package ai

import (
	"github.com/looplab/fsm"

	"github.com/vide-coded/voxel-warfare/internal/geom"
	"github.com/vide-coded/voxel-warfare/internal/world"
)

// Behavior tuning shared by every enemy type. Ratios apply to the per-type
// stats so a bandit's wider detection ring also stretches its leash.
const (
	movementEpsilon  = 0.01
	patrolSpeedRatio = 0.5
	patrolArriveDist = 1.0
	alertDuration    = 1.0
	fleeHealthRatio  = 0.2
	fleeRecoverRatio = 0.5
	fleeSpeedRatio   = 1.5
	fleeStepDistance = 10.0
	fleeLeashRatio   = 2.0
	chaseLeashRatio  = 1.5
	attackSlackRatio = 1.1
)

// PlayerSink receives the attack-damage side effect. Player-facing damage is
// flat; no defense or crit arithmetic applies on this path.
type PlayerSink interface {
	TakeDamage(amount float64)
}

// Controller steps enemies through the behavior state machine. One instance
// serves the whole world; per-enemy transition machines are cached by id.
type Controller struct {
	player   PlayerSink
	machines map[string]*fsm.FSM
}

// NewController constructs a controller delivering attack damage to sink. A
// nil sink is tolerated; attacks then land on nothing.
func NewController(sink PlayerSink) *Controller {
	return &Controller{
		player:   sink,
		machines: make(map[string]*fsm.FSM),
	}
}

// Forget drops the cached machine for a removed enemy.
func (c *Controller) Forget(id string) {
	delete(c.machines, id)
}

// Step advances one enemy by dt seconds and returns the updated copy. Dead
// enemies are returned untouched; only the store's respawn path revives them.
// Timers tick down first, clamped at zero, then the current state's handler
// runs and may fire at most a small number of transitions.
func (c *Controller) Step(enemy world.EnemyState, playerPos geom.Vec3, dt float64) world.EnemyState {
	if enemy.AIState == world.StateDead {
		return enemy
	}

	machine := c.machineFor(enemy.ID, enemy.AIState)
	machine.SetState(string(enemy.AIState))

	enemy.AttackCooldown = clampTimer(enemy.AttackCooldown - dt)
	enemy.AlertTime = clampTimer(enemy.AlertTime - dt)

	switch enemy.AIState {
	case world.StateIdle:
		c.stepIdle(machine, &enemy, playerPos)
	case world.StatePatrol:
		c.stepPatrol(machine, &enemy, playerPos, dt)
	case world.StateAlert:
		c.stepAlert(machine, &enemy, playerPos)
	case world.StateChase:
		c.stepChase(machine, &enemy, playerPos, dt)
	case world.StateAttack:
		c.stepAttack(machine, &enemy, playerPos)
	case world.StateFlee:
		c.stepFlee(machine, &enemy, playerPos, dt)
	}

	enemy.AIState = world.AIState(machine.Current())
	return enemy
}

func (c *Controller) machineFor(id string, state world.AIState) *fsm.FSM {
	if machine, ok := c.machines[id]; ok {
		return machine
	}
	machine := newMachine(state)
	c.machines[id] = machine
	return machine
}

// stepIdle wakes straight into patrol and still runs the detection check so
// an enemy spawned next to the player does not get a free tick.
func (c *Controller) stepIdle(machine *fsm.FSM, enemy *world.EnemyState, playerPos geom.Vec3) {
	fire(machine, eventWake)
	c.detect(machine, enemy, playerPos)
}

// stepPatrol walks the patrol ring at half speed, advancing the waypoint
// index cyclically on arrival, then checks for the player.
func (c *Controller) stepPatrol(machine *fsm.FSM, enemy *world.EnemyState, playerPos geom.Vec3, dt float64) {
	if len(enemy.PatrolPoints) > 0 {
		if enemy.PatrolIndex >= len(enemy.PatrolPoints) {
			enemy.PatrolIndex = 0
		}
		target := enemy.PatrolPoints[enemy.PatrolIndex]
		c.move(enemy, target, patrolSpeedRatio*enemy.Stats.Speed, dt)
		if geom.Distance(enemy.Position, target) < patrolArriveDist {
			enemy.PatrolIndex = (enemy.PatrolIndex + 1) % len(enemy.PatrolPoints)
		}
	}
	c.detect(machine, enemy, playerPos)
}

// detect acquires the player as target when inside the detection ring.
func (c *Controller) detect(machine *fsm.FSM, enemy *world.EnemyState, playerPos geom.Vec3) {
	if geom.Distance(enemy.Position, playerPos) < enemy.Stats.DetectionRange {
		enemy.HasTarget = true
		fire(machine, eventSpot)
	}
}

// stepAlert escalates to chase while the player stays inside detection range.
// The timer is re-armed at the top of the handler every tick, before the
// expiry check, so the stand-down branch cannot fire under this ordering;
// alert holds until escalation.
func (c *Controller) stepAlert(machine *fsm.FSM, enemy *world.EnemyState, playerPos geom.Vec3) {
	enemy.AlertTime = alertDuration

	if geom.Distance(enemy.Position, playerPos) < enemy.Stats.DetectionRange {
		fire(machine, eventEngage)
		return
	}
	if enemy.AlertTime <= 0 {
		fire(machine, eventStandDown)
	}
}

// stepChase pursues at full speed until the target is in attack range, lost
// beyond the leash, or the enemy is hurt badly enough to run.
func (c *Controller) stepChase(machine *fsm.FSM, enemy *world.EnemyState, playerPos geom.Vec3, dt float64) {
	if !enemy.HasTarget {
		fire(machine, eventGiveUp)
		return
	}
	if enemy.Stats.Health < fleeHealthRatio*enemy.Stats.MaxHealth {
		fire(machine, eventPanic)
		return
	}

	dist := geom.Distance(enemy.Position, playerPos)
	if dist <= enemy.Stats.AttackRange {
		fire(machine, eventReach)
		return
	}
	if dist > chaseLeashRatio*enemy.Stats.DetectionRange {
		enemy.HasTarget = false
		fire(machine, eventGiveUp)
		return
	}

	c.move(enemy, playerPos, enemy.Stats.Speed, dt)
}

// stepAttack holds position, faces the player, and swings on cooldown. Range
// is rechecked at swing time: inside the 10% disengage slack a swing whiffs
// silently and still spends its cooldown.
func (c *Controller) stepAttack(machine *fsm.FSM, enemy *world.EnemyState, playerPos geom.Vec3) {
	if !enemy.HasTarget {
		fire(machine, eventGiveUp)
		return
	}

	dist := geom.Distance(enemy.Position, playerPos)
	if dist > attackSlackRatio*enemy.Stats.AttackRange {
		fire(machine, eventDisengage)
		return
	}
	if enemy.Stats.Health < fleeHealthRatio*enemy.Stats.MaxHealth {
		fire(machine, eventPanic)
		return
	}

	enemy.Rotation = playerPos.Sub(enemy.Position).Yaw()

	if enemy.AttackCooldown <= 0 {
		if dist <= enemy.Stats.AttackRange && c.player != nil {
			c.player.TakeDamage(enemy.Stats.Damage)
		}
		attackSpeed := enemy.Stats.AttackSpeed
		if attackSpeed <= 0 {
			attackSpeed = 1
		}
		enemy.AttackCooldown = 1.0 / attackSpeed
	}
}

// stepFlee runs away from the player at boosted speed, steering toward a
// point projected out along the escape direction, until far enough away or
// healthy enough to patrol again.
func (c *Controller) stepFlee(machine *fsm.FSM, enemy *world.EnemyState, playerPos geom.Vec3, dt float64) {
	if !enemy.HasTarget {
		fire(machine, eventGiveUp)
		return
	}

	away := enemy.Position.Sub(playerPos).Normalized()
	target := enemy.Position.Add(away.Scale(fleeStepDistance))
	c.move(enemy, target, fleeSpeedRatio*enemy.Stats.Speed, dt)

	dist := geom.Distance(enemy.Position, playerPos)
	if dist > fleeLeashRatio*enemy.Stats.DetectionRange || enemy.Stats.Health > fleeRecoverRatio*enemy.Stats.MaxHealth {
		fire(machine, eventGiveUp)
	}
}

// move advances toward target at the given speed and faces the travel
// direction. Rotation only updates when the remaining offset is larger than
// the movement epsilon, so an enemy sitting on its target keeps its heading.
func (c *Controller) move(enemy *world.EnemyState, target geom.Vec3, speed, dt float64) {
	offset := target.Sub(enemy.Position)
	dir := offset.Normalized()
	enemy.Position = enemy.Position.Add(dir.Scale(speed * dt))
	if offset.Length() > movementEpsilon {
		enemy.Rotation = dir.Yaw()
	}
}

func clampTimer(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// StepAll advances every enemy in sorted id order and commits the results.
// Sorted iteration keeps identically seeded runs identical; dead enemies are
// skipped entirely so nothing can write to a record awaiting respawn.
func (c *Controller) StepAll(w *world.World, playerPos geom.Vec3, dt float64) {
	for _, id := range w.IDs() {
		enemy, ok := w.Get(id)
		if !ok || enemy.AIState == world.StateDead {
			continue
		}
		next := c.Step(enemy, playerPos, dt)
		w.Update(id, func(e *world.EnemyState) {
			e.Position = next.Position
			e.Rotation = next.Rotation
			e.AIState = next.AIState
			e.HasTarget = next.HasTarget
			e.PatrolIndex = next.PatrolIndex
			e.AttackCooldown = next.AttackCooldown
			e.AlertTime = next.AlertTime
		})
	}
}
