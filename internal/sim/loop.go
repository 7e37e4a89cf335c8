package sim

import (
	"sync"
	"time"

	"github.com/vide-coded/voxel-warfare/internal/telemetry"
	"github.com/vide-coded/voxel-warfare/logging"
)

// Command rejection reasons reported by Enqueue.
const (
	// RejectThrottled indicates a command was dropped by per-actor queue
	// throttling.
	RejectThrottled = "actor_throttled"
	// RejectQueueFull indicates the global command buffer is saturated.
	RejectQueueFull = "queue_full"
)

// DefaultTickRate is the simulation frequency when none is configured.
const DefaultTickRate = 30

// LoopConfig tunes command staging and the fixed-timestep runner.
type LoopConfig struct {
	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
	PerActorLimit   int
	WarningStep     int
}

// DefaultLoopConfig runs 30 ticks per second with a catchup ceiling of four
// ticks and a 256-command buffer.
func DefaultLoopConfig() LoopConfig {
	return LoopConfig{
		TickRate:        DefaultTickRate,
		CatchupMaxTicks: 4,
		CommandCapacity: 256,
		PerActorLimit:   32,
		WarningStep:     64,
	}
}

func (c LoopConfig) normalized() LoopConfig {
	if c.TickRate <= 0 {
		c.TickRate = DefaultTickRate
	}
	if c.CatchupMaxTicks < 1 {
		c.CatchupMaxTicks = 1
	}
	if c.CommandCapacity < 1 {
		c.CommandCapacity = 256
	}
	return c
}

// StepResult describes one completed tick for AfterStep consumers.
type StepResult struct {
	Tick         uint64
	Now          time.Time
	Delta        float64
	Duration     time.Duration
	Budget       time.Duration
	ClampedDelta bool
	Snapshot     Snapshot
	Commands     []Command
}

// LoopHooks are optional callbacks invoked by the loop. All of them run on
// the loop goroutine.
type LoopHooks struct {
	NextTick       func() uint64
	AfterStep      func(StepResult)
	OnCommandDrop  func(reason string, cmd Command)
	OnQueueWarning func(length int)
}

// Loop serializes command intake against the fixed-timestep engine runner.
// Enqueue is safe from any goroutine; everything else belongs to the loop
// goroutine.
type Loop struct {
	core   Core
	buffer *CommandBuffer
	hooks  LoopHooks
	config LoopConfig
	logger telemetry.Logger
	clock  logging.Clock

	queueMu       sync.Mutex
	perActorCount map[string]int
	dropCounts    map[string]uint64

	tick uint64
}

// NewLoop wraps the engine core with a bounded command queue and runner.
func NewLoop(core Core, cfg LoopConfig, hooks LoopHooks) *Loop {
	if core == nil {
		return nil
	}
	deps := core.Deps()
	cfg = cfg.normalized()

	logger := deps.Logger
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	clock := deps.Clock
	if clock == nil {
		clock = logging.ClockFunc(time.Now)
	}

	return &Loop{
		core:          core,
		buffer:        NewCommandBuffer(cfg.CommandCapacity, deps.Metrics),
		hooks:         hooks,
		config:        cfg,
		logger:        logger,
		clock:         clock,
		perActorCount: make(map[string]int),
		dropCounts:    make(map[string]uint64),
	}
}

// Pending reports the number of staged commands.
func (l *Loop) Pending() int {
	if l == nil {
		return 0
	}
	return l.buffer.Len()
}

// Snapshot delegates to the underlying engine.
func (l *Loop) Snapshot() Snapshot {
	if l == nil {
		return Snapshot{}
	}
	return l.core.Snapshot()
}

// Enqueue stages a command for the next tick, enforcing the per-actor
// throttle and the global buffer capacity. It reports whether the command
// was accepted and the rejection reason when it was not.
func (l *Loop) Enqueue(cmd Command) (bool, string) {
	if l == nil {
		return false, RejectQueueFull
	}

	l.queueMu.Lock()
	throttled := l.config.PerActorLimit > 0 && cmd.ActorID != "" &&
		l.perActorCount[cmd.ActorID] >= l.config.PerActorLimit
	if throttled {
		count := l.bumpDropLocked(cmd.ActorID)
		l.queueMu.Unlock()
		l.reportDrop(RejectThrottled, cmd, count)
		return false, RejectThrottled
	}
	if !l.buffer.Push(cmd) {
		count := l.bumpDropLocked(cmd.ActorID)
		l.queueMu.Unlock()
		l.reportDrop(RejectQueueFull, cmd, count)
		return false, RejectQueueFull
	}
	if l.config.PerActorLimit > 0 && cmd.ActorID != "" {
		l.perActorCount[cmd.ActorID]++
	}
	length := l.buffer.Len()
	l.queueMu.Unlock()

	if l.config.WarningStep > 0 && length >= l.config.WarningStep &&
		length%l.config.WarningStep == 0 && l.hooks.OnQueueWarning != nil {
		l.hooks.OnQueueWarning(length)
	}
	return true, ""
}

// Advance drains the staged commands and executes a single simulation step.
func (l *Loop) Advance(ctx TickContext) StepResult {
	if l == nil {
		return StepResult{}
	}
	commands := l.drainCommands()
	_ = l.core.Apply(commands)
	l.core.Step(ctx)
	return StepResult{
		Tick:     ctx.Tick,
		Now:      ctx.Now,
		Delta:    ctx.Delta,
		Snapshot: l.core.Snapshot(),
		Commands: commands,
	}
}

// Run drives the fixed-timestep loop until the stop channel closes. Delta
// never exceeds CatchupMaxTicks worth of budget so a stalled host cannot
// teleport the simulation.
func (l *Loop) Run(stop <-chan struct{}) {
	if l == nil {
		return
	}

	budget := time.Second / time.Duration(l.config.TickRate)
	budgetSeconds := budget.Seconds()
	maxDelta := budgetSeconds * float64(l.config.CatchupMaxTicks)

	ticker := time.NewTicker(budget)
	defer ticker.Stop()

	last := l.clock.Now()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			now := l.clock.Now()
			delta := now.Sub(last).Seconds()
			clamped := false
			if delta <= 0 {
				delta = budgetSeconds
			} else if delta > maxDelta {
				delta = maxDelta
				clamped = true
			}
			last = now

			tick := l.nextTick()
			start := l.clock.Now()
			result := l.Advance(TickContext{Tick: tick, Now: now, Delta: delta})
			result.Duration = l.clock.Now().Sub(start)
			result.Budget = budget
			result.ClampedDelta = clamped

			if l.hooks.AfterStep != nil {
				l.hooks.AfterStep(result)
			}
		}
	}
}

func (l *Loop) nextTick() uint64 {
	if l.hooks.NextTick != nil {
		return l.hooks.NextTick()
	}
	l.tick++
	return l.tick
}

// drainCommands empties the buffer and resets the per-actor throttle
// window.
func (l *Loop) drainCommands() []Command {
	l.queueMu.Lock()
	defer l.queueMu.Unlock()
	commands := l.buffer.Drain()
	if len(l.perActorCount) > 0 {
		l.perActorCount = make(map[string]int)
	}
	return commands
}

func (l *Loop) bumpDropLocked(actorID string) uint64 {
	if actorID == "" {
		return 0
	}
	count := l.dropCounts[actorID] + 1
	l.dropCounts[actorID] = count
	return count
}

// reportDrop notifies the drop hook and logs at power-of-two drop counts so
// a misbehaving client cannot flood the log.
func (l *Loop) reportDrop(reason string, cmd Command, count uint64) {
	if l.hooks.OnCommandDrop != nil {
		l.hooks.OnCommandDrop(reason, cmd)
	}
	if count > 0 && count&(count-1) == 0 {
		l.logger.Printf("[backpressure] dropping command actor=%s type=%s reason=%s count=%d",
			cmd.ActorID, cmd.Type, reason, count)
	}
}
