package sim

import (
	"sync"

	"github.com/vide-coded/voxel-warfare/internal/telemetry"
)

const (
	metricCommandQueueDepth   = "sim_command_queue_depth"
	metricCommandQueueDropped = "sim_command_queue_dropped_total"
)

// CommandBuffer stages commands in a bounded ring between client goroutines
// and the tick loop. Push never blocks; a full ring rejects the command and
// counts the drop.
type CommandBuffer struct {
	mu      sync.Mutex
	ring    []Command
	head    int
	count   int
	metrics telemetry.Metrics
}

// NewCommandBuffer constructs a ring holding at most capacity commands.
func NewCommandBuffer(capacity int, metrics telemetry.Metrics) *CommandBuffer {
	if capacity < 1 {
		capacity = 1
	}
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	return &CommandBuffer{
		ring:    make([]Command, capacity),
		metrics: metrics,
	}
}

// Capacity reports the fixed ring size.
func (b *CommandBuffer) Capacity() int {
	if b == nil {
		return 0
	}
	return len(b.ring)
}

// Len reports how many commands are currently staged.
func (b *CommandBuffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Push stages a command, returning false when the ring is full.
func (b *CommandBuffer) Push(cmd Command) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == len(b.ring) {
		b.metrics.Add(metricCommandQueueDropped, 1)
		return false
	}
	b.ring[(b.head+b.count)%len(b.ring)] = cmd
	b.count++
	b.metrics.Store(metricCommandQueueDepth, uint64(b.count))
	return true
}

// Drain returns every staged command in arrival order and empties the ring.
func (b *CommandBuffer) Drain() []Command {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return nil
	}
	drained := make([]Command, b.count)
	for i := range drained {
		drained[i] = b.ring[(b.head+i)%len(b.ring)]
	}
	b.head = 0
	b.count = 0
	b.metrics.Store(metricCommandQueueDepth, 0)
	return drained
}
