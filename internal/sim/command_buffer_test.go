package sim

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vide-coded/voxel-warfare/internal/telemetry"
)

func TestCommandBufferDrainsInArrivalOrder(t *testing.T) {
	buffer := NewCommandBuffer(4, nil)

	require.True(t, buffer.Push(Command{ActorID: "a", Type: CommandMove}))
	require.True(t, buffer.Push(Command{ActorID: "b", Type: CommandSwing}))
	require.True(t, buffer.Push(Command{ActorID: "c", Type: CommandFire}))
	require.Equal(t, 3, buffer.Len())

	drained := buffer.Drain()
	require.Len(t, drained, 3)
	require.Equal(t, "a", drained[0].ActorID)
	require.Equal(t, "b", drained[1].ActorID)
	require.Equal(t, "c", drained[2].ActorID)
	require.Zero(t, buffer.Len())
	require.Nil(t, buffer.Drain())
}

func TestCommandBufferWrapsAroundAfterDrain(t *testing.T) {
	buffer := NewCommandBuffer(2, nil)

	require.True(t, buffer.Push(Command{ActorID: "a"}))
	require.True(t, buffer.Push(Command{ActorID: "b"}))
	buffer.Drain()

	require.True(t, buffer.Push(Command{ActorID: "c"}))
	require.True(t, buffer.Push(Command{ActorID: "d"}))

	drained := buffer.Drain()
	require.Len(t, drained, 2)
	require.Equal(t, "c", drained[0].ActorID)
	require.Equal(t, "d", drained[1].ActorID)
}

func TestCommandBufferRejectsWhenFull(t *testing.T) {
	registry := telemetry.NewRegistry()
	buffer := NewCommandBuffer(2, registry)

	require.True(t, buffer.Push(Command{ActorID: "a"}))
	require.True(t, buffer.Push(Command{ActorID: "b"}))
	require.False(t, buffer.Push(Command{ActorID: "c"}))

	require.Equal(t, uint64(1), registry.Load(metricCommandQueueDropped))
	require.Equal(t, uint64(2), registry.Load(metricCommandQueueDepth))

	buffer.Drain()
	require.Zero(t, registry.Load(metricCommandQueueDepth))
}

func TestCommandBufferMinimumCapacity(t *testing.T) {
	buffer := NewCommandBuffer(0, nil)
	require.Equal(t, 1, buffer.Capacity())
}

func TestNilCommandBufferIsSafe(t *testing.T) {
	var buffer *CommandBuffer

	require.False(t, buffer.Push(Command{}))
	require.Nil(t, buffer.Drain())
	require.Zero(t, buffer.Len())
	require.Zero(t, buffer.Capacity())
}
