package logging_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vide-coded/voxel-warfare/logging"
	"github.com/vide-coded/voxel-warfare/logging/sinks"
)

func newMemoryRouter(t *testing.T, cfg logging.Config) (*logging.Router, *sinks.Memory) {
	t.Helper()
	memory := sinks.NewMemory()
	router, err := logging.NewRouter(nil, cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})
	require.NoError(t, err)
	return router, memory
}

func closeRouter(t *testing.T, router *logging.Router) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, router.Close(ctx))
}

func TestRouterDeliversToSink(t *testing.T) {
	router, memory := newMemoryRouter(t, logging.DefaultConfig())

	router.Publish(context.Background(), logging.Event{
		Type:  "combat.damage",
		Tick:  7,
		Actor: logging.EntityRef{ID: "player", Kind: logging.EntityKindPlayer},
	})
	closeRouter(t, router)

	events := memory.Events()
	require.Len(t, events, 1)
	assert.Equal(t, logging.EventType("combat.damage"), events[0].Type)
	assert.Equal(t, uint64(7), events[0].Tick)
	assert.False(t, events[0].Time.IsZero(), "router stamps event time")

	stats := router.Stats()
	assert.Equal(t, uint64(1), stats.EventsTotal)
	assert.Equal(t, uint64(0), stats.DroppedTotal)
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.MinimumSeverity = logging.SeverityWarn
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "combat.damage", Severity: logging.SeverityInfo})
	router.Publish(context.Background(), logging.Event{Type: "simulation.tick_budget_overrun", Severity: logging.SeverityWarn})
	closeRouter(t, router)

	events := memory.Events()
	require.Len(t, events, 1)
	assert.Equal(t, logging.EventType("simulation.tick_budget_overrun"), events[0].Type)
}

func TestRouterIgnoresUntypedEvents(t *testing.T) {
	router, memory := newMemoryRouter(t, logging.DefaultConfig())

	router.Publish(context.Background(), logging.Event{Tick: 3})
	closeRouter(t, router)

	assert.Empty(t, memory.Events())
}

func TestRouterStampsConfiguredFields(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.Fields = map[string]any{"instance": "test-1"}
	router, memory := newMemoryRouter(t, cfg)

	router.Publish(context.Background(), logging.Event{Type: "lifecycle.player_joined"})
	closeRouter(t, router)

	events := memory.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "test-1", events[0].Extra["instance"])
}

func TestWithFieldsDoesNotOverrideEventValues(t *testing.T) {
	var captured logging.Event
	pub := logging.WithFields(logging.PublisherFunc(func(_ context.Context, e logging.Event) {
		captured = e
	}), map[string]any{"instance": "wrapped", "region": "eu"})

	pub.Publish(context.Background(), logging.Event{
		Type:  "combat.defeat",
		Extra: map[string]any{"instance": "explicit"},
	})

	assert.Equal(t, "explicit", captured.Extra["instance"])
	assert.Equal(t, "eu", captured.Extra["region"])
}

func TestRouterCountsDropsWhenSaturated(t *testing.T) {
	cfg := logging.DefaultConfig()
	cfg.BufferSize = 1
	// Stall the dispatch goroutine inside its timestamp lookup so the queue
	// cannot drain while we publish.
	gate := make(chan struct{})
	clock := logging.ClockFunc(func() time.Time {
		<-gate
		return time.Now()
	})
	memory := sinks.NewMemory()
	router, err := logging.NewRouter(clock, cfg, []logging.NamedSink{{Name: "memory", Sink: memory}})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		router.Publish(context.Background(), logging.Event{Type: "combat.damage", Tick: uint64(i)})
	}
	assert.Greater(t, router.Stats().DroppedTotal, uint64(0), "saturated queue must drop instead of blocking")

	close(gate)
	closeRouter(t, router)
}
