// Package simulation declares loop health events.
package simulation

import (
	"context"

	"github.com/vide-coded/voxel-warfare/logging"
)

// EventTickBudgetOverrun is emitted when one simulation step exceeds the
// tick interval.
const EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"

// TickBudgetOverrunPayload captures timing details for a tick budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
}

// TickBudgetOverrun publishes a warning when a step ran longer than the tick.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySystem,
		Payload:  payload,
	})
}
