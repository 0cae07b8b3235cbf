// Package metrics registers Prometheus collectors for the planning app.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SheetSyncTotal counts spreadsheet sync attempts by outcome:
// "synced", "skipped" (status gate) or "failed".
var SheetSyncTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "planning_sheet_sync_total",
	Help: "Spreadsheet sync attempts by outcome.",
}, []string{"outcome"})

// PlanningCopiesTotal counts successful planning copy operations.
var PlanningCopiesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "planning_copies_total",
	Help: "Successful planning copy operations.",
})
