package domain

import "time"

// RunState enumerates the pipeline state machine.
type RunState string

const (
	RunIdle        RunState = "idle"
	RunCollecting  RunState = "collecting"
	RunAggregating RunState = "aggregating"
	RunGenerating  RunState = "generating"
	RunDelivering  RunState = "delivering"
	RunCompleted   RunState = "completed"
	RunAborted     RunState = "aborted"
)

// RunRecord is the per-date ledger entry for one pipeline pass.
type RunRecord struct {
	ID               string
	Date             string
	Status           RunState
	DegradedSections int
	DeliveryFailed   bool
	StartedAt        time.Time
	FinishedAt       time.Time
	Note             string
}
