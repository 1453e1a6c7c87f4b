package domain

import (
	"errors"
	"fmt"
)

// ErrAggregationEmpty aborts a run when every collector came back empty.
var ErrAggregationEmpty = errors.New("aggregation input is empty")

// ErrRunInProgress rejects a trigger while a pass is already executing.
var ErrRunInProgress = errors.New("a run is already in progress")

// CollectorError marks the total failure of a single source. It is fatal for
// that source only; the run proceeds unless every source fails.
type CollectorError struct {
	Source string
	Err    error
}

func (e *CollectorError) Error() string {
	return fmt.Sprintf("collector %s: %v", e.Source, e.Err)
}

func (e *CollectorError) Unwrap() error {
	return e.Err
}

// DeliveryError marks a failed email submission. Generation and delivery are
// decoupled: the run still counts as completed.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
