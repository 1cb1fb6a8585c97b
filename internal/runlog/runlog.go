// Package runlog defines the immutable audit record every pipeline step
// persists, plus the per-execution trace recorder that feeds it.
package runlog

import "time"

// EntryStatus is the final status of one step execution.
type EntryStatus string

const (
	StatusOK    EntryStatus = "OK"
	StatusWarn  EntryStatus = "WARN"
	StatusError EntryStatus = "ERROR"
)

// Observation is one ordered trace item recorded during a step execution.
type Observation struct {
	Description string `json:"description"`
	Data        any    `json:"data,omitempty"`
}

// Entry is the audit record of exactly one step execution. Immutable once
// persisted; IDs are assigned monotonically by the store.
type Entry struct {
	ID           int64
	EmployeeID   int64
	Step         string
	Input        map[string]any
	Observations []Observation
	Output       map[string]any
	Status       EntryStatus
	CreatedAt    time.Time
}

// Recorder accumulates observations for a single step execution. A fresh
// Recorder is constructed per execution, so no trace state can leak between
// runs of the same step value. Not safe for concurrent use; a step execution
// is single-threaded.
type Recorder struct {
	observations []Observation
}

// NewRecorder returns an empty trace recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record appends one observation in execution order.
func (r *Recorder) Record(description string, data any) {
	r.observations = append(r.observations, Observation{Description: description, Data: data})
}

// Observations returns the recorded trace in insertion order.
func (r *Recorder) Observations() []Observation {
	return r.observations
}
