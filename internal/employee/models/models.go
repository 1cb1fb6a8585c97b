package models

import "time"

// Status is the onboarding lifecycle of an employee. Transitions are owned by
// the pipeline service; steps only produce derived artifacts and never touch it.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusRunning   Status = "RUNNING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Employee is the business record entering the pipeline.
type Employee struct {
	ID         int64
	Name       string
	Email      string
	Role       string
	Department string
	StartDate  time.Time
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
