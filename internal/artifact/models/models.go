package models

import "time"

// Derived artifacts: one kind per pipeline step, at most one active artifact
// per employee (enforced by the stores), created once and never updated.

// Account is the credential artifact produced by the provision step. Only the
// bcrypt hash of the temporary password is persisted; the plaintext never
// leaves the provisioning call.
type Account struct {
	ID           int64
	EmployeeID   int64
	Username     string
	PasswordHash string
	Permissions  []string
	CreatedAt    time.Time
}

// EventTime is one side of a calendar window.
type EventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// EventAttendee mirrors the calendar payload attendee shape.
type EventAttendee struct {
	Email string `json:"email"`
}

// EventPayload is the scheduled meeting as stored and returned to callers.
type EventPayload struct {
	Summary     string          `json:"summary"`
	Start       EventTime       `json:"start"`
	End         EventTime       `json:"end"`
	Attendees   []EventAttendee `json:"attendees"`
	Location    string          `json:"location"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Simulate    bool            `json:"simulate"`
}

// OrientationEvent is the scheduling artifact produced by the schedule step.
type OrientationEvent struct {
	ID         int64
	EmployeeID int64
	Event      EventPayload
	CreatedAt  time.Time
}

// SentResult records how a notification was dispatched.
type SentResult struct {
	Channel string `json:"channel"`
	OK      bool   `json:"ok"`
}

// Notification is the messaging artifact produced by the notify step.
type Notification struct {
	ID         int64
	EmployeeID int64
	Channel    string
	Message    string
	Sent       SentResult
	CreatedAt  time.Time
}
