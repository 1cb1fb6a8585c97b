// Package assistant wraps an optional OpenAI-compatible advisory service.
//
// Every method degrades to a deterministic local fallback when the service is
// unconfigured, unreachable, or returns a malformed response. Nothing in this
// package ever surfaces an error to the pipeline: advisory unavailability is
// not a pipeline failure.
package assistant

import "context"

// Snapshot is the redact-before-send employee field set supplied to Normalize.
type Snapshot map[string]string

// NormalizeResult is the advisory outcome of field normalization. Corrections
// are patch-operation objects; warnings are free-form notes. Both lists are
// capped at 20 entries.
type NormalizeResult struct {
	Corrections []any `json:"corrections"`
	Warnings    []any `json:"warnings"`
}

// MeetingRequest describes the slot the scheduler wants proposed.
type MeetingRequest struct {
	Name      string
	Email     string
	StartDate string
	Role      string
	TimeZone  string
}

// MeetingProposal is a well-formed one-hour window inside business hours.
// Location and Description may be empty; the caller supplies defaults.
type MeetingProposal struct {
	StartDateTime string
	StartTimeZone string
	EndDateTime   string
	EndTimeZone   string
	Location      string
	Description   string
}

// Assistant is the advisory contract consulted by pipeline steps.
type Assistant interface {
	// Configured reports whether real calls will be attempted. Steps use it
	// to skip the proposal path entirely when unconfigured.
	Configured() bool
	// Normalize validates and normalizes an employee snapshot. Never fails;
	// returns FallbackNormalize() when the service cannot be consulted.
	Normalize(ctx context.Context, snapshot Snapshot) NormalizeResult
	// ProposeMeeting asks for an orientation slot. The second return is false
	// when no well-formed proposal was obtained and the caller must fall back.
	ProposeMeeting(ctx context.Context, req MeetingRequest) (MeetingProposal, bool)
	// DraftWelcomeMessage returns welcome copy, or a deterministic template.
	DraftWelcomeMessage(ctx context.Context, name, role, startDate string) string
}

const maxAdvisoryItems = 20

// FallbackNormalize is the deterministic result used whenever the assistant
// cannot be consulted.
func FallbackNormalize() NormalizeResult {
	return NormalizeResult{
		Corrections: []any{},
		Warnings:    []any{"assistant unavailable"},
	}
}

// coerceList forces an arbitrary decoded value into a bounded list, dropping
// anything that is not a JSON array.
func coerceList(v any) []any {
	list, ok := v.([]any)
	if !ok {
		return []any{}
	}
	if len(list) > maxAdvisoryItems {
		list = list[:maxAdvisoryItems]
	}
	return list
}
