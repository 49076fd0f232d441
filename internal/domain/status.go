package domain

import (
	"strings"
	"time"
)

// NormalizeStatus coerces arbitrary status strings into a known representation.
// Empty input defaults to draft; unknown values pass through trimmed and
// lowercased so callers can surface them in validation errors.
func NormalizeStatus(input string) Status {
	if strings.TrimSpace(input) == "" {
		return StatusDraft
	}
	return Status(strings.ToLower(strings.TrimSpace(input)))
}

// IsValidStatus reports whether the supplied status is one of the lifecycle
// states the engine understands.
func IsValidStatus(status Status) bool {
	switch status {
	case StatusDraft, StatusPublished, StatusArchived, StatusScheduled:
		return true
	default:
		return false
	}
}

// EffectiveStatus resolves the externally visible state of a record at the
// supplied instant. A scheduled record whose publish time has passed reports
// as published even before the scheduler worker flips the stored value.
func EffectiveStatus(status Status, publishAt *time.Time, now time.Time) Status {
	if status != StatusScheduled {
		return status
	}
	if publishAt != nil && !publishAt.After(now) {
		return StatusPublished
	}
	return StatusScheduled
}
