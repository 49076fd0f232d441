package domain

import internaldomain "github.com/goliatone/go-press/internal/domain"

// Status represents lifecycle states for publishable entities.
type Status = internaldomain.Status

const (
	// StatusDraft indicates a post still under preparation.
	StatusDraft = internaldomain.StatusDraft
	// StatusPublished identifies a post available to readers.
	StatusPublished = internaldomain.StatusPublished
	// StatusArchived marks a post that is retained for history but not publicly visible.
	StatusArchived = internaldomain.StatusArchived
	// StatusScheduled marks a post that has a future publish time configured.
	StatusScheduled = internaldomain.StatusScheduled
)

// NormalizeStatus coerces arbitrary status strings into a known representation.
var NormalizeStatus = internaldomain.NormalizeStatus

// IsValidStatus reports whether the supplied status is a known lifecycle state.
var IsValidStatus = internaldomain.IsValidStatus

// EffectiveStatus resolves the externally visible state of a record at the
// supplied instant.
var EffectiveStatus = internaldomain.EffectiveStatus
