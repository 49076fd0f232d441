package domain

// Status represents lifecycle states for posts and other publishable entities
type Status string

const (
	// StatusDraft indicates a post still under preparation
	StatusDraft Status = "draft"
	// StatusPublished identifies a post available to readers
	StatusPublished Status = "published"
	// StatusArchived marks a post that is retained for history but not publicly visible
	StatusArchived Status = "archived"
	// StatusScheduled marks a post that has a future publish time configured
	StatusScheduled Status = "scheduled"
)
