package core

import (
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific identifier types
type (
	// RunID identifies one batch computation run
	RunID ID
	// WaveID identifies one fielding round of the tracking study
	WaveID string
	// QuestionCode identifies a tracked survey question
	QuestionCode string
	// SegmentName identifies a sub-population banner break
	SegmentName string
)

// NewRunID creates a new run identifier
func NewRunID() RunID {
	return RunID(NewID())
}

func (w WaveID) String() string       { return string(w) }
func (q QuestionCode) String() string { return string(q) }
func (s SegmentName) String() string  { return string(s) }

// NormalizeKey canonicalizes a free-form label into a lookup key: lower-case
// with runs of non-alphanumeric characters collapsed to a single underscore.
// "Very Satisfied (Top)" and "very_satisfied_top" resolve to the same key.
func NormalizeKey(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			if b.Len() > 0 {
				pendingSep = true
			}
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
