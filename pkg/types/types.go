package types

import (
	"time"

	"github.com/google/uuid"
)

// This package was needed to resolve circular dependency between the report
// core and the packages producing and consuming report entries.

// UID identifies a report node or a log record. Two nodes are the same logical
// unit iff their UIDs match.
type UID string

// NewUID returns a new random UID.
func NewUID() UID {
	return UID(uuid.NewString())
}

// String returns the UID as a string.
func (u UID) String() string {
	return string(u)
}

// Timer holds start and end times of a test case execution.
type Timer struct {
	Start time.Time `json:"start,omitempty" yaml:"start,omitempty"`
	End   time.Time `json:"end,omitempty" yaml:"end,omitempty"`
}

// Duration returns the time elapsed between start and end, or zero when the
// timer is not complete.
func (t Timer) Duration() time.Duration {
	if t.Start.IsZero() || t.End.IsZero() {
		return 0
	}
	return t.End.Sub(t.Start)
}

// Equal reports whether both timers denote the same instants.
func (t Timer) Equal(other Timer) bool {
	return t.Start.Equal(other.Start) && t.End.Equal(other.End)
}
