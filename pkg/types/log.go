package types

import (
	"time"

	"github.com/sirupsen/logrus"
)

// LogRecord is a single record in a report node's log. Merges deduplicate
// records by UID.
type LogRecord struct {
	UID     UID            `json:"uid" yaml:"uid"`
	Created time.Time      `json:"created" yaml:"created"`
	Level   logrus.Level   `json:"level" yaml:"level"`
	Logger  string         `json:"logger,omitempty" yaml:"logger,omitempty"`
	Message string         `json:"message" yaml:"message"`
	Fields  map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
	// Trace holds the textual trace of a recorded error or panic.
	Trace string `json:"trace,omitempty" yaml:"trace,omitempty"`
}

// Clone returns a copy of the record that shares nothing mutable with it.
func (r LogRecord) Clone() LogRecord {
	r.Fields = map[string]any(Payload(r.Fields).Clone())
	return r
}

// Equal reports whether both records hold the same data.
func (r LogRecord) Equal(other LogRecord) bool {
	return r.UID == other.UID &&
		r.Created.Equal(other.Created) &&
		r.Level == other.Level &&
		r.Logger == other.Logger &&
		r.Message == other.Message &&
		r.Trace == other.Trace &&
		Payload(r.Fields).Equal(Payload(other.Fields))
}
