package report

import (
	"time"

	"github.com/pkg/errors"

	"github.com/kong/kubernetes-testreport/pkg/types"
)

// Report is a leaf report node storing opaque entries.
//
// Reports of category CategoryTestCase adopt the entries and timer of the
// report merged into them, every other report only merges logs.
type Report struct {
	base
	entries []types.Entry
	timer   types.Timer
}

var _ Node = (*Report)(nil)

// NewReport creates a new leaf report.
func NewReport(name string, opts ...Option) (*Report, error) {
	o := newOptions(CategoryReport, opts)
	if len(o.children) > 0 {
		return nil, errors.Wrapf(ErrInvalidOption, "leaf report %q can't hold child reports", name)
	}
	r := &Report{
		base:  newBase(name, o),
		timer: o.timer,
	}
	r.Extend(o.entries...)
	return r, nil
}

// NewTestCase creates a new leaf report of CategoryTestCase.
func NewTestCase(name string, opts ...Option) (*Report, error) {
	return NewReport(name, append([]Option{WithCategory(CategoryTestCase)}, opts...)...)
}

func (r *Report) String() string {
	return describe("Report", &r.base)
}

// Entries returns the report entries. The returned slice must not be modified.
func (r *Report) Entries() []types.Entry {
	return r.entries
}

// Len returns the number of entries.
func (r *Report) Len() int {
	return len(r.entries)
}

// Append appends an entry to the report.
func (r *Report) Append(e types.Entry) {
	r.entries = append(r.entries, e)
}

// Extend appends entries to the report.
func (r *Report) Extend(entries ...types.Entry) {
	r.entries = append(r.entries, entries...)
}

// Timer returns the report's timer.
func (r *Report) Timer() types.Timer {
	return r.timer
}

// StartTimer records the current time as the report's start.
func (r *Report) StartTimer() {
	r.timer.Start = time.Now().UTC()
}

// StopTimer records the current time as the report's end.
func (r *Report) StopTimer() {
	r.timer.End = time.Now().UTC()
}

// Status returns error if an error was logged, failed if any entry failed,
// passed if there are entries and unknown otherwise.
func (r *Report) Status() types.Status {
	if r.hasErrorLogs() {
		return types.StatusError
	}
	if len(r.entries) == 0 {
		return types.StatusUnknown
	}
	for _, e := range r.entries {
		if !e.Passed {
			return types.StatusFailed
		}
	}
	return types.StatusPassed
}

// Counts counts the report as a single test.
func (r *Report) Counts() types.Counts {
	var c types.Counts
	c.Add(r.Status())
	return c
}

// Merge merges the logs of other into r. Test case reports also take over
// other's entries and timer.
func (r *Report) Merge(other Node, strict bool) error {
	if err := r.checkMerge(other, strict); err != nil {
		return err
	}
	r.merge(other, strict)
	return nil
}

func (r *Report) checkMerge(other Node, _ bool) error {
	return checkNode(r, other)
}

func (r *Report) merge(other Node, _ bool) {
	o := other.(*Report)
	if r.category == CategoryTestCase {
		r.entries = cloneEntries(o.entries)
		if !o.timer.Start.IsZero() {
			r.timer = o.timer
		}
	}
	r.mergeLogs(&o.base)
}

// Filter returns a copy of the report keeping only entries matched by at
// least one of the predicates.
func (r *Report) Filter(preds ...Predicate) *Report {
	c := r.clone()
	c.filter(preds)
	return c
}

// FilterInPlace is Filter without copying.
func (r *Report) FilterInPlace(preds ...Predicate) {
	r.filter(preds)
}

func (r *Report) filter(preds []Predicate) {
	var kept []types.Entry
	for i := range r.entries {
		e := r.entries[i]
		if matchAny(preds, Item{Entry: &e}) {
			kept = append(kept, r.entries[i])
		}
	}
	r.entries = kept
}

func (r *Report) flattenedEntries(depth int) []FlatItem {
	out := make([]FlatItem, 0, len(r.entries))
	for i := range r.entries {
		out = append(out, FlatItem{Depth: depth, Item: Item{Entry: &r.entries[i]}})
	}
	return out
}

// Clone returns a deep copy of the report.
func (r *Report) Clone() Node {
	return r.clone()
}

func (r *Report) clone() *Report {
	return &Report{
		base:    r.base.clone(),
		entries: cloneEntries(r.entries),
		timer:   r.timer,
	}
}

// Equal reports whether other is a report with the same name, description,
// uid, category, entries and logs.
func (r *Report) Equal(other Node) bool {
	o, ok := other.(*Report)
	if !ok || o == nil {
		return false
	}
	if !r.base.equal(&o.base) || len(r.entries) != len(o.entries) {
		return false
	}
	for i := range r.entries {
		if !entriesEqual(r.entries[i], o.entries[i]) {
			return false
		}
	}
	return true
}

func cloneEntries(entries []types.Entry) []types.Entry {
	if entries == nil {
		return nil
	}
	out := make([]types.Entry, len(entries))
	for i := range entries {
		out[i] = entries[i].Clone()
	}
	return out
}

func entriesEqual(a, b types.Entry) bool {
	if a.Type != b.Type || a.Description != b.Description || a.Passed != b.Passed {
		return false
	}
	return a.Payload.Equal(b.Payload)
}
