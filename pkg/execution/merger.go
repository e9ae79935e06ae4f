package execution

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/kong/kubernetes-testreport/pkg/log"
	"github.com/kong/kubernetes-testreport/pkg/report"
	"github.com/kong/kubernetes-testreport/pkg/types"
)

// Merger holds a skeleton report and merges partial reports into it, one
// at a time. It is safe for concurrent use.
type Merger struct {
	mu     sync.Mutex
	tree   *report.Group
	strict bool
	logger logr.Logger
	merged int
}

// NewMerger creates a merger accumulating partial reports into skeleton.
func NewMerger(skeleton *report.Group, opts ...OptMerger) (*Merger, error) {
	if skeleton == nil {
		return nil, ErrNilSkeletonProvided
	}

	m := &Merger{
		tree:   skeleton,
		strict: true,
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Merge merges a single partial report into the accumulated tree. A failed
// merge leaves the accumulated tree untouched.
func (m *Merger) Merge(partial *report.Group) error {
	if partial == nil {
		return errors.Wrap(report.ErrNilNode, "merging partial report")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var skipped []types.UID
	if !m.strict {
		skipped = m.tree.UnknownChildren(partial)
	}
	if err := m.tree.Merge(partial, m.strict); err != nil {
		m.logger.Error(err, "failed to merge partial report", "uid", partial.UID())
		return errors.Wrapf(err, "merging partial report %s", partial.UID())
	}
	if len(skipped) > 0 {
		m.logger.Info("skipped nodes unknown to the report",
			"uid", partial.UID(), "skipped", skipped,
		)
	}

	m.merged++
	m.logger.V(log.DebugLevel).Info("merged partial report",
		"uid", partial.UID(), "merged", m.merged,
	)
	return nil
}

// MergeAll merges all partials in order. Partials that fail to merge are
// skipped and their errors are returned together.
func (m *Merger) MergeAll(partials ...*report.Group) error {
	var mErr *multierror.Error
	for _, p := range partials {
		if err := m.Merge(p); err != nil {
			mErr = multierror.Append(mErr, err)
		}
	}
	return mErr.ErrorOrNil()
}

// Report returns a snapshot of the accumulated report tree. Later merges
// don't affect returned snapshots.
func (m *Merger) Report() *report.Group {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tree.Clone().(*report.Group)
}

// Merged returns how many partial reports were successfully merged.
func (m *Merger) Merged() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.merged
}
