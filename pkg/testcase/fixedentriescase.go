package testcase

import (
	"context"

	"github.com/kong/kubernetes-testreport/pkg/report"
	"github.com/kong/kubernetes-testreport/pkg/types"
)

type fixedEntries struct {
	entries []types.Entry
	base
}

var _ Case = fixedEntries{}

// NewFixedEntriesCase creates fixed entries test case which upon calling Run
// will always append the same entries.
func NewFixedEntriesCase(name string, entries ...types.Entry) (Case, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	return fixedEntries{
		entries: entries,
		base: base{
			name: name,
			kind: "constant",
		},
	}, nil
}

func (c fixedEntries) Run(ctx context.Context, r *report.Report) error {
	for _, e := range c.entries {
		r.Append(e.Clone())
	}
	return nil
}
