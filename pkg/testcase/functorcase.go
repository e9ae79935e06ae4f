package testcase

import (
	"context"

	"github.com/kong/kubernetes-testreport/pkg/report"
)

type functor struct {
	f RunFunc
	base
}

// RunFunc defines a function type that functor test case accepts as its test
// logic.
type RunFunc func(context.Context, *report.Report) error

var _ Case = (*functor)(nil)

// NewFunctorCase creates a new functor test case that allows to define one's
// own test logic by providing a RunFunc as parameter.
func NewFunctorCase(name string, f RunFunc) (Case, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if f == nil {
		return nil, ErrNilRunFunc
	}
	return &functor{
		f: f,
		base: base{
			name: name,
			kind: "functor",
		},
	}, nil
}

// Run runs the configured RunFunc.
func (c *functor) Run(ctx context.Context, r *report.Report) error {
	if err := c.f(ctx, r); err != nil {
		return c.WrapError(err)
	}
	return nil
}
