package testcase

import (
	"context"

	"github.com/kong/kubernetes-testreport/pkg/report"
)

// Kind presents test case's kind.
type Kind string

// Case defines how a test case can be run. Run appends its assertion entries
// and logs to the provided report, which it owns for the duration of the call.
type Case interface {
	Name() string
	Kind() Kind
	Run(context.Context, *report.Report) error
}
