package execution

import (
	"context"
	"fmt"
	"runtime"

	"github.com/gammazero/workerpool"
	"github.com/go-logr/logr"

	"github.com/kong/kubernetes-testreport/pkg/log"
	"github.com/kong/kubernetes-testreport/pkg/report"
	"github.com/kong/kubernetes-testreport/pkg/testcase"
	"github.com/kong/kubernetes-testreport/pkg/types"
)

// Suite groups test cases which are executed together. Each execution produces
// a partial suite report which can be merged into the suite's skeleton.
type Suite interface {
	// Name returns suite's name.
	Name() string
	// UID returns suite's unique identifier, shared by its skeleton and
	// all partial reports it produces.
	UID() types.UID
	// AddCase adds a test case. When no uid is provided a new one is generated.
	AddCase(c testcase.Case, uid ...types.UID) error
	// Skeleton returns a report tree of empty test case leaves, one per case.
	Skeleton() (*report.Group, error)
	// Execute runs all the configured cases and returns a partial suite report.
	Execute(context.Context) (*report.Group, error)
}

var _ Suite = (*suite)(nil)

type suiteCase struct {
	uid types.UID
	testcase.Case
}

type suite struct {
	name        string
	uid         types.UID
	concurrency int
	cases       []suiteCase
	logger      logr.Logger
}

// NewSuite creates a new empty suite.
func NewSuite(name string, opts ...OptSuite) (Suite, error) {
	s := &suite{
		name:        name,
		uid:         types.NewUID(),
		concurrency: runtime.NumCPU(),
		cases:       make([]suiteCase, 0),
		logger:      logr.Discard(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("failed to create suite %s: %w", name, err)
		}
	}

	return s, nil
}

// Name returns suite's name.
func (s *suite) Name() string {
	return s.name
}

// UID returns suite's uid.
func (s *suite) UID() types.UID {
	return s.uid
}

// AddCase adds a case to the list of configured cases.
func (s *suite) AddCase(c testcase.Case, uid ...types.UID) error {
	if c == nil {
		return ErrNilCaseProvided
	}

	sc := suiteCase{uid: types.NewUID(), Case: c}
	if len(uid) > 0 && uid[0] != "" {
		sc.uid = uid[0]
	}
	for _, existing := range s.cases {
		if existing.uid == sc.uid {
			return fmt.Errorf("case %s: %w", sc.uid, report.ErrDuplicateIdentity)
		}
	}

	s.cases = append(s.cases, sc)
	return nil
}

// Skeleton returns the suite's skeleton report.
func (s *suite) Skeleton() (*report.Group, error) {
	children := make([]report.Node, 0, len(s.cases))
	for _, c := range s.cases {
		r, err := report.NewTestCase(c.Name(), report.WithUID(c.uid))
		if err != nil {
			return nil, err
		}
		children = append(children, r)
	}
	return s.newGroup(children...)
}

type caseResult struct {
	idx    int
	report *report.Report
	err    error
}

// Execute executes the suite by running all configured cases in a worker pool.
// Cases which were not started before ctx got done are left out of the
// returned partial report.
func (s *suite) Execute(ctx context.Context) (*report.Group, error) {
	var (
		results = make([]*report.Report, len(s.cases))
		chRes   = make(chan caseResult)
		wp      = workerpool.New(s.concurrency)
	)

	for i, c := range s.cases {
		i, c := i, c
		wp.Submit(func() {
			if ctx.Err() != nil {
				s.logger.V(log.DebugLevel).Info("skipping case", "suite", s.name, "case", c.Name())
				chRes <- caseResult{idx: i}
				return
			}

			r, err := s.runCase(ctx, c)
			chRes <- caseResult{idx: i, report: r, err: err}
		})
	}

	go func() {
		wp.StopWait()
		close(chRes)
	}()

	var err error
	for res := range chRes {
		if res.err != nil && err == nil {
			err = res.err
		}
		results[res.idx] = res.report
	}
	if err != nil {
		return nil, err
	}

	children := make([]report.Node, 0, len(results))
	for _, r := range results {
		if r != nil {
			children = append(children, r)
		}
	}
	return s.newGroup(children...)
}

// runCase runs a single case against its own leaf report. Errors and panics
// coming from the case are recorded on the leaf instead of being returned.
func (s *suite) runCase(ctx context.Context, c suiteCase) (*report.Report, error) {
	logger := s.logger.WithValues("suite", s.name, "case", c.Name(), "kind", c.Kind())
	r, err := report.NewTestCase(c.Name(),
		report.WithUID(c.uid),
		report.WithDelegateLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	r.StartTimer()
	defer r.StopTimer()

	_ = r.LoggedExceptions().Do(func() error {
		return c.Run(ctx, r)
	})
	return r, nil
}

func (s *suite) newGroup(children ...report.Node) (*report.Group, error) {
	return report.NewGroup(s.name,
		report.WithUID(s.uid),
		report.WithCategory(report.CategorySuite),
		report.WithChildren(children...),
	)
}
