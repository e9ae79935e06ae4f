package execution

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/gammazero/workerpool"
	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v2"

	"github.com/kong/kubernetes-testreport/pkg/environment"
	"github.com/kong/kubernetes-testreport/pkg/log"
	"github.com/kong/kubernetes-testreport/pkg/report"
	"github.com/kong/kubernetes-testreport/pkg/types"
)

// Coordinator controls and runs suites, merging the partial reports they
// produce into a plan report built from their skeletons. Finalized plan
// reports are sent over to consumers. Owners of consumers are responsible
// that they consume the reports in a timely manner.
type Coordinator interface {
	// Start starts the coordinator loop delivering reports to consumers.
	Start() error
	// Stop stops the coordinator internal loops.
	Stop()
	// AddConsumer adds a consumer of finalized plan reports.
	AddConsumer(ch chan<- *report.Group) error
	// AddSuite adds a suite which will be executed as part of the plan.
	AddSuite(Suite) error
	// Skeleton returns a fresh plan report holding all suites' skeletons.
	Skeleton() (*report.Group, error)
	// Execute executes all suites and returns the merged plan report.
	// Suites that failed to execute or merge are reported through the
	// returned error while the rest of the plan is still returned.
	Execute(context.Context) (*report.Group, error)
	// Merge merges a partial plan report, produced elsewhere, into the
	// current plan report.
	Merge(partial *report.Group) error
	// Report returns a snapshot of the current plan report.
	Report() (*report.Group, error)
	// TriggerExecute executes all suites and sends a snapshot of the resulting
	// plan report over to consumers.
	TriggerExecute(context.Context) error
}

var _ Coordinator = (*coordinator)(nil)

type coordinator struct {
	name string
	uid  types.UID
	// suites contains a map of suites identified by their names.
	suites      *xsync.MapOf[string, Suite]
	concurrency int
	strict      bool
	// environment providers whose info is recorded on every plan report.
	environment []environment.Provider

	// consumers is a slice of channels that will consume reports produced by
	// execution of suites.
	consumers []chan<- *report.Group

	// current accumulates the reports of the latest execution and of
	// externally merged partials.
	lock    sync.Mutex
	current *Merger

	ch      chan *report.Group
	once    sync.Once
	logger  logr.Logger
	done    chan struct{}
	started int32
}

// NewCoordinator creates a new coordinator for a plan named name, configured
// via the provided options.
func NewCoordinator(name string, opts ...OptCoordinator) (Coordinator, error) {
	c := &coordinator{
		name:        name,
		uid:         types.NewUID(),
		suites:      xsync.NewMapOf[Suite](),
		concurrency: runtime.NumCPU(),
		strict:      true,
		consumers:   []chan<- *report.Group{},
		ch:          make(chan *report.Group),
		logger:      defaultLogger(),
		done:        make(chan struct{}),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to create coordinator: %w", err)
		}
	}

	return c, nil
}

// AddSuite adds a suite to coordinator's suites.
func (c *coordinator) AddSuite(s Suite) error {
	if s == nil {
		return ErrNilSuiteProvided
	}
	if _, loaded := c.suites.LoadOrStore(s.Name(), s); loaded {
		return fmt.Errorf("suite %s: %w", s.Name(), ErrDuplicateSuite)
	}
	return nil
}

// Start starts the coordinator.
func (c *coordinator) Start() error {
	if !atomic.CompareAndSwapInt32(&c.started, 0, 1) {
		return ErrCoordinatorAlreadyStarted
	}

	c.logger.Info("starting coordinator", "plan", c.name)
	go c.consumerLoop()
	return nil
}

// Stop stops the coordinator.
func (c *coordinator) Stop() {
	c.logger.Info("stopping coordinator", "plan", c.name)
	c.once.Do(func() {
		close(c.done)
	})
}

// AddConsumer adds a consumer.
func (c *coordinator) AddConsumer(ch chan<- *report.Group) error {
	if atomic.LoadInt32(&c.started) > 0 {
		return ErrCantAddConsumersAfterStart
	}
	c.consumers = append(c.consumers, ch)
	return nil
}

// sortedSuites returns configured suites ordered by their names.
func (c *coordinator) sortedSuites() []Suite {
	suites := make([]Suite, 0, c.suites.Size())
	c.suites.Range(func(_ string, s Suite) bool {
		suites = append(suites, s)
		return true
	})
	sort.Slice(suites, func(i, j int) bool {
		return suites[i].Name() < suites[j].Name()
	})
	return suites
}

func (c *coordinator) newPlan(children ...report.Node) (*report.Group, error) {
	return report.NewGroup(c.name,
		report.WithUID(c.uid),
		report.WithCategory(report.CategoryPlan),
		report.WithChildren(children...),
	)
}

func (c *coordinator) newMerger(skeleton *report.Group) (*Merger, error) {
	opts := []OptMerger{OptMergerLogger(c.logger)}
	if !c.strict {
		opts = append(opts, OptMergerNonStrict())
	}
	return NewMerger(skeleton, opts...)
}

// Skeleton returns the plan skeleton.
func (c *coordinator) Skeleton() (*report.Group, error) {
	suites := c.sortedSuites()
	children := make([]report.Node, 0, len(suites))
	for _, s := range suites {
		g, err := s.Skeleton()
		if err != nil {
			return nil, errors.Wrapf(err, "error building skeleton of suite %s", s.Name())
		}
		children = append(children, g)
	}
	return c.newPlan(children...)
}

type suiteResult struct {
	name    string
	partial *report.Group
	err     error
}

// Execute executes all configured suites in a worker pool. Every partial
// report is merged into a fresh plan skeleton by the calling goroutine.
func (c *coordinator) Execute(ctx context.Context) (*report.Group, error) {
	skeleton, err := c.Skeleton()
	if err != nil {
		return nil, err
	}
	merger, err := c.newMerger(skeleton)
	if err != nil {
		return nil, err
	}
	c.recordEnvironment(ctx, skeleton)

	var (
		suites = c.sortedSuites()
		chRes  = make(chan suiteResult)
		wp     = workerpool.New(c.concurrency)
	)

	for _, suite := range suites {
		s := suite
		wp.Submit(func() {
			g, err := s.Execute(ctx)
			if err != nil {
				chRes <- suiteResult{name: s.Name(), err: err}
				return
			}
			plan, err := c.newPlan(g)
			chRes <- suiteResult{name: s.Name(), partial: plan, err: err}
		})
	}

	go func() {
		wp.StopWait()
		close(chRes)
	}()

	var mErr *multierror.Error
	for res := range chRes {
		if res.err != nil {
			mErr = multierror.Append(mErr, errors.Wrapf(res.err, "error executing suite %s", res.name))
			continue
		}
		if err := merger.Merge(res.partial); err != nil {
			mErr = multierror.Append(mErr, errors.Wrapf(err, "error merging suite %s", res.name))
			continue
		}
		c.logger.V(log.DebugLevel).Info("suite finished", "plan", c.name, "suite", res.name)
	}

	c.lock.Lock()
	c.current = merger
	c.lock.Unlock()

	return merger.Report(), mErr.ErrorOrNil()
}

// recordEnvironment records the info of configured environment providers in
// the plan report's logs. Failing providers don't fail the execution.
func (c *coordinator) recordEnvironment(ctx context.Context, plan *report.Group) {
	if len(c.environment) == 0 {
		return
	}
	info, err := environment.Collect(ctx, c.environment...)
	if err != nil {
		c.logger.Error(err, "failed to collect environment info", "plan", c.name)
	}
	if len(info) > 0 {
		plan.Logger().WithName("environment").Info("environment", info.KeysAndValues()...)
	}
}

// currentMerger returns the merger of the latest execution, creating one
// from a fresh skeleton when nothing was executed yet.
func (c *coordinator) currentMerger() (*Merger, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.current != nil {
		return c.current, nil
	}
	skeleton, err := c.Skeleton()
	if err != nil {
		return nil, err
	}
	m, err := c.newMerger(skeleton)
	if err != nil {
		return nil, err
	}
	c.current = m
	return m, nil
}

// Merge merges partial into the current plan report.
func (c *coordinator) Merge(partial *report.Group) error {
	m, err := c.currentMerger()
	if err != nil {
		return err
	}
	return m.Merge(partial)
}

// Report returns a snapshot of the current plan report.
func (c *coordinator) Report() (*report.Group, error) {
	m, err := c.currentMerger()
	if err != nil {
		return nil, err
	}
	return m.Report(), nil
}

// TriggerExecute executes all suites and sends a snapshot of the plan report
// over to consumers. The report is sent even when some of the suites failed.
// Merges made after the snapshot was taken are not seen by consumers.
func (c *coordinator) TriggerExecute(ctx context.Context) error {
	if atomic.LoadInt32(&c.started) == 0 {
		return ErrCoordinatorNotStarted
	}

	r, err := c.Execute(ctx)
	if r == nil {
		return err
	}
	if err != nil {
		c.logger.Error(err, "error executing suites", "plan", c.name)
	}

	select {
	case c.ch <- r:
	case <-c.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return err
}

// consumerLoop loops over all configured consumers and sends the finalized
// plan reports over to them via a channel.
func (c *coordinator) consumerLoop() {
	for {
		select {
		case <-c.done:
			return

		case r := <-c.ch:
		consumersLoop:
			for _, ch := range c.consumers {
				select {
				case ch <- r:
				case <-c.done:
					break consumersLoop
				}
			}
		}
	}
}
