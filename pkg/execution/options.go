package execution

import (
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/kong/kubernetes-testreport/pkg/environment"
	"github.com/kong/kubernetes-testreport/pkg/types"
)

type OptSuite func(*suite) error

// OptSuiteUID returns an option that will set suite's uid.
func OptSuiteUID(uid types.UID) OptSuite {
	return func(s *suite) error {
		s.uid = uid
		return nil
	}
}

// OptSuiteConcurrency returns an option that will set how many cases
// are run at the same time.
func OptSuiteConcurrency(n int) OptSuite {
	return func(s *suite) error {
		if n <= 0 {
			return ErrInvalidConcurrency
		}
		s.concurrency = n
		return nil
	}
}

// OptSuiteLogger returns an option that will set the logger which receives
// the records logged by suite's cases next to the case reports.
func OptSuiteLogger(l logr.Logger) OptSuite {
	return func(s *suite) error {
		s.logger = l
		return nil
	}
}

type OptCoordinator func(*coordinator) error

// OptCoordinatorLogger returns an option that will set coordinator's logger.
func OptCoordinatorLogger(l logr.Logger) OptCoordinator {
	return func(c *coordinator) error {
		c.logger = l
		return nil
	}
}

// OptCoordinatorUID returns an option that will set the uid of the plan
// report produced by the coordinator.
func OptCoordinatorUID(uid types.UID) OptCoordinator {
	return func(c *coordinator) error {
		c.uid = uid
		return nil
	}
}

// OptCoordinatorConcurrency returns an option that will set how many suites
// are executed at the same time.
func OptCoordinatorConcurrency(n int) OptCoordinator {
	return func(c *coordinator) error {
		if n <= 0 {
			return ErrInvalidConcurrency
		}
		c.concurrency = n
		return nil
	}
}

// OptCoordinatorNonStrict returns an option that will make the coordinator
// skip partial report nodes missing from the skeleton instead of failing.
func OptCoordinatorNonStrict() OptCoordinator {
	return func(c *coordinator) error {
		c.strict = false
		return nil
	}
}

// OptCoordinatorEnvironment returns an option that will make the coordinator
// record the info of the provided providers on every plan report.
func OptCoordinatorEnvironment(providers ...environment.Provider) OptCoordinator {
	return func(c *coordinator) error {
		for _, p := range providers {
			if p == nil {
				return fmt.Errorf("nil environment provider")
			}
		}
		c.environment = append(c.environment, providers...)
		return nil
	}
}

type OptConsumer func(*consumerOptions)

type consumerOptions struct {
	logger  logr.Logger
	timeout time.Duration
}

// OptConsumerLogger returns an option that will set consumer's logger.
func OptConsumerLogger(l logr.Logger) OptConsumer {
	return func(o *consumerOptions) {
		o.logger = l
	}
}

// OptConsumerTimeout returns an option that will bound the time a single
// forward may take.
func OptConsumerTimeout(d time.Duration) OptConsumer {
	return func(o *consumerOptions) {
		o.timeout = d
	}
}

type OptMerger func(*Merger)

// OptMergerLogger returns an option that will set merger's logger.
func OptMergerLogger(l logr.Logger) OptMerger {
	return func(m *Merger) {
		m.logger = l
	}
}

// OptMergerNonStrict returns an option that will make the merger skip partial
// report nodes missing from the skeleton instead of failing.
func OptMergerNonStrict() OptMerger {
	return func(m *Merger) {
		m.strict = false
	}
}
