package execution

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/kong/kubernetes-testreport/pkg/report"
)

// DefaultForwardTimeout is the default time a single forward is allowed to take.
const DefaultForwardTimeout = 30 * time.Second

type consumer struct {
	logger logr.Logger
	once   sync.Once
	ch     chan *report.Group
	done   chan struct{}
}

func newConsumerOptions(opts []OptConsumer) consumerOptions {
	o := consumerOptions{
		logger:  defaultLogger(),
		timeout: DefaultForwardTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o consumerOptions) forwardContext() (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), o.timeout)
}

// NewConsumer creates a new consumer which will use the provided serializer to
// serialize the reports and then forward them using the provided forwarder.
func NewConsumer(s Serializer, f Forwarder, opts ...OptConsumer) *consumer {
	var (
		o    = newConsumerOptions(opts)
		ch   = make(chan *report.Group)
		done = make(chan struct{})
	)

	go func() {
		for {
			select {
			case <-done:
				return
			case r := <-ch:
				b, err := s.Serialize(r)
				if err != nil {
					o.logger.Error(err, "failed to serialize report", "uid", r.UID())
					continue
				}

				ctx, cancel := o.forwardContext()
				if err := f.Forward(ctx, b); err != nil {
					o.logger.Error(err, "failed to forward report", "forwarder", f.Name())
				}
				cancel()
			}
		}
	}()

	return &consumer{
		logger: o.logger,
		ch:     ch,
		done:   done,
	}
}

// Intake returns a channel on which this consumer will wait for reports to consume them.
func (c *consumer) Intake() chan<- *report.Group {
	return c.ch
}

// Close closes the consumer.
func (c *consumer) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

type rawConsumer struct {
	logger logr.Logger
	once   sync.Once
	ch     chan *report.Group
	done   chan struct{}
}

// NewRawConsumer creates a new raw consumer that will use the provided raw
// forwarder to forward received reports.
func NewRawConsumer(f RawForwarder, opts ...OptConsumer) *rawConsumer {
	var (
		o    = newConsumerOptions(opts)
		ch   = make(chan *report.Group)
		done = make(chan struct{})
	)

	go func() {
		for {
			select {
			case <-done:
				return
			case r := <-ch:
				ctx, cancel := o.forwardContext()
				if err := f.Forward(ctx, r); err != nil {
					o.logger.Error(err, "failed to forward report using raw forwarder", "forwarder", f.Name())
				}
				cancel()
			}
		}
	}()

	return &rawConsumer{
		logger: o.logger,
		ch:     ch,
		done:   done,
	}
}

// Intake returns a channel on which this consumer will wait for reports to consume them.
func (c *rawConsumer) Intake() chan<- *report.Group {
	return c.ch
}

// Close closes the raw consumer.
func (c *rawConsumer) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}
