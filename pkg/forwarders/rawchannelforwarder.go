package forwarders

import (
	"context"

	"github.com/kong/kubernetes-testreport/pkg/report"
)

type rawChannelForwarder struct {
	ch chan *report.Group
}

// NewRawChannelForwarder creates new rawChannelForwarder.
func NewRawChannelForwarder(ch chan *report.Group) *rawChannelForwarder {
	return &rawChannelForwarder{
		ch: ch,
	}
}

func (f *rawChannelForwarder) Name() string {
	return "RawChannelForwarder"
}

// Forward forwards a copy of the received report on the configured channel,
// so that receivers never share the tree with the producer.
func (f *rawChannelForwarder) Forward(ctx context.Context, r *report.Group) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case f.ch <- r.Clone().(*report.Group):
	}
	return nil
}
