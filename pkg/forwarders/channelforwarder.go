package forwarders

import (
	"context"
)

type channelForwarder struct {
	ch chan<- []byte
}

// NewChannelForwarder creates a forwarder sending serialized reports on ch.
func NewChannelForwarder(ch chan<- []byte) *channelForwarder {
	return &channelForwarder{
		ch: ch,
	}
}

// Name returns the name of the forwarder.
func (f *channelForwarder) Name() string {
	return "ChannelForwarder"
}

// Forward sends a copy of payload on the channel, giving up when ctx is done.
func (f *channelForwarder) Forward(ctx context.Context, payload []byte) error {
	b := append([]byte(nil), payload...)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case f.ch <- b:
	}
	return nil
}
