package forwarders

import "context"

type discardForwarder struct{}

// NewDiscardForwarder creates a forwarder dropping every export. It backs
// dry runs, where only serialization is exercised.
func NewDiscardForwarder() *discardForwarder {
	return &discardForwarder{}
}

func (df *discardForwarder) Name() string {
	return "DiscardForwarder"
}

// Forward drops payload. It only fails when ctx is already done.
func (df *discardForwarder) Forward(ctx context.Context, _ []byte) error {
	return ctx.Err()
}
