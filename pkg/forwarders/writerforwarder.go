package forwarders

import (
	"context"
	"fmt"
	"io"
)

type writerForwarder struct {
	w io.Writer
}

// NewWriterForwarder creates a forwarder which writes every received report
// to w, e.g. standard output.
func NewWriterForwarder(w io.Writer) *writerForwarder {
	return &writerForwarder{
		w: w,
	}
}

// Name returns the name of the forwarder.
func (f *writerForwarder) Name() string {
	return "WriterForwarder"
}

// Forward writes payload to the configured writer.
func (f *writerForwarder) Forward(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := f.w.Write(payload); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
