package forwarders

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

type fileForwarder struct {
	path string
}

// NewFileForwarder creates a forwarder which writes every received report
// to path, replacing the previous one.
func NewFileForwarder(path string) *fileForwarder {
	return &fileForwarder{
		path: path,
	}
}

// Name returns the name of the forwarder.
func (f *fileForwarder) Name() string {
	return "FileForwarder"
}

// Forward writes payload to a temporary file next to the destination and
// renames it over the destination so readers never see a partial report.
func (f *fileForwarder) Forward(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+filepath.Base(f.path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write report file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to move report file in place: %w", err)
	}
	return nil
}
