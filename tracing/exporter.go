package tracing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// fileExporter writes spans as JSON lines to a file, delegating encoding to
// the stdouttrace exporter. One span per line keeps traces greppable.
type fileExporter struct {
	sdktrace.SpanExporter
	file *os.File
}

// newFileExporter opens (or creates) the trace file in append mode. Parent
// directories are created as needed.
func newFileExporter(path string) (*fileExporter, error) {
	cleanPath := filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o750); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}

	file, err := os.OpenFile(cleanPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}

	inner, err := stdouttrace.New(stdouttrace.WithWriter(file))
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("create exporter: %w", err)
	}

	return &fileExporter{SpanExporter: inner, file: file}, nil
}

// Shutdown flushes the inner exporter and closes the file.
func (e *fileExporter) Shutdown(ctx context.Context) error {
	err := e.SpanExporter.Shutdown(ctx)
	if closeErr := e.file.Close(); err == nil {
		err = closeErr
	}

	return err
}
