package lode

import (
	"context"

	"github.com/nino-chavez/brand-site-sub018/metrics"
	"github.com/nino-chavez/brand-site-sub018/types"
)

// InstrumentedWriter wraps a Writer and counts every write as an
// artifact write success or failure on the collector.
type InstrumentedWriter struct {
	inner     Writer
	collector *metrics.Collector
}

// NewInstrumentedWriter wraps w with metrics instrumentation.
func NewInstrumentedWriter(w Writer, collector *metrics.Collector) *InstrumentedWriter {
	return &InstrumentedWriter{inner: w, collector: collector}
}

func (w *InstrumentedWriter) record(err error) error {
	if err != nil {
		w.collector.IncArtifactWriteFailure()
	} else {
		w.collector.IncArtifactWriteSuccess()
	}
	return err
}

// PutFile delegates to the inner writer and records the outcome.
func (w *InstrumentedWriter) PutFile(ctx context.Context, name, contentType string, data []byte) error {
	return w.record(w.inner.PutFile(ctx, name, contentType, data))
}

// WriteErrors delegates to the inner writer and records the outcome.
// Empty batches are not counted.
func (w *InstrumentedWriter) WriteErrors(ctx context.Context, scenario string, errs []types.CapturedError) error {
	if len(errs) == 0 {
		return nil
	}
	return w.record(w.inner.WriteErrors(ctx, scenario, errs))
}

// WriteSummary delegates to the inner writer and records the outcome.
func (w *InstrumentedWriter) WriteSummary(ctx context.Context, summary types.Summary) error {
	return w.record(w.inner.WriteSummary(ctx, summary))
}

// Close delegates to the inner writer.
func (w *InstrumentedWriter) Close() error {
	return w.inner.Close()
}

// Verify InstrumentedWriter implements Writer.
var _ Writer = (*InstrumentedWriter)(nil)
