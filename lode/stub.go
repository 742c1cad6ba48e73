package lode

import (
	"context"
	"sync"

	"github.com/nino-chavez/brand-site-sub018/types"
)

// StubWriter records writes for testing.
type StubWriter struct {
	mu        sync.Mutex
	Files     []StubFileRecord
	Errors    map[string][]types.CapturedError
	Summaries []types.Summary
	Closed    bool

	// Err, when set, is returned from every write.
	Err error
}

// StubFileRecord is a recorded file write for testing.
type StubFileRecord struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewStubWriter creates a new stub writer.
func NewStubWriter() *StubWriter {
	return &StubWriter{Errors: make(map[string][]types.CapturedError)}
}

// PutFile implements Writer by recording the call.
func (w *StubWriter) PutFile(_ context.Context, name, contentType string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	w.Files = append(w.Files, StubFileRecord{
		Name:        name,
		ContentType: contentType,
		Data:        data,
	})
	return nil
}

// WriteErrors implements Writer by recording the call.
func (w *StubWriter) WriteErrors(_ context.Context, scenario string, errs []types.CapturedError) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	w.Errors[scenario] = append(w.Errors[scenario], errs...)
	return nil
}

// WriteSummary implements Writer by recording the call.
func (w *StubWriter) WriteSummary(_ context.Context, summary types.Summary) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.Err != nil {
		return w.Err
	}
	w.Summaries = append(w.Summaries, summary)
	return nil
}

// Close implements Writer.
func (w *StubWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Closed = true
	return nil
}

// FileNames returns the recorded file names in write order.
func (w *StubWriter) FileNames() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	names := make([]string, len(w.Files))
	for i, f := range w.Files {
		names[i] = f.Name
	}
	return names
}

// Verify StubWriter implements Writer.
var _ Writer = (*StubWriter)(nil)
