// Package lode persists harness artifacts through Lode.
//
// Two kinds of data are written per run. Binary artifacts (screenshots,
// reports, video frames) go straight to the Lode Store under a
// Hive-partitioned files/ prefix. Captured errors and the run summary are
// written as JSONL records to a Lode Dataset so later runs can be queried.
package lode

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/justapithecus/lode/lode"

	"github.com/nino-chavez/brand-site-sub018/types"
)

// DefaultDataset is the Lode dataset ID used when Config.Dataset is empty.
const DefaultDataset = "runtime-errors"

// Record kind discriminators. record_kind is also a partition key.
const (
	RecordKindError   = "captured_error"
	RecordKindSummary = "run_summary"
)

// ErrInvalidFilename is returned when an artifact name escapes the files/ prefix.
var ErrInvalidFilename = errors.New("invalid artifact filename")

// partitionKeys is the Hive layout shared by writers and readers.
var partitionKeys = []string{"day", "run_id", "record_kind"}

// DeriveDay computes the partition day from the run start time.
// Format: YYYY-MM-DD in UTC.
func DeriveDay(startTime time.Time) string {
	return startTime.UTC().Format("2006-01-02")
}

// Config holds the partition values for one run.
type Config struct {
	// Dataset is the Lode dataset ID.
	Dataset string
	// Day is the partition day (YYYY-MM-DD UTC).
	Day string
	// RunID identifies the harness invocation.
	RunID string
}

func (c Config) withDefaults() Config {
	if c.Dataset == "" {
		c.Dataset = DefaultDataset
	}
	if c.Day == "" {
		c.Day = DeriveDay(time.Now())
	}
	return c
}

// Writer is what the runner needs from artifact storage.
type Writer interface {
	// PutFile writes an artifact under the run's files/ prefix.
	// The name may contain "/" but must stay relative and must not contain "..".
	PutFile(ctx context.Context, name, contentType string, data []byte) error

	// WriteErrors appends the captured errors of one scenario to the dataset.
	WriteErrors(ctx context.Context, scenario string, errs []types.CapturedError) error

	// WriteSummary appends the run summary record to the dataset.
	WriteSummary(ctx context.Context, summary types.Summary) error

	// Close releases resources.
	Close() error
}

// Store is the Lode-backed Writer.
type Store struct {
	dataset lode.Dataset
	config  Config

	storeFactory lode.StoreFactory
	storeOnce    sync.Once
	store        lode.Store
	storeErr     error
}

// NewFSStore creates a Store on the local filesystem rooted at root.
func NewFSStore(cfg Config, root string) (*Store, error) {
	return NewStoreWithFactory(cfg, lode.NewFSFactory(root))
}

// NewStoreWithFactory creates a Store with a custom store factory.
// Use lode.NewMemoryFactory() for testing.
func NewStoreWithFactory(cfg Config, factory lode.StoreFactory) (*Store, error) {
	cfg = cfg.withDefaults()
	ds, err := NewReadDataset(cfg.Dataset, factory)
	if err != nil {
		return nil, wrap(OpOpen, cfg.Dataset, err)
	}
	return &Store{
		dataset:      ds,
		config:       cfg,
		storeFactory: factory,
	}, nil
}

// NewReadDataset opens the dataset with the layout and codec Store writes with.
func NewReadDataset(dataset string, factory lode.StoreFactory) (lode.Dataset, error) {
	return lode.NewDataset(
		lode.DatasetID(dataset),
		factory,
		lode.WithHiveLayout(partitionKeys...),
		lode.WithCodec(lode.NewJSONLCodec()),
	)
}

// Config returns the effective partition config.
func (s *Store) Config() Config {
	return s.config
}

// PutFile writes an artifact to the Store at the run's Hive path.
// The store is created lazily on first use.
func (s *Store) PutFile(ctx context.Context, name, _ string, data []byte) error {
	if err := validateFilename(name); err != nil {
		return err
	}
	store, err := s.getOrCreateStore()
	if err != nil {
		return fmt.Errorf("file write store init failed: %w", wrap(OpOpen, s.config.Dataset, err))
	}

	p := s.FilePath(name)
	return wrap(OpPut, p, store.Put(ctx, p, bytes.NewReader(data)))
}

// FilePath computes the Hive-partitioned path for an artifact.
// Format: datasets/<dataset>/partitions/day=<d>/run_id=<r>/files/<name>
func (s *Store) FilePath(name string) string {
	return fmt.Sprintf("datasets/%s/partitions/day=%s/run_id=%s/files/%s",
		s.config.Dataset,
		s.config.Day,
		s.config.RunID,
		name,
	)
}

// WriteErrors writes one record per captured error. Empty input is a no-op.
func (s *Store) WriteErrors(ctx context.Context, scenario string, errs []types.CapturedError) error {
	if len(errs) == 0 {
		return nil
	}
	records := make([]any, 0, len(errs))
	for _, e := range errs {
		records = append(records, toErrorRecordMap(e, scenario, s.config))
	}
	_, err := s.dataset.Write(ctx, records, lode.Metadata{})
	return wrap(OpAppend, s.config.Dataset, err)
}

// WriteSummary writes the run summary as a single record.
func (s *Store) WriteSummary(ctx context.Context, summary types.Summary) error {
	_, err := s.dataset.Write(ctx, []any{toSummaryRecordMap(summary, s.config)}, lode.Metadata{})
	return wrap(OpAppend, s.config.Dataset, err)
}

// Close releases resources.
func (s *Store) Close() error {
	// Dataset doesn't require explicit close in current Lode API
	return nil
}

func (s *Store) getOrCreateStore() (lode.Store, error) {
	s.storeOnce.Do(func() {
		s.store, s.storeErr = s.storeFactory()
	})
	return s.store, s.storeErr
}

func validateFilename(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidFilename)
	case strings.HasPrefix(name, "/"), strings.Contains(name, `\`):
		return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." || part == "." || part == "" {
			return fmt.Errorf("%w: %q", ErrInvalidFilename, name)
		}
	}
	return nil
}

// Lode HiveLayout requires records as map[string]any.
func toErrorRecordMap(e types.CapturedError, scenario string, cfg Config) map[string]any {
	m := map[string]any{
		"record_kind": RecordKindError,
		"scenario":    scenario,
		"error_id":    e.ID,
		"timestamp":   e.Timestamp,
		"message":     e.Message,
		"type":        string(e.Type),
		"severity":    string(e.Severity),
		"source":      string(e.Source),
		"url":         e.URL,
		"day":         cfg.Day,
		"run_id":      cfg.RunID,
	}
	if e.Stack != "" {
		m["stack"] = e.Stack
	}
	if e.Context.ComponentName != "" {
		m["component"] = e.Context.ComponentName
	}
	if e.Context.Location != "" {
		m["location"] = e.Context.Location
	}
	return m
}

func toSummaryRecordMap(s types.Summary, cfg Config) map[string]any {
	return map[string]any{
		"record_kind":     RecordKindSummary,
		"total":           s.Total,
		"passed":          s.Passed,
		"failed":          s.Failed,
		"total_errors":    s.TotalErrors,
		"critical_errors": s.CriticalErrors,
		"day":             cfg.Day,
		"run_id":          cfg.RunID,
	}
}

// Verify Store implements Writer.
var _ Writer = (*Store)(nil)
