package lode

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/justapithecus/lode/lode"

	"github.com/nino-chavez/brand-site-sub018/metrics"
	"github.com/nino-chavez/brand-site-sub018/types"
)

// FailingStore is a lode.Store that returns configurable errors.
type FailingStore struct {
	PutErr error

	PutCalls int
	PutPaths []string
}

func (s *FailingStore) Put(_ context.Context, path string, _ io.Reader) error {
	s.PutCalls++
	s.PutPaths = append(s.PutPaths, path)
	return s.PutErr
}

func (s *FailingStore) Get(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (s *FailingStore) Exists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (s *FailingStore) List(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func (s *FailingStore) Delete(_ context.Context, _ string) error {
	return nil
}

func (s *FailingStore) ReadRange(_ context.Context, _ string, _, _ int64) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (s *FailingStore) ReaderAt(_ context.Context, _ string) (io.ReaderAt, error) {
	return nil, errors.New("not implemented")
}

var _ lode.Store = (*FailingStore)(nil)

// sharedFactory hands every caller the same store so writes are visible to readers.
func sharedFactory(store lode.Store) lode.StoreFactory {
	return func() (lode.Store, error) { return store, nil }
}

func testConfig() Config {
	return Config{Day: "2026-10-14", RunID: "run-123"}
}

func capturedErrors() []types.CapturedError {
	return []types.CapturedError{
		{
			ID:       "error_1_a",
			Message:  "Cannot read properties of null (reading 'x')",
			Type:     types.ErrorNullAccess,
			Severity: types.SeverityHigh,
			Source:   types.SourcePageError,
			Context:  types.ErrorContext{ComponentName: "Gallery", Location: "app.js:1:2"},
		},
		{
			ID:       "error_2_b",
			Message:  "useContext must be used within a Provider",
			Type:     types.ErrorContextMissing,
			Severity: types.SeverityCritical,
			Source:   types.SourceConsole,
		},
	}
}

func TestDeriveDay(t *testing.T) {
	ts := time.Date(2026, 2, 3, 23, 30, 0, 0, time.FixedZone("x", -5*3600))
	if got := DeriveDay(ts); got != "2026-02-04" {
		t.Errorf("DeriveDay = %q, want %q", got, "2026-02-04")
	}
}

func TestStore_Defaults(t *testing.T) {
	s, err := NewStoreWithFactory(Config{RunID: "r"}, lode.NewMemoryFactory())
	if err != nil {
		t.Fatalf("NewStoreWithFactory failed: %v", err)
	}
	if s.Config().Dataset != DefaultDataset {
		t.Errorf("dataset = %q, want %q", s.Config().Dataset, DefaultDataset)
	}
	if s.Config().Day == "" {
		t.Error("day should default to today")
	}
}

func TestStore_FilePath(t *testing.T) {
	s, err := NewStoreWithFactory(testConfig(), lode.NewMemoryFactory())
	if err != nil {
		t.Fatalf("NewStoreWithFactory failed: %v", err)
	}
	want := "datasets/runtime-errors/partitions/day=2026-10-14/run_id=run-123/files/screenshots/a.png"
	if got := s.FilePath("screenshots/a.png"); got != want {
		t.Errorf("FilePath = %q, want %q", got, want)
	}
}

func TestStore_PutFile(t *testing.T) {
	fs := &FailingStore{}
	s, err := NewStoreWithFactory(testConfig(), sharedFactory(fs))
	if err != nil {
		t.Fatalf("NewStoreWithFactory failed: %v", err)
	}

	if err := s.PutFile(t.Context(), "report-1.json", "application/json", []byte("{}")); err != nil {
		t.Fatalf("PutFile failed: %v", err)
	}
	if fs.PutCalls != 1 {
		t.Fatalf("PutCalls = %d, want 1", fs.PutCalls)
	}
	if !strings.HasSuffix(fs.PutPaths[0], "/run_id=run-123/files/report-1.json") {
		t.Errorf("path = %q", fs.PutPaths[0])
	}
}

func TestStore_PutFile_InvalidName(t *testing.T) {
	s, err := NewStoreWithFactory(testConfig(), lode.NewMemoryFactory())
	if err != nil {
		t.Fatalf("NewStoreWithFactory failed: %v", err)
	}

	for _, name := range []string{"", "/etc/passwd", "../escape.png", "a/../b", "a//b", `a\b`, "trailing/"} {
		t.Run(name, func(t *testing.T) {
			err := s.PutFile(t.Context(), name, "image/png", nil)
			if !errors.Is(err, ErrInvalidFilename) {
				t.Errorf("PutFile(%q) error = %v, want ErrInvalidFilename", name, err)
			}
		})
	}
}

func TestStore_PutFile_ClassifiesFailure(t *testing.T) {
	fs := &FailingStore{PutErr: errors.New("write /data: no space left on device")}
	s, err := NewStoreWithFactory(testConfig(), sharedFactory(fs))
	if err != nil {
		t.Fatalf("NewStoreWithFactory failed: %v", err)
	}

	err = s.PutFile(t.Context(), "a.png", "image/png", []byte{1})
	if !errors.Is(err, ErrNoSpace) {
		t.Fatalf("error = %v, want ErrNoSpace", err)
	}
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("error is not a *StorageError: %T", err)
	}
	if se.Op != OpPut {
		t.Errorf("op = %q, want %q", se.Op, OpPut)
	}
}

func TestStore_PutFile_FactoryFailure(t *testing.T) {
	s, err := NewStoreWithFactory(testConfig(), func() (lode.Store, error) {
		return nil, errors.New("NoCredentialProviders: no valid providers")
	})
	if err != nil {
		// dataset creation may eagerly build the store; init failure is acceptable here
		if !errors.Is(err, ErrDenied) {
			t.Fatalf("error = %v, want ErrDenied", err)
		}
		return
	}

	err = s.PutFile(t.Context(), "a.png", "image/png", nil)
	if !errors.Is(err, ErrDenied) {
		t.Fatalf("error = %v, want ErrDenied", err)
	}
}

func TestStore_WriteAndQueryErrors(t *testing.T) {
	factory := sharedFactory(lode.NewMemory())
	s, err := NewStoreWithFactory(testConfig(), factory)
	if err != nil {
		t.Fatalf("NewStoreWithFactory failed: %v", err)
	}

	if err := s.WriteErrors(t.Context(), "Null guard", capturedErrors()); err != nil {
		t.Fatalf("WriteErrors failed: %v", err)
	}
	if err := s.WriteErrors(t.Context(), "empty", nil); err != nil {
		t.Fatalf("WriteErrors(nil) failed: %v", err)
	}

	ds, err := NewReadDataset(DefaultDataset, factory)
	if err != nil {
		t.Fatalf("NewReadDataset failed: %v", err)
	}
	records, err := QueryErrors(t.Context(), ds, "run-123")
	if err != nil {
		t.Fatalf("QueryErrors failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0]["scenario"] != "Null guard" {
		t.Errorf("scenario = %v", records[0]["scenario"])
	}
	if records[0]["component"] != "Gallery" {
		t.Errorf("component = %v", records[0]["component"])
	}
	if records[1]["severity"] != string(types.SeverityCritical) {
		t.Errorf("severity = %v", records[1]["severity"])
	}

	other, err := QueryErrors(t.Context(), ds, "run-999")
	if err != nil {
		t.Fatalf("QueryErrors failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("got %d records for another run, want 0", len(other))
	}
}

func TestStore_QueryLatestSummary(t *testing.T) {
	factory := sharedFactory(lode.NewMemory())
	ds, err := NewReadDataset(DefaultDataset, factory)
	if err != nil {
		t.Fatalf("NewReadDataset failed: %v", err)
	}

	if _, err := QueryLatestSummary(t.Context(), ds, ""); !errors.Is(err, ErrNoSummaryFound) {
		t.Fatalf("error = %v, want ErrNoSummaryFound", err)
	}

	for _, run := range []string{"run-1", "run-10"} {
		s, err := NewStoreWithFactory(Config{Day: "2026-10-14", RunID: run}, factory)
		if err != nil {
			t.Fatalf("NewStoreWithFactory failed: %v", err)
		}
		if err := s.WriteSummary(t.Context(), types.Summary{Total: 3, Passed: 2, Failed: 1}); err != nil {
			t.Fatalf("WriteSummary failed: %v", err)
		}
	}

	record, err := QueryLatestSummary(t.Context(), ds, "run-1")
	if err != nil {
		t.Fatalf("QueryLatestSummary failed: %v", err)
	}
	if record["run_id"] != "run-1" {
		t.Errorf("run_id = %v, want run-1", record["run_id"])
	}

	latest, err := QueryLatestSummary(t.Context(), ds, "")
	if err != nil {
		t.Fatalf("QueryLatestSummary failed: %v", err)
	}
	if latest["run_id"] != "run-10" {
		t.Errorf("latest run_id = %v, want run-10", latest["run_id"])
	}
}

func TestMatchesPartitionValue(t *testing.T) {
	path := "datasets/x/partitions/day=2026-10-14/run_id=run-10/record_kind=run_summary/seg.jsonl"
	if matchesPartitionValue(path, "run_id", "run-1") {
		t.Error("run-1 must not match run-10")
	}
	if !matchesPartitionValue(path, "run_id", "run-10") {
		t.Error("run-10 should match")
	}
}

func TestInstrumentedWriter(t *testing.T) {
	collector := metrics.NewCollector("events", "fs", "run-123")
	stub := NewStubWriter()
	w := NewInstrumentedWriter(stub, collector)

	if err := w.PutFile(t.Context(), "a.png", "image/png", []byte{1}); err != nil {
		t.Fatalf("PutFile failed: %v", err)
	}
	if err := w.WriteErrors(t.Context(), "s", capturedErrors()); err != nil {
		t.Fatalf("WriteErrors failed: %v", err)
	}
	if err := w.WriteErrors(t.Context(), "s", nil); err != nil {
		t.Fatalf("WriteErrors(nil) failed: %v", err)
	}

	stub.Err = errors.New("boom")
	if err := w.WriteSummary(t.Context(), types.Summary{}); err == nil {
		t.Fatal("expected error")
	}

	snap := collector.Snapshot()
	if snap.ArtifactWriteSuccess != 2 {
		t.Errorf("success = %d, want 2", snap.ArtifactWriteSuccess)
	}
	if snap.ArtifactWriteFailure != 1 {
		t.Errorf("failure = %d, want 1", snap.ArtifactWriteFailure)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !stub.Closed {
		t.Error("inner writer not closed")
	}
	if got := stub.FileNames(); len(got) != 1 || got[0] != "a.png" {
		t.Errorf("files = %v", got)
	}
}

func TestParseS3Path(t *testing.T) {
	tests := []struct {
		in, bucket, prefix string
	}{
		{"bucket", "bucket", ""},
		{"bucket/prefix", "bucket", "prefix"},
		{"bucket/a/b", "bucket", "a/b"},
		{"s3://ci-artifacts/runtime-errors/", "ci-artifacts", "runtime-errors"},
		{"bucket//nested/", "bucket", "nested"},
	}
	for _, tt := range tests {
		b, p := ParseS3Path(tt.in)
		if b != tt.bucket || p != tt.prefix {
			t.Errorf("ParseS3Path(%q) = (%q, %q), want (%q, %q)", tt.in, b, p, tt.bucket, tt.prefix)
		}
	}
}

func TestS3Config_Validate(t *testing.T) {
	if err := (&S3Config{}).Validate(); err == nil {
		t.Error("empty bucket should fail validation")
	}
	tests := []struct {
		name    string
		cfg     S3Config
		wantErr bool
	}{
		{"plain bucket", S3Config{Bucket: "ci-artifacts"}, false},
		{"minio endpoint", S3Config{Bucket: "ci-artifacts", Endpoint: "http://minio:9000", UsePathStyle: true}, false},
		{"uppercase bucket", S3Config{Bucket: "CI_Artifacts"}, true},
		{"short bucket", S3Config{Bucket: "b"}, true},
		{"endpoint without scheme", S3Config{Bucket: "ci-artifacts", Endpoint: "minio:9000"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestS3Config_ClientOptions(t *testing.T) {
	var o s3.Options
	S3Config{Bucket: "ci-artifacts", Endpoint: "http://minio:9000", UsePathStyle: true}.clientOptions(&o)
	if o.BaseEndpoint == nil || *o.BaseEndpoint != "http://minio:9000" {
		t.Errorf("BaseEndpoint = %v", o.BaseEndpoint)
	}
	if !o.UsePathStyle || o.RetryMaxAttempts != s3MaxAttempts {
		t.Errorf("options = path style %v, attempts %d", o.UsePathStyle, o.RetryMaxAttempts)
	}
}
