package lode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justapithecus/lode/lode"
)

// ErrNoSummaryFound is returned when no summary record exists in the dataset.
var ErrNoSummaryFound = errors.New("no run summary records found")

// QueryErrors reads every captured-error record, optionally restricted to one run.
// Records are returned in snapshot order, de-duplicated by error_id.
func QueryErrors(ctx context.Context, ds lode.Dataset, runID string) ([]map[string]any, error) {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return nil, wrap(OpQuery, "snapshots", err)
	}

	var out []map[string]any
	seen := make(map[string]struct{})
	for _, snap := range snapshots {
		if !snapshotMatchesFilter(snap, "record_kind", RecordKindError) {
			continue
		}
		if !snapshotMatchesFilter(snap, "run_id", runID) {
			continue
		}
		records, err := readRecords(ctx, ds, snap)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			if record["record_kind"] != RecordKindError {
				continue
			}
			if runID != "" && toString(record["run_id"]) != runID {
				continue
			}
			id := toString(record["error_id"])
			if _, dup := seen[id]; dup && id != "" {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, record)
		}
	}
	return out, nil
}

// QueryLatestSummary finds the most recent run summary record.
// Filters by runID if non-empty.
func QueryLatestSummary(ctx context.Context, ds lode.Dataset, runID string) (map[string]any, error) {
	snapshots, err := ds.Snapshots(ctx)
	if err != nil {
		return nil, wrap(OpQuery, "snapshots", err)
	}

	// snapshots are ordered by creation time
	for i := len(snapshots) - 1; i >= 0; i-- {
		snap := snapshots[i]
		if !snapshotMatchesFilter(snap, "record_kind", RecordKindSummary) {
			continue
		}
		if !snapshotMatchesFilter(snap, "run_id", runID) {
			continue
		}
		records, err := readRecords(ctx, ds, snap)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			if record["record_kind"] != RecordKindSummary {
				continue
			}
			if runID != "" && toString(record["run_id"]) != runID {
				continue
			}
			return record, nil
		}
	}
	return nil, ErrNoSummaryFound
}

func readRecords(ctx context.Context, ds lode.Dataset, snap *lode.DatasetSnapshot) ([]map[string]any, error) {
	data, err := ds.Read(ctx, snap.ID)
	if err != nil {
		return nil, wrap(OpQuery, fmt.Sprintf("snapshot/%s", snap.ID), err)
	}
	records := make([]map[string]any, 0, len(data))
	for _, item := range data {
		if record, ok := item.(map[string]any); ok {
			records = append(records, record)
		}
	}
	return records, nil
}

// snapshotMatchesFilter is a coarse pre-filter on manifest paths.
// Record fields are authoritative.
func snapshotMatchesFilter(snap *lode.DatasetSnapshot, key, value string) bool {
	if value == "" {
		return true
	}
	for _, f := range snap.Manifest.Files {
		if matchesPartitionValue(f.Path, key, value) {
			return true
		}
	}
	return false
}

// matchesPartitionValue matches an exact key=value path segment, so
// run_id=run-1 does not match run_id=run-10.
func matchesPartitionValue(path, key, value string) bool {
	segment := key + "=" + value
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
