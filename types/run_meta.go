package types

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// RunMeta identifies one harness invocation.
type RunMeta struct {
	// RunID is the identifier shared by logs, stored artifacts and notifications.
	RunID string
	// StartedAt is the wall-clock start of the run.
	StartedAt time.Time
}

// NewRunMeta returns run metadata with a fresh run id.
func NewRunMeta(now time.Time) *RunMeta {
	return &RunMeta{RunID: uuid.NewString(), StartedAt: now}
}

// Validate checks that the run id is present.
func (r *RunMeta) Validate() error {
	if r == nil || r.RunID == "" {
		return errors.New("run_id must be non-empty")
	}
	return nil
}
