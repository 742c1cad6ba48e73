// Package metrics provides per-run metrics collection.
//
// The Collector accumulates counters during a single harness run. It is a
// leaf package with no internal dependencies; severities are plain strings.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of the run metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Scenario lifecycle. Started counts attempts, not scenarios.
	ScenariosStarted  int64 `json:"scenariosStarted"`
	ScenariosPassed   int64 `json:"scenariosPassed"`
	ScenariosFailed   int64 `json:"scenariosFailed"`
	ScenariosRetried  int64 `json:"scenariosRetried"`
	ScenariosTimedOut int64 `json:"scenariosTimedOut"`

	// Browsing contexts
	ContextsOpened int64 `json:"contextsOpened"`
	ContextsClosed int64 `json:"contextsClosed"`

	// Captured errors
	ErrorsCaptured   int64            `json:"errorsCaptured"`
	ErrorsBySeverity map[string]int64 `json:"errorsBySeverity,omitempty"`

	// Artifact storage
	ArtifactWriteSuccess int64 `json:"artifactWriteSuccess"`
	ArtifactWriteFailure int64 `json:"artifactWriteFailure"`

	// Dimensions (informational, set at construction)
	CaptureSource  string `json:"captureSource"`
	StorageBackend string `json:"storageBackend"`
	RunID          string `json:"runId"`
}

// Collector accumulates metrics during a single run.
// Thread-safe via sync.Mutex. All methods are nil-receiver safe.
type Collector struct {
	mu sync.Mutex

	scenariosStarted  int64
	scenariosPassed   int64
	scenariosFailed   int64
	scenariosRetried  int64
	scenariosTimedOut int64

	contextsOpened int64
	contextsClosed int64

	errorsCaptured   int64
	errorsBySeverity map[string]int64

	artifactWriteSuccess int64
	artifactWriteFailure int64

	captureSource  string
	storageBackend string
	runID          string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(captureSource, storageBackend, runID string) *Collector {
	return &Collector{
		errorsBySeverity: make(map[string]int64),
		captureSource:    captureSource,
		storageBackend:   storageBackend,
		runID:            runID,
	}
}

func (c *Collector) inc(field *int64) {
	c.mu.Lock()
	*field++
	c.mu.Unlock()
}

// --- Scenario lifecycle ---

// IncScenarioStarted records the start of one scenario attempt.
func (c *Collector) IncScenarioStarted() {
	if c == nil {
		return
	}
	c.inc(&c.scenariosStarted)
}

// IncScenarioPassed records a scenario whose final attempt passed.
func (c *Collector) IncScenarioPassed() {
	if c == nil {
		return
	}
	c.inc(&c.scenariosPassed)
}

// IncScenarioFailed records a scenario whose final attempt failed.
func (c *Collector) IncScenarioFailed() {
	if c == nil {
		return
	}
	c.inc(&c.scenariosFailed)
}

// IncScenarioRetried records one retry.
func (c *Collector) IncScenarioRetried() {
	if c == nil {
		return
	}
	c.inc(&c.scenariosRetried)
}

// IncScenarioTimedOut records an attempt that hit its deadline.
func (c *Collector) IncScenarioTimedOut() {
	if c == nil {
		return
	}
	c.inc(&c.scenariosTimedOut)
}

// --- Browsing contexts ---

// IncContextOpened records a browsing context opened for an attempt.
func (c *Collector) IncContextOpened() {
	if c == nil {
		return
	}
	c.inc(&c.contextsOpened)
}

// IncContextClosed records a browsing context closed after an attempt.
func (c *Collector) IncContextClosed() {
	if c == nil {
		return
	}
	c.inc(&c.contextsClosed)
}

// --- Errors ---

// AddErrors records captured errors of one final result by severity.
func (c *Collector) AddErrors(severities ...string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	for _, s := range severities {
		c.errorsCaptured++
		c.errorsBySeverity[s]++
	}
	c.mu.Unlock()
}

// --- Artifact storage ---

// IncArtifactWriteSuccess records a successful artifact write.
func (c *Collector) IncArtifactWriteSuccess() {
	if c == nil {
		return
	}
	c.inc(&c.artifactWriteSuccess)
}

// IncArtifactWriteFailure records a failed artifact write.
func (c *Collector) IncArtifactWriteFailure() {
	if c == nil {
		return
	}
	c.inc(&c.artifactWriteFailure)
}

// --- Snapshot ---

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	bySeverity := make(map[string]int64, len(c.errorsBySeverity))
	for k, v := range c.errorsBySeverity {
		bySeverity[k] = v
	}

	return Snapshot{
		ScenariosStarted:  c.scenariosStarted,
		ScenariosPassed:   c.scenariosPassed,
		ScenariosFailed:   c.scenariosFailed,
		ScenariosRetried:  c.scenariosRetried,
		ScenariosTimedOut: c.scenariosTimedOut,

		ContextsOpened: c.contextsOpened,
		ContextsClosed: c.contextsClosed,

		ErrorsCaptured:   c.errorsCaptured,
		ErrorsBySeverity: bySeverity,

		ArtifactWriteSuccess: c.artifactWriteSuccess,
		ArtifactWriteFailure: c.artifactWriteFailure,

		CaptureSource:  c.captureSource,
		StorageBackend: c.storageBackend,
		RunID:          c.runID,
	}
}

// LeakedContexts returns opened minus closed contexts.
func (s Snapshot) LeakedContexts() int64 {
	return s.ContextsOpened - s.ContextsClosed
}
