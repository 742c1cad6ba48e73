// Package capture turns raw page error events into classified
// CapturedError records.
//
// An Engine belongs to exactly one browsing-context session. It is safe for
// concurrent use: page events arrive on driver goroutines while the runner
// reads snapshots.
package capture

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nino-chavez/brand-site-sub018/classify"
	"github.com/nino-chavez/brand-site-sub018/types"
)

// DefaultMaxHistory bounds the error history when Config.MaxHistory is zero.
const DefaultMaxHistory = 100

// Config configures an Engine.
type Config struct {
	// MaxHistory is the FIFO history bound. Zero means DefaultMaxHistory.
	MaxHistory int
	// UserAgent is stamped on every captured error.
	UserAgent string
	// Now overrides the clock (tests).
	Now func() time.Time
}

// Raw is an unclassified error as observed on the page.
type Raw struct {
	Message string
	Stack   string
	URL     string
	Source  types.ErrorSource
	// Timestamp in epoch ms. Zero means capture time.
	Timestamp int64
}

// Filter selects errors by exact match. Zero-valued fields are ignored and
// set fields are AND-combined.
type Filter struct {
	Type     types.ErrorType
	Severity types.Severity
	Source   types.ErrorSource
}

func (f Filter) match(e types.CapturedError) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Severity != "" && e.Severity != f.Severity {
		return false
	}
	if f.Source != "" && e.Source != f.Source {
		return false
	}
	return true
}

// Listener is called synchronously for every captured error. It must not block.
type Listener func(types.CapturedError)

// Engine classifies and stores errors for one session.
type Engine struct {
	cfg Config

	mu        sync.Mutex
	history   []types.CapturedError
	listeners map[int]Listener
	nextID    int
	detach    []func()
}

// New creates an engine.
func New(cfg Config) *Engine {
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{
		cfg:       cfg,
		history:   make([]types.CapturedError, 0, cfg.MaxHistory),
		listeners: map[int]Listener{},
	}
}

// SetUserAgent updates the user agent stamped on subsequent errors.
func (e *Engine) SetUserAgent(ua string) {
	e.mu.Lock()
	e.cfg.UserAgent = ua
	e.mu.Unlock()
}

// Capture classifies raw, records it and notifies listeners.
func (e *Engine) Capture(raw Raw) types.CapturedError {
	typ, sev := classify.Apply(raw.Message)
	ts := raw.Timestamp
	if ts == 0 {
		ts = e.cfg.Now().UnixMilli()
	}
	source := raw.Source
	if source == "" {
		source = types.SourceConsole
	}

	e.mu.Lock()
	ce := types.CapturedError{
		ID:        fmt.Sprintf("error_%d_%s", ts, uuid.NewString()[:8]),
		Timestamp: ts,
		Message:   raw.Message,
		Stack:     raw.Stack,
		Type:      typ,
		Severity:  sev,
		Context: types.ErrorContext{
			ComponentName:  ComponentName(raw.Stack),
			Location:       Location(raw.Stack, raw.URL),
			PreviousErrors: len(e.history),
		},
		URL:       raw.URL,
		UserAgent: e.cfg.UserAgent,
		Source:    source,
	}
	if len(e.history) >= e.cfg.MaxHistory {
		e.history = append(e.history[:0], e.history[len(e.history)-e.cfg.MaxHistory+1:]...)
	}
	e.history = append(e.history, ce)
	listeners := make([]Listener, 0, len(e.listeners))
	for _, id := range sortedKeys(e.listeners) {
		listeners = append(listeners, e.listeners[id])
	}
	e.mu.Unlock()

	for _, l := range listeners {
		l(ce)
	}
	return ce
}

// Subscribe registers a listener. The returned func unsubscribes it.
func (e *Engine) Subscribe(l Listener) (unsubscribe func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextID
	e.nextID++
	e.listeners[id] = l
	return func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	}
}

// Errors returns a snapshot of the history matching f, oldest first.
func (e *Engine) Errors(f Filter) []types.CapturedError {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]types.CapturedError, 0, len(e.history))
	for _, ce := range e.history {
		if f.match(ce) {
			out = append(out, ce)
		}
	}
	return out
}

// ByType returns the errors of type t.
func (e *Engine) ByType(t types.ErrorType) []types.CapturedError {
	return e.Errors(Filter{Type: t})
}

// BySeverity returns the errors of severity s.
func (e *Engine) BySeverity(s types.Severity) []types.CapturedError {
	return e.Errors(Filter{Severity: s})
}

// Count returns the history length.
func (e *Engine) Count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.history)
}

// Clear empties the history. Listeners and page subscriptions stay.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.history = e.history[:0]
	e.mu.Unlock()
}

// HasCritical reports whether any stored error is CRITICAL.
func (e *Engine) HasCritical() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return types.CountCritical(e.history) > 0
}

// Close removes every page subscription installed by Attach, drops all
// listeners and clears the history.
func (e *Engine) Close() {
	e.mu.Lock()
	detach := e.detach
	e.detach = nil
	e.listeners = map[int]Listener{}
	e.history = e.history[:0]
	e.mu.Unlock()

	for _, d := range detach {
		d()
	}
}

func sortedKeys(m map[int]Listener) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

var (
	// "    at Gallery (http://host/app.js:10:5)"
	frameNamed = regexp.MustCompile(`^\s*at\s+(?:new\s+)?([\w$.<>]+)\s+\((.+?)\)\s*$`)
	// "    at http://host/app.js:10:5"
	frameBare = regexp.MustCompile(`^\s*at\s+(\S+:\d+:\d+)\s*$`)
)

// ComponentName returns the first PascalCase function name in a stack,
// which for React stacks is the nearest component. Empty if none.
func ComponentName(stack string) string {
	for _, line := range strings.Split(stack, "\n") {
		m := frameNamed.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name := m[1]
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		if name != "" && name[0] >= 'A' && name[0] <= 'Z' {
			return name
		}
	}
	return ""
}

// Location returns the top frame location of a stack, falling back to url.
func Location(stack, url string) string {
	for _, line := range strings.Split(stack, "\n") {
		if m := frameNamed.FindStringSubmatch(line); m != nil {
			return m[2]
		}
		if m := frameBare.FindStringSubmatch(line); m != nil {
			return m[1]
		}
	}
	return url
}
