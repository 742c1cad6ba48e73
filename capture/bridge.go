package capture

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nino-chavez/brand-site-sub018/browser"
	"github.com/nino-chavez/brand-site-sub018/classify"
	"github.com/nino-chavez/brand-site-sub018/types"
)

// Bridge globals installed in the page.
const (
	BridgeGlobal    = "__RUNTIME_ERRORS__"
	UninstallGlobal = "__RUNTIME_ERRORS_UNINSTALL__"
)

// BridgeEntry is one raw entry of window.__RUNTIME_ERRORS__.
type BridgeEntry struct {
	Timestamp int64           `json:"timestamp"`
	Message   string          `json:"message"`
	Type      types.ErrorType `json:"type"`
	Severity  types.Severity  `json:"severity"`
	Source    string          `json:"source"`
	Args      []string        `json:"args,omitempty"`
	Filename  string          `json:"filename,omitempty"`
	Lineno    int             `json:"lineno,omitempty"`
	Colno     int             `json:"colno,omitempty"`
	Stack     string          `json:"stack,omitempty"`
}

// Raw converts the entry for Engine.Capture. The in-page type and severity
// are dropped; the engine reclassifies from the message with the same rules.
func (b BridgeEntry) Raw() Raw {
	source := types.SourceBridge
	switch b.Source {
	case "console":
		source = types.SourceConsole
	case "error":
		source = types.SourcePageError
	case "unhandledrejection":
		source = types.SourceUnhandledRejection
	case "fetch":
		source = types.SourceNetwork
	}
	stack := b.Stack
	if stack == "" && b.Filename != "" && b.Lineno > 0 {
		stack = fmt.Sprintf("    at %s:%d:%d", b.Filename, b.Lineno, b.Colno)
	}
	return Raw{
		Message:   b.Message,
		Stack:     stack,
		URL:       b.Filename,
		Source:    source,
		Timestamp: b.Timestamp,
	}
}

// ReadBridge pulls the bridge array from the page. A page without the
// bridge yields an empty slice.
func ReadBridge(ctx context.Context, page browser.Page) ([]BridgeEntry, error) {
	var entries []BridgeEntry
	js := fmt.Sprintf(`() => Array.isArray(window.%[1]s) ? window.%[1]s : []`, BridgeGlobal)
	if err := page.Evaluate(ctx, js, &entries); err != nil {
		return nil, fmt.Errorf("read bridge: %w", err)
	}
	return entries, nil
}

// UninstallBridge restores every page global the bridge decorated.
func UninstallBridge(ctx context.Context, page browser.Page) error {
	js := fmt.Sprintf(`() => { if (typeof window.%[1]s === 'function') { window.%[1]s(); return true; } return false; }`, UninstallGlobal)
	return page.Evaluate(ctx, js, nil)
}

var (
	bridgeOnce sync.Once
	bridge     string
)

// BridgeScript returns the init script that installs the in-page bridge.
//
// It decorates console.error and window.fetch and listens for error and
// unhandledrejection. Originals are kept, and __RUNTIME_ERRORS_UNINSTALL__
// puts each one back and removes both listeners.
func BridgeScript() string {
	bridgeOnce.Do(func() {
		r := strings.NewReplacer(
			"$CLASSIFY", classify.Script(),
			"$ERRORS", BridgeGlobal,
			"$UNINSTALL", UninstallGlobal,
		)
		bridge = r.Replace(bridgeTemplate)
	})
	return bridge
}

const bridgeTemplate = `(function () {
  if (window.$UNINSTALL) { return; }
  $CLASSIFY
  var errors = window.$ERRORS = window.$ERRORS || [];
  function push(entry) {
    var c = __rtClassify(entry.message);
    entry.type = c.type;
    entry.severity = c.severity;
    entry.timestamp = Date.now();
    errors.push(entry);
  }
  function str(v) {
    try {
      if (v instanceof Error) { return v.message; }
      if (typeof v === 'object') { return JSON.stringify(v); }
      return String(v);
    } catch (e) { return String(v); }
  }

  var originalError = console.error;
  console.error = function () {
    var args = Array.prototype.slice.call(arguments);
    var stack;
    for (var i = 0; i < args.length; i++) {
      if (args[i] instanceof Error) { stack = args[i].stack; break; }
    }
    push({ source: 'console', message: args.map(str).join(' '), args: args.map(str), stack: stack });
    return originalError.apply(this, arguments);
  };

  function onError(event) {
    push({
      source: 'error',
      message: event.message || str(event.error),
      filename: event.filename,
      lineno: event.lineno,
      colno: event.colno,
      stack: event.error && event.error.stack
    });
  }
  function onRejection(event) {
    var reason = event.reason;
    push({
      source: 'unhandledrejection',
      message: 'Unhandled promise rejection: ' + str(reason),
      stack: reason && reason.stack
    });
  }
  window.addEventListener('error', onError);
  window.addEventListener('unhandledrejection', onRejection);

  var originalFetch = window.fetch;
  if (typeof originalFetch === 'function') {
    window.fetch = function () {
      return originalFetch.apply(this, arguments).catch(function (err) {
        push({ source: 'fetch', message: 'Network error: fetch failed: ' + str(err), stack: err && err.stack });
        throw err;
      });
    };
  }

  window.$UNINSTALL = function () {
    console.error = originalError;
    if (typeof originalFetch === 'function') { window.fetch = originalFetch; }
    window.removeEventListener('error', onError);
    window.removeEventListener('unhandledrejection', onRejection);
    delete window.$UNINSTALL;
  };
})();`
