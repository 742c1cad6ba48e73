package capture

import (
	"fmt"

	"github.com/nino-chavez/brand-site-sub018/browser"
	"github.com/nino-chavez/brand-site-sub018/types"
)

// Attach subscribes the engine to the page's native error events:
// console.error calls, uncaught exceptions, unhandled rejections and failed
// requests. Cancelled requests are ignored; navigation aborts them routinely.
// Close removes the subscriptions.
func (e *Engine) Attach(page browser.Page) {
	removers := []func(){
		page.OnConsole(func(m browser.ConsoleMessage) {
			if m.Level != "error" {
				return
			}
			e.Capture(Raw{Message: m.Text, Stack: m.Stack, URL: m.URL, Source: types.SourceConsole})
		}),
		page.OnPageError(func(pe browser.PageError) {
			source := types.SourcePageError
			if pe.Rejection {
				source = types.SourceUnhandledRejection
			}
			e.Capture(Raw{Message: pe.Message, Stack: pe.Stack, URL: pe.URL, Source: source})
		}),
		page.OnRequestFailed(func(f browser.RequestFailure) {
			if f.Canceled {
				return
			}
			e.Capture(Raw{Message: RequestFailedMessage(f), URL: f.URL, Source: types.SourceNetwork})
		}),
	}

	e.mu.Lock()
	e.detach = append(e.detach, removers...)
	e.mu.Unlock()
}

// RequestFailedMessage formats a failed request so that it classifies as a
// network error. The URL is kept out of the message: path segments such as
// "/context/" would otherwise match an earlier rule.
func RequestFailedMessage(f browser.RequestFailure) string {
	method := f.Method
	if method == "" {
		method = "GET"
	}
	return fmt.Sprintf("Network request failed: %s %s", method, f.ErrorText)
}
