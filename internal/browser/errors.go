package browser

import (
	"fmt"
	"strings"
)

// browserErrorHints maps protocol error patterns to actionable hints for the
// automation caller.
var browserErrorHints = map[string]string{
	"no node with given id":   "Handle may be from a superseded extraction. Re-run extraction to get fresh handles",
	"could not find node":     "Handle may be from a superseded extraction. Re-run extraction to get fresh handles",
	"node not found":          "Handle may be from a superseded extraction. Re-run extraction to get fresh handles",
	"no clickable area":       "Element has no visible area. It may be hidden or zero-sized",
	"failed to focus":         "Element cannot receive focus. It may be disabled or hidden",
	"context canceled":        "Browser session may have closed. Reconnect and retry",
	"context deadline":        "Operation timed out. Try increasing the timeout",
	"websocket":               "Browser connection lost. Reconnect and retry",
}

// wrapBrowserError wraps a protocol error with an actionable hint when one of
// the known patterns matches.
func wrapBrowserError(err error, action string) error {
	if err == nil {
		return nil
	}
	errStr := strings.ToLower(err.Error())
	for pattern, hint := range browserErrorHints {
		if strings.Contains(errStr, pattern) {
			return fmt.Errorf("%s failed: %w\n\nHint: %s", action, err, hint)
		}
	}
	return fmt.Errorf("%s failed: %w", action, err)
}

// Failure is the structured form a protocol failure is surfaced in: the
// message plus the best-known page URL and title. Failures never cross the
// pipeline boundary as panics, and a failed pass never corrupts a selector
// map produced earlier.
type Failure struct {
	Message string `json:"message"`
	URL     string `json:"url,omitempty"`
	Title   string `json:"title,omitempty"`
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.URL != "" {
		return fmt.Sprintf("%s (page: %s)", f.Message, f.URL)
	}
	return f.Message
}

// NewFailure converts a protocol error into a Failure carrying page context.
func NewFailure(err error, url, title string) *Failure {
	if err == nil {
		return nil
	}
	return &Failure{Message: err.Error(), URL: url, Title: title}
}
