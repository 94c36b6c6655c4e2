//go:build !windows

package debug

import (
	"log/slog"
	"time"
)

// StartMemLogger is a no-op outside Windows; the goroutine logger already
// covers heap stats there.
func StartMemLogger(time.Duration, *slog.Logger) {}
