package lifecycle

import (
	"sync/atomic"
	"time"
)

var (
	shuttingDown atomic.Bool
	startedAt    atomic.Int64
)

func init() {
	MarkStarted(time.Now())
}

// SetShuttingDown sets the drain flag on SIGTERM/SIGINT.
// While true, /health reports shutting-down with 503.
func SetShuttingDown(v bool) {
	shuttingDown.Store(v)
}

// IsShuttingDown returns true if the process is draining and should not receive new traffic.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}

// MarkStarted records the process start time reported by Uptime.
func MarkStarted(t time.Time) {
	startedAt.Store(t.UnixNano())
}

// Uptime returns the time elapsed since MarkStarted, truncated to seconds.
func Uptime(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, startedAt.Load())).Truncate(time.Second)
}
