package degraded

import (
	"time"

	"github.com/kjstillabower/travel-planner-service/internal/traffic"
)

// Policy decides when the recent upstream error rate marks a service as degraded.
// A zero Window or ErrorPct disables the check.
type Policy struct {
	Window   time.Duration
	ErrorPct int
}

// RecordSuccess records a request whose upstream dependencies answered.
func RecordSuccess() {
	traffic.RecordSuccess()
}

// RecordError records a request that failed on an upstream dependency.
func RecordError() {
	traffic.RecordError()
}

// ErrorRate returns (errorCount, totalCount) within the window.
func ErrorRate(window time.Duration) (errors, total int) {
	return traffic.ErrorRate(window)
}

// Reset clears all recorded data. For tests only.
func Reset() {
	traffic.Reset()
}

// Enabled reports whether the policy evaluates anything.
func (p Policy) Enabled() bool {
	return p.Window > 0 && p.ErrorPct > 0
}

// Breached reports whether errors/total reaches the policy threshold, along with the observed percentage.
func (p Policy) Breached(errors, total int) (bool, float64) {
	if !p.Enabled() || total == 0 {
		return false, 0
	}
	pct := float64(errors) * 100 / float64(total)
	return pct >= float64(p.ErrorPct), pct
}

// Check evaluates the policy against the process-wide traffic tracker.
func (p Policy) Check() (bool, float64) {
	if !p.Enabled() {
		return false, 0
	}
	return p.Breached(ErrorRate(p.Window))
}
