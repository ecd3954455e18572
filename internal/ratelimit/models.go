// Package ratelimit enforces sliding-window request quotas keyed by client
// IP for public reads and by participant for authenticated writes.
package ratelimit

import "time"

// Class groups endpoints that share a quota.
type Class string

const (
	ClassRead  Class = "read"
	ClassWrite Class = "write"
)

// Limit is the number of requests allowed per Window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Result is the outcome of one quota check.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int
}

func newResult(allowed bool, limit, remaining int, resetAt, now time.Time) *Result {
	r := &Result{
		Allowed:   allowed,
		Limit:     limit,
		Remaining: remaining,
		ResetAt:   resetAt,
	}
	if !allowed {
		if secs := int(resetAt.Sub(now).Seconds()); secs > 0 {
			r.RetryAfter = secs
		} else {
			r.RetryAfter = 1
		}
	}
	return r
}
