// Package ratelimiter throttles inbound article submissions.
package ratelimiter

// RateLimiter reports whether one more request may proceed now.
type RateLimiter interface {
	Allow() bool
}
