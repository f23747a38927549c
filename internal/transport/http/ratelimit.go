package http

import "golang.org/x/time/rate"

// newMessageLimiter builds the per-connection inbound frame limiter.
// A non-positive rate disables limiting.
func newMessageLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

func allowFrame(l *rate.Limiter) bool {
	return l == nil || l.Allow()
}
