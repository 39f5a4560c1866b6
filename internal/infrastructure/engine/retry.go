package engine

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"
)

// BackoffType selects how the wait between publish attempts grows.
type BackoffType string

const (
	BackoffNone        BackoffType = "none"
	BackoffLinear      BackoffType = "linear"
	BackoffExponential BackoffType = "exponential"
)

// Delay returns the wait after the given failed attempt (1-based). The
// result never exceeds ceiling when ceiling is positive.
func (b BackoffType) Delay(attempt int, base, ceiling time.Duration) time.Duration {
	var d time.Duration
	switch b {
	case BackoffLinear:
		d = time.Duration(attempt) * base
	case BackoffExponential:
		// Beyond 2^30 the shift only risks overflow.
		if attempt > 30 {
			return capDelay(ceiling, ceiling)
		}
		d = base << attempt
	default:
		d = base
	}
	return capDelay(d, ceiling)
}

func capDelay(d, ceiling time.Duration) time.Duration {
	if ceiling > 0 && (d > ceiling || d < 0) {
		return ceiling
	}
	return d
}

// shouldRetry reports whether a failed publish may succeed when repeated.
// Publisher errors decide for themselves through Retryable; otherwise only
// network-level failures qualify.
func shouldRetry(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var r interface{ Retryable() bool }
	if errors.As(err, &r) {
		return r.Retryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsTemporary {
		return true
	}

	for _, errno := range []syscall.Errno{syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ECONNABORTED, syscall.ETIMEDOUT} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}
