// Package retrylimit throttles calls to an external tool and retries the
// ones that fail transiently, slowing down further when the remote side
// reports throttling.
//
//	lim := retrylimit.NewAdaptiveLimiter(2, 0.5, 4, 0.5, 0.5)
//	err := retrylimit.WithRetry(ctx, func() error { return fetch() }, lim, retrylimit.DefaultConfig())
package retrylimit

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter is a token bucket whose rate grows on success and shrinks
// when the remote side throttles us.
type AdaptiveLimiter struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
	cooldown  time.Duration
}

// NewAdaptiveLimiter takes rates in calls per second. stepDown is the
// multiplier applied after throttling (0.5 halves the rate).
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if min <= 0 {
		min = 0.1
	}
	initial = clamp(initial, min, max)
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, burstFor(initial)),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
		cooldown: 10 * time.Second,
	}
}

// Wait blocks until a token is available or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > a.cooldown {
		a.setLimit(a.limiter.Limit() + a.stepUp)
	}
}

func (a *AdaptiveLimiter) Throttled() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.setLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current calls per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) setLimit(l rate.Limit) {
	l = clamp(l, a.minLimit, a.maxLimit)
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(burstFor(l))
	}
}

// FatalError stops retries immediately.
type FatalError struct {
	Err error
}

func (f *FatalError) Error() string { return f.Err.Error() }
func (f *FatalError) Unwrap() error { return f.Err }

// Fatal marks err as not worth retrying.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// Class tells WithRetry what to do with a failed attempt.
type Class int

const (
	Retry Class = iota
	Throttle
	Stop
)

// Classifier inspects a failed attempt.
type Classifier func(error) Class

// DefaultClassifier stops on FatalError and context errors and retries the rest.
func DefaultClassifier(err error) Class {
	var fatal *FatalError
	switch {
	case errors.As(err, &fatal):
		return Stop
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return Stop
	default:
		return Retry
	}
}

type Config struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	ThrottleDelay time.Duration
	Multiplier    float64
	Jitter        bool
	Classify      Classifier
	OnRetry       func(attempt int, err error)
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:   3,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		ThrottleDelay: 2 * time.Second,
		Multiplier:    2.0,
		Jitter:        true,
		Classify:      DefaultClassifier,
	}
}

// WithRetry runs fn until it succeeds, returns a Stop-class error, ctx is
// done, or cfg.MaxAttempts is used up. lim may be nil.
func WithRetry(ctx context.Context, fn func() error, lim *AdaptiveLimiter, cfg Config) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Classify == nil {
		cfg.Classify = DefaultClassifier
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 1
	}

	delay := cfg.InitialDelay
	var last error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		last = fn()
		if last == nil {
			if lim != nil {
				lim.Success()
			}
			if attempt > 1 {
				log.Printf("[Retry] Success after %d attempts", attempt)
			}
			return nil
		}

		class := cfg.Classify(last)
		if class == Stop {
			return last
		}
		if attempt == cfg.MaxAttempts {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, last)
		}

		wait := delay
		if class == Throttle {
			if lim != nil {
				lim.Throttled()
				log.Printf("[Retry] Throttled (attempt %d). New limit: %.2f rps", attempt, lim.CurrentLimit())
			}
			wait = max(wait, cfg.ThrottleDelay)
		} else {
			log.Printf("[Retry] Attempt %d failed: %v. Sleeping %v", attempt, last, wait)
		}
		if cfg.Jitter {
			wait = addJitter(wait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		delay = min(time.Duration(float64(delay)*cfg.Multiplier), cfg.MaxDelay)
	}

	return fmt.Errorf("giving up after %d attempts: %w", cfg.MaxAttempts, last)
}

// addJitter adds up to 25% of delay.
func addJitter(delay time.Duration) time.Duration {
	if delay < 4 {
		return delay
	}
	return delay + rand.N(delay/4)
}

func clamp(l, lo, hi rate.Limit) rate.Limit {
	if hi > 0 && l > hi {
		return hi
	}
	if l < lo {
		return lo
	}
	return l
}

func burstFor(l rate.Limit) int {
	return max(1, int(l))
}
