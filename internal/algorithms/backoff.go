// Package algorithms holds the retry delay strategies used when a pool is
// configured to re-run failed units.
package algorithms

import (
	"math/rand"
	"sync"
	"time"
)

// maxShift bounds the exponent so 1<<attempt never overflows.
const maxShift = 62

// BackoffType selects the retry backoff algorithm.
type BackoffType int

const (
	// BackoffExponential doubles the delay on every attempt (default).
	BackoffExponential BackoffType = iota
	// BackoffJittered spreads the exponential delay by ±jitterFactor.
	BackoffJittered
	// BackoffDecorrelated picks each delay in [initial, 3*previous].
	BackoffDecorrelated
)

// String returns the lowercase name of the backoff type.
func (b BackoffType) String() string {
	switch b {
	case BackoffJittered:
		return "jittered"
	case BackoffDecorrelated:
		return "decorrelated"
	default:
		return "exponential"
	}
}

// BackoffStrategy computes the wait between two attempts of the same unit.
type BackoffStrategy interface {
	// NextDelay returns the delay before retry number attempt (0 = first retry).
	NextDelay(attempt int, lastErr error) time.Duration

	// Reset clears any state carried between attempts.
	Reset()
}

// NewBackoffStrategy builds the strategy for the given type.
// A non-positive maxDelay means "no cap" and is replaced by a day.
func NewBackoffStrategy(kind BackoffType, initialDelay, maxDelay time.Duration, jitterFactor float64) BackoffStrategy {
	if maxDelay <= 0 {
		maxDelay = 24 * time.Hour
	}
	initialDelay = clamp(initialDelay, 0, maxDelay)

	switch kind {
	case BackoffJittered:
		return &jitteredBackoff{
			initialDelay: initialDelay,
			maxDelay:     maxDelay,
			jitterFactor: clamp(jitterFactor, 0, 1),
			rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter only
		}

	case BackoffDecorrelated:
		return &decorrelatedBackoff{
			initialDelay: initialDelay,
			maxDelay:     maxDelay,
			prevDelay:    initialDelay,
			rng:          rand.New(rand.NewSource(time.Now().UnixNano())), // #nosec G404 -- jitter only
		}

	default:
		return &exponentialBackoff{initialDelay: initialDelay, maxDelay: maxDelay}
	}
}

// exponentialBackoff waits initialDelay * 2^attempt, capped at maxDelay.
type exponentialBackoff struct {
	initialDelay, maxDelay time.Duration
}

func (eb *exponentialBackoff) NextDelay(attempt int, _ error) time.Duration {
	return exponentialDelay(attempt, eb.initialDelay, eb.maxDelay)
}

func (eb *exponentialBackoff) Reset() {}

// jitteredBackoff multiplies the exponential delay by a factor in [1-j, 1+j].
type jitteredBackoff struct {
	initialDelay, maxDelay time.Duration
	jitterFactor           float64

	mu  sync.Mutex
	rng *rand.Rand
}

func (jb *jitteredBackoff) NextDelay(attempt int, _ error) time.Duration {
	if attempt < 0 {
		return 0
	}

	base := exponentialDelay(attempt, jb.initialDelay, jb.maxDelay)

	jb.mu.Lock()
	factor := 1.0 + (jb.rng.Float64()*2-1)*jb.jitterFactor
	jb.mu.Unlock()

	return clamp(time.Duration(float64(base)*factor), 0, jb.maxDelay)
}

func (jb *jitteredBackoff) Reset() {}

// decorrelatedBackoff is the "decorrelated jitter" scheme:
// sleep = min(maxDelay, random(initialDelay, prevSleep*3)).
type decorrelatedBackoff struct {
	initialDelay, maxDelay time.Duration

	mu        sync.Mutex
	prevDelay time.Duration
	rng       *rand.Rand
}

func (db *decorrelatedBackoff) NextDelay(attempt int, _ error) time.Duration {
	db.mu.Lock()
	defer db.mu.Unlock()

	if attempt <= 0 {
		db.prevDelay = db.initialDelay
		return db.initialDelay
	}

	upper := min(db.prevDelay*3, db.maxDelay)
	span := upper - db.initialDelay
	if span <= 0 {
		db.prevDelay = db.initialDelay
		return db.initialDelay
	}

	db.prevDelay = db.initialDelay + time.Duration(db.rng.Int63n(int64(span)))
	return db.prevDelay
}

func (db *decorrelatedBackoff) Reset() {
	db.mu.Lock()
	db.prevDelay = db.initialDelay
	db.mu.Unlock()
}

func exponentialDelay(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	if attempt < 0 {
		return 0
	}
	if attempt >= maxShift {
		return maxDelay
	}

	delay := initialDelay * time.Duration(int64(1)<<uint(attempt))
	if delay > maxDelay || delay < 0 {
		return maxDelay
	}
	return delay
}

func clamp[N ~int64 | ~float64](v, lo, hi N) N {
	return max(lo, min(v, hi))
}
