package savegame

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"modernc.org/sqlite"
)

// ErrBusy is wrapped by store errors that may succeed if retried, such as a
// SQLite database locked by another process.
var ErrBusy = errors.New("savegame store busy")

// SQLite primary result codes for a locked database.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// Retry configures how Write retries a busy store.
type Retry struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	MaxAttempts int

	// InitialBackoff is the wait before the second attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps the wait between attempts.
	MaxBackoff time.Duration

	// BackoffFactor multiplies the wait after each attempt.
	BackoffFactor float64

	// Jitter is the random jitter factor (0.0-1.0).
	Jitter float64

	// Retryable overrides IsTransient when set.
	Retryable func(error) bool
}

// DefaultRetry is short enough to sit inside a game turn.
var DefaultRetry = Retry{
	MaxAttempts:    3,
	InitialBackoff: 20 * time.Millisecond,
	MaxBackoff:     250 * time.Millisecond,
	BackoffFactor:  2.0,
	Jitter:         0.1,
}

// NoRetry makes a single attempt.
var NoRetry = Retry{MaxAttempts: 1}

// IsTransient reports whether err is worth retrying.
func IsTransient(err error) bool {
	return errors.Is(err, ErrBusy)
}

// busy wraps SQLite lock errors with ErrBusy.
func busy(err error) error {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() & 0xff {
		case sqliteBusy, sqliteLocked:
			return fmt.Errorf("%w: %w", ErrBusy, err)
		}
	}
	return err
}

// Do calls fn until it succeeds, returns a non-retryable error, attempts
// run out or ctx is done. It returns the number of attempts made.
func (r Retry) Do(ctx context.Context, fn func(context.Context) error) (int, error) {
	retryable := r.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	attempts := max(r.MaxAttempts, 1)
	backoff := r.InitialBackoff

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return attempt, ctxErr
		}
		if err = fn(ctx); err == nil {
			return attempt + 1, nil
		}
		if !retryable(err) {
			return attempt + 1, err
		}
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return attempt + 1, ctx.Err()
		case <-time.After(jittered(backoff, r.Jitter)):
		}
		backoff = time.Duration(float64(backoff) * r.BackoffFactor)
		if r.MaxBackoff > 0 && backoff > r.MaxBackoff {
			backoff = r.MaxBackoff
		}
	}
	return attempts, fmt.Errorf("after %d attempts: %w", attempts, err)
}

// jittered returns base +/- base*jitter*random.
func jittered(base time.Duration, jitter float64) time.Duration {
	if jitter <= 0 {
		return base
	}
	return time.Duration(float64(base) + float64(base)*jitter*(rand.Float64()*2-1))
}
