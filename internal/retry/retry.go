// Package retry re-runs transient, network-touching actions with a fixed delay.
package retry

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/conn-castle/webui-installer/internal/messages"
)

// Policy bounds how often and how far apart an action is attempted.
type Policy struct {
	Attempts int
	Delay    time.Duration
}

// Validate checks that the policy allows at least one attempt.
func (p Policy) Validate() error {
	if p.Attempts < 1 {
		return fmt.Errorf(messages.RetryAttemptsInvalid, p.Attempts)
	}
	if p.Delay < 0 {
		return fmt.Errorf(messages.RetryDelayInvalid, p.Delay)
	}
	return nil
}

// ExhaustedError is returned when every attempt failed. Err is the last failure.
type ExhaustedError struct {
	Label    string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf(messages.RetryExhaustedFmt, e.Label, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Runner applies a Policy to actions.
type Runner struct {
	Policy Policy
	// Out receives one warning per failed attempt.
	Out io.Writer
	// Sleep waits between attempts; nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
	// OnRetry, when set, is called before each re-attempt.
	OnRetry func(label string, attempt int)
}

// Do runs action until it succeeds or the policy's attempts are used up.
// The delay applies only between attempts. A cancelled context stops further
// attempts and is returned as-is.
func (r Runner) Do(ctx context.Context, label string, action func(ctx context.Context, attempt int) error) error {
	if err := r.Policy.Validate(); err != nil {
		return err
	}
	var last error
	for attempt := 1; attempt <= r.Policy.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		last = action(ctx, attempt)
		if last == nil {
			return nil
		}
		if ctx.Err() != nil {
			return last
		}
		r.printf(messages.RetryAttemptFailedFmt, label, attempt, r.Policy.Attempts, last)
		if attempt == r.Policy.Attempts {
			break
		}
		r.printf(messages.RetryWaitingFmt, label, r.Policy.Delay)
		if r.OnRetry != nil {
			r.OnRetry(label, attempt+1)
		}
		if err := r.sleep(ctx, r.Policy.Delay); err != nil {
			return err
		}
	}
	return &ExhaustedError{Label: label, Attempts: r.Policy.Attempts, Err: last}
}

func (r Runner) printf(format string, args ...any) {
	if r.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(r.Out, format, args...)
}

func (r Runner) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	return Sleep(ctx, d)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
