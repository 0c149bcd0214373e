package retry

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingSleep(slept *[]time.Duration) func(context.Context, time.Duration) error {
	return func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	t.Parallel()
	var slept []time.Duration
	var out bytes.Buffer
	r := Runner{Policy: Policy{Attempts: 3, Delay: 5 * time.Second}, Out: &out, Sleep: recordingSleep(&slept)}

	calls := 0
	err := r.Do(context.Background(), "clone", func(context.Context, int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
	assert.Empty(t, out.String())
}

func TestDoRetriesThenSucceeds(t *testing.T) {
	t.Parallel()
	var slept []time.Duration
	var out bytes.Buffer
	var retried []int
	r := Runner{
		Policy:  Policy{Attempts: 3, Delay: 5 * time.Second},
		Out:     &out,
		Sleep:   recordingSleep(&slept),
		OnRetry: func(_ string, attempt int) { retried = append(retried, attempt) },
	}

	var attempts []int
	err := r.Do(context.Background(), "pip install", func(_ context.Context, attempt int) error {
		attempts = append(attempts, attempt)
		if attempt < 3 {
			return errors.New("connection reset")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, attempts)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, slept)
	assert.Equal(t, []int{2, 3}, retried)
	assert.Equal(t, 2, strings.Count(out.String(), "warning: pip install failed"))
	assert.Contains(t, out.String(), "attempt 1/3")
	assert.Contains(t, out.String(), "attempt 2/3")
}

func TestDoExhausted(t *testing.T) {
	t.Parallel()
	var slept []time.Duration
	var out bytes.Buffer
	r := Runner{Policy: Policy{Attempts: 3, Delay: time.Second}, Out: &out, Sleep: recordingSleep(&slept)}

	cause := errors.New("503")
	err := r.Do(context.Background(), "download", func(context.Context, int) error { return cause })
	require.Error(t, err)

	var exhausted *ExhaustedError
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, 3, exhausted.Attempts)
	assert.True(t, errors.Is(err, cause))
	assert.Len(t, slept, 2, "no sleep after the final attempt")
	assert.Equal(t, 3, strings.Count(out.String(), "warning: download failed"))
}

func TestDoSingleAttemptNeverSleeps(t *testing.T) {
	t.Parallel()
	var slept []time.Duration
	r := Runner{Policy: Policy{Attempts: 1, Delay: time.Hour}, Sleep: recordingSleep(&slept)}
	err := r.Do(context.Background(), "x", func(context.Context, int) error { return errors.New("no") })
	require.Error(t, err)
	assert.Empty(t, slept)
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	r := Runner{
		Policy: Policy{Attempts: 5, Delay: time.Millisecond},
		Sleep: func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}
	calls := 0
	err := r.Do(ctx, "x", func(context.Context, int) error {
		calls++
		return errors.New("fail")
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestPolicyValidate(t *testing.T) {
	t.Parallel()
	require.Error(t, Policy{Attempts: 0}.Validate())
	require.Error(t, Policy{Attempts: 1, Delay: -time.Second}.Validate())
	require.NoError(t, Policy{Attempts: 1}.Validate())

	err := Runner{Policy: Policy{}}.Do(context.Background(), "x", func(context.Context, int) error {
		t.Fatal("action must not run with an invalid policy")
		return nil
	})
	require.Error(t, err)
}

func TestSleepHonorsContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	require.NoError(t, Sleep(context.Background(), 0))
}
