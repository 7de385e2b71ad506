package llm

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRateLimit = errors.New("429: resource exhausted")

func always(error) bool { return true }

func TestRetryPolicySucceedsFirstTry(t *testing.T) {
	var slept []time.Duration
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: func(d time.Duration) { slept = append(slept, d) }}

	calls := 0
	err := p.Do(func() error { calls++; return nil }, always)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestRetryPolicyExponentialBackoff(t *testing.T) {
	var slept []time.Duration
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: func(d time.Duration) { slept = append(slept, d) }}

	calls := 0
	err := p.Do(func() error { calls++; return errRateLimit }, always)
	require.ErrorIs(t, err, errRateLimit)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, slept)
}

func TestRetryPolicyRecoversMidway(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, Sleep: func(time.Duration) {}}

	calls := 0
	err := p.Do(func() error {
		calls++
		if calls < 3 {
			return errRateLimit
		}
		return nil
	}, always)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicyStopsOnNonRetryable(t *testing.T) {
	fatal := errors.New("invalid argument")
	var slept []time.Duration
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, Sleep: func(d time.Duration) { slept = append(slept, d) }}

	calls := 0
	err := p.Do(func() error { calls++; return fatal }, func(err error) bool { return errors.Is(err, errRateLimit) })
	require.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestDisabledClientFailsFast(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())

	_, err := c.Generate(t.Context(), "prompt")
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = c.Embed(t.Context(), "text")
	assert.ErrorIs(t, err, ErrDisabled)

	_, err = c.RequestWorldCall(t.Context(), "message")
	assert.ErrorIs(t, err, ErrDisabled)
}
