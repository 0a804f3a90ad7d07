package common

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aswin0605itsme-droid/Eggai/internal/service"
)

var fastRetry = service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

func TestWithRetry(t *testing.T) {
	transient := &RetryableError{Err: errors.New("503"), Retryable: true}

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{"succeeds first time", []error{nil}, 1, nil},
		{"recovers after transient", []error{transient, nil}, 2, nil},
		{"exhausts attempts", []error{transient, transient, transient}, 3, ErrMaxRetries},
		{"non-retryable stops", []error{&RetryableError{Err: ErrProviderFailure, Retryable: false}}, 1, ErrProviderFailure},
		{"malformed is not retried", []error{fmt.Errorf("decode: %w", ErrMalformedResponse)}, 1, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				err := tt.errs[calls]
				calls++
				return err
			}, fastRetry)

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestWithRetryCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return &RetryableError{Err: errors.New("flaky"), Retryable: true}
	}, service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Second})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWithRetryDeadlineTooClose(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	err := WithRetry(ctx, func() error {
		calls++
		return &RetryableError{Err: ErrProviderFailure, Retryable: true}
	}, service.RetryOptions{MaxAttempts: 5, InitialDelay: 10 * time.Second, MaxDelay: time.Minute})

	assert.Equal(t, 1, calls)
	require.ErrorIs(t, err, ErrProviderFailure)
	assert.NotErrorIs(t, err, ErrMaxRetries)
}

func TestWithRetryPlainErrorNotRetried(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return errors.New("bad request")
	}, fastRetry)

	assert.Equal(t, 1, calls)
	require.EqualError(t, err, "bad request")
}

func TestJitter(t *testing.T) {
	for range 50 {
		d := jitter(100 * time.Millisecond)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.Less(t, d, 100*time.Millisecond)
	}
	assert.Equal(t, time.Duration(1), jitter(1))
}

func TestUserMessage(t *testing.T) {
	err := fmt.Errorf("analyze: %w", NewUserError("Please enter a batch number.", ErrInvalidInput))
	assert.Equal(t, "Please enter a batch number.", UserMessage(err))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
	assert.Empty(t, UserMessage(nil))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(ErrMalformedResponse))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(errors.New("plain")))
}
