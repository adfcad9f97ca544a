package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	errs "tweetarchiver/pkg/errors"
)

func TestConstantBackoff(t *testing.T) {
	backoff := &ConstantBackoff{Delay: 250 * time.Millisecond}

	if delay := backoff.NextDelay(0); delay != 0 {
		t.Errorf("Expected zero delay before the first attempt, got %v", delay)
	}
	for attempt := 1; attempt <= 5; attempt++ {
		if delay := backoff.NextDelay(attempt); delay != 250*time.Millisecond {
			t.Errorf("Attempt %d: expected 250ms, got %v", attempt, delay)
		}
	}
}

func TestExponentialBackoff(t *testing.T) {
	backoff := &ExponentialBackoff{
		BaseDelay:    100 * time.Millisecond,
		MaxDelay:     1 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.0, // No jitter for predictable testing
	}

	tests := []struct {
		attempt     int
		expected    time.Duration
		description string
	}{
		{1, 100 * time.Millisecond, "First attempt"},
		{2, 200 * time.Millisecond, "Second attempt"},
		{3, 400 * time.Millisecond, "Third attempt"},
		{4, 800 * time.Millisecond, "Fourth attempt"},
		{5, 1 * time.Second, "Fifth attempt (capped at max)"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			if delay := backoff.NextDelay(test.attempt); delay != test.expected {
				t.Errorf("Expected %v, got %v", test.expected, delay)
			}
		})
	}
}

func TestRetryWithSuccess(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if err != nil {
		t.Errorf("Expected success after retries, got error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryWithMaxAttemptsExceeded(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		return errors.New("persistent error")
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if err == nil {
		t.Error("Expected error when max attempts exceeded")
	}
	if attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", attempts)
	}
}

func TestRetryTiming(t *testing.T) {
	attempts := 0
	op := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	delay := 30 * time.Millisecond
	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: delay},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	}

	start := time.Now()
	if err := Do(op, cfg); err != nil {
		t.Fatalf("Expected success, got: %v", err)
	}
	elapsed := time.Since(start)

	// Two failures mean two full delay periods before the third attempt
	if elapsed < 2*delay {
		t.Errorf("Expected at least %v elapsed, got %v", 2*delay, elapsed)
	}
}

func TestRetryWithNonRetryableError(t *testing.T) {
	attempts := 0
	authError := &errs.Error{
		Type:    errs.ErrorTypeAuth,
		Message: "authentication required",
		Code:    401,
	}
	op := func() error {
		attempts++
		return authError
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     DefaultRetryIf,
		Context:     context.Background(),
	}

	err := Do(op, cfg)
	if err == nil {
		t.Error("Expected the auth error to surface")
	}
	if attempts != 1 {
		t.Errorf("Expected exactly 1 attempt for a non-retryable error, got %d", attempts)
	}
}

func TestDefaultRetryIf(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"network error", &errs.Error{Type: errs.ErrorTypeNetwork}, true},
		{"rate limit error", &errs.Error{Type: errs.ErrorTypeRateLimit}, true},
		{"server error", &errs.Error{Type: errs.ErrorTypeServerError}, true},
		{"auth error", &errs.Error{Type: errs.ErrorTypeAuth}, false},
		{"not found error", &errs.Error{Type: errs.ErrorTypeNotFound}, false},
		{"parsing error", &errs.Error{Type: errs.ErrorTypeParsing}, false},
		{"context canceled", context.Canceled, false},
		{"deadline exceeded", context.DeadlineExceeded, false},
		{"plain error", errors.New("something"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryIf(tt.err); got != tt.retryable {
				t.Errorf("DefaultRetryIf(%v) = %v, want %v", tt.err, got, tt.retryable)
			}
		})
	}
}

func TestRetryWithContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	attempts := 0
	op := func() error {
		attempts++
		if attempts == 1 {
			cancel()
		}
		return errors.New("temporary error")
	}

	cfg := &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Second},
		RetryIf:     func(err error) bool { return true },
		Context:     ctx,
	}

	err := Do(op, cfg)
	if err == nil {
		t.Error("Expected cancellation error")
	}
	if attempts != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got %d", attempts)
	}
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	op := func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("temporary error")
		}
		return "value", nil
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	}

	result, err := DoWithResult(op, cfg)
	if err != nil {
		t.Errorf("Expected success, got: %v", err)
	}
	if result != "value" {
		t.Errorf("Expected %q, got %q", "value", result)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
}

func TestOnRetryCallback(t *testing.T) {
	var callbackAttempts []int
	op := func() error {
		return errors.New("always fails")
	}

	cfg := &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		OnRetry: func(attempt int, err error, delay time.Duration) {
			callbackAttempts = append(callbackAttempts, attempt)
		},
		Context: context.Background(),
	}

	_ = Do(op, cfg)

	if len(callbackAttempts) != 3 {
		t.Errorf("Expected 3 retry callbacks, got %d", len(callbackAttempts))
	}
}

func TestRetrier(t *testing.T) {
	base := NewRetrier(&Config{
		MaxAttempts: 2,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		RetryIf:     func(err error) bool { return true },
		Context:     context.Background(),
	})

	t.Run("WithMaxAttempts does not mutate the original", func(t *testing.T) {
		bumped := base.WithMaxAttempts(5)
		if base.config.MaxAttempts != 2 {
			t.Errorf("Original retrier changed: MaxAttempts = %d", base.config.MaxAttempts)
		}
		if bumped.config.MaxAttempts != 5 {
			t.Errorf("New retrier MaxAttempts = %d, want 5", bumped.config.MaxAttempts)
		}
	})

	t.Run("Do runs the operation", func(t *testing.T) {
		attempts := 0
		err := base.Do(func() error {
			attempts++
			return nil
		})
		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if attempts != 1 {
			t.Errorf("Expected 1 attempt, got %d", attempts)
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxAttempts != 3 {
		t.Errorf("Expected 3 max attempts, got %d", cfg.MaxAttempts)
	}

	backoff, ok := cfg.Backoff.(*ConstantBackoff)
	if !ok {
		t.Fatalf("Expected ConstantBackoff, got %T", cfg.Backoff)
	}
	if backoff.Delay != time.Second {
		t.Errorf("Expected 1s delay, got %v", backoff.Delay)
	}
}
