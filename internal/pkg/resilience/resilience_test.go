package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/peoplebench/people-bench/internal/pkg/logger"
)

func testConfig() Config {
	return Config{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2.0,
		BreakerEnabled: false,
	}
}

func TestRetriesUntilSuccess(t *testing.T) {
	ex := NewExecutor(testConfig(), logger.New("error", "text"))

	calls := 0
	err := ex.Execute(context.Background(), "search", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, AlwaysRetry)

	if err != nil {
		t.Fatalf("Execute() = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestExhaustsAttempts(t *testing.T) {
	ex := NewExecutor(testConfig(), logger.New("error", "text"))

	calls := 0
	wantErr := errors.New("always failing")
	err := ex.Execute(context.Background(), "grade", func(context.Context) error {
		calls++
		return wantErr
	}, AlwaysRetry)

	if !errors.Is(err, wantErr) {
		t.Fatalf("Execute() = %v, want %v", err, wantErr)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestPermanentErrorNotRetried(t *testing.T) {
	ex := NewExecutor(testConfig(), logger.New("error", "text"))

	calls := 0
	err := ex.Execute(context.Background(), "search", func(context.Context) error {
		calls++
		return errors.New("bad request")
	}, NeverRetry)

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestCancelledContextStopsRetries(t *testing.T) {
	ex := NewExecutor(testConfig(), logger.New("error", "text"))

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := ex.Execute(ctx, "search", func(context.Context) error {
		calls++
		cancel()
		return errors.New("transient")
	}, AlwaysRetry)

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retries after cancel)", calls)
	}
}

func TestBreakerOpensAfterFailures(t *testing.T) {
	cfg := testConfig()
	cfg.BreakerEnabled = true
	cfg.BreakerMinRequests = 4
	cfg.BreakerFailureRatio = 0.5
	cfg.BreakerOpenTimeout = time.Minute
	cfg.MaxAttempts = 1
	ex := NewExecutor(cfg, logger.New("error", "text"))

	failing := func(context.Context) error { return errors.New("api down") }

	var err error
	for i := 0; i < 10; i++ {
		err = ex.Execute(context.Background(), "judge", failing, AlwaysRetry)
	}

	if !IsCircuitOpen(err) {
		t.Errorf("breaker should be open after repeated failures, got %v", err)
	}
}
