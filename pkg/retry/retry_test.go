package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoWithResult_SucceedsAfterFailures(t *testing.T) {
	for k := 0; k < 5; k++ {
		attempts := 0
		got, err := DoWithResult(context.Background(), DefaultConfig(), func() (int, error) {
			attempts++
			if attempts <= k {
				return 0, Retryable(errors.New("transient"))
			}
			return 42, nil
		})
		if err != nil {
			t.Fatalf("k=%d: unexpected error: %v", k, err)
		}
		if got != 42 {
			t.Errorf("k=%d: expected 42, got %d", k, got)
		}
		if attempts != k+1 {
			t.Errorf("k=%d: expected %d attempts, got %d", k, k+1, attempts)
		}
	}
}

func TestDoWithResult_ReturnsLastError(t *testing.T) {
	attempts := 0
	_, err := DoWithResult(context.Background(), DefaultConfig(), func() (int, error) {
		attempts++
		return 0, Retryable(errors.New("attempt " + string(rune('0'+attempts))))
	})
	if attempts != 5 {
		t.Fatalf("expected 5 attempts, got %d", attempts)
	}
	if err == nil || err.Error() != "attempt 5" {
		t.Errorf("expected error from attempt 5, got %v", err)
	}
}

func TestDoWithResult_NonRetryableStops(t *testing.T) {
	attempts := 0
	sentinel := errors.New("fatal")
	_, err := DoWithResult(context.Background(), DefaultConfig(), func() (int, error) {
		attempts++
		return 0, sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("expected sentinel error, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestDoWithResult_NoDelayByDefault(t *testing.T) {
	start := time.Now()
	_, _ = DoWithResult(context.Background(), DefaultConfig(), func() (int, error) {
		return 0, Retryable(errors.New("fail"))
	})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("default policy should not sleep, took %v", elapsed)
	}
}

func TestDoWithResult_OnRetry(t *testing.T) {
	var seen []int
	cfg := DefaultConfig()
	cfg.MaxAttempts = 3
	cfg.OnRetry = func(attempt int, err error) {
		seen = append(seen, attempt)
	}

	_, _ = DoWithResult(context.Background(), cfg, func() (int, error) {
		return 0, Retryable(errors.New("fail"))
	})

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Errorf("expected retries after attempts [1 2], got %v", seen)
	}
}

func TestDoWithResult_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := Config{MaxAttempts: 0, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 2}

	attempts := 0
	_, err := DoWithResult(ctx, cfg, func() (int, error) {
		attempts++
		cancel()
		return 0, Retryable(errors.New("fail"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("expected 1 attempt, got %d", attempts)
	}
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		attempt int
		want    time.Duration
	}{
		{"no initial wait", Config{Multiplier: 2}, 3, 0},
		{"first retry", Config{InitialWait: 100 * time.Millisecond, Multiplier: 2}, 1, 100 * time.Millisecond},
		{"third retry", Config{InitialWait: 100 * time.Millisecond, Multiplier: 2}, 3, 400 * time.Millisecond},
		{"capped", Config{InitialWait: time.Second, MaxWait: 2 * time.Second, Multiplier: 10}, 4, 2 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := backoff(tt.cfg, tt.attempt); got != tt.want {
				t.Errorf("backoff = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	base := errors.New("base")
	if got := Unwrap(Retryable(base)); got != base {
		t.Errorf("expected base error, got %v", got)
	}
	if got := Unwrap(base); got != base {
		t.Errorf("expected passthrough, got %v", got)
	}
}
