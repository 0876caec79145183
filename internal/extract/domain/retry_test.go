package extract

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicyRecovers(t *testing.T) {
	policy := RetryPolicy{Delays: []time.Duration{0, 0, 0}}
	calls := 0
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetryPolicyExhaustionReturnsLastError(t *testing.T) {
	policy := RetryPolicy{Delays: []time.Duration{0, 0}}
	calls := 0
	last := errors.New("still broken")
	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		if calls == policy.Attempts() {
			return last
		}
		return errors.New("earlier failure")
	})
	if !errors.Is(err, last) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != policy.Attempts() {
		t.Fatalf("expected %d calls, got %d", policy.Attempts(), calls)
	}
}

func TestRetryPolicyHonorsCancellation(t *testing.T) {
	policy := RetryPolicy{Delays: []time.Duration{time.Hour}}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := policy.Do(ctx, func(context.Context) error {
		calls++
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", calls)
	}
}

func TestDefaultRetryPolicyShape(t *testing.T) {
	policy := DefaultRetryPolicy()
	if policy.Attempts() != 4 {
		t.Fatalf("expected 4 attempts, got %d", policy.Attempts())
	}
	want := []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second}
	for i, d := range want {
		if policy.Delays[i] != d {
			t.Fatalf("delay %d: got %v, want %v", i, policy.Delays[i], d)
		}
	}
}
