package kafka

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/orderstore/internal/domain"
)

type flakyPublisher struct {
	failures int
	calls    int
}

func (p *flakyPublisher) PublishOrderEvent(domain.OrderEvent) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("broker unavailable")
	}
	return nil
}

func newTestRetryingPublisher(next domain.OrderEventPublisher, cfg RetryConfig) (*RetryingPublisher, *[]time.Duration) {
	var delays []time.Duration
	p := NewRetryingPublisher(next, cfg, nil)
	p.sleep = func(d time.Duration) { delays = append(delays, d) }
	return p, &delays
}

func TestRetryingPublisher_SucceedsAfterRetries(t *testing.T) {
	next := &flakyPublisher{failures: 2}
	p, delays := newTestRetryingPublisher(next, RetryConfig{
		MaxAttempts:   4,
		InitialDelay:  10 * time.Millisecond,
		MaxDelay:      15 * time.Millisecond,
		BackoffFactor: 2,
	})

	if err := p.PublishOrderEvent(domain.OrderEvent{OrderID: "o-1"}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if next.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", next.calls)
	}
	want := []time.Duration{10 * time.Millisecond, 15 * time.Millisecond}
	if len(*delays) != len(want) {
		t.Fatalf("unexpected delays: %v", *delays)
	}
	for i := range want {
		if (*delays)[i] != want[i] {
			t.Fatalf("delay %d: expected %v, got %v", i, want[i], (*delays)[i])
		}
	}
}

func TestRetryingPublisher_ReturnsLastErrorWhenExhausted(t *testing.T) {
	next := &flakyPublisher{failures: 10}
	p, delays := newTestRetryingPublisher(next, DefaultRetryConfig())

	if err := p.PublishOrderEvent(domain.OrderEvent{OrderID: "o-1"}); err == nil {
		t.Fatal("expected error")
	}
	if next.calls != DefaultRetryConfig().MaxAttempts {
		t.Fatalf("expected %d calls, got %d", DefaultRetryConfig().MaxAttempts, next.calls)
	}
	if len(*delays) != DefaultRetryConfig().MaxAttempts-1 {
		t.Fatalf("no sleep expected after the last attempt, got %v", *delays)
	}
}

func TestRetryingPublisher_ZeroAttemptsMeansSingleCall(t *testing.T) {
	next := &flakyPublisher{failures: 1}
	p, delays := newTestRetryingPublisher(next, RetryConfig{})

	if err := p.PublishOrderEvent(domain.OrderEvent{}); err == nil {
		t.Fatal("expected error")
	}
	if next.calls != 1 || len(*delays) != 0 {
		t.Fatalf("expected one call without sleeps, got calls=%d delays=%v", next.calls, *delays)
	}
}
