package workflow_test

import (
	"testing"
	"time"

	"lorecast/internal/workflow"
)

func TestPolicyDelayGrowsAndCaps(t *testing.T) {
	policy := workflow.Policy{
		MaxRetries: 5,
		BaseDelay:  60 * time.Second,
		MaxDelay:   600 * time.Second,
	}

	previous := time.Duration(0)
	for attempt := 0; attempt < 5; attempt++ {
		delay := policy.Delay(attempt)
		if delay < previous {
			t.Fatalf("delay decreased at attempt %d: %v < %v", attempt, delay, previous)
		}
		if delay > policy.MaxDelay {
			t.Fatalf("delay exceeded cap at attempt %d: %v", attempt, delay)
		}
		previous = delay
	}

	if policy.Delay(0) != 60*time.Second {
		t.Fatalf("first delay = %v, want 60s", policy.Delay(0))
	}
	if policy.Delay(10) != 600*time.Second {
		t.Fatalf("capped delay = %v, want 600s", policy.Delay(10))
	}
}

func TestPolicyJitterStaysNearDelay(t *testing.T) {
	policy := workflow.Policy{
		MaxRetries: 5,
		BaseDelay:  100 * time.Second,
		MaxDelay:   600 * time.Second,
		Jitter:     true,
	}
	for i := 0; i < 50; i++ {
		delay := policy.Delay(0)
		if delay < 75*time.Second || delay > 125*time.Second {
			t.Fatalf("jittered delay %v outside ±25%% of base", delay)
		}
	}
}

func TestPolicyExhausted(t *testing.T) {
	policy := workflow.Policy{MaxRetries: 3}
	if policy.Exhausted(2) {
		t.Fatal("attempt 2 of 3 should not be exhausted")
	}
	if !policy.Exhausted(3) {
		t.Fatal("attempt 3 of 3 should be exhausted")
	}
}
