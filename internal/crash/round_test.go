package crash

import (
	"testing"
	"time"
)

func TestPoint_KnownVectors(t *testing.T) {
	cases := []struct {
		h    uint32
		want float64
	}{
		{h: 0, want: 1.00},    // 0 % 100 == 0 -> instant bust
		{h: 100, want: 1.00},  // any multiple of 100 busts
		{h: 1, want: 1.01},    // tiny hash floors at 1.01
		{h: 50, want: 1.01},
		{h: 2147483648, want: 1.99}, // 2^31 midpoint
		{h: 999999937, want: 1.30},
		{h: 3865470566, want: 9.91},
		{h: 4252017623, want: 99.01},
	}

	for _, tc := range cases {
		got := Point(tc.h)
		if got != tc.want {
			t.Fatalf("Point(%d): got %v, want %v", tc.h, got, tc.want)
		}
	}
}

func TestPoint_AlwaysAtLeastOne(t *testing.T) {
	for h := uint32(0); h < 10_000; h++ {
		p := Point(h)
		if p != 1.00 && p < 1.01 {
			t.Fatalf("Point(%d) = %v, below floor", h, p)
		}
	}
}

func TestForcedTarget_ConsumedOnce(t *testing.T) {
	r := NewRound()
	r.randUint32 = func() uint32 { return 3865470566 } // 9.91

	forced := 42.5
	r.ForceTarget(&forced)

	r.BeginRunning(time.Now())
	if r.Target != 42.5 {
		t.Fatalf("forced round: got target %v, want 42.5", r.Target)
	}

	r.BeginRunning(time.Now())
	if r.Target != 9.91 {
		t.Fatalf("round after override: got target %v, want 9.91", r.Target)
	}
}

func TestForcedTarget_NilClearsOverride(t *testing.T) {
	r := NewRound()
	r.randUint32 = func() uint32 { return 999999937 } // 1.30

	forced := 100.0
	r.ForceTarget(&forced)
	r.ForceTarget(nil)

	r.BeginRunning(time.Now())
	if r.Target != 1.30 {
		t.Fatalf("cleared override: got target %v, want 1.30", r.Target)
	}
}

func TestAdvance_MonotonicAndClampedAtTarget(t *testing.T) {
	r := NewRound()
	r.randUint32 = func() uint32 { return 4252017623 } // 99.01

	start := time.Now()
	r.BeginRunning(start)

	prev := r.Multiplier
	for _, ms := range []int{50, 100, 40, 150, 149, 5000} { // out-of-order fires included
		crashed := r.Advance(start.Add(time.Duration(ms) * time.Millisecond))
		if r.Multiplier < prev {
			t.Fatalf("multiplier decreased: %v -> %v at %dms", prev, r.Multiplier, ms)
		}
		if crashed {
			t.Fatalf("crashed before target at %dms (m=%v)", ms, r.Multiplier)
		}
		prev = r.Multiplier
	}

	// e^(0.00006*t) reaches 99.01 around t=76.6s
	if !r.Advance(start.Add(2 * time.Minute)) {
		t.Fatalf("expected crash after two minutes")
	}
	if r.Multiplier != r.Target {
		t.Fatalf("crash multiplier not clamped: got %v, want %v", r.Multiplier, r.Target)
	}
	if r.Phase != PhaseCrashed {
		t.Fatalf("want phase CRASHED, got %v", r.Phase)
	}

	// A straggler fire after the crash must not revive the round.
	if r.Advance(start.Add(3 * time.Minute)) {
		t.Fatalf("Advance on crashed round reported a second crash")
	}
}

func TestBeginWaiting_ResetsRound(t *testing.T) {
	r := NewRound()
	r.randUint32 = func() uint32 { return 3865470566 }

	r.BeginRunning(time.Now())
	r.Advance(time.Now().Add(time.Hour))

	r.BeginWaiting(10)
	if r.Phase != PhaseWaiting || r.Multiplier != 1.0 || r.Countdown != 10 {
		t.Fatalf("reset failed: %+v", r)
	}
}

func TestCountdownTick(t *testing.T) {
	r := NewRound()
	r.BeginWaiting(2)
	if got := r.CountdownTick(); got != 1 {
		t.Fatalf("first tick: got %d, want 1", got)
	}
	if got := r.CountdownTick(); got != 0 {
		t.Fatalf("second tick: got %d, want 0", got)
	}
}
