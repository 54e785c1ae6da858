package crash

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"time"
)

type Phase string

const (
	PhaseWaiting Phase = "WAITING"
	PhaseRunning Phase = "RUNNING"
	PhaseCrashed Phase = "CRASHED"
)

// growthRate is the exponent coefficient of the multiplier curve:
// m = e^(growthRate * elapsedMs). Client animation assumes this exact curve.
const growthRate = 0.00006

// Round is the single live crash round. It is pure state: the hub drives
// every transition from its own goroutine, so none of these methods lock.
type Round struct {
	Phase      Phase
	Multiplier float64
	Target     float64
	Countdown  int

	forced    *float64
	startedAt time.Time

	randUint32 func() uint32
}

func NewRound() *Round {
	return &Round{
		Phase:      PhaseWaiting,
		Multiplier: 1.0,
		randUint32: randomUint32,
	}
}

// BeginWaiting re-initializes the round for a fresh countdown.
func (r *Round) BeginWaiting(countdown int) {
	r.Phase = PhaseWaiting
	r.Countdown = countdown
	r.Multiplier = 1.0
	r.Target = 0
}

// CountdownTick burns one waiting second and reports the remainder.
func (r *Round) CountdownTick() int {
	r.Countdown--
	return r.Countdown
}

// BeginRunning draws the round's target and starts the multiplier curve.
// A staged forced target is consumed here and only here.
func (r *Round) BeginRunning(now time.Time) {
	r.Phase = PhaseRunning
	r.Multiplier = 1.0
	r.Target = r.nextTarget()
	r.startedAt = now
}

// Advance recomputes the multiplier from the stored start timestamp, so a
// late tick cannot compound drift or move the value backwards. It reports
// whether the round just crashed; on crash the multiplier is clamped to the
// target exactly.
func (r *Round) Advance(now time.Time) bool {
	if r.Phase != PhaseRunning {
		return false
	}
	elapsed := now.Sub(r.startedAt)
	m := math.Exp(growthRate * float64(elapsed.Milliseconds()))
	if m < r.Multiplier {
		m = r.Multiplier
	}
	if m >= r.Target {
		r.Multiplier = r.Target
		r.Phase = PhaseCrashed
		return true
	}
	r.Multiplier = m
	return false
}

// ForceTarget stages an override for the next round's target draw. Passing
// nil clears a previously staged override.
func (r *Round) ForceTarget(v *float64) {
	r.forced = v
}

// Forced reports whether an override is currently staged.
func (r *Round) Forced() bool {
	return r.forced != nil
}

func (r *Round) nextTarget() float64 {
	if r.forced != nil {
		t := *r.forced
		r.forced = nil
		return t
	}
	return Point(r.randUint32())
}

// Point maps a uniform 32-bit hash to a crash target. One draw in a hundred
// busts instantly at 1.00; the rest follow a heavy-tailed curve with a fixed
// house edge. Downstream payout math depends on this exact formula and
// rounding, so keep it bit-for-bit.
func Point(h uint32) float64 {
	if h%100 == 0 {
		return 1.00
	}
	const e = float64(1 << 32)
	p := math.Max(1.00, (100*e-float64(h))/(e-float64(h))) / 100
	return math.Max(1.01, math.Round(p*100)/100)
}

func randomUint32() uint32 {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand failing is effectively unreachable; bust the round
		// rather than panic inside the game loop.
		return 0
	}
	return binary.LittleEndian.Uint32(b[:])
}
