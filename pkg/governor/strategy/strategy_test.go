package strategy

import (
	"testing"
	"time"
)

// ============================================================================
// Fixed Strategy Tests
// ============================================================================

func TestFixed_MinInterval(t *testing.T) {
	f := NewFixed(500*time.Millisecond, 0)
	t0 := time.Unix(100, 0)

	if !f.Admit(t0) {
		t.Fatal("Expected first request to be admitted")
	}
	if f.Admit(t0.Add(499 * time.Millisecond)) {
		t.Error("Expected rejection inside minimum interval")
	}
	if !f.Admit(t0.Add(500 * time.Millisecond)) {
		t.Error("Expected admission at the minimum interval")
	}
}

func TestFixed_WindowCap(t *testing.T) {
	f := NewFixed(0, 3)
	t0 := time.Unix(100, 0)

	for i := 0; i < 3; i++ {
		if !f.Admit(t0) {
			t.Fatalf("Expected admission %d under the cap", i+1)
		}
	}
	if f.Admit(t0) {
		t.Error("Expected rejection at the window cap")
	}

	// The window rolls: a minute later the old requests age out.
	if !f.Admit(t0.Add(Window)) {
		t.Error("Expected admission after the window rolled")
	}
}

func TestFixed_ZeroCapIsUnlimited(t *testing.T) {
	f := NewFixed(0, 0)
	t0 := time.Unix(100, 0)

	for i := 0; i < 100; i++ {
		if !f.Admit(t0) {
			t.Fatalf("Expected unlimited admissions, rejected at %d", i+1)
		}
	}
}

func TestFixed_Snapshot(t *testing.T) {
	f := NewFixed(0, 10)
	t0 := time.Unix(100, 0)

	f.Admit(t0)
	f.Admit(t0.Add(time.Second))

	snap := f.Snapshot(t0.Add(time.Second))
	if snap.WindowCount != 2 {
		t.Errorf("Expected window count 2, got %d", snap.WindowCount)
	}
	if !snap.LastRequest.Equal(t0.Add(time.Second)) {
		t.Errorf("Expected last request %v, got %v", t0.Add(time.Second), snap.LastRequest)
	}
}

// ============================================================================
// Token Bucket Strategy Tests
// ============================================================================

func TestTokenBucket_InitialBurst(t *testing.T) {
	t0 := time.Unix(100, 0)
	tb := NewTokenBucket(5, 1, 5, t0)

	for i := 0; i < 5; i++ {
		if !tb.Admit(t0) {
			t.Fatalf("Expected admission %d from initial tokens", i+1)
		}
	}
	if tb.Admit(t0) {
		t.Error("Expected rejection with an empty bucket")
	}
}

func TestTokenBucket_Refill(t *testing.T) {
	t0 := time.Unix(100, 0)
	tb := NewTokenBucket(5, 1, 5, t0)

	for i := 0; i < 5; i++ {
		tb.Admit(t0)
	}

	// Half a token is not enough.
	if tb.Admit(t0.Add(500 * time.Millisecond)) {
		t.Error("Expected rejection with a fractional token")
	}

	// Note the half token above accrued; at t0+1s the balance reaches 1.
	if !tb.Admit(t0.Add(time.Second)) {
		t.Error("Expected admission after one second of refill")
	}
	if tb.Admit(t0.Add(time.Second)) {
		t.Error("Expected rejection after the refilled token was spent")
	}
}

func TestTokenBucket_ClampToSize(t *testing.T) {
	t0 := time.Unix(100, 0)
	tb := NewTokenBucket(5, 1, 5, t0)

	snap := tb.Snapshot(t0.Add(time.Hour))
	if snap.Tokens != 5 {
		t.Errorf("Expected tokens clamped to bucket size 5, got %v", snap.Tokens)
	}
}

func TestTokenBucket_InitialClamp(t *testing.T) {
	t0 := time.Unix(100, 0)

	tb := NewTokenBucket(5, 1, 50, t0)
	if got := tb.Snapshot(t0).Tokens; got != 5 {
		t.Errorf("Expected initial tokens clamped to 5, got %v", got)
	}

	tb = NewTokenBucket(5, 1, -1, t0)
	if got := tb.Snapshot(t0).Tokens; got != 0 {
		t.Errorf("Expected negative initial tokens clamped to 0, got %v", got)
	}
}

// ============================================================================
// Adaptive Strategy Tests
// ============================================================================

func adaptiveParams() AdaptiveParams {
	return AdaptiveParams{
		SuccessThreshold: 3,
		IncreaseFactor:   0.5,
		DecreaseFactor:   0.5,
		MinLimit:         1,
		MaxLimit:         10,
		InitialLimit:     4,
	}
}

func TestAdaptive_WindowCeiling(t *testing.T) {
	a := NewAdaptive(adaptiveParams()) // ceiling 4
	t0 := time.Unix(100, 0)

	for i := 0; i < 4; i++ {
		if !a.Admit(t0) {
			t.Fatalf("Expected admission %d under the ceiling", i+1)
		}
	}
	if a.Admit(t0) {
		t.Error("Expected rejection at the ceiling")
	}
	if !a.Admit(t0.Add(Window)) {
		t.Error("Expected admission after the window rolled")
	}
}

func TestAdaptive_GrowsOnSuccessStreak(t *testing.T) {
	a := NewAdaptive(adaptiveParams())
	t0 := time.Unix(100, 0)

	for i := 0; i < 3; i++ {
		a.RecordSuccess(t0)
	}
	if got := a.Snapshot(t0).CurrentLimit; got != 6 {
		t.Errorf("Expected limit 6 after success streak, got %v", got)
	}

	// Growth clamps at the maximum.
	for i := 0; i < 6; i++ {
		a.RecordSuccess(t0)
	}
	if got := a.Snapshot(t0).CurrentLimit; got != 10 {
		t.Errorf("Expected limit clamped to 10, got %v", got)
	}
}

func TestAdaptive_ShrinksOnFailure(t *testing.T) {
	a := NewAdaptive(adaptiveParams())
	t0 := time.Unix(100, 0)

	a.RecordFailure(t0)
	if got := a.Snapshot(t0).CurrentLimit; got != 2 {
		t.Errorf("Expected limit 2 after failure, got %v", got)
	}

	a.RecordFailure(t0)
	a.RecordFailure(t0)
	if got := a.Snapshot(t0).CurrentLimit; got != 1 {
		t.Errorf("Expected limit clamped to minimum 1, got %v", got)
	}
}

func TestAdaptive_FailureResetsSuccessStreak(t *testing.T) {
	a := NewAdaptive(adaptiveParams())
	t0 := time.Unix(100, 0)

	a.RecordSuccess(t0)
	a.RecordSuccess(t0)
	a.RecordFailure(t0) // limit 4 -> 2, streak cleared
	a.RecordSuccess(t0)

	snap := a.Snapshot(t0)
	if snap.CurrentLimit != 2 {
		t.Errorf("Expected limit 2, got %v", snap.CurrentLimit)
	}
	if snap.SuccessesSinceAdjustment != 1 {
		t.Errorf("Expected success streak 1 after reset, got %d", snap.SuccessesSinceAdjustment)
	}
}

func TestAdaptive_InitialLimitClamped(t *testing.T) {
	p := adaptiveParams()
	p.InitialLimit = 100
	if got := NewAdaptive(p).Snapshot(time.Unix(0, 0)).CurrentLimit; got != 10 {
		t.Errorf("Expected initial limit clamped to 10, got %v", got)
	}

	p.InitialLimit = 0
	if got := NewAdaptive(p).Snapshot(time.Unix(0, 0)).CurrentLimit; got != 10 {
		t.Errorf("Expected zero initial limit to start at max, got %v", got)
	}
}

// ============================================================================
// Backoff Strategy Tests
// ============================================================================

func TestBackoff_FreeAdmissionWithoutFailures(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, 2, 0, time.Second)
	t0 := time.Unix(100, 0)

	for i := 0; i < 10; i++ {
		if !b.Admit(t0) {
			t.Fatalf("Expected admission %d with no failure streak", i+1)
		}
	}
}

func TestBackoff_DelaysAfterFailure(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, 2, 0, time.Second)
	t0 := time.Unix(100, 0)

	b.Admit(t0)
	b.RecordFailure(t0)

	if b.Admit(t0.Add(99 * time.Millisecond)) {
		t.Error("Expected rejection inside the backoff delay")
	}
	if !b.Admit(t0.Add(100 * time.Millisecond)) {
		t.Error("Expected admission once the delay elapsed")
	}
}

func TestBackoff_DelayGrowsWithStreak(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, 2, 0, time.Second)
	t0 := time.Unix(100, 0)

	b.Admit(t0)
	for i := 0; i < 3; i++ {
		b.RecordFailure(t0)
	}

	// Three failures: delay = 100ms * 2^2 = 400ms.
	if b.Admit(t0.Add(399 * time.Millisecond)) {
		t.Error("Expected rejection inside the grown delay")
	}
	if !b.Admit(t0.Add(400 * time.Millisecond)) {
		t.Error("Expected admission at the grown delay")
	}
}

func TestBackoff_SuccessClearsStreak(t *testing.T) {
	b := NewBackoff(100*time.Millisecond, 2, 0, time.Second)
	t0 := time.Unix(100, 0)

	b.Admit(t0)
	b.RecordFailure(t0)
	b.RecordSuccess(t0)

	if !b.Admit(t0) {
		t.Error("Expected free admission after the streak cleared")
	}
}

// ============================================================================
// Delay Function Tests
// ============================================================================

func TestDelay_NonDecreasing(t *testing.T) {
	prev := time.Duration(0)
	for attempt := 1; attempt <= 20; attempt++ {
		d := Delay(100*time.Millisecond, 2, 0, 30*time.Second, attempt, nil)
		if d < prev {
			t.Errorf("Delay decreased at attempt %d: %v < %v", attempt, d, prev)
		}
		prev = d
	}
}

func TestDelay_CapsAtMax(t *testing.T) {
	d := Delay(100*time.Millisecond, 2, 0, time.Second, 50, nil)
	if d != time.Second {
		t.Errorf("Expected delay capped at 1s, got %v", d)
	}
}

func TestDelay_AttemptFloor(t *testing.T) {
	want := Delay(100*time.Millisecond, 2, 0, time.Second, 1, nil)
	if got := Delay(100*time.Millisecond, 2, 0, time.Second, 0, nil); got != want {
		t.Errorf("Expected attempt 0 to behave as attempt 1: got %v, want %v", got, want)
	}
}

func TestDelay_JitterBounds(t *testing.T) {
	// Base delay for attempt 3 is 400ms; 20% jitter keeps the result
	// inside [320ms, 480ms).
	cases := []struct {
		u    float64
		want time.Duration
	}{
		{0, 320 * time.Millisecond},   // u=0 -> -1 swing
		{0.5, 400 * time.Millisecond}, // u=0.5 -> no swing
		{1, 480 * time.Millisecond},   // u->1 -> +1 swing
	}
	for _, tc := range cases {
		rng := func() float64 { return tc.u }
		got := Delay(100*time.Millisecond, 2, 0.2, time.Second, 3, rng)
		if got != tc.want {
			t.Errorf("Delay with u=%v = %v, want %v", tc.u, got, tc.want)
		}
	}
}

func TestDelay_NeverNegative(t *testing.T) {
	rng := func() float64 { return 0 } // maximum downward swing
	d := Delay(time.Millisecond, 2, 1.0, time.Second, 1, rng)
	if d < 0 {
		t.Errorf("Expected non-negative delay, got %v", d)
	}
}

// ============================================================================
// Sliding Window Tests
// ============================================================================

func TestSlidingWindow_PruneOnRead(t *testing.T) {
	w := newSlidingWindow(time.Minute)
	t0 := time.Unix(100, 0)

	w.add(t0)
	w.add(t0.Add(30 * time.Second))

	if got := w.count(t0.Add(30 * time.Second)); got != 2 {
		t.Errorf("Expected 2 in window, got %d", got)
	}

	// The first event ages out exactly one minute after it happened.
	if got := w.count(t0.Add(time.Minute)); got != 1 {
		t.Errorf("Expected 1 after first event aged out, got %d", got)
	}
	if got := w.count(t0.Add(2 * time.Minute)); got != 0 {
		t.Errorf("Expected empty window, got %d", got)
	}
}
