package clock

import (
	"testing"
	"time"
)

func TestFake_AdvanceAndSet(t *testing.T) {
	start := time.Unix(1000, 0)
	clk := NewFake(start)

	if !clk.Now().Equal(start) {
		t.Errorf("Expected %v, got %v", start, clk.Now())
	}

	clk.Advance(1500 * time.Millisecond)
	want := start.Add(1500 * time.Millisecond)
	if !clk.Now().Equal(want) {
		t.Errorf("Expected %v after advance, got %v", want, clk.Now())
	}

	later := start.Add(time.Hour)
	clk.Set(later)
	if !clk.Now().Equal(later) {
		t.Errorf("Expected %v after set, got %v", later, clk.Now())
	}
}

func TestSystem_TracksWallClock(t *testing.T) {
	clk := System()

	before := time.Now()
	got := clk.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("System clock reading %v outside [%v, %v]", got, before, after)
	}
}
