package clock

import (
	"testing"
	"time"
)

func TestRealClock_NowIsUTC(t *testing.T) {
	now := RealClock{}.Now()
	if now.Location() != time.UTC {
		t.Errorf("RealClock.Now() location = %v, want UTC", now.Location())
	}
}

func TestFakeClock(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewFakeClock(start)

	if !c.Now().Equal(start) {
		t.Errorf("Now() = %v, want %v", c.Now(), start)
	}

	c.Advance(90 * time.Second)
	want := start.Add(90 * time.Second)
	if !c.Now().Equal(want) {
		t.Errorf("Now() after Advance = %v, want %v", c.Now(), want)
	}
}
