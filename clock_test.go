package giftid

import "testing"

func TestScriptedClockAdvancesThenHolds(t *testing.T) {
	c := NewScriptedClock(1000, 1000, 1001)

	want := []int64{1000, 1000, 1001, 1001}
	for i, w := range want {
		if got := c.NowRelativeMillis(); got != w {
			t.Errorf("call %d: NowRelativeMillis() = %d, want %d", i, got, w)
		}
	}
}

func TestScriptedClockAdvanceAppends(t *testing.T) {
	c := NewScriptedClock(1000)
	if got := c.NowRelativeMillis(); got != 1000 {
		t.Fatalf("NowRelativeMillis() = %d, want 1000", got)
	}
	c.Advance(1001, 1002)
	if got := c.NowRelativeMillis(); got != 1001 {
		t.Errorf("NowRelativeMillis() = %d, want 1001", got)
	}
	if got := c.NowRelativeMillis(); got != 1002 {
		t.Errorf("NowRelativeMillis() = %d, want 1002", got)
	}
}

func TestFrozenClockSetAndAdvance(t *testing.T) {
	c := NewFrozenClock(500)
	if got := c.NowRelativeMillis(); got != 500 {
		t.Fatalf("NowRelativeMillis() = %d, want 500", got)
	}
	c.Set(700)
	if got := c.NowRelativeMillis(); got != 700 {
		t.Errorf("NowRelativeMillis() = %d, want 700", got)
	}
	if got := c.Advance(5); got != 705 {
		t.Errorf("Advance() = %d, want 705", got)
	}
	if got := c.NowRelativeMillis(); got != 705 {
		t.Errorf("NowRelativeMillis() = %d, want 705", got)
	}
}

func TestSystemClockNeverGoesBackward(t *testing.T) {
	c := NewSystemClock()
	first := c.NowRelativeMillis()
	second := c.NowRelativeMillis()
	if second < first {
		t.Errorf("SystemClock went backward: %d then %d", first, second)
	}
}
