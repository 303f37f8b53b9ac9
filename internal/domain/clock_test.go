package domain

import "testing"

func TestClockTicksDownToZero(t *testing.T) {
    c := NewClock(2)
    c.Tick()
    if c.SecondsLeft() != 1 {
        t.Fatalf("expected 1, got %d", c.SecondsLeft())
    }
    c.Tick()
    c.Tick()
    if c.SecondsLeft() != 0 || !c.Expired() {
        t.Fatalf("expected clock to floor at 0, got %d", c.SecondsLeft())
    }
}

func TestClockDisabledFreezes(t *testing.T) {
    c := NewClock(5)
    c.SetEnabled(false)
    c.Tick()
    if c.SecondsLeft() != 5 {
        t.Fatalf("disabled clock should not tick, got %d", c.SecondsLeft())
    }
    c.Reset(3)
    if c.SecondsLeft() != 3 {
        t.Fatalf("reset applies while disabled, got %d", c.SecondsLeft())
    }
    c.SetEnabled(true)
    c.Tick()
    if c.SecondsLeft() != 2 || !c.Enabled() {
        t.Fatalf("expected 2 after re-enable, got %d", c.SecondsLeft())
    }
}

func TestClockResetNeverNegative(t *testing.T) {
    c := NewClock(-4)
    if c.SecondsLeft() != 0 {
        t.Fatalf("expected 0, got %d", c.SecondsLeft())
    }
}
