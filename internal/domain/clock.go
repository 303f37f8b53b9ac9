package domain

// Clock is the per-turn countdown. It is not safe for concurrent use; the
// engine serializes access.
type Clock struct {
    secondsLeft int
    enabled     bool
}

// NewClock returns an enabled clock holding seconds.
func NewClock(seconds int) Clock {
    c := Clock{enabled: true}
    c.Reset(seconds)
    return c
}

// Tick removes one second while enabled, stopping at zero.
func (c *Clock) Tick() {
    if !c.enabled || c.secondsLeft <= 0 {
        return
    }
    c.secondsLeft--
}

// Reset sets the remaining time regardless of the enabled flag.
func (c *Clock) Reset(seconds int) {
    if seconds < 0 {
        seconds = 0
    }
    c.secondsLeft = seconds
}

// SetEnabled freezes or resumes ticking without touching the remaining time.
func (c *Clock) SetEnabled(on bool) { c.enabled = on }

func (c Clock) Enabled() bool    { return c.enabled }
func (c Clock) SecondsLeft() int { return c.secondsLeft }
func (c Clock) Expired() bool    { return c.secondsLeft == 0 }
