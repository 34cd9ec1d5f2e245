package verification

import (
	"fmt"
	"sync"
)

const (
	// CodeTTLSeconds is how long a sent code stays valid before resend unlocks.
	CodeTTLSeconds = 600
	// WarningSeconds is the threshold below which the countdown is highlighted.
	WarningSeconds = 60
)

// Countdown counts whole seconds down to zero. Resend is allowed only at zero.
type Countdown struct {
	mu        sync.Mutex
	total     int
	remaining int
}

// NewCountdown returns a stopped countdown of seconds length. A stopped
// countdown sits at zero.
func NewCountdown(seconds int) *Countdown {
	if seconds <= 0 {
		seconds = CodeTTLSeconds
	}
	return &Countdown{total: seconds}
}

// Reset restarts the countdown from its full length.
func (c *Countdown) Reset() {
	c.mu.Lock()
	c.remaining = c.total
	c.mu.Unlock()
}

// Tick removes one second and returns what is left.
func (c *Countdown) Tick() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining > 0 {
		c.remaining--
	}
	return c.remaining
}

func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *Countdown) CanResend() bool {
	return c.Remaining() == 0
}

// Warning reports whether fewer than WarningSeconds remain.
func (c *Countdown) Warning() bool {
	r := c.Remaining()
	return r > 0 && r < WarningSeconds
}

// String renders the remaining time as MM:SS.
func (c *Countdown) String() string {
	r := c.Remaining()
	return fmt.Sprintf("%02d:%02d", r/60, r%60)
}
