package inventory

import "sync"

// Mode is the connectivity of one shopper session
type Mode string

const (
	ModeConnecting Mode = "connecting"
	ModeLive       Mode = "live"
	ModeDemo       Mode = "demo"
)

// ModeTracker holds the mode of one session. Demo is terminal: once degraded, a later
// success never brings the session back to live.
type ModeTracker struct {
	mu   sync.Mutex
	mode Mode
}

func NewModeTracker() *ModeTracker {
	return &ModeTracker{mode: ModeConnecting}
}

func (t *ModeTracker) Mode() Mode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode
}

// GoLive moves a connecting session to live and reports whether the session is live afterwards
func (t *ModeTracker) GoLive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == ModeConnecting {
		t.mode = ModeLive
	}
	return t.mode == ModeLive
}

// Degrade switches the session to demo. It reports true only for the call that made the switch.
func (t *ModeTracker) Degrade() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.mode == ModeDemo {
		return false
	}
	t.mode = ModeDemo
	return true
}
