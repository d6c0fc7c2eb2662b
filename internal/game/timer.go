package game

import (
	"sync"
	"time"
)

// ResolutionTimer schedules the delayed commit of the play pile: the window
// in which other players may still counter with a Nope. Start replaces any
// pending schedule, so each new play restarts the countdown.
type ResolutionTimer interface {
	Start(delay time.Duration)
	Stop()
}

// ImmediateTimer fires its callback synchronously from Start. Used for
// offline play and tests, where no counter-play window is wanted.
type ImmediateTimer struct {
	onElapse func()
}

// NewImmediateTimer creates a timer that elapses as soon as it is started.
func NewImmediateTimer(onElapse func()) *ImmediateTimer {
	return &ImmediateTimer{onElapse: onElapse}
}

func (t *ImmediateTimer) Start(delay time.Duration) {
	t.onElapse()
}

func (t *ImmediateTimer) Stop() {}

// ManualTimer arms on Start and fires only when Fire is called. Tests and
// the bot sim runner use it to control exactly when resolution happens.
type ManualTimer struct {
	mu       sync.Mutex
	armed    bool
	onElapse func()
}

// NewManualTimer creates an unarmed manual timer.
func NewManualTimer(onElapse func()) *ManualTimer {
	return &ManualTimer{onElapse: onElapse}
}

func (t *ManualTimer) Start(delay time.Duration) {
	t.mu.Lock()
	t.armed = true
	t.mu.Unlock()
}

func (t *ManualTimer) Stop() {
	t.mu.Lock()
	t.armed = false
	t.mu.Unlock()
}

// Armed reports whether a resolution is pending.
func (t *ManualTimer) Armed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.armed
}

// Fire elapses the timer if armed. Firing an unarmed timer is a no-op, so a
// straggling double fire cannot trigger a second resolution pass.
func (t *ManualTimer) Fire() {
	t.mu.Lock()
	if !t.armed {
		t.mu.Unlock()
		return
	}
	t.armed = false
	fn := t.onElapse
	t.mu.Unlock()
	fn()
}

// CountdownTimer is the real-time implementation for networked matches.
// Restarting cancels the previous schedule; a cancelled schedule that has
// already fired is absorbed by the generation check, so no two elapses from
// the same timer overlap.
type CountdownTimer struct {
	mu       sync.Mutex
	onElapse func()
	gen      int
	timer    *time.Timer
	deadline time.Time
}

// NewCountdownTimer creates a stopped countdown timer.
func NewCountdownTimer(onElapse func()) *CountdownTimer {
	return &CountdownTimer{onElapse: onElapse}
}

func (t *CountdownTimer) Start(delay time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	gen := t.gen
	if t.timer != nil {
		t.timer.Stop()
	}
	t.deadline = time.Now().Add(delay)
	if delay <= 0 {
		t.timer = nil
		go t.fire(gen)
		return
	}
	t.timer = time.AfterFunc(delay, func() { t.fire(gen) })
}

func (t *CountdownTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.deadline = time.Time{}
}

// Remaining returns the time left in the current window, zero when idle.
// Used by serving layers to render the countdown.
func (t *CountdownTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.deadline.IsZero() {
		return 0
	}
	left := time.Until(t.deadline)
	if left < 0 {
		return 0
	}
	return left
}

func (t *CountdownTimer) fire(gen int) {
	t.mu.Lock()
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.deadline = time.Time{}
	t.timer = nil
	fn := t.onElapse
	t.mu.Unlock()
	fn()
}
