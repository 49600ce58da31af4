package viewmodel

import (
	"sync"
	"time"

	"github.com/marcus/phonebook/internal/models"
)

// DefaultStatusDelay is how long a status message stays visible
const DefaultStatusDelay = 2 * time.Second

type stopper interface {
	Stop() bool
}

// Banner holds at most one status message and clears it after a delay.
// A newer message cancels the pending clear of the previous one.
type Banner struct {
	mu      sync.Mutex
	delay   time.Duration
	current *models.StatusMessage
	seq     uint64
	timer   stopper
	onClear func()

	now       func() time.Time
	afterFunc func(time.Duration, func()) stopper
}

// NewBanner creates a banner; a non-positive delay uses DefaultStatusDelay.
func NewBanner(delay time.Duration) *Banner {
	if delay <= 0 {
		delay = DefaultStatusDelay
	}
	return &Banner{
		delay: delay,
		now:   time.Now,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// OnClear registers a callback run (off the caller's goroutine) when a
// message expires.
func (b *Banner) OnClear(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onClear = fn
}

// Notify replaces the current message and restarts the expiry timer.
func (b *Banner) Notify(text string, kind models.StatusKind) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	b.seq++
	seq := b.seq
	b.current = &models.StatusMessage{
		Text:      text,
		Kind:      kind,
		ExpiresAt: b.now().Add(b.delay),
	}
	b.timer = b.afterFunc(b.delay, func() { b.expire(seq) })
}

// Current returns the live message, if any.
func (b *Banner) Current() (models.StatusMessage, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil || !b.now().Before(b.current.ExpiresAt) {
		return models.StatusMessage{}, false
	}
	return *b.current, true
}

// Seq identifies the latest message; it changes on every Notify.
func (b *Banner) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// Delay returns the display duration.
func (b *Banner) Delay() time.Duration {
	return b.delay
}

// Clear drops the current message immediately.
func (b *Banner) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.current = nil
}

// expire clears the message only if nothing newer replaced it; a timer
// that fired while Notify was stopping it must not wipe the new message.
func (b *Banner) expire(seq uint64) {
	b.mu.Lock()
	if seq != b.seq || b.current == nil {
		b.mu.Unlock()
		return
	}
	b.current = nil
	b.timer = nil
	fn := b.onClear
	b.mu.Unlock()

	if fn != nil {
		fn()
	}
}
