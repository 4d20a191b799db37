package client

import (
	"sync"
	"time"
)

// Debouncer coalesces a burst of updates into a single emission after a
// quiet window. Each Update re-arms the timer, so only the final value of
// a burst reaches the callback. Safe for concurrent use.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	emit    func(value string)
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a Debouncer that calls emit with the latest value
// once no Update has arrived for delay.
func NewDebouncer(delay time.Duration, emit func(value string)) *Debouncer {
	if emit == nil {
		panic("client.NewDebouncer: emit must not be nil")
	}
	return &Debouncer{delay: delay, emit: emit}
}

// Update records a new value and restarts the quiet window. Superseded
// values are never emitted.
func (d *Debouncer) Update(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
		d.emit(value)
	})
}

// Stop cancels any pending emission. Further Updates are ignored. Used on
// teardown so a late timer never fires into a dismantled consumer.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
