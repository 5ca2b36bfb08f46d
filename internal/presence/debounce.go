package presence

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Debouncer suppresses an identical event seen again within the cooldown. It
// lives in memory only and may be lost between invocations, so it cuts
// duplicate work but is never what keeps side effects exactly-once.
type Debouncer struct {
	cooldown time.Duration

	mu        sync.Mutex
	entries   map[string]*debounceEntry
	lastSweep time.Time
}

type debounceEntry struct {
	limiter *rate.Limiter
	last    time.Time
}

func NewDebouncer(cooldown time.Duration) *Debouncer {
	return &Debouncer{cooldown: cooldown, entries: make(map[string]*debounceEntry)}
}

// Allow reports whether key may proceed at now. A suppressed call does not
// extend the window.
func (d *Debouncer) Allow(key string, now time.Time) bool {
	if d.cooldown <= 0 {
		return true
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.sweepLocked(now)

	e, ok := d.entries[key]
	if !ok {
		e = &debounceEntry{limiter: rate.NewLimiter(rate.Every(d.cooldown), 1)}
		d.entries[key] = e
	}
	if !e.limiter.AllowN(now, 1) {
		return false
	}
	e.last = now
	return true
}

// Forget gives back the slot taken by key so a redelivery is not suppressed.
func (d *Debouncer) Forget(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, key)
}

// Len is the number of keys currently tracked.
func (d *Debouncer) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

// sweepLocked drops keys whose window has passed; their limiter would allow
// the next call anyway.
func (d *Debouncer) sweepLocked(now time.Time) {
	if now.Sub(d.lastSweep) < d.cooldown {
		return
	}
	for key, e := range d.entries {
		if now.Sub(e.last) >= d.cooldown {
			delete(d.entries, key)
		}
	}
	d.lastSweep = now
}
