package fs

import (
	"sync"
	"time"

	"github.com/aretw0/larder/pkg/core"
)

// debouncer coalesces bursts of events per document ID. The last event for an
// ID within the delay wins; different IDs never delay each other.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]*pendingEvent
	stopped bool
	wg      sync.WaitGroup
}

type pendingEvent struct {
	timer *time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		pending: make(map[string]*pendingEvent),
	}
}

// add schedules emit(e) after the quiet period, replacing any pending event for e.ID.
func (d *debouncer) add(e core.Event, emit func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	if prev, ok := d.pending[e.ID]; ok && prev.timer.Stop() {
		d.wg.Done()
	}

	entry := &pendingEvent{}
	d.wg.Add(1)
	entry.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		if d.pending[e.ID] == entry {
			delete(d.pending, e.ID)
		}
		d.mu.Unlock()
		emit(e)
	})
	d.pending[e.ID] = entry
}

// stopAndWait drops pending events and waits (up to timeout) for callbacks already running.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for id, entry := range d.pending {
		if entry.timer.Stop() {
			d.wg.Done()
		}
		delete(d.pending, id)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
