package playback

import (
	"sort"
	"sync"
	"time"
)

type entry struct {
	at time.Duration
	fn func()
}

// Clock runs registered callbacks at offsets from its start time, one at a
// time, in offset order. Callbacks registered for the same offset run in
// registration order. Callbacks run with the clock's lock held and must not
// call back into the clock.
type Clock struct {
	mu      sync.Mutex
	entries []entry
	gen     uint64
	cancel  chan struct{}
	start   time.Time
	running bool
}

func NewClock() *Clock {
	return &Clock{}
}

// At registers fn to run at offset at once the clock is started.
func (c *Clock) At(at time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := sort.Search(len(c.entries), func(i int) bool {
		return c.entries[i].at > at
	})
	c.entries = append(c.entries, entry{})
	copy(c.entries[i+1:], c.entries[i:])
	c.entries[i] = entry{at: at, fn: fn}
}

// Start starts the clock at zero. Starting a running clock does nothing.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	c.running = true
	c.start = time.Now()
	c.cancel = make(chan struct{})
	go c.run(c.gen, c.cancel)
}

// Reset drops every pending callback and rewinds the clock to zero. Once it
// returns no previously registered callback will run.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.entries = nil
	c.running = false
	if c.cancel != nil {
		close(c.cancel)
		c.cancel = nil
	}
}

// elapsed is the time since Start, 0 when the clock is not running.
func (c *Clock) elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return 0
	}
	return time.Since(c.start)
}

// pending is the number of callbacks that have not run yet.
func (c *Clock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Clock) run(gen uint64, cancel <-chan struct{}) {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		if len(c.entries) == 0 {
			c.running = false
			c.mu.Unlock()
			return
		}
		wait := time.Until(c.start.Add(c.entries[0].at))
		if wait <= 0 {
			next := c.entries[0]
			c.entries = c.entries[1:]
			next.fn()
			c.mu.Unlock()
			continue
		}
		c.mu.Unlock()

		timer.Reset(wait)
		select {
		case <-cancel:
			return
		case <-timer.C:
		}
	}
}
