package domain

// SessionClock tracks elapsed wall-clock seconds against a configured
// duration. It owns no timer; an external driver calls Tick once per elapsed
// real second while the session is not paused.
type SessionClock struct {
	duration int
	elapsed  int
	running  bool
	paused   bool
}

func NewSessionClock() *SessionClock {
	return &SessionClock{}
}

func (c *SessionClock) Start(durationSeconds int) {
	c.duration = durationSeconds
	c.elapsed = 0
	c.running = true
	c.paused = false
}

// Tick advances elapsed time by one second and reports expiry. Ticks while
// paused or before Start leave elapsed time untouched.
func (c *SessionClock) Tick() (int, bool) {
	if c.running && !c.paused {
		c.elapsed++
	}
	return c.elapsed, c.running && c.elapsed >= c.duration
}

func (c *SessionClock) Pause() {
	if c.running {
		c.paused = true
	}
}

func (c *SessionClock) Resume() {
	if c.running {
		c.paused = false
	}
}

func (c *SessionClock) Reset() {
	c.duration = 0
	c.elapsed = 0
	c.running = false
	c.paused = false
}

func (c *SessionClock) Elapsed() int {
	return c.elapsed
}
