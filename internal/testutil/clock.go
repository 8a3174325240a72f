package testutil

import (
	"fmt"
	"sync"
	"time"
)

// StubClock is a film.Clock under test control. Each call to Now moves it
// forward by its step, so consecutive records get distinct times.
type StubClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewStubClock creates a clock starting at start that advances by step per reading.
func NewStubClock(start time.Time, step time.Duration) *StubClock {
	return &StubClock{now: start, step: step}
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// RunIDs hands out "run-1", "run-2", ... in call order.
type RunIDs struct {
	mu   sync.Mutex
	next int
}

func NewRunIDs() *RunIDs { return &RunIDs{} }

func (g *RunIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("run-%d", g.next)
}
