package service

import (
	"fmt"
	"time"

	"algotimer/internal/modules/session/domain"
	sessionout "algotimer/internal/modules/session/port/out"
	"algotimer/internal/platform/clock"
	apperrors "algotimer/internal/platform/errors"
)

type clockState int

const (
	clockIdle clockState = iota
	clockTicking
	clockDone
)

// StageClock counts a single stage down in whole seconds. A clock is
// single-use: once it has been started it can only be stopped or expire, and
// any callback still queued on the scheduler after that is a no-op.
type StageClock struct {
	clock     clock.Clock
	scheduler sessionout.Scheduler

	state    clockState
	stage    domain.StageID
	budget   int
	started  time.Time
	elapsed  int
	expired  bool
	onTick   func(remaining int)
	onExpire func()
}

func NewStageClock(clk clock.Clock, scheduler sessionout.Scheduler) *StageClock {
	return &StageClock{clock: clk, scheduler: scheduler}
}

// Start begins the countdown and reports the full budget through onTick
// right away. onExpire runs at most once, when the budget is used up.
func (c *StageClock) Start(stage domain.StageID, seconds int, onTick func(remaining int), onExpire func()) error {
	if c.state != clockIdle {
		return fmt.Errorf("%w: %s", apperrors.ErrClockUsed, stage)
	}
	c.state = clockTicking
	c.stage = stage
	c.budget = seconds
	c.started = c.clock.Now()
	c.onTick = onTick
	c.onExpire = onExpire
	c.check()
	return nil
}

// Stop halts the countdown and returns the whole seconds elapsed, capped at
// the budget. After expiry it returns the budget without side effects.
func (c *StageClock) Stop() int {
	switch c.state {
	case clockTicking:
		c.state = clockDone
		c.elapsed = min(c.elapsedWhole(), c.budget)
	case clockIdle:
		c.state = clockDone
	}
	return c.elapsed
}

// Remaining is the whole seconds left, zero once the clock is done.
func (c *StageClock) Remaining() int {
	if c.state != clockTicking {
		if c.state == clockIdle {
			return c.budget
		}
		return 0
	}
	return max(c.budget-c.elapsedWhole(), 0)
}

// Expired reports whether the clock ran out rather than being stopped.
func (c *StageClock) Expired() bool {
	return c.expired
}

func (c *StageClock) check() {
	if c.state != clockTicking {
		return
	}
	elapsed := c.clock.Now().Sub(c.started)
	remaining := c.budget - floorSeconds(elapsed)
	if remaining <= 0 {
		c.state = clockDone
		c.elapsed = c.budget
		c.expired = true
		if c.onExpire != nil {
			c.onExpire()
		}
		return
	}
	if c.onTick != nil {
		c.onTick(remaining)
	}
	// Aim at the next whole-second boundary so late ticks do not accumulate.
	next := time.Duration(floorSeconds(elapsed)+1)*time.Second - max(elapsed, 0)
	c.scheduler.Schedule(next, c.check)
}

func (c *StageClock) elapsedWhole() int {
	return floorSeconds(c.clock.Now().Sub(c.started))
}

// floorSeconds truncates d to whole seconds, treating clock drift below
// zero as no time at all.
func floorSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Second)
}
