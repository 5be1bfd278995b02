package service_test

import (
	"errors"
	"testing"
	"time"

	"algotimer/internal/modules/session/domain"
	"algotimer/internal/modules/session/service"
	apperrors "algotimer/internal/platform/errors"
	"algotimer/internal/platform/eventloop"
)

var epoch = time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)

type clockSpy struct {
	ticks   []int
	expired int
}

func (p *clockSpy) tick(remaining int) {
	p.ticks = append(p.ticks, remaining)
}

func (p *clockSpy) expire() {
	p.expired++
}

func TestStageClockTicksEverySecondThenExpiresOnce(t *testing.T) {
	t.Parallel()
	loop := eventloop.NewManual(epoch)
	c := service.NewStageClock(loop, loop)
	spy := &clockSpy{}
	if err := c.Start(domain.StageReading, 3, spy.tick, spy.expire); err != nil {
		t.Fatalf("start: %v", err)
	}
	loop.Advance(10 * time.Second)

	if len(spy.ticks) != 3 || spy.ticks[0] != 3 || spy.ticks[1] != 2 || spy.ticks[2] != 1 {
		t.Fatalf("expected ticks 3,2,1, got %v", spy.ticks)
	}
	if spy.expired != 1 || !c.Expired() {
		t.Fatalf("expected exactly one expiry, got %d", spy.expired)
	}
	if loop.Pending() != 0 {
		t.Fatalf("expired clock must not keep ticking, %d pending", loop.Pending())
	}
	if got := c.Stop(); got != 3 {
		t.Fatalf("stop after expiry should report the budget, got %d", got)
	}
	if spy.expired != 1 {
		t.Fatalf("stop after expiry must not fire again")
	}
}

func TestStageClockStopRecordsFlooredElapsed(t *testing.T) {
	t.Parallel()
	loop := eventloop.NewManual(epoch)
	c := service.NewStageClock(loop, loop)
	spy := &clockSpy{}
	if err := c.Start(domain.StageThinking, 90, spy.tick, spy.expire); err != nil {
		t.Fatalf("start: %v", err)
	}
	loop.Advance(40*time.Second + 700*time.Millisecond)
	if got := c.Remaining(); got != 50 {
		t.Fatalf("expected 50s remaining, got %d", got)
	}
	if got := c.Stop(); got != 40 {
		t.Fatalf("expected 40s elapsed, got %d", got)
	}
	if got := c.Stop(); got != 40 {
		t.Fatalf("second stop should be idempotent, got %d", got)
	}

	before := len(spy.ticks)
	loop.Advance(time.Hour)
	if len(spy.ticks) != before || spy.expired != 0 {
		t.Fatalf("stopped clock fired: ticks %d -> %d, expired %d", before, len(spy.ticks), spy.expired)
	}
	if c.Expired() {
		t.Fatalf("stopped clock must not report expiry")
	}
}

func TestStageClockUsesWallClockAcrossMissedTicks(t *testing.T) {
	t.Parallel()
	loop := eventloop.NewManual(epoch)
	c := service.NewStageClock(loop, loop)
	spy := &clockSpy{}
	if err := c.Start(domain.StageCoding, 600, spy.tick, spy.expire); err != nil {
		t.Fatalf("start: %v", err)
	}
	// The event loop stalls for two minutes; no ticks are delivered.
	loop.Skip(2*time.Minute + 300*time.Millisecond)
	if got := c.Stop(); got != 120 {
		t.Fatalf("expected 120s from wall clock, got %d", got)
	}
}

func TestStageClockExpiresLateWhenLoopStalledPastBudget(t *testing.T) {
	t.Parallel()
	loop := eventloop.NewManual(epoch)
	c := service.NewStageClock(loop, loop)
	spy := &clockSpy{}
	if err := c.Start(domain.StageReading, 5, spy.tick, spy.expire); err != nil {
		t.Fatalf("start: %v", err)
	}
	loop.Skip(30 * time.Second)
	loop.Advance(0)
	if spy.expired != 1 {
		t.Fatalf("expected expiry on the first late tick, got %d", spy.expired)
	}
	if got := c.Stop(); got != 5 {
		t.Fatalf("expiry records the budget, got %d", got)
	}
}

func TestStageClockIsSingleUse(t *testing.T) {
	t.Parallel()
	loop := eventloop.NewManual(epoch)
	c := service.NewStageClock(loop, loop)
	if err := c.Start(domain.StageReading, 10, nil, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.Stop()
	if err := c.Start(domain.StageReading, 10, nil, nil); !errors.Is(err, apperrors.ErrClockUsed) {
		t.Fatalf("expected ErrClockUsed, got %v", err)
	}
}

func TestStageClockStopBeforeStartIsZero(t *testing.T) {
	t.Parallel()
	loop := eventloop.NewManual(epoch)
	c := service.NewStageClock(loop, loop)
	if got := c.Stop(); got != 0 {
		t.Fatalf("expected zero, got %d", got)
	}
	if err := c.Start(domain.StageReading, 10, nil, nil); !errors.Is(err, apperrors.ErrClockUsed) {
		t.Fatalf("stopped clock cannot be started, got %v", err)
	}
}

type backwardsClock struct {
	times []time.Time
}

func (c *backwardsClock) Now() time.Time {
	now := c.times[0]
	if len(c.times) > 1 {
		c.times = c.times[1:]
	}
	return now
}

type nopScheduler struct{}

func (nopScheduler) Schedule(time.Duration, func()) {}

func TestStageClockClampsNegativeElapsed(t *testing.T) {
	t.Parallel()
	clk := &backwardsClock{times: []time.Time{epoch, epoch, epoch.Add(-3 * time.Second)}}
	c := service.NewStageClock(clk, nopScheduler{})
	if err := c.Start(domain.StageThinking, 90, nil, nil); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := c.Stop(); got != 0 {
		t.Fatalf("negative drift must clamp to zero, got %d", got)
	}
}
