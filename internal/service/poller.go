package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"signtrack/internal/workflow"
)

// Poll cadence tightens as completion nears: late stages resolve quickly and
// the perceived latency of the final transition matters most.
const (
	pollIntervalNearDone = 1 * time.Second
	pollIntervalMid      = 2 * time.Second
	pollIntervalEarly    = 3 * time.Second
)

// PollerState tracks where the scheduling loop is.
type PollerState int32

const (
	PollerIdle PollerState = iota
	PollerScheduled
	PollerInFlight
	PollerStopped
)

func (s PollerState) String() string {
	switch s {
	case PollerIdle:
		return "idle"
	case PollerScheduled:
		return "scheduled"
	case PollerInFlight:
		return "in_flight"
	case PollerStopped:
		return "stopped"
	}
	return "unknown"
}

// PollDriver is what the poller schedules: one serialized poll at a time,
// plus the snapshot it adapts its cadence to.
type PollDriver interface {
	Poll(ctx context.Context) (terminal bool, err error)
	Snapshot() workflow.Snapshot
}

// Poller owns the polling schedule for one batch run. A single goroutine
// runs the loop, so polls are serialized by construction: there is never more
// than one outstanding request. It stops itself when the driver reports a
// terminal state or the context is canceled; an in-flight request is never
// aborted mid-way, its response is simply discarded downstream.
type Poller struct {
	driver      PollDriver
	logger      *zap.Logger
	state       atomic.Int32
	refresh     chan struct{}
	intervalFor func(progress int) time.Duration
}

func NewPoller(driver PollDriver, logger *zap.Logger) (*Poller, error) {
	if driver == nil {
		return nil, fmt.Errorf("poll driver is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Poller{
		driver:      driver,
		logger:      logger,
		refresh:     make(chan struct{}, 1),
		intervalFor: PollInterval,
	}, nil
}

// PollInterval picks the progress-adaptive cadence.
func PollInterval(progress int) time.Duration {
	switch {
	case progress > 80:
		return pollIntervalNearDone
	case progress > 50:
		return pollIntervalMid
	default:
		return pollIntervalEarly
	}
}

// Start runs the scheduling loop until the batch settles or ctx is canceled.
// The first poll fires immediately so the caller does not wait a full
// interval after submission.
func (p *Poller) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer p.state.Store(int32(PollerStopped))

	if done := p.pollOnce(ctx); done {
		return nil
	}

	timer := time.NewTimer(p.nextInterval())
	defer timer.Stop()
	p.state.Store(int32(PollerScheduled))

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		case <-p.refresh:
			// Manual trigger collapses Scheduled into InFlight without
			// waiting for the timer.
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}

		if done := p.pollOnce(ctx); done {
			return nil
		}
		timer.Reset(p.nextInterval())
		p.state.Store(int32(PollerScheduled))
	}
}

// Refresh requests an immediate poll. It is accepted only while the loop is
// waiting on its timer; an in-flight poll is never doubled up.
func (p *Poller) Refresh() bool {
	if p == nil {
		return false
	}
	if PollerState(p.state.Load()) != PollerScheduled {
		return false
	}
	select {
	case p.refresh <- struct{}{}:
		return true
	default:
		return false
	}
}

func (p *Poller) State() PollerState {
	return PollerState(p.state.Load())
}

func (p *Poller) pollOnce(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}

	p.state.Store(int32(PollerInFlight))
	terminal, err := p.driver.Poll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		p.logger.Warn("poll cycle failed", zap.Error(err))
	}
	return terminal
}

func (p *Poller) nextInterval() time.Duration {
	return p.intervalFor(p.driver.Snapshot().OverallProgress)
}
