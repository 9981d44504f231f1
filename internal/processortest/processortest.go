// Package processortest provides the polling "wait for halt" helper a
// test harness uses to bound how long it will wait for a running
// simulator.Processor, grounded on the original's gtest ProcessorTests
// fixture (its WaitForHalt(timeout, processor) helper).
package processortest

import (
	"context"
	"time"

	simulator "github.com/Galarius/intel-8080-simulator"
)

// TimingViolation reports that a harness-imposed patience budget
// expired before the processor halted. It is owned by the test
// harness, not the simulator: the simulation goroutine driving Start
// is unaffected and keeps running until its own context is cancelled
// or Stop is called.
type TimingViolation struct {
	Timeout time.Duration
}

func (e *TimingViolation) Error() string {
	return "processortest: processor did not halt within " + e.Timeout.String()
}

// pollInterval mirrors the original fixture's polling cadence, scaled
// down from its 100ms wall-clock check to match this simulator's much
// shorter expected run times.
const pollInterval = 200 * time.Microsecond

// WaitForHalt polls p.Halted() until it reports true or timeout
// elapses, returning a *TimingViolation in the latter case. It does not
// start or stop the processor itself; callers are expected to have
// already launched p.Start (typically on its own goroutine) and to call
// p.Stop once WaitForHalt returns, whether it succeeded or not.
func WaitForHalt(ctx context.Context, p *simulator.Processor, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		if p.Halted() {
			return nil
		}
		if time.Now().After(deadline) {
			return &TimingViolation{Timeout: timeout}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
