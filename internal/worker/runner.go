// Package worker implements the event processing pipeline daemons: H.264 to
// MP4 conversion, MP4 re-encoding, and AI analysis. All three share one loop
// shape: recover stale claims, claim a small batch with a single conditional
// update, process each job under a per-event timeout, and commit with a
// claimant-guarded update so a lost claim turns the commit into a no-op.
package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"
)

// Processor is one pipeline stage. ProcessBatch claims and works one batch
// and reports how many jobs it claimed; zero means idle. RecoverStale clears
// claims older than the reclaim horizon.
type Processor interface {
	Name() string
	ProcessBatch(ctx context.Context) (int, error)
	RecoverStale(ctx context.Context) (int64, error)
}

// Runner drives a Processor until the context is cancelled. Idle iterations
// back off by doubling the sleep up to IdleMax; any claimed work resets it.
type Runner struct {
	Proc       Processor
	IdleMin    time.Duration
	IdleMax    time.Duration
	StaleEvery time.Duration

	// Wake short-circuits the idle sleep, e.g. when the storage watcher
	// sees a new artifact. Optional.
	Wake <-chan struct{}
}

// Claimant builds the worker's claim identity, stable for the process
// lifetime and unique across hosts.
func Claimant(name string) string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s@%s:%d", name, host, os.Getpid())
}

// Run blocks until ctx is cancelled. Stale recovery happens once at boot and
// then every StaleEvery, so a crashed peer's claims are picked up even when
// no new work arrives.
func (r *Runner) Run(ctx context.Context) {
	name := r.Proc.Name()
	log.Printf("%s: starting", name)

	if n, err := r.Proc.RecoverStale(ctx); err != nil {
		log.Printf("%s: stale recovery at boot: %v", name, err)
	} else if n > 0 {
		log.Printf("%s: recovered %d stale claims at boot", name, n)
	}

	stale := time.NewTicker(r.StaleEvery)
	defer stale.Stop()

	idle := r.IdleMin
	for {
		worked, err := r.Proc.ProcessBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("%s: stopping", name)
				return
			}
			log.Printf("%s: batch failed: %v", name, err)
		}

		if worked > 0 {
			idle = r.IdleMin
			continue
		}

		timer := time.NewTimer(idle)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Printf("%s: stopping", name)
			return
		case <-stale.C:
			timer.Stop()
			if n, err := r.Proc.RecoverStale(ctx); err != nil {
				log.Printf("%s: stale recovery: %v", name, err)
			} else if n > 0 {
				log.Printf("%s: recovered %d stale claims", name, n)
			}
		case <-r.Wake:
			timer.Stop()
			idle = r.IdleMin
		case <-timer.C:
			idle *= 2
			if idle > r.IdleMax {
				idle = r.IdleMax
			}
		}
	}
}
