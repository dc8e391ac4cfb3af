package cmd

import (
	"fmt"

	"github.com/smpl-go/smpl/engine"
)

// Event codes understood by the built-in demo model. A scenario file's
// initial schedule entries use arrivalCode; the model generates
// departureCode entries itself.
const (
	arrivalCode   = 1
	departureCode = 2
)

// runDemoModel drains eng until its event queue is empty, treating every
// arrivalCode event as a request (or, with preempt enabled, a preempt) for
// the named facility, and every departureCode event as the matching
// release. Service time is exponential with mean serviceMean, drawn from the
// engine's own PRNG, so a run is fully reproducible from the scenario and
// the serviceMean/preempt arguments alone.
//
// This lets a scenario file describe an M/M/c queueing model (optionally
// with preemption) with no Go code of its own — the common case the CLI
// exists to serve. A host embedding the engine directly for a different
// topology should drive Cause() itself instead of calling this.
func runDemoModel(eng *engine.Engine, h engine.FacilityHandle, serviceMean float64, preempt bool) error {
	for {
		code, token, ok := eng.Cause()
		if !ok {
			return nil
		}

		switch code {
		case arrivalCode:
			var outcome engine.Outcome
			var err error
			priority := 0
			if t, ok := token.(int); ok {
				priority = t
			}
			if preempt {
				outcome, err = eng.Preempt(h, token, priority)
			} else {
				outcome, err = eng.Request(h, token, priority)
			}
			if err != nil {
				return fmt.Errorf("dispatching arrival for %v: %w", token, err)
			}
			if outcome == engine.Reserved {
				duration := eng.Rand().Expntl(serviceMean)
				if err := eng.Schedule(departureCode, duration, token); err != nil {
					return fmt.Errorf("scheduling departure for %v: %w", token, err)
				}
			}
		case departureCode:
			if err := eng.Release(h, token); err != nil {
				return fmt.Errorf("releasing for %v: %w", token, err)
			}
		}
	}
}
