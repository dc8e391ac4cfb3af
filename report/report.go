// Package report formats a simulation's accumulated statistics as a fixed
// column text table. It is a pure formatting pass over already-computed
// engine state, reading only the engine's public queries — it never
// recomputes a statistic itself.
package report

import (
	"fmt"
	"io"

	"github.com/smpl-go/smpl/engine"
)

// Write renders the current report for eng to w: a header carrying the model
// name, clock, and statistics-interval length, followed by one row per
// registered facility with its utilization, mean busy period, mean queue
// length, and operation counters. If no facilities are registered, it emits
// a single abandonment line instead.
func Write(w io.Writer, eng *engine.Engine) error {
	handles := eng.FacilityHandles()
	if len(handles) == 0 {
		_, err := fmt.Fprintln(w, "no facilities defined:  report abandoned")
		return err
	}

	if _, err := fmt.Fprintf(w, "smpl SIMULATION REPORT\n\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "MODEL %-56sTIME: %11.3f\n", eng.MName(), eng.Time()); err != nil {
		return err
	}
	interval := eng.Time() - eng.IntervalStart()
	if _, err := fmt.Fprintf(w, "%57sINTERVAL: %11.3f\n\n", "", interval); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "MEAN BUSY     MEAN QUEUE        OPERATION COUNTS\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, " FACILITY          UTIL.     PERIOD        LENGTH     RELEASE   PREEMPT   QUEUE\n"); err != nil {
		return err
	}

	for _, h := range handles {
		snap, err := eng.Snapshot(h)
		if err != nil {
			return err
		}
		u, err := eng.U(h)
		if err != nil {
			return err
		}
		b, err := eng.B(h)
		if err != nil {
			return err
		}
		lq, err := eng.Lq(h)
		if err != nil {
			return err
		}

		name := snap.Name
		if snap.NumServers > 1 {
			name = fmt.Sprintf("%s[%d]", snap.Name, snap.NumServers)
		}

		if _, err := fmt.Fprintf(w, " %-17s%6.4f %10.3f %13.3f %11d %9d %7d\n",
			name, u, b, lq, snap.Releases, snap.PreemptCount, snap.QueueExitCount); err != nil {
			return err
		}
	}
	return nil
}
