package mlhb

import (
	"math"
	"sync"
)

// yearDiag accumulates the per-year run diagnostics: closure-residual
// violations, collapsed thickness divisors, and uncapped entrainment-velocity
// spikes. Rows accumulate locally and merge once, so the day fan-out never
// contends on the mutex.
type yearDiag struct {
	mu       sync.Mutex
	n, nBad  int
	maxAbs   float64
	nShallow int
	nWeWild  int
}

// count tallies one closure residual against the diagnostic tolerance.
// A violation indicates an inconsistency between the tendency and the summed
// terms; it is surfaced, never fatal.
func (yd *yearDiag) count(clos, tol float64) {
	if math.IsNaN(clos) {
		return
	}
	yd.n++
	a := math.Abs(clos)
	if a > tol {
		yd.nBad++
	}
	if a > yd.maxAbs {
		yd.maxAbs = a
	}
}

func (yd *yearDiag) merge(r *yearDiag) {
	yd.mu.Lock()
	yd.n += r.n
	yd.nBad += r.nBad
	if r.maxAbs > yd.maxAbs {
		yd.maxAbs = r.maxAbs
	}
	yd.nShallow += r.nShallow
	yd.nWeWild += r.nWeWild
	yd.mu.Unlock()
}
