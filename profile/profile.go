// Package profile integrates raw depth-sampled ocean columns into
// mixed-layer properties: layer-mean temperature and velocity, base and
// surface temperatures, and the vertical temperature gradient at the base.
package profile

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var (
	// ErrOutOfRange flags a mixed-layer depth outside the column's sampled
	// depth span; no extrapolation beyond the column is performed.
	ErrOutOfRange = errors.New("profile: mixed-layer depth outside sampled column")
	// ErrMissing flags a missing-data marker in a sample contributing to the
	// integration.
	ErrMissing = errors.New("profile: missing sample in integration range")
)

// GradientMode selects the estimator for the vertical temperature gradient at
// the mixed-layer base.
type GradientMode int

const (
	Grad2pt GradientMode = iota // finite difference across the bracketing samples
	GradLSQ                     // least-squares slope through the three nearest samples
)

// Column is one cell's vertical profile paired with its mixed-layer depth.
// Samples align with the shared depth axis; Kbot counts the valid levels
// above the sea floor.
type Column struct {
	T, U, V []float64
	H       float64
	Kbot    int
}

// State holds the integration products for one cell and day.
type State struct {
	Tm, Um, Vm float64 // mixed-layer means
	Tb         float64 // temperature at the layer base
	T0         float64 // surface temperature, extrapolated to z=0
	TzH        float64 // vertical temperature gradient at the base (K/m)
	DT         float64 // Tm - Tb
	H          float64 // mixed-layer depth (m)
}

// Integrate produces the mixed-layer State for one column. The layer means
// weight each depth cell by its overlap with [0, h]: full bound-to-bound
// thickness for interior cells, only the partial thickness above h for the
// cell straddling the base. Tb interpolates linearly between the two samples
// bracketing h; T0 extrapolates the two shallowest samples to the surface.
func Integrate(col *Column, depths, zhalf []float64, grad GradientMode) (State, error) {
	h, kbot := col.H, col.Kbot
	if kbot < 2 || math.IsNaN(h) {
		return State{}, ErrMissing
	}
	if h < depths[0] || h > depths[kbot-1] {
		return State{}, ErrOutOfRange
	}

	var sT, sU, sV float64
	for k := 0; k < kbot; k++ {
		zl := zhalf[k]
		if zl >= h {
			break
		}
		w := math.Min(h, zhalf[k+1]) - zl
		if math.IsNaN(col.T[k]) || math.IsNaN(col.U[k]) || math.IsNaN(col.V[k]) {
			return State{}, ErrMissing
		}
		sT += w * col.T[k]
		sU += w * col.U[k]
		sV += w * col.V[k]
	}

	pos := sort.SearchFloat64s(depths[:kbot], h) - 1
	if pos < 0 {
		pos = 0
	}
	if pos > kbot-2 {
		pos = kbot - 2
	}
	dz := depths[pos+1] - depths[pos]
	tb := col.T[pos] + (col.T[pos+1]-col.T[pos])*(h-depths[pos])/dz

	var tzh float64
	switch grad {
	case GradLSQ:
		tzh = lsqGradient(col.T, depths, pos, kbot)
	default:
		tzh = (col.T[pos+1] - col.T[pos]) / dz
	}

	s := State{
		Tm:  sT / h,
		Um:  sU / h,
		Vm:  sV / h,
		Tb:  tb,
		T0:  surface(col.T, depths),
		TzH: tzh,
		H:   h,
	}
	s.DT = s.Tm - s.Tb
	if math.IsNaN(s.Tm) || math.IsNaN(s.Tb) {
		return State{}, ErrMissing
	}
	return s, nil
}

// lsqGradient fits an ordinary least-squares line through the three samples
// nearest the layer base, shifting the window to stay inside the column;
// with fewer than three valid samples it reduces to the two-point estimate.
func lsqGradient(t, depths []float64, pos, kbot int) float64 {
	lo, hi := pos-1, pos+2
	if lo < 0 {
		lo, hi = 0, 3
	}
	if hi > kbot {
		lo, hi = kbot-3, kbot
		if lo < 0 {
			lo = 0
		}
	}
	if hi-lo < 3 {
		return (t[pos+1] - t[pos]) / (depths[pos+1] - depths[pos])
	}
	_, beta := stat.LinearRegression(depths[lo:hi], t[lo:hi], nil, false)
	return beta
}

// surface extrapolates the two shallowest samples to z=0, falling back to the
// top sample when the second is missing.
func surface(t, depths []float64) float64 {
	if len(t) < 2 || math.IsNaN(t[1]) {
		return t[0]
	}
	m := (t[1] - t[0]) / (depths[1] - depths[0])
	return t[0] - m*depths[0]
}
