package mlhb

import (
	"math"

	"github.com/ctessum/sparse"
)

// Entrainment-velocity strategies, one per WeMode. Each returns the per-cell
// w_e field (m/s, positive when the layer deepens); cells lacking a needed
// neighbor day stay NaN.

func (ev *Evaluator) weDhdt(prev, cur, next *DayState) *sparse.DenseArray {
	out := nanArray(ev.GD.Ny, ev.GD.Nx)
	if next == nil {
		return out
	}
	for i, h := range cur.H.Elements {
		out.Elements[i] = (next.H.Elements[i] - h) / secperday
	}
	return out
}

func (ev *Evaluator) weDeepening(prev, cur, next *DayState) *sparse.DenseArray {
	out := ev.weDhdt(prev, cur, next)
	for i, w := range out.Elements {
		if w < 0. {
			out.Elements[i] = 0.
		}
	}
	return out
}

func (ev *Evaluator) weCentered(prev, cur, next *DayState) *sparse.DenseArray {
	out := nanArray(ev.GD.Ny, ev.GD.Nx)
	if prev == nil || next == nil {
		return out
	}
	for i := range out.Elements {
		out.Elements[i] = (next.H.Elements[i] - prev.H.Elements[i]) / (2. * secperday)
	}
	return out
}

// weFull adds the horizontal transport divergence of layer thickness to the
// local tendency; the divergence stencil leaves the boundary ring NaN.
func (ev *Evaluator) weFull(prev, cur, next *DayState) *sparse.DenseArray {
	gd := ev.GD
	out := nanArray(gd.Ny, gd.Nx)
	if next == nil {
		return out
	}
	for j := 1; j < gd.Ny-1; j++ {
		dxj := gd.DxRow[j]
		for i := 1; i < gd.Nx-1; i++ {
			ht := (next.H.Get(j, i) - cur.H.Get(j, i)) / secperday
			divx := (cur.H.Get(j, i+1)*cur.Um.Get(j, i+1) - cur.H.Get(j, i-1)*cur.Um.Get(j, i-1)) / (2. * dxj)
			divy := (cur.H.Get(j+1, i)*cur.Vm.Get(j+1, i) - cur.H.Get(j-1, i)*cur.Vm.Get(j-1, i)) / (2. * gd.Dy)
			out.Set(ht+divx+divy, j, i)
		}
	}
	return out
}

// entrainAt converts w_e to the entrainment term -(w_e/h)·ΔT, applying the
// configured caps and the cooling-only clamp.
func (ev *Evaluator) entrainAt(we *sparse.DenseArray, cur *DayState, hd float64, j, i int, rd *yearDiag) float64 {
	w := we.Get(j, i)
	if math.IsNaN(w) {
		return math.NaN()
	}
	if c := ev.Cfg.WeCap / secperday; c > 0 {
		if w > c {
			w = c
		} else if w < -c {
			w = -c
		}
	} else if math.Abs(w) > sanityWe {
		rd.nWeWild++
	}

	dt := cur.DT.Get(j, i)
	if c := ev.Cfg.DTCap; c > 0 {
		if dt > c {
			dt = c
		} else if dt < -c {
			dt = -c
		}
	}

	ent := -w / hd * dt
	if c := ev.Cfg.EntCap / secperday; c > 0 {
		if ent > c {
			ent = c
		} else if ent < -c {
			ent = -c
		}
	}
	if ev.Cfg.Cooling && ent > 0. {
		ent = 0.
	}
	return ent
}
