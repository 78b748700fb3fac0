package mlhb

import "math"

// diffuseAt computes horizontal diffusion in the thickness-weighted
// conservative form (Ah/h)·∇·[h∇Tm - ΔT∇h] from one-sided half-point fluxes.
// A naive Laplacian of Tm misses the thickness-gradient part and is not
// equivalent where the layer depth varies horizontally.
func (ev *Evaluator) diffuseAt(cur *DayState, hd float64, j, i int) float64 {
	gd := ev.GD
	if j < 1 || j >= gd.Ny-1 || i < 1 || i >= gd.Nx-1 {
		return math.NaN()
	}
	dxj, dy := gd.DxRow[j], gd.Dy

	hTxIp := cur.H.Get(j, i+1) * (cur.Tm.Get(j, i+1) - cur.Tm.Get(j, i)) / dxj
	hTxIm := cur.H.Get(j, i) * (cur.Tm.Get(j, i) - cur.Tm.Get(j, i-1)) / dxj
	dThxIp := cur.DT.Get(j, i+1) * (cur.H.Get(j, i+1) - cur.H.Get(j, i)) / dxj
	dThxIm := cur.DT.Get(j, i) * (cur.H.Get(j, i) - cur.H.Get(j, i-1)) / dxj

	hTyJp := cur.H.Get(j+1, i) * (cur.Tm.Get(j+1, i) - cur.Tm.Get(j, i)) / dy
	hTyJm := cur.H.Get(j, i) * (cur.Tm.Get(j, i) - cur.Tm.Get(j-1, i)) / dy
	dThyJp := cur.DT.Get(j+1, i) * (cur.H.Get(j+1, i) - cur.H.Get(j, i)) / dy
	dThyJm := cur.DT.Get(j, i) * (cur.H.Get(j, i) - cur.H.Get(j-1, i)) / dy

	div1 := (hTxIp-hTxIm)/dxj + (hTyJp-hTyJm)/dy
	div2 := (dThxIp-dThxIm)/dxj + (dThyJp-dThyJm)/dy
	return ev.Cfg.Ah / hd * (div1 - div2)
}

// diffvAt computes vertical diffusion from the temperature gradient at the
// layer base.
func (ev *Evaluator) diffvAt(cur *DayState, hd float64, j, i int) float64 {
	return -ev.Cfg.Kv * cur.TzH.Get(j, i) / hd
}
