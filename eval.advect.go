package mlhb

import "math"

// advectAt computes the non-flux-form horizontal advection of the layer-mean
// temperature, -u·∂Tm/∂x - v·∂Tm/∂y, with the zonal spacing scaled by
// cos(lat) per row. The boundary ring has no centered stencil and stays NaN.
func (ev *Evaluator) advectAt(cur *DayState, j, i int) float64 {
	gd := ev.GD
	if j < 1 || j >= gd.Ny-1 || i < 1 || i >= gd.Nx-1 {
		return math.NaN()
	}
	tmx := (cur.Tm.Get(j, i+1) - cur.Tm.Get(j, i-1)) / (2. * gd.DxRow[j])
	tmy := (cur.Tm.Get(j+1, i) - cur.Tm.Get(j-1, i)) / (2. * gd.Dy)
	return -(cur.Um.Get(j, i)*tmx + cur.Vm.Get(j, i)*tmy)
}
