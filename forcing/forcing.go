// Package forcing reads the daily ocean state and surface heat-flux fields
// driving the mixed-layer budget: NetCDF state files (temperature, velocity,
// mixed-layer depth) and flat-binary flux record archives.
package forcing

import "github.com/ctessum/sparse"

// StateFields holds one day of decoded ocean state: temperature and velocity
// on (z,y,x), mixed-layer depth on (y,x). Fill values arrive resolved to NaN
// and scale/offset already applied.
type StateFields struct {
	T, U, V *sparse.DenseArray // (nz,ny,nx)
	H       *sparse.DenseArray // (ny,nx)
}

// FluxDay holds one day of surface heat-flux components (W/m², positive into
// the ocean).
type FluxDay struct {
	SW, LW, LHF, SHF *sparse.DenseArray // (ny,nx)
}
