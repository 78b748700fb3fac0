package grid

import (
	"fmt"
	"math"
)

const earthRadius = 6378000. // m

// Definition holds the immutable description of the model lattice: geographic
// horizontal axes, a depth axis (increasing downward, non-uniform spacing
// allowed), the derived half-level bounds used for mixed-layer integration,
// the spherical metric terms, and the per-cell count of valid depth levels.
type Definition struct {
	Lats, Lons []float64 // cell-centre coordinates (deg)
	Depths     []float64 // sample depths (m, increasing downward)
	Zhalf      []float64 // half-level bounds (m), len Nz+1, Zhalf[0]=0
	Kbot       []int     // number of valid depth levels per cell [Ny*Nx]; 0 = land
	DxRow      []float64 // zonal spacing per latitude row (m)
	Dy         float64   // meridional spacing (m)
	Nz, Ny, Nx int
}

// New assembles a Definition from raw axes and a bottom-level scan.
func New(lats, lons, depths []float64, kbot []int) (*Definition, error) {
	ny, nx, nz := len(lats), len(lons), len(depths)
	if ny < 3 || nx < 3 {
		return nil, fmt.Errorf("grid.New: need at least 3x3 horizontal cells, have %dx%d", ny, nx)
	}
	if nz < 2 {
		return nil, fmt.Errorf("grid.New: need at least 2 depth levels, have %d", nz)
	}
	if len(kbot) != ny*nx {
		return nil, fmt.Errorf("grid.New: bottom index length %d does not match %dx%d lattice", len(kbot), ny, nx)
	}
	for k := 1; k < nz; k++ {
		if depths[k] <= depths[k-1] {
			return nil, fmt.Errorf("grid.New: depth axis not increasing at level %d (%f, %f)", k, depths[k-1], depths[k])
		}
	}

	gd := Definition{
		Lats:   lats,
		Lons:   lons,
		Depths: depths,
		Zhalf:  halfLevels(depths),
		Kbot:   kbot,
		Nz:     nz,
		Ny:     ny,
		Nx:     nx,
	}

	dlat := math.Abs(lats[1] - lats[0])
	dlon := math.Abs(lons[1] - lons[0])
	gd.Dy = 2. * math.Pi * earthRadius * dlat / 360.
	gd.DxRow = make([]float64, ny)
	for j, lat := range lats {
		gd.DxRow[j] = 2. * math.Pi * earthRadius * dlon * math.Cos(lat*math.Pi/180.) / 360.
	}
	return &gd, nil
}

// halfLevels returns the bounds bracketing each depth sample: the surface,
// the midpoints between adjacent samples, and a bottom bound extended half
// the last sample spacing below the deepest sample.
func halfLevels(depths []float64) []float64 {
	nz := len(depths)
	zh := make([]float64, nz+1)
	zh[0] = 0.
	for k := 0; k < nz-1; k++ {
		zh[k+1] = 0.5 * (depths[k] + depths[k+1])
	}
	zh[nz] = depths[nz-1] + 0.5*(depths[nz-1]-depths[nz-2])
	return zh
}

// CellID flattens a (row, column) pair to the array index.
func (gd *Definition) CellID(j, i int) int { return j*gd.Nx + i }

// IsWater reports whether the cell holds enough valid levels to integrate
// (2 samples are needed to bracket the mixed-layer base).
func (gd *Definition) IsWater(j, i int) bool { return gd.Kbot[j*gd.Nx+i] >= 2 }

// NumWater counts integrable cells.
func (gd *Definition) NumWater() (n int) {
	for _, kb := range gd.Kbot {
		if kb >= 2 {
			n++
		}
	}
	return
}
