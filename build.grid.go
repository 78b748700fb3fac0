package mlhb

import (
	"fmt"
	"math"

	"github.com/upde12/mlhb/forcing"
	"github.com/upde12/mlhb/grid"
)

// BuildDefinition assembles the grid definition from one sample state file:
// coordinate axes, spherical metrics, half-levels, and a bottom-level scan
// from the temperature field's missing-data mask.
func BuildDefinition(ncfp string) (*grid.Definition, error) {

	println(" > step 1: reading coordinate axes")
	lats, lons, depths, err := forcing.ReadCoords(ncfp)
	if err != nil {
		return nil, fmt.Errorf("BuildDefinition: %v", err)
	}

	println(" > step 2: scanning bottom topography")
	kbot, err := func() ([]int, error) {
		sf, err := forcing.ReadState(ncfp)
		if err != nil {
			return nil, err
		}
		nz, ny, nx := sf.T.Shape[0], sf.T.Shape[1], sf.T.Shape[2]
		if ny != len(lats) || nx != len(lons) || nz != len(depths) {
			return nil, fmt.Errorf("field shape %v does not match axes (%d,%d,%d)", sf.T.Shape, len(depths), len(lats), len(lons))
		}
		kbot := make([]int, ny*nx)
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				kb := nz
				for k := 0; k < nz; k++ {
					if math.IsNaN(sf.T.Get(k, j, i)) {
						kb = k
						break
					}
				}
				kbot[j*nx+i] = kb
			}
		}
		return kbot, nil
	}()
	if err != nil {
		return nil, fmt.Errorf("BuildDefinition: %v", err)
	}

	println(" > step 3: assembling lattice metrics")
	gd, err := grid.New(lats, lons, depths, kbot)
	if err != nil {
		return nil, fmt.Errorf("BuildDefinition: %v", err)
	}
	return gd, nil
}
