package mlhb

import (
	"sync"

	"github.com/upde12/mlhb/forcing"
	"github.com/upde12/mlhb/profile"
)

// buildDayState integrates every water column of one day's state fields,
// fanning out across latitude rows. Cells that fail integration keep their
// NaN marker; a bad cell never aborts the day.
func (ev *Evaluator) buildDayState(sf *forcing.StateFields) *DayState {
	gd := ev.GD
	ds := newDayState(gd.Ny, gd.Nx)

	var wg sync.WaitGroup
	wg.Add(gd.Ny)
	for j := 0; j < gd.Ny; j++ {
		go func(j int) {
			defer wg.Done()
			col := profile.Column{
				T: make([]float64, gd.Nz),
				U: make([]float64, gd.Nz),
				V: make([]float64, gd.Nz),
			}
			for i := 0; i < gd.Nx; i++ {
				kb := gd.Kbot[gd.CellID(j, i)]
				if kb < 2 {
					continue // land
				}
				for k := 0; k < kb; k++ {
					col.T[k] = sf.T.Get(k, j, i)
					col.U[k] = sf.U.Get(k, j, i)
					col.V[k] = sf.V.Get(k, j, i)
				}
				col.H, col.Kbot = sf.H.Get(j, i), kb

				s, err := profile.Integrate(&col, gd.Depths, gd.Zhalf, ev.Cfg.VGrad)
				if err != nil {
					continue // cell stays invalid for the day
				}
				ds.Tm.Set(s.Tm, j, i)
				ds.Tb.Set(s.Tb, j, i)
				ds.T0.Set(s.T0, j, i)
				ds.Um.Set(s.Um, j, i)
				ds.Vm.Set(s.Vm, j, i)
				ds.TzH.Set(s.TzH, j, i)
				ds.DT.Set(s.DT, j, i)
				ds.H.Set(s.H, j, i)
			}
		}(j)
	}
	wg.Wait()
	return ds
}
