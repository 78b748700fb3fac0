package mlhb

import (
	"math"

	"github.com/upde12/mlhb/forcing"
)

// qnetAt computes the net surface forcing term (K/s): the four flux
// components less the shortwave fraction penetrating below the layer base,
// normalized by heat capacity and the thickness denominator. Penetration
// decays from the physical layer depth; only the denominator is floored.
func (ev *Evaluator) qnetAt(fd *forcing.FluxDay, cur *DayState, hd float64, j, i int) float64 {
	if fd == nil {
		return math.NaN()
	}
	sw := fd.SW.Get(j, i)
	h := cur.H.Get(j, i)
	qh := sw * (ev.Cfg.RSw*math.Exp(-h/ev.Cfg.Gamma1) + (1.-ev.Cfg.RSw)*math.Exp(-h/ev.Cfg.Gamma2))
	return (sw + fd.LW.Get(j, i) + fd.LHF.Get(j, i) + fd.SHF.Get(j, i) - qh) / (rhoSea * cpSea * hd)
}
