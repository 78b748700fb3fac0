package mlhb

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/ctessum/sparse"
	log "github.com/sirupsen/logrus"
	"github.com/upde12/mlhb/forcing"
	"github.com/upde12/mlhb/grid"
)

// Evaluator runs the daily budget decomposition over one or more years.
// The grid and configuration are read-only; each year owns its readers,
// writers, and working arrays, so years can run concurrently.
type Evaluator struct {
	GD  *grid.Definition
	Cfg *Config

	we func(prev, cur, next *DayState) *sparse.DenseArray // entrainment-velocity strategy, fixed at construction
}

func NewEvaluator(gd *grid.Definition, cfg *Config) *Evaluator {
	ev := &Evaluator{GD: gd, Cfg: cfg}
	switch cfg.Mode {
	case WeDeepening:
		ev.we = ev.weDeepening
	case WeCentered:
		ev.we = ev.weCentered
	case WeFull:
		ev.we = ev.weFull
	default:
		ev.we = ev.weDhdt
	}
	return ev
}

// openYear assembles one year's reader, flux store, and output set.
func (ev *Evaluator) openYear(year int) (*forcing.StateReader, *forcing.FluxStore, *yearWriter, error) {
	sr, err := forcing.NewStateReader(ev.Cfg.Indir, year)
	if err != nil {
		return nil, nil, nil, err
	}
	fx := forcing.NewFluxStore(ev.Cfg.Fluxdir, ev.GD.Ny, ev.GD.Nx, ev.Cfg.FluxBaseYear)
	ncheck := sr.NumDays()
	if ncheck > 365 {
		ncheck = 365 // the flux archives hold 365 records per year
	}
	if err := fx.Check(year, ncheck); err != nil {
		return nil, nil, nil, err
	}
	w, err := newYearWriter(ev.Cfg.Outdir, year, ev.GD.Ny, ev.GD.Nx)
	if err != nil {
		return nil, nil, nil, err
	}
	return sr, fx, w, nil
}

// EvaluateYear decomposes one year of daily fields and appends one record per
// day to each output file. Neighboring-day dependencies are served from a
// three-day ring; the first and last days carry NaN where a neighbor is
// undefined.
func (ev *Evaluator) EvaluateYear(ctx context.Context, year int) error {
	sr, fx, w, err := ev.openYear(year)
	if err != nil {
		return err
	}
	nd := sr.NumDays()
	log.WithFields(log.Fields{"year": year, "days": nd, "mode": ev.Cfg.Mode.String()}).Info("year start")

	nextState := func() (*DayState, error) {
		sf, err := sr.Next()
		if err != nil {
			return nil, err
		}
		return ev.buildDayState(sf), nil
	}

	var diag yearDiag
	var prev, cur, next *DayState
	if cur, err = nextState(); err != nil {
		return fmt.Errorf("year %d day 0: %w", year, err)
	}
	for d := 0; d < nd; d++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if d+1 < nd {
			if next, err = nextState(); err != nil {
				return fmt.Errorf("year %d day %d: %w", year, d+1, err)
			}
		} else {
			next = nil
		}

		fd, err := fx.Day(year, d)
		if err != nil {
			log.WithFields(log.Fields{"year": year, "day": d}).Warnf("flux record unavailable: %v", err)
			fd = nil // surface forcing invalid for the day
		}

		bud := ev.budget(prev, cur, next, fd, &diag)
		if err := w.writeDay(cur, bud); err != nil {
			return fmt.Errorf("year %d day %d: %w", year, d, err)
		}

		prev, cur = cur, next
	}

	if diag.nShallow > 0 || diag.nWeWild > 0 {
		log.WithFields(log.Fields{"year": year, "shallow": diag.nShallow, "wespikes": diag.nWeWild}).
			Warn("numerical guards tripped")
	}
	log.WithFields(log.Fields{
		"year":     year,
		"cells":    diag.n,
		"closbad":  diag.nBad,
		"maxclos":  fmt.Sprintf("%.3e", diag.maxAbs),
		"shallow":  diag.nShallow,
		"wespikes": diag.nWeWild,
	}).Info("year complete")
	return nil
}

// budget evaluates every term for one day, fanning out across latitude rows.
func (ev *Evaluator) budget(prev, cur, next *DayState, fd *forcing.FluxDay, diag *yearDiag) *BudgetDay {
	gd := ev.GD
	bud := newBudgetDay(gd.Ny, gd.Nx)
	hden := ev.denomField(cur, next)
	we := ev.we(prev, cur, next)

	var wg sync.WaitGroup
	wg.Add(gd.Ny)
	for j := 0; j < gd.Ny; j++ {
		go func(j int) {
			defer wg.Done()
			var rd yearDiag
			for i := 0; i < gd.Nx; i++ {
				if math.IsNaN(cur.Tm.Get(j, i)) {
					continue
				}
				hd := hden.Get(j, i)
				if hd <= nearzero {
					rd.nShallow++ // divisor collapsed and no floor configured
					continue
				}

				qnet := ev.qnetAt(fd, cur, hd, j, i)
				adv := ev.advectAt(cur, j, i)
				diff := ev.diffuseAt(cur, hd, j, i)
				diffv := ev.diffvAt(cur, hd, j, i)
				ent := ev.entrainAt(we, cur, hd, j, i, &rd)

				bud.Qnet.Set(qnet, j, i)
				bud.Adv.Set(adv, j, i)
				bud.Ent.Set(ent, j, i)
				bud.Diff.Set(diff, j, i)
				bud.Diffv.Set(diffv, j, i)

				rhs := qnet + adv + ent + diff + diffv
				if prev != nil {
					tenf := (cur.Tm.Get(j, i) - prev.Tm.Get(j, i)) / secperday
					bud.TenF.Set(tenf, j, i)
					bud.ClosF.Set(tenf-rhs, j, i)
					if next != nil {
						tenc := (next.Tm.Get(j, i) - prev.Tm.Get(j, i)) / (2. * secperday)
						bud.TenC.Set(tenc, j, i)
						bud.ClosC.Set(tenc-rhs, j, i)
					}
				}
				rd.count(bud.ClosF.Get(j, i), ev.Cfg.ClosTol)
			}
			diag.merge(&rd)
		}(j)
	}
	wg.Wait()
	return bud
}

// denomField builds the per-cell thickness denominator: today's floored depth
// or, with hbar enabled, the mean of today's and tomorrow's floored depths.
func (ev *Evaluator) denomField(cur, next *DayState) *sparse.DenseArray {
	out := nanArray(ev.GD.Ny, ev.GD.Nx)
	for i, h := range cur.H.Elements {
		hc := math.Max(h, ev.Cfg.Hmin)
		if ev.Cfg.UseHbar {
			if next == nil {
				continue
			}
			hn := math.Max(next.H.Elements[i], ev.Cfg.Hmin)
			out.Elements[i] = .5 * (hc + hn)
		} else {
			out.Elements[i] = hc
		}
	}
	return out
}

