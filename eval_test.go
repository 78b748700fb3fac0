package mlhb

import (
	"math"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/upde12/mlhb/forcing"
	"github.com/upde12/mlhb/grid"
)

const testTolerance = 1e-12

// testGrid builds a 5x5 lattice with one land cell at (1,3).
func testGrid(t *testing.T) *grid.Definition {
	t.Helper()
	lats := []float64{10, 12, 14, 16, 18}
	lons := []float64{100, 102, 104, 106, 108}
	depths := []float64{5, 15, 25, 35, 45, 55, 65, 75, 85, 95}
	kbot := make([]int, 25)
	for i := range kbot {
		kbot[i] = len(depths)
	}
	kbot[1*5+3] = 0
	gd, err := grid.New(lats, lons, depths, kbot)
	if err != nil {
		t.Fatal(err)
	}
	return gd
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Mode = WeDhdt
	cfg.Years = []int{2001}
	return cfg
}

func constArr(ny, nx int, v float64) *sparse.DenseArray {
	a := sparse.ZerosDense(ny, nx)
	for i := range a.Elements {
		a.Elements[i] = v
	}
	return a
}

// fillTestState populates the water cells with smooth fields: temperature
// linear in the cell indices, uniform currents, thickness, stratification.
func fillTestState(gd *grid.Definition) *DayState {
	ds := newDayState(gd.Ny, gd.Nx)
	for j := 0; j < gd.Ny; j++ {
		for i := 0; i < gd.Nx; i++ {
			if !gd.IsWater(j, i) {
				continue
			}
			tm := 15. + .01*float64(i) + .02*float64(j)
			ds.Tm.Set(tm, j, i)
			ds.Tb.Set(tm-1., j, i)
			ds.T0.Set(tm+.1, j, i)
			ds.Um.Set(.4, j, i)
			ds.Vm.Set(-.3, j, i)
			ds.TzH.Set(.02, j, i)
			ds.DT.Set(1., j, i)
			ds.H.Set(50., j, i)
		}
	}
	return ds
}

func testFlux(ny, nx int) *forcing.FluxDay {
	return &forcing.FluxDay{
		SW:  constArr(ny, nx, 200),
		LW:  constArr(ny, nx, -50),
		LHF: constArr(ny, nx, -130),
		SHF: constArr(ny, nx, -20),
	}
}

func cloneState(ds *DayState) *DayState {
	return &DayState{
		Tm: ds.Tm.Copy(), Tb: ds.Tb.Copy(), T0: ds.T0.Copy(),
		Um: ds.Um.Copy(), Vm: ds.Vm.Copy(), TzH: ds.TzH.Copy(),
		DT: ds.DT.Copy(), H: ds.H.Copy(),
	}
}

// The budget decomposition must close: when yesterday and tomorrow are set so
// the layer temperature evolves exactly as the summed terms dictate, both
// closure residuals vanish at every cell with a complete stencil.
func TestBudgetCloses(t *testing.T) {
	gd := testGrid(t)
	ev := NewEvaluator(gd, testConfig())
	cur, next := fillTestState(gd), fillTestState(gd)
	fd := testFlux(gd.Ny, gd.Nx)

	bud0 := ev.budget(nil, cur, next, fd, &yearDiag{})
	prev, next2 := cloneState(cur), cloneState(next)
	for idx := range cur.Tm.Elements {
		rhs := bud0.Qnet.Elements[idx] + bud0.Adv.Elements[idx] + bud0.Ent.Elements[idx] +
			bud0.Diff.Elements[idx] + bud0.Diffv.Elements[idx]
		if math.IsNaN(rhs) {
			continue
		}
		prev.Tm.Elements[idx] = cur.Tm.Elements[idx] - secperday*rhs
		next2.Tm.Elements[idx] = cur.Tm.Elements[idx] + secperday*rhs
	}

	var diag yearDiag
	bud := ev.budget(prev, cur, next2, fd, &diag)

	nf, nc := 0, 0
	for idx := range bud.ClosF.Elements {
		if cf := bud.ClosF.Elements[idx]; !math.IsNaN(cf) {
			nf++
			if math.Abs(cf) > testTolerance {
				t.Error("forward closure residual at", idx, cf)
			}
		}
		if cc := bud.ClosC.Elements[idx]; !math.IsNaN(cc) {
			nc++
			if math.Abs(cc) > testTolerance {
				t.Error("centered closure residual at", idx, cc)
			}
		}
	}
	// interior 3x3 less the land cell and its two poisoned interior neighbors
	if nf != 6 || nc != 6 {
		t.Error("closing cell count", nf, nc, 6)
	}
	if diag.n != 6 || diag.nBad != 0 || diag.nShallow != 0 {
		t.Errorf("diagnostics: %+v", map[string]int{"n": diag.n, "bad": diag.nBad, "shallow": diag.nShallow})
	}
}

// Each term at an interior cell matches its hand-computed value.
func TestBudgetTerms(t *testing.T) {
	gd := testGrid(t)
	cfg := testConfig()
	ev := NewEvaluator(gd, cfg)
	cur, next := fillTestState(gd), fillTestState(gd)
	fd := testFlux(gd.Ny, gd.Nx)
	bud := ev.budget(nil, cur, next, fd, &yearDiag{})

	j, i := 2, 2
	hd := 50. // above the floor, so the raw thickness is the divisor

	// thickness is constant in time, so no entrainment
	if ent := bud.Ent.Get(j, i); ent != 0 {
		t.Error("Ent", ent, 0)
	}

	sw := 200.
	qh := sw * (cfg.RSw*math.Exp(-50./cfg.Gamma1) + (1.-cfg.RSw)*math.Exp(-50./cfg.Gamma2))
	wantQnet := (sw - 50. - 130. - 20. - qh) / (rhoSea * cpSea * hd)
	if got := bud.Qnet.Get(j, i); math.Abs(got-wantQnet) > testTolerance*math.Abs(wantQnet) {
		t.Error("Qnet", got, wantQnet)
	}

	tmx := (cur.Tm.Get(j, i+1) - cur.Tm.Get(j, i-1)) / (2. * gd.DxRow[j])
	tmy := (cur.Tm.Get(j+1, i) - cur.Tm.Get(j-1, i)) / (2. * gd.Dy)
	wantAdv := -(.4*tmx + -.3*tmy)
	if got := bud.Adv.Get(j, i); math.Abs(got-wantAdv) > testTolerance*math.Abs(wantAdv) {
		t.Error("Adv", got, wantAdv)
	}

	// linear temperature and flat thickness leave nothing to diffuse
	if got := bud.Diff.Get(j, i); math.Abs(got) > 1e-20 {
		t.Error("Diff", got, 0)
	}

	wantDiffv := -cfg.Kv * .02 / hd
	if got := bud.Diffv.Get(j, i); math.Abs(got-wantDiffv) > testTolerance*math.Abs(wantDiffv) {
		t.Error("Diffv", got, wantDiffv)
	}
}

// Diffusion in the conservative form responds to thickness curvature even
// under uniform temperature; a plain Laplacian of Tm would read zero here.
func TestDiffusionThicknessGradient(t *testing.T) {
	gd := testGrid(t)
	cfg := testConfig()
	ev := NewEvaluator(gd, cfg)
	cur := fillTestState(gd)
	for j := 0; j < gd.Ny; j++ {
		for i := 0; i < gd.Nx; i++ {
			if !gd.IsWater(j, i) {
				continue
			}
			cur.Tm.Set(15., j, i)
			cur.DT.Set(1., j, i)
			cur.H.Set(50.+.25*float64(i*i), j, i) // curved in x only
		}
	}

	j, i := 2, 2
	hd := math.Max(cur.H.Get(j, i), cfg.Hmin)
	dx := gd.DxRow[j]
	// flat Tm kills the h-grad-T fluxes; the DT-weighted thickness-gradient
	// part sees the constant second difference of h
	d2h := (cur.H.Get(j, i+1) - cur.H.Get(j, i)) - (cur.H.Get(j, i) - cur.H.Get(j, i-1))
	want := cfg.Ah / hd * (0. - d2h/(dx*dx))
	if got := ev.diffuseAt(cur, hd, j, i); math.Abs(got-want) > testTolerance*math.Abs(want) {
		t.Error("Diff", got, want)
	}
}

// With uniform thickness the conservative form collapses to the plain
// thickness-scaled Laplacian of Tm.
func TestDiffusionUniformThickness(t *testing.T) {
	gd := testGrid(t)
	cfg := testConfig()
	ev := NewEvaluator(gd, cfg)
	cur := fillTestState(gd)
	for j := 0; j < gd.Ny; j++ {
		for i := 0; i < gd.Nx; i++ {
			if !gd.IsWater(j, i) {
				continue
			}
			cur.Tm.Set(15.+.001*float64(i*i), j, i) // curved in x only
			cur.DT.Set(1., j, i)
			cur.H.Set(50., j, i)
		}
	}

	j, i := 2, 2
	hd := 50.
	dx := gd.DxRow[j]
	d2t := (cur.Tm.Get(j, i+1) - cur.Tm.Get(j, i)) - (cur.Tm.Get(j, i) - cur.Tm.Get(j, i-1))
	want := cfg.Ah / hd * 50. * d2t / (dx * dx)
	if got := ev.diffuseAt(cur, hd, j, i); math.Abs(got-want) > testTolerance*math.Abs(want) {
		t.Error("Diff", got, want)
	}
}

// The zonal gradient projects through the per-row metric: the same index-space
// temperature step advects faster where the circle of latitude is shorter.
func TestAdvectionMetric(t *testing.T) {
	gd := testGrid(t)
	ev := NewEvaluator(gd, testConfig())
	cur := fillTestState(gd)
	for j := 0; j < gd.Ny; j++ {
		for i := 0; i < gd.Nx; i++ {
			if !gd.IsWater(j, i) {
				continue
			}
			cur.Tm.Set(15.+.01*float64(i), j, i)
			cur.Um.Set(1., j, i)
			cur.Vm.Set(0., j, i)
		}
	}

	a2 := ev.advectAt(cur, 2, 2)
	a3 := ev.advectAt(cur, 3, 2)
	want := gd.DxRow[3] / gd.DxRow[2] // cos(16°)/cos(14°)
	if math.Abs(a2/a3-want) > testTolerance {
		t.Error("row metric ratio", a2/a3, want)
	}
	if math.Abs(want-math.Cos(16.*math.Pi/180.)/math.Cos(14.*math.Pi/180.)) > testTolerance {
		t.Error("metric is not the cosine ratio", want)
	}
}

// Invalid cells poison, never zero: land stays NaN in every output field, and
// a land neighbor voids the horizontal stencils around it.
func TestBudgetInvalidCells(t *testing.T) {
	gd := testGrid(t)
	ev := NewEvaluator(gd, testConfig())
	cur, next := fillTestState(gd), fillTestState(gd)
	fd := testFlux(gd.Ny, gd.Nx)
	bud := ev.budget(cloneState(cur), cur, next, fd, &yearDiag{})

	for name, a := range map[string]*sparse.DenseArray{
		"Qnet": bud.Qnet, "Adv": bud.Adv, "Ent": bud.Ent,
		"Diff": bud.Diff, "Diffv": bud.Diffv,
		"TenF": bud.TenF, "TenC": bud.TenC, "ClosF": bud.ClosF, "ClosC": bud.ClosC,
	} {
		if !math.IsNaN(a.Get(1, 3)) {
			t.Error(name, "at the land cell should be NaN, got", a.Get(1, 3))
		}
	}

	// stencil neighbors of the land cell
	if !math.IsNaN(bud.Adv.Get(1, 2)) || !math.IsNaN(bud.Diff.Get(2, 3)) {
		t.Error("land neighbor stencils should be NaN")
	}
	// pointwise terms there are unaffected
	if math.IsNaN(bud.Qnet.Get(1, 2)) || math.IsNaN(bud.Diffv.Get(1, 2)) {
		t.Error("pointwise terms beside land should stay finite")
	}

	// boundary ring has no centered stencil
	if !math.IsNaN(bud.Adv.Get(0, 2)) || !math.IsNaN(bud.Diff.Get(4, 2)) {
		t.Error("boundary stencils should be NaN")
	}
}

// A missing flux day voids the surface term and the closures, nothing else.
func TestBudgetMissingFlux(t *testing.T) {
	gd := testGrid(t)
	ev := NewEvaluator(gd, testConfig())
	cur, next := fillTestState(gd), fillTestState(gd)
	bud := ev.budget(cloneState(cur), cur, next, nil, &yearDiag{})

	if !math.IsNaN(bud.Qnet.Get(2, 2)) || !math.IsNaN(bud.ClosF.Get(2, 2)) {
		t.Error("Qnet and closure should be NaN without flux data")
	}
	if math.IsNaN(bud.Adv.Get(2, 2)) || math.IsNaN(bud.TenF.Get(2, 2)) {
		t.Error("advection and tendency should survive a missing flux day")
	}
}

func TestDenomField(t *testing.T) {
	gd := testGrid(t)
	cfg := testConfig()
	ev := NewEvaluator(gd, cfg)
	cur, next := fillTestState(gd), fillTestState(gd)
	cur.H.Set(3., 2, 2) // below the floor

	hd := ev.denomField(cur, next)
	if got := hd.Get(2, 2); got != cfg.Hmin {
		t.Error("floored thickness", got, cfg.Hmin)
	}
	if got := hd.Get(2, 1); got != 50. {
		t.Error("unfloored thickness", got, 50.)
	}

	cfg2 := testConfig()
	cfg2.UseHbar = true
	ev2 := NewEvaluator(gd, cfg2)
	next.H.Set(70., 2, 1)
	hd = ev2.denomField(cur, next)
	if got := hd.Get(2, 1); got != 60. {
		t.Error("two-day mean thickness", got, 60.)
	}
	if got := hd.Get(2, 2); got != .5*(cfg2.Hmin+50.) {
		t.Error("floor applies before averaging", got, .5*(cfg2.Hmin+50.))
	}

	hd = ev2.denomField(cur, nil)
	if !math.IsNaN(hd.Get(2, 2)) {
		t.Error("mean thickness without tomorrow should be NaN")
	}
}
