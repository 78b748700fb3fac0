package mlhb

import (
	"fmt"
	"path/filepath"

	"github.com/ctessum/sparse"
	"github.com/maseology/mmio"
	"github.com/upde12/mlhb/forcing"
)

// yearWriter owns one year's output set: one record file per field, one
// ny×nx float32 record appended per day. Pre-existing files are removed up
// front so a re-run never concatenates onto stale records.
type yearWriter struct {
	tml, tb, t0, uml, vml, mld  forcing.RecordFile
	tenf, tenc                  forcing.RecordFile
	qnet, adv, ent, diff, diffv forcing.RecordFile
	closf, closc                forcing.RecordFile
}

func newYearWriter(outdir string, year, ny, nx int) (*yearWriter, error) {
	if len(outdir) == 0 {
		return nil, fmt.Errorf("no output directory set")
	}
	mmio.MakeDir(outdir)
	rf := func(tag string) forcing.RecordFile {
		fp := filepath.Join(outdir, fmt.Sprintf("%s%d.data", tag, year))
		mmio.DeleteFile(fp)
		return forcing.RecordFile{Path: fp, Ny: ny, Nx: nx}
	}
	return &yearWriter{
		tml: rf("T_ML"), tb: rf("Tb"), t0: rf("T0"),
		uml: rf("U_ML"), vml: rf("V_ML"), mld: rf("MLD"),
		tenf: rf("ten"), tenc: rf("ten_cen"),
		qnet: rf("qnet"), adv: rf("advNF"), ent: rf("ent"),
		diff: rf("diff"), diffv: rf("diffv"),
		closf: rf("clos"), closc: rf("clos_cen"),
	}, nil
}

func (w *yearWriter) writeDay(ds *DayState, bud *BudgetDay) error {
	for _, p := range []struct {
		rf *forcing.RecordFile
		a  *sparse.DenseArray
	}{
		{&w.tml, ds.Tm}, {&w.tb, ds.Tb}, {&w.t0, ds.T0},
		{&w.uml, ds.Um}, {&w.vml, ds.Vm}, {&w.mld, ds.H},
		{&w.tenf, bud.TenF}, {&w.tenc, bud.TenC},
		{&w.qnet, bud.Qnet}, {&w.adv, bud.Adv}, {&w.ent, bud.Ent},
		{&w.diff, bud.Diff}, {&w.diffv, bud.Diffv},
		{&w.closf, bud.ClosF}, {&w.closc, bud.ClosC},
	} {
		if err := p.rf.Append(p.a); err != nil {
			return err
		}
	}
	return nil
}
