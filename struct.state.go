package mlhb

import (
	"math"

	"github.com/ctessum/sparse"
)

// DayState holds one day's integrated mixed-layer fields on the horizontal
// lattice. NaN marks a cell invalid for the day (land, missing data, or a
// mixed-layer depth outside the sampled column) and propagates into every
// downstream term.
type DayState struct {
	Tm, Tb, T0 *sparse.DenseArray // mixed-layer mean, base, surface temperature
	Um, Vm     *sparse.DenseArray // mixed-layer mean velocity
	TzH        *sparse.DenseArray // vertical temperature gradient at the base
	DT         *sparse.DenseArray // Tm - Tb
	H          *sparse.DenseArray // mixed-layer depth
}

// BudgetDay holds one day's budget terms and closure residuals, all in K/s.
type BudgetDay struct {
	Qnet, Adv, Ent, Diff, Diffv *sparse.DenseArray
	TenF, TenC                  *sparse.DenseArray
	ClosF, ClosC                *sparse.DenseArray
}

func nanArray(ny, nx int) *sparse.DenseArray {
	a := sparse.ZerosDense(ny, nx)
	for i := range a.Elements {
		a.Elements[i] = math.NaN()
	}
	return a
}

func newDayState(ny, nx int) *DayState {
	return &DayState{
		Tm:  nanArray(ny, nx),
		Tb:  nanArray(ny, nx),
		T0:  nanArray(ny, nx),
		Um:  nanArray(ny, nx),
		Vm:  nanArray(ny, nx),
		TzH: nanArray(ny, nx),
		DT:  nanArray(ny, nx),
		H:   nanArray(ny, nx),
	}
}

func newBudgetDay(ny, nx int) *BudgetDay {
	return &BudgetDay{
		Qnet:  nanArray(ny, nx),
		Adv:   nanArray(ny, nx),
		Ent:   nanArray(ny, nx),
		Diff:  nanArray(ny, nx),
		Diffv: nanArray(ny, nx),
		TenF:  nanArray(ny, nx),
		TenC:  nanArray(ny, nx),
		ClosF: nanArray(ny, nx),
		ClosC: nanArray(ny, nx),
	}
}
