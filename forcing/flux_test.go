package forcing

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gridOf(vals []float64, ny, nx int) *sparse.DenseArray {
	a := sparse.ZerosDense(ny, nx)
	copy(a.Elements, vals)
	return a
}

func TestRecordFileRoundTrip(t *testing.T) {
	rf := RecordFile{Path: filepath.Join(t.TempDir(), "sw.data"), Ny: 2, Nx: 3}

	rec0 := gridOf([]float64{.5, 1.5, 2.5, 3.5, 4.5, 5.5}, 2, 3)
	rec1 := gridOf([]float64{10, 9, 8, 7, math.NaN(), 5}, 2, 3)
	require.NoError(t, rf.Append(rec0))
	require.NoError(t, rf.Append(rec1))

	n, err := rf.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	a, err := rf.Read(0)
	require.NoError(t, err)
	assert.Equal(t, rec0.Elements, a.Elements)

	a, err = rf.Read(1)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(a.Elements[4]), "NaN must survive the round trip")
	assert.Equal(t, 10., a.Elements[0])

	_, err = rf.Read(2)
	assert.Error(t, err, "reading past the archive end must fail")
}

func TestFluxStoreDay(t *testing.T) {
	fs := NewFluxStore(t.TempDir(), 2, 2, 2000)
	for _, p := range []struct {
		rf  *RecordFile
		val float64
	}{
		{&fs.SW, 200}, {&fs.LW, -50}, {&fs.LHF, -120}, {&fs.SHF, -30},
	} {
		require.NoError(t, p.rf.Append(gridOf([]float64{p.val, p.val, p.val, p.val}, 2, 2)))
	}

	fd, err := fs.Day(2000, 0)
	require.NoError(t, err)
	assert.Equal(t, 200., fd.SW.Get(0, 0))
	assert.Equal(t, -50., fd.LW.Get(1, 1))
	assert.Equal(t, -120., fd.LHF.Get(0, 1))
	assert.Equal(t, -30., fd.SHF.Get(1, 0))

	_, err = fs.Day(1999, 0)
	assert.Error(t, err, "years before the archive base have no records")
}

func TestFluxStoreDayBounds(t *testing.T) {
	// Two years back to back. Index 365 belongs to the second year:
	// a leap day must never be served from it.
	fs := NewFluxStore(t.TempDir(), 1, 1, 2000)
	y0 := gridOf([]float64{100}, 1, 1)
	y1 := gridOf([]float64{999}, 1, 1)
	for _, rf := range []*RecordFile{&fs.SW, &fs.LW, &fs.LHF, &fs.SHF} {
		for d := 0; d < 365; d++ {
			require.NoError(t, rf.Append(y0))
		}
		require.NoError(t, rf.Append(y1))
	}

	fd, err := fs.Day(2000, 364)
	require.NoError(t, err)
	assert.Equal(t, 100., fd.SW.Get(0, 0))

	_, err = fs.Day(2000, 365)
	assert.Error(t, err, "day 366 of a leap year has no record of its own")

	fd, err = fs.Day(2001, 0)
	require.NoError(t, err)
	assert.Equal(t, 999., fd.SW.Get(0, 0))

	_, err = fs.Day(2000, -1)
	assert.Error(t, err)
}

func TestRecordIndex(t *testing.T) {
	fs := &FluxStore{BaseYear: 1993}
	assert.Equal(t, 0, fs.RecordIndex(1993, 0))
	assert.Equal(t, 364, fs.RecordIndex(1993, 364))
	// the archives hold 365 records per year regardless of leap days
	assert.Equal(t, 2*365+3, fs.RecordIndex(1995, 3))
}

func TestCheck(t *testing.T) {
	fs := NewFluxStore(t.TempDir(), 1, 2, 2000)
	rec := gridOf([]float64{1, 2}, 1, 2)
	for _, rf := range []*RecordFile{&fs.SW, &fs.LW, &fs.LHF, &fs.SHF} {
		for d := 0; d < 3; d++ {
			require.NoError(t, rf.Append(rec))
		}
	}

	assert.NoError(t, fs.Check(2000, 3))
	assert.Error(t, fs.Check(2000, 4), "archives one day short must fail the check")
	assert.Error(t, fs.Check(2001, 1), "next year's records are not present")

	missing := NewFluxStore(t.TempDir(), 1, 2, 2000)
	assert.Error(t, missing.Check(2000, 1), "absent archive files must fail the check")
}
