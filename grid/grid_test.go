package grid

import (
	"math"
	"path/filepath"
	"reflect"
	"testing"
)

const testTolerance = 1e-12

func testAxes() ([]float64, []float64, []float64, []int) {
	lats := []float64{10, 12, 14}
	lons := []float64{100, 102, 104}
	depths := []float64{1, 3, 5}
	kbot := []int{0, 1, 2, 3, 3, 3, 2, 3, 3}
	return lats, lons, depths, kbot
}

func TestNewMetrics(t *testing.T) {
	lats, lons, depths, kbot := testAxes()
	gd, err := New(lats, lons, depths, kbot)
	if err != nil {
		t.Fatal(err)
	}

	wantDy := 2. * math.Pi * 6378000. * 2. / 360.
	if math.Abs(gd.Dy-wantDy) > testTolerance*wantDy {
		t.Error("Dy", gd.Dy, wantDy)
	}
	// zonal spacing shrinks with cos(lat); the lat and lon steps are equal
	// here so the ratio to Dy is the cosine itself
	for j, lat := range lats {
		want := math.Cos(lat * math.Pi / 180.)
		if math.Abs(gd.DxRow[j]/gd.Dy-want) > testTolerance {
			t.Error("DxRow/Dy at", lat, gd.DxRow[j]/gd.Dy, want)
		}
	}
}

func TestHalfLevels(t *testing.T) {
	if got, want := halfLevels([]float64{1, 3, 5}), []float64{0, 2, 4, 6}; !reflect.DeepEqual(got, want) {
		t.Error(got, want)
	}
	// non-uniform spacing: the bottom bound extends half the last step
	if got, want := halfLevels([]float64{.5, 1.5, 3.5, 7.5}), []float64{0, 1, 2.5, 5.5, 9.5}; !reflect.DeepEqual(got, want) {
		t.Error(got, want)
	}
}

func TestNewValidation(t *testing.T) {
	lats, lons, depths, kbot := testAxes()
	if _, err := New(lats[:2], lons, depths, kbot[:6]); err == nil {
		t.Error("accepted a 2-row lattice")
	}
	if _, err := New(lats, lons, depths[:1], kbot); err == nil {
		t.Error("accepted a single depth level")
	}
	if _, err := New(lats, lons, []float64{1, 5, 3}, kbot); err == nil {
		t.Error("accepted a non-increasing depth axis")
	}
	if _, err := New(lats, lons, depths, kbot[:5]); err == nil {
		t.Error("accepted a mismatched bottom-index length")
	}
}

func TestWaterCells(t *testing.T) {
	lats, lons, depths, kbot := testAxes()
	gd, err := New(lats, lons, depths, kbot)
	if err != nil {
		t.Fatal(err)
	}
	if gd.IsWater(0, 0) || gd.IsWater(0, 1) {
		t.Error("single-level and land cells should not be water")
	}
	if !gd.IsWater(0, 2) {
		t.Error("two-level cell should be water")
	}
	if n := gd.NumWater(); n != 7 {
		t.Error("NumWater", n, 7)
	}
}

func TestGobRoundTrip(t *testing.T) {
	lats, lons, depths, kbot := testAxes()
	gd, err := New(lats, lons, depths, kbot)
	if err != nil {
		t.Fatal(err)
	}

	fp := filepath.Join(t.TempDir(), "grid.gob")
	if err := gd.SaveGob(fp); err != nil {
		t.Fatal(err)
	}
	gd2, err := LoadGob(fp)
	if err != nil {
		t.Fatal(err)
	}
	if gd2.Ny != gd.Ny || gd2.Nx != gd.Nx || gd2.Nz != gd.Nz || gd2.Dy != gd.Dy {
		t.Errorf("round trip changed the lattice: %+v vs %+v", gd2, gd)
	}
	if !reflect.DeepEqual(gd2.Zhalf, gd.Zhalf) || !reflect.DeepEqual(gd2.Kbot, gd.Kbot) || !reflect.DeepEqual(gd2.DxRow, gd.DxRow) {
		t.Error("round trip changed the derived fields")
	}
}
