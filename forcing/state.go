package forcing

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Variable name candidates accepted in the daily state files, in order of
// preference. Reanalysis products disagree on naming (CMEMS vs. NEMO native).
var (
	tempNames = []string{"thetao", "votemper", "temperature"}
	uNames    = []string{"uo", "vozocrtx"}
	vNames    = []string{"vo", "vomecrty"}
	mldNames  = []string{"mlotst", "mld", "somxl010"}
	depNames  = []string{"depth", "deptht"}
	latNames  = []string{"latitude", "lat"}
	lonNames  = []string{"longitude", "lon"}
)

// StateReader streams the daily state files of one year in date order.
type StateReader struct {
	files []string
	i     int
}

// NewStateReader globs the state files for a year (GLO_PHY_MY_<year>*.nc,
// one file per day, named so lexical order is date order).
func NewStateReader(indir string, year int) (*StateReader, error) {
	files, err := filepath.Glob(filepath.Join(indir, fmt.Sprintf("GLO_PHY_MY_%d*.nc", year)))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("forcing: no state files for %d in %s", year, indir)
	}
	sort.Strings(files)
	return &StateReader{files: files}, nil
}

// NumDays reports the number of daily files found.
func (sr *StateReader) NumDays() int { return len(sr.files) }

// File returns the path of the i'th day.
func (sr *StateReader) File(i int) string { return sr.files[i] }

// Next reads the next day's state, returning io.EOF past the final day.
func (sr *StateReader) Next() (*StateFields, error) {
	if sr.i >= len(sr.files) {
		return nil, io.EOF
	}
	s, err := ReadState(sr.files[sr.i])
	if err != nil {
		return nil, fmt.Errorf("forcing: %s: %w", sr.files[sr.i], err)
	}
	sr.i++
	return s, nil
}

// ReadState decodes one day's temperature, velocity, and mixed-layer depth.
func ReadState(ncfp string) (*StateFields, error) {
	ff, err := os.Open(ncfp)
	if err != nil {
		return nil, err
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, err
	}

	s := new(StateFields)
	for _, g := range []struct {
		out   **sparse.DenseArray
		rank  int
		names []string
	}{
		{&s.T, 3, tempNames},
		{&s.U, 3, uNames},
		{&s.V, 3, vNames},
		{&s.H, 2, mldNames},
	} {
		v, err := findVar(f, g.names)
		if err != nil {
			return nil, err
		}
		if *g.out, err = readField(f, v, g.rank); err != nil {
			return nil, err
		}
	}

	for _, g := range []struct {
		name string
		a    *sparse.DenseArray
	}{{"U", s.U}, {"V", s.V}} {
		if g.a.Shape[0] != s.T.Shape[0] || g.a.Shape[1] != s.T.Shape[1] || g.a.Shape[2] != s.T.Shape[2] {
			return nil, fmt.Errorf("state field shapes disagree: T %v vs %s %v", s.T.Shape, g.name, g.a.Shape)
		}
	}
	if s.T.Shape[1] != s.H.Shape[0] || s.T.Shape[2] != s.H.Shape[1] {
		return nil, fmt.Errorf("state field shapes disagree: T %v vs H %v", s.T.Shape, s.H.Shape)
	}
	return s, nil
}

// ReadCoords decodes the coordinate axes from a state file.
func ReadCoords(ncfp string) (lats, lons, depths []float64, err error) {
	ff, err := os.Open(ncfp)
	if err != nil {
		return nil, nil, nil, err
	}
	defer ff.Close()
	f, err := cdf.Open(ff)
	if err != nil {
		return nil, nil, nil, err
	}

	for _, g := range []struct {
		out   *[]float64
		names []string
	}{
		{&lats, latNames},
		{&lons, lonNames},
		{&depths, depNames},
	} {
		v, err := findVar(f, g.names)
		if err != nil {
			return nil, nil, nil, err
		}
		a, err := readField(f, v, 1)
		if err != nil {
			return nil, nil, nil, err
		}
		*g.out = a.Elements
	}
	return lats, lons, depths, nil
}

// findVar matches one of the candidate names against the file's variables,
// case-insensitively, in candidate order.
func findVar(f *cdf.File, names []string) (string, error) {
	for _, want := range names {
		for _, v := range f.Header.Variables() {
			if strings.EqualFold(v, want) {
				return v, nil
			}
		}
	}
	return "", fmt.Errorf("none of %v found in file", names)
}

// readField reads a whole variable and decodes it to physical values:
// scale/offset applied, fill values resolved to NaN. Leading unit dimensions
// (the per-day time record) are dropped down to the expected rank.
func readField(f *cdf.File, v string, rank int) (*sparse.DenseArray, error) {
	dims := f.Header.Lengths(v)
	if len(dims) == 0 {
		return nil, fmt.Errorf("variable %v not in file", v)
	}
	for len(dims) > rank && dims[0] <= 1 {
		dims = dims[1:]
	}
	if len(dims) != rank {
		return nil, fmt.Errorf("variable %v: dims %v, want rank %d", v, f.Header.Lengths(v), rank)
	}
	n := 1
	for _, d := range dims {
		n *= d
	}

	r := f.Reader(v, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("read %s: %v", v, err)
	}

	scale, hasScale := attrFloat(f, v, "scale_factor")
	offset, hasOffset := attrFloat(f, v, "add_offset")
	if !hasScale {
		scale = 1.
	}
	if !hasOffset {
		offset = 0.
	}
	fill, hasFill := attrFloat(f, v, "_FillValue")
	if !hasFill {
		fill, hasFill = attrFloat(f, v, "missing_value")
	}

	data := sparse.ZerosDense(dims...)
	decode := func(i int, raw float64) {
		if (hasFill && raw == fill) || math.IsNaN(raw) {
			data.Elements[i] = math.NaN()
			return
		}
		data.Elements[i] = raw*scale + offset
	}
	switch b := buf.(type) {
	case []float32:
		for i, val := range b {
			decode(i, float64(val))
		}
	case []float64:
		for i, val := range b {
			decode(i, val)
		}
	case []int16:
		for i, val := range b {
			decode(i, float64(val))
		}
	case []int32:
		for i, val := range b {
			decode(i, float64(val))
		}
	case []int8:
		for i, val := range b {
			decode(i, float64(val))
		}
	default:
		return nil, fmt.Errorf("variable %v: unhandled storage type %T", v, buf)
	}
	return data, nil
}

// attrFloat fetches a numeric attribute, tolerating the storage types the
// classic format allows.
func attrFloat(f *cdf.File, v, name string) (float64, bool) {
	a := f.Header.GetAttribute(v, name)
	if a == nil {
		return 0, false
	}
	switch t := a.(type) {
	case []float64:
		if len(t) > 0 {
			return t[0], true
		}
	case []float32:
		if len(t) > 0 {
			return float64(t[0]), true
		}
	case []int32:
		if len(t) > 0 {
			return float64(t[0]), true
		}
	case []int16:
		if len(t) > 0 {
			return float64(t[0]), true
		}
	case []int8:
		if len(t) > 0 {
			return float64(t[0]), true
		}
	}
	return 0, false
}
