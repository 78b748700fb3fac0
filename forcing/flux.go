package forcing

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ctessum/sparse"
)

// RecordFile is a flat little-endian float32 archive: a sequence of Ny×Nx
// grids appended in time order.
type RecordFile struct {
	Path   string
	Ny, Nx int
}

func (rf *RecordFile) recordSize() int64 { return int64(rf.Ny) * int64(rf.Nx) * 4 }

// Count reports the number of complete records on disk.
func (rf *RecordFile) Count() (int, error) {
	fi, err := os.Stat(rf.Path)
	if err != nil {
		return 0, err
	}
	return int(fi.Size() / rf.recordSize()), nil
}

// Read fetches one record by index.
func (rf *RecordFile) Read(rec int) (*sparse.DenseArray, error) {
	f, err := os.Open(rf.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if _, err := f.Seek(int64(rec)*rf.recordSize(), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%s record %d: %v", rf.Path, rec, err)
	}
	b := make([]float32, rf.Ny*rf.Nx)
	if err := binary.Read(f, binary.LittleEndian, b); err != nil {
		return nil, fmt.Errorf("%s record %d: %v", rf.Path, rec, err)
	}
	a := sparse.ZerosDense(rf.Ny, rf.Nx)
	for i, v := range b {
		a.Elements[i] = float64(v)
	}
	return a, nil
}

// Append writes one record to the end of the file, creating it if needed.
func (rf *RecordFile) Append(a *sparse.DenseArray) error {
	f32 := func() []float32 {
		o := make([]float32, len(a.Elements))
		for i, v := range a.Elements {
			o[i] = float32(v)
		}
		return o
	}()
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, f32); err != nil {
		return fmt.Errorf("RecordFile.Append failed: %v", err)
	}
	f, err := os.OpenFile(rf.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("RecordFile.Append failed: %v", err)
	}
	defer f.Close()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("RecordFile.Append failed: %v", err)
	}
	return nil
}

// FluxStore serves the four surface heat-flux archives. The archives hold 365
// records per year (the leap-day convention is the producer's concern) from
// BaseYear onward.
type FluxStore struct {
	SW, LW, LHF, SHF RecordFile
	BaseYear         int
}

func NewFluxStore(dir string, ny, nx, baseYear int) *FluxStore {
	rf := func(name string) RecordFile {
		return RecordFile{Path: filepath.Join(dir, name), Ny: ny, Nx: nx}
	}
	return &FluxStore{
		SW:       rf("sw_GLORYS.data"),
		LW:       rf("lw_GLORYS.data"),
		LHF:      rf("lhf_GLORYS.data"),
		SHF:      rf("shf_GLORYS.data"),
		BaseYear: baseYear,
	}
}

// RecordIndex maps a (year, zero-based day) pair to its archive record.
func (fs *FluxStore) RecordIndex(year, day int) int {
	return (year-fs.BaseYear)*365 + day
}

// Day reads the four flux components for one day. The archives hold no
// record for the 366th day of a leap year.
func (fs *FluxStore) Day(year, day int) (*FluxDay, error) {
	if day < 0 || day >= 365 {
		return nil, fmt.Errorf("forcing: no archive record for day %d (365 records per year)", day)
	}
	rec := fs.RecordIndex(year, day)
	if rec < 0 {
		return nil, fmt.Errorf("forcing: year %d precedes flux archive base %d", year, fs.BaseYear)
	}
	fd := new(FluxDay)
	for _, g := range []struct {
		out **sparse.DenseArray
		rf  *RecordFile
	}{
		{&fd.SW, &fs.SW},
		{&fd.LW, &fs.LW},
		{&fd.LHF, &fs.LHF},
		{&fd.SHF, &fs.SHF},
	} {
		a, err := g.rf.Read(rec)
		if err != nil {
			return nil, err
		}
		*g.out = a
	}
	return fd, nil
}

// Check verifies every archive covers the final day requested.
func (fs *FluxStore) Check(year, ndays int) error {
	need := fs.RecordIndex(year, ndays-1) + 1
	for _, rf := range []*RecordFile{&fs.SW, &fs.LW, &fs.LHF, &fs.SHF} {
		n, err := rf.Count()
		if err != nil {
			return fmt.Errorf("forcing: flux archive %s: %v", rf.Path, err)
		}
		if n < need {
			return fmt.Errorf("forcing: flux archive %s holds %d records, need %d", rf.Path, n, need)
		}
	}
	return nil
}
