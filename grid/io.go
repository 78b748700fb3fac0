package grid

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/maseology/mmio"
)

func (gd *Definition) SaveGob(fp string) error {
	f, err := os.Create(fp)
	if err != nil {
		return fmt.Errorf(" grid.SaveGob %v", err)
	}
	if err := gob.NewEncoder(f).Encode(gd); err != nil {
		return fmt.Errorf(" grid.SaveGob %v", err)
	}
	f.Close()
	return nil
}

func LoadGob(fp string) (*Definition, error) {
	var gd Definition
	f, err := os.Open(fp)
	if err != nil {
		return nil, err
	}
	if err := gob.NewDecoder(f).Decode(&gd); err != nil {
		return nil, err
	}
	f.Close()
	return &gd, nil
}

// CheckAndPrint summarizes the lattice and writes the bottom-level scan to a
// check directory for inspection.
func (gd *Definition) CheckAndPrint(chkdirprfx string) {
	fmt.Println("Grid summary:")
	fmt.Printf(" %d x %d cells, %d depth levels\n", gd.Ny, gd.Nx, gd.Nz)
	fmt.Printf(" lat %.4f to %.4f, lon %.4f to %.4f\n", gd.Lats[0], gd.Lats[gd.Ny-1], gd.Lons[0], gd.Lons[gd.Nx-1])
	fmt.Printf(" depth %.2f to %.2f m\n", gd.Depths[0], gd.Depths[gd.Nz-1])
	fmt.Printf(" dy %.1f m, dx %.1f to %.1f m\n", gd.Dy, gd.DxRow[0], gd.DxRow[gd.Ny-1])
	fmt.Printf(" %s water cells of %s\n", mmio.Thousands(int64(gd.NumWater())), mmio.Thousands(int64(gd.Ny*gd.Nx)))

	kb := make([]int32, len(gd.Kbot))
	for i, k := range gd.Kbot {
		kb[i] = int32(k)
	}
	writeInts(chkdirprfx+"grid.kbot.data", kb) // valid depth levels per cell; 0 = land
}

func writeInts(fp string, i []int32) error {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, i); err != nil {
		return fmt.Errorf("writeInts failed: %v", err)
	}
	if err := os.WriteFile(fp, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writeInts failed: %v", err)
	}
	return nil
}
