package main

import (
	"fmt"

	"github.com/maseology/mmio"
	"github.com/spf13/cobra"
	"github.com/upde12/mlhb"
)

// buildCmd assembles the grid definition once from a sample state file;
// runs then load the saved gob.
var buildCmd = &cobra.Command{
	Use:   "build <statefile.nc>",
	Short: "Build the grid definition from a daily state file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tt := mmio.NewTimer()

		cfg, err := loadControl(cmd)
		if err != nil {
			return err
		}
		if fp, _ := cmd.Flags().GetString("out"); len(fp) > 0 {
			cfg.GridFP = fp
		}
		if len(cfg.GridFP) == 0 {
			cfg.GridFP = "mlhb.grid.gob"
		}

		gd, err := mlhb.BuildDefinition(args[0])
		if err != nil {
			return err
		}

		chkdir := mmio.GetFileDir(cfg.GridFP) + "/check/"
		mmio.MakeDir(chkdir)
		gd.CheckAndPrint(chkdir)

		if err := gd.SaveGob(cfg.GridFP); err != nil {
			return err
		}
		tt.Lap(fmt.Sprintf("grid definition saved to %s", cfg.GridFP))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().String("out", "", "grid definition output path (overrides control file)")
}
