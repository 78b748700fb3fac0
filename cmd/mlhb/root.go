package main

import (
	"fmt"
	"os"

	"github.com/maseology/mmio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/upde12/mlhb"
)

var rootCmd = &cobra.Command{
	Use:   "mlhb",
	Short: "Mixed-layer heat budget decomposition for daily ocean reanalysis",
	Long: `mlhb splits the day-to-day change of mixed-layer averaged ocean temperature
into surface-flux, advection, entrainment, and diffusion terms, writing one
gridded record per day and term together with the closure residual.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("debug"); v {
			log.SetLevel(log.DebugLevel)
		}
	},
}

// Execute runs the root command, exiting nonzero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadControl reads the control file when one exists; a missing default
// control file falls back to built-in settings, a missing explicit one
// is an error.
func loadControl(cmd *cobra.Command) (*mlhb.Config, error) {
	ctl, _ := cmd.Flags().GetString("control")
	if _, ok := mmio.FileExists(ctl); ok {
		return mlhb.LoadConfig(ctl)
	}
	if cmd.Flags().Changed("control") {
		return nil, fmt.Errorf("control file %s not found", ctl)
	}
	return mlhb.DefaultConfig(), nil
}

func init() {
	rootCmd.PersistentFlags().StringP("control", "c", "mlhb.ini", "control file")
	rootCmd.PersistentFlags().Bool("debug", false, "verbose logging")
}
