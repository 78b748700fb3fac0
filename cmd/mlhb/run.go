package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/maseology/mmio"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/upde12/mlhb"
	"github.com/upde12/mlhb/grid"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the heat budget over the configured years",
	RunE: func(cmd *cobra.Command, args []string) error {
		tt := mmio.NewTimer()

		cfg, err := runConfig(cmd)
		if err != nil {
			return err
		}

		gd, err := grid.LoadGob(cfg.GridFP)
		if err != nil {
			return fmt.Errorf("grid definition %s: %v (run `mlhb build` first)", cfg.GridFP, err)
		}
		log.WithFields(log.Fields{
			"cells": mmio.Thousands(int64(gd.Ny * gd.Nx)),
			"water": mmio.Thousands(int64(gd.NumWater())),
		}).Info("grid definition loaded")

		ev := mlhb.NewEvaluator(gd, cfg)
		if cfg.Workers <= 1 {
			for _, y := range cfg.Years {
				if err := ev.EvaluateYearSerial(y); err != nil {
					return err
				}
			}
		} else {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				fmt.Println("\ninterrupted, cancelling run")
				cancel()
			}()
			if err := ev.Run(ctx); err != nil {
				return err
			}
		}

		tt.Lap(fmt.Sprintf("run complete, n processes: %d", runtime.GOMAXPROCS(0)))
		return nil
	},
}

// runConfig layers command-line overrides on top of the control file.
func runConfig(cmd *cobra.Command) (*mlhb.Config, error) {
	cfg, err := loadControl(cmd)
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	setS := func(name string, dst *string) {
		if fl.Changed(name) {
			*dst, _ = fl.GetString(name)
		}
	}
	setF := func(name string, dst *float64) {
		if fl.Changed(name) {
			*dst, _ = fl.GetFloat64(name)
		}
	}
	setB := func(name string, dst *bool) {
		if fl.Changed(name) {
			*dst, _ = fl.GetBool(name)
		}
	}

	setS("indir", &cfg.Indir)
	setS("outdir", &cfg.Outdir)
	setS("fluxdir", &cfg.Fluxdir)
	setS("gridfile", &cfg.GridFP)
	setF("ah", &cfg.Ah)
	setF("kv", &cfg.Kv)
	setF("hmin", &cfg.Hmin)
	setF("we-cap", &cfg.WeCap)
	setF("dt-cap", &cfg.DTCap)
	setF("ent-cap", &cfg.EntCap)
	setF("clos-tol", &cfg.ClosTol)
	setB("hbar", &cfg.UseHbar)
	setB("cooling", &cfg.Cooling)
	if fl.Changed("workers") {
		cfg.Workers, _ = fl.GetInt("workers")
	}
	if fl.Changed("years") {
		s, _ := fl.GetString("years")
		if cfg.Years, err = mlhb.ParseYears(s); err != nil {
			return nil, err
		}
	}
	if fl.Changed("we-mode") {
		s, _ := fl.GetString("we-mode")
		if cfg.Mode, err = mlhb.ParseWeMode(s); err != nil {
			return nil, err
		}
	}
	if fl.Changed("vgrad") {
		s, _ := fl.GetString("vgrad")
		if cfg.VGrad, err = mlhb.ParseVGrad(s); err != nil {
			return nil, err
		}
	}
	if len(cfg.GridFP) == 0 {
		cfg.GridFP = "mlhb.grid.gob" // where `mlhb build` saves by default
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("indir", "", "daily state file directory")
	runCmd.Flags().String("outdir", "", "output directory")
	runCmd.Flags().String("fluxdir", "", "surface flux archive directory")
	runCmd.Flags().String("gridfile", "", "grid definition gob")
	runCmd.Flags().String("years", "", "years to evaluate, first:last or comma list")
	runCmd.Flags().Int("workers", 0, "concurrent year evaluations")
	runCmd.Flags().Float64("ah", 0, "horizontal diffusivity (m²/s)")
	runCmd.Flags().Float64("kv", 0, "vertical diffusivity (m²/s)")
	runCmd.Flags().Float64("hmin", 0, "mixed-layer thickness floor (m)")
	runCmd.Flags().String("we-mode", "", "entrainment velocity mode (dhdt|deepening|centered|full)")
	runCmd.Flags().Float64("we-cap", 0, "cap on |w_e| (m/day), 0 disables")
	runCmd.Flags().Bool("hbar", false, "divide terms by the two-day mean thickness")
	runCmd.Flags().Bool("cooling", true, "zero warming entrainment")
	runCmd.Flags().Float64("dt-cap", 0, "cap on |Tm-Tb| (K), 0 disables")
	runCmd.Flags().Float64("ent-cap", 0, "cap on |ENT| (K/day), 0 disables")
	runCmd.Flags().String("vgrad", "", "mixed-layer base gradient estimator (2pt|lsq)")
	runCmd.Flags().Float64("clos-tol", 0, "closure residual report tolerance (K/s)")
}
