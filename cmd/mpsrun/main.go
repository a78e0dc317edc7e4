// Command mpsrun drives the mps core end to end: resolve parameters, build
// or load an initial particle configuration, run the simulation, and emit
// snapshots. Configuration is resolved once into an immutable
// mps.Parameters value and threaded through explicitly -- no package-level
// mutable configuration (§9 Design Notes, SPEC_FULL.md 1R).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"mpsfluid/driver"
	"mpsfluid/mps"
	"mpsfluid/output"
	"mpsfluid/scenario"
	"mpsfluid/viz"

	"github.com/google/uuid"
)

func main() {
	var (
		configPath   string
		particleFile string
		outDir       string
		format       string
		columnWidth  float64
		columnHeight float64
		frame        bool
	)

	flag.StringVar(&configPath, "config", "", "YAML parameter bundle (defaults used if empty)")
	flag.StringVar(&particleFile, "particles", "", "particle file to load instead of the dam-break builder")
	flag.StringVar(&outDir, "out", "out", "output directory for snapshots")
	flag.StringVar(&format, "format", "csv", "snapshot format: csv or vtk")
	flag.Float64Var(&columnWidth, "column-width", 0.25, "dam-break water column width")
	flag.Float64Var(&columnHeight, "column-height", 0.5, "dam-break water column height")
	flag.BoolVar(&frame, "frame", false, "also render a final PNG still frame")
	flag.Parse()

	if err := run(configPath, particleFile, outDir, format, columnWidth, columnHeight, frame); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

func run(configPath, particleFile, outDir, format string, columnWidth, columnHeight float64, frame bool) error {
	params := mps.DefaultParameters()
	if configPath != "" {
		loaded, err := scenario.LoadParameters(configPath)
		if err != nil {
			return err
		}
		params = loaded
	}

	var ps *mps.ParticleSystem
	var err error
	if particleFile != "" {
		ps, err = scenario.LoadParticleFile(particleFile, params.Dim)
	} else {
		ps, err = scenario.DamBreak2D(params, columnWidth, columnHeight)
	}
	if err != nil {
		return err
	}

	runID := uuid.New().String()
	log.Printf("mpsrun: run %s, %d particles, dim=%d", runID, ps.Count(), params.Dim)

	sim, err := driver.NewSimulation(ps, params)
	if err != nil {
		return err
	}

	var sink driver.OutputSink
	switch format {
	case "vtk":
		sink, err = output.NewVTKSink(outDir)
	case "csv":
		sink, err = output.NewCSVSink(outDir)
	default:
		return fmt.Errorf("mpsrun: unknown format %q", format)
	}
	if err != nil {
		return err
	}

	if err := sim.Run(sink); err != nil {
		return err
	}

	log.Printf("mpsrun: run %s complete, %d stalls, %d drift events", runID, sim.Diagnostics.Stalls, sim.Diagnostics.Drifts)

	if frame {
		framePath := outDir + "/final.png"
		if err := viz.RenderPNG(framePath, ps, params.DomainMin, params.DomainMax, 800, int(800*(params.DomainMax[1]-params.DomainMin[1])/(params.DomainMax[0]-params.DomainMin[0])), 2.0); err != nil {
			return err
		}
	}

	return nil
}
