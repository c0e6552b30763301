// File: config.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"runtime"
)

// Config is everything one run needs. DefaultConfig reproduces the fixed
// inputs and constants of the production analysis.
type Config struct {
	Topology   string
	Trajectory string
	Output     string
	JSONOutput string // empty disables the JSON report

	LigandSelection   string
	ReceptorSelection string
	LigandResName     string // pairs between two residues of this name are ignored

	Threshold   float64 // nm
	FramesPerNs float64 // saved frames per simulated ns
	Stride      int
	Periodic    bool
	Workers     int
	ResSeqLabel bool
	Show        bool

	Chart ChartConfig
}

func DefaultConfig() Config {
	return Config{
		Topology:          "step3_input.pdb",
		Trajectory:        "step5_production.xtc",
		Output:            "Simulation_time_plot.png",
		LigandSelection:   "resname UNK",
		ReceptorSelection: "protein",
		LigandResName:     "UNK",
		Threshold:         0.5,
		FramesPerNs:       200,
		Stride:            1,
		Periodic:          true,
		Workers:           1,
		Show:              true,
		Chart:             DefaultChartConfig(),
	}
}

// RegisterFlags binds cfg's fields to fs, keeping the current values as defaults.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Topology, "top", c.Topology, "topology (PDB) file")
	fs.StringVar(&c.Trajectory, "traj", c.Trajectory, "trajectory file (.xtc, .dcd or multi-model .pdb)")
	fs.StringVar(&c.Output, "out", c.Output, "output PNG path")
	fs.StringVar(&c.JSONOutput, "json", c.JSONOutput, "also write the report as JSON to this path")
	fs.StringVar(&c.LigandSelection, "ligand", c.LigandSelection, "ligand selection expression")
	fs.StringVar(&c.ReceptorSelection, "receptor", c.ReceptorSelection, "receptor selection expression")
	fs.StringVar(&c.LigandResName, "ligand-resname", c.LigandResName, "residue name whose self-contacts are skipped")
	fs.Float64Var(&c.Threshold, "threshold", c.Threshold, "contact cutoff in nm")
	fs.Float64Var(&c.FramesPerNs, "frames-per-ns", c.FramesPerNs, "saved frames per ns, used to convert counts to time")
	fs.IntVar(&c.Stride, "stride", c.Stride, "only analyse every n-th frame")
	fs.BoolVar(&c.Periodic, "periodic", c.Periodic, "use minimum-image distances when frames carry a box")
	fs.IntVar(&c.Workers, "workers", c.Workers, fmt.Sprintf("frames computed concurrently (this machine has %d CPUs)", runtime.NumCPU()))
	fs.BoolVar(&c.ResSeqLabel, "resseq", c.ResSeqLabel, "label bars with PDB residue numbers instead of indices")
	fs.BoolVar(&c.Show, "show", c.Show, "open the chart in the system image viewer (-show=false for headless runs)")
	fs.IntVar(&c.Chart.Width, "width", c.Chart.Width, "chart width in pixels")
	fs.IntVar(&c.Chart.Height, "height", c.Chart.Height, "chart height in pixels")
	fs.StringVar(&c.Chart.BarColor, "color", c.Chart.BarColor, "bar colour (hex)")
}

// Validate rejects values the pipeline cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Topology == "" {
		errs = append(errs, errors.New("topology path is empty"))
	}
	if c.Trajectory == "" {
		errs = append(errs, errors.New("trajectory path is empty"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output path is empty"))
	}
	if !(c.Threshold > 0) {
		errs = append(errs, fmt.Errorf("threshold must be > 0, got %g", c.Threshold))
	}
	if !(c.FramesPerNs > 0) {
		errs = append(errs, fmt.Errorf("frames-per-ns must be > 0, got %g", c.FramesPerNs))
	}
	if c.Stride < 1 {
		errs = append(errs, fmt.Errorf("stride must be >= 1, got %d", c.Stride))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be >= 1, got %d", c.Workers))
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		errs = append(errs, fmt.Errorf("chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height))
	}
	return errors.Join(errs...)
}
