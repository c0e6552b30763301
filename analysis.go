// File: analysis.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
)

// runAnalysis executes the whole load → select → measure → count → report
// pipeline and writes the chart (and optional JSON) to disk.
func runAnalysis(cfg Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	id := uuid.New().String()
	log.Printf("Run %s: %s + %s", id, cfg.Topology, cfg.Trajectory)

	// 1) 读拓扑和轨迹
	traj, err := LoadTrajectory(cfg.Topology, cfg.Trajectory, LoadOptions{Stride: cfg.Stride})
	if err != nil {
		return nil, err
	}
	top := traj.Topology
	log.Printf("Loaded %d frames, %d atoms, %d residues", traj.NumFrames(), top.NumAtoms(), len(top.Residues))

	// 2) 选原子
	ligand, err := Select(top, cfg.LigandSelection)
	if err != nil {
		return nil, fmt.Errorf("ligand selection: %w", err)
	}
	receptor, err := Select(top, cfg.ReceptorSelection)
	if err != nil {
		return nil, fmt.Errorf("receptor selection: %w", err)
	}
	if len(ligand) == 0 {
		log.Printf("WARN: ligand selection %q matched no atoms", cfg.LigandSelection)
	}
	if len(receptor) == 0 {
		log.Printf("WARN: receptor selection %q matched no atoms", cfg.ReceptorSelection)
	}

	// 3) 距离
	pairs := AtomPairs(ligand, receptor)
	log.Printf("Ligand %d atoms × receptor %d atoms = %d pairs", len(ligand), len(receptor), len(pairs))
	dm, err := ComputeDistances(traj, pairs, DistanceOptions{Periodic: cfg.Periodic, Workers: cfg.Workers})
	if err != nil {
		return nil, err
	}

	// 4) 计数并排序
	counter := CountInteractions(top, pairs, dm, cfg.Threshold, cfg.LigandResName)
	if counter.Len() == 0 {
		log.Printf("WARN: no contacts below %g nm; the chart will be empty", cfg.Threshold)
	}
	style := LabelIndex
	if cfg.ResSeqLabel {
		style = LabelResSeq
	}
	rep := &Report{
		RunID:       id,
		Topology:    cfg.Topology,
		Trajectory:  cfg.Trajectory,
		Frames:      traj.NumFrames(),
		Pairs:       len(pairs),
		Threshold:   cfg.Threshold,
		FramesPerNs: cfg.FramesPerNs,
		Entries:     BuildEntries(top, counter, cfg.FramesPerNs, style),
	}
	log.Printf("%d residue pairs, %d contacts in total", counter.Len(), counter.Total())

	// 5) 画图并保存
	chart := cfg.Chart
	chart.RunID = id
	img, err := RenderChart(rep.Entries, chart)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	if err := os.WriteFile(cfg.Output, img, 0o644); err != nil {
		return nil, fmt.Errorf("write chart: %w", err)
	}
	log.Printf("Chart written to %s", cfg.Output)

	if cfg.JSONOutput != "" {
		if err := WriteReportJSON(cfg.JSONOutput, rep); err != nil {
			return nil, fmt.Errorf("write report %s: %w", cfg.JSONOutput, err)
		}
		log.Printf("Report written to %s", cfg.JSONOutput)
	}
	return rep, nil
}
