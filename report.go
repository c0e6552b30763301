// File: report.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// LabelStyle picks the residue numbers printed on the chart.
type LabelStyle int

const (
	// LabelIndex prints 0-based residue indices, the second one shifted by +1.
	// This reproduces the charts produced by the original analysis.
	LabelIndex LabelStyle = iota
	// LabelResSeq prints the resSeq numbers from the topology file.
	LabelResSeq
)

// BuildEntries converts counts to simulated time (count / framesPerNs) and
// orders them by count, highest first. Equal counts keep first-seen order.
func BuildEntries(top *Topology, c *InteractionCounter, framesPerNs float64, style LabelStyle) []ReportEntry {
	entries := make([]ReportEntry, 0, c.Len())
	for _, key := range c.Keys() {
		ra, rb := top.Residues[key.A], top.Residues[key.B]
		e := ReportEntry{
			ResidueA: ra.Name,
			ResidueB: rb.Name,
			Count:    c.Count(key),
		}
		switch style {
		case LabelResSeq:
			e.IndexA, e.IndexB = ra.SeqNum, rb.SeqNum
		default:
			e.IndexA, e.IndexB = ra.Index, rb.Index+1
		}
		e.Label = fmt.Sprintf("%s (%d) - %s (%d)", e.ResidueA, e.IndexA, e.ResidueB, e.IndexB)
		e.TimeNs = float64(e.Count) / framesPerNs
		entries = append(entries, e)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})
	return entries
}

// WriteReportJSON stores the report next to the chart.
func WriteReportJSON(path string, rep *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		f.Close()
		return fmt.Errorf("encode report: %w", err)
	}
	return f.Close()
}
