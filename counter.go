// File: counter.go
package main

// InteractionCounter tallies residue-pair contacts. Keys keep the order in
// which they were first seen so that sorting by count stays reproducible.
type InteractionCounter struct {
	keys   []ResiduePair
	counts map[ResiduePair]int
}

func NewInteractionCounter() *InteractionCounter {
	return &InteractionCounter{counts: make(map[ResiduePair]int)}
}

// Add increments key, initialising it to 1 on first sight.
func (c *InteractionCounter) Add(key ResiduePair) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

func (c *InteractionCounter) Count(key ResiduePair) int { return c.counts[key] }

// Keys returns the keys in first-occurrence order.
func (c *InteractionCounter) Keys() []ResiduePair { return c.keys }

func (c *InteractionCounter) Len() int { return len(c.keys) }

// Total is the sum of all counts.
func (c *InteractionCounter) Total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// CountInteractions walks every frame and counts each atom pair closer than
// threshold under the (residue of pair[0], residue of pair[1]) key. Pairs whose
// two residues are both named ligandResName are skipped.
func CountInteractions(top *Topology, pairs []AtomPair, dm *DistanceMatrix, threshold float64, ligandResName string) *InteractionCounter {
	c := NewInteractionCounter()
	frames, _ := dm.Dims()
	for f := 0; f < frames; f++ {
		for k, d := range dm.Row(f) {
			if !(d < threshold) {
				continue
			}
			r1 := top.Atom(pairs[k][0]).Residue
			r2 := top.Atom(pairs[k][1]).Residue
			if r1.Name == ligandResName && r2.Name == ligandResName {
				continue
			}
			c.Add(ResiduePair{A: r1.Index, B: r2.Index})
		}
	}
	return c
}
