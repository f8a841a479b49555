/*
Copyright © 2018 the TLGrav authors.
This file is part of TLGrav.

TLGrav is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

TLGrav is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with TLGrav.  If not, see <http://www.gnu.org/licenses/>.
*/

package tlgrav

import "fmt"

// MemGrid is a Grid held in memory. Centers holds the center of every
// cell in global order and Active holds the global index of each
// active cell.
type MemGrid struct {
	Centers [][3]float64
	Active  []int
}

// NewMemGrid returns a grid where every cell is active.
func NewMemGrid(centers [][3]float64) *MemGrid {
	active := make([]int, len(centers))
	for i := range active {
		active[i] = i
	}
	return &MemGrid{Centers: centers, Active: active}
}

// ActiveCount implements Grid.
func (g *MemGrid) ActiveCount() int { return len(g.Active) }

// GlobalIndex implements Grid.
func (g *MemGrid) GlobalIndex(active int) int { return g.Active[active] }

// CellCenter implements Grid.
func (g *MemGrid) CellCenter(global int) (x, y, z float64) {
	c := g.Centers[global]
	return c[0], c[1], c[2]
}

// MemDataset is a Dataset held in memory.
type MemDataset struct {
	Format   Variant
	PhaseSet Phase
	keywords map[string][]Keyword
}

// NewMemDataset returns an empty dataset with the given variant and
// phases.
func NewMemDataset(v Variant, phases Phase) *MemDataset {
	return &MemDataset{
		Format:   v,
		PhaseSet: phases,
		keywords: make(map[string][]Keyword),
	}
}

// Add appends an occurrence of keyword name.
func (d *MemDataset) Add(name string, kw Keyword) *MemDataset {
	d.keywords[name] = append(d.keywords[name], kw)
	return d
}

// HasKeyword implements Dataset.
func (d *MemDataset) HasKeyword(name string) bool { return len(d.keywords[name]) > 0 }

// Keyword implements Dataset.
func (d *MemDataset) Keyword(name string, occurrence int) (Keyword, error) {
	kws := d.keywords[name]
	if occurrence < 0 || occurrence >= len(kws) {
		return nil, fmt.Errorf("tlgrav: keyword %s occurrence %d not present (%d occurrences)",
			name, occurrence, len(kws))
	}
	return kws[occurrence], nil
}

// Variant implements Dataset.
func (d *MemDataset) Variant() Variant { return d.Format }

// Phases implements Dataset.
func (d *MemDataset) Phases() Phase { return d.PhaseSet }
