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

import "github.com/ctessum/geom"

// GridCache holds the cell center, global index and eligibility of every
// active cell of a grid. Cells in numerical aquifers are not eligible
// and never contribute to a gravity response.
type GridCache struct {
	center   []geom.Point // horizontal position
	z        []float64
	global   []int
	eligible []bool
	nAquifer int
}

// NewGridCache builds the cache for grid. init is read for the optional
// AQUIFERN keyword, which marks aquifer cells with negative values.
func NewGridCache(grid Grid, init Dataset) (*GridCache, error) {
	n := grid.ActiveCount()
	c := &GridCache{
		center:   make([]geom.Point, n),
		z:        make([]float64, n),
		global:   make([]int, n),
		eligible: make([]bool, n),
	}
	for i := range c.eligible {
		c.eligible[i] = true
	}
	if init.HasKeyword("AQUIFERN") {
		aq, err := readKeyword(init, initRole, "AQUIFERN", n)
		if err != nil {
			return nil, err
		}
		for i := 0; i < n; i++ {
			if aq.Int(i) < 0 {
				c.eligible[i] = false
				c.nAquifer++
			}
		}
	}
	for i := 0; i < n; i++ {
		g := grid.GlobalIndex(i)
		x, y, z := grid.CellCenter(g)
		c.global[i] = g
		c.center[i] = geom.Point{X: x, Y: y}
		c.z[i] = z
	}
	return c, nil
}

// Size returns the number of active cells.
func (c *GridCache) Size() int { return len(c.global) }

// Position returns the center of active cell i.
func (c *GridCache) Position(i int) (x, y, z float64) {
	return c.center[i].X, c.center[i].Y, c.z[i]
}

// GlobalIndex returns the global index of active cell i.
func (c *GridCache) GlobalIndex(i int) int { return c.global[i] }

// Eligible returns whether active cell i contributes to gravity
// responses.
func (c *GridCache) Eligible(i int) bool { return c.eligible[i] }

// EligibleCount returns the number of cells that are not in an aquifer.
func (c *GridCache) EligibleCount() int { return len(c.global) - c.nAquifer }

// Bounds returns the horizontal extent of the cell centers.
func (c *GridCache) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, p := range c.center {
		b.Extend(p.Bounds())
	}
	return b
}
