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

package ncf

import (
	"fmt"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

var gridVars = []string{"ACTNUM", "XCENT", "YCENT", "ZCENT"}

// Grid is a corner point grid reduced to its cell centers. Global cell
// indices run over x fastest, then y, then z. Grid implements
// tlgrav.Grid.
type Grid struct {
	Nx, Ny, Nz int

	actnum, x, y, z *sparse.DenseArray

	active []int
	dirty  bool
}

// NewGrid returns a grid of nx×ny×nz inactive cells, all centered at
// the origin.
func NewGrid(nx, ny, nz int) *Grid {
	return &Grid{
		Nx:     nx,
		Ny:     ny,
		Nz:     nz,
		actnum: sparse.ZerosDense(nz, ny, nx),
		x:      sparse.ZerosDense(nz, ny, nx),
		y:      sparse.ZerosDense(nz, ny, nx),
		z:      sparse.ZerosDense(nz, ny, nx),
		dirty:  true,
	}
}

// Set sets the center and activity of cell (i, j, k).
func (g *Grid) Set(i, j, k int, x, y, z float64, active bool) {
	g.x.Set(x, k, j, i)
	g.y.Set(y, k, j, i)
	g.z.Set(z, k, j, i)
	var a float64
	if active {
		a = 1
	}
	g.actnum.Set(a, k, j, i)
	g.dirty = true
}

// OpenGrid reads a grid file.
func OpenGrid(rw cdf.ReaderWriterAt) (*Grid, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("ncf: opening grid: %v", err)
	}
	arrays := make([]*sparse.DenseArray, len(gridVars))
	for i, v := range gridVars {
		if arrays[i], err = readGridVar(f, v); err != nil {
			return nil, err
		}
	}
	shape := arrays[0].Shape
	for i, a := range arrays[1:] {
		if a.Shape[0] != shape[0] || a.Shape[1] != shape[1] || a.Shape[2] != shape[2] {
			return nil, fmt.Errorf("ncf: grid variable %s has shape %v but ACTNUM has shape %v",
				gridVars[i+1], a.Shape, shape)
		}
	}
	g := &Grid{
		Nz:     shape[0],
		Ny:     shape[1],
		Nx:     shape[2],
		actnum: arrays[0],
		x:      arrays[1],
		y:      arrays[2],
		z:      arrays[3],
		dirty:  true,
	}
	g.index()
	return g, nil
}

// readGridVar reads a three dimensional grid variable.
func readGridVar(f *cdf.File, v string) (*sparse.DenseArray, error) {
	dims := f.Header.Lengths(v)
	if len(dims) != 3 {
		return nil, fmt.Errorf("ncf: grid variable %s: have %d dimensions, want 3 (nz, ny, nx)", v, len(dims))
	}
	buf, err := readVar(f, v)
	if err != nil {
		return nil, err
	}
	data := sparse.ZerosDense(dims...)
	switch b := buf.(type) {
	case []int32:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	case []int16:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	case []float32:
		for i, val := range b {
			data.Elements[i] = float64(val)
		}
	case []float64:
		copy(data.Elements, b)
	default:
		return nil, fmt.Errorf("ncf: grid variable %s has unsupported type %T", v, buf)
	}
	return data, nil
}

func (g *Grid) index() {
	if !g.dirty {
		return
	}
	g.active = g.active[:0]
	for i, a := range g.actnum.Elements {
		if a > 0 {
			g.active = append(g.active, i)
		}
	}
	g.dirty = false
}

// ActiveCount implements tlgrav.Grid.
func (g *Grid) ActiveCount() int {
	g.index()
	return len(g.active)
}

// GlobalIndex implements tlgrav.Grid.
func (g *Grid) GlobalIndex(active int) int {
	g.index()
	return g.active[active]
}

// CellCenter implements tlgrav.Grid.
func (g *Grid) CellCenter(global int) (x, y, z float64) {
	return g.x.Elements[global], g.y.Elements[global], g.z.Elements[global]
}

// Write writes the grid to w.
func (g *Grid) Write(w cdf.ReaderWriterAt) error {
	h := cdf.NewHeader([]string{"nz", "ny", "nx"}, []int{g.Nz, g.Ny, g.Nx})
	dims := []string{"nz", "ny", "nx"}
	h.AddVariable("ACTNUM", dims, []int32{0})
	for _, v := range gridVars[1:] {
		h.AddVariable(v, dims, []float64{0})
		h.AddAttribute(v, "units", "m")
	}
	h.Define()
	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("ncf: creating grid: %v", err)
	}
	actnum := make([]int32, len(g.actnum.Elements))
	for i, a := range g.actnum.Elements {
		if a > 0 {
			actnum[i] = 1
		}
	}
	if _, err := f.Writer("ACTNUM", nil, nil).Write(actnum); err != nil {
		return fmt.Errorf("ncf: writing ACTNUM: %v", err)
	}
	for i, a := range []*sparse.DenseArray{g.x, g.y, g.z} {
		if _, err := f.Writer(gridVars[i+1], nil, nil).Write(a.Elements); err != nil {
			return fmt.Errorf("ncf: writing %s: %v", gridVars[i+1], err)
		}
	}
	return nil
}
