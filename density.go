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

// DensityTable holds the standard (surface condition) density of each
// phase, with optional overrides by PVT region.
type DensityTable struct {
	entries map[Phase]*stdDensity
}

type stdDensity struct {
	def    float64
	region map[int]float64
}

// NewDensityTable returns an empty table.
func NewDensityTable() *DensityTable {
	return &DensityTable{entries: make(map[Phase]*stdDensity)}
}

// Register sets the default density of phase p. If p is already
// registered, Register does nothing.
func (t *DensityTable) Register(p Phase, density float64) {
	if _, ok := t.entries[p]; ok {
		return
	}
	t.entries[p] = &stdDensity{def: density, region: make(map[int]float64)}
}

// Registered returns whether phase p has a default density.
func (t *DensityTable) Registered(p Phase) bool {
	_, ok := t.entries[p]
	return ok
}

// SetRegion sets the density of phase p in PVT region region. p must
// already be registered.
func (t *DensityTable) SetRegion(p Phase, region int, density float64) error {
	e, ok := t.entries[p]
	if !ok {
		return &PreconditionError{
			Op:  "set region density",
			Msg: fmt.Sprintf("phase %v has no default density; register it first", p),
		}
	}
	e.region[region] = density
	return nil
}

// Lookup returns the density of phase p in region region: the region
// override if one was set, otherwise the phase default.
func (t *DensityTable) Lookup(p Phase, region int) (float64, error) {
	e, ok := t.entries[p]
	if !ok {
		return 0, &DensityError{Phase: p}
	}
	if d, ok := e.region[region]; ok {
		return d, nil
	}
	return e.def, nil
}
