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

import (
	"fmt"
	"math"
)

// gravConst is the gravitational constant scaled so that masses in kg
// and distances in m give a response in µGal.
const gravConst = 6.67428e-3

// PhaseResponse is the gravity change at a station from each phase, in
// µGal.
type PhaseResponse map[Phase]float64

// Total returns the sum over all phases, added in oil, gas, water order.
func (r PhaseResponse) Total() float64 {
	var sum float64
	for _, p := range phaseOrder {
		if v, ok := r[p]; ok {
			sum += v
		}
	}
	return sum
}

// EvalByPhase returns the gravity change at station (x, y, z) caused by
// the change in mass from base to monitor, for each phase of base
// selected by mask. A nil monitor stands for zero mass everywhere.
//
// Each eligible cell is treated as a point mass. The vertical
// separation is the cell depth minus the station depth, so with depth
// increasing downwards a mass gain below the station is positive.
//
// EvalByPhase panics with a *PreconditionError if base is nil, if the
// surveys were built on different grids, or if monitor does not hold a
// phase of base that mask selects.
func EvalByPhase(base, monitor *Survey, x, y, z float64, mask Phase) PhaseResponse {
	if base == nil {
		panic(&PreconditionError{Op: "evaluate", Msg: "nil base survey"})
	}
	if monitor != nil && monitor.cache != base.cache {
		panic(&PreconditionError{Op: "evaluate", Msg: fmt.Sprintf(
			"surveys %q and %q were built on different grids", base.name, monitor.name)})
	}
	r := make(PhaseResponse)
	for _, bp := range base.phases {
		if !mask.Has(bp.Phase) {
			continue
		}
		var mp *PhaseMass
		if monitor != nil {
			mp = monitor.byPhase[bp.Phase]
			if mp == nil {
				panic(&PreconditionError{Op: "evaluate", Msg: fmt.Sprintf(
					"survey %q has phase %v but survey %q does not", base.name, bp.Phase, monitor.name)})
			}
		}
		r[bp.Phase] = phaseResponse(base.cache, bp, mp, x, y, z)
	}
	return r
}

// EvalSurveys returns the total gravity change over the phases selected
// by mask. See EvalByPhase.
func EvalSurveys(base, monitor *Survey, x, y, z float64, mask Phase) float64 {
	return EvalByPhase(base, monitor, x, y, z, mask).Total()
}

func phaseResponse(c *GridCache, base, monitor *PhaseMass, x, y, z float64) float64 {
	var deltag float64
	for i := 0; i < c.Size(); i++ {
		if !c.eligible[i] {
			continue
		}
		var m float64
		if monitor != nil {
			m = monitor.mass[i]
		}
		dx := c.center[i].X - x
		dy := c.center[i].Y - y
		dz := c.z[i] - z
		dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if dist == 0 {
			// A station at a cell center gets no pull from that cell.
			continue
		}
		deltag += gravConst * (m - base.mass[i]) * dz / (dist * dist * dist)
	}
	return deltag
}

// Eval returns the gravity change in µGal at station (x, y, z) between
// the surveys named base and monitor, summed over the phases selected
// by mask. An empty monitor name compares base against zero mass.
func (g *Grav) Eval(base, monitor string, x, y, z float64, mask Phase) (float64, error) {
	r, err := g.EvalByPhase(base, monitor, x, y, z, mask)
	if err != nil {
		return 0, err
	}
	return r.Total(), nil
}

// EvalByPhase is like Eval but returns the change from each phase.
func (g *Grav) EvalByPhase(base, monitor string, x, y, z float64, mask Phase) (PhaseResponse, error) {
	if base == "" {
		return nil, &PreconditionError{Op: "evaluate", Msg: "empty base survey name"}
	}
	bs, err := g.Survey(base)
	if err != nil {
		return nil, err
	}
	ms, err := g.Survey(monitor)
	if err != nil {
		return nil, err
	}
	return EvalByPhase(bs, ms, x, y, z, mask), nil
}
