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
	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/floats"
)

// PhaseMass is the mass of one fluid phase in every active cell.
type PhaseMass struct {
	Phase Phase
	mass  []float64
}

// Mass returns the mass in active cell i.
func (pm *PhaseMass) Mass(i int) float64 { return pm.mass[i] }

// Survey is the fluid mass distribution at one point in time. It does
// not change after it is built, so it is safe for concurrent reads.
type Survey struct {
	name    string
	method  Method
	cache   *GridCache
	porv    []float64
	phases  []*PhaseMass
	byPhase map[Phase]*PhaseMass
}

// newSurvey builds a survey from the restart dataset in b, one phase at
// a time in oil, gas, water order.
func newSurvey(name string, m Method, b *buildContext) (*Survey, error) {
	s := &Survey{
		name:    name,
		method:  m,
		cache:   b.cache,
		byPhase: make(map[Phase]*PhaseMass),
	}
	if pm, ok := m.(poreVolumeMethod); ok {
		porv, err := pm.poreVolume(b)
		if err != nil {
			return nil, err
		}
		s.porv = porv
	}
	for _, p := range b.init.Phases().Split() {
		mass, err := m.phaseMass(b, p, s.porv)
		if err != nil {
			return nil, err
		}
		ph := &PhaseMass{Phase: p, mass: mass}
		s.phases = append(s.phases, ph)
		s.byPhase[p] = ph
	}
	return s, nil
}

// Name returns the survey name.
func (s *Survey) Name() string { return s.name }

// Method returns the method the survey was built with.
func (s *Survey) Method() Method { return s.method }

// Phases returns the phases the survey holds.
func (s *Survey) Phases() Phase {
	var p Phase
	for _, ph := range s.phases {
		p |= ph.Phase
	}
	return p
}

// Phase returns the mass of phase p, or nil if the survey does not
// hold p.
func (s *Survey) Phase(p Phase) *PhaseMass { return s.byPhase[p] }

// PoreVolume returns the pore volume of each active cell, or nil for
// methods that do not use pore volume. The returned slice must not be
// modified.
func (s *Survey) PoreVolume() []float64 { return s.porv }

// TotalMass returns the mass of phase p summed over the cells that
// contribute to gravity responses.
func (s *Survey) TotalMass(p Phase) *unit.Unit {
	ph := s.byPhase[p]
	if ph == nil {
		return unit.New(0, unit.Kilogram)
	}
	m := make([]float64, 0, len(ph.mass))
	for i, v := range ph.mass {
		if s.cache.Eligible(i) {
			m = append(m, v)
		}
	}
	return unit.New(floats.Sum(m), unit.Kilogram)
}
