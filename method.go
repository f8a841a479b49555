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
	"strings"

	"github.com/sirupsen/logrus"
)

// Method is a way of computing the fluid mass in each cell from a restart
// dataset. The implementations are FIP, RFIP, RPORV, and PORMOD.
type Method interface {
	fmt.Stringer

	// phaseMass returns the mass of phase p in each active cell.
	// porv is the pore volume for methods that have one and nil
	// otherwise.
	phaseMass(b *buildContext, p Phase, porv []float64) ([]float64, error)
}

// poreVolumeMethod is implemented by the methods that compute mass from
// saturation and pore volume.
type poreVolumeMethod interface {
	Method
	poreVolume(b *buildContext) ([]float64, error)
}

// buildContext holds what a Method needs to construct one survey.
type buildContext struct {
	cache   *GridCache
	init    Dataset
	restart Dataset
	density *DensityTable

	porvCheck PorvCheckPolicy
	sampler   Sampler
	log       logrus.FieldLogger
}

var methodNames = []string{"FIP", "RFIP", "RPORV", "PORMOD"}

// ParseMethod returns the method with the given name: one of FIP, RFIP,
// RPORV, or PORMOD, in any case.
func ParseMethod(name string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "FIP":
		return FIP{}, nil
	case "RFIP":
		return RFIP{}, nil
	case "RPORV":
		return RPORV{}, nil
	case "PORMOD":
		return PORMOD{}, nil
	}
	return nil, &MethodError{Name: name}
}

// FIP computes mass as the fluid in place at surface conditions (FIPOIL,
// FIPGAS, FIPWAT) times the standard density of the cell's PVT region.
type FIP struct{}

func (FIP) String() string { return "FIP" }

func (FIP) phaseMass(b *buildContext, p Phase, _ []float64) ([]float64, error) {
	if !b.density.Registered(p) {
		return nil, &DensityError{Phase: p}
	}
	n := b.cache.Size()
	fip, err := readKeyword(b.restart, restartRole, fipKeyword(p), n)
	if err != nil {
		return nil, err
	}
	pvtnum, err := readKeyword(b.init, initRole, "PVTNUM", n)
	if err != nil {
		return nil, err
	}
	mass := make([]float64, n)
	for i := range mass {
		d, err := b.density.Lookup(p, pvtnum.Int(i))
		if err != nil {
			return nil, err
		}
		mass[i] = fip.Float(i) * d
	}
	return mass, nil
}

// RFIP computes mass as the fluid in place at reservoir conditions
// (RFIPOIL, RFIPGAS, RFIPWAT) times the reservoir density.
type RFIP struct{}

func (RFIP) String() string { return "RFIP" }

func (RFIP) phaseMass(b *buildContext, p Phase, _ []float64) ([]float64, error) {
	n := b.cache.Size()
	den, err := reservoirDensity(b, p)
	if err != nil {
		return nil, err
	}
	rfip, err := readKeyword(b.restart, restartRole, rfipKeyword(p), n)
	if err != nil {
		return nil, err
	}
	mass := make([]float64, n)
	for i := range mass {
		mass[i] = den.Float(i) * rfip.Float(i)
	}
	return mass, nil
}

// RPORV computes mass as reservoir density times saturation times the
// restart pore volume (RPORV). The restart pore volume is compared with
// the initial pore volume before any mass is computed.
type RPORV struct{}

func (RPORV) String() string { return "RPORV" }

func (RPORV) phaseMass(b *buildContext, p Phase, porv []float64) ([]float64, error) {
	return saturationMass(b, p, porv)
}

func (RPORV) poreVolume(b *buildContext) ([]float64, error) {
	n := b.cache.Size()
	kw, err := readKeyword(b.restart, restartRole, "RPORV", n)
	if err != nil {
		return nil, err
	}
	porv := make([]float64, n)
	for i := range porv {
		porv[i] = kw.Float(i)
	}
	if b.porvCheck == PorvCheckSkip {
		return porv, nil
	}
	if err := checkPoreVolume(b, porv); err != nil {
		if b.porvCheck == PorvCheckWarn && IsDataQuality(err) {
			b.log.WithError(err).Warn("tlgrav: restart pore volume check failed; continuing")
			return porv, nil
		}
		return nil, err
	}
	return porv, nil
}

// PORMOD computes mass as reservoir density times saturation times the
// modified pore volume: the restart pore volume multiplier PORV_MOD
// times the initial pore volume PORV.
type PORMOD struct{}

func (PORMOD) String() string { return "PORMOD" }

func (PORMOD) phaseMass(b *buildContext, p Phase, porv []float64) ([]float64, error) {
	return saturationMass(b, p, porv)
}

func (PORMOD) poreVolume(b *buildContext) ([]float64, error) {
	n := b.cache.Size()
	mod, err := readKeyword(b.restart, restartRole, "PORV_MOD", n)
	if err != nil {
		return nil, err
	}
	initPorv, err := readGlobalPorv(b)
	if err != nil {
		return nil, err
	}
	porv := make([]float64, n)
	for i := range porv {
		porv[i] = mod.Float(i) * initPorv.Float(b.cache.GlobalIndex(i))
	}
	return porv, nil
}

// readGlobalPorv reads the initial pore volume, which is indexed by
// global cell.
func readGlobalPorv(b *buildContext) (Keyword, error) {
	kw, err := readKeyword(b.init, initRole, "PORV", 0)
	if err != nil {
		return nil, err
	}
	for i := 0; i < b.cache.Size(); i++ {
		if g := b.cache.GlobalIndex(i); g >= kw.Len() {
			return nil, &KeywordError{Dataset: string(initRole), Keyword: "PORV",
				Reason: fmt.Sprintf("has %d values but the grid has global cell %d", kw.Len(), g)}
		}
	}
	return kw, nil
}

// reservoirDensity reads the reservoir density of phase p from the
// restart dataset.
func reservoirDensity(b *buildContext, p Phase) (Keyword, error) {
	name, err := DensityKeyword(p, b.init.Variant())
	if err != nil {
		return nil, err
	}
	return readKeyword(b.restart, restartRole, name, b.cache.Size())
}

// saturationMass returns density × saturation × pore volume for phase p.
// When the saturation of p is not stored, it is the remainder after the
// water and, when present, gas saturations.
func saturationMass(b *buildContext, p Phase, porv []float64) ([]float64, error) {
	n := b.cache.Size()
	den, err := reservoirDensity(b, p)
	if err != nil {
		return nil, err
	}
	sat, err := saturation(b, p)
	if err != nil {
		return nil, err
	}
	mass := make([]float64, n)
	for i := range mass {
		mass[i] = den.Float(i) * sat[i] * porv[i]
	}
	return mass, nil
}

func saturation(b *buildContext, p Phase) ([]float64, error) {
	n := b.cache.Size()
	sat := make([]float64, n)
	if name := saturationKeyword(p); b.restart.HasKeyword(name) {
		kw, err := readKeyword(b.restart, restartRole, name, n)
		if err != nil {
			return nil, err
		}
		for i := range sat {
			sat[i] = kw.Float(i)
		}
		return sat, nil
	}
	swat, err := readKeyword(b.restart, restartRole, "SWAT", n)
	if err != nil {
		return nil, err
	}
	for i := range sat {
		sat[i] = 1 - swat.Float(i)
	}
	if b.restart.HasKeyword("SGAS") {
		sgas, err := readKeyword(b.restart, restartRole, "SGAS", n)
		if err != nil {
			return nil, err
		}
		for i := range sat {
			sat[i] -= sgas.Float(i)
		}
	}
	return sat, nil
}
