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
)

// Phase is a reservoir fluid phase. Phases combine as a bit set, so a
// Phase value can also be used as a mask selecting several phases.
type Phase int

// The fluid phases. The numeric values match the phase bit set stored in
// simulator initialization files.
const (
	Oil   Phase = 1
	Gas   Phase = 2
	Water Phase = 4

	// AllPhases selects oil, gas, and water.
	AllPhases = Oil | Gas | Water
)

// phaseOrder is the order phases are built and evaluated in.
var phaseOrder = []Phase{Oil, Gas, Water}

// Has returns whether mask p includes every phase in q.
func (p Phase) Has(q Phase) bool { return q != 0 && p&q == q }

// Split returns the individual phases in p, in oil, gas, water order.
func (p Phase) Split() []Phase {
	var o []Phase
	for _, ph := range phaseOrder {
		if p.Has(ph) {
			o = append(o, ph)
		}
	}
	return o
}

func (p Phase) String() string {
	switch p {
	case Oil:
		return "oil"
	case Gas:
		return "gas"
	case Water:
		return "water"
	case 0:
		return "none"
	}
	if p&^AllPhases != 0 {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	names := make([]string, 0, 3)
	for _, ph := range p.Split() {
		names = append(names, ph.String())
	}
	return strings.Join(names, "+")
}

// ParsePhase parses a phase mask such as "oil", "gas+water", or "all".
// Phase names are case insensitive and may be separated by '+', ',' or
// whitespace.
func ParsePhase(s string) (Phase, error) {
	var p Phase
	f := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '+' || r == ',' || r == ' ' || r == '\t' || r == '|'
	})
	if len(f) == 0 {
		return 0, fmt.Errorf("tlgrav: empty phase mask")
	}
	for _, name := range f {
		switch name {
		case "oil":
			p |= Oil
		case "gas":
			p |= Gas
		case "water", "wat":
			p |= Water
		case "all":
			p |= AllPhases
		default:
			return 0, fmt.Errorf("tlgrav: invalid phase %q; valid phases are oil, gas, water and all", name)
		}
	}
	return p, nil
}

// saturationKeyword returns the name of the saturation keyword for a
// single phase.
func saturationKeyword(p Phase) string {
	switch p {
	case Oil:
		return "SOIL"
	case Gas:
		return "SGAS"
	case Water:
		return "SWAT"
	}
	panic(&PreconditionError{Op: "saturation keyword", Msg: fmt.Sprintf("%v is not a single phase", p)})
}

func fipKeyword(p Phase) string {
	switch p {
	case Oil:
		return "FIPOIL"
	case Gas:
		return "FIPGAS"
	case Water:
		return "FIPWAT"
	}
	panic(&PreconditionError{Op: "fluid in place keyword", Msg: fmt.Sprintf("%v is not a single phase", p)})
}

func rfipKeyword(p Phase) string {
	return "R" + fipKeyword(p)
}

// Variant is the simulator output format family of a dataset. It decides
// which keywords hold reservoir densities.
type Variant int

// The supported format variants.
const (
	UnknownVariant Variant = iota
	Eclipse100
	Eclipse300
)

func (v Variant) String() string {
	switch v {
	case Eclipse100:
		return "ECLIPSE100"
	case Eclipse300:
		return "ECLIPSE300"
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// ParseVariant parses a variant name such as "ECLIPSE100" or "E300".
func ParseVariant(s string) (Variant, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ECLIPSE100", "E100":
		return Eclipse100, nil
	case "ECLIPSE300", "E300":
		return Eclipse300, nil
	}
	return UnknownVariant, fmt.Errorf("tlgrav: invalid format variant %q; valid variants are ECLIPSE100 and ECLIPSE300", s)
}

var densityKeywords = map[Variant]map[Phase]string{
	Eclipse100: {Oil: "OIL_DEN", Gas: "GAS_DEN", Water: "WAT_DEN"},
	Eclipse300: {Oil: "DENO", Gas: "DENG", Water: "DENW"},
}

// DensityKeyword returns the name of the keyword holding the reservoir
// density of phase p in datasets of format variant v.
func DensityKeyword(p Phase, v Variant) (string, error) {
	kw, ok := densityKeywords[v][p]
	if !ok {
		return "", &VariantError{Variant: v, Phase: p}
	}
	return kw, nil
}
