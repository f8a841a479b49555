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
	"strings"
)

// Sampler draws random cell indices. *rand.Rand satisfies it.
type Sampler interface {
	// Intn returns a value in [0, n).
	Intn(n int) int
}

// PorvCheckPolicy sets what happens when the restart pore volume of an
// RPORV survey fails the comparison with the initial pore volume.
type PorvCheckPolicy int

const (
	// PorvCheckFail returns the error from survey construction.
	PorvCheckFail PorvCheckPolicy = iota
	// PorvCheckWarn logs the error and builds the survey anyway.
	PorvCheckWarn
	// PorvCheckSkip does not run the comparison.
	PorvCheckSkip
)

func (p PorvCheckPolicy) String() string {
	switch p {
	case PorvCheckFail:
		return "fail"
	case PorvCheckWarn:
		return "warn"
	case PorvCheckSkip:
		return "skip"
	}
	return fmt.Sprintf("PorvCheckPolicy(%d)", int(p))
}

// ParsePorvCheckPolicy parses "fail", "warn", or "skip".
func ParsePorvCheckPolicy(s string) (PorvCheckPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fail", "":
		return PorvCheckFail, nil
	case "warn":
		return PorvCheckWarn, nil
	case "skip":
		return PorvCheckSkip, nil
	}
	return 0, fmt.Errorf("tlgrav: invalid pore volume check policy %q; valid policies are fail, warn and skip", s)
}

const (
	// porvCheckPoints is the number of cells compared.
	porvCheckPoints = 100
	// porvCheckDrawFactor times the expected number of draws bounds
	// the random draws, which skip cells without initial pore volume.
	porvCheckDrawFactor = 100
	// porvCheckLimit is the largest allowed |log10(restart/init)|.
	porvCheckLimit = 1.0
)

// checkPoreVolume compares the restart pore volume rporv with the initial
// pore volume at randomly drawn cells. Cells with no initial pore volume
// are skipped.
func checkPoreVolume(b *buildContext, rporv []float64) error {
	initPorv, err := readGlobalPorv(b)
	if err != nil {
		return err
	}
	n := b.cache.Size()
	var positive int
	for i := 0; i < n; i++ {
		if initPorv.Float(b.cache.GlobalIndex(i)) > 0 {
			positive++
		}
	}
	if positive == 0 {
		return &InsufficientSamplesError{Wanted: porvCheckPoints}
	}

	maxDraws := porvCheckMaxDraws(n, positive)
	var valid, draws int
	for valid < porvCheckPoints {
		if draws == maxDraws {
			return &InsufficientSamplesError{Valid: valid, Wanted: porvCheckPoints, Draws: draws}
		}
		draws++
		a := b.sampler.Intn(n)
		g := b.cache.GlobalIndex(a)
		ip := initPorv.Float(g)
		if ip <= 0 {
			continue
		}
		if math.Abs(math.Log10(rporv[a]/ip)) > porvCheckLimit {
			x, y, z := b.cache.Position(a)
			return &PorvError{
				ActiveIndex: a,
				GlobalIndex: g,
				X:           x,
				Y:           y,
				Z:           z,
				InitPorv:    ip,
				RestartPorv: rporv[a],
				Sample:      valid,
			}
		}
		valid++
	}
	return nil
}

// porvCheckMaxDraws returns the most cells drawn when positive of the n
// active cells have an initial pore volume.
func porvCheckMaxDraws(n, positive int) int {
	return porvCheckDrawFactor * porvCheckPoints * ((n + positive - 1) / positive)
}
