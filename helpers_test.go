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
	"math"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
)

const testTolerance = 1e-10

func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

// fixedSampler always draws the same cell.
type fixedSampler int

func (s fixedSampler) Intn(n int) int { return int(s) % n }

// cycleSampler draws cells 0, 1, 2, ... in turn.
type cycleSampler struct{ i int }

func (s *cycleSampler) Intn(n int) int {
	v := s.i % n
	s.i++
	return v
}

// testGrid returns a grid of n cells on a 10 column plan grid 100 m
// apart, 1000 m to 1020 m deep.
func testGrid(n int) *MemGrid {
	c := make([][3]float64, n)
	for i := range c {
		c[i] = [3]float64{float64(i%10) * 100, float64(i/10) * 100, 1000 + float64(i%3)*10}
	}
	return NewMemGrid(c)
}

func ints(n int, v int32) IntKeyword {
	k := make(IntKeyword, n)
	for i := range k {
		k[i] = v
	}
	return k
}

func floats32(n int, v float32) FloatKeyword {
	k := make(FloatKeyword, n)
	for i := range k {
		k[i] = v
	}
	return k
}

func doubles(n int, v float64) DoubleKeyword {
	k := make(DoubleKeyword, n)
	for i := range k {
		k[i] = v
	}
	return k
}

// testInit returns an ECLIPSE100 init dataset with all phases, one PVT
// region, and a pore volume of 100 in each of n cells.
func testInit(n int) *MemDataset {
	return NewMemDataset(Eclipse100, AllPhases).
		Add("PVTNUM", ints(n, 1)).
		Add("PORV", floats32(n, 100))
}

// fipRestart returns a restart dataset with uniform fluid in place.
func fipRestart(n int, oil, gas, water float64) *MemDataset {
	return NewMemDataset(Eclipse100, AllPhases).
		Add("FIPOIL", doubles(n, oil)).
		Add("FIPGAS", doubles(n, gas)).
		Add("FIPWAT", doubles(n, water))
}

// porvRestart returns a restart dataset for the pore volume methods.
func porvRestart(n int, rporv float32) *MemDataset {
	return NewMemDataset(Eclipse100, AllPhases).
		Add("RPORV", floats32(n, rporv)).
		Add("PORV_MOD", floats32(n, 1)).
		Add("SWAT", floats32(n, 0.3)).
		Add("SGAS", floats32(n, 0.2)).
		Add("OIL_DEN", floats32(n, 800)).
		Add("GAS_DEN", floats32(n, 100)).
		Add("WAT_DEN", floats32(n, 1000))
}

func newTestGrav(t *testing.T, grid Grid, init Dataset, opts ...Option) *Grav {
	logger, _ := test.NewNullLogger()
	g, err := New(grid, init, append([]Option{WithLogger(logger)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	g.RegisterDensity(Oil, 800)
	g.RegisterDensity(Gas, 1)
	g.RegisterDensity(Water, 1000)
	return g
}
