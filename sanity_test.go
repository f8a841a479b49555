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
	"errors"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// badPorvRestart returns a restart dataset with a pore volume of 100 in
// every cell except cell bad, which has 1500.
func badPorvRestart(n, bad int) *MemDataset {
	d := porvRestart(n, 100)
	rporv := floats32(n, 100)
	rporv[bad] = 1500
	d.keywords["RPORV"] = []Keyword{rporv}
	return d
}

func TestPorvCheckFail(t *testing.T) {
	const n, bad = 200, 17
	g := newTestGrav(t, testGrid(n), testInit(n), WithSampler(fixedSampler(bad)))
	_, err := g.AddSurveyRPORV("base", badPorvRestart(n, bad))
	var pe *PorvError
	if !errors.As(err, &pe) {
		t.Fatalf("want *PorvError, have %v", err)
	}
	if pe.InitPorv != 100 || pe.RestartPorv != 1500 {
		t.Errorf("values: have init %g, restart %g", pe.InitPorv, pe.RestartPorv)
	}
	if pe.ActiveIndex != bad || pe.GlobalIndex != bad {
		t.Errorf("index: have %d/%d, want %d", pe.ActiveIndex, pe.GlobalIndex, bad)
	}
	x, y, z := g.GridCache().Position(bad)
	if pe.X != x || pe.Y != y || pe.Z != z {
		t.Errorf("position: have %g,%g,%g want %g,%g,%g", pe.X, pe.Y, pe.Z, x, y, z)
	}
	if !IsDataQuality(err) {
		t.Error("error should be a data quality error")
	}
	if _, err := g.Survey("base"); err == nil {
		t.Error("failed survey should not be registered")
	}
}

func TestPorvCheckCycle(t *testing.T) {
	// Every cell is drawn in turn, so the bad cell is always found.
	const n, bad = 200, 57
	g := newTestGrav(t, testGrid(n), testInit(n), WithSampler(&cycleSampler{}))
	_, err := g.AddSurveyRPORV("base", badPorvRestart(n, bad))
	var pe *PorvError
	if !errors.As(err, &pe) {
		t.Fatalf("want *PorvError, have %v", err)
	}
	if pe.ActiveIndex != bad || pe.Sample != bad {
		t.Errorf("have cell %d after %d samples", pe.ActiveIndex, pe.Sample)
	}
}

func TestPorvCheckPass(t *testing.T) {
	const n = 200
	g := newTestGrav(t, testGrid(n), testInit(n))
	// Within a factor of ten.
	if _, err := g.AddSurveyRPORV("base", porvRestart(n, 950)); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddSurveyRPORV("monitor", porvRestart(n, 10.5)); err != nil {
		t.Fatal(err)
	}
}

func TestPorvCheckWarn(t *testing.T) {
	const n, bad = 200, 17
	logger, hook := test.NewNullLogger()
	g, err := New(testGrid(n), testInit(n), WithLogger(logger),
		WithSampler(fixedSampler(bad)), WithPorvCheck(PorvCheckWarn))
	if err != nil {
		t.Fatal(err)
	}
	g.RegisterDensity(Oil, 800)
	s, err := g.AddSurveyRPORV("base", badPorvRestart(n, bad))
	if err != nil {
		t.Fatal(err)
	}
	if s.PoreVolume()[bad] != 1500 {
		t.Errorf("pore volume not kept")
	}
	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
			if !IsDataQuality(e.Data[logrus.ErrorKey].(error)) {
				t.Errorf("warning should carry the pore volume error")
			}
		}
	}
	if !warned {
		t.Error("no warning logged")
	}
}

func TestPorvCheckSkip(t *testing.T) {
	const n, bad = 200, 17
	g := newTestGrav(t, testGrid(n), testInit(n),
		WithSampler(fixedSampler(bad)), WithPorvCheck(PorvCheckSkip))
	if _, err := g.AddSurveyRPORV("base", badPorvRestart(n, bad)); err != nil {
		t.Fatal(err)
	}
}

func TestPorvCheckInsufficient(t *testing.T) {
	const n = 50
	init := NewMemDataset(Eclipse100, AllPhases).Add("PORV", floats32(n, 0))
	g := newTestGrav(t, testGrid(n), init)
	_, err := g.AddSurveyRPORV("base", porvRestart(n, 100))
	var ie *InsufficientSamplesError
	if !errors.As(err, &ie) {
		t.Fatalf("want *InsufficientSamplesError, have %v", err)
	}

	// Only cell 3 has a pore volume, and it is never drawn.
	porv := floats32(n, 0)
	porv[3] = 100
	init = NewMemDataset(Eclipse100, AllPhases).Add("PORV", porv)
	g = newTestGrav(t, testGrid(n), init, WithSampler(fixedSampler(4)))
	_, err = g.AddSurveyRPORV("base", porvRestart(n, 100))
	if !errors.As(err, &ie) {
		t.Fatalf("want *InsufficientSamplesError, have %v", err)
	}
	if ie.Draws != porvCheckMaxDraws(n, 1) || ie.Valid != 0 {
		t.Errorf("have %d valid after %d draws", ie.Valid, ie.Draws)
	}
	if !IsDataQuality(err) {
		t.Error("error should be a data quality error")
	}
}

func TestPorvCheckSparse(t *testing.T) {
	// One cell in a thousand has a pore volume.
	const n, cell = 1000, 421
	porv := floats32(n, 0)
	porv[cell] = 100
	init := NewMemDataset(Eclipse100, AllPhases).Add("PORV", porv)
	g := newTestGrav(t, testGrid(n), init, WithSampler(rand.New(rand.NewSource(1))))
	if _, err := g.AddSurveyRPORV("base", porvRestart(n, 100)); err != nil {
		t.Fatal(err)
	}
	if have, want := porvCheckMaxDraws(n, n), 100*porvCheckPoints; have != want {
		t.Errorf("dense bound: have %d, want %d", have, want)
	}
	if have, want := porvCheckMaxDraws(n, 3), 100*porvCheckPoints*334; have != want {
		t.Errorf("sparse bound: have %d, want %d", have, want)
	}
}

func TestPorvCheckMissingInitPorv(t *testing.T) {
	const n = 10
	init := NewMemDataset(Eclipse100, AllPhases)
	g := newTestGrav(t, testGrid(n), init, WithPorvCheck(PorvCheckWarn))
	_, err := g.AddSurveyRPORV("base", porvRestart(n, 100))
	var ke *KeywordError
	if !errors.As(err, &ke) || ke.Keyword != "PORV" {
		t.Fatalf("want *KeywordError for PORV, have %v", err)
	}
}
