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
	"math"
	"sync"
	"testing"
)

// singleCellGrav returns a registry for one cell at (0, 0, 1000) holding
// oil with a standard density of 1.
func singleCellGrav(t *testing.T) *Grav {
	grid := NewMemGrid([][3]float64{{0, 0, 1000}})
	init := NewMemDataset(Eclipse100, Oil).Add("PVTNUM", IntKeyword{1})
	g := newTestGrav(t, grid, init)
	g.density = NewDensityTable()
	g.RegisterDensity(Oil, 1)
	for name, fip := range map[string]float64{"base": 0, "monitor": 1000} {
		if _, err := g.AddSurveyFIP(name, NewMemDataset(Eclipse100, Oil).Add("FIPOIL", DoubleKeyword{fip})); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestEvalSingleCell(t *testing.T) {
	g := singleCellGrav(t)
	have, err := g.Eval("base", "monitor", 0, 0, 0, Oil)
	if err != nil {
		t.Fatal(err)
	}
	const want = 6.67428e-6
	if math.Abs(have-want) > 1e-12 {
		t.Errorf("have %g, want %g", have, want)
	}

	// Reversed order reverses the sign.
	rev, err := g.Eval("monitor", "base", 0, 0, 0, Oil)
	if err != nil {
		t.Fatal(err)
	}
	if rev != -have {
		t.Errorf("reversed: have %g, want %g", rev, -have)
	}

	// No monitor is a monitor with zero mass.
	noMonitor, err := g.Eval("monitor", "", 0, 0, 0, Oil)
	if err != nil {
		t.Fatal(err)
	}
	if noMonitor != rev {
		t.Errorf("no monitor: have %g, want %g", noMonitor, rev)
	}

	// The mask excludes every phase the surveys hold.
	none, err := g.Eval("base", "monitor", 0, 0, 0, Gas)
	if err != nil {
		t.Fatal(err)
	}
	if none != 0 {
		t.Errorf("gas only: have %g, want 0", none)
	}
}

func TestEvalSameSurvey(t *testing.T) {
	const n = 60
	g := newTestGrav(t, testGrid(n), testInit(n))
	if _, err := g.AddSurveyRPORV("base", porvRestart(n, 110)); err != nil {
		t.Fatal(err)
	}
	for _, st := range [][3]float64{{0, 0, 0}, {450, 250, 10}, {-1000, 3000, 500}} {
		have, err := g.Eval("base", "base", st[0], st[1], st[2], AllPhases)
		if err != nil {
			t.Fatal(err)
		}
		if have != 0 {
			t.Errorf("station %v: have %g, want exactly 0", st, have)
		}
	}
}

func TestEvalAquiferIgnored(t *testing.T) {
	const n = 30
	aq := ints(n, 0)
	aq[4], aq[11] = -1, -3
	build := func(aquiferMass float64) float64 {
		init := testInit(n).Add("AQUIFERN", aq)
		g := newTestGrav(t, testGrid(n), init)
		base := fipRestart(n, 1, 1, 1)
		monitor := NewMemDataset(Eclipse100, AllPhases).
			Add("FIPOIL", doubles(n, 2)).
			Add("FIPGAS", doubles(n, 1)).
			Add("FIPWAT", doubles(n, 1))
		fipwat := doubles(n, 1)
		fipwat[4], fipwat[11] = aquiferMass, aquiferMass
		monitor.keywords["FIPWAT"] = []Keyword{fipwat}
		if _, err := g.AddSurveyFIP("base", base); err != nil {
			t.Fatal(err)
		}
		if _, err := g.AddSurveyFIP("monitor", monitor); err != nil {
			t.Fatal(err)
		}
		v, err := g.Eval("base", "monitor", 450, 50, 0, AllPhases)
		if err != nil {
			t.Fatal(err)
		}
		return v
	}
	a, b := build(1), build(1e12)
	if a != b {
		t.Errorf("aquifer mass changed the response: %g != %g", a, b)
	}
	if a <= 0 {
		t.Errorf("oil mass increased below the station; response %g should be positive", a)
	}
}

func TestEvalMask(t *testing.T) {
	const n = 40
	station := [3]float64{300, 100, 0}
	g := newTestGrav(t, testGrid(n), testInit(n))
	if _, err := g.AddSurveyFIP("base", fipRestart(n, 1, 2, 3)); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddSurveyFIP("monitor", fipRestart(n, 1.5, 1, 3.5)); err != nil {
		t.Fatal(err)
	}
	// The same surveys with gas and water unchanged.
	if _, err := g.AddSurveyFIP("base_oil", fipRestart(n, 1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddSurveyFIP("monitor_oil", fipRestart(n, 1.5, 0, 0)); err != nil {
		t.Fatal(err)
	}
	masked, err := g.Eval("base", "monitor", station[0], station[1], station[2], Oil)
	if err != nil {
		t.Fatal(err)
	}
	zeroed, err := g.Eval("base_oil", "monitor_oil", station[0], station[1], station[2], AllPhases)
	if err != nil {
		t.Fatal(err)
	}
	if masked != zeroed {
		t.Errorf("masked %g != zeroed %g", masked, zeroed)
	}

	byPhase, err := g.EvalByPhase("base", "monitor", station[0], station[1], station[2], AllPhases)
	if err != nil {
		t.Fatal(err)
	}
	total, err := g.Eval("base", "monitor", station[0], station[1], station[2], AllPhases)
	if err != nil {
		t.Fatal(err)
	}
	if byPhase.Total() != total {
		t.Errorf("phase sum %g != total %g", byPhase.Total(), total)
	}
	if byPhase[Oil] != masked {
		t.Errorf("oil term %g != masked %g", byPhase[Oil], masked)
	}
	if byPhase[Gas] >= 0 {
		t.Errorf("gas mass decreased; gas term %g should be negative", byPhase[Gas])
	}
}

func TestEvalErrors(t *testing.T) {
	g := singleCellGrav(t)
	var ne *SurveyNameError
	if _, err := g.Eval("missing", "monitor", 0, 0, 0, Oil); !errors.As(err, &ne) {
		t.Errorf("want *SurveyNameError, have %v", err)
	}
	if _, err := g.Eval("base", "missing", 0, 0, 0, Oil); !errors.As(err, &ne) {
		t.Errorf("want *SurveyNameError, have %v", err)
	}
	var pe *PreconditionError
	if _, err := g.Eval("", "monitor", 0, 0, 0, Oil); !errors.As(err, &pe) {
		t.Errorf("want *PreconditionError, have %v", err)
	}
}

func expectPrecondition(t *testing.T, f func()) {
	t.Helper()
	defer func() {
		r := recover()
		if _, ok := r.(*PreconditionError); !ok {
			t.Errorf("want *PreconditionError panic, have %v", r)
		}
	}()
	f()
}

func TestEvalPhaseMismatch(t *testing.T) {
	g := singleCellGrav(t)
	base, _ := g.Survey("base")
	monitor, _ := g.Survey("monitor")
	gasOnly := &Survey{
		name:    "gas",
		cache:   monitor.cache,
		byPhase: map[Phase]*PhaseMass{Gas: {Phase: Gas, mass: []float64{1}}},
	}
	gasOnly.phases = []*PhaseMass{gasOnly.byPhase[Gas]}
	expectPrecondition(t, func() { EvalSurveys(base, gasOnly, 0, 0, 0, AllPhases) })

	// Masked out phases are not paired.
	if v := EvalSurveys(base, gasOnly, 0, 0, 0, Gas); v != 0 {
		t.Errorf("have %g, want 0", v)
	}

	other := singleCellGrav(t)
	otherMonitor, _ := other.Survey("monitor")
	expectPrecondition(t, func() { EvalSurveys(base, otherMonitor, 0, 0, 0, Oil) })
	expectPrecondition(t, func() { EvalSurveys(nil, monitor, 0, 0, 0, Oil) })
}

func TestEvalConcurrent(t *testing.T) {
	const n = 100
	g := newTestGrav(t, testGrid(n), testInit(n))
	if _, err := g.AddSurveyFIP("base", fipRestart(n, 1, 2, 3)); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddSurveyFIP("monitor", fipRestart(n, 2, 1, 3)); err != nil {
		t.Fatal(err)
	}
	want, err := g.Eval("base", "monitor", 500, 500, 0, AllPhases)
	if err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	results := make([]float64, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = g.Eval("base", "monitor", 500, 500, 0, AllPhases)
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		if r != want {
			t.Errorf("goroutine %d: have %g, want %g", i, r, want)
		}
	}
}
