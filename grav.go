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
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
)

// Grav holds a set of named surveys built on one grid, and computes the
// gravity change between pairs of them.
//
// Surveys and evaluation may be used from several goroutines at once,
// but AddSurvey, RemoveSurvey, and the density registration methods
// must not run concurrently with anything else.
type Grav struct {
	init    Dataset
	cache   *GridCache
	density *DensityTable
	surveys map[string]*Survey

	replace   bool
	porvCheck PorvCheckPolicy
	sampler   Sampler
	log       logrus.FieldLogger
}

// Option configures a Grav.
type Option func(*Grav) error

// WithLogger sets the logger for survey construction messages. The
// default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(g *Grav) error {
		g.log = l
		return nil
	}
}

// WithSampler sets the source of random cell indices for the RPORV pore
// volume check. The default is a *rand.Rand with a fixed seed.
func WithSampler(s Sampler) Option {
	return func(g *Grav) error {
		if s == nil {
			return &PreconditionError{Op: "WithSampler", Msg: "nil sampler"}
		}
		g.sampler = s
		return nil
	}
}

// WithPorvCheck sets the policy for the RPORV pore volume check.
func WithPorvCheck(p PorvCheckPolicy) Option {
	return func(g *Grav) error {
		if p < PorvCheckFail || p > PorvCheckSkip {
			return fmt.Errorf("tlgrav: invalid pore volume check policy %v", p)
		}
		g.porvCheck = p
		return nil
	}
}

// ReplaceSurveys makes AddSurvey replace an existing survey with the same
// name instead of returning a *SurveyExistsError.
func ReplaceSurveys() Option {
	return func(g *Grav) error {
		g.replace = true
		return nil
	}
}

// New builds the grid cache for grid and returns an empty registry.
// init is the initialization dataset of the simulation. It is read
// again whenever a survey is added, so it must stay usable for as long
// as the registry is.
func New(grid Grid, init Dataset, opts ...Option) (*Grav, error) {
	cache, err := NewGridCache(grid, init)
	if err != nil {
		return nil, err
	}
	g := &Grav{
		init:    init,
		cache:   cache,
		density: NewDensityTable(),
		surveys: make(map[string]*Survey),
		sampler: rand.New(rand.NewSource(1)),
		log:     logrus.StandardLogger(),
	}
	for _, o := range opts {
		if err := o(g); err != nil {
			return nil, err
		}
	}
	g.log.WithFields(logrus.Fields{
		"active":  cache.Size(),
		"aquifer": cache.Size() - cache.EligibleCount(),
		"phases":  init.Phases(),
		"variant": init.Variant(),
	}).Debug("tlgrav: grid cache built")
	return g, nil
}

// GridCache returns the grid cache shared by all surveys.
func (g *Grav) GridCache() *GridCache { return g.cache }

// RegisterDensity sets the default standard density of phase p. If p
// already has a default, the call does nothing.
func (g *Grav) RegisterDensity(p Phase, density float64) {
	g.density.Register(p, density)
}

// SetDensityOverride sets the standard density of phase p in PVT region
// region. p must already have a default density.
func (g *Grav) SetDensityOverride(p Phase, region int, density float64) error {
	return g.density.SetRegion(p, region, density)
}

// Density returns the standard density of phase p in PVT region region.
func (g *Grav) Density(p Phase, region int) (float64, error) {
	return g.density.Lookup(p, region)
}

// AddSurvey builds a survey from restart using method m and stores it
// under name. restart is only read during the call.
func (g *Grav) AddSurvey(name string, m Method, restart Dataset) (*Survey, error) {
	if m == nil {
		return nil, &PreconditionError{Op: "AddSurvey", Msg: "nil method"}
	}
	if name == "" {
		return nil, &PreconditionError{Op: "AddSurvey", Msg: "empty survey name"}
	}
	if _, ok := g.surveys[name]; ok && !g.replace {
		return nil, &SurveyExistsError{Name: name}
	}
	log := g.log.WithFields(logrus.Fields{"survey": name, "method": m})
	s, err := newSurvey(name, m, &buildContext{
		cache:     g.cache,
		init:      g.init,
		restart:   restart,
		density:   g.density,
		porvCheck: g.porvCheck,
		sampler:   g.sampler,
		log:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("tlgrav: adding survey %q: %w", name, err)
	}
	if _, ok := g.surveys[name]; ok {
		log.Info("tlgrav: replacing survey")
	}
	g.surveys[name] = s
	log.WithField("phases", s.Phases()).Info("tlgrav: added survey")
	return s, nil
}

// AddSurveyFIP adds a survey using the FIP method.
func (g *Grav) AddSurveyFIP(name string, restart Dataset) (*Survey, error) {
	return g.AddSurvey(name, FIP{}, restart)
}

// AddSurveyRFIP adds a survey using the RFIP method.
func (g *Grav) AddSurveyRFIP(name string, restart Dataset) (*Survey, error) {
	return g.AddSurvey(name, RFIP{}, restart)
}

// AddSurveyRPORV adds a survey using the RPORV method.
func (g *Grav) AddSurveyRPORV(name string, restart Dataset) (*Survey, error) {
	return g.AddSurvey(name, RPORV{}, restart)
}

// AddSurveyPORMOD adds a survey using the PORMOD method.
func (g *Grav) AddSurveyPORMOD(name string, restart Dataset) (*Survey, error) {
	return g.AddSurvey(name, PORMOD{}, restart)
}

// RemoveSurvey drops the named survey.
func (g *Grav) RemoveSurvey(name string) error {
	if _, ok := g.surveys[name]; !ok {
		return g.nameError(name)
	}
	delete(g.surveys, name)
	return nil
}

// Survey returns the named survey. An empty name returns a nil survey
// and no error, which stands for "no survey" wherever a monitor survey
// is expected.
func (g *Grav) Survey(name string) (*Survey, error) {
	if name == "" {
		return nil, nil
	}
	s, ok := g.surveys[name]
	if !ok {
		return nil, g.nameError(name)
	}
	return s, nil
}

// SurveyNames returns the names of all surveys in sorted order.
func (g *Grav) SurveyNames() []string {
	names := make([]string, 0, len(g.surveys))
	for n := range g.surveys {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (g *Grav) nameError(name string) error {
	return &SurveyNameError{Name: name, Available: g.SurveyNames()}
}
