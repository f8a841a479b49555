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

package tlgravutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/tlgrav"
	"github.com/spf13/cast"
)

// Config holds the settings for a gravity evaluation run.
type Config struct {
	// GridFile and InitFile are the NetCDF grid and initialization
	// dataset files.
	GridFile, InitFile string

	// Method is the fluid mass method used for all surveys.
	Method tlgrav.Method

	// Surveys maps survey names to restart dataset files.
	Surveys map[string]string

	// StdDensity holds the default standard density of each phase.
	StdDensity map[tlgrav.Phase]float64

	// DensityOverrides holds standard densities for individual PVT
	// regions.
	DensityOverrides []DensityOverride

	// Pairs are the base and monitor surveys to compare.
	Pairs []Pair

	// PhaseMask selects the phases that contribute to the responses.
	PhaseMask tlgrav.Phase

	// StationsFile is a point shapefile of gravity stations.
	StationsFile string

	// GridProj is the spatial reference of the grid. If it is set,
	// stations are reprojected to it.
	GridProj string

	OutputFile      string
	OutputVariables map[string]string

	// ResultsDB is an optional SQLite database that results are
	// appended to.
	ResultsDB string

	PorvCheck      tlgrav.PorvCheckPolicy
	ReplaceSurveys bool
	Seed           int64

	LogFile, LogLevel string
}

// DensityOverride is the standard density of a phase in one PVT region.
type DensityOverride struct {
	Phase   tlgrav.Phase
	Region  int
	Density float64
}

// Pair is a base and monitor survey to compare. An empty Monitor
// compares Base against no fluid.
type Pair struct {
	Base, Monitor string
}

func (p Pair) String() string { return p.Base + ":" + p.Monitor }

// ParsePair parses a pair in the form "base:monitor".
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
		return Pair{}, fmt.Errorf("tlgravutil: invalid survey pair %q; the format is base:monitor", s)
	}
	return Pair{Base: strings.TrimSpace(parts[0]), Monitor: strings.TrimSpace(parts[1])}, nil
}

// LoadConfig reads the run configuration from cfg. Paths may contain
// environment variables.
func LoadConfig(cfg *viper.Viper) (*Config, error) {
	c := &Config{
		GridFile:       os.ExpandEnv(cfg.GetString("GridFile")),
		InitFile:       os.ExpandEnv(cfg.GetString("InitFile")),
		StationsFile:   os.ExpandEnv(cfg.GetString("StationsFile")),
		GridProj:       cfg.GetString("GridProj"),
		OutputFile:     os.ExpandEnv(cfg.GetString("OutputFile")),
		ResultsDB:      os.ExpandEnv(cfg.GetString("ResultsDB")),
		ReplaceSurveys: cfg.GetBool("ReplaceSurveys"),
		Seed:           cfg.GetInt64("Seed"),
		LogFile:        os.ExpandEnv(cfg.GetString("LogFile")),
		LogLevel:       cfg.GetString("LogLevel"),
	}
	var err error
	if c.Method, err = tlgrav.ParseMethod(cfg.GetString("Method")); err != nil {
		return nil, err
	}
	if c.PhaseMask, err = tlgrav.ParsePhase(cfg.GetString("PhaseMask")); err != nil {
		return nil, err
	}
	if c.PorvCheck, err = tlgrav.ParsePorvCheckPolicy(cfg.GetString("PorvCheck")); err != nil {
		return nil, err
	}

	surveys, err := GetStringMapString("Surveys", cfg)
	if err != nil {
		return nil, err
	}
	c.Surveys = make(map[string]string, len(surveys))
	for name, path := range surveys {
		c.Surveys[name] = os.ExpandEnv(path)
	}

	dens, err := GetStringMapString("StdDensity", cfg)
	if err != nil {
		return nil, err
	}
	if c.StdDensity, err = parseStdDensity(dens); err != nil {
		return nil, err
	}
	overrides, err := GetStringMapString("DensityOverrides", cfg)
	if err != nil {
		return nil, err
	}
	if c.DensityOverrides, err = parseDensityOverrides(overrides); err != nil {
		return nil, err
	}

	pairs, err := cast.ToStringSliceE(cfg.Get("Pairs"))
	if err != nil {
		return nil, fmt.Errorf("tlgravutil: Pairs: %v", err)
	}
	for _, s := range pairs {
		p, err := ParsePair(s)
		if err != nil {
			return nil, err
		}
		c.Pairs = append(c.Pairs, p)
	}

	if c.OutputVariables, err = GetStringMapString("OutputVariables", cfg); err != nil {
		return nil, err
	}
	if c.LogFile == "" && c.OutputFile != "" {
		c.LogFile = strings.TrimSuffix(c.OutputFile, filepath.Ext(c.OutputFile)) + ".log"
	}
	return c, nil
}

// Validate checks that the configuration is complete enough to evaluate
// responses.
func (c *Config) Validate() error {
	if c.GridFile == "" || c.InitFile == "" {
		return fmt.Errorf("tlgravutil: GridFile and InitFile must be set")
	}
	if len(c.Surveys) == 0 {
		return fmt.Errorf("tlgravutil: no Surveys configured")
	}
	for _, p := range c.Pairs {
		for _, name := range []string{p.Base, p.Monitor} {
			if _, ok := c.Surveys[name]; name != "" && !ok {
				return fmt.Errorf("tlgravutil: pair %v refers to survey %q, which is not in Surveys (%s)",
					p, name, strings.Join(c.surveyNames(), ", "))
			}
		}
	}
	return nil
}

func (c *Config) surveyNames() []string {
	o := make([]string, 0, len(c.Surveys))
	for n := range c.Surveys {
		o = append(o, n)
	}
	sort.Strings(o)
	return o
}

func parseStdDensity(m map[string]string) (map[tlgrav.Phase]float64, error) {
	o := make(map[tlgrav.Phase]float64, len(m))
	for name, val := range m {
		p, err := singlePhase(name)
		if err != nil {
			return nil, err
		}
		d, err := cast.ToFloat64E(val)
		if err != nil {
			return nil, fmt.Errorf("tlgravutil: standard density for %v: %v", p, err)
		}
		o[p] = d
	}
	return o, nil
}

// parseDensityOverrides parses keys in the form "phase:region".
func parseDensityOverrides(m map[string]string) ([]DensityOverride, error) {
	var o []DensityOverride
	for key, val := range m {
		parts := strings.Split(key, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("tlgravutil: invalid density override %q; the format is phase:region", key)
		}
		p, err := singlePhase(parts[0])
		if err != nil {
			return nil, err
		}
		r, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return nil, fmt.Errorf("tlgravutil: density override %q: invalid region: %v", key, err)
		}
		d, err := cast.ToFloat64E(val)
		if err != nil {
			return nil, fmt.Errorf("tlgravutil: density override %q: %v", key, err)
		}
		o = append(o, DensityOverride{Phase: p, Region: r, Density: d})
	}
	sort.Slice(o, func(i, j int) bool {
		if o[i].Phase != o[j].Phase {
			return o[i].Phase < o[j].Phase
		}
		return o[i].Region < o[j].Region
	})
	return o, nil
}

func singlePhase(name string) (tlgrav.Phase, error) {
	p, err := tlgrav.ParsePhase(name)
	if err != nil {
		return 0, err
	}
	if len(p.Split()) != 1 {
		return 0, fmt.Errorf("tlgravutil: %q is not a single phase", name)
	}
	return p, nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return make(map[string]string), nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if v == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("tlgravutil: %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("tlgravutil: invalid type for %s: %#v", varName, i)
	}
}
