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
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"runtime"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/tlgrav"
	"github.com/spatialmodel/tlgrav/ncf"
	"github.com/spf13/cobra"
)

// openFile opens a local or downloaded copy of path.
func openFile(ctx context.Context, path string, log logrus.FieldLogger) (*os.File, error) {
	local, err := maybeDownload(ctx, path, log)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("tlgravutil: %v", err)
	}
	return f, nil
}

// openEngine builds a gravity engine from the grid, initialization,
// and survey files in c and registers its densities. The engine reads
// the initialization file as surveys are added, so closeInit must only be
// called once the engine is no longer used.
func openEngine(ctx context.Context, c *Config, log logrus.FieldLogger) (g *tlgrav.Grav, closeInit func() error, err error) {
	gf, err := openFile(ctx, c.GridFile, log)
	if err != nil {
		return nil, nil, err
	}
	defer gf.Close()
	grid, err := ncf.OpenGrid(gf)
	if err != nil {
		return nil, nil, err
	}

	inf, err := openFile(ctx, c.InitFile, log)
	if err != nil {
		return nil, nil, err
	}
	defer func() {
		if err != nil {
			inf.Close()
		}
	}()
	init, err := ncf.OpenDataset(inf)
	if err != nil {
		return nil, nil, fmt.Errorf("tlgravutil: InitFile %s: %v", c.InitFile, err)
	}

	opts := []tlgrav.Option{
		tlgrav.WithLogger(log),
		tlgrav.WithPorvCheck(c.PorvCheck),
		tlgrav.WithSampler(rand.New(rand.NewSource(c.Seed))),
	}
	if c.ReplaceSurveys {
		opts = append(opts, tlgrav.ReplaceSurveys())
	}
	g, err = tlgrav.New(grid, init, opts...)
	if err != nil {
		return nil, nil, err
	}
	for p, d := range c.StdDensity {
		g.RegisterDensity(p, d)
	}
	for _, o := range c.DensityOverrides {
		if err = g.SetDensityOverride(o.Phase, o.Region, o.Density); err != nil {
			return nil, nil, err
		}
	}

	for _, name := range c.surveyNames() {
		if err = addSurvey(ctx, g, name, c.Surveys[name], c.Method, log); err != nil {
			return nil, nil, err
		}
	}
	return g, inf.Close, nil
}

func addSurvey(ctx context.Context, g *tlgrav.Grav, name, path string, m tlgrav.Method, log logrus.FieldLogger) error {
	f, err := openFile(ctx, path, log)
	if err != nil {
		return err
	}
	defer f.Close()
	d, err := ncf.OpenDataset(f)
	if err != nil {
		return fmt.Errorf("tlgravutil: survey %s: %v", name, err)
	}
	_, err = g.AddSurvey(name, m, d)
	return err
}

// logOutput returns the writer that log messages go to, and a function
// that closes it.
func logOutput(cmd *cobra.Command, logFile string) (io.Writer, func(), error) {
	if logFile == "" {
		return cmd.OutOrStdout(), func() {}, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("tlgravutil: problem creating log file: %v", err)
	}
	return io.MultiWriter(cmd.OutOrStdout(), f), func() { f.Close() }, nil
}

// Run evaluates the gravity change at every station for every survey
// pair in c. Results are written to the output shapefile and results
// database if they are configured, and printed as a table.
func Run(ctx context.Context, cmd *cobra.Command, c *Config) ([]Result, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if len(c.Pairs) == 0 {
		return nil, fmt.Errorf("tlgravutil: no survey Pairs configured")
	}
	if c.StationsFile == "" {
		return nil, fmt.Errorf("tlgravutil: StationsFile must be set")
	}
	start := time.Now()

	w, closeLog, err := logOutput(cmd, c.LogFile)
	if err != nil {
		return nil, err
	}
	defer closeLog()
	log, err := newLogger(w, c.LogLevel)
	if err != nil {
		return nil, err
	}

	o, err := NewOutputter(c.OutputFile, c.GridProj, c.OutputVariables)
	if err != nil {
		return nil, err
	}

	g, closeEngine, err := openEngine(ctx, c, log)
	if err != nil {
		return nil, err
	}
	defer closeEngine()

	stationsFile, err := maybeDownload(ctx, c.StationsFile, log)
	if err != nil {
		return nil, err
	}
	stations, err := ReadStations(stationsFile, c.GridProj)
	if err != nil {
		return nil, err
	}
	warnOutside(log, g.GridCache().Bounds(), stations)
	log.WithFields(logrus.Fields{
		"stations": len(stations),
		"pairs":    len(c.Pairs),
		"method":   c.Method,
		"phases":   c.PhaseMask,
	}).Info("tlgrav: evaluating gravity responses")

	results, err := evaluate(g, c.Pairs, stations, c.PhaseMask, o)
	if err != nil {
		return nil, err
	}

	if c.OutputFile != "" {
		if err := o.Write(results); err != nil {
			return nil, err
		}
		log.WithField("file", c.OutputFile).Info("tlgrav: wrote output")
	}
	if c.ResultsDB != "" {
		s, err := OpenResultsStore(c.ResultsDB)
		if err != nil {
			return nil, err
		}
		run, err := s.SaveRun(c.Method, c.PhaseMask, results)
		s.Close()
		if err != nil {
			return nil, err
		}
		log.WithFields(logrus.Fields{
			"database": c.ResultsDB,
			"run":      run.ID,
		}).Info("tlgrav: saved results")
	}
	if err := printResults(cmd.OutOrStdout(), results); err != nil {
		return nil, err
	}
	log.WithField("duration", time.Since(start).Round(time.Millisecond)).Info("tlgrav: finished")
	return results, nil
}

// evaluate computes the response of every pair at every station, in
// pair order and then station order.
func evaluate(g *tlgrav.Grav, pairs []Pair, stations []Station, mask tlgrav.Phase, o *Outputter) ([]Result, error) {
	results := make([]Result, len(pairs)*len(stations))
	for i, p := range pairs {
		for j, s := range stations {
			results[i*len(stations)+j] = Result{Station: s, Pair: p}
		}
	}

	nprocs := runtime.GOMAXPROCS(-1)
	errs := make([]error, nprocs)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			defer wg.Done()
			for i := pp; i < len(results); i += nprocs {
				r := &results[i]
				var err error
				r.Phase, err = g.EvalByPhase(r.Base, r.Monitor, r.X, r.Y, r.Depth, mask)
				if err == nil {
					err = o.Evaluate(r)
				}
				if err != nil {
					errs[pp] = err
					return
				}
			}
		}(pp)
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// warnOutside logs the stations that are horizontally outside of the
// extent of the grid cells.
func warnOutside(log logrus.FieldLogger, b *geom.Bounds, stations []Station) {
	for _, s := range stations {
		if s.X < b.Min.X || s.X > b.Max.X || s.Y < b.Min.Y || s.Y > b.Max.Y {
			log.WithFields(logrus.Fields{
				"station": s.Name,
				"x":       s.X,
				"y":       s.Y,
			}).Warn("tlgrav: station is outside of the grid")
		}
	}
}

// printResults writes results as a table.
func printResults(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Station\tBase\tMonitor\tOil\tGas\tWater\tTotal\tObserved\t")
	for _, r := range results {
		observed := "-"
		if !math.IsNaN(r.Observed) {
			observed = fmt.Sprintf("%.3f", r.Observed)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f\t%.3f\t%.3f\t%.3f\t%s\t\n", r.Name, r.Base, r.Monitor,
			r.Phase[tlgrav.Oil], r.Phase[tlgrav.Gas], r.Phase[tlgrav.Water], r.Total(), observed)
	}
	return tw.Flush()
}

// SurveyMasses prints the total mass of each phase in each survey
// configured in c.
func SurveyMasses(ctx context.Context, cmd *cobra.Command, c *Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	w, closeLog, err := logOutput(cmd, c.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()
	log, err := newLogger(w, c.LogLevel)
	if err != nil {
		return err
	}
	g, closeEngine, err := openEngine(ctx, c, log)
	if err != nil {
		return err
	}
	defer closeEngine()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Survey\tMethod\tPhase\tMass\t")
	for _, name := range g.SurveyNames() {
		s, err := g.Survey(name)
		if err != nil {
			return err
		}
		for _, p := range s.Phases().Split() {
			fmt.Fprintf(tw, "%s\t%v\t%v\t%.6g\t\n", name, s.Method(), p, s.TotalMass(p))
		}
	}
	return tw.Flush()
}

// Keywords prints the simulator variant, phases, and keywords of the
// dataset file at path.
func Keywords(ctx context.Context, w io.Writer, path string) error {
	f, err := openFile(ctx, path, logrus.StandardLogger())
	if err != nil {
		return err
	}
	defer f.Close()
	d, err := ncf.OpenDataset(f)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "simulator: %v\nphases: %v\n", d.Variant(), d.Phases())
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Keyword\tOccurrences\tLength\t")
	for _, name := range d.Keywords() {
		kw, err := d.Keyword(name, 0)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t\n", name, d.Occurrences(name), kw.Len())
	}
	return tw.Flush()
}
