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
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/spatialmodel/tlgrav"
	"gonum.org/v1/gonum/floats"
)

// Result is the gravity change at one station between two surveys.
type Result struct {
	Station
	Pair

	// Phase holds the change from each phase, in µGal.
	Phase tlgrav.PhaseResponse

	// Values holds the output variables.
	Values map[string]float64
}

// Total returns the change summed over phases.
func (r *Result) Total() float64 { return r.Phase.Total() }

// parameters returns the variables available to output expressions.
func (r *Result) parameters() map[string]interface{} {
	return map[string]interface{}{
		"Oil":      r.Phase[tlgrav.Oil],
		"Gas":      r.Phase[tlgrav.Gas],
		"Water":    r.Phase[tlgrav.Water],
		"Total":    r.Total(),
		"Observed": r.Observed,
		"Depth":    r.Depth,
	}
}

var resultVariables = []string{"Oil", "Gas", "Water", "Total", "Observed", "Depth"}

// DefaultOutputVariables are written when no output variables are
// configured.
var DefaultOutputVariables = map[string]string{
	"Oil":   "Oil",
	"Gas":   "Gas",
	"Water": "Water",
	"Total": "Total",
}

var outputFunctions = map[string]govaluate.ExpressionFunction{
	"abs": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("tlgravutil: got %d arguments for function 'abs', but needs 1", len(arg))
		}
		return math.Abs(arg[0].(float64)), nil
	},
	"sqrt": func(arg ...interface{}) (interface{}, error) {
		if len(arg) != 1 {
			return nil, fmt.Errorf("tlgravutil: got %d arguments for function 'sqrt', but needs 1", len(arg))
		}
		return math.Sqrt(arg[0].(float64)), nil
	},
	"sum": func(arg ...interface{}) (interface{}, error) {
		v := make([]float64, len(arg))
		for i, a := range arg {
			v[i] = a.(float64)
		}
		return floats.Sum(v), nil
	},
	"mean": func(arg ...interface{}) (interface{}, error) {
		if len(arg) == 0 {
			return nil, fmt.Errorf("tlgravutil: function 'mean' needs at least 1 argument")
		}
		v := make([]float64, len(arg))
		for i, a := range arg {
			v[i] = a.(float64)
		}
		return floats.Sum(v) / float64(len(v)), nil
	},
	"max": func(arg ...interface{}) (interface{}, error) {
		if len(arg) == 0 {
			return nil, fmt.Errorf("tlgravutil: function 'max' needs at least 1 argument")
		}
		v := make([]float64, len(arg))
		for i, a := range arg {
			v[i] = a.(float64)
		}
		return floats.Max(v), nil
	},
	"min": func(arg ...interface{}) (interface{}, error) {
		if len(arg) == 0 {
			return nil, fmt.Errorf("tlgravutil: function 'min' needs at least 1 argument")
		}
		v := make([]float64, len(arg))
		for i, a := range arg {
			v[i] = a.(float64)
		}
		return floats.Min(v), nil
	},
}

// Outputter computes output variables from results and writes them to
// a point shapefile.
type Outputter struct {
	fileName    string
	gridProj    string
	names       []string
	expressions map[string]*govaluate.EvaluableExpression
}

// NewOutputter returns an Outputter that writes to fileName.
// outputVariables maps output field names to expressions of the
// variables Oil, Gas, Water, Total, Observed, and Depth, which may use
// the functions abs, sqrt, sum, mean, max, and min. gridProj, if not empty,
// is written as the spatial reference of the output.
func NewOutputter(fileName, gridProj string, outputVariables map[string]string) (*Outputter, error) {
	if len(outputVariables) == 0 {
		outputVariables = DefaultOutputVariables
	}
	if err := checkOutputNames(outputVariables); err != nil {
		return nil, err
	}
	o := &Outputter{
		fileName:    fileName,
		gridProj:    gridProj,
		expressions: make(map[string]*govaluate.EvaluableExpression),
	}
	known := make(map[string]bool)
	for _, v := range resultVariables {
		known[v] = true
	}
	for name, expr := range outputVariables {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("tlgravutil: output variable %s: %v", name, err)
		}
		for _, v := range e.Vars() {
			if !known[v] {
				return nil, fmt.Errorf("tlgravutil: output variable %s: undefined variable name '%s'; valid names are %s",
					name, v, strings.Join(resultVariables, ", "))
			}
		}
		o.expressions[name] = e
		o.names = append(o.names, name)
	}
	sort.Strings(o.names)
	return o, nil
}

// checkOutputNames checks (1) if any output variable names exceed 10 characters
// and (2) if any output variable names include characters that are unsupported
// in shapefile field names. Names used by the fixed fields are also rejected.
func checkOutputNames(o map[string]string) error {
	valid := regexp.MustCompile(`^[A-Za-z]\w*$`)
	for key := range o {
		long := len(key) > 10
		ok := valid.MatchString(key)
		switch {
		case long && !ok:
			return fmt.Errorf("tlgravutil: output variable name '%s' exceeds 10 characters and includes unsupported character(s)", key)
		case long:
			return fmt.Errorf("tlgravutil: output variable name '%s' exceeds 10 characters", key)
		case !ok:
			return fmt.Errorf("tlgravutil: output variable name '%s' includes unsupported characters", key)
		}
		switch strings.ToLower(key) {
		case "name", "base", "monitor":
			return fmt.Errorf("tlgravutil: output variable name '%s' is reserved", key)
		}
	}
	return nil
}

// Names returns the output variable names in sorted order.
func (o *Outputter) Names() []string { return o.names }

// Evaluate computes the output variables of r.
func (o *Outputter) Evaluate(r *Result) error {
	params := r.parameters()
	r.Values = make(map[string]float64, len(o.names))
	for _, name := range o.names {
		v, err := o.expressions[name].Evaluate(params)
		if err != nil {
			return fmt.Errorf("tlgravutil: evaluating output variable %s at station %s: %v", name, r.Name, err)
		}
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("tlgravutil: output variable %s is %T, not a number", name, v)
		}
		r.Values[name] = f
	}
	return nil
}

// Write writes results, which must already be evaluated, to the output
// shapefile.
func (o *Outputter) Write(results []Result) error {
	fields := []goshp.Field{
		goshp.StringField("Name", 40),
		goshp.StringField("Base", 40),
		goshp.StringField("Monitor", 40),
	}
	for _, v := range o.names {
		fields = append(fields, goshp.FloatField(v, 14, 8))
	}

	// remove extension and replace it with .shp
	fileBase := strings.TrimSuffix(o.fileName, filepath.Ext(o.fileName))
	e, err := shp.NewEncoderFromFields(fileBase+".shp", goshp.POINT, fields...)
	if err != nil {
		return fmt.Errorf("tlgravutil: creating output shapefile: %v", err)
	}
	for _, r := range results {
		vals := []interface{}{r.Name, r.Base, r.Monitor}
		for _, v := range o.names {
			vals = append(vals, r.Values[v])
		}
		if err := e.EncodeFields(r.Point, vals...); err != nil {
			e.Close()
			return fmt.Errorf("tlgravutil: writing output shapefile: %v", err)
		}
	}
	e.Close()

	if o.gridProj == "" {
		return nil
	}
	f, err := os.Create(fileBase + ".prj")
	if err != nil {
		return fmt.Errorf("tlgravutil: creating output prj file: %v", err)
	}
	fmt.Fprint(f, o.gridProj)
	return f.Close()
}
