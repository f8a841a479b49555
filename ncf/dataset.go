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

// Package ncf stores simulator grids and keyword datasets in NetCDF
// files.
//
// A dataset file holds each keyword as a one dimensional variable named
// after the keyword. Repeated occurrences of a keyword are stored as
// NAME_1, NAME_2, and so on. The global attribute "simulator" holds the
// format variant (ECLIPSE100 or ECLIPSE300) and the global attribute
// "phases" holds the phase bit set (oil 1, gas 2, water 4).
//
// A grid file holds the variables ACTNUM, XCENT, YCENT, and ZCENT, each
// with dimensions nz, ny, nx.
package ncf

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/tlgrav"
)

const (
	simulatorAttr = "simulator"
	phasesAttr    = "phases"
)

// Dataset is a tlgrav.Dataset read from a NetCDF file. Keyword values
// are read from the file on each call to Keyword, so the underlying
// file must stay open while the Dataset is in use.
type Dataset struct {
	f        *cdf.File
	variant  tlgrav.Variant
	phases   tlgrav.Phase
	keywords map[string]bool
}

// OpenDataset reads the header of the dataset file in rw.
func OpenDataset(rw cdf.ReaderWriterAt) (*Dataset, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("ncf: opening dataset: %v", err)
	}
	d := &Dataset{f: f, keywords: make(map[string]bool)}
	for _, v := range f.Header.Variables() {
		d.keywords[v] = true
	}

	sim, ok := f.Header.GetAttribute("", simulatorAttr).(string)
	if !ok {
		return nil, fmt.Errorf("ncf: dataset is missing the %q attribute", simulatorAttr)
	}
	if d.variant, err = tlgrav.ParseVariant(sim); err != nil {
		return nil, err
	}

	switch p := f.Header.GetAttribute("", phasesAttr).(type) {
	case []int32:
		if len(p) != 1 {
			return nil, fmt.Errorf("ncf: dataset %q attribute has %d values; want 1", phasesAttr, len(p))
		}
		d.phases = tlgrav.Phase(p[0])
	case []int16:
		if len(p) != 1 {
			return nil, fmt.Errorf("ncf: dataset %q attribute has %d values; want 1", phasesAttr, len(p))
		}
		d.phases = tlgrav.Phase(p[0])
	default:
		return nil, fmt.Errorf("ncf: dataset is missing the integer %q attribute", phasesAttr)
	}
	if d.phases&^tlgrav.AllPhases != 0 {
		return nil, fmt.Errorf("ncf: invalid phase set %d", int(d.phases))
	}
	return d, nil
}

func occurrenceName(name string, occurrence int) string {
	if occurrence == 0 {
		return name
	}
	return fmt.Sprintf("%s_%d", name, occurrence)
}

// HasKeyword implements tlgrav.Dataset.
func (d *Dataset) HasKeyword(name string) bool { return d.keywords[name] }

// Keywords returns the names of the keywords in the file, sorted.
// Repeated occurrences of a keyword are listed once.
func (d *Dataset) Keywords() []string {
	o := make([]string, 0, len(d.keywords))
	for k := range d.keywords {
		if i := strings.LastIndex(k, "_"); i > 0 {
			if _, err := strconv.Atoi(k[i+1:]); err == nil && d.keywords[k[:i]] {
				continue
			}
		}
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

// Occurrences returns the number of occurrences of keyword name.
func (d *Dataset) Occurrences(name string) int {
	n := 0
	for d.keywords[occurrenceName(name, n)] {
		n++
	}
	return n
}

// Keyword implements tlgrav.Dataset.
func (d *Dataset) Keyword(name string, occurrence int) (tlgrav.Keyword, error) {
	v := occurrenceName(name, occurrence)
	if !d.keywords[v] {
		return nil, fmt.Errorf("ncf: keyword %s occurrence %d not in file", name, occurrence)
	}
	buf, err := readVar(d.f, v)
	if err != nil {
		return nil, err
	}
	switch b := buf.(type) {
	case []int32:
		return tlgrav.IntKeyword(b), nil
	case []int16:
		o := make(tlgrav.IntKeyword, len(b))
		for i, val := range b {
			o[i] = int32(val)
		}
		return o, nil
	case []float32:
		return tlgrav.FloatKeyword(b), nil
	case []float64:
		return tlgrav.DoubleKeyword(b), nil
	}
	return nil, fmt.Errorf("ncf: keyword %s has unsupported type %T", name, buf)
}

// Variant implements tlgrav.Dataset.
func (d *Dataset) Variant() tlgrav.Variant { return d.variant }

// Phases implements tlgrav.Dataset.
func (d *Dataset) Phases() tlgrav.Phase { return d.phases }

// readVar reads all values of variable v.
func readVar(f *cdf.File, v string) (interface{}, error) {
	dims := f.Header.Lengths(v)
	if len(dims) == 0 {
		return nil, fmt.Errorf("ncf: variable %v not in file", v)
	}
	n := 1
	for _, l := range dims {
		n *= l
	}
	r := f.Reader(v, nil, nil)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("ncf: reading variable %s: %v", v, err)
	}
	return buf, nil
}

// WriteDataset writes a dataset file to w. keywords holds the
// occurrences of each keyword in order.
func WriteDataset(w cdf.ReaderWriterAt, v tlgrav.Variant, phases tlgrav.Phase, keywords map[string][]tlgrav.Keyword) error {
	type variable struct {
		name string
		val  interface{}
	}
	names := make([]string, 0, len(keywords))
	for name := range keywords {
		names = append(names, name)
	}
	sort.Strings(names)

	var vars []variable
	var dims []string
	var lengths []int
	for _, name := range names {
		for i, kw := range keywords[name] {
			if kw.Len() == 0 {
				return fmt.Errorf("ncf: keyword %s occurrence %d is empty", name, i)
			}
			vn := occurrenceName(name, i)
			vars = append(vars, variable{name: vn, val: keywordValues(kw)})
			dims = append(dims, "n_"+vn)
			lengths = append(lengths, kw.Len())
		}
	}

	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", simulatorAttr, v.String())
	h.AddAttribute("", phasesAttr, []int32{int32(phases)})
	for i, vv := range vars {
		h.AddVariable(vv.name, []string{dims[i]}, vv.val)
	}
	h.Define()
	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("ncf: creating dataset: %v", err)
	}
	for _, vv := range vars {
		if _, err := f.Writer(vv.name, nil, nil).Write(vv.val); err != nil {
			return fmt.Errorf("ncf: writing keyword %s: %v", vv.name, err)
		}
	}
	return nil
}

// keywordValues returns the values of kw as a slice type that cdf can
// store.
func keywordValues(kw tlgrav.Keyword) interface{} {
	switch k := kw.(type) {
	case tlgrav.IntKeyword:
		return []int32(k)
	case tlgrav.FloatKeyword:
		return []float32(k)
	case tlgrav.DoubleKeyword:
		return []float64(k)
	}
	o := make([]float64, kw.Len())
	for i := range o {
		o[i] = kw.Float(i)
	}
	return o
}
