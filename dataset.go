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

// Grid holds the geometry of a reservoir simulation grid.
type Grid interface {
	// ActiveCount returns the number of active cells.
	ActiveCount() int

	// GlobalIndex returns the global (all cell) index of the
	// cell with the given active index.
	GlobalIndex(active int) int

	// CellCenter returns the center of the cell with the given
	// global index.
	CellCenter(global int) (x, y, z float64)
}

// Dataset is a simulator result file holding named keyword arrays.
// Initialization datasets hold static properties such as PORV and PVTNUM;
// restart datasets hold the solution at one report step.
type Dataset interface {
	// HasKeyword returns whether at least one occurrence of the
	// named keyword is present.
	HasKeyword(name string) bool

	// Keyword returns the given occurrence of the named keyword.
	Keyword(name string, occurrence int) (Keyword, error)

	// Variant returns the format variant of the dataset.
	Variant() Variant

	// Phases returns the fluid phases present in the simulation.
	Phases() Phase
}

// Keyword is a typed array of keyword values.
type Keyword interface {
	Len() int
	Float(i int) float64
	Int(i int) int
}

// IntKeyword is a keyword holding integer values.
type IntKeyword []int32

// Len returns the number of values.
func (k IntKeyword) Len() int { return len(k) }

// Float returns value i as a float64.
func (k IntKeyword) Float(i int) float64 { return float64(k[i]) }

// Int returns value i.
func (k IntKeyword) Int(i int) int { return int(k[i]) }

// FloatKeyword is a keyword holding single precision values.
type FloatKeyword []float32

// Len returns the number of values.
func (k FloatKeyword) Len() int { return len(k) }

// Float returns value i.
func (k FloatKeyword) Float(i int) float64 { return float64(k[i]) }

// Int returns value i truncated to an integer.
func (k FloatKeyword) Int(i int) int { return int(k[i]) }

// DoubleKeyword is a keyword holding double precision values.
type DoubleKeyword []float64

// Len returns the number of values.
func (k DoubleKeyword) Len() int { return len(k) }

// Float returns value i.
func (k DoubleKeyword) Float(i int) float64 { return k[i] }

// Int returns value i truncated to an integer.
func (k DoubleKeyword) Int(i int) int { return int(k[i]) }

// role names a dataset in error messages.
type role string

const (
	initRole    role = "init"
	restartRole role = "restart"
)

// readKeyword reads the first occurrence of keyword name from d and
// checks that it holds at least n values.
func readKeyword(d Dataset, r role, name string, n int) (Keyword, error) {
	if !d.HasKeyword(name) {
		return nil, &KeywordError{Dataset: string(r), Keyword: name, Reason: "not present"}
	}
	kw, err := d.Keyword(name, 0)
	if err != nil {
		return nil, &KeywordError{Dataset: string(r), Keyword: name, Reason: "unreadable", Err: err}
	}
	if kw.Len() < n {
		return nil, &KeywordError{Dataset: string(r), Keyword: name,
			Reason: lengthReason(kw.Len(), n)}
	}
	return kw, nil
}
