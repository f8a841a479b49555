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
	"fmt"
	"strings"
)

// KeywordError is returned when a required keyword is missing from a
// dataset or cannot be used.
type KeywordError struct {
	Dataset string // "init" or "restart"
	Keyword string
	Reason  string
	Err     error
}

func (e *KeywordError) Error() string {
	msg := fmt.Sprintf("tlgrav: %s dataset keyword %s: %s", e.Dataset, e.Keyword, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *KeywordError) Unwrap() error { return e.Err }

func lengthReason(have, want int) string {
	return fmt.Sprintf("has %d values but the grid has %d active cells", have, want)
}

// DensityError is returned when a standard density is requested for a
// phase that has not been registered.
type DensityError struct {
	Phase Phase
}

func (e *DensityError) Error() string {
	return fmt.Sprintf("tlgrav: no standard density registered for phase %v", e.Phase)
}

// VariantError is returned when no reservoir density keyword is known for
// a phase and format variant.
type VariantError struct {
	Variant Variant
	Phase   Phase
}

func (e *VariantError) Error() string {
	return fmt.Sprintf("tlgrav: no density keyword for phase %v in %v datasets; supported variants are %v and %v",
		e.Phase, e.Variant, Eclipse100, Eclipse300)
}

// MethodError is returned for an unknown fluid mass method name.
type MethodError struct {
	Name string
}

func (e *MethodError) Error() string {
	return fmt.Sprintf("tlgrav: invalid fluid mass method %q; valid methods are %s",
		e.Name, strings.Join(methodNames, ", "))
}

// SurveyNameError is returned when a survey name is not registered.
type SurveyNameError struct {
	Name      string
	Available []string
}

func (e *SurveyNameError) Error() string {
	return fmt.Sprintf("tlgrav: no survey named %q; available surveys are [%s]",
		e.Name, strings.Join(e.Available, ", "))
}

// SurveyExistsError is returned when adding a survey whose name is
// already registered and replacement is not enabled.
type SurveyExistsError struct {
	Name string
}

func (e *SurveyExistsError) Error() string {
	return fmt.Sprintf("tlgrav: survey %q already exists", e.Name)
}

// PorvError reports a restart pore volume that differs from the
// initial pore volume of the same cell by more than a factor of ten.
// It usually means the restart file does not belong to the grid.
type PorvError struct {
	ActiveIndex, GlobalIndex int
	X, Y, Z                  float64
	InitPorv, RestartPorv    float64
	Sample                   int // number of valid comparisons before this one
}

func (e *PorvError) Error() string {
	return fmt.Sprintf("tlgrav: restart pore volume %g differs from initial pore volume %g "+
		"at active cell %d (global %d, position %g, %g, %g); "+
		"the restart file may not belong to this grid",
		e.RestartPorv, e.InitPorv, e.ActiveIndex, e.GlobalIndex, e.X, e.Y, e.Z)
}

// InsufficientSamplesError is returned when the pore volume check could
// not find enough cells with a positive initial pore volume.
type InsufficientSamplesError struct {
	Valid, Wanted, Draws int
}

func (e *InsufficientSamplesError) Error() string {
	return fmt.Sprintf("tlgrav: pore volume check found %d of %d cells with positive initial pore volume after %d draws",
		e.Valid, e.Wanted, e.Draws)
}

// IsDataQuality returns whether err reports a data quality problem
// that a caller may choose to treat as a warning.
func IsDataQuality(err error) bool {
	var pe *PorvError
	var se *InsufficientSamplesError
	return errors.As(err, &pe) || errors.As(err, &se)
}

// PreconditionError reports a violated call contract.
type PreconditionError struct {
	Op  string
	Msg string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("tlgrav: %s: %s", e.Op, e.Msg)
}
