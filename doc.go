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


// Package tlgrav calculates time-lapse gravity responses from reservoir
// simulation output.
//
// A Grav engine is built from a simulation grid and an initialization
// dataset. Surveys are added to it from restart datasets using one of
// the fluid mass methods FIP, RFIP, RPORV, or PORMOD, and the change in
// vertical gravity between two surveys is evaluated at observation
// stations. Gravity changes are in µGal; lengths are in meters with z
// increasing downwards; masses are in kg.
package tlgrav

// Version gives the version number.
const Version = "1.0.0"
