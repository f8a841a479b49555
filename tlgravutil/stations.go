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
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"github.com/ctessum/geom/proj"
)

// Station is a gravity observation point. Depth increases downwards, in
// the same convention as simulator cell depths.
type Station struct {
	geom.Point
	Name  string
	Depth float64

	// Observed is a measured gravity change in µGal, or NaN if there
	// is none.
	Observed float64
}

// stationRecord is a row of a station shapefile.
type stationRecord struct {
	geom.Geom
	Name     string
	Depth    float64
	Observed string
}

// ReadStations reads gravity stations from a point shapefile with the
// fields Name, Depth, and optionally Observed. If gridProj is not empty,
// the stations are reprojected from the shapefile's spatial reference
// to gridProj.
func ReadStations(filename, gridProj string) ([]Station, error) {
	f, err := shp.NewDecoder(strings.TrimSuffix(filename, ".shp") + ".shp")
	if err != nil {
		return nil, fmt.Errorf("tlgravutil: opening stations file %s: %v", filename, err)
	}
	defer f.Close()

	var trans proj.Transformer
	if gridProj != "" {
		gridSR, err := proj.Parse(gridProj)
		if err != nil {
			return nil, fmt.Errorf("tlgravutil: parsing GridProj: %v", err)
		}
		sr, err := f.SR()
		if err != nil {
			return nil, fmt.Errorf("tlgravutil: reading the projection of stations file %s: %v", filename, err)
		}
		if trans, err = sr.NewTransform(gridSR); err != nil {
			return nil, fmt.Errorf("tlgravutil: creating station reprojector: %v", err)
		}
	}

	var stations []Station
	for {
		var rec stationRecord
		if !f.DecodeRow(&rec) {
			break
		}
		g := rec.Geom
		if trans != nil {
			if g, err = g.Transform(trans); err != nil {
				return nil, fmt.Errorf("tlgravutil: reprojecting station %s: %v", rec.Name, err)
			}
		}
		p, ok := g.(geom.Point)
		if !ok {
			return nil, fmt.Errorf("tlgravutil: station %s has geometry type %T; want a point", rec.Name, g)
		}
		stations = append(stations, Station{
			Point:    p,
			Name:     rec.Name,
			Depth:    rec.Depth,
			Observed: parseObserved(rec.Observed),
		})
	}
	if err := f.Error(); err != nil {
		return nil, fmt.Errorf("tlgravutil: reading stations file %s: %v", filename, err)
	}
	return stations, nil
}

func parseObserved(s string) float64 {
	var v float64
	if _, err := fmt.Sscan(strings.Trim(s, "\x00 "), &v); err != nil {
		return math.NaN()
	}
	return v
}
