/*
 * box.go, part of micelle.
 *
 * Copyright 2024 Raul Mera <rauldotmeraatusachdotcl>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chem

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Periodic boxes are passed around as 9 float64, the 3 box vectors
// a, b and c one after the other, in A.

// BoxParameters returns the lengths of the box vectors (a, b, c, in A) and the
// angles between them (alpha between b and c, beta between a and c, gamma
// between a and b, in degrees). It returns false if box doesn't contain
// a valid box, i.e. if it is too short or any vector has zero length.
func BoxParameters(box []float64) ([6]float64, bool) {
	var ret [6]float64
	if len(box) < 9 {
		return ret, false
	}
	a, b, c := box[0:3], box[3:6], box[6:9]
	ret[0], ret[1], ret[2] = norm(a), norm(b), norm(c)
	if ret[0] == 0 || ret[1] == 0 || ret[2] == 0 {
		return ret, false
	}
	ret[3] = angle(b, c, ret[1], ret[2])
	ret[4] = angle(a, c, ret[0], ret[2])
	ret[5] = angle(a, b, ret[0], ret[1])
	return ret, true
}

// BoxVectors is the inverse of BoxParameters. The a vector is put along x,
// and b in the xy plane.
func BoxVectors(params [6]float64) []float64 {
	la, lb, lc := params[0], params[1], params[2]
	ca := math.Cos(params[3] * math.Pi / 180)
	cb := math.Cos(params[4] * math.Pi / 180)
	cg := math.Cos(params[5] * math.Pi / 180)
	sg := math.Sin(params[5] * math.Pi / 180)
	box := make([]float64, 9)
	box[0] = la
	box[3] = lb * cg
	box[4] = lb * sg
	box[6] = lc * cb
	if sg != 0 {
		box[7] = lc * (ca - cb*cg) / sg
	}
	box[8] = math.Sqrt(math.Max(lc*lc-box[6]*box[6]-box[7]*box[7], 0))
	return box
}

func norm(v []float64) float64 {
	return floats.Norm(v, 2)
}

func angle(u, v []float64, nu, nv float64) float64 {
	cos := floats.Dot(u, v) / (nu * nv)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}
