/*
 * metrics.go, part of micelle.
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

// Package metrics computes per-frame geometric descriptors of a set of atoms
// (center of geometry and radii of gyration) and collects them into a
// JSON time series.
package metrics

import (
	"math"

	chem "github.com/rmera/micelle"
	v3 "github.com/rmera/micelle/v3"
)

// Frame holds the metrics for one frame. Values are in A.
type Frame struct {
	Time      float64
	Center    [3]float64
	Rg        float64
	AxisRg    [3]float64 //square roots of the diagonal of the gyration tensor
	Principal [3]float64 //square roots of the eigenvalues of the gyration tensor, ascending
	Kappa2    float64    //relative shape anisotropy, between 0 (spherical) and 1 (linear)
}

// Compute returns the metrics for the positions in coords, with the given time.
// It panics if coords is nil or has no atoms.
func Compute(coords *v3.Matrix, time float64) Frame {
	if coords == nil {
		panic(chem.ErrNilData)
	}
	n := coords.NVecs()
	if n == 0 {
		panic(chem.ErrNilData)
	}
	center, err := chem.CenterOfGeometry(coords)
	if err != nil {
		panic(err.Error())
	}
	G, err := chem.MomentTensor(coords)
	if err != nil {
		panic(err.Error())
	}
	G.ScaleSym(1/float64(n), G)
	F := Frame{Time: time}
	trace := 0.0
	for i := 0; i < 3; i++ {
		F.Center[i] = center.At(0, i)
		d := G.At(i, i)
		trace += d
		//tiny negatives from floating point noise
		F.AxisRg[i] = math.Sqrt(math.Max(d, 0))
	}
	F.Rg = math.Sqrt(math.Max(trace, 0))
	evals, err := chem.SortedEigenvalues(G)
	if err != nil {
		//the metrics above don't need the eigenvalues.
		return F
	}
	for i, v := range evals {
		evals[i] = math.Max(v, 0)
		F.Principal[i] = math.Sqrt(evals[i])
	}
	F.Kappa2 = anisotropy(evals)
	return F
}

// anisotropy returns the relative shape anisotropy for the eigenvalues l of a gyration
// tensor, 1 - 3(l1l2+l2l3+l3l1)/(l1+l2+l3)^2, or 0 if all eigenvalues are 0.
func anisotropy(l []float64) float64 {
	s := l[0] + l[1] + l[2]
	if s <= 0 {
		return 0
	}
	k := 1 - 3*(l[0]*l[1]+l[1]*l[2]+l[2]*l[0])/(s*s)
	return math.Min(math.Max(k, 0), 1)
}
