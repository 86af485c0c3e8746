/*
 * geometric.go, part of micelle.
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
	v3 "github.com/rmera/micelle/v3"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CenterOfGeometry returns the geometric center of the atoms represented by the coordinates in geometry,
// as a 1x3 matrix, and an error.
func CenterOfGeometry(geometry *v3.Matrix) (*v3.Matrix, error) {
	if geometry == nil || geometry.NVecs() == 0 {
		return nil, CError{"no coordinates to get the center of geometry", []string{"CenterOfGeometry"}}
	}
	gr := geometry.NVecs()
	ones := make([]float64, gr)
	floats.AddConst(1, ones)
	ref := v3.Zeros(1)
	ref.Mul(mat.NewDense(1, gr, ones), geometry)
	ref.Scale(1.0/float64(gr), ref)
	return ref, nil
}

// Centrate returns a copy of in translated so the geometric center of oref is at the origin,
// and the displacement vector.
func Centrate(in, oref *v3.Matrix) (*v3.Matrix, *v3.Matrix, error) {
	ref, err := CenterOfGeometry(oref)
	if err != nil {
		return nil, nil, errDecorate(err, "Centrate")
	}
	returned := v3.Zeros(in.NVecs())
	returned.SubVec(in, ref)
	return returned, ref, nil
}

// MomentTensor returns the second-moment tensor, sum_i (x_i-c)ᵀ(x_i-c), for
// the coordinates A around their geometric center c. Divided by the number of atoms,
// it is the gyration tensor.
func MomentTensor(A *v3.Matrix) (*mat.SymDense, error) {
	center, _, err := Centrate(A, A)
	if err != nil {
		return nil, errDecorate(err, "MomentTensor")
	}
	moment := mat.NewSymDense(3, nil)
	moment.SymOuterK(1, center.T())
	return moment, nil
}

// SortedEigenvalues returns the eigenvalues of the symmetric 3x3 tensor t,
// in ascending order, or an error if the decomposition fails.
func SortedEigenvalues(t mat.Symmetric) ([]float64, error) {
	var es mat.EigenSym
	if ok := es.Factorize(t, false); !ok {
		return nil, CError{"eigendecomposition failed", []string{"SortedEigenvalues"}}
	}
	return es.Values(nil), nil
}
