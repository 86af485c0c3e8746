/*
 * timecorr.go, part of micelle.
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

// Package chemstat contains time-series statistics for properties
// computed along a trajectory.
package chemstat

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

//series with a variance below constTol times their squared mean are taken as constant.
const constTol = 1e-12

//cmplxMulConj puts in each element of dst its product with the conjugate of the
//corresponding element of b.
func cmplxMulConj(dst, b []complex128) {
	if len(dst) != len(b) {
		panic("chemstat: complex conjugate multiplication of slices of different lengths")
	}
	for i, v := range b {
		dst[i] *= cmplx.Conj(v)
	}
}

// AutoCorrelation returns the normalized autocorrelation function of the
// series, for lags 0 to len(series)-1, so the value at lag 0 is 1.
// The series is zero-padded to twice its length before the FFT, so the
// correlation is not circular. A constant series has no fluctuations to
// correlate: the function is 1 at lag 0 and 0 at every other lag. Series that
// differ from a constant only by rounding errors are taken as constant.
func AutoCorrelation(series []float64) []float64 {
	n := len(series)
	ret := make([]float64, n)
	if n == 0 {
		return ret
	}
	mean, variance := stat.MeanVariance(series, nil)
	if n == 1 || math.IsNaN(variance) || variance <= constTol*mean*mean {
		ret[0] = 1
		return ret
	}
	pad := make([]complex128, 2*n)
	for i, v := range series {
		pad[i] = complex(v-mean, 0)
	}
	f := fourier.NewCmplxFFT(len(pad))
	coeff := f.Coefficients(nil, pad)
	cmplxMulConj(coeff, coeff)
	seq := f.Sequence(nil, coeff)
	zero := real(seq[0])
	if zero <= 0 || math.IsNaN(zero) {
		ret[0] = 1
		return ret
	}
	for i := range ret {
		ret[i] = real(seq[i]) / zero
	}
	ret[0] = 1
	return ret
}

// DecorrelationLag returns the first lag at which the normalized
// correlation function acf drops below 1/e, or -1 if it never does.
func DecorrelationLag(acf []float64) int {
	for i, v := range acf {
		if v < 1/math.E {
			return i
		}
	}
	return -1
}
