/*
 * timecorr_test.go, part of micelle.
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

package chemstat

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

// directACF is the straightforward O(n^2) normalized autocorrelation.
func directACF(x []float64) []float64 {
	n := len(x)
	var mean float64
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)
	ret := make([]float64, n)
	for k := 0; k < n; k++ {
		for t := 0; t+k < n; t++ {
			ret[k] += (x[t] - mean) * (x[t+k] - mean)
		}
	}
	zero := ret[0]
	for i := range ret {
		ret[i] /= zero
	}
	return ret
}

func TestAutoCorrelation(Te *testing.T) {
	alt := []float64{1, -1, 1, -1}
	acf := AutoCorrelation(alt)
	if !floats.EqualApprox(acf, []float64{1, -0.75, 0.5, -0.25}, 1e-9) {
		Te.Errorf("wrong autocorrelation for an alternating series: %v", acf)
	}
	if l := DecorrelationLag(acf); l != 1 {
		Te.Errorf("expected decorrelation at lag 1, got %d", l)
	}
	series := []float64{20.1, 20.3, 20.2, 19.8, 19.9, 20.5, 20.4, 20.0, 19.7, 20.2, 20.6}
	acf = AutoCorrelation(series)
	if !floats.EqualApprox(acf, directACF(series), 1e-9) {
		Te.Errorf("FFT and direct autocorrelations differ:\n%v\n%v", acf, directACF(series))
	}
	flat := AutoCorrelation([]float64{3, 3, 3})
	if !floats.Equal(flat, []float64{1, 0, 0}) {
		Te.Errorf("wrong autocorrelation for a constant series: %v", flat)
	}
	//a constant computed in floating point, like the Rg of a rigid body.
	r := math.Sqrt(3)
	noisy := AutoCorrelation([]float64{r, math.Nextafter(r, 2), r, math.Nextafter(r, 1), r})
	if !floats.Equal(noisy, []float64{1, 0, 0, 0, 0}) {
		Te.Errorf("wrong autocorrelation for a series with only rounding noise: %v", noisy)
	}
	if one := AutoCorrelation([]float64{2}); !floats.Equal(one, []float64{1}) {
		Te.Errorf("wrong autocorrelation for a single value: %v", one)
	}
	if DecorrelationLag([]float64{1, 0.9, 0.8}) != -1 {
		Te.Error("a series that never decorrelates should give -1")
	}
	if len(AutoCorrelation(nil)) != 0 {
		Te.Error("an empty series should give an empty function")
	}
}
