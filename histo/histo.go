/*
 * histo.go, part of micelle.
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

// Package histo implements simple 1D histograms over gonum's stat.Histogram.
package histo

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Data is a histogram. A value v falls in the bin i if
// dividers[i] <= v < dividers[i+1]. Values outside the dividers are
// not counted.
type Data struct {
	total    int
	dividers []float64
	histo    []float64
}

// EvenDividers returns the dividers for nbins bins of equal width spanning
// min to max, both included. Panics if nbins < 1.
func EvenDividers(min, max float64, nbins int) []float64 {
	if nbins < 1 {
		panic("histo.EvenDividers: at least one bin is needed")
	}
	if max <= min {
		max = min + 1
	}
	d := floats.Span(make([]float64, nbins+1), min, max)
	//so max itself falls in the last bin.
	d[nbins] = math.Nextafter(max, math.Inf(1))
	return d
}

// NewData returns a new histogram of rawdata over the dividers given.
// rawdata can be nil. In that case, an empty histogram is created.
// rawdata is not modified.
func NewData(dividers []float64, rawdata []float64) *Data {
	if len(dividers) < 2 || !sort.Float64sAreSorted(dividers) {
		panic("histo.NewData: at least 2 sorted dividers are needed")
	}
	d := new(Data)
	//I prefer to copy the slice to avoid somebody changing it from outside
	d.dividers = slices.Clone(dividers)
	d.histo = make([]float64, len(dividers)-1)
	if rawdata != nil {
		d.fill(rawdata)
	}
	return d
}

// Total returns the number of data points in the histogram.
func (D *Data) Total() int {
	return D.total
}

// fill replaces the content of the histogram with a histogram of rawdata.
func (D *Data) fill(rawdata []float64) {
	data := slices.Clone(rawdata)
	sort.Float64s(data)
	//stat.Histogram just panics instead of omitting the values that are off limits
	//so we remove them here before the call.
	maxi := sort.SearchFloat64s(data, D.dividers[len(D.dividers)-1])
	data = data[:maxi]
	mini := sort.SearchFloat64s(data, D.dividers[0])
	data = data[mini:]
	D.total = len(data)
	D.histo = stat.Histogram(nil, D.dividers, data, nil)
}

// String prints a -hopefully- pretty string representation of
// the histogram, one bin per line, with its count, its percentage of
// the total and a bar proportional to the count.
func (D *Data) String() string {
	ret := []string{fmt.Sprintf("TotalData: %d", D.total)}
	top := floats.Max(D.histo)
	for i, v := range D.histo {
		bar := 0
		if top > 0 {
			bar = int(math.Round(30 * v / top))
		}
		pct := 0.0
		if D.total > 0 {
			pct = 100 * v / float64(D.total)
		}
		ret = append(ret, fmt.Sprintf("%8.3f-%8.3f %6.0f %5.1f%% %s", D.dividers[i], D.dividers[i+1], v, pct, strings.Repeat("#", bar)))
	}
	return strings.Join(ret, "\n")
}
