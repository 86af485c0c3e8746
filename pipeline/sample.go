/*
 * sample.go, part of micelle.
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

package pipeline

import "fmt"

// Indices returns the frame indices 0, stride, 2*stride... smaller than n,
// in ascending order. It panics if stride < 1.
func Indices(n, stride int) []int {
	if stride < 1 {
		panic(fmt.Sprintf("pipeline.Indices: invalid stride %d", stride))
	}
	if n <= 0 {
		return []int{}
	}
	ret := make([]int, 0, (n+stride-1)/stride)
	for i := 0; i < n; i += stride {
		ret = append(ret, i)
	}
	return ret
}

// Sampler selects frames with a stride when the length of the trajectory is
// not known in advance. It keeps the same frames as Indices.
type Sampler struct {
	stride int
}

// NewSampler returns a sampler for the given stride. It panics if stride < 1.
func NewSampler(stride int) *Sampler {
	if stride < 1 {
		panic(fmt.Sprintf("pipeline.NewSampler: invalid stride %d", stride))
	}
	return &Sampler{stride: stride}
}

// Keep returns true if the frame with index i is to be kept.
func (S *Sampler) Keep(i int) bool {
	return i >= 0 && i%S.stride == 0
}

// Stride returns the stride of the sampler.
func (S *Sampler) Stride() int {
	return S.stride
}
