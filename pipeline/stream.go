/*
 * stream.go, part of micelle.
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

import (
	"errors"
	"fmt"

	chem "github.com/rmera/micelle"
	"github.com/rmera/micelle/metrics"
	v3 "github.com/rmera/micelle/v3"
)

// Record is one sampled frame: the coordinates of the selected atoms,
// the box, if known, and the metrics computed for them.
type Record struct {
	Index   int        //index of the frame in the trajectory
	Coords  *v3.Matrix //coordinates of the selected atoms. Each record has its own.
	Box     []float64  //box vectors, or nil if the frame has no box
	Metrics metrics.Frame
}

// Stream reads a trajectory and produces a Record for each sampled frame,
// in order. It can only be read once. Use it like a bufio.Scanner:
//
//	for s.Scan() {
//		r := s.Record()
//	}
//	if err := s.Err(); err != nil {...}
type Stream struct {
	traj    chem.Traj
	sampler *Sampler
	sel     []int
	all     *v3.Matrix //buffer for the whole frame
	box     []float64
	index   int //index of the next frame to be read
	rec     *Record
	err     error
	done    bool
}

// NewStream returns a stream over the frames of traj kept by sampler, with the
// atoms in sel, which can't be empty.
func NewStream(traj chem.Traj, sel []int, sampler *Sampler) (*Stream, error) {
	if len(sel) == 0 {
		return nil, fmt.Errorf("no atoms selected")
	}
	for _, v := range sel {
		if v < 0 || v >= traj.Len() {
			return nil, fmt.Errorf("selected atom %d out of range for %d atoms", v, traj.Len())
		}
	}
	return &Stream{
		traj:    traj,
		sampler: sampler,
		sel:     sel,
		all:     v3.Zeros(traj.Len()),
		box:     make([]float64, 9),
	}, nil
}

// Scan advances the stream to the next sampled frame, which is then available through
// Record. It returns false when the trajectory ends or an error occurs.
func (S *Stream) Scan() bool {
	if S.done {
		return false
	}
	for {
		keep := S.sampler.Keep(S.index)
		var buf *v3.Matrix
		if keep {
			buf = S.all
		}
		clear(S.box)
		err := S.traj.Next(buf, S.box)
		if err != nil {
			S.done = true
			S.rec = nil
			var last chem.LastFrameError
			if !errors.As(err, &last) {
				S.err = fmt.Errorf("reading frame %d: %w", S.index, err)
			}
			return false
		}
		S.index++
		if !keep {
			continue
		}
		S.rec = S.record(S.index - 1)
		return true
	}
}

func (S *Stream) record(index int) *Record {
	r := &Record{Index: index, Coords: v3.Zeros(len(S.sel))}
	r.Coords.SomeVecs(S.all, S.sel)
	if _, ok := chem.BoxParameters(S.box); ok {
		r.Box = append([]float64(nil), S.box...)
	}
	t := float64(index)
	if timer, ok := S.traj.(chem.Timer); ok {
		if tt, ok := timer.Time(); ok {
			t = tt
		}
	}
	r.Metrics = metrics.Compute(r.Coords, t)
	return r
}

// Record returns the current record, or nil if Scan has not been called or
// returned false.
func (S *Stream) Record() *Record {
	return S.rec
}

// Err returns the first error found reading the trajectory. The normal end of the
// trajectory is not an error.
func (S *Stream) Err() error {
	return S.err
}

// Read returns the number of frames read so far, sampled or not.
func (S *Stream) Read() int {
	return S.index
}
