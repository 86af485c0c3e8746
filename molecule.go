/*
 * molecule.go, part of micelle.
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
	"fmt"

	v3 "github.com/rmera/micelle/v3"
)

/**Type Molecule**/

// Molecule contains all the info for a molecule in many states. The info that is expected to change between states,
// Coordinates and b-factors are stored separately from other atomic info.
type Molecule struct {
	*Topology
	Coords   []*v3.Matrix
	Bfactors [][]float64
	Box      []float64 //the unit cell of the structure, if known, as 3 box vectors.
	current  int
	source   string
}

// NewMolecule makes a molecule with ats atoms, coords coordinates, bfactors b-factors
// and returns it. It returns error if one of the slices is nil or if they are not consistent.
// bfactors can be nil, in which case zeroes are used.
func NewMolecule(coords []*v3.Matrix, ats Atomer, bfactors [][]float64) (*Molecule, error) {
	if ats == nil {
		return nil, CError{"Supplied a nil topology", []string{"NewMolecule"}}
	}
	if len(coords) == 0 {
		return nil, CError{"Supplied no coordinates", []string{"NewMolecule"}}
	}
	mol := new(Molecule)
	if top, ok := ats.(*Topology); ok {
		mol.Topology = top
	} else {
		atoms := make([]*Atom, ats.Len())
		for i := range atoms {
			atoms[i] = ats.Atom(i)
		}
		mol.Topology = &Topology{Atoms: atoms}
	}
	mol.Coords = coords
	mol.Bfactors = bfactors
	if err := mol.Corrupted(); err != nil {
		return nil, errDecorate(err, "NewMolecule")
	}
	return mol, nil
}

// Corrupted checks whether the molecule is corrupted, i.e. the
// coordinates don't match the number of atoms. Missing b-factors are
// filled with zeroes instead of causing an error.
func (M *Molecule) Corrupted() error {
	for i, c := range M.Coords {
		if c == nil || c.NVecs() != M.Len() {
			return CError{fmt.Sprintf("Inconsistent coordinates/atoms in frame %d: Atoms %d", i, M.Len()), []string{"Corrupted"}}
		}
		if len(M.Bfactors) <= i {
			M.Bfactors = append(M.Bfactors, make([]float64, M.Len()))
		} else if len(M.Bfactors[i]) < M.Len() {
			M.Bfactors[i] = make([]float64, M.Len())
		}
	}
	return nil
}

// NFrames returns the number of frames in the molecule
func (M *Molecule) NFrames() int {
	return len(M.Coords)
}

/******************************************
//The following implement the Traj interface
**********************************************/

// Readable returns true if the molecule has frames left to be read as a trajectory.
func (M *Molecule) Readable() bool {
	return M != nil && M.current < len(M.Coords)
}

// Next puts the next frame of the molecule in next. If next is nil
// the frame is skipped. If box is given and the molecule has a unit cell, the
// cell vectors are copied into box[0].
func (M *Molecule) Next(next *v3.Matrix, box ...[]float64) error {
	if M.current >= len(M.Coords) {
		return newlastFrameError(M.source, "Next")
	}
	M.current++
	if len(box) > 0 && len(box[0]) >= 9 && M.Box != nil {
		copy(box[0], M.Box)
	}
	if next == nil {
		return nil
	}
	if next.NVecs() != M.Len() {
		return CError{fmt.Sprintf("Matrix of %d vectors given for %d atoms", next.NVecs(), M.Len()), []string{"Next"}}
	}
	next.Copy(M.Coords[M.current-1])
	return nil
}

/**End Traj interface implementation***********/
