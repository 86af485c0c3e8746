/*
 * atom.go, part of micelle.
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

import "fmt"

//Many functions here panic instead of returning errors. This is because they are "fundamental"
//functions. If something goes wrong here, the program is most likely wrong and should
//crash. Most panics are related to using the function on a nil object or trying to access out-of bounds
//fields

// Atom contains the information read for an atom, except for the coordinates, which will be in a matrix
// and the b-factors, which are in a separate slice of float64.
type Atom struct {
	Name      string  //PDB name of the atom
	ID        int     //The PDB index of the atom
	Molname   string  //PDB name of the residue or molecule (up to 4 characters)
	MolID     int     //PDB index of the corresponding residue or molecule
	Chain     string  //One-character PDB name for a chain.
	Occupancy float64 //a PDB crystallographic field, often used to store values of interest.
	Symbol    string
	Het       bool // is the atom an hetatm in the pdb file? (if applicable)
}

func (N *Atom) String() string {
	return fmt.Sprintf("%s %d %s%d %s", N.Name, N.ID, N.Molname, N.MolID, N.Chain)
}

/*****Topology type***/

// Topology contains information about a molecule which is not expected to change in time (i.e. everything except for coordinates and b-factors)
type Topology struct {
	Atoms []*Atom
}

// NewTopology returns a topology with the given atoms. The slice is not copied.
func NewTopology(ats []*Atom) (*Topology, error) {
	if ats == nil {
		return nil, CError{"Supplied a nil atom slice", []string{"NewTopology"}}
	}
	return &Topology{Atoms: ats}, nil
}

// Atom returns the Atom corresponding to the index i
// of the Atom slice in the Topology. Panics if
// out of range.
func (T *Topology) Atom(i int) *Atom {
	if i < 0 || i >= T.Len() {
		panic(ErrAtomOutOfRange)
	}
	return T.Atoms[i]
}

// Len returns the number of atoms in the topology.
func (T *Topology) Len() int {
	return len(T.Atoms)
}

// SomeAtoms returns a new topology with the atoms in the positions
// given by atomlist, in the same order. The atoms themselves are not copied,
// so changes to them affect the original topology.
func (T *Topology) SomeAtoms(atomlist []int) (*Topology, error) {
	ret := make([]*Atom, 0, len(atomlist))
	lenatoms := T.Len()
	for k, j := range atomlist {
		if j < 0 || j > lenatoms-1 {
			return nil, CError{fmt.Sprintf("Atom requested (Number: %d, value: %d) out of range", k, j), []string{"SomeAtoms"}}
		}
		ret = append(ret, T.Atoms[j])
	}
	return &Topology{Atoms: ret}, nil
}
