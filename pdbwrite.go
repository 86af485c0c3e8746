/*
 * pdbwrite.go, part of micelle.
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
	"bufio"
	"fmt"
	"os"

	v3 "github.com/rmera/micelle/v3"
)

// PDBWriter writes a multi-model PDB file one model at a time. It implements
// TrajWriter, so it can be used wherever a trajectory is written.
// The output contains no timestamps, so the same frames always produce the same file.
type PDBWriter struct {
	f        *os.File
	w        *bufio.Writer
	top      Atomer
	bfactors []float64
	filename string
	models   int
	cryst    bool
	writable bool
}

// NewPDBWriter creates the file name and prepares it to receive frames with
// the atoms in top.
func NewPDBWriter(name string, top Atomer) (*PDBWriter, error) {
	if top == nil || top.Len() == 0 {
		return nil, CError{"No atoms to write", []string{"NewPDBWriter"}}
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, CError{err.Error(), []string{"os.Create", "NewPDBWriter"}}
	}
	P := &PDBWriter{f: f, w: bufio.NewWriter(f), top: top, filename: name, writable: true}
	if _, err = P.w.WriteString("REMARK     WRITTEN WITH MICELLE\n"); err != nil {
		f.Close()
		return nil, CError{err.Error(), []string{"NewPDBWriter"}}
	}
	return P, nil
}

// Len returns the number of atoms in each model.
func (P *PDBWriter) Len() int {
	return P.top.Len()
}

// SetBfactors sets the b-factors written for each atom, in every model.
// Without them, zeroes are written.
func (P *PDBWriter) SetBfactors(bfactors []float64) error {
	if len(bfactors) != P.top.Len() {
		return CError{fmt.Sprintf("%d b-factors given for %d atoms", len(bfactors), P.top.Len()), []string{"SetBfactors"}}
	}
	P.bfactors = append([]float64(nil), bfactors...)
	return nil
}

// Models returns the number of models written so far.
func (P *PDBWriter) Models() int {
	return P.models
}

// WNext writes coords as a new model. If a box is given with the first
// frame, a CRYST1 record is written before the first model.
func (P *PDBWriter) WNext(coords *v3.Matrix, box ...[]float64) error {
	if !P.writable {
		return CError{"Writer closed or not initialized", []string{"WNext"}}
	}
	if coords == nil {
		return CError{"Given nil coordinates", []string{"WNext"}}
	}
	if coords.NVecs() != P.top.Len() {
		return CError{fmt.Sprintf("%d coordinates given for %d atoms", coords.NVecs(), P.top.Len()), []string{"WNext"}}
	}
	if P.models == 0 && len(box) > 0 {
		if p, ok := BoxParameters(box[0]); ok {
			fmt.Fprintf(P.w, "CRYST1%9.3f%9.3f%9.3f%7.2f%7.2f%7.2f P 1           1\n", p[0], p[1], p[2], p[3], p[4], p[5])
			P.cryst = true
		}
	}
	P.models++
	fmt.Fprintf(P.w, "MODEL     %4d\n", P.models)
	chainprev := P.top.Atom(0).Chain //this is to know when the chain changes.
	for i := 0; i < P.top.Len(); i++ {
		at := P.top.Atom(i)
		if at.Chain != chainprev {
			fmt.Fprintln(P.w, "TER")
			chainprev = at.Chain
		}
		c := coords.RawRowView(i)
		bfac := 0.0
		if P.bfactors != nil {
			bfac = P.bfactors[i]
		}
		if _, err := P.w.WriteString(pdbAtomLine(at, c, bfac)); err != nil {
			return CError{err.Error(), []string{"WNext"}}
		}
	}
	if _, err := P.w.WriteString("ENDMDL\n"); err != nil {
		return CError{err.Error(), []string{"WNext"}}
	}
	return nil
}

// Close writes the END record and closes the file. After Close, the writer can't be used.
func (P *PDBWriter) Close() error {
	if !P.writable {
		return nil
	}
	P.writable = false
	P.w.WriteString("END\n")
	if err := P.w.Flush(); err != nil {
		P.f.Close()
		return CError{err.Error(), []string{"bufio.Writer.Flush", "Close"}}
	}
	if err := P.f.Close(); err != nil {
		return CError{err.Error(), []string{"os.File.Close", "Close"}}
	}
	return nil
}

// pdbAtomLine returns the ATOM/HETATM record for at with coordinates c and
// b-factor bfac. Serials and residue numbers wrap around when they don't fit their columns.
// The residue name starts at column 18 and can take up to 4 characters, as CHARMM does.
func pdbAtomLine(at *Atom, c []float64, bfac float64) string {
	first := "ATOM"
	if at.Het {
		first = "HETATM"
	}
	name := at.Name
	if len(name) > 4 {
		name = name[:4]
	}
	//4 chars for the atom name are used when hydrogens are included.
	if len(name) < 4 {
		name = " " + name
	}
	resname := at.Molname
	if len(resname) > 4 {
		resname = resname[:4]
	}
	chain := at.Chain
	if len(chain) > 1 {
		chain = chain[:1]
	}
	return fmt.Sprintf("%-6s%5d %-4s %-4s%1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s  \n", first, at.ID%100000, name, resname, chain,
		at.MolID%10000, c[0], c[1], c[2], at.Occupancy, bfac, at.Symbol)
}
