/*
 * pdb.go, part of micelle.
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
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/micelle/v3"
)

// Parses a valid ATOM or HETATM line of a PDB file, returns an Atom
// object with the info except for the coordinates and b-factors, which  are returned
// separately as an array of 3 float64 and a float64, respectively
func readFullPDBLine(line string, contlines int) (*Atom, []float64, float64, error) {
	atom := new(Atom)
	atom.Het = strings.HasPrefix(line, "HETATM")
	var err error
	atom.ID, err = strconv.Atoi(strings.TrimSpace(line[6:11]))
	if err != nil {
		return nil, nil, 0, CError{fmt.Sprintf("Can't read atom serial in line %d: %s", contlines, err.Error()), []string{"readFullPDBLine"}}
	}
	atom.Name = strings.TrimSpace(line[12:16])
	//PDB says that pos. 21 is for other thing but CHARMM
	//uses it for 4-letter residue names (TIP3, POPC)
	atom.Molname = strings.TrimSpace(line[17:21])
	atom.Chain = strings.TrimSpace(line[21:22])
	atom.MolID, err = strconv.Atoi(strings.TrimSpace(line[22:26]))
	if err != nil {
		return nil, nil, 0, CError{fmt.Sprintf("Can't read residue ID in line %d: %s", contlines, err.Error()), []string{"readFullPDBLine"}}
	}
	coords, bfactor, err := readOnlyCoordsPDBLine(line, contlines)
	if err != nil {
		return nil, nil, 0, errDecorate(err, "readFullPDBLine")
	}
	if len(line) >= 60 {
		//not all programs write the occupancy, so errors are ignored here.
		atom.Occupancy, _ = strconv.ParseFloat(strings.TrimSpace(line[54:60]), 64)
	}
	if len(line) >= 78 {
		//element columns are upper case ("CL"), symbols are stored as "Cl".
		if s := strings.TrimSpace(line[76:78]); s != "" {
			atom.Symbol = strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
		}
	}
	//This part tries to guess the symbol from the atom name, if it has not been read
	if atom.Symbol == "" {
		atom.Symbol = symbolFromName(atom.Name)
	}
	return atom, coords, bfactor, nil
}

// Parses a PDB line if only the coordinates and bfactors are to be read.
// A missing b-factor column is read as zero.
func readOnlyCoordsPDBLine(line string, contlines int) ([]float64, float64, error) {
	coords := make([]float64, 3)
	var err error
	for i := range coords {
		coords[i], err = strconv.ParseFloat(strings.TrimSpace(line[30+8*i:38+8*i]), 64)
		if err != nil {
			return nil, 0, CError{fmt.Sprintf("Can't read coordinates in line %d: %s", contlines, err.Error()), []string{"readOnlyCoordsPDBLine"}}
		}
	}
	var bfactor float64
	if len(line) >= 66 {
		bfactor, _ = strconv.ParseFloat(strings.TrimSpace(line[60:66]), 64)
	}
	return coords, bfactor, nil
}

// PDBFileRead reads the file with name pdbname and returns a Molecule with
// one coordinate set per model in the file. Models after the first need
// to contain the same atoms, in the same order, as the first.
func PDBFileRead(pdbname string) (*Molecule, error) {
	pdbfile, err := os.Open(pdbname)
	if err != nil {
		return nil, CError{err.Error(), []string{"os.Open", "PDBFileRead"}}
	}
	defer pdbfile.Close()
	mol, err := PDBRead(pdbfile)
	if err != nil {
		return nil, errDecorate(err, "PDBFileRead "+pdbname)
	}
	mol.source = pdbname
	return mol, nil
}

// PDBRead reads the atomic entries for a PDB file from the io.Reader, and
// returns a Molecule. Only the atoms of the first model are read into the topology,
// later models only contribute coordinates and b-factors.
func PDBRead(pdb io.Reader) (*Molecule, error) {
	atoms := make([]*Atom, 0)
	coords := [][]float64{make([]float64, 0)}
	bfactors := [][]float64{make([]float64, 0)}
	firstModel := true //are we reading the first model? if not we only save coordinates
	endmdl := false
	var box []float64
	scanner := bufio.NewScanner(pdb)
	contlines := 0 //count the lines read to better report errors
	for scanner.Scan() {
		line := scanner.Text()
		contlines++
		switch {
		case strings.HasPrefix(line, "ATOM") || strings.HasPrefix(line, "HETATM"):
			if len(line) < 54 {
				return nil, CError{fmt.Sprintf("Line %d too short for an atom record", contlines), []string{"PDBRead"}}
			}
			if endmdl {
				//A MODEL record after ENDMDL is optional in some programs.
				coords = append(coords, make([]float64, 0))
				bfactors = append(bfactors, make([]float64, 0))
				firstModel = false
				endmdl = false
			}
			var c []float64
			var bfac float64
			var err error
			if !firstModel {
				c, bfac, err = readOnlyCoordsPDBLine(line, contlines)
			} else {
				var atom *Atom
				atom, c, bfac, err = readFullPDBLine(line, contlines)
				if err == nil {
					atoms = append(atoms, atom)
				}
			}
			if err != nil {
				return nil, errDecorate(err, "PDBRead")
			}
			last := len(coords) - 1
			coords[last] = append(coords[last], c...)
			bfactors[last] = append(bfactors[last], bfac)
		case strings.HasPrefix(line, "CRYST1") && box == nil:
			box = readCRYST1(line)
		case strings.HasPrefix(line, "ENDMDL"):
			endmdl = true
		case strings.HasPrefix(line, "MODEL"):
			endmdl = false
			if len(coords[len(coords)-1]) > 0 {
				firstModel = false
				coords = append(coords, make([]float64, 0))
				bfactors = append(bfactors, make([]float64, 0))
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, CError{err.Error(), []string{"bufio.Scanner.Scan", "PDBRead"}}
	}
	if len(atoms) == 0 {
		return nil, CError{"No atoms found in PDB data", []string{"PDBRead"}}
	}
	//a trailing empty model can come from a MODEL record with nothing after it.
	if len(coords[len(coords)-1]) == 0 {
		coords = coords[:len(coords)-1]
		bfactors = bfactors[:len(bfactors)-1]
	}
	mcoords := make([]*v3.Matrix, len(coords))
	for i, c := range coords {
		if len(c) != 3*len(atoms) {
			return nil, CError{fmt.Sprintf("Model %d has %d atoms, the first has %d", i+1, len(c)/3, len(atoms)), []string{"PDBRead"}}
		}
		m, err := v3.NewMatrix(c)
		if err != nil {
			return nil, errDecorate(err, "PDBRead")
		}
		mcoords[i] = m
	}
	top, _ := NewTopology(atoms)
	mol, err := NewMolecule(mcoords, top, bfactors)
	if err != nil {
		return nil, errDecorate(err, "PDBRead")
	}
	mol.Box = box
	return mol, nil
}

// readCRYST1 returns the box vectors from a CRYST1 line, or nil if the line
// can't be parsed. A missing box is not an error.
func readCRYST1(line string) []float64 {
	if len(line) < 54 {
		return nil
	}
	var p [6]float64
	fields := []string{line[6:15], line[15:24], line[24:33], line[33:40], line[40:47], line[47:54]}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil
		}
		p[i] = v
	}
	//some programs write a 1 A cubic cell when there is no box.
	if p[0] <= 1 || p[1] <= 1 || p[2] <= 1 {
		return nil
	}
	return BoxVectors(p)
}
