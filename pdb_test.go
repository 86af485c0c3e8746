/*
 * pdb_test.go, part of micelle.
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
	"os"
	"path/filepath"
	"strings"
	"testing"

	v3 "github.com/rmera/micelle/v3"
	"gonum.org/v1/gonum/floats"
)

const twoModels = `REMARK     TEST
CRYST1   30.000   40.000   50.000  90.00  90.00  90.00 P 1           1
MODEL        1
ATOM      1  N   ALA A   1       1.000   2.000   3.000  1.00 10.50           N
ATOM      2  CA  ALA A   1       2.500  -1.250   0.000  1.00  0.00           C
HETATM    3  C1  C12 B   2      -3.000   4.000   5.500  0.50  0.00            
HETATM    4  OW  SOL B   3       0.000   0.000   0.000  1.00  0.00           O
ENDMDL
MODEL        2
ATOM      1  N   ALA A   1       2.000   2.000   3.000  1.00 10.50           N
ATOM      2  CA  ALA A   1       3.500  -1.250   0.000  1.00  0.00           C
HETATM    3  C1  C12 B   2      -2.000   4.000   5.500  0.50  0.00            
HETATM    4  OW  SOL B   3       1.000   0.000   0.000  1.00  0.00           O
ENDMDL
END
`

func TestPDBRead(Te *testing.T) {
	mol, err := PDBRead(strings.NewReader(twoModels))
	if err != nil {
		Te.Fatal(err)
	}
	if mol.Len() != 4 || mol.NFrames() != 2 {
		Te.Fatalf("expected 4 atoms and 2 models, got %d and %d", mol.Len(), mol.NFrames())
	}
	at := mol.Atom(2)
	if at.Name != "C1" || at.Molname != "C12" || at.Chain != "B" || at.MolID != 2 || !at.Het {
		Te.Errorf("wrong atom read: %v", at)
	}
	//No element column for this atom, so it must be guessed.
	if at.Symbol != "C" {
		Te.Errorf("wrong symbol guessed: %s", at.Symbol)
	}
	if at.Occupancy != 0.5 {
		Te.Errorf("wrong occupancy %f", at.Occupancy)
	}
	if mol.Atom(3).Symbol != "O" {
		Te.Errorf("wrong symbol from the element column: %s", mol.Atom(3).Symbol)
	}
	if mol.Bfactors[0][0] != 10.5 {
		Te.Errorf("wrong b-factor %f", mol.Bfactors[0][0])
	}
	if !floats.EqualApprox(mol.Coords[1].RawRowView(1), []float64{3.5, -1.25, 0}, 1e-9) {
		Te.Errorf("wrong coordinates in the second model: %v", mol.Coords[1])
	}
	p, ok := BoxParameters(mol.Box)
	if !ok || !floats.EqualApprox(p[:], []float64{30, 40, 50, 90, 90, 90}, 1e-6) {
		Te.Errorf("wrong box read: %v", p)
	}
}

func TestPDBReadErrors(Te *testing.T) {
	if _, err := PDBRead(strings.NewReader("REMARK nothing here\nEND\n")); err == nil {
		Te.Error("expected an error for a PDB without atoms")
	}
	lines := strings.Split(twoModels, "\n")
	//drop the last atom of the second model
	broken := strings.Join(append(lines[:len(lines)-4:len(lines)-4], lines[len(lines)-3:]...), "\n")
	if _, err := PDBRead(strings.NewReader(broken)); err == nil {
		Te.Error("expected an error for models of different sizes")
	}
}

func TestMoleculeAsTraj(Te *testing.T) {
	mol, err := PDBRead(strings.NewReader(twoModels))
	if err != nil {
		Te.Fatal(err)
	}
	coords := v3.Zeros(mol.Len())
	box := make([]float64, 9)
	read := 0
	for mol.Readable() {
		err := mol.Next(coords, box)
		if err != nil {
			Te.Fatal(err)
		}
		read++
	}
	if read != 2 {
		Te.Errorf("expected 2 frames, read %d", read)
	}
	err = mol.Next(coords)
	if _, ok := err.(LastFrameError); !ok {
		Te.Errorf("expected a LastFrameError, got %v", err)
	}
	if coords.At(0, 0) != 2 || box[4] != 40 {
		Te.Errorf("wrong last frame: %v %v", coords, box)
	}
	if mol.Readable() {
		Te.Error("molecule should not be readable after its last frame")
	}
}

func TestPDBWriter(Te *testing.T) {
	mol, err := PDBRead(strings.NewReader(twoModels))
	if err != nil {
		Te.Fatal(err)
	}
	name := filepath.Join(Te.TempDir(), "out.pdb")
	w, err := NewPDBWriter(name, mol)
	if err != nil {
		Te.Fatal(err)
	}
	for i, c := range mol.Coords {
		if i == 0 {
			err = w.WNext(c, mol.Box)
		} else {
			err = w.WNext(c)
		}
		if err != nil {
			Te.Fatal(err)
		}
	}
	if err = w.WNext(v3.Zeros(3)); err == nil {
		Te.Error("expected an error for a frame with the wrong number of atoms")
	}
	if err = w.Close(); err != nil {
		Te.Fatal(err)
	}
	if w.Models() != 2 {
		Te.Errorf("expected 2 models written, got %d", w.Models())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		Te.Fatal(err)
	}
	text := string(data)
	for _, s := range []string{"MODEL        1\n", "MODEL        2\n", "ENDMDL\n", "TER\n", "CRYST1   30.000   40.000   50.000  90.00  90.00  90.00"} {
		if !strings.Contains(text, s) {
			Te.Errorf("%q missing from the written file", s)
		}
	}
	if !strings.HasSuffix(text, "END\n") || strings.Count(text, "MODEL ") != 2 {
		Te.Errorf("wrong file structure:\n%s", text)
	}
	mol2, err := PDBFileRead(name)
	if err != nil {
		Te.Fatal(err)
	}
	if mol2.NFrames() != 2 || mol2.Len() != mol.Len() {
		Te.Fatalf("wrong re-read molecule: %d frames %d atoms", mol2.NFrames(), mol2.Len())
	}
	for i := range mol.Coords {
		if !floats.EqualApprox(mol.Coords[i].RawMatrix().Data, mol2.Coords[i].RawMatrix().Data, 1e-3) {
			Te.Errorf("frame %d differs after writing and reading: %v %v", i, mol.Coords[i], mol2.Coords[i])
		}
	}
	if mol2.Atom(3).Name != "OW" || mol2.Atom(3).Molname != "SOL" || mol2.Atom(2).Chain != "B" {
		Te.Errorf("atom info lost: %v %v", mol2.Atom(3), mol2.Atom(2))
	}
}

func TestPDBAtomLineWraps(Te *testing.T) {
	at := &Atom{Name: "HB12", ID: 123456, Molname: "C12", MolID: 12345, Chain: "A", Symbol: "H"}
	l := pdbAtomLine(at, []float64{1, 2, 3}, 12.5)
	if l[6:11] != "23456" || l[22:26] != "2345" || l[12:16] != "HB12" {
		Te.Errorf("wrong columns in %q", l)
	}
	if l[16:17] != " " || l[17:21] != "C12 " || l[21:22] != "A" || l[60:66] != " 12.50" {
		Te.Errorf("wrong residue, chain or b-factor columns in %q", l)
	}
}

const charmmWater = `ATOM      1  OH2 TIP3W   1       1.000   2.000   3.000  1.00  7.25      WT1  O
HETATM    2  C1  C12 A   2      -3.000   4.000   5.500  1.00  0.50            
END
`

func TestFourLetterResidues(Te *testing.T) {
	mol, err := PDBRead(strings.NewReader(charmmWater))
	if err != nil {
		Te.Fatal(err)
	}
	w := mol.Atom(0)
	if w.Molname != "TIP3" || w.Chain != "W" || !IsWater(w.Molname) {
		Te.Errorf("wrong CHARMM water read: %q chain %q", w.Molname, w.Chain)
	}
	for sel, want := range map[string]int{"not water": 1, "resname TIP3": 0, "chain W": 0} {
		got, err := Select(mol, sel)
		if err != nil {
			Te.Fatal(err)
		}
		if len(got) != 1 || got[0] != want {
			Te.Errorf("selection %q: got %v, want [%d]", sel, got, want)
		}
	}
	name := filepath.Join(Te.TempDir(), "tip3.pdb")
	pw, err := NewPDBWriter(name, mol)
	if err != nil {
		Te.Fatal(err)
	}
	if err := pw.SetBfactors([]float64{1}); err == nil {
		Te.Error("expected an error for b-factors of the wrong length")
	}
	if err := pw.SetBfactors(mol.Bfactors[0]); err != nil {
		Te.Fatal(err)
	}
	if err := pw.WNext(mol.Coords[0]); err != nil {
		Te.Fatal(err)
	}
	if err := pw.Close(); err != nil {
		Te.Fatal(err)
	}
	mol2, err := PDBFileRead(name)
	if err != nil {
		Te.Fatal(err)
	}
	if mol2.Atom(0).Molname != "TIP3" || mol2.Atom(0).Chain != "W" || mol2.Atom(1).Molname != "C12" {
		Te.Errorf("residue names changed when writing: %q %q %q", mol2.Atom(0).Molname, mol2.Atom(0).Chain, mol2.Atom(1).Molname)
	}
	if !floats.Equal(mol2.Bfactors[0], []float64{7.25, 0.5}) {
		Te.Errorf("b-factors not written: %v", mol2.Bfactors[0])
	}
}

func TestSelect(Te *testing.T) {
	mol, err := PDBRead(strings.NewReader(twoModels))
	if err != nil {
		Te.Fatal(err)
	}
	cases := []struct {
		sel  string
		want []int
	}{
		{"", []int{0, 1, 2, 3}},
		{"all", []int{0, 1, 2, 3}},
		{"protein", []int{0, 1}},
		{"not water", []int{0, 1, 2}},
		{"resname C12 SOL", []int{2, 3}},
		{"name CA", []int{1}},
		{"chain B", []int{2, 3}},
		{"resname XYZ", []int{}},
	}
	for _, c := range cases {
		got, err := Select(mol, c.sel)
		if err != nil {
			Te.Errorf("selection %q: %v", c.sel, err)
			continue
		}
		if len(got) != len(c.want) {
			Te.Errorf("selection %q: got %v want %v", c.sel, got, c.want)
			continue
		}
		for i := range got {
			if got[i] != c.want[i] {
				Te.Errorf("selection %q: got %v want %v", c.sel, got, c.want)
				break
			}
		}
	}
	for _, bad := range []string{"backbone", "name", "not protein"} {
		if _, err := Select(mol, bad); err == nil {
			Te.Errorf("expected an error for selection %q", bad)
		}
	}
}

func TestBoxRoundTrip(Te *testing.T) {
	p := [6]float64{20, 30, 40, 80, 95, 110}
	got, ok := BoxParameters(BoxVectors(p))
	if !ok || !floats.EqualApprox(got[:], p[:], 1e-9) {
		Te.Errorf("box parameters changed: %v %v", p, got)
	}
	if _, ok := BoxParameters(make([]float64, 9)); ok {
		Te.Error("a zero box should not be valid")
	}
}
