/*
 * atomicdata.go, part of micelle.
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

import "strings"

//A map between 3-letters name for aminoacidic residues to the corresponding 1-letter names.
//Protonation variants used by AMBER, CHARMM and GROMACS force fields are included, as they
//are what one finds in MD topologies.
var three2OneLetter = map[string]byte{
	"SER": 'S',
	"THR": 'T',
	"ASN": 'N',
	"GLN": 'Q',
	"SEC": 'U', //Selenocysteine!
	"CYS": 'C',
	"CYX": 'C',
	"CYM": 'C',
	"GLY": 'G',
	"PRO": 'P',
	"ALA": 'A',
	"VAL": 'V',
	"ILE": 'I',
	"LEU": 'L',
	"MET": 'M',
	"PHE": 'F',
	"TYR": 'Y',
	"TRP": 'W',
	"ARG": 'R',
	"HIS": 'H',
	"HID": 'H',
	"HIE": 'H',
	"HIP": 'H',
	"HSD": 'H',
	"HSE": 'H',
	"HSP": 'H',
	"LYS": 'K',
	"LYN": 'K',
	"ASP": 'D',
	"ASH": 'D',
	"GLU": 'E',
	"GLH": 'E',
}

//Residue names commonly used for water molecules.
var waterNames = []string{"HOH", "WAT", "SOL", "TIP3", "TIP4", "TIP5", "SPC", "T3P", "T4P"}

//IsAminoacid returns true if the residue name is a standard aminoacid, or one
//of its common protonation variants.
func IsAminoacid(resname string) bool {
	_, ok := three2OneLetter[strings.ToUpper(strings.TrimSpace(resname))]
	return ok
}

//IsWater returns true if the residue name is a common name for water.
func IsWater(resname string) bool {
	return isInString(waterNames, strings.ToUpper(strings.TrimSpace(resname)))
}

//This tries to guess a chemical element symbol from a PDB atom name. Mostly based on AMBER names.
//It only deals with some common bio-elements. It returns an empty string if the guess fails.
func symbolFromName(name string) string {
	name = strings.ToUpper(strings.TrimLeft(name, "0123456789"))
	if name == "" {
		return ""
	}
	if len(name) == 4 || name[0] == 'H' { //Only Hs can have 4-char names in amber.
		return "H"
	}
	twoletter := map[string]string{"CU": "Cu", "CO": "Co", "CL": "Cl", "NA": "Na", "SE": "Se", "ZN": "Zn", "MG": "Mg", "FE": "Fe", "MN": "Mn", "BR": "Br"}
	//CA is alpha-carbon far more often than calcium, so it is not in the map.
	if s, ok := twoletter[name]; ok {
		return s
	}
	switch name[0] {
	case 'C', 'N', 'O', 'P', 'S', 'K', 'F', 'I':
		return string(name[0])
	}
	return ""
}

func isInString(container []string, test string) bool {
	for _, i := range container {
		if test == i {
			return true
		}
	}
	return false
}
